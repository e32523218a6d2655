package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas, líneas y pagos sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, folio, branch_id, seller_id, guide_id, agency_id, customer_id, subtotal, discount_amount, total,
	currency, status, notes, created_by, created_at, updated_at`

// Create inserta la cabecera. Un folio repetido devuelve ErrConflict.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.Folio, s.BranchID, s.SellerID, s.GuideID, s.AgencyID, s.CustomerID,
		s.Subtotal, s.DiscountAmount, s.Total, s.Currency, s.Status, s.Notes, s.CreatedBy, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: folio %s", domain.ErrConflict, s.Folio)
		}
		return wrapErr("insert sale", err)
	}
	return nil
}

func (r *SaleRepo) getOne(ctx context.Context, op, query, id string) (*entity.Sale, error) {
	var s entity.Sale
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Folio, &s.BranchID, &s.SellerID, &s.GuideID, &s.AgencyID, &s.CustomerID,
		&s.Subtotal, &s.DiscountAmount, &s.Total, &s.Currency, &s.Status, &s.Notes, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	return &s, nil
}

// GetByID obtiene la cabecera.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.getOne(ctx, "get sale", `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

// GetForUpdate obtiene la cabecera y la bloquea.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.getOne(ctx, "get sale for update", `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id)
}

// Update persiste importes y campos editables.
func (r *SaleRepo) Update(ctx context.Context, s *entity.Sale) error {
	query := `
		UPDATE sales SET seller_id = $2, guide_id = $3, agency_id = $4, customer_id = $5,
			subtotal = $6, discount_amount = $7, total = $8, status = $9, notes = $10, updated_at = $11
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		s.ID, s.SellerID, s.GuideID, s.AgencyID, s.CustomerID,
		s.Subtotal, s.DiscountAmount, s.Total, s.Status, s.Notes, s.UpdatedAt,
	)
	if err != nil {
		return wrapErr("update sale", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la cabecera; líneas y pagos deben eliminarse antes.
func (r *SaleRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete sale", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateItem inserta una línea.
func (r *SaleRepo) CreateItem(ctx context.Context, it *entity.SaleItem) error {
	query := `
		INSERT INTO sale_items (id, sale_id, item_id, sku, description, quantity, unit_price,
			discount_percent, subtotal, commission_percent, commission_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.SaleID, it.ItemID, it.SKU, it.Description, it.Quantity, it.UnitPrice,
		it.DiscountPercent, it.Subtotal, it.CommissionPercent, it.CommissionAmount,
	)
	if err != nil {
		return wrapErr("insert sale item", err)
	}
	return nil
}

// UpdateItem actualiza cantidad e importes de una línea.
func (r *SaleRepo) UpdateItem(ctx context.Context, it *entity.SaleItem) error {
	query := `
		UPDATE sale_items SET sku = $2, description = $3, quantity = $4, unit_price = $5,
			discount_percent = $6, subtotal = $7, commission_percent = $8, commission_amount = $9
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		it.ID, it.SKU, it.Description, it.Quantity, it.UnitPrice,
		it.DiscountPercent, it.Subtotal, it.CommissionPercent, it.CommissionAmount,
	)
	if err != nil {
		return wrapErr("update sale item", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteItem elimina una línea.
func (r *SaleRepo) DeleteItem(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM sale_items WHERE id = $1`, id); err != nil {
		return wrapErr("delete sale item", err)
	}
	return nil
}

// DeleteItems elimina todas las líneas de la venta.
func (r *SaleRepo) DeleteItems(ctx context.Context, saleID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, saleID); err != nil {
		return wrapErr("delete sale items", err)
	}
	return nil
}

// ListItems líneas en orden de captura.
func (r *SaleRepo) ListItems(ctx context.Context, saleID string) ([]*entity.SaleItem, error) {
	query := `
		SELECT id, sale_id, item_id, sku, description, quantity, unit_price,
			discount_percent, subtotal, commission_percent, commission_amount
		FROM sale_items WHERE sale_id = $1 ORDER BY seq`
	rows, err := r.q.Query(ctx, query, saleID)
	if err != nil {
		return nil, wrapErr("list sale items", err)
	}
	defer rows.Close()

	var out []*entity.SaleItem
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(
			&it.ID, &it.SaleID, &it.ItemID, &it.SKU, &it.Description, &it.Quantity, &it.UnitPrice,
			&it.DiscountPercent, &it.Subtotal, &it.CommissionPercent, &it.CommissionAmount,
		); err != nil {
			return nil, wrapErr("scan sale item", err)
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}

// CreatePayment inserta un pago.
func (r *SaleRepo) CreatePayment(ctx context.Context, p *entity.Payment) error {
	query := `
		INSERT INTO payments (id, sale_id, method, amount, currency, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.q.Exec(ctx, query, p.ID, p.SaleID, p.Method, p.Amount, p.Currency, p.Reference, p.CreatedAt); err != nil {
		return wrapErr("insert payment", err)
	}
	return nil
}

// DeletePayments elimina los pagos de la venta.
func (r *SaleRepo) DeletePayments(ctx context.Context, saleID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM payments WHERE sale_id = $1`, saleID); err != nil {
		return wrapErr("delete payments", err)
	}
	return nil
}

// ListPayments pagos en orden de captura.
func (r *SaleRepo) ListPayments(ctx context.Context, saleID string) ([]*entity.Payment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, method, amount, currency, reference, created_at
		FROM payments WHERE sale_id = $1 ORDER BY seq`, saleID)
	if err != nil {
		return nil, wrapErr("list payments", err)
	}
	defer rows.Close()

	var out []*entity.Payment
	for rows.Next() {
		var p entity.Payment
		if err := rows.Scan(&p.ID, &p.SaleID, &p.Method, &p.Amount, &p.Currency, &p.Reference, &p.CreatedAt); err != nil {
			return nil, wrapErr("scan payment", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
