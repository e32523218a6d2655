// Package sales implementa el alta, edición y borrado de ventas sobre el libro de stock.
package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/sucursales-api/internal/application/dto"
	"github.com/jhoicas/sucursales-api/internal/application/ledger"
	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/auth"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
)

const defaultCurrency = "MXN"

// UseCase motor de ventas. Cada operación es una sola transacción; los eventos se publican tras el commit.
type UseCase struct {
	tx        ledger.TxRunner
	ledger    *ledger.Ledger
	sales     repository.SaleRepository
	publisher ledger.Publisher
	loc       *time.Location
	log       zerolog.Logger
	tracer    trace.Tracer

	receipts ReceiptGenerator
	branches repository.BranchRepository
}

// NewUseCase construye el caso de uso. loc es la zona horaria del negocio para la ventana de edición.
func NewUseCase(
	tx ledger.TxRunner,
	lg *ledger.Ledger,
	sales repository.SaleRepository,
	publisher ledger.Publisher,
	loc *time.Location,
	log zerolog.Logger,
) *UseCase {
	if publisher == nil {
		publisher = ledger.DiscardPublisher
	}
	if loc == nil {
		loc = time.UTC
	}
	return &UseCase{
		tx:        tx,
		ledger:    lg,
		sales:     sales,
		publisher: publisher,
		loc:       loc,
		log:       log.With().Str("component", "sales").Logger(),
		tracer:    otel.Tracer("github.com/jhoicas/sucursales-api/sales"),
	}
}

// Get devuelve la venta con líneas y pagos. El personal de sucursal solo ve las suyas.
func (uc *UseCase) Get(ctx context.Context, p auth.Principal, saleID string) (*dto.SaleResponse, error) {
	sale, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	if !auth.CanAccessBranch(p, sale.BranchID) {
		return nil, domain.ErrForbidden
	}
	items, err := uc.sales.ListItems(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	payments, err := uc.sales.ListPayments(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	resp := saleResponse(sale, items, payments)
	return &resp, nil
}

// resolveBranch sucursal de la venta: la indicada o la principal de quien llama.
func resolveBranch(p auth.Principal, requested string) (string, error) {
	if requested == "" {
		b, ok := auth.PrimaryBranch(p)
		if !ok {
			return "", domain.NewValidationError("branch_id", "obligatorio")
		}
		requested = b
	}
	if !auth.CanOperateBranch(p, requested) {
		return "", domain.ErrForbidden
	}
	return requested, nil
}

// newFolio referencia legible V<aammdd>-<8 hex>.
func newFolio(now time.Time) string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("V%s-%s", now.Format("060102"), strings.ToUpper(hex[:8]))
}

// sameDay compara fechas de calendario en la zona del negocio.
func sameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// fail registra el rechazo en el span y en el log: reglas de negocio en warn, infraestructura en error.
func (uc *UseCase) fail(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	ev := uc.log.Error()
	if domain.IsBusiness(err) {
		ev = uc.log.Warn()
	}
	ev.Err(err).Str("op", op).Msg("operación de venta revertida")
	return err
}

// orNotFound traduce una cabecera inexistente.
func orNotFound(sale *entity.Sale, err error) (*entity.Sale, error) {
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return sale, nil
}

var errNoLines = errors.New("la venta debe tener al menos una línea")
