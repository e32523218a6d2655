package transfers_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sucursales-api/internal/application/dto"
	"github.com/jhoicas/sucursales-api/internal/application/ledger"
	"github.com/jhoicas/sucursales-api/internal/application/transfers"
	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/auth"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/event"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
	"github.com/jhoicas/sucursales-api/internal/infrastructure/memory"
)

// ─── Helpers de test ───

var (
	staffX = auth.TokenPrincipal{UserID: "u-x", Role: entity.RoleBranchAdmin, BranchIDs: []string{"x"}}
	staffY = auth.TokenPrincipal{UserID: "u-y", Role: entity.RoleBranchAdmin, BranchIDs: []string{"y"}}
	staffZ = auth.TokenPrincipal{UserID: "u-z", Role: entity.RoleSeller, BranchIDs: []string{"z"}}
	admin  = auth.TokenPrincipal{UserID: "u-admin", Role: entity.RoleMasterAdmin}
)

type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) Publish(_ context.Context, events ...event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

func (r *recorder) take() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

// lockLog registra los artículos bloqueados (GetForUpdate) dentro de cada transacción.
type lockLog struct {
	inner ledger.TxRunner
	mu    sync.Mutex
	ids   []string
}

func (l *lockLog) Run(ctx context.Context, fn func(ledger.Stores) error) error {
	return l.inner.Run(ctx, func(s ledger.Stores) error {
		s.Items = lockingItems{ItemRepository: s.Items, log: l}
		return fn(s)
	})
}

func (l *lockLog) take() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.ids
	l.ids = nil
	return out
}

type lockingItems struct {
	repository.ItemRepository
	log *lockLog
}

func (r lockingItems) GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	r.log.mu.Lock()
	r.log.ids = append(r.log.ids, id)
	r.log.mu.Unlock()
	return r.ItemRepository.GetForUpdate(ctx, id)
}

type fixture struct {
	store *memory.Store
	reads ledger.Stores
	pub   *recorder
	locks *lockLog
	uc    *transfers.UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: memory.NewStore(), pub: &recorder{}}
	f.locks = &lockLog{inner: f.store}
	for _, id := range []string{"x", "y", "z"} {
		f.store.AddBranch(&entity.Branch{ID: id, Code: id, Name: "Sucursal " + id, Active: true})
	}
	f.store.AddBranch(&entity.Branch{ID: "closed", Code: "C", Name: "Cerrada", Active: false})
	f.reads = f.store.Stores()
	now := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)
	lg := ledger.New(f.reads.Items, f.reads.Logs).WithClock(func() time.Time { return now })
	f.uc = transfers.NewUseCase(f.locks, lg, f.reads.Transfers, f.store.Branches(), f.pub, zerolog.Nop())
	return f
}

func (f *fixture) addItem(id, branch, sku, barcode string, stock int, cost string) {
	b := branch
	f.store.AddItem(&entity.InventoryItem{
		ID: id, SKU: sku, Barcode: barcode, Name: "Anillo " + id, Category: "joyería", Material: "plata",
		Cost: decimal.RequireFromString(cost), Price: decimal.NewFromInt(300),
		StockActual: stock, Status: entity.ItemStatusAvailable, BranchID: &b,
	})
}

func (f *fixture) item(t *testing.T, id string) *entity.InventoryItem {
	t.Helper()
	item, err := f.reads.Items.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, item)
	return item
}

func (f *fixture) create(t *testing.T, itemID string, qty int) *dto.TransferResponse {
	t.Helper()
	tr, err := f.uc.Create(context.Background(), staffX, dto.CreateTransferRequest{
		FromBranchID: "x", ToBranchID: "y",
		Items: []dto.TransferItemRequest{{ItemID: itemID, Quantity: qty}},
	})
	require.NoError(t, err)
	return tr
}

func labels(events []event.Event) map[string]string {
	out := map[string]string{}
	for _, e := range events {
		if e.Name == event.TransferUpdated {
			out[e.BranchID] = e.Action
		}
	}
	return out
}

// ─── Create ───

func TestCreate_ValidaPeroNoMueveStock(t *testing.T) {
	f := newFixture(t)
	f.addItem("a", "x", "SKU-A", "", 2, "50")

	tr := f.create(t, "a", 2)
	assert.Equal(t, string(entity.TransferPending), tr.Status)
	assert.Equal(t, 2, f.item(t, "a").StockActual)
	assert.Equal(t, map[string]string{"x": "created", "y": "received"}, labels(f.pub.take()))
}

func TestCreate_Rechazos(t *testing.T) {
	tests := []struct {
		name string
		p    auth.Principal
		in   dto.CreateTransferRequest
		want error
	}{
		{"misma sucursal", staffX, dto.CreateTransferRequest{FromBranchID: "x", ToBranchID: "x", Items: []dto.TransferItemRequest{{ItemID: "a", Quantity: 1}}}, domain.ErrSameBranch},
		{"destino inexistente", staffX, dto.CreateTransferRequest{FromBranchID: "x", ToBranchID: "q", Items: []dto.TransferItemRequest{{ItemID: "a", Quantity: 1}}}, domain.ErrNotFound},
		{"destino inactivo", staffX, dto.CreateTransferRequest{FromBranchID: "x", ToBranchID: "closed", Items: []dto.TransferItemRequest{{ItemID: "a", Quantity: 1}}}, domain.ErrNotFound},
		{"no es personal del origen", staffY, dto.CreateTransferRequest{FromBranchID: "x", ToBranchID: "y", Items: []dto.TransferItemRequest{{ItemID: "a", Quantity: 1}}}, domain.ErrForbidden},
		{"artículo de otra sucursal", staffX, dto.CreateTransferRequest{FromBranchID: "x", ToBranchID: "y", Items: []dto.TransferItemRequest{{ItemID: "b", Quantity: 1}}}, domain.ErrItemNotInBranch},
		{"stock insuficiente sumando líneas", staffX, dto.CreateTransferRequest{FromBranchID: "x", ToBranchID: "y", Items: []dto.TransferItemRequest{{ItemID: "a", Quantity: 2}, {ItemID: "a", Quantity: 1}}}, domain.ErrInsufficientStock},
		{"cantidad cero", staffX, dto.CreateTransferRequest{FromBranchID: "x", ToBranchID: "y", Items: []dto.TransferItemRequest{{ItemID: "a", Quantity: 0}}}, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.addItem("a", "x", "SKU-A", "", 2, "50")
			f.addItem("b", "y", "SKU-B", "", 2, "50")
			_, err := f.uc.Create(context.Background(), tt.p, tt.in)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, f.pub.take())
		})
	}
}

// ─── Máquina de estados ───

func TestComplete_RequiereAprobado(t *testing.T) {
	f := newFixture(t)
	f.addItem("a", "x", "SKU-A", "", 2, "50")
	tr := f.create(t, "a", 1)

	_, err := f.uc.Complete(context.Background(), staffY, tr.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, 2, f.item(t, "a").StockActual)
}

func TestApproveAndComplete_SoloDestinoOAdmin(t *testing.T) {
	f := newFixture(t)
	f.addItem("a", "x", "SKU-A", "", 2, "50")
	tr := f.create(t, "a", 1)

	_, err := f.uc.Approve(context.Background(), staffX, tr.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.uc.Approve(context.Background(), staffZ, tr.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	f.pub.take()
	got, err := f.uc.Approve(context.Background(), admin, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "u-admin", *got.ApprovedBy)
	assert.NotNil(t, got.ApprovedAt)
	assert.Equal(t, map[string]string{"x": "sent", "y": "received"}, labels(f.pub.take()))

	_, err = f.uc.Approve(context.Background(), admin, tr.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = f.uc.Complete(context.Background(), staffX, tr.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCancel_NuncaDesdeCompletado(t *testing.T) {
	f := newFixture(t)
	f.addItem("a", "x", "SKU-A", "", 2, "50")
	tr := f.create(t, "a", 1)
	_, err := f.uc.Approve(context.Background(), staffY, tr.ID)
	require.NoError(t, err)
	_, err = f.uc.Complete(context.Background(), staffY, tr.ID)
	require.NoError(t, err)

	_, err = f.uc.Cancel(context.Background(), admin, tr.ID, dto.CancelTransferRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestCancel_PorOrigenODestino(t *testing.T) {
	f := newFixture(t)
	f.addItem("a", "x", "SKU-A", "", 5, "50")

	pending := f.create(t, "a", 1)
	_, err := f.uc.Cancel(context.Background(), staffZ, pending.ID, dto.CancelTransferRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, err := f.uc.Cancel(context.Background(), staffX, pending.ID, dto.CancelTransferRequest{Reason: "error de captura"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.TransferCancelled), got.Status)
	assert.Equal(t, "error de captura", got.CancelReason)

	approved := f.create(t, "a", 1)
	_, err = f.uc.Approve(context.Background(), staffY, approved.ID)
	require.NoError(t, err)
	f.pub.take()
	_, err = f.uc.Cancel(context.Background(), staffY, approved.ID, dto.CancelTransferRequest{})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"x": "cancelled", "y": "cancelled"}, labels(f.pub.take()))

	_, err = f.uc.Cancel(context.Background(), staffY, approved.ID, dto.CancelTransferRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, 5, f.item(t, "a").StockActual)
}

// ─── Complete ───

func TestComplete_MueveStockYCreaCopia(t *testing.T) {
	f := newFixture(t)
	f.addItem("a", "x", "SKU-A", "", 2, "50")
	tr := f.create(t, "a", 2)
	_, err := f.uc.Approve(context.Background(), staffY, tr.ID)
	require.NoError(t, err)
	f.pub.take()

	got, err := f.uc.Complete(context.Background(), staffY, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.TransferCompleted), got.Status)
	require.NotNil(t, got.Items[0].DestinationItemID)

	origin := f.item(t, "a")
	assert.Equal(t, 0, origin.StockActual)
	assert.Equal(t, entity.ItemStatusSold, origin.Status)

	dest := f.item(t, *got.Items[0].DestinationItemID)
	assert.NotEqual(t, "a", dest.ID)
	assert.True(t, dest.InBranch("y"))
	assert.Equal(t, 2, dest.StockActual)
	assert.Equal(t, entity.ItemStatusAvailable, dest.Status)
	assert.Equal(t, "SKU-A", dest.SKU)
	assert.Equal(t, "plata", dest.Material)
	assert.True(t, decimal.NewFromInt(50).Equal(dest.Cost))

	entries, err := f.reads.Logs.ListByItem(context.Background(), dest.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.LogActionTransferenciaEntrada, entries[0].Action)
	assert.Equal(t, 0, entries[0].StockBefore)
	assert.Equal(t, 2, entries[0].StockAfter)

	events := f.pub.take()
	assert.Equal(t, map[string]string{"x": "completed", "y": "completed"}, labels(events))
	var inventory []string
	for _, e := range events {
		if e.Name == event.InventoryUpdated {
			inventory = append(inventory, e.BranchID+":"+e.Action)
		}
	}
	assert.Equal(t, []string{"x:stock_changed", "y:created"}, inventory)
}

func TestComplete_SumaAlMismoSKUYConservaTotal(t *testing.T) {
	f := newFixture(t)
	f.addItem("a", "x", "SKU-A", "", 10, "60")
	f.addItem("a-y", "y", "SKU-A", "", 2, "40")
	f.addItem("other", "z", "SKU-A", "", 7, "10")
	tr := f.create(t, "a", 4)
	_, err := f.uc.Approve(context.Background(), staffY, tr.ID)
	require.NoError(t, err)

	got, err := f.uc.Complete(context.Background(), admin, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "a-y", *got.Items[0].DestinationItemID)

	origin, dest := f.item(t, "a"), f.item(t, "a-y")
	assert.Equal(t, 6, origin.StockActual)
	assert.Equal(t, 6, dest.StockActual)
	assert.Equal(t, 12, origin.StockActual+dest.StockActual)
	assert.Equal(t, 7, f.item(t, "other").StockActual)
	// (2*40 + 4*60) / 6
	assert.True(t, decimal.RequireFromString("53.33").Equal(dest.Cost), dest.Cost.String())
}

func TestComplete_EmparejaPorCodigoDeBarrasSinSKU(t *testing.T) {
	f := newFixture(t)
	f.addItem("a", "x", "", "750100", 3, "50")
	f.addItem("a-y", "y", "", "750100", 1, "50")
	tr := f.create(t, "a", 3)
	_, err := f.uc.Approve(context.Background(), staffY, tr.ID)
	require.NoError(t, err)

	got, err := f.uc.Complete(context.Background(), staffY, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "a-y", *got.Items[0].DestinationItemID)
	assert.Equal(t, 4, f.item(t, "a-y").StockActual)
}

func TestComplete_IgnoraCopiaDadaDeBajaEnDestino(t *testing.T) {
	f := newFixture(t)
	f.addItem("b", "x", "SKU-B", "", 2, "50")
	f.addItem("yb", "y", "SKU-B", "", 0, "50")
	removed := f.item(t, "yb")
	removed.Status = entity.ItemStatusRemoved
	f.store.AddItem(removed)

	tr := f.create(t, "b", 2)
	_, err := f.uc.Approve(context.Background(), staffY, tr.ID)
	require.NoError(t, err)
	got, err := f.uc.Complete(context.Background(), staffY, tr.ID)
	require.NoError(t, err)

	require.NotNil(t, got.Items[0].DestinationItemID)
	destID := *got.Items[0].DestinationItemID
	assert.NotEqual(t, "yb", destID)
	dest := f.item(t, destID)
	assert.True(t, dest.InBranch("y"))
	assert.Equal(t, 2, dest.StockActual)
	assert.Equal(t, entity.ItemStatusAvailable, dest.Status)

	untouched := f.item(t, "yb")
	assert.Equal(t, 0, untouched.StockActual)
	assert.Equal(t, entity.ItemStatusRemoved, untouched.Status)
}

func TestComplete_BloqueaOrigenesEnOrdenDeID(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"c", "a", "b"} {
		f.addItem(id, "x", "SKU-"+id, "", 3, "50")
	}
	tr, err := f.uc.Create(context.Background(), staffX, dto.CreateTransferRequest{
		FromBranchID: "x", ToBranchID: "y",
		Items: []dto.TransferItemRequest{{ItemID: "c", Quantity: 1}, {ItemID: "a", Quantity: 1}, {ItemID: "b", Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = f.uc.Approve(context.Background(), staffY, tr.ID)
	require.NoError(t, err)
	f.locks.take()

	got, err := f.uc.Complete(context.Background(), staffY, tr.ID)
	require.NoError(t, err)
	locks := f.locks.take()
	require.GreaterOrEqual(t, len(locks), 3)
	assert.Equal(t, []string{"a", "b", "c"}, locks[:3])

	// La respuesta conserva el orden de las líneas.
	assert.Equal(t, "c", got.Items[0].ItemID)
	for _, id := range []string{"a", "b", "c"} {
		assert.Equal(t, 2, f.item(t, id).StockActual)
	}
}

func TestComplete_RevalidaStockDeOrigen(t *testing.T) {
	f := newFixture(t)
	f.addItem("a", "x", "SKU-A", "", 3, "50")
	f.addItem("b", "x", "SKU-B", "", 3, "50")
	tr, err := f.uc.Create(context.Background(), staffX, dto.CreateTransferRequest{
		FromBranchID: "x", ToBranchID: "y",
		Items: []dto.TransferItemRequest{{ItemID: "a", Quantity: 2}, {ItemID: "b", Quantity: 3}},
	})
	require.NoError(t, err)
	_, err = f.uc.Approve(context.Background(), staffY, tr.ID)
	require.NoError(t, err)

	// Entre la aprobación y la entrega se vende parte del stock de b.
	b := f.item(t, "b")
	b.StockActual = 1
	f.store.AddItem(b)

	_, err = f.uc.Complete(context.Background(), staffY, tr.ID)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 3, f.item(t, "a").StockActual, "la primera línea se revierte")

	got, err := f.uc.Get(context.Background(), staffY, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.TransferApproved), got.Status)
	assert.Nil(t, got.Items[0].DestinationItemID)
}

// ─── Lecturas ───

func TestList_AcotadoALasSucursalesDelLlamador(t *testing.T) {
	f := newFixture(t)
	f.addItem("a", "x", "SKU-A", "", 5, "50")
	f.create(t, "a", 1)
	second := f.create(t, "a", 1)
	_, err := f.uc.Approve(context.Background(), staffY, second.ID)
	require.NoError(t, err)

	list, err := f.uc.List(context.Background(), staffY, dto.TransferListRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
	assert.Equal(t, second.ID, list.Items[0].ID)

	list, err = f.uc.List(context.Background(), staffZ, dto.TransferListRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	list, err = f.uc.List(context.Background(), admin, dto.TransferListRequest{Status: "approved"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, second.ID, list.Items[0].ID)

	_, err = f.uc.List(context.Background(), staffZ, dto.TransferListRequest{BranchID: "x"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.uc.List(context.Background(), admin, dto.TransferListRequest{Status: "lost"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Get(context.Background(), staffZ, second.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
