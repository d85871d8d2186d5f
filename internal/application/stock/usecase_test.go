package stock_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appstock "github.com/tu-usuario/agromercado-api/internal/application/stock"
	"github.com/tu-usuario/agromercado-api/internal/domain"
	"github.com/tu-usuario/agromercado-api/internal/domain/entity"
	"github.com/tu-usuario/agromercado-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria: un store compartido + repos que leen copias y escriben al
// store, y un TxRunner que restaura un snapshot cuando la fn devuelve error.
// Así el rollback se verifica de verdad, no de mentiras.
// ──────────────────────────────────────────────────────────────────────────────

type fakeStore struct {
	products  map[string]*entity.Product
	movements []*entity.StockMovement
}

func newFakeStore(products ...*entity.Product) *fakeStore {
	s := &fakeStore{products: make(map[string]*entity.Product)}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *fakeStore) findVariant(id string) (*entity.Product, *entity.ProductVariant) {
	for _, p := range s.products {
		if v := p.FindVariant(id); v != nil {
			return p, v
		}
	}
	return nil, nil
}

func (s *fakeStore) snapshot() *fakeStore {
	cp := &fakeStore{products: make(map[string]*entity.Product, len(s.products))}
	for id, p := range s.products {
		cp.products[id] = cloneProduct(p)
	}
	cp.movements = append([]*entity.StockMovement(nil), s.movements...)
	return cp
}

func (s *fakeStore) restore(snap *fakeStore) {
	s.products = snap.products
	s.movements = snap.movements
}

func cloneProduct(p *entity.Product) *entity.Product {
	cp := *p
	if p.BaseQuantity != nil {
		q := *p.BaseQuantity
		cp.BaseQuantity = &q
	}
	cp.Variants = make([]*entity.ProductVariant, len(p.Variants))
	for i, v := range p.Variants {
		cv := *v
		if v.Quantity != nil {
			q := *v.Quantity
			cv.Quantity = &q
		}
		cp.Variants[i] = &cv
	}
	return &cp
}

type fakeProductRepo struct{ store *fakeStore }

func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.store.products[id]
	if !ok {
		return nil, nil
	}
	return cloneProduct(p), nil
}

func (r *fakeProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	return r.GetByID(id)
}

func (r *fakeProductRepo) UpdateGlobalStock(productID string, globalStock decimal.Decimal) error {
	p, ok := r.store.products[productID]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.GlobalStock = globalStock
	return nil
}

type fakeVariantRepo struct{ store *fakeStore }

func (r *fakeVariantRepo) GetByID(id string) (*entity.ProductVariant, error) {
	_, v := r.store.findVariant(id)
	if v == nil {
		return nil, nil
	}
	cv := *v
	return &cv, nil
}

func (r *fakeVariantRepo) GetForUpdate(id string) (*entity.ProductVariant, error) {
	return r.GetByID(id)
}

func (r *fakeVariantRepo) UpdateStock(variantID string, stock int64) error {
	_, v := r.store.findVariant(variantID)
	if v == nil {
		return domain.ErrVariantNotFound
	}
	v.Stock = stock
	return nil
}

type fakeMovementRepo struct{ store *fakeStore }

func (r *fakeMovementRepo) Create(m *entity.StockMovement) error {
	cm := *m
	r.store.movements = append(r.store.movements, &cm)
	return nil
}

func (r *fakeMovementRepo) ListByVariant(variantID string, _, _ *time.Time, _, _ int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.store.movements {
		if m.VariantID == variantID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) ListByProduct(productID string, _, _ *time.Time, _, _ int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.store.movements {
		if p, _ := r.store.findVariant(m.VariantID); p != nil && p.ID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeTxRunner struct{ store *fakeStore }

func (t *fakeTxRunner) Run(_ context.Context, fn func(
	repository.ProductRepository,
	repository.VariantRepository,
	repository.StockMovementRepository,
) error) error {
	snap := t.store.snapshot()
	err := fn(&fakeProductRepo{t.store}, &fakeVariantRepo{t.store}, &fakeMovementRepo{t.store})
	if err != nil {
		t.store.restore(snap)
	}
	return err
}

func buildUseCase(products ...*entity.Product) (*appstock.GlobalStockUseCase, *fakeStore) {
	store := newFakeStore(products...)
	uc := appstock.NewGlobalStockUseCase(
		&fakeTxRunner{store},
		&fakeProductRepo{store},
		&fakeVariantRepo{store},
		&fakeMovementRepo{store},
	)
	return uc, store
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixtures
// ──────────────────────────────────────────────────────────────────────────────

var (
	unitKg = &entity.Unit{ID: "u-kg", Name: "Kilogramo", Symbol: "kg", Category: entity.UnitCategoryWeight, Active: true}
	unitG  = &entity.Unit{ID: "u-g", Name: "Gramo", Symbol: "g", Category: entity.UnitCategoryWeight, Active: true}
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// Producto de referencia: 10 kg de tomates, variante de 1 kg (stock 10) y
// variante de 500 g (stock 20), ya derivados.
func buildTomatoes() *entity.Product {
	return &entity.Product{
		ID:           "p-tomates",
		Name:         "Tomates chonto",
		GlobalStock:  dec("10"),
		BaseUnit:     unitKg,
		BaseQuantity: decPtr("1"),
		Variants: []*entity.ProductVariant{
			{ID: "v-1kg", ProductID: "p-tomates", Quantity: decPtr("1"), Unit: unitKg, Stock: 10},
			{ID: "v-500g", ProductID: "p-tomates", Quantity: decPtr("500"), Unit: unitG, Stock: 20},
		},
	}
}

func buildPotatoes() *entity.Product {
	return &entity.Product{
		ID:           "p-papas",
		Name:         "Papa criolla",
		GlobalStock:  dec("20"),
		BaseUnit:     unitKg,
		BaseQuantity: decPtr("1"),
		Variants: []*entity.ProductVariant{
			{ID: "v-papa-2kg", ProductID: "p-papas", Quantity: decPtr("2"), Unit: unitKg, Stock: 10},
		},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// AdjustStock
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjustStock_CorreccionManual(t *testing.T) {
	uc, store := buildUseCase(buildTomatoes())

	result, err := uc.AdjustStock(context.Background(), "v-1kg", 7, "inventario físico", "admin-1")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, int64(7), result.Variant.Stock)
	assert.Equal(t, entity.MovementTypeManualAdjustment, result.Movement.Type)
	assert.Equal(t, int64(10), result.Movement.PreviousStock)
	assert.Equal(t, int64(7), result.Movement.NewStock)
	assert.Equal(t, int64(-3), result.Movement.Quantity, "el delta es nuevo - anterior")
	assert.Equal(t, "admin-1", result.Movement.AdjustedBy)
	assert.Nil(t, result.Movement.CheckoutSessionID, "una corrección manual no lleva sesión de checkout")

	// Persistido en el store, no solo en el resultado.
	_, v := store.findVariant("v-1kg")
	assert.Equal(t, int64(7), v.Stock)
	require.Len(t, store.movements, 1)
}

func TestAdjustStock_VarianteInexistente(t *testing.T) {
	uc, store := buildUseCase(buildTomatoes())

	_, err := uc.AdjustStock(context.Background(), "v-fantasma", 5, "", "admin-1")
	assert.ErrorIs(t, err, domain.ErrVariantNotFound)
	assert.Empty(t, store.movements, "un ajuste fallido no deja movimientos")
}

func TestAdjustStock_EntradaInvalida(t *testing.T) {
	uc, _ := buildUseCase(buildTomatoes())

	_, err := uc.AdjustStock(context.Background(), "", 5, "", "admin-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.AdjustStock(context.Background(), "v-1kg", -1, "", "admin-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// AdjustGlobalStock
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjustGlobalStock_RederivaTodasLasVariantes(t *testing.T) {
	uc, store := buildUseCase(buildTomatoes())

	result, err := uc.AdjustGlobalStock(context.Background(), "p-tomates", dec("4"), "merma por cosecha", "admin-1")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Product.GlobalStock.Equal(dec("4")))
	d1, _ := result.Calculation.Find("v-1kg")
	d2, _ := result.Calculation.Find("v-500g")
	assert.Equal(t, int64(4), d1.CalculatedStock)
	assert.Equal(t, int64(8), d2.CalculatedStock)

	p := store.products["p-tomates"]
	assert.True(t, p.GlobalStock.Equal(dec("4")), "el global debe quedar persistido")
	_, v1 := store.findVariant("v-1kg")
	_, v2 := store.findVariant("v-500g")
	assert.Equal(t, int64(4), v1.Stock)
	assert.Equal(t, int64(8), v2.Stock)

	// Un movimiento MANUAL_ADJUSTMENT por variante, con el antes/después real.
	require.Len(t, store.movements, 2)
	for _, m := range store.movements {
		assert.Equal(t, entity.MovementTypeManualAdjustment, m.Type)
		assert.Equal(t, "merma por cosecha", m.Reason)
	}
	assert.Equal(t, int64(10), store.movements[0].PreviousStock)
	assert.Equal(t, int64(4), store.movements[0].NewStock)
	assert.Equal(t, int64(20), store.movements[1].PreviousStock)
	assert.Equal(t, int64(8), store.movements[1].NewStock)
}

func TestAdjustGlobalStock_ProductoInexistente(t *testing.T) {
	uc, _ := buildUseCase(buildTomatoes())

	_, err := uc.AdjustGlobalStock(context.Background(), "p-fantasma", dec("4"), "", "admin-1")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestAdjustGlobalStock_GlobalNegativo(t *testing.T) {
	uc, _ := buildUseCase(buildTomatoes())

	_, err := uc.AdjustGlobalStock(context.Background(), "p-tomates", dec("-1"), "", "admin-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// UpdateGlobalStockAfterCheckout
// ──────────────────────────────────────────────────────────────────────────────

// Canasta de referencia: 3 bolsas de 1 kg + 4 bolsas de 500 g consumen 5 kg.
// El global queda en 5 y las hermanas se re-derivan a 5 y 10, cada una con su
// movimiento SALE atado a la sesión de checkout.
func TestCheckout_VentaMultilinea(t *testing.T) {
	uc, store := buildUseCase(buildTomatoes())

	err := uc.UpdateGlobalStockAfterCheckout(context.Background(), []appstock.SoldItem{
		{VariantID: "v-1kg", Quantity: 3},
		{VariantID: "v-500g", Quantity: 4},
	}, "chk-001", "", "")
	require.NoError(t, err)

	p := store.products["p-tomates"]
	assert.True(t, p.GlobalStock.Equal(dec("5")), "10 - (3*1 + 4*0.5) = 5, fue %s", p.GlobalStock)
	_, v1 := store.findVariant("v-1kg")
	_, v2 := store.findVariant("v-500g")
	assert.Equal(t, int64(5), v1.Stock)
	assert.Equal(t, int64(10), v2.Stock)

	require.Len(t, store.movements, 2, "un movimiento SALE por variante hermana")
	for _, m := range store.movements {
		assert.Equal(t, entity.MovementTypeSale, m.Type)
		require.NotNil(t, m.CheckoutSessionID)
		assert.Equal(t, "chk-001", *m.CheckoutSessionID)
		assert.Equal(t, "venta checkout", m.Reason, "razón por defecto cuando no llega")
	}
}

// El decremento se aplica una sola vez por producto aunque la canasta tenga
// varias líneas del mismo producto: nunca un decremento por línea.
func TestCheckout_DecrementoUnicoPorProducto(t *testing.T) {
	uc, store := buildUseCase(buildTomatoes())

	err := uc.UpdateGlobalStockAfterCheckout(context.Background(), []appstock.SoldItem{
		{VariantID: "v-500g", Quantity: 2},
		{VariantID: "v-500g", Quantity: 2},
	}, "chk-002", "", "")
	require.NoError(t, err)

	p := store.products["p-tomates"]
	assert.True(t, p.GlobalStock.Equal(dec("8")), "4*0.5 kg en total, fue %s", p.GlobalStock)
}

// Canasta multi-producto con una línea inválida: nada se escribe (atomicidad).
func TestCheckout_RollbackMultiproducto(t *testing.T) {
	uc, store := buildUseCase(buildTomatoes(), buildPotatoes())

	err := uc.UpdateGlobalStockAfterCheckout(context.Background(), []appstock.SoldItem{
		{VariantID: "v-1kg", Quantity: 3},
		{VariantID: "v-fantasma", Quantity: 1},
	}, "chk-003", "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrVariantNotFound)

	// El primer producto no puede quedar decrementado a medias.
	p := store.products["p-tomates"]
	assert.True(t, p.GlobalStock.Equal(dec("10")), "rollback debe dejar el global intacto")
	_, v1 := store.findVariant("v-1kg")
	assert.Equal(t, int64(10), v1.Stock)
	assert.Empty(t, store.movements)
}

func TestCheckout_ProductoSinUnidadBase(t *testing.T) {
	p := buildTomatoes()
	p.BaseUnit = nil
	uc, store := buildUseCase(p)

	err := uc.UpdateGlobalStockAfterCheckout(context.Background(), []appstock.SoldItem{
		{VariantID: "v-1kg", Quantity: 1},
	}, "chk-004", "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingBaseUnit)
	assert.Empty(t, store.movements)
}

func TestCheckout_VarianteSinConfiguracion(t *testing.T) {
	p := buildTomatoes()
	p.Variants[0].Unit = nil
	uc, _ := buildUseCase(p)

	err := uc.UpdateGlobalStockAfterCheckout(context.Background(), []appstock.SoldItem{
		{VariantID: "v-1kg", Quantity: 1},
	}, "chk-005", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidVariantCfg)
}

// Sobreventa frente a este núcleo: se acepta y el global se recorta en cero.
// La guardia de disponibilidad vive en el colaborador que valida antes.
func TestCheckout_SobreventaRecortaEnCero(t *testing.T) {
	uc, store := buildUseCase(buildTomatoes())

	err := uc.UpdateGlobalStockAfterCheckout(context.Background(), []appstock.SoldItem{
		{VariantID: "v-1kg", Quantity: 50},
	}, "chk-006", "", "")
	require.NoError(t, err)

	p := store.products["p-tomates"]
	assert.True(t, p.GlobalStock.IsZero())
	_, v1 := store.findVariant("v-1kg")
	_, v2 := store.findVariant("v-500g")
	assert.Zero(t, v1.Stock)
	assert.Zero(t, v2.Stock)
}

func TestCheckout_EntradaInvalida(t *testing.T) {
	uc, _ := buildUseCase(buildTomatoes())
	ctx := context.Background()

	assert.ErrorIs(t, uc.UpdateGlobalStockAfterCheckout(ctx, nil, "chk-007", "", ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, uc.UpdateGlobalStockAfterCheckout(ctx, []appstock.SoldItem{{VariantID: "v-1kg", Quantity: 1}}, "", "", ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, uc.UpdateGlobalStockAfterCheckout(ctx, []appstock.SoldItem{{VariantID: "v-1kg", Quantity: 0}}, "chk-008", "", ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, uc.UpdateGlobalStockAfterCheckout(ctx, []appstock.SoldItem{{VariantID: "", Quantity: 1}}, "chk-009", "", ""), domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestCalculateGlobalStock_ProductoInexistente(t *testing.T) {
	uc, _ := buildUseCase(buildTomatoes())

	calc, err := uc.CalculateGlobalStock(context.Background(), "p-fantasma")
	require.NoError(t, err)
	assert.Nil(t, calc, "(nil, nil) para producto inexistente; el handler lo mapea a 404")
}

func TestCalculateGlobalStock_Existente(t *testing.T) {
	uc, _ := buildUseCase(buildTomatoes())

	calc, err := uc.CalculateGlobalStock(context.Background(), "p-tomates")
	require.NoError(t, err)
	require.NotNil(t, calc)
	d2, ok := calc.Find("v-500g")
	require.True(t, ok)
	assert.Equal(t, int64(20), d2.CalculatedStock)
}

func TestCanSellVariant_Consulta(t *testing.T) {
	uc, _ := buildUseCase(buildTomatoes())
	ctx := context.Background()

	ok, err := uc.CanSellVariant(ctx, "v-500g", 20)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = uc.CanSellVariant(ctx, "v-500g", 21)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = uc.CanSellVariant(ctx, "v-fantasma", 1)
	assert.ErrorIs(t, err, domain.ErrVariantNotFound)
}
