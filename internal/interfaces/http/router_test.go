package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/emza-api/internal/application/billing"
	"github.com/jhoicas/emza-api/internal/application/dto"
	"github.com/jhoicas/emza-api/internal/application/inventory"
	"github.com/jhoicas/emza-api/internal/application/usecase"
	"github.com/jhoicas/emza-api/internal/infrastructure/idempotency"
	"github.com/jhoicas/emza-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/emza-api/internal/interfaces/http"
	"github.com/jhoicas/emza-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// buildTestApp arma la API completa sobre el almacén en memoria.
// idem puede ser nil (sin idempotencia).
func buildTestApp(t *testing.T, idem billing.IdempotencyStore) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repos()
	ledger := inventory.NewLedger(store, inventory.LedgerConfig{})
	engine := inventory.NewEngine(store, ledger, repos.Products)
	resolver := inventory.NewResolver(repos.Products, repos.RecipeLines, repos.Stocks)
	cfg := billing.Config{SalePrefix: "EMZA", PurchasePrefix: "PUR"}

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	app.Use(requestid.New())
	app.Use(apphttp.RequestLogger(logger.Nop()))
	apphttp.Router(app, apphttp.RouterDeps{
		StockUC:        usecase.NewStockUseCase(store.StockTypes(), repos.Stocks, repos.Movements, ledger),
		ProductUC:      usecase.NewProductUseCase(repos.Products, repos.RecipeLines, repos.Stocks, engine, resolver),
		CustomerUC:     billing.NewCustomerUseCase(repos.Customers),
		SaleBillUC:     billing.NewSaleBillUseCase(store, engine, repos, idem, cfg, nil),
		PurchaseBillUC: billing.NewPurchaseBillUseCase(store, ledger, repos, idem, cfg, nil),
	})
	return app
}

// call lanza la petición y decodifica el cuerpo en out (si no es nil).
func call(t *testing.T, app *fiber.App, method, path string, body any, out any, headers ...string) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type catalog struct {
	oilID, bottleID, productID int64
}

// seedCR7 crea por HTTP: aceite (100 ml), frasco (50 pcs) y CR7 = 9 ml + 1 frasco a 25000.
func seedCR7(t *testing.T, app *fiber.App) catalog {
	t.Helper()
	var ml, pcs dto.StockTypeResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/stock-types",
		dto.CreateStockTypeRequest{Name: "Aceite", Metric: "ml"}, &ml))
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/stock-types",
		dto.CreateStockTypeRequest{Name: "Frascos", Metric: "pcs"}, &pcs))

	var oil, bottle dto.StockResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/stocks",
		dto.CreateStockRequest{Name: "Aceite CR7", StockTypeID: ml.ID, OpeningQuantity: 100}, &oil))
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/stocks",
		dto.CreateStockRequest{Name: "Frasco 30ml", StockTypeID: pcs.ID, OpeningQuantity: 50}, &bottle))

	var product dto.ProductResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/products",
		dto.CreateProductRequest{Name: "CR7 30ml", Price: decimal.NewFromInt(25000)}, &product))
	path := fmt.Sprintf("/api/products/%d/recipe", product.ID)
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, path,
		dto.AddRecipeLineRequest{StockID: oil.ID, Quantity: 9}, nil))
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, path,
		dto.AddRecipeLineRequest{StockID: bottle.ID, Quantity: 1}, nil))

	return catalog{oilID: oil.ID, bottleID: bottle.ID, productID: product.ID}
}

func availability(t *testing.T, app *fiber.App, productID int64) int64 {
	t.Helper()
	var out dto.AvailabilityResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet,
		fmt.Sprintf("/api/products/%d/availability", productID), nil, &out))
	return out.AvailableQuantity
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_ProductEngineFlow(t *testing.T) {
	app := buildTestApp(t, nil)
	cat := seedCR7(t, app)

	assert.Equal(t, int64(11), availability(t, app, cat.productID))

	var product dto.ProductResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, fmt.Sprintf("/api/products/%d", cat.productID), nil, &product))
	require.Len(t, product.Recipe, 2)
	assert.Equal(t, "Aceite CR7", product.Recipe[0].StockName)

	var errBody dto.ErrorResponse
	status := call(t, app, http.MethodPost, fmt.Sprintf("/api/products/%d/sell", cat.productID),
		dto.QuantityRequest{Quantity: 12}, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody.Code)

	var avail dto.AvailabilityResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, fmt.Sprintf("/api/products/%d/sell", cat.productID),
		dto.QuantityRequest{Quantity: 11}, &avail))
	assert.Zero(t, avail.AvailableQuantity)

	var oil dto.StockResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, fmt.Sprintf("/api/stocks/%d", cat.oilID), nil, &oil))
	assert.Equal(t, int64(99), oil.SaleQuantity)
	assert.Equal(t, int64(1), oil.BalanceQuantity)

	var movs dto.StockMovementListResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, fmt.Sprintf("/api/stocks/%d/movements", cat.oilID), nil, &movs))
	require.Len(t, movs.Items, 1)
	assert.Equal(t, "SALE", movs.Items[0].Type)

	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, fmt.Sprintf("/api/products/%d/return", cat.productID),
		dto.QuantityRequest{Quantity: 2}, &avail))
	assert.Equal(t, int64(2), avail.AvailableQuantity)
}

func TestRouter_LedgerPrimitives(t *testing.T) {
	app := buildTestApp(t, nil)
	cat := seedCR7(t, app)

	var res dto.LedgerResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, fmt.Sprintf("/api/stocks/%d/purchase", cat.bottleID),
		dto.QuantityRequest{Quantity: 10}, &res))
	assert.Equal(t, int64(10), res.Total)
	assert.Equal(t, int64(60), res.Stock.BalanceQuantity)

	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, fmt.Sprintf("/api/stocks/%d/sale", cat.bottleID),
		dto.QuantityRequest{Quantity: 5}, &res))
	assert.Equal(t, int64(55), res.Stock.BalanceQuantity)

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, call(t, app, http.MethodPost, fmt.Sprintf("/api/stocks/%d/sale", cat.bottleID),
		dto.QuantityRequest{Quantity: 56}, &errBody))
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody.Code)

	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodPost, fmt.Sprintf("/api/stocks/%d/sale-return", cat.bottleID),
		dto.QuantityRequest{Quantity: 6}, &errBody))
	assert.Equal(t, "VALIDATION", errBody.Code)
}

func TestRouter_ErrorMapping(t *testing.T) {
	app := buildTestApp(t, nil)
	cat := seedCR7(t, app)

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodPost, "/api/stock-types",
		dto.CreateStockTypeRequest{Name: "Peso", Metric: "kg"}, &errBody))
	assert.Equal(t, "VALIDATION", errBody.Code)
	assert.Contains(t, errBody.Message, "Metric")

	assert.Equal(t, http.StatusConflict, call(t, app, http.MethodPost, "/api/stocks",
		dto.CreateStockRequest{Name: "Aceite CR7", StockTypeID: 1}, &errBody))
	assert.Equal(t, "DUPLICATE", errBody.Code)

	assert.Equal(t, http.StatusConflict, call(t, app, http.MethodPost, fmt.Sprintf("/api/products/%d/recipe", cat.productID),
		dto.AddRecipeLineRequest{StockID: cat.oilID, Quantity: 1}, &errBody))
	assert.Equal(t, "DUPLICATE_RECIPE_LINE", errBody.Code)

	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodGet, "/api/products/999", nil, &errBody))
	assert.Equal(t, "NOT_FOUND", errBody.Code)

	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodGet, "/api/stocks/abc", nil, &errBody))
	assert.Equal(t, "INVALID_ID", errBody.Code)

	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodPost, fmt.Sprintf("/api/products/%d/sell", cat.productID),
		dto.QuantityRequest{Quantity: 0}, &errBody))
	assert.Equal(t, "VALIDATION", errBody.Code)

	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodGet, "/api/nope", nil, &errBody))
	assert.Equal(t, "NOT_FOUND", errBody.Code)
}

func TestRouter_SaleBillLifecycle(t *testing.T) {
	app := buildTestApp(t, nil)
	cat := seedCR7(t, app)

	var bill dto.SaleBillResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/sale-bills", dto.CreateSaleBillRequest{
		Discount: decimal.NewFromInt(5000),
		Lines:    []dto.SaleLineRequest{{ProductID: cat.productID, Quantity: 2}},
	}, &bill))
	assert.Equal(t, "EMZA-0001", bill.DisplayNumber)
	assert.True(t, bill.Amount.Equal(decimal.NewFromInt(50000)))
	assert.True(t, bill.FinalAmount.Equal(decimal.NewFromInt(45000)))
	assert.Equal(t, int64(9), availability(t, app, cat.productID))

	billPath := fmt.Sprintf("/api/sale-bills/%d", bill.ID)
	discount := decimal.NewFromInt(1000)
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPatch, billPath,
		dto.UpdateSaleBillRequest{Discount: &discount}, &bill))
	assert.Equal(t, "EMZA-0001", bill.DisplayNumber)
	assert.True(t, bill.FinalAmount.Equal(decimal.NewFromInt(49000)))

	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, billPath+"/lines",
		dto.SaleLineRequest{ProductID: cat.productID, Quantity: 1}, &bill))
	require.Len(t, bill.Lines, 2)
	assert.Equal(t, int64(8), availability(t, app, cat.productID))

	require.Equal(t, http.StatusNoContent, call(t, app, http.MethodDelete,
		fmt.Sprintf("%s/lines/%d", billPath, bill.Lines[1].ID), nil, nil))
	assert.Equal(t, int64(9), availability(t, app, cat.productID))

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, call(t, app, http.MethodPost, "/api/sale-bills", dto.CreateSaleBillRequest{
		Lines: []dto.SaleLineRequest{{ProductID: cat.productID, Quantity: 10}},
	}, &errBody))
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody.Code)

	var list dto.SaleBillListResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/sale-bills", nil, &list))
	assert.Len(t, list.Items, 1)

	require.Equal(t, http.StatusNoContent, call(t, app, http.MethodDelete, billPath, nil, nil))
	assert.Equal(t, int64(11), availability(t, app, cat.productID))
	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodGet, billPath, nil, &errBody))
}

func TestRouter_PurchaseBillCreditsStock(t *testing.T) {
	app := buildTestApp(t, nil)
	cat := seedCR7(t, app)

	var bill dto.PurchaseBillResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/purchase-bills", dto.CreatePurchaseBillRequest{
		Lines: []dto.PurchaseLineRequest{
			{StockID: cat.oilID, Quantity: 90, Price: decimal.NewFromInt(500)},
			{StockID: cat.bottleID, Quantity: 10, Price: decimal.NewFromInt(1200)},
		},
	}, &bill))
	assert.Equal(t, "PUR-0001", bill.DisplayNumber)
	assert.True(t, bill.Amount.Equal(decimal.NewFromInt(57000)))
	assert.Equal(t, int64(21), availability(t, app, cat.productID))

	var got dto.PurchaseBillResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, fmt.Sprintf("/api/purchase-bills/%d", bill.ID), nil, &got))
	assert.Len(t, got.Lines, 2)
}

func TestRouter_IdempotencyKeyReplaysBill(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	app := buildTestApp(t, idempotency.NewRedisStore(client, time.Hour))
	cat := seedCR7(t, app)

	req := dto.CreateSaleBillRequest{Lines: []dto.SaleLineRequest{{ProductID: cat.productID, Quantity: 1}}}
	var first, second dto.SaleBillResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/sale-bills", req, &first,
		apphttp.IdempotencyHeader, "pos-42"))
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/sale-bills", req, &second,
		apphttp.IdempotencyHeader, "pos-42"))

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(10), availability(t, app, cat.productID), "el reintento no vuelve a descontar")
}

func TestRouter_Customers(t *testing.T) {
	app := buildTestApp(t, nil)

	var c dto.CustomerResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/customers",
		dto.CreateCustomerRequest{Name: "Ana", PhoneNumber: "3001234567"}, &c))
	assert.False(t, c.WalkIn)

	var list []dto.CustomerResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/customers", nil, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Ana", list[0].Name)
}
