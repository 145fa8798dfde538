package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/emza-api/internal/application/billing"
	"github.com/jhoicas/emza-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	StockUC        *usecase.StockUseCase
	ProductUC      *usecase.ProductUseCase
	CustomerUC     *billing.CustomerUseCase
	SaleBillUC     *billing.SaleBillUseCase
	PurchaseBillUC *billing.PurchaseBillUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	stockHandler := NewStockHandler(deps.StockUC)
	stockTypes := api.Group("/stock-types")
	stockTypes.Post("/", stockHandler.CreateStockType)
	stockTypes.Get("/", stockHandler.ListStockTypes)

	// Stocks y primitivas del libro
	stocks := api.Group("/stocks")
	stocks.Post("/", stockHandler.Create)
	stocks.Get("/", stockHandler.List)
	stocks.Get("/:id", stockHandler.GetByID)
	stocks.Get("/:id/movements", stockHandler.ListMovements)
	stocks.Post("/:id/purchase", stockHandler.Purchase)
	stocks.Post("/:id/sale", stockHandler.Sale)
	stocks.Post("/:id/sale-return", stockHandler.SaleReturn)

	// Products, recetas y motor
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)
	products.Get("/:id/availability", productHandler.Availability)
	products.Post("/:id/recipe", productHandler.AddRecipeLine)
	products.Delete("/:id/recipe/:stockId", productHandler.RemoveRecipeLine)
	products.Post("/:id/sell", productHandler.Sell)
	products.Post("/:id/purchase", productHandler.Purchase)
	products.Post("/:id/return", productHandler.ReturnSale)

	customers := api.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)

	sales := api.Group("/sale-bills")
	saleHandler := NewSaleBillHandler(deps.SaleBillUC)
	sales.Post("/", saleHandler.Create)
	sales.Get("/", saleHandler.List)
	sales.Get("/:id", saleHandler.GetByID)
	sales.Patch("/:id", saleHandler.Update)
	sales.Delete("/:id", saleHandler.Delete)
	sales.Post("/:id/lines", saleHandler.AddLine)
	sales.Delete("/:id/lines/:lineId", saleHandler.DeleteLine)

	purchases := api.Group("/purchase-bills")
	purchaseHandler := NewPurchaseBillHandler(deps.PurchaseBillUC)
	purchases.Post("/", purchaseHandler.Create)
	purchases.Get("/", purchaseHandler.List)
	purchases.Get("/:id", purchaseHandler.GetByID)
	purchases.Post("/:id/lines", purchaseHandler.AddLine)
}
