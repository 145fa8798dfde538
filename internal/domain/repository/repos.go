package repository

// Repos agrupa los repositorios atados a una misma transacción.
// Lo entrega el TxRunner de infraestructura a los casos de uso de facturación.
type Repos struct {
	Stocks        StockRepository
	Movements     StockMovementRepository
	Products      ProductRepository
	RecipeLines   RecipeLineRepository
	Customers     CustomerRepository
	SaleBills     SaleBillRepository
	PurchaseBills PurchaseBillRepository
}
