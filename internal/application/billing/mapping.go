package billing

import (
	"github.com/jhoicas/emza-api/internal/application/dto"
	"github.com/jhoicas/emza-api/internal/domain/entity"
)

func toSaleBillResponse(b *entity.SaleBill) *dto.SaleBillResponse {
	out := &dto.SaleBillResponse{
		ID:            b.ID,
		DisplayNumber: b.DisplayNumber,
		CustomerID:    b.CustomerID,
		Discount:      b.Discount,
		Amount:        b.Amount(),
		FinalAmount:   b.FinalAmount(),
		Lines:         make([]dto.SaleLineResponse, 0, len(b.Lines)),
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	for _, l := range b.Lines {
		out.Lines = append(out.Lines, dto.SaleLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.Price,
			Amount:    l.Amount(),
		})
	}
	return out
}

func toPurchaseBillResponse(b *entity.PurchaseBill) *dto.PurchaseBillResponse {
	out := &dto.PurchaseBillResponse{
		ID:            b.ID,
		DisplayNumber: b.DisplayNumber,
		Amount:        b.Amount(),
		Lines:         make([]dto.PurchaseLineResponse, 0, len(b.Lines)),
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	for _, l := range b.Lines {
		out.Lines = append(out.Lines, dto.PurchaseLineResponse{
			ID:       l.ID,
			StockID:  l.StockID,
			Quantity: l.Quantity,
			Price:    l.Price,
			Amount:   l.Amount(),
		})
	}
	return out
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:          c.ID,
		Name:        c.Name,
		PhoneNumber: c.PhoneNumber,
		Address:     c.Address,
		WalkIn:      c.WalkIn,
	}
}
