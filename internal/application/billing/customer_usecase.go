package billing

import (
	"context"
	"strings"

	"github.com/jhoicas/emza-api/internal/application/dto"
	"github.com/jhoicas/emza-api/internal/domain"
	"github.com/jhoicas/emza-api/internal/domain/entity"
	"github.com/jhoicas/emza-api/internal/domain/repository"
)

// CustomerUseCase casos de uso para clientes (facturación).
type CustomerUseCase struct {
	repo repository.CustomerRepository
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository) *CustomerUseCase {
	return &CustomerUseCase{repo: repo}
}

// Create crea un nuevo cliente. El cliente de mostrador solo se crea de forma implícita.
func (uc *CustomerUseCase) Create(ctx context.Context, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	customer := &entity.Customer{
		Name:        name,
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		Address:     strings.TrimSpace(in.Address),
	}
	if err := uc.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return toCustomerResponse(customer), nil
}

// List lista clientes.
func (uc *CustomerUseCase) List(ctx context.Context, limit, offset int) ([]*dto.CustomerResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toCustomerResponse(c))
	}
	return out, nil
}

// WalkIn devuelve el cliente de mostrador, creándolo si aún no existe.
func (uc *CustomerUseCase) WalkIn(ctx context.Context) (*dto.CustomerResponse, error) {
	c, err := uc.repo.GetOrCreateWalkIn(ctx)
	if err != nil {
		return nil, err
	}
	return toCustomerResponse(c), nil
}
