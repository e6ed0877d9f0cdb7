package order

import (
	"context"
	"time"

	domain "github.com/shopfolk/sales-api/internal/domain/order"
	"github.com/shopfolk/sales-api/internal/domain/storage"
	"github.com/shopspring/decimal"
)

// OrderDTO is the assembled read model: customer and product names are
// denormalized onto it for display.
type OrderDTO struct {
	ID           string
	CustomerID   string
	CustomerName string
	OrderDate    time.Time
	Status       domain.Status
	TotalAmount  decimal.Decimal
	Items        []ItemDTO
}

type ItemDTO struct {
	ID          string
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// assemble builds the DTO for an order, resolving display names through
// the given gateway. Referential integrity guarantees the lookups
// succeed for any persisted order.
func assemble(ctx context.Context, gw storage.Gateway, o *domain.Order) (*OrderDTO, error) {
	cust, err := gw.Customers().Get(ctx, o.CustomerID)
	if err != nil {
		return nil, err
	}

	items := make([]ItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		p, err := gw.Products().Get(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		items = append(items, ItemDTO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: p.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal(),
		})
	}

	return &OrderDTO{
		ID:           o.ID,
		CustomerID:   o.CustomerID,
		CustomerName: cust.Name,
		OrderDate:    o.OrderDate,
		Status:       o.Status,
		TotalAmount:  o.TotalAmount,
		Items:        items,
	}, nil
}

func assembleAll(ctx context.Context, gw storage.Gateway, orders []*domain.Order) ([]*OrderDTO, error) {
	out := make([]*OrderDTO, 0, len(orders))
	for _, o := range orders {
		dto, err := assemble(ctx, gw, o)
		if err != nil {
			return nil, err
		}
		out = append(out, dto)
	}
	return out, nil
}
