package product

import (
	"context"

	domain "github.com/shopfolk/sales-api/internal/domain/product"
	"github.com/shopfolk/sales-api/internal/domain/storage"
	"github.com/shopfolk/sales-api/internal/infrastructure/id"
	"github.com/shopfolk/sales-api/internal/observability"
	"github.com/shopfolk/sales-api/internal/observability/logctx"
	"github.com/shopspring/decimal"
)

type Service struct {
	store       storage.Gateway
	idGen       id.Generator
	log         observability.Logger
	adjustments observability.Counter // stock_adjustments_total{direction,outcome}
}

func NewService(store storage.Gateway, idGen id.Generator, tel observability.Telemetry) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Service{
		store:       store,
		idGen:       idGen,
		log:         tel.Logger().With(observability.F("component", "product_service")),
		adjustments: tel.Counter(observability.MStockAdjustments),
	}
}

type Input struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Product, error) {
	entity, err := domain.New(s.idGen.NewID(), in.Name, in.Description, in.Price, in.StockQuantity)
	if err != nil {
		return nil, err
	}
	if err := s.store.Products().Save(ctx, entity); err != nil {
		return nil, err
	}
	logctx.FromOr(ctx, s.log).Info("product_created",
		observability.F("product_id", entity.ID),
		observability.F("stock", entity.StockQuantity),
	)
	return entity, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Product, error) {
	var updated *domain.Product
	err := s.store.WithinTx(ctx, func(tx storage.Gateway) error {
		entity, err := tx.Products().Get(ctx, id)
		if err != nil {
			return err
		}
		if in.Price.IsNegative() {
			return domain.ErrInvalidPrice
		}
		if in.StockQuantity < 0 {
			return domain.ErrInvalidStock
		}

		entity.Name = in.Name
		entity.Description = in.Description
		entity.Price = in.Price
		entity.StockQuantity = in.StockQuantity
		if err := tx.Products().Save(ctx, entity); err != nil {
			return err
		}
		updated = entity
		return nil
	})
	if err != nil {
		return nil, err
	}

	logctx.FromOr(ctx, s.log).Info("product_updated", observability.F("product_id", id))
	return updated, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.store.Products().Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*domain.Product, error) {
	return s.store.Products().List(ctx)
}

func (s *Service) SearchByName(ctx context.Context, name string) ([]*domain.Product, error) {
	return s.store.Products().SearchByName(ctx, name)
}

func (s *Service) ListInStock(ctx context.Context) ([]*domain.Product, error) {
	return s.store.Products().ListInStock(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Products().Delete(ctx, id); err != nil {
		return err
	}
	logctx.FromOr(ctx, s.log).Info("product_deleted", observability.F("product_id", id))
	return nil
}

// AdjustStock reserves (negative delta) or restores (positive delta)
// stock through the ledger inside its own transaction. The order
// service routes through the same ledger within its larger
// transactions, so this stays the only write path for stock.
func (s *Service) AdjustStock(ctx context.Context, id string, delta int) (*domain.Product, error) {
	var adjusted *domain.Product
	err := s.store.WithinTx(ctx, func(tx storage.Gateway) error {
		p, err := domain.NewLedger(tx.Products()).Adjust(ctx, id, delta)
		if err != nil {
			return err
		}
		adjusted = p
		return nil
	})

	direction := "restore"
	if delta < 0 {
		direction = "reserve"
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	s.adjustments.Add(1,
		observability.L("direction", direction),
		observability.L("outcome", outcome),
	)

	if err != nil {
		return nil, err
	}
	logctx.FromOr(ctx, s.log).Info("stock_adjusted",
		observability.F("product_id", id),
		observability.F("delta", delta),
		observability.F("stock", adjusted.StockQuantity),
	)
	return adjusted, nil
}
