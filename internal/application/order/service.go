package order

import (
	"context"
	"fmt"
	"time"

	domain "github.com/shopfolk/sales-api/internal/domain/order"
	domprod "github.com/shopfolk/sales-api/internal/domain/product"
	"github.com/shopfolk/sales-api/internal/domain/storage"
	"github.com/shopfolk/sales-api/internal/infrastructure/id"
	"github.com/shopfolk/sales-api/internal/observability"
	"github.com/shopfolk/sales-api/internal/observability/logctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	useCaseCreate       = "order.create"
	useCaseUpdateStatus = "order.update_status"
	useCaseDelete       = "order.delete"
	spanPrefix          = "UC."
)

// Service is the order lifecycle engine. Every mutation runs inside a
// single storage transaction so a failure on any step (missing product,
// insufficient stock, storage error) rolls back everything, including
// stock already reserved for earlier items of the same request.
type Service struct {
	store storage.Gateway
	idGen id.Generator
	tel   observability.Telemetry

	log          observability.Logger
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
}

func NewService(store storage.Gateway, idGen id.Generator, tel observability.Telemetry) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Service{
		store:        store,
		idGen:        idGen,
		tel:          tel,
		log:          tel.Logger().With(observability.F("component", "order_service")),
		reqCounter:   tel.Counter(observability.MUsecaseRequests),
		durHistogram: tel.Histogram(observability.MUsecaseDuration),
	}
}

type CreateInput struct {
	CustomerID string
	Items      []CreateItemInput
}

type CreateItemInput struct {
	ProductID string
	Quantity  int
}

// Create places a new order: resolves the customer, then per item (in
// request order) resolves the product, verifies and reserves stock, and
// snapshots the current unit price. The order is persisted atomically
// with its items in status PENDING.
func (s *Service) Create(ctx context.Context, in CreateInput) (_ *OrderDTO, err error) {
	ctx, span := s.tel.Tracer().Start(ctx, spanPrefix+"CreateOrder",
		attribute.String("use_case", useCaseCreate),
		attribute.String("order.customer_id", in.CustomerID),
		attribute.Int("order.item_count", len(in.Items)),
	)
	defer s.finish(span, useCaseCreate, time.Now(), &err)
	logger := logctx.FromOr(ctx, s.log).With(observability.F("use_case", useCaseCreate))
	logger.Info("create_order_start",
		observability.F("customer_id", in.CustomerID),
		observability.F("item_count", len(in.Items)),
	)

	var dto *OrderDTO
	err = s.store.WithinTx(ctx, func(tx storage.Gateway) error {
		if _, err := tx.Customers().Get(ctx, in.CustomerID); err != nil {
			return err
		}

		ledger := domprod.NewLedger(tx.Products())
		items := make([]domain.Item, 0, len(in.Items))
		for _, req := range in.Items {
			if req.Quantity <= 0 {
				return domain.ErrInvalidQuantity
			}
			p, err := tx.Products().Get(ctx, req.ProductID)
			if err != nil {
				return err
			}
			if p.StockQuantity < req.Quantity {
				return fmt.Errorf("%w: %s", domprod.ErrInsufficientStock, p.Name)
			}

			items = append(items, domain.Item{
				ID:        s.idGen.NewID(),
				ProductID: p.ID,
				Quantity:  req.Quantity,
				UnitPrice: p.Price,
			})
			if _, err := ledger.Adjust(ctx, p.ID, -req.Quantity); err != nil {
				return err
			}
		}

		entity, err := domain.New(s.idGen.NewID(), in.CustomerID, items)
		if err != nil {
			return err
		}
		if err := tx.Orders().Save(ctx, entity); err != nil {
			return err
		}

		dto, err = assemble(ctx, tx, entity)
		return err
	})
	if err != nil {
		logger.Error("create_order_failed", observability.F("error", err.Error()))
		return nil, err
	}

	span.SetAttributes(attribute.String("order.id", dto.ID))
	logger.Info("create_order_success",
		observability.F("order_id", dto.ID),
		observability.F("total_amount", dto.TotalAmount.String()),
	)
	return dto, nil
}

// UpdateStatus moves the order to the requested status. CANCELLED is
// terminal; transitioning into it restores every item's reserved stock
// exactly once.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, next domain.Status) (_ *OrderDTO, err error) {
	ctx, span := s.tel.Tracer().Start(ctx, spanPrefix+"UpdateOrderStatus",
		attribute.String("use_case", useCaseUpdateStatus),
		attribute.String("order.id", orderID),
		attribute.String("order.next_status", string(next)),
	)
	defer s.finish(span, useCaseUpdateStatus, time.Now(), &err)
	logger := logctx.FromOr(ctx, s.log).With(observability.F("use_case", useCaseUpdateStatus))

	var dto *OrderDTO
	err = s.store.WithinTx(ctx, func(tx storage.Gateway) error {
		entity, err := tx.Orders().Get(ctx, orderID)
		if err != nil {
			return err
		}
		if err := entity.UpdateStatus(next); err != nil {
			return err
		}

		if next == domain.StatusCancelled {
			if err := restoreStock(ctx, tx, entity); err != nil {
				return err
			}
		}

		if err := tx.Orders().Save(ctx, entity); err != nil {
			return err
		}
		dto, err = assemble(ctx, tx, entity)
		return err
	})
	if err != nil {
		logger.Error("update_status_failed",
			observability.F("order_id", orderID),
			observability.F("error", err.Error()),
		)
		return nil, err
	}

	logger.Info("update_status_success",
		observability.F("order_id", orderID),
		observability.F("status", string(next)),
	)
	return dto, nil
}

// Delete removes an order that has not entered fulfilment. A PENDING
// order still holds its reservation, so its stock is restored first; a
// CANCELLED order gave the stock back at cancellation time.
func (s *Service) Delete(ctx context.Context, orderID string) (err error) {
	ctx, span := s.tel.Tracer().Start(ctx, spanPrefix+"DeleteOrder",
		attribute.String("use_case", useCaseDelete),
		attribute.String("order.id", orderID),
	)
	defer s.finish(span, useCaseDelete, time.Now(), &err)
	logger := logctx.FromOr(ctx, s.log).With(observability.F("use_case", useCaseDelete))

	err = s.store.WithinTx(ctx, func(tx storage.Gateway) error {
		entity, err := tx.Orders().Get(ctx, orderID)
		if err != nil {
			return err
		}
		if !entity.Deletable() {
			return domain.ErrNotDeletable
		}

		if entity.HoldsStock() {
			if err := restoreStock(ctx, tx, entity); err != nil {
				return err
			}
		}

		return tx.Orders().Delete(ctx, orderID)
	})
	if err != nil {
		logger.Error("delete_order_failed",
			observability.F("order_id", orderID),
			observability.F("error", err.Error()),
		)
		return err
	}

	logger.Info("delete_order_success", observability.F("order_id", orderID))
	return nil
}

func (s *Service) Get(ctx context.Context, orderID string) (*OrderDTO, error) {
	entity, err := s.store.Orders().Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return assemble(ctx, s.store, entity)
}

func (s *Service) List(ctx context.Context) ([]*OrderDTO, error) {
	orders, err := s.store.Orders().List(ctx)
	if err != nil {
		return nil, err
	}
	return assembleAll(ctx, s.store, orders)
}

func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]*OrderDTO, error) {
	orders, err := s.store.Orders().ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return assembleAll(ctx, s.store, orders)
}

func (s *Service) ListByStatus(ctx context.Context, status domain.Status) ([]*OrderDTO, error) {
	orders, err := s.store.Orders().ListByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	return assembleAll(ctx, s.store, orders)
}

// restoreStock returns every item's reserved quantity to its product.
func restoreStock(ctx context.Context, tx storage.Gateway, o *domain.Order) error {
	ledger := domprod.NewLedger(tx.Products())
	for _, item := range o.Items {
		if _, err := ledger.Adjust(ctx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// finish closes the span and records RED metrics for a use case. It is
// meant to be deferred; the deferred call sees the method's final err.
func (s *Service) finish(span trace.Span, useCase string, start time.Time, errp *error) {
	outcome := "success"
	if *errp != nil {
		outcome = "error"
		span.RecordError(*errp)
		span.SetStatus(codes.Error, (*errp).Error())
	} else {
		span.SetStatus(codes.Ok, "OK")
	}
	span.End()

	s.reqCounter.Add(1,
		observability.L("use_case", useCase),
		observability.L("outcome", outcome),
	)
	s.durHistogram.Observe(time.Since(start).Seconds(),
		observability.L("use_case", useCase),
	)
}
