package customer

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/shopfolk/sales-api/internal/domain/customer"
	"github.com/shopfolk/sales-api/internal/domain/storage"
	"github.com/shopfolk/sales-api/internal/infrastructure/id"
	"github.com/shopfolk/sales-api/internal/observability"
	"github.com/shopfolk/sales-api/internal/observability/logctx"
)

type Service struct {
	store storage.Gateway
	idGen id.Generator
	log   observability.Logger
}

func NewService(store storage.Gateway, idGen id.Generator, logger observability.Logger) *Service {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Service{
		store: store,
		idGen: idGen,
		log:   logger.With(observability.F("component", "customer_service")),
	}
}

type Input struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// Create registers a new customer. The uniqueness check and the insert
// run in one transaction so two concurrent creates cannot both claim
// the same email.
func (s *Service) Create(ctx context.Context, in Input) (*domain.Customer, error) {
	logger := logctx.FromOr(ctx, s.log)

	var created *domain.Customer
	err := s.store.WithinTx(ctx, func(tx storage.Gateway) error {
		if err := s.ensureEmailFree(ctx, tx, in.Email, ""); err != nil {
			return err
		}

		entity, err := domain.New(s.idGen.NewID(), in.Name, in.Email, in.Phone, in.Address)
		if err != nil {
			return err
		}
		if err := tx.Customers().Save(ctx, entity); err != nil {
			return err
		}
		created = entity
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("customer_created", observability.F("customer_id", created.ID))
	return created, nil
}

// Update rewrites the customer's profile fields. The email uniqueness
// rule excludes the customer itself.
func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Customer, error) {
	logger := logctx.FromOr(ctx, s.log)

	var updated *domain.Customer
	err := s.store.WithinTx(ctx, func(tx storage.Gateway) error {
		entity, err := tx.Customers().Get(ctx, id)
		if err != nil {
			return err
		}
		if err := s.ensureEmailFree(ctx, tx, in.Email, id); err != nil {
			return err
		}

		entity.Name = in.Name
		entity.Email = in.Email
		entity.Phone = in.Phone
		entity.Address = in.Address
		if err := tx.Customers().Save(ctx, entity); err != nil {
			return err
		}
		updated = entity
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("customer_updated", observability.F("customer_id", id))
	return updated, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Customer, error) {
	return s.store.Customers().Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*domain.Customer, error) {
	return s.store.Customers().List(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Customers().Delete(ctx, id); err != nil {
		return err
	}
	logctx.FromOr(ctx, s.log).Info("customer_deleted", observability.F("customer_id", id))
	return nil
}

// ensureEmailFree fails when another customer (excluding selfID) already
// owns the email.
func (s *Service) ensureEmailFree(ctx context.Context, tx storage.Gateway, email, selfID string) error {
	existing, err := tx.Customers().FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.ID != selfID {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateEmail, email)
		}
		return nil
	case errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return err
	}
}
