// Package storage defines the gateway through which all persistence
// flows. Services never hold a repository directly; they acquire one
// from a Gateway so multi-step mutations can run against a single
// transaction.
package storage

import (
	"context"

	"github.com/shopfolk/sales-api/internal/domain/customer"
	"github.com/shopfolk/sales-api/internal/domain/order"
	"github.com/shopfolk/sales-api/internal/domain/product"
)

type Gateway interface {
	Customers() customer.Repository
	Products() product.Repository
	Orders() order.Repository

	// WithinTx runs fn against a transaction-scoped gateway. If fn
	// returns an error every write made through tx is rolled back;
	// otherwise the transaction commits. Calling WithinTx on a gateway
	// that is already transactional joins the enclosing transaction.
	WithinTx(ctx context.Context, fn func(tx Gateway) error) error
}
