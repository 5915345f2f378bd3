// Package payment settles late fees against an external payment gateway.
// The gateway is a capability the engine depends on but never owns: every
// failure mode it has (transport faults, explicit declines) is normalized
// into the engine's own result shape so callers never see the gateway's
// error vocabulary.
package payment

import (
	"context"

	"librarysys/internal/lending"
)

// Gateway is the external payment capability. ok reports whether the
// gateway approved the operation; reference carries its transaction or
// decline reference. A non-nil error is a gateway-level fault.
type Gateway interface {
	ProcessPayment(ctx context.Context, patronID string, amount float64, memo string) (ok bool, reference string, err error)
	RefundPayment(ctx context.Context, transactionID string, amount float64) (ok bool, reference string, err error)
}

// BookLookup is the slice of the inventory store the settlement flow
// needs. Satisfied by lending.Store implementations.
type BookLookup interface {
	GetBookByID(ctx context.Context, id int64) (lending.Book, error)
}

// FeeSource recomputes the fee currently owed. Satisfied by
// *lending.Service.
type FeeSource interface {
	LateFee(ctx context.Context, patronID string, bookID int64) lending.FeeResult
}
