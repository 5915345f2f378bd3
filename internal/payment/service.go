package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"librarysys/internal/lending"
)

// Service implements the fee-settlement flows. Settlement is decoupled
// from borrow/return state: a gateway failure never leaves lending state
// half-mutated because nothing here writes to the store.
type Service struct {
	books   BookLookup
	fees    FeeSource
	gateway Gateway
}

func NewService(books BookLookup, fees FeeSource, gateway Gateway) *Service {
	return &Service{books: books, fees: fees, gateway: gateway}
}

// PayLateFees charges the patron's current late fee for a book through
// the gateway.
func (s *Service) PayLateFees(ctx context.Context, patronID string, bookID int64) lending.Result {
	if !lending.ValidPatronID(patronID) {
		return lending.Failure(lending.KindValidation, "Invalid patron ID. Must be exactly 6 digits.")
	}
	if bookID <= 0 {
		return lending.Failure(lending.KindValidation, "Invalid book ID.")
	}

	if _, err := s.books.GetBookByID(ctx, bookID); err != nil {
		if errors.Is(err, lending.ErrNotFound) {
			return lending.Failure(lending.KindNotFound, "Book not found.")
		}
		return lending.Failure(lending.KindStorage, "Database error occurred while looking up the book.")
	}

	fee := s.fees.LateFee(ctx, patronID, bookID)
	if fee.Status == lending.FeeStatusError {
		return lending.Failure(lending.KindStorage, "Could not calculate the late fee.")
	}
	if fee.FeeAmount <= 0 {
		return lending.Failure(lending.KindConflict, "No late fee due.")
	}

	amount := lending.RoundCents(fee.FeeAmount)
	memo := fmt.Sprintf("Late fee for book_id=%d", bookID)

	ok, ref, err := s.gateway.ProcessPayment(ctx, patronID, amount, memo)
	if err != nil {
		return lending.Failure(lending.KindGateway, fmt.Sprintf("Payment error: %v", err))
	}
	if !ok {
		return lending.Failure(lending.KindConflict, fmt.Sprintf("Payment declined: %s", ref))
	}

	return lending.Success(fmt.Sprintf("Paid $%.2f. Transaction: %s", amount, ref))
}

// RefundLateFeePayment refunds a prior fee payment. The amount is checked
// against the fee cap before the gateway is ever invoked.
func (s *Service) RefundLateFeePayment(ctx context.Context, transactionID string, amount float64) lending.Result {
	if strings.TrimSpace(transactionID) == "" {
		return lending.Failure(lending.KindValidation, "Invalid transaction ID.")
	}
	if amount <= 0 {
		return lending.Failure(lending.KindValidation, "Refund amount must be positive.")
	}
	if amount > lending.MaxLateFee {
		return lending.Failure(lending.KindValidation, "Refund exceeds $15 maximum.")
	}

	rounded := lending.RoundCents(amount)
	ok, ref, err := s.gateway.RefundPayment(ctx, transactionID, rounded)
	if err != nil {
		return lending.Failure(lending.KindGateway, fmt.Sprintf("Refund error: %v", err))
	}
	if !ok {
		return lending.Failure(lending.KindConflict, fmt.Sprintf("Refund declined: %s", ref))
	}

	return lending.Success(fmt.Sprintf("Refunded $%.2f. Reference: %s", rounded, ref))
}
