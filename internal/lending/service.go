package lending

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const msgInvalidPatronID = "Invalid patron ID. Must be exactly 6 digits."

// ResultKind classifies a failed operation so transport layers can pick a
// status code without parsing the message text.
type ResultKind int

const (
	KindOK ResultKind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindStorage
	KindGateway
)

// Result is the two-valued outcome every lending and fee-settlement
// operation reports. No operation lets an error escape past its boundary;
// storage and gateway failures are converted to messages here.
type Result struct {
	OK      bool       `json:"success"`
	Message string     `json:"message"`
	Kind    ResultKind `json:"-"`
}

// Success builds a successful Result.
func Success(message string) Result {
	return Result{OK: true, Message: message, Kind: KindOK}
}

// Failure builds a failed Result of the given kind.
func Failure(kind ResultKind, message string) Result {
	return Result{OK: false, Message: message, Kind: kind}
}

// Service is the lending engine: it orchestrates borrow and return against
// the Store, enforcing eligibility rules, and consults the fee calculator.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a lending engine over the given store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock overrides the engine's time source. Tests use this to pin
// borrow and return dates.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Borrow lends one copy of a book to a patron. Validation order: patron id
// format, book existence, availability, borrowing limit; the first failure
// wins and nothing is written.
func (s *Service) Borrow(ctx context.Context, patronID string, bookID int64) Result {
	if !ValidPatronID(patronID) {
		return Failure(KindValidation, msgInvalidPatronID)
	}

	book, err := s.store.GetBookByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Failure(KindNotFound, "Book not found.")
		}
		return Failure(KindStorage, "Database error occurred while looking up the book.")
	}

	if book.AvailableCopies <= 0 {
		return Failure(KindConflict, "This book is currently not available.")
	}

	count, err := s.store.GetPatronBorrowCount(ctx, patronID)
	if err != nil {
		return Failure(KindStorage, "Database error occurred while checking borrowed books.")
	}
	if count >= MaxBorrowLimit {
		return Failure(KindConflict, fmt.Sprintf("You have reached the maximum borrowing limit of %d books.", MaxBorrowLimit))
	}

	borrowDate := s.now()
	dueDate := borrowDate.Add(LoanPeriod)

	if err := s.store.CreateBorrow(ctx, patronID, bookID, borrowDate, dueDate); err != nil {
		switch {
		case errors.Is(err, ErrUnavailable):
			// Lost the race for the last copy after the availability check.
			return Failure(KindConflict, "This book is currently not available.")
		case errors.Is(err, ErrAlreadyBorrowed):
			return Failure(KindConflict, "You have already borrowed this book.")
		}
		return Failure(KindStorage, "Database error occurred while creating borrow record.")
	}

	return Success(fmt.Sprintf("Successfully borrowed %q. Due date: %s.", book.Title, dueDate.Format("2006-01-02")))
}

// Return closes the patron's outstanding loan for a book. Any late fee is
// computed for the response only; it is not charged here. Fee settlement
// runs through the payment flow and never blocks a return.
func (s *Service) Return(ctx context.Context, patronID string, bookID int64) Result {
	if !ValidPatronID(patronID) {
		return Failure(KindValidation, msgInvalidPatronID)
	}

	returnDate := s.now()
	record, err := s.store.CloseBorrow(ctx, patronID, bookID, returnDate)
	if err != nil {
		if errors.Is(err, ErrNotBorrowed) || errors.Is(err, ErrNotFound) {
			return Failure(KindNotFound, "Book not borrowed by this patron.")
		}
		return Failure(KindStorage, "Database error occurred while returning the book.")
	}

	fee := CalculateLateFee(record.DueDate, returnDate)
	if fee.FeeAmount > 0 {
		return Success(fmt.Sprintf("Book successfully returned. Late fee due: $%.2f (%d days overdue).", fee.FeeAmount, fee.DaysOverdue))
	}
	return Success("Book successfully returned.")
}

// LateFee reports the fee currently owed by a patron for a book. Invalid
// patron ids and unknown books produce FeeStatusError; a pair with no
// outstanding loan or a loan within its due date produces
// FeeStatusNotOverdue.
func (s *Service) LateFee(ctx context.Context, patronID string, bookID int64) FeeResult {
	if !ValidPatronID(patronID) {
		return FeeResult{Status: FeeStatusError}
	}
	if _, err := s.store.GetBookByID(ctx, bookID); err != nil {
		return FeeResult{Status: FeeStatusError}
	}

	records, err := s.store.GetPatronBorrows(ctx, patronID, false)
	if err != nil {
		return FeeResult{Status: FeeStatusError}
	}
	for _, record := range records {
		if record.BookID == bookID {
			return CalculateLateFee(record.DueDate, s.now())
		}
	}
	return FeeResult{Status: FeeStatusNotOverdue}
}

// BorrowSummary is one borrow record in a patron status report.
type BorrowSummary struct {
	BookID     int64      `json:"book_id"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
}

// PatronStatus is a derived read over borrow records; there is no stored
// patron entity to keep in sync.
type PatronStatus struct {
	PatronID        string          `json:"patron_id"`
	BorrowCount     int             `json:"borrow_count"`
	CurrentBorrowed []BorrowSummary `json:"current_borrowed"`
	History         []BorrowSummary `json:"history"`
	TotalLateFees   float64         `json:"total_late_fees"`
}

// Status reports a patron's outstanding loans, full history, and total
// late fees accrued on outstanding loans.
func (s *Service) Status(ctx context.Context, patronID string) (PatronStatus, error) {
	if !ValidPatronID(patronID) {
		return PatronStatus{}, ErrInvalidPatronID
	}

	records, err := s.store.GetPatronBorrows(ctx, patronID, true)
	if err != nil {
		return PatronStatus{}, fmt.Errorf("list patron borrows: %w", err)
	}

	now := s.now()
	status := PatronStatus{
		PatronID:        patronID,
		CurrentBorrowed: []BorrowSummary{},
		History:         []BorrowSummary{},
	}
	for _, record := range records {
		summary := BorrowSummary{
			BookID:     record.BookID,
			BorrowDate: record.BorrowDate,
			DueDate:    record.DueDate,
			ReturnDate: record.ReturnDate,
		}
		status.History = append(status.History, summary)
		if record.Outstanding() {
			status.CurrentBorrowed = append(status.CurrentBorrowed, summary)
			status.BorrowCount++
			if fee := CalculateLateFee(record.DueDate, now); fee.Status == FeeStatusOK {
				status.TotalLateFees += fee.FeeAmount
			}
		}
	}
	status.TotalLateFees = RoundCents(status.TotalLateFees)
	return status, nil
}
