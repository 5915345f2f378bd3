package lending

import (
	"context"
	"time"
)

// Store is the inventory contract the lending engine runs against.
//
// The two write operations each pair a borrow-record mutation with the
// matching available_copies update and must apply both as a single atomic
// unit per book: concurrent borrows of the last copy must produce exactly
// one winner, and available_copies must stay within [0, total_copies].
type Store interface {
	GetBookByID(ctx context.Context, id int64) (Book, error)

	// GetPatronBorrowCount counts the patron's outstanding records.
	GetPatronBorrowCount(ctx context.Context, patronID string) (int, error)

	// GetPatronBorrows lists the patron's borrow records, outstanding
	// only unless includeReturned is set.
	GetPatronBorrows(ctx context.Context, patronID string, includeReturned bool) ([]BorrowRecord, error)

	// CreateBorrow inserts a borrow record and decrements the book's
	// available_copies, guarded by available_copies > 0. Returns
	// ErrUnavailable when the guard fails and ErrAlreadyBorrowed when an
	// outstanding record for the pair exists.
	CreateBorrow(ctx context.Context, patronID string, bookID int64, borrowDate, dueDate time.Time) error

	// CloseBorrow sets the return date on the single outstanding record
	// for the pair and increments available_copies, clamped to
	// total_copies. Returns the closed record, or ErrNotBorrowed when no
	// outstanding record exists.
	CloseBorrow(ctx context.Context, patronID string, bookID int64, returnDate time.Time) (BorrowRecord, error)
}
