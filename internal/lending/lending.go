package lending

import (
	"errors"
	"time"
)

const (
	// MaxBorrowLimit is the most books a patron may have outstanding at once.
	MaxBorrowLimit = 5

	// LoanPeriod is how long a copy may be kept before late fees accrue.
	LoanPeriod = 14 * 24 * time.Hour
)

var (
	// ErrNotFound is returned when a book is not found.
	ErrNotFound = errors.New("book not found")

	// ErrUnavailable is returned when no copies are left to lend. The
	// conditional decrement in the store reports this to the loser of a
	// race on the last copy.
	ErrUnavailable = errors.New("no copies available")

	// ErrNotBorrowed is returned when no outstanding borrow record exists
	// for a (patron, book) pair.
	ErrNotBorrowed = errors.New("book not borrowed by this patron")

	// ErrAlreadyBorrowed is returned when the patron already has an
	// outstanding record for the book.
	ErrAlreadyBorrowed = errors.New("book already borrowed by this patron")

	// ErrInvalidPatronID is returned for patron ids that are not exactly
	// six decimal digits.
	ErrInvalidPatronID = errors.New("invalid patron id")
)

// Book is the lending engine's view of an inventory record.
type Book struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
}

// BorrowRecord tracks one loan of one copy. ReturnDate stays nil while the
// loan is outstanding and is set exactly once on return.
type BorrowRecord struct {
	ID         int64      `json:"id"`
	PatronID   string     `json:"patron_id"`
	BookID     int64      `json:"book_id"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
}

// Outstanding reports whether the loan is still open.
func (r BorrowRecord) Outstanding() bool {
	return r.ReturnDate == nil
}

// ValidPatronID reports whether id is exactly six decimal digits. Patrons
// are identified only by this key; there is no stored patron entity.
func ValidPatronID(id string) bool {
	if len(id) != 6 {
		return false
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
