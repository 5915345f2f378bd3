package catalog

import (
	"errors"
	"time"
)

const (
	MaxTitleLen  = 200
	MaxAuthorLen = 100
)

var (
	// ErrNotFound is returned when a book is not in the catalog.
	ErrNotFound = errors.New("book not found")

	// ErrDuplicateISBN is returned when a book with the same ISBN already
	// exists.
	ErrDuplicateISBN = errors.New("isbn already exists")
)

// ValidationError reports a rejected catalog input. The message is the
// user-facing text.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Book is a catalog record. total_copies is fixed at creation;
// available_copies is mutated only through borrow and return.
type Book struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SearchQuery defines a catalog search. Type narrows the match to one
// field; empty matches title, author, and ISBN.
type SearchQuery struct {
	Q      string
	Type   string // "title", "author", "isbn", or ""
	Limit  int
	Offset int
}
