package catalog

import (
	"context"
	"fmt"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// AddBook validates and inserts a new catalog record. All copies start
// available. Validation happens before any read or write; the first
// failure wins.
func (s *Service) AddBook(ctx context.Context, title, author, isbn string, totalCopies int) (Book, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)

	if title == "" {
		return Book{}, &ValidationError{Message: "Title is required."}
	}
	if len(title) > MaxTitleLen {
		return Book{}, &ValidationError{Message: fmt.Sprintf("Title must be less than or equal to %d characters.", MaxTitleLen)}
	}
	if author == "" {
		return Book{}, &ValidationError{Message: "Author is required."}
	}
	if len(author) > MaxAuthorLen {
		return Book{}, &ValidationError{Message: fmt.Sprintf("Author must be less than or equal to %d characters.", MaxAuthorLen)}
	}
	if !isISBN13(isbn) {
		return Book{}, &ValidationError{Message: "ISBN must be exactly 13 digits."}
	}
	if totalCopies <= 0 {
		return Book{}, &ValidationError{Message: "Total copies must be a positive integer."}
	}

	if _, err := s.repo.GetByISBN(ctx, isbn); err == nil {
		return Book{}, ErrDuplicateISBN
	} else if err != ErrNotFound {
		return Book{}, fmt.Errorf("check duplicate isbn: %w", err)
	}

	book := Book{
		Title:           title,
		Author:          author,
		ISBN:            isbn,
		TotalCopies:     totalCopies,
		AvailableCopies: totalCopies,
	}
	if err := s.repo.Insert(ctx, &book); err != nil {
		return Book{}, err
	}
	return book, nil
}

// Search returns catalog books matching the query.
func (s *Service) Search(ctx context.Context, q SearchQuery) ([]Book, int, error) {
	return s.repo.List(ctx, q)
}

// GetByISBN returns a book by its ISBN.
func (s *Service) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	return s.repo.GetByISBN(ctx, isbn)
}

func isISBN13(isbn string) bool {
	if len(isbn) != 13 {
		return false
	}
	for _, c := range isbn {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
