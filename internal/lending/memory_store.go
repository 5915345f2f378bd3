package lending

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded in-memory Store with the same contract
// semantics as the Postgres store. It backs engine and handler tests,
// including the concurrency properties.
type MemoryStore struct {
	mu           sync.Mutex
	books        map[int64]*Book
	records      []*BorrowRecord
	nextBookID   int64
	nextRecordID int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{books: make(map[int64]*Book)}
}

// AddBook inserts a book and returns its assigned id.
func (m *MemoryStore) AddBook(title, author, isbn string, totalCopies, availableCopies int) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextBookID++
	m.books[m.nextBookID] = &Book{
		ID:              m.nextBookID,
		Title:           title,
		Author:          author,
		ISBN:            isbn,
		TotalCopies:     totalCopies,
		AvailableCopies: availableCopies,
	}
	return m.nextBookID
}

// SeedBorrow inserts a borrow record directly, bypassing the availability
// guard. Tests use it to back-date loans.
func (m *MemoryStore) SeedBorrow(patronID string, bookID int64, borrowDate, dueDate time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextRecordID++
	m.records = append(m.records, &BorrowRecord{
		ID:         m.nextRecordID,
		PatronID:   patronID,
		BookID:     bookID,
		BorrowDate: borrowDate,
		DueDate:    dueDate,
	})
	if b, ok := m.books[bookID]; ok && b.AvailableCopies > 0 {
		b.AvailableCopies--
	}
}

func (m *MemoryStore) GetBookByID(ctx context.Context, id int64) (Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.books[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	return *b, nil
}

func (m *MemoryStore) GetPatronBorrowCount(ctx context.Context, patronID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, r := range m.records {
		if r.PatronID == patronID && r.Outstanding() {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) GetPatronBorrows(ctx context.Context, patronID string, includeReturned bool) ([]BorrowRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []BorrowRecord
	for _, r := range m.records {
		if r.PatronID != patronID {
			continue
		}
		if !includeReturned && !r.Outstanding() {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (m *MemoryStore) CreateBorrow(ctx context.Context, patronID string, bookID int64, borrowDate, dueDate time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.books[bookID]
	if !ok {
		return ErrNotFound
	}
	if b.AvailableCopies <= 0 {
		return ErrUnavailable
	}
	for _, r := range m.records {
		if r.PatronID == patronID && r.BookID == bookID && r.Outstanding() {
			return ErrAlreadyBorrowed
		}
	}

	m.nextRecordID++
	m.records = append(m.records, &BorrowRecord{
		ID:         m.nextRecordID,
		PatronID:   patronID,
		BookID:     bookID,
		BorrowDate: borrowDate,
		DueDate:    dueDate,
	})
	b.AvailableCopies--
	return nil
}

func (m *MemoryStore) CloseBorrow(ctx context.Context, patronID string, bookID int64, returnDate time.Time) (BorrowRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.records {
		if r.PatronID == patronID && r.BookID == bookID && r.Outstanding() {
			d := returnDate
			r.ReturnDate = &d
			if b, ok := m.books[bookID]; ok && b.AvailableCopies < b.TotalCopies {
				b.AvailableCopies++
			}
			return *r, nil
		}
	}
	return BorrowRecord{}, ErrNotBorrowed
}
