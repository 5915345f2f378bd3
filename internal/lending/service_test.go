package lending

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestService(store *MemoryStore) *Service {
	return NewService(store).WithClock(func() time.Time { return testNow })
}

func TestService_Borrow(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		store := NewMemoryStore()
		bookID := store.AddBook("The Go Programming Language", "Alan A. A. Donovan", "9780134190440", 3, 3)
		svc := newTestService(store)

		res := svc.Borrow(ctx, "123456", bookID)
		require.True(t, res.OK)
		assert.Contains(t, res.Message, `Successfully borrowed "The Go Programming Language"`)
		assert.Contains(t, res.Message, "Due date: 2025-06-15.")

		book, err := store.GetBookByID(ctx, bookID)
		require.NoError(t, err)
		assert.Equal(t, 2, book.AvailableCopies)

		records, err := store.GetPatronBorrows(ctx, "123456", false)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, bookID, records[0].BookID)
		assert.Equal(t, testNow, records[0].BorrowDate)
		assert.Equal(t, testNow.Add(14*24*time.Hour), records[0].DueDate)
		assert.True(t, records[0].Outstanding())
	})

	t.Run("invalid patron ids", func(t *testing.T) {
		store := NewMemoryStore()
		bookID := store.AddBook("A", "B", "9780000000001", 1, 1)
		svc := newTestService(store)

		for _, id := range []string{"", "12345", "1234567", "12345a", "abcdef"} {
			res := svc.Borrow(ctx, id, bookID)
			assert.False(t, res.OK, "patron id %q", id)
			assert.Equal(t, "Invalid patron ID. Must be exactly 6 digits.", res.Message)
			assert.Equal(t, KindValidation, res.Kind)
		}

		book, _ := store.GetBookByID(ctx, bookID)
		assert.Equal(t, 1, book.AvailableCopies)
	})

	t.Run("book not found", func(t *testing.T) {
		svc := newTestService(NewMemoryStore())

		res := svc.Borrow(ctx, "123456", 42)
		assert.False(t, res.OK)
		assert.Equal(t, "Book not found.", res.Message)
		assert.Equal(t, KindNotFound, res.Kind)
	})

	t.Run("no copies available", func(t *testing.T) {
		store := NewMemoryStore()
		bookID := store.AddBook("A", "B", "9780000000002", 2, 0)
		svc := newTestService(store)

		res := svc.Borrow(ctx, "123456", bookID)
		assert.False(t, res.OK)
		assert.Equal(t, "This book is currently not available.", res.Message)
		assert.Equal(t, KindConflict, res.Kind)
	})

	t.Run("borrowing limit", func(t *testing.T) {
		store := NewMemoryStore()
		svc := newTestService(store)

		for i := 0; i < MaxBorrowLimit-1; i++ {
			id := store.AddBook(fmt.Sprintf("Book %d", i), "B", fmt.Sprintf("978000000010%d", i), 1, 1)
			require.True(t, svc.Borrow(ctx, "654321", id).OK)
		}

		// Fifth borrow (count 4 -> 5) still succeeds.
		fifth := store.AddBook("Book 5", "B", "9780000000205", 1, 1)
		res := svc.Borrow(ctx, "654321", fifth)
		require.True(t, res.OK)

		// Sixth fails.
		sixth := store.AddBook("Book 6", "B", "9780000000206", 1, 1)
		res = svc.Borrow(ctx, "654321", sixth)
		assert.False(t, res.OK)
		assert.Equal(t, "You have reached the maximum borrowing limit of 5 books.", res.Message)
		assert.Equal(t, KindConflict, res.Kind)

		book, _ := store.GetBookByID(ctx, sixth)
		assert.Equal(t, 1, book.AvailableCopies)
	})

	t.Run("same book twice", func(t *testing.T) {
		store := NewMemoryStore()
		bookID := store.AddBook("A", "B", "9780000000003", 3, 3)
		svc := newTestService(store)

		require.True(t, svc.Borrow(ctx, "123456", bookID).OK)
		res := svc.Borrow(ctx, "123456", bookID)
		assert.False(t, res.OK)
		assert.Equal(t, "You have already borrowed this book.", res.Message)

		book, _ := store.GetBookByID(ctx, bookID)
		assert.Equal(t, 2, book.AvailableCopies)
	})
}

func TestService_Borrow_LastCopyRace(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	bookID := store.AddBook("Contested", "B", "9780000000004", 1, 1)
	svc := newTestService(store)

	const patrons = 20
	results := make([]Result, patrons)
	var wg sync.WaitGroup
	for i := 0; i < patrons; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.Borrow(ctx, fmt.Sprintf("%06d", i+1), bookID)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, res := range results {
		if res.OK {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one patron gets the last copy")

	book, err := store.GetBookByID(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, 0, book.AvailableCopies)
}

func TestService_Return(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip restores availability", func(t *testing.T) {
		store := NewMemoryStore()
		bookID := store.AddBook("A", "B", "9780000000005", 2, 2)
		svc := newTestService(store)

		require.True(t, svc.Borrow(ctx, "123456", bookID).OK)
		res := svc.Return(ctx, "123456", bookID)
		require.True(t, res.OK)
		assert.Contains(t, res.Message, "successfully returned")

		book, _ := store.GetBookByID(ctx, bookID)
		assert.Equal(t, 2, book.AvailableCopies)

		records, err := store.GetPatronBorrows(ctx, "123456", true)
		require.NoError(t, err)
		require.Len(t, records, 1)
		require.NotNil(t, records[0].ReturnDate)
		assert.Equal(t, testNow, *records[0].ReturnDate)
	})

	t.Run("invalid patron id", func(t *testing.T) {
		svc := newTestService(NewMemoryStore())

		res := svc.Return(ctx, "12abc", 1)
		assert.False(t, res.OK)
		assert.Equal(t, "Invalid patron ID. Must be exactly 6 digits.", res.Message)
	})

	t.Run("not borrowed", func(t *testing.T) {
		store := NewMemoryStore()
		bookID := store.AddBook("A", "B", "9780000000006", 1, 1)
		svc := newTestService(store)

		res := svc.Return(ctx, "222222", bookID)
		assert.False(t, res.OK)
		assert.Equal(t, "Book not borrowed by this patron.", res.Message)
		assert.Equal(t, KindNotFound, res.Kind)

		book, _ := store.GetBookByID(ctx, bookID)
		assert.Equal(t, 1, book.AvailableCopies)
	})

	t.Run("double return fails", func(t *testing.T) {
		store := NewMemoryStore()
		bookID := store.AddBook("A", "B", "9780000000007", 1, 1)
		svc := newTestService(store)

		require.True(t, svc.Borrow(ctx, "123456", bookID).OK)
		require.True(t, svc.Return(ctx, "123456", bookID).OK)

		res := svc.Return(ctx, "123456", bookID)
		assert.False(t, res.OK)
		assert.Equal(t, "Book not borrowed by this patron.", res.Message)

		book, _ := store.GetBookByID(ctx, bookID)
		assert.Equal(t, 1, book.AvailableCopies, "availability not double-incremented")
	})

	t.Run("late return reports fee", func(t *testing.T) {
		store := NewMemoryStore()
		bookID := store.AddBook("A", "B", "9780000000008", 1, 1)
		svc := newTestService(store)

		// Borrowed 20 days ago: due 14 days after borrow, 6 days overdue.
		borrowDate := testNow.AddDate(0, 0, -20)
		store.SeedBorrow("333333", bookID, borrowDate, borrowDate.Add(14*24*time.Hour))

		res := svc.Return(ctx, "333333", bookID)
		require.True(t, res.OK)
		assert.Contains(t, res.Message, "Late fee due: $3.00")
		assert.Contains(t, res.Message, "6 days overdue")
	})
}

func TestService_LateFee(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid patron id", func(t *testing.T) {
		svc := newTestService(NewMemoryStore())
		got := svc.LateFee(ctx, "12345", 1)
		assert.Equal(t, FeeStatusError, got.Status)
	})

	t.Run("unknown book", func(t *testing.T) {
		svc := newTestService(NewMemoryStore())
		got := svc.LateFee(ctx, "123456", 99)
		assert.Equal(t, FeeStatusError, got.Status)
	})

	t.Run("no outstanding loan", func(t *testing.T) {
		store := NewMemoryStore()
		bookID := store.AddBook("A", "B", "9780000000009", 1, 1)
		svc := newTestService(store)

		got := svc.LateFee(ctx, "123456", bookID)
		assert.Equal(t, FeeStatusNotOverdue, got.Status)
		assert.Equal(t, 0.00, got.FeeAmount)
	})

	t.Run("within due date", func(t *testing.T) {
		store := NewMemoryStore()
		bookID := store.AddBook("A", "B", "9780000000010", 1, 1)
		svc := newTestService(store)
		require.True(t, svc.Borrow(ctx, "123456", bookID).OK)

		got := svc.LateFee(ctx, "123456", bookID)
		assert.Equal(t, FeeStatusNotOverdue, got.Status)
	})

	t.Run("overdue", func(t *testing.T) {
		store := NewMemoryStore()
		bookID := store.AddBook("A", "B", "9780000000011", 1, 1)
		svc := newTestService(store)

		// 25 days since borrow: 11 days overdue.
		borrowDate := testNow.AddDate(0, 0, -25)
		store.SeedBorrow("555555", bookID, borrowDate, borrowDate.Add(14*24*time.Hour))

		got := svc.LateFee(ctx, "555555", bookID)
		assert.Equal(t, FeeStatusOK, got.Status)
		assert.Equal(t, 11, got.DaysOverdue)
		assert.Equal(t, 7.50, got.FeeAmount)
	})
}

func TestService_Status(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid patron id", func(t *testing.T) {
		svc := newTestService(NewMemoryStore())
		_, err := svc.Status(ctx, "oops")
		assert.ErrorIs(t, err, ErrInvalidPatronID)
	})

	t.Run("report", func(t *testing.T) {
		store := NewMemoryStore()
		current := store.AddBook("Current", "B", "9780000000012", 1, 1)
		overdue := store.AddBook("Overdue", "B", "9780000000013", 1, 1)
		returned := store.AddBook("Returned", "B", "9780000000014", 1, 1)
		svc := newTestService(store)

		require.True(t, svc.Borrow(ctx, "888888", current).OK)

		borrowDate := testNow.AddDate(0, 0, -25) // 11 days overdue: $7.50
		store.SeedBorrow("888888", overdue, borrowDate, borrowDate.Add(14*24*time.Hour))

		require.True(t, svc.Borrow(ctx, "888888", returned).OK)
		require.True(t, svc.Return(ctx, "888888", returned).OK)

		status, err := svc.Status(ctx, "888888")
		require.NoError(t, err)
		assert.Equal(t, "888888", status.PatronID)
		assert.Equal(t, 2, status.BorrowCount)
		assert.Len(t, status.CurrentBorrowed, 2)
		assert.Len(t, status.History, 3)
		assert.Equal(t, 7.50, status.TotalLateFees)
	})

	t.Run("empty report", func(t *testing.T) {
		svc := newTestService(NewMemoryStore())
		status, err := svc.Status(ctx, "111111")
		require.NoError(t, err)
		assert.Equal(t, 0, status.BorrowCount)
		assert.Empty(t, status.CurrentBorrowed)
		assert.Empty(t, status.History)
		assert.Equal(t, 0.00, status.TotalLateFees)
	})
}
