package lending

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on top of pgx. Each paired write runs in
// one transaction; the availability update carries its own guard so the
// database, not the caller, decides races.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetBookByID(ctx context.Context, id int64) (Book, error) {
	const query = `
		SELECT id, title, author, isbn, total_copies, available_copies
		FROM books
		WHERE id = $1`

	var b Book
	err := s.db.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.Title, &b.Author, &b.ISBN, &b.TotalCopies, &b.AvailableCopies,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (s *PostgresStore) GetPatronBorrowCount(ctx context.Context, patronID string) (int, error) {
	const query = `
		SELECT COUNT(*)
		FROM borrow_records
		WHERE patron_id = $1 AND return_date IS NULL`

	var count int
	if err := s.db.QueryRow(ctx, query, patronID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *PostgresStore) GetPatronBorrows(ctx context.Context, patronID string, includeReturned bool) ([]BorrowRecord, error) {
	query := `
		SELECT id, patron_id, book_id, borrow_date, due_date, return_date
		FROM borrow_records
		WHERE patron_id = $1`
	if !includeReturned {
		query += " AND return_date IS NULL"
	}
	query += " ORDER BY borrow_date, id"

	rows, err := s.db.Query(ctx, query, patronID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BorrowRecord
	for rows.Next() {
		var r BorrowRecord
		if err := rows.Scan(&r.ID, &r.PatronID, &r.BookID, &r.BorrowDate, &r.DueDate, &r.ReturnDate); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateBorrow(ctx context.Context, patronID string, bookID int64, borrowDate, dueDate time.Time) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Conditional decrement: the losing side of a race on the last copy
	// affects zero rows and the whole transaction is abandoned.
	const decrementSQL = `
		UPDATE books
		SET available_copies = available_copies - 1, updated_at = now()
		WHERE id = $1 AND available_copies > 0`

	tag, err := tx.Exec(ctx, decrementSQL, bookID)
	if err != nil {
		return fmt.Errorf("decrement availability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUnavailable
	}

	const insertSQL = `
		INSERT INTO borrow_records (patron_id, book_id, borrow_date, due_date)
		VALUES ($1, $2, $3, $4)`

	if _, err := tx.Exec(ctx, insertSQL, patronID, bookID, borrowDate, dueDate); err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyBorrowed
		}
		return fmt.Errorf("insert borrow record: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) CloseBorrow(ctx context.Context, patronID string, bookID int64, returnDate time.Time) (BorrowRecord, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return BorrowRecord{}, err
	}
	defer tx.Rollback(ctx)

	const closeSQL = `
		UPDATE borrow_records
		SET return_date = $3
		WHERE patron_id = $1 AND book_id = $2 AND return_date IS NULL
		RETURNING id, borrow_date, due_date`

	record := BorrowRecord{PatronID: patronID, BookID: bookID, ReturnDate: &returnDate}
	err = tx.QueryRow(ctx, closeSQL, patronID, bookID, returnDate).Scan(
		&record.ID, &record.BorrowDate, &record.DueDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BorrowRecord{}, ErrNotBorrowed
		}
		return BorrowRecord{}, fmt.Errorf("close borrow record: %w", err)
	}

	// Clamped so a stray double-return can never push the count past
	// total_copies.
	const incrementSQL = `
		UPDATE books
		SET available_copies = LEAST(total_copies, available_copies + 1), updated_at = now()
		WHERE id = $1`

	if _, err := tx.Exec(ctx, incrementSQL, bookID); err != nil {
		return BorrowRecord{}, fmt.Errorf("increment availability: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return BorrowRecord{}, err
	}
	return record, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
