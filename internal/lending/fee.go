package lending

import (
	"math"
	"time"
)

const (
	// MaxLateFee caps the fee for a single loan regardless of how long it
	// stays overdue.
	MaxLateFee = 15.00

	feePerDayFirstWeek  = 0.50
	feePerDayAfterWeek  = 1.00
	firstWeekOverdueCap = 7
)

// FeeStatus distinguishes a computed fee from "nothing due" and from
// structurally invalid input (bad patron id, unknown book).
type FeeStatus string

const (
	FeeStatusOK         FeeStatus = "OK"
	FeeStatusNotOverdue FeeStatus = "Not overdue"
	FeeStatusError      FeeStatus = "Error"
)

// FeeResult is the outcome of a late-fee calculation or lookup.
type FeeResult struct {
	FeeAmount   float64   `json:"fee_amount"`
	DaysOverdue int       `json:"days_overdue"`
	Status      FeeStatus `json:"status"`
}

// CalculateLateFee computes the fee owed for a loan due at dueDate as of
// now. The first seven overdue days cost $0.50 each, every day after that
// $1.00, capped at MaxLateFee. Overdue days are whole calendar days, not
// elapsed hours: returning one minute past the due timestamp on the same
// date is overdue with zero billable days.
func CalculateLateFee(dueDate, now time.Time) FeeResult {
	if !now.After(dueDate) {
		return FeeResult{Status: FeeStatusNotOverdue}
	}

	days := calendarDaysBetween(dueDate, now)
	firstWeek := days
	if firstWeek > firstWeekOverdueCap {
		firstWeek = firstWeekOverdueCap
	}
	afterWeek := days - firstWeekOverdueCap
	if afterWeek < 0 {
		afterWeek = 0
	}

	fee := feePerDayFirstWeek*float64(firstWeek) + feePerDayAfterWeek*float64(afterWeek)
	if fee > MaxLateFee {
		fee = MaxLateFee
	}

	return FeeResult{
		FeeAmount:   RoundCents(fee),
		DaysOverdue: days,
		Status:      FeeStatusOK,
	}
}

// RoundCents rounds a dollar amount to two decimal places. Money never
// leaves the fee calculator unrounded.
func RoundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

func calendarDaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f) / (24 * time.Hour))
}
