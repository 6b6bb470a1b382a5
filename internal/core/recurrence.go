package core

import (
	"fmt"
	"time"
)

// Stepper computes the date of the n-th occurrence after an anchor date.
// Stepping always starts from the anchor so month-end overflow never drifts.
type Stepper interface {
	Step(anchor time.Time, n int) time.Time
}

// MonthStepper advances by calendar months using time.AddDate normalization
// (Jan 31 + 1 month = Mar 2 or Mar 3).
type MonthStepper struct{}

func (MonthStepper) Step(anchor time.Time, n int) time.Time {
	return anchor.AddDate(0, n, 0)
}

// YearStepper advances by calendar years (Feb 29 + 1 year = Mar 1).
type YearStepper struct{}

func (YearStepper) Step(anchor time.Time, n int) time.Time {
	return anchor.AddDate(n, 0, 0)
}

var steppers = map[RecurrenceType]Stepper{
	Installments: MonthStepper{},
	Monthly:      MonthStepper{},
	Yearly:       YearStepper{},
}

// StepperFor returns the stepper for a recurrence type.
func StepperFor(r RecurrenceType) (Stepper, error) {
	s, ok := steppers[r]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRecurrence, r)
	}
	return s, nil
}

// ExpandInstallments splits a recurring INSTALLMENTS template into total dated
// records sharing groupID. The template's Date is the first installment date.
func ExpandInstallments(template Transaction, total int, groupID string) ([]Transaction, error) {
	if !template.IsRecurring {
		return nil, ErrNotRecurring
	}
	if template.RecurrenceType != Installments {
		return nil, fmt.Errorf("%w: expected %s, got %q", ErrInvalidRecurrence, Installments, template.RecurrenceType)
	}
	if total < MinInstallments || total > MaxInstallments {
		return nil, fmt.Errorf("%w: %d (allowed %d-%d)", ErrInvalidInstallments, total, MinInstallments, MaxInstallments)
	}
	if groupID == "" {
		return nil, fmt.Errorf("expand installments: empty group id")
	}
	step, err := StepperFor(Installments)
	if err != nil {
		return nil, err
	}

	out := make([]Transaction, 0, total)
	for i := 1; i <= total; i++ {
		t := template
		t.ID = 0
		t.Date = step.Step(template.Date, i-1)
		t.Description = fmt.Sprintf("%s (%d/%d)", template.Description, i, total)
		t.IsRecurring = true
		t.RecurrenceType = Installments
		t.TotalInstallments = total
		t.CurrentInstallment = i
		t.RecurringGroupID = groupID
		out = append(out, t)
	}
	return out, nil
}

// NextOccurrence builds the occurrence that follows latest in a MONTHLY or YEARLY
// series anchored at first. ok is false once the series has reached its total.
func NextOccurrence(first, latest Transaction) (Transaction, bool, error) {
	if !first.IsRecurring {
		return Transaction{}, false, ErrNotRecurring
	}
	if first.RecurrenceType != Monthly && first.RecurrenceType != Yearly {
		return Transaction{}, false, fmt.Errorf("%w: %q is not a rolling series", ErrInvalidRecurrence, first.RecurrenceType)
	}
	if first.TotalInstallments > 0 && latest.CurrentInstallment >= first.TotalInstallments {
		return Transaction{}, false, nil
	}
	step, err := StepperFor(first.RecurrenceType)
	if err != nil {
		return Transaction{}, false, err
	}

	next := first
	next.ID = 0
	next.InvoiceID = nil
	next.Status = StatusDue
	next.CurrentInstallment = latest.CurrentInstallment + 1
	next.Date = step.Step(first.Date, next.CurrentInstallment-1)
	next.CreatedAt = time.Time{}
	return next, true, nil
}

// Series is a rolling MONTHLY or YEARLY series: its first and latest stored occurrence.
type Series struct {
	First  Transaction
	Latest Transaction
}
