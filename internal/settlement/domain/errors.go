package domain

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrInvalidYearMonth       = errors.New("invalid_year_month")
	ErrInvalidStatus          = errors.New("invalid_status")
	ErrNotFound               = errors.New("settlement_not_found")
	ErrSettlementLocked       = errors.New("settlement_locked")
	ErrInvalidTransition      = errors.New("invalid_transition")
	ErrMissingPaymentRef      = errors.New("missing_payment_ref")
	ErrConcurrentModification = errors.New("concurrent_modification")
	ErrInvalidPageToken       = errors.New("invalid_page_token")
)

// LockedError reports an attempt to re-allocate a month for a partner whose
// settlement has already been financially committed.
type LockedError struct {
	PartnerID snowflake.ID
	YearMonth string
	Status    SettlementStatus
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("settlement for partner %s in %s is %s and cannot be re-allocated",
		e.PartnerID, e.YearMonth, e.Status)
}

func (e *LockedError) Is(target error) bool { return target == ErrSettlementLocked }

// TransitionError reports an illegal lifecycle move.
type TransitionError struct {
	From SettlementStatus
	To   SettlementStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid settlement transition %s -> %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }
