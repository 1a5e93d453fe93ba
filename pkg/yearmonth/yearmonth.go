// Package yearmonth handles the YYYY-MM month keys used for revenue
// bucketing. Months are always carried as strings, never as dates, so a
// bucket never shifts with the server timezone.
package yearmonth

import (
	"errors"
	"regexp"
	"time"
)

var pattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

var ErrInvalid = errors.New("invalid year-month, want YYYY-MM")

func Validate(s string) error {
	if !pattern.MatchString(s) {
		return ErrInvalid
	}
	return nil
}

// MonthStart returns midnight UTC on the first day of the month.
func MonthStart(s string) (time.Time, error) {
	if err := Validate(s); err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, ErrInvalid
	}
	return t.UTC(), nil
}

// Of returns the month key containing t.
func Of(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// Previous returns the month key immediately before the month containing t.
func Previous(t time.Time) string {
	u := t.UTC()
	firstOfMonth := time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
	return firstOfMonth.AddDate(0, 0, -1).Format("2006-01")
}
