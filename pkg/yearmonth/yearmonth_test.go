package yearmonth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2025-09", true},
		{"2025-01", true},
		{"2025-12", true},
		{"2025-00", false},
		{"2025-13", false},
		{"2025-9", false},
		{"25-09", false},
		{"2025/09", false},
		{"2025-09-01", false},
		{"", false},
	}

	for _, tc := range cases {
		err := Validate(tc.in)
		if tc.ok {
			assert.NoError(t, err, tc.in)
		} else {
			assert.ErrorIs(t, err, ErrInvalid, tc.in)
		}
	}
}

func TestMonthStart(t *testing.T) {
	got, err := MonthStart("2025-09")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = MonthStart("2025-9")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestPrevious(t *testing.T) {
	assert.Equal(t, "2025-08", Previous(time.Date(2025, 9, 15, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-12", Previous(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
}
