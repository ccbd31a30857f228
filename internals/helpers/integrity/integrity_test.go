package integrity

import (
	"errors"
	"testing"
	"time"

	"gorm.io/datatypes"

	"blood_donation_backend/internals/helpers/apperror"
)

const recovery = 90 * 24 * time.Hour

var today = time.Date(2025, time.March, 10, 14, 30, 0, 0, time.UTC)

func date(y int, m time.Month, d int) *datatypes.Date {
	v := datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	return &v
}

func TestCheckAge(t *testing.T) {
	for age, ok := range map[int]bool{17: false, 18: true, 40: true, 65: true, 66: false} {
		err := CheckAge("donor_profiles", age)
		if ok != (err == nil) {
			t.Errorf("age %d: err = %v", age, err)
		}
		if err != nil && !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("age %d: kind = %v", age, err)
		}
	}
}

func TestEligibleOn(t *testing.T) {
	cases := []struct {
		name string
		flag bool
		last *datatypes.Date
		want bool
	}{
		{"never donated", true, nil, true},
		{"flag off", false, nil, false},
		{"exactly recovered", true, date(2024, time.December, 10), true},
		{"one day short", true, date(2024, time.December, 11), false},
		{"long ago", true, date(2023, time.January, 1), true},
	}
	for _, tc := range cases {
		if got := EligibleOn(tc.flag, tc.last, today, recovery); got != tc.want {
			t.Errorf("%s: EligibleOn = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCheckEligibleConstraint(t *testing.T) {
	err := CheckEligible("appointments", 7, true, date(2025, time.March, 1), today, recovery)
	var appErr *apperror.Error
	if !errors.As(err, &appErr) || appErr.Constraint != "donor_eligibility" {
		t.Fatalf("err = %v", err)
	}
	if NextEligibleDate(nil, recovery) != (time.Time{}) {
		t.Fatalf("next date for a first-time donor should be zero")
	}
}

func TestDateRules(t *testing.T) {
	if err := CheckNotBefore("appointments", "appointment_at", today.Add(-30*time.Second), today, time.Minute); err != nil {
		t.Fatalf("within grace: %v", err)
	}
	if err := CheckNotBefore("appointments", "appointment_at", today.Add(-2*time.Minute), today, time.Minute); err == nil {
		t.Fatalf("past appointment accepted")
	}
	if err := CheckNotFuture("blood_requests", "blood_request_date", date(2025, time.March, 10), today); err != nil {
		t.Fatalf("today rejected: %v", err)
	}
	if err := CheckNotFuture("blood_requests", "blood_request_date", date(2025, time.March, 11), today); err == nil {
		t.Fatalf("tomorrow accepted")
	}
	if got := time.Time(DateOf(today)); got.Hour() != 0 || got.Day() != 10 {
		t.Fatalf("DateOf = %v", got)
	}
}
