package helper

import (
	"errors"
	"testing"
	"time"

	"gorm.io/datatypes"

	"blood_donation_backend/internals/helpers/apperror"
	"blood_donation_backend/internals/helpers/dbtime"
)

type sample struct {
	Group    string          `json:"blood_group" validate:"required,bloodgroup"`
	Phone    string          `json:"phone" validate:"required,phone"`
	Username string          `json:"username" validate:"required,username"`
	Date     *datatypes.Date `json:"date,omitempty" validate:"omitempty,notfuture"`
}

func TestValidatorCustomTags(t *testing.T) {
	clock := dbtime.NewFixedClock(time.Date(2025, time.March, 10, 23, 0, 0, 0, time.UTC))
	v := NewValidator(clock)

	today := datatypes.Date(time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC))
	ok := sample{Group: "AB-", Phone: "+6281234567", Username: "budi.s", Date: &today}
	if err := v.Struct("samples", ok); err != nil {
		t.Fatalf("valid sample rejected: %v", err)
	}

	tomorrow := datatypes.Date(time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC))
	bad := sample{Group: "AB", Phone: "12ab", Username: "budi s", Date: &tomorrow}
	err := v.Struct("samples", bad)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var appErr *apperror.Error
	errors.As(err, &appErr)
	for _, f := range []string{"blood_group", "phone", "username", "date"} {
		if _, ok := appErr.Fields[f]; !ok {
			t.Errorf("no message for %s: %v", f, appErr.Fields)
		}
	}
}

func TestValidatorSingleFieldSetsConstraint(t *testing.T) {
	v := NewValidator(nil)
	err := v.Struct("samples", sample{Group: "O+", Phone: "+6281234567", Username: ""})
	var appErr *apperror.Error
	if !errors.As(err, &appErr) || appErr.Field != "username" || appErr.Constraint != "required" {
		t.Fatalf("err = %#v", err)
	}
}
