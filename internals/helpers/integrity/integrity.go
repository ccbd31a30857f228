// Package integrity holds the cross-entity rules that plain column
// constraints cannot express: foreign-key existence, restricted deletes,
// donor eligibility, and the date rules on appointments.
package integrity

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"blood_donation_backend/internals/helpers/apperror"
	"blood_donation_backend/internals/helpers/dbtime"
)

const (
	MinDonorAge = 18
	MaxDonorAge = 65
)

/* ===========================
   Foreign keys
   =========================== */

// Ref names a foreign key value that must resolve to an existing row.
type Ref struct {
	Field  string // FK field on the entity being written
	Model  any    // model of the referenced table
	Column string // primary key column of the referenced table
	ID     uint
}

// RequireRefs fails with a referential error on the first ref that does not
// resolve. Zero ids are treated as dangling.
func RequireRefs(tx *gorm.DB, entity string, refs ...Ref) error {
	for _, r := range refs {
		ok, err := Exists(tx, r.Model, r.Column, r.ID)
		if err != nil {
			return fmt.Errorf("%s: check %s: %w", entity, r.Field, err)
		}
		if !ok {
			return apperror.Referential(entity, r.Field, r.ID)
		}
	}
	return nil
}

func Exists(tx *gorm.DB, model any, column string, id uint) (bool, error) {
	if id == 0 {
		return false, nil
	}
	var n int64
	if err := tx.Model(model).Where(column+" = ?", id).Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

/* ===========================
   Restricted deletes
   =========================== */

// Dependent is a table holding a non-cascading reference to the row being deleted.
type Dependent struct {
	Name   string // table/entity name used in the message
	Model  any
	Column string // FK column pointing at the parent
}

// RestrictDelete fails with a conflict when any dependent still references id.
func RestrictDelete(tx *gorm.DB, entity string, id uint, deps ...Dependent) error {
	var blocking []string
	for _, d := range deps {
		var n int64
		if err := tx.Model(d.Model).Where(d.Column+" = ?", id).Count(&n).Error; err != nil {
			return fmt.Errorf("%s: count %s: %w", entity, d.Name, err)
		}
		if n > 0 {
			blocking = append(blocking, fmt.Sprintf("%d %s", n, d.Name))
		}
	}
	if len(blocking) > 0 {
		return apperror.Conflict(entity, "restricted_delete",
			fmt.Sprintf("id %d is still referenced by %s", id, strings.Join(blocking, ", ")))
	}
	return nil
}

/* ===========================
   Donor rules
   =========================== */

func CheckAge(entity string, age int) error {
	if age < MinDonorAge || age > MaxDonorAge {
		return apperror.ValidationField(entity, "age", "range",
			fmt.Sprintf("age must be between %d and %d", MinDonorAge, MaxDonorAge))
	}
	return nil
}

// NextEligibleDate is the first day a donor may donate again, or the zero
// time when the donor never donated.
func NextEligibleDate(last *datatypes.Date, recovery time.Duration) time.Time {
	if last == nil {
		return time.Time{}
	}
	return dbtime.StartOfDay(time.Time(*last).UTC()).Add(recovery)
}

// EligibleOn reports whether a donor with the given flag and last donation
// date may donate on date.
func EligibleOn(flag bool, last *datatypes.Date, date time.Time, recovery time.Duration) bool {
	if !flag {
		return false
	}
	next := NextEligibleDate(last, recovery)
	return next.IsZero() || !dbtime.StartOfDay(date.UTC()).Before(next)
}

// CheckEligible is EligibleOn as an error.
func CheckEligible(entity string, donorID uint, flag bool, last *datatypes.Date, date time.Time, recovery time.Duration) error {
	if !flag {
		return apperror.Conflict(entity, "donor_eligibility", fmt.Sprintf("donor %d is marked ineligible", donorID))
	}
	if !EligibleOn(flag, last, date, recovery) {
		next := NextEligibleDate(last, recovery)
		return apperror.Conflict(entity, "donor_eligibility",
			fmt.Sprintf("donor %d cannot donate before %s", donorID, next.Format("2006-01-02")))
	}
	return nil
}

/* ===========================
   Date rules
   =========================== */

// CheckNotBefore rejects at when it is earlier than now minus grace.
func CheckNotBefore(entity, field string, at, now time.Time, grace time.Duration) error {
	if at.Before(now.Add(-grace)) {
		return apperror.ValidationField(entity, field, "future", field+" must not be in the past")
	}
	return nil
}

// CheckNotFuture rejects a date after today. nil is always valid.
func CheckNotFuture(entity, field string, d *datatypes.Date, now time.Time) error {
	if d == nil {
		return nil
	}
	if dbtime.StartOfDay(time.Time(*d).UTC()).After(dbtime.StartOfDay(now.UTC())) {
		return apperror.ValidationField(entity, field, "notfuture", field+" must not be in the future")
	}
	return nil
}

// DateOf converts t to a date column value (UTC midnight).
func DateOf(t time.Time) datatypes.Date {
	return datatypes.Date(dbtime.StartOfDay(t.UTC()))
}
