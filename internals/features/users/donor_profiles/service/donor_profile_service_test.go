package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"blood_donation_backend/internals/constants"
	"blood_donation_backend/internals/databases/dbtest"
	donationModel "blood_donation_backend/internals/features/donations/donation_records/model"
	"blood_donation_backend/internals/features/users/donor_profiles/dto"
	"blood_donation_backend/internals/features/users/donor_profiles/model"
	helper "blood_donation_backend/internals/helpers"
	"blood_donation_backend/internals/helpers/apperror"
	"blood_donation_backend/internals/helpers/integrity"
)

const recovery = 90 * 24 * time.Hour

func TestCreateAgeBounds(t *testing.T) {
	env := dbtest.Open(t)
	svc := NewDonorProfileService(env.DB, env.Validator)
	ctx := context.Background()

	cases := []struct {
		age int
		ok  bool
	}{
		{17, false}, {18, true}, {65, true}, {66, false},
	}
	for i, tc := range cases {
		u := dbtest.User(t, env.DB, constants.RoleDonor, dbtest.Name("donor", i))
		_, err := svc.Create(ctx, dto.CreateDonorProfileRequest{
			UserID: u.UserID, BloodGroup: constants.APos, Age: tc.age, Gender: constants.GenderFemale,
		})
		if tc.ok && err != nil {
			t.Fatalf("age %d: %v", tc.age, err)
		}
		if !tc.ok && !errors.Is(err, apperror.ErrValidation) {
			t.Fatalf("age %d: expected validation error, got %v", tc.age, err)
		}
	}
}

func TestCreateDefaultsAndRoundTrip(t *testing.T) {
	env := dbtest.Open(t)
	svc := NewDonorProfileService(env.DB, env.Validator)
	ctx := context.Background()
	u := dbtest.User(t, env.DB, constants.RoleDonor, "dodi")

	last := integrity.DateOf(dbtest.Epoch.AddDate(0, -4, 0))
	d, err := svc.Create(ctx, dto.CreateDonorProfileRequest{
		UserID: u.UserID, BloodGroup: constants.BNeg, Age: 40, Gender: constants.GenderMale, LastDonationDate: &last,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !d.DonorProfileIsEligible {
		t.Fatalf("eligibility flag should default to true")
	}

	got, err := svc.GetByUserID(ctx, u.UserID)
	if err != nil || got == nil {
		t.Fatalf("get: %v %v", got, err)
	}
	if got.DonorProfileGroup != constants.BNeg || got.DonorProfileAge != 40 || got.DonorProfileLastDonationDate == nil {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestCreateRejectsWrongRoleAndDuplicates(t *testing.T) {
	env := dbtest.Open(t)
	svc := NewDonorProfileService(env.DB, env.Validator)
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.CreateDonorProfileRequest{
		UserID: 404, BloodGroup: constants.APos, Age: 30, Gender: constants.GenderOther,
	})
	if !errors.Is(err, apperror.ErrReferential) {
		t.Fatalf("unknown user: %v", err)
	}

	admin := dbtest.User(t, env.DB, constants.RoleAdmin, "admin")
	_, err = svc.Create(ctx, dto.CreateDonorProfileRequest{
		UserID: admin.UserID, BloodGroup: constants.APos, Age: 30, Gender: constants.GenderOther,
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("admin user: %v", err)
	}

	d := dbtest.Donor(t, env.DB, "dodi", constants.APos, true, nil)
	_, err = svc.Create(ctx, dto.CreateDonorProfileRequest{
		UserID: d.DonorProfileUserID, BloodGroup: constants.APos, Age: 30, Gender: constants.GenderOther,
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("second profile: %v", err)
	}
}

func TestFindEligible(t *testing.T) {
	env := dbtest.Open(t)
	svc := NewDonorProfileService(env.DB, env.Validator)

	fresh := dbtest.Donor(t, env.DB, "fresh", constants.ONeg, true, nil)
	rested := dbtest.Donor(t, env.DB, "rested", constants.ONeg, true, dbtest.DaysAgo(90))
	dbtest.Donor(t, env.DB, "tired", constants.ONeg, true, dbtest.DaysAgo(89))
	dbtest.Donor(t, env.DB, "flagged", constants.ONeg, false, nil)
	dbtest.Donor(t, env.DB, "other", constants.ABPos, true, nil)

	got, err := svc.FindEligible(context.Background(), []constants.BloodGroup{constants.ONeg}, dbtest.Epoch, recovery)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 2 || got[0].DonorProfileID != fresh.DonorProfileID || got[1].DonorProfileID != rested.DonorProfileID {
		t.Fatalf("eligible = %+v", got)
	}
}

func TestUpdateAndList(t *testing.T) {
	env := dbtest.Open(t)
	svc := NewDonorProfileService(env.DB, env.Validator)
	ctx := context.Background()
	d := dbtest.Donor(t, env.DB, "dodi", constants.ONeg, true, nil)
	dbtest.Donor(t, env.DB, "dina", constants.APos, true, nil)

	no := false
	age := 70
	if _, err := svc.Update(ctx, d.DonorProfileID, dto.UpdateDonorProfileRequest{Age: &age}); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("age 70: %v", err)
	}
	up, err := svc.Update(ctx, d.DonorProfileID, dto.UpdateDonorProfileRequest{IsEligible: &no})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if up.DonorProfileIsEligible {
		t.Fatalf("flag not cleared")
	}

	page, err := svc.List(ctx, dto.ListDonorProfilesFilter{EligibleOnly: true}, helper.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Meta.Total != 1 || page.Items[0].DonorProfileGroup != constants.APos {
		t.Fatalf("eligible list = %+v", page.Items)
	}

	if _, err := svc.Update(ctx, 999, dto.UpdateDonorProfileRequest{IsEligible: &no}); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("missing donor: %v", err)
	}
}

func TestUpdateWritesOnlyPatchedColumns(t *testing.T) {
	env := dbtest.Open(t)
	svc := NewDonorProfileService(env.DB, env.Validator)
	ctx := context.Background()
	d := dbtest.Donor(t, env.DB, "dodi", constants.ONeg, true, nil)

	// a donation lands between Update's read and its write
	donated := integrity.DateOf(dbtest.Epoch.AddDate(0, 0, -1))
	fired := false
	err := env.DB.Callback().Query().After("gorm:query").Register("test:donation_between", func(db *gorm.DB) {
		if fired || db.Statement.Table != "donor_profiles" {
			return
		}
		fired = true
		db.Session(&gorm.Session{NewDB: true}).Model(&model.DonorProfileModel{}).
			Where("donor_profile_id = ?", d.DonorProfileID).
			Update("donor_profile_last_donation_date", donated)
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	age := 41
	up, err := svc.Update(ctx, d.DonorProfileID, dto.UpdateDonorProfileRequest{Age: &age})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !fired {
		t.Fatalf("callback never ran")
	}
	if up.DonorProfileAge != 41 {
		t.Fatalf("age = %d", up.DonorProfileAge)
	}
	if up.DonorProfileLastDonationDate == nil ||
		time.Time(*up.DonorProfileLastDonationDate).UTC().Format("2006-01-02") != "2025-03-09" {
		t.Fatalf("last donation overwritten: %v", up.DonorProfileLastDonationDate)
	}
}

func TestRecordDonationMovesForwardOnly(t *testing.T) {
	env := dbtest.Open(t)
	svc := NewDonorProfileService(env.DB, env.Validator)
	ctx := context.Background()
	d := dbtest.Donor(t, env.DB, "dodi", constants.ONeg, true, dbtest.DaysAgo(10))

	day := func() string {
		got, err := svc.GetByID(ctx, d.DonorProfileID)
		if err != nil || got == nil || got.DonorProfileLastDonationDate == nil {
			t.Fatalf("get: %+v %v", got, err)
		}
		return time.Time(*got.DonorProfileLastDonationDate).UTC().Format("2006-01-02")
	}

	if err := svc.RecordDonation(ctx, d.DonorProfileID, dbtest.Epoch.AddDate(0, 0, -20)); err != nil {
		t.Fatalf("older date: %v", err)
	}
	if got := day(); got != "2025-02-28" {
		t.Fatalf("older date moved last donation to %s", got)
	}
	if err := svc.RecordDonation(ctx, d.DonorProfileID, dbtest.Epoch); err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := day(); got != "2025-03-10" {
		t.Fatalf("last donation = %s", got)
	}
	if err := svc.RecordDonation(ctx, 999, dbtest.Epoch); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("missing donor: %v", err)
	}
}

func TestDeleteRestrictedByDonations(t *testing.T) {
	env := dbtest.Open(t)
	svc := NewDonorProfileService(env.DB, env.Validator)
	ctx := context.Background()
	d := dbtest.Donor(t, env.DB, "dodi", constants.ONeg, true, nil)
	bank := dbtest.Bank(t, env.DB, "PMI")

	env.DB.Create(&donationModel.DonationRecordModel{
		DonationRecordDonorID:  d.DonorProfileID,
		DonationRecordBankID:   bank.BloodBankID,
		DonationRecordDate:     integrity.DateOf(dbtest.Epoch),
		DonationRecordQuantity: 1,
		DonationRecordStatus:   constants.DonationCompleted,
	})

	err := svc.Delete(ctx, d.DonorProfileID)
	var appErr *apperror.Error
	if !errors.As(err, &appErr) || appErr.Constraint != "restricted_delete" {
		t.Fatalf("expected restricted delete, got %v", err)
	}

	free := dbtest.Donor(t, env.DB, "free", constants.ONeg, true, nil)
	if err := svc.Delete(ctx, free.DonorProfileID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := svc.GetByID(ctx, free.DonorProfileID); got != nil {
		t.Fatalf("profile still present")
	}
}
