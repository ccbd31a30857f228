package dto

import (
	"testing"
	"time"

	"gorm.io/datatypes"

	"blood_donation_backend/internals/constants"
	"blood_donation_backend/internals/features/users/donor_profiles/model"
)

func TestFromModelNextEligibleDate(t *testing.T) {
	recovery := 90 * 24 * time.Hour
	m := &model.DonorProfileModel{DonorProfileID: 4, DonorProfileGroup: constants.ONeg, DonorProfileIsEligible: true}

	if got := FromModel(m, recovery); got.NextEligibleDate != nil || got.ID != 4 || got.BloodGroup != constants.ONeg {
		t.Fatalf("first-time donor: %+v", got)
	}

	last := datatypes.Date(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC))
	m.DonorProfileLastDonationDate = &last
	got := FromModel(m, recovery)
	want := time.Date(2025, time.May, 30, 0, 0, 0, 0, time.UTC)
	if got.NextEligibleDate == nil || !got.NextEligibleDate.Equal(want) {
		t.Fatalf("next eligible = %v, want %v", got.NextEligibleDate, want)
	}
}

func TestChangesOnlyPatchedColumns(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	age := 41
	got := (&UpdateDonorProfileRequest{Age: &age}).Changes(now)
	if len(got) != 2 || got["donor_profile_age"] != 41 || got["donor_profile_updated_at"] != now {
		t.Fatalf("changes = %v", got)
	}
	if _, ok := got["donor_profile_last_donation_date"]; ok {
		t.Fatalf("unpatched last donation date must not be written")
	}
}
