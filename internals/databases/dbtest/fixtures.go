package dbtest

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"blood_donation_backend/internals/constants"
	bankModel "blood_donation_backend/internals/features/blood_banks/blood_banks/model"
	stockModel "blood_donation_backend/internals/features/blood_banks/blood_stocks/model"
	donorModel "blood_donation_backend/internals/features/users/donor_profiles/model"
	recipientModel "blood_donation_backend/internals/features/users/recipient_profiles/model"
	userModel "blood_donation_backend/internals/features/users/user/model"
)

// Fixtures insert rows straight through gorm, bypassing service rules, so a
// test can arrange state the services would refuse to build step by step.

func User(t *testing.T, db *gorm.DB, role constants.Role, username string) *userModel.UserModel {
	t.Helper()
	u := &userModel.UserModel{
		UserName:         "User " + username,
		UserUsername:     username,
		UserEmail:        username + "@example.com",
		UserPasswordHash: "$2a$04$fixturefixturefixturefixturefixturefixturefixturefix",
		UserRole:         role,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

// Donor creates a donor user plus profile. last may be nil.
func Donor(t *testing.T, db *gorm.DB, username string, group constants.BloodGroup, eligible bool, last *time.Time) *donorModel.DonorProfileModel {
	t.Helper()
	u := User(t, db, constants.RoleDonor, username)
	d := &donorModel.DonorProfileModel{
		DonorProfileUserID:     u.UserID,
		DonorProfileGroup:      group,
		DonorProfileAge:        30,
		DonorProfileGender:     constants.GenderOther,
		DonorProfileIsEligible: eligible,
	}
	if last != nil {
		dd := datatypes.Date(*last)
		d.DonorProfileLastDonationDate = &dd
	}
	if err := db.Create(d).Error; err != nil {
		t.Fatalf("create donor %s: %v", username, err)
	}
	return d
}

func Recipient(t *testing.T, db *gorm.DB, username string, group constants.BloodGroup) *recipientModel.RecipientProfileModel {
	t.Helper()
	u := User(t, db, constants.RoleRecipient, username)
	r := &recipientModel.RecipientProfileModel{
		RecipientProfileUserID:        u.UserID,
		RecipientProfileHospitalName:  "General Hospital",
		RecipientProfilePatientName:   "Patient " + username,
		RecipientProfileRequiredGroup: group,
		RecipientProfileContactNumber: "+628123456789",
	}
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("create recipient %s: %v", username, err)
	}
	return r
}

func Bank(t *testing.T, db *gorm.DB, name string) *bankModel.BloodBankModel {
	t.Helper()
	b := &bankModel.BloodBankModel{
		BloodBankName:          name,
		BloodBankLocation:      "Jakarta",
		BloodBankContactNumber: "+62215550100",
		BloodBankEmail:         "bank@example.com",
		BloodBankCapacity:      1000,
		BloodBankManager:       "Manager",
	}
	if err := db.Create(b).Error; err != nil {
		t.Fatalf("create bank %s: %v", name, err)
	}
	return b
}

func Stock(t *testing.T, db *gorm.DB, bankID uint, group constants.BloodGroup, units int) *stockModel.BloodStockModel {
	t.Helper()
	s := &stockModel.BloodStockModel{
		BloodStockBankID:      bankID,
		BloodStockGroup:       group,
		BloodStockUnits:       units,
		BloodStockLastUpdated: Epoch,
	}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("create stock %d/%s: %v", bankID, group, err)
	}
	return s
}

// DaysAgo is a date n days before Epoch.
func DaysAgo(n int) *time.Time {
	d := Epoch.AddDate(0, 0, -n)
	d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

// Name returns a unique-ish fixture name.
func Name(prefix string, i int) string {
	return fmt.Sprintf("%s%d", prefix, i)
}
