package database

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"

	bankmodel "blood_donation_backend/internals/features/blood_banks/blood_banks/model"
	stockmodel "blood_donation_backend/internals/features/blood_banks/blood_stocks/model"
	appointmentmodel "blood_donation_backend/internals/features/donations/appointments/model"
	donationmodel "blood_donation_backend/internals/features/donations/donation_records/model"
	notifmodel "blood_donation_backend/internals/features/home/notifications/model"
	requestmodel "blood_donation_backend/internals/features/requests/blood_requests/model"
	linkmodel "blood_donation_backend/internals/features/requests/donor_request_links/model"
	usermodel "blood_donation_backend/internals/features/users/user/model"
	donormodel "blood_donation_backend/internals/features/users/donor_profiles/model"
	recipientmodel "blood_donation_backend/internals/features/users/recipient_profiles/model"
)

// Models lists every table in dependency order.
func Models() []any {
	return []any{
		&usermodel.UserModel{},
		&donormodel.DonorProfileModel{},
		&recipientmodel.RecipientProfileModel{},
		&bankmodel.BloodBankModel{},
		&stockmodel.BloodStockModel{},
		&requestmodel.BloodRequestModel{},
		&linkmodel.DonorRequestLinkModel{},
		&donationmodel.DonationRecordModel{},
		&appointmentmodel.AppointmentModel{},
		&notifmodel.NotificationLogModel{},
	}
}

func Migrate(ctx context.Context, db *gorm.DB) error {
	log.Println("Going to start database migrations")
	for _, m := range Models() {
		if err := db.WithContext(ctx).AutoMigrate(m); err != nil {
			log.Printf("[ERROR] migration of %T failed: %v", m, err)
			return fmt.Errorf("migrate %T: %w", m, err)
		}
	}
	log.Println("✅ migrations done")
	return nil
}
