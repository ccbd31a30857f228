package seeds

import (
	"context"

	"gorm.io/gorm"

	"blood_donation_backend/internals/configs"
	helper "blood_donation_backend/internals/helpers"
	bloodbanks "blood_donation_backend/internals/seeds/blood_banks"
	"blood_donation_backend/internals/seeds/users/admin"
)

func RunAllSeeds(ctx context.Context, db *gorm.DB, v *helper.Validator, cfg configs.AppConfig) error {

	//* Users
	if err := admin.SeedAdmin(ctx, db, v, cfg.BcryptCost, cfg.Seed); err != nil {
		return err
	}

	//* Blood banks & opening stock
	if cfg.Seed.BloodBanksFile != "" {
		if err := bloodbanks.SeedBloodBanksFromJSON(ctx, db, v, cfg.Seed.BloodBanksFile); err != nil {
			return err
		}
	}
	return nil
}
