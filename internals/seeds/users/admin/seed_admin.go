package admin

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"blood_donation_backend/internals/configs"
	"blood_donation_backend/internals/constants"
	"blood_donation_backend/internals/features/users/user/dto"
	userService "blood_donation_backend/internals/features/users/user/service"
	helper "blood_donation_backend/internals/helpers"
)

var ErrNoAdminPassword = errors.New("SEED_ADMIN_PASSWORD is empty; refusing to create an admin without a password")

// SeedAdmin bootstraps the first Admin account. It does nothing once any
// Admin exists. The check and the insert share one transaction.
func SeedAdmin(ctx context.Context, db *gorm.DB, v *helper.Validator, bcryptCost int, cfg configs.SeedConfig) error {
	base := userService.NewUserService(db, v, bcryptCost)
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := base.WithTx(tx)
		exists, err := users.HasRole(ctx, constants.RoleAdmin)
		if err != nil {
			return err
		}
		if exists {
			log.Println("ℹ️ An admin already exists, bootstrap skipped.")
			return nil
		}
		if cfg.AdminPassword == "" {
			return ErrNoAdminPassword
		}

		u, err := users.Create(ctx, dto.CreateUserRequest{
			Name:     cfg.AdminName,
			Username: cfg.AdminUsername,
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
			Role:     constants.RoleAdmin,
		})
		if err != nil {
			return err
		}
		log.Printf("✅ Admin '%s' created (id=%d)", u.UserUsername, u.UserID)
		return nil
	})
}
