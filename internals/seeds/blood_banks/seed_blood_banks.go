package bloodbanks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"

	"blood_donation_backend/internals/constants"
	"blood_donation_backend/internals/features/blood_banks/blood_banks/dto"
	bankService "blood_donation_backend/internals/features/blood_banks/blood_banks/service"
	stockService "blood_donation_backend/internals/features/blood_banks/blood_stocks/service"
	helper "blood_donation_backend/internals/helpers"
)

// BloodBankSeed is the create payload plus the opening stock per blood group.
type BloodBankSeed struct {
	dto.CreateBloodBankRequest
	Stocks map[constants.BloodGroup]int `json:"stocks"`
}

// SeedBloodBanksFromJSON inserts the banks listed in filePath. Banks that
// already exist (same name and location) are skipped, so the seeder can run
// on every deploy.
func SeedBloodBanksFromJSON(ctx context.Context, db *gorm.DB, v *helper.Validator, filePath string) error {
	log.Println("📥 Reading blood bank seed:", filePath)

	file, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	var inputs []BloodBankSeed
	if err := json.Unmarshal(file, &inputs); err != nil {
		return fmt.Errorf("decode seed file: %w", err)
	}

	bankSvc := bankService.NewBloodBankService(db, v)
	stockSvc := stockService.NewBloodStockService(db, v)
	for _, in := range inputs {
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			banks := bankSvc.WithTx(tx)
			existing, err := banks.GetByNameLocation(ctx, in.Name, in.Location)
			if err != nil {
				return err
			}
			if existing != nil {
				log.Printf("ℹ️ Blood bank '%s' (%s) already exists, skipped.", in.Name, in.Location)
				return nil
			}

			bank, err := banks.Create(ctx, in.CreateBloodBankRequest)
			if err != nil {
				return err
			}
			stocks := stockSvc.WithTx(tx)
			for group, units := range in.Stocks {
				if units <= 0 {
					continue
				}
				if _, err := stocks.Restock(ctx, bank.BloodBankID, group, units); err != nil {
					return err
				}
			}
			log.Printf("✅ Inserted blood bank '%s' with %d stock rows", bank.BloodBankName, len(in.Stocks))
			return nil
		})
		if err != nil {
			return fmt.Errorf("seed blood bank %q: %w", in.Name, err)
		}
	}
	return nil
}
