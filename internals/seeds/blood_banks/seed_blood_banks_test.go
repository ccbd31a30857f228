package bloodbanks

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"blood_donation_backend/internals/constants"
	"blood_donation_backend/internals/databases/dbtest"
	bankModel "blood_donation_backend/internals/features/blood_banks/blood_banks/model"
	stockModel "blood_donation_backend/internals/features/blood_banks/blood_stocks/model"
)

func TestSeedIsIdempotent(t *testing.T) {
	env := dbtest.Open(t)
	ctx := context.Background()

	if err := SeedBloodBanksFromJSON(ctx, env.DB, env.Validator, "data_blood_banks.json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := SeedBloodBanksFromJSON(ctx, env.DB, env.Validator, "data_blood_banks.json"); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	var banks, stocks int64
	env.DB.Model(&bankModel.BloodBankModel{}).Count(&banks)
	env.DB.Model(&stockModel.BloodStockModel{}).Count(&stocks)
	if banks != 3 {
		t.Fatalf("banks = %d, want 3", banks)
	}
	if stocks != 19 {
		t.Fatalf("stock rows = %d, want 19", stocks)
	}

	var oneg stockModel.BloodStockModel
	env.DB.Joins("JOIN blood_banks ON blood_banks.blood_bank_id = blood_stocks.blood_stock_bank_id").
		Where("blood_banks.blood_bank_name = ? AND blood_stock_blood_group = ?", "UDD PMI DKI Jakarta", constants.ONeg).
		Take(&oneg)
	if oneg.BloodStockUnits != 12 {
		t.Fatalf("O- units = %d, want 12", oneg.BloodStockUnits)
	}
}

func TestSeedRejectsInvalidRows(t *testing.T) {
	env := dbtest.Open(t)
	path := filepath.Join(t.TempDir(), "banks.json")
	body := `[{"blood_bank_name":"X","blood_bank_location":"Nowhere","blood_bank_contact_number":"n/a","blood_bank_email":"x","blood_bank_capacity":0,"blood_bank_manager":"M"}]`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := SeedBloodBanksFromJSON(context.Background(), env.DB, env.Validator, path); err == nil {
		t.Fatalf("invalid seed accepted")
	}
	if err := SeedBloodBanksFromJSON(context.Background(), env.DB, env.Validator, filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("missing file accepted")
	}
}
