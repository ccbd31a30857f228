package service

import (
	"context"
	"errors"
	"testing"

	"blood_donation_backend/internals/constants"
	"blood_donation_backend/internals/databases/dbtest"
	stockModel "blood_donation_backend/internals/features/blood_banks/blood_stocks/model"
	"blood_donation_backend/internals/features/blood_banks/blood_banks/dto"
	apptModel "blood_donation_backend/internals/features/donations/appointments/model"
	helper "blood_donation_backend/internals/helpers"
	"blood_donation_backend/internals/helpers/apperror"
)

func bankReq(name, location string) dto.CreateBloodBankRequest {
	return dto.CreateBloodBankRequest{
		Name:          name,
		Location:      location,
		ContactNumber: "+62215550100",
		Email:         "info@pmi.or.id",
		Capacity:      800,
		Manager:       "Siti Aminah",
	}
}

func TestCreateAndUniqueNameLocation(t *testing.T) {
	env := dbtest.Open(t)
	svc := NewBloodBankService(env.DB, env.Validator)
	ctx := context.Background()

	b, err := svc.Create(ctx, bankReq("PMI Kota", "Bandung"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := svc.GetByID(ctx, b.BloodBankID)
	if err != nil || got == nil || got.BloodBankCapacity != 800 || got.BloodBankManager != "Siti Aminah" {
		t.Fatalf("round trip: %+v %v", got, err)
	}

	if _, err := svc.Create(ctx, bankReq("pmi kota", "BANDUNG")); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("duplicate: %v", err)
	}
	if _, err := svc.Create(ctx, bankReq("PMI Kota", "Bogor")); err != nil {
		t.Fatalf("same name elsewhere: %v", err)
	}

	bad := bankReq("X", "Bandung")
	bad.Capacity = 0
	if _, err := svc.Create(ctx, bad); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("invalid: %v", err)
	}
}

func TestUpdateAndList(t *testing.T) {
	env := dbtest.Open(t)
	svc := NewBloodBankService(env.DB, env.Validator)
	ctx := context.Background()
	a, _ := svc.Create(ctx, bankReq("PMI Kota", "Bandung"))
	svc.Create(ctx, bankReq("RS Harapan", "Jakarta"))

	capacity := 1200
	up, err := svc.Update(ctx, a.BloodBankID, dto.UpdateBloodBankRequest{Capacity: &capacity})
	if err != nil || up.BloodBankCapacity != 1200 {
		t.Fatalf("update: %+v %v", up, err)
	}

	page, err := svc.List(ctx, dto.ListBloodBanksFilter{Query: "jakarta"}, helper.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Meta.Total != 1 || page.Items[0].BloodBankName != "RS Harapan" {
		t.Fatalf("list = %+v", page.Items)
	}
}

func TestDeleteCascadesStockAndRespectsAppointments(t *testing.T) {
	env := dbtest.Open(t)
	svc := NewBloodBankService(env.DB, env.Validator)
	ctx := context.Background()

	busy := dbtest.Bank(t, env.DB, "Busy")
	d := dbtest.Donor(t, env.DB, "dodi", constants.ONeg, true, nil)
	env.DB.Create(&apptModel.AppointmentModel{
		AppointmentDonorID: d.DonorProfileID,
		AppointmentBankID:  busy.BloodBankID,
		AppointmentAt:      dbtest.Epoch,
		AppointmentStatus:  constants.AppointmentScheduled,
	})
	err := svc.Delete(ctx, busy.BloodBankID)
	var appErr *apperror.Error
	if !errors.As(err, &appErr) || appErr.Constraint != "restricted_delete" {
		t.Fatalf("expected restricted delete, got %v", err)
	}

	idle := dbtest.Bank(t, env.DB, "Idle")
	dbtest.Stock(t, env.DB, idle.BloodBankID, constants.APos, 10)
	dbtest.Stock(t, env.DB, idle.BloodBankID, constants.BPos, 4)
	if err := svc.Delete(ctx, idle.BloodBankID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var n int64
	env.DB.Model(&stockModel.BloodStockModel{}).Where("blood_stock_bank_id = ?", idle.BloodBankID).Count(&n)
	if n != 0 {
		t.Fatalf("stock rows left = %d", n)
	}
	if err := svc.Delete(ctx, idle.BloodBankID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}
