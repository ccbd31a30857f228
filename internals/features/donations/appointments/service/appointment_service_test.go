package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"blood_donation_backend/internals/configs"
	"blood_donation_backend/internals/constants"
	"blood_donation_backend/internals/databases/dbtest"
	"blood_donation_backend/internals/features/donations/appointments/dto"
	helper "blood_donation_backend/internals/helpers"
	"blood_donation_backend/internals/helpers/apperror"
)

func newService(t *testing.T) (*AppointmentService, dbtest.Env) {
	t.Helper()
	env := dbtest.Open(t)
	return NewAppointmentService(env.DB, env.Validator, configs.DefaultWorkflowConfig()), env
}

func TestCreateRejectsPastAndIneligible(t *testing.T) {
	svc, env := newService(t)
	ctx := context.Background()
	bank := dbtest.Bank(t, env.DB, "PMI")
	d := dbtest.Donor(t, env.DB, "dodi", constants.APos, true, nil)
	recent := dbtest.Donor(t, env.DB, "recent", constants.APos, true, dbtest.DaysAgo(30))

	_, err := svc.Create(ctx, dto.CreateAppointmentRequest{DonorID: d.DonorProfileID, BankID: bank.BloodBankID, At: dbtest.Epoch.Add(-time.Hour)})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("past appointment: %v", err)
	}
	// within the grace window
	if _, err := svc.Create(ctx, dto.CreateAppointmentRequest{DonorID: d.DonorProfileID, BankID: bank.BloodBankID, At: dbtest.Epoch.Add(-30 * time.Second)}); err != nil {
		t.Fatalf("grace: %v", err)
	}

	_, err = svc.Create(ctx, dto.CreateAppointmentRequest{DonorID: recent.DonorProfileID, BankID: bank.BloodBankID, At: dbtest.Epoch.Add(time.Hour)})
	var appErr *apperror.Error
	if !errors.As(err, &appErr) || appErr.Constraint != "donor_eligibility" {
		t.Fatalf("recovering donor: %v", err)
	}
	// once recovered the same donor may book
	if _, err := svc.Create(ctx, dto.CreateAppointmentRequest{DonorID: recent.DonorProfileID, BankID: bank.BloodBankID, At: dbtest.Epoch.AddDate(0, 0, 60)}); err != nil {
		t.Fatalf("after recovery: %v", err)
	}

	if _, err := svc.Create(ctx, dto.CreateAppointmentRequest{DonorID: d.DonorProfileID, BankID: 99, At: dbtest.Epoch.Add(time.Hour)}); !errors.Is(err, apperror.ErrReferential) {
		t.Fatalf("unknown bank: %v", err)
	}
}

func TestUpdateCloseDelete(t *testing.T) {
	svc, env := newService(t)
	ctx := context.Background()
	bank := dbtest.Bank(t, env.DB, "PMI")
	d := dbtest.Donor(t, env.DB, "dodi", constants.APos, true, nil)

	a, err := svc.Create(ctx, dto.CreateAppointmentRequest{DonorID: d.DonorProfileID, BankID: bank.BloodBankID, At: dbtest.Epoch.Add(2 * time.Hour)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.AppointmentStatus != constants.AppointmentScheduled {
		t.Fatalf("status = %s", a.AppointmentStatus)
	}

	remarks := "  bring ID  "
	up, err := svc.Update(ctx, a.AppointmentID, dto.UpdateAppointmentRequest{Remarks: &remarks})
	if err != nil || up.AppointmentRemarks == nil || *up.AppointmentRemarks != "bring ID" {
		t.Fatalf("update: %+v %v", up, err)
	}

	closed, err := svc.Close(ctx, a.AppointmentID, constants.AppointmentCompleted)
	if err != nil || !closed {
		t.Fatalf("close: %v %v", closed, err)
	}
	closed, _ = svc.Close(ctx, a.AppointmentID, constants.AppointmentCancelled)
	if closed {
		t.Fatalf("closed twice")
	}
	if _, err := svc.Update(ctx, a.AppointmentID, dto.UpdateAppointmentRequest{Remarks: &remarks}); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("update closed: %v", err)
	}
	if err := svc.Delete(ctx, a.AppointmentID); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("delete completed: %v", err)
	}

	donorID := d.DonorProfileID
	status := constants.AppointmentCompleted
	page, err := svc.List(ctx, dto.ListAppointmentsFilter{DonorID: &donorID, Status: &status}, helper.Params{})
	if err != nil || page.Meta.Total != 1 {
		t.Fatalf("list: %d %v", page.Meta.Total, err)
	}
}

func TestCreateRefusesOverlappingOpenAppointment(t *testing.T) {
	svc, env := newService(t)
	ctx := context.Background()
	bank := dbtest.Bank(t, env.DB, "PMI")
	d := dbtest.Donor(t, env.DB, "dodi", constants.ONeg, true, nil)

	first, err := svc.Create(ctx, dto.CreateAppointmentRequest{DonorID: d.DonorProfileID, BankID: bank.BloodBankID, At: dbtest.Epoch.Add(24 * time.Hour)})
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}

	// an open appointment is a pending donation
	_, err = svc.Create(ctx, dto.CreateAppointmentRequest{DonorID: d.DonorProfileID, BankID: bank.BloodBankID, At: dbtest.Epoch.AddDate(0, 0, 30)})
	var appErr *apperror.Error
	if !errors.As(err, &appErr) || appErr.Constraint != "donor_eligibility" {
		t.Fatalf("booking inside recovery window: %v", err)
	}
	// also before it
	_, err = svc.Create(ctx, dto.CreateAppointmentRequest{DonorID: d.DonorProfileID, BankID: bank.BloodBankID, At: dbtest.Epoch.Add(time.Hour)})
	if !errors.As(err, &appErr) || appErr.Constraint != "donor_eligibility" {
		t.Fatalf("booking just before open appointment: %v", err)
	}

	later, err := svc.Create(ctx, dto.CreateAppointmentRequest{DonorID: d.DonorProfileID, BankID: bank.BloodBankID, At: dbtest.Epoch.AddDate(0, 0, 92)})
	if err != nil {
		t.Fatalf("booking after recovery window: %v", err)
	}

	// rescheduling the later one next to the first is refused too
	near := dbtest.Epoch.AddDate(0, 0, 10)
	if _, err := svc.Update(ctx, later.AppointmentID, dto.UpdateAppointmentRequest{At: &near}); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("reschedule into window: %v", err)
	}

	// a cancelled appointment no longer counts
	if _, err := svc.Close(ctx, first.AppointmentID, constants.AppointmentCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := svc.Create(ctx, dto.CreateAppointmentRequest{DonorID: d.DonorProfileID, BankID: bank.BloodBankID, At: dbtest.Epoch.Add(time.Hour)}); err != nil {
		t.Fatalf("booking after cancel: %v", err)
	}
}

func TestGetByIDRoundTrip(t *testing.T) {
	svc, env := newService(t)
	ctx := context.Background()
	bank := dbtest.Bank(t, env.DB, "PMI")
	d := dbtest.Donor(t, env.DB, "dodi", constants.BPos, true, nil)
	at := dbtest.Epoch.Add(3 * time.Hour)
	remarks := "fasting"

	a, err := svc.Create(ctx, dto.CreateAppointmentRequest{DonorID: d.DonorProfileID, BankID: bank.BloodBankID, At: at, Remarks: &remarks})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := svc.GetByID(ctx, a.AppointmentID)
	if err != nil || got == nil {
		t.Fatalf("get: %v %v", got, err)
	}
	if got.AppointmentDonorID != d.DonorProfileID || got.AppointmentBankID != bank.BloodBankID ||
		!got.AppointmentAt.Equal(at) || got.AppointmentStatus != constants.AppointmentScheduled ||
		got.AppointmentRemarks == nil || *got.AppointmentRemarks != "fasting" {
		t.Fatalf("round trip = %+v", got)
	}
	if miss, err := svc.GetByID(ctx, 999); miss != nil || err != nil {
		t.Fatalf("missing appointment: %+v %v", miss, err)
	}
}
