// Package service drives a blood request through its lifecycle: matching
// donors, donor responses, fulfillment from stock, cancellation and
// rejection. Every operation runs in one transaction bounded by the
// configured lock timeout.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"blood_donation_backend/internals/configs"
	"blood_donation_backend/internals/constants"
	database "blood_donation_backend/internals/databases"
	stockService "blood_donation_backend/internals/features/blood_banks/blood_stocks/service"
	apptDTO "blood_donation_backend/internals/features/donations/appointments/dto"
	apptService "blood_donation_backend/internals/features/donations/appointments/service"
	donationDTO "blood_donation_backend/internals/features/donations/donation_records/dto"
	donationService "blood_donation_backend/internals/features/donations/donation_records/service"
	notifService "blood_donation_backend/internals/features/home/notifications/service"
	requestDTO "blood_donation_backend/internals/features/requests/blood_requests/dto"
	requestModel "blood_donation_backend/internals/features/requests/blood_requests/model"
	requestService "blood_donation_backend/internals/features/requests/blood_requests/service"
	linkService "blood_donation_backend/internals/features/requests/donor_request_links/service"
	"blood_donation_backend/internals/features/requests/fulfillment/dto"
	donorService "blood_donation_backend/internals/features/users/donor_profiles/service"
	recipientService "blood_donation_backend/internals/features/users/recipient_profiles/service"
	userModel "blood_donation_backend/internals/features/users/user/model"
	helper "blood_donation_backend/internals/helpers"
	"blood_donation_backend/internals/helpers/apperror"
	"blood_donation_backend/internals/metrics"
)

const entity = "blood_requests"

const (
	OpSubmit  = "submit"
	OpAccept  = "accept"
	OpDecline = "decline"
	OpRematch = "rematch"
	OpFulfill = "fulfill"
	OpCancel  = "cancel"
	OpReject  = "reject"
)

type FulfillmentService struct {
	DB        *gorm.DB
	Validator *helper.Validator
	Config    configs.WorkflowConfig
	Metrics   *metrics.Recorder

	base stores
}

func NewFulfillmentService(db *gorm.DB, v *helper.Validator, cfg configs.WorkflowConfig, m *metrics.Recorder) *FulfillmentService {
	return &FulfillmentService{
		DB:        db,
		Validator: v,
		Config:    cfg,
		Metrics:   m,
		base: stores{
			requests:      requestService.NewBloodRequestService(db, v),
			links:         linkService.NewDonorRequestLinkService(db, v),
			donors:        donorService.NewDonorProfileService(db, v),
			recipients:    recipientService.NewRecipientProfileService(db, v),
			stocks:        stockService.NewBloodStockService(db, v),
			appointments:  apptService.NewAppointmentService(db, v, cfg),
			donations:     donationService.NewDonationRecordService(db, v, cfg.RecoveryPeriod),
			notifications: notifService.NewNotificationService(db, v),
		},
	}
}

// stores bundles the entity services bound to one transaction.
type stores struct {
	requests      *requestService.BloodRequestService
	links         *linkService.DonorRequestLinkService
	donors        *donorService.DonorProfileService
	recipients    *recipientService.RecipientProfileService
	stocks        *stockService.BloodStockService
	appointments  *apptService.AppointmentService
	donations     *donationService.DonationRecordService
	notifications *notifService.NotificationService

	// emitted counts notifications written in this transaction.
	emitted *int
}

func (b stores) withTx(tx *gorm.DB, emitted *int) stores {
	return stores{
		requests:      b.requests.WithTx(tx),
		links:         b.links.WithTx(tx),
		donors:        b.donors.WithTx(tx),
		recipients:    b.recipients.WithTx(tx),
		stocks:        b.stocks.WithTx(tx),
		appointments:  b.appointments.WithTx(tx),
		donations:     b.donations.WithTx(tx),
		notifications: b.notifications.WithTx(tx),
		emitted:       emitted,
	}
}

func (st stores) emit(ctx context.Context, userID uint, msg string) error {
	if _, err := st.notifications.Emit(ctx, userID, msg); err != nil {
		return err
	}
	*st.emitted++
	return nil
}

// run executes fn in a transaction under the lock timeout and records the
// outcome. Lock waits that outlive the timeout come back as retryable
// conflicts. Notification counts are recorded only once the transaction
// has committed.
func (s *FulfillmentService) run(ctx context.Context, op string, fn func(ctx context.Context, st stores) error) error {
	opID := uuid.NewString()
	start := time.Now()

	tctx := ctx
	if s.Config.LockTimeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, s.Config.LockTimeout)
		defer cancel()
	}

	emitted := 0
	err := s.DB.WithContext(tctx).Transaction(func(tx *gorm.DB) error {
		if err := database.SetLockTimeout(tx, s.Config.LockTimeout); err != nil {
			return err
		}
		return fn(tctx, s.base.withTx(tx, &emitted))
	})
	err = database.Classify(entity, err)

	elapsed := time.Since(start)
	s.Metrics.Observe(ctx, op, err == nil, elapsed)
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) && appErr.Kind == apperror.KindConflict {
			s.Metrics.Conflict(op, appErr.Constraint)
		}
		log.Printf("[WORKFLOW] op=%s id=%s failed after %s: %v", op, opID, elapsed, err)
		return err
	}
	s.Metrics.NotificationEmitted(emitted)
	log.Printf("[WORKFLOW] op=%s id=%s ok in %s notified=%d", op, opID, elapsed, emitted)
	return nil
}

/* ===========================
   Authorization
   =========================== */

// checkActor confirms the actor exists with the role it claims.
func checkActor(ctx context.Context, st stores, actor dto.Actor) error {
	if !actor.Role.Valid() {
		return apperror.Forbidden(entity, fmt.Sprintf("unknown role %q", actor.Role))
	}
	var u userModel.UserModel
	err := st.requests.DB.WithContext(ctx).Where("user_id = ?", actor.UserID).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.Forbidden(entity, fmt.Sprintf("user %d does not exist", actor.UserID))
	}
	if err != nil {
		return err
	}
	if u.UserRole != actor.Role {
		return apperror.Forbidden(entity, fmt.Sprintf("user %d is not %s", actor.UserID, actor.Role))
	}
	return nil
}

// asRecipientOwner allows Admins and the Recipient owning recipientID.
func asRecipientOwner(ctx context.Context, st stores, actor dto.Actor, recipientID uint, action string) error {
	if err := checkActor(ctx, st, actor); err != nil {
		return err
	}
	switch actor.Role {
	case constants.RoleAdmin:
		return nil
	case constants.RoleRecipient:
		own, err := st.recipients.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if own == nil || own.RecipientProfileID != recipientID {
			return apperror.Forbidden(entity, constants.RoleErrorOwner(constants.RoleRecipient, action))
		}
		return nil
	case constants.RoleDonor:
		return apperror.Forbidden(entity, constants.RoleErrorOwner(constants.RoleRecipient, action))
	}
	return apperror.Forbidden(entity, fmt.Sprintf("unknown role %q", actor.Role))
}

// asDonorOwner allows Admins and the Donor owning donorID.
func asDonorOwner(ctx context.Context, st stores, actor dto.Actor, donorID uint, action string) error {
	if err := checkActor(ctx, st, actor); err != nil {
		return err
	}
	switch actor.Role {
	case constants.RoleAdmin:
		return nil
	case constants.RoleDonor:
		own, err := st.donors.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if own == nil || own.DonorProfileID != donorID {
			return apperror.Forbidden(entity, constants.RoleErrorOwner(constants.RoleDonor, action))
		}
		return nil
	case constants.RoleRecipient:
		return apperror.Forbidden(entity, constants.RoleErrorOwner(constants.RoleDonor, action))
	}
	return apperror.Forbidden(entity, fmt.Sprintf("unknown role %q", actor.Role))
}

func asAdmin(ctx context.Context, st stores, actor dto.Actor, action string) error {
	if err := checkActor(ctx, st, actor); err != nil {
		return err
	}
	switch actor.Role {
	case constants.RoleAdmin:
		return nil
	case constants.RoleDonor, constants.RoleRecipient:
		return apperror.Forbidden(entity, constants.RoleErrorAdmin(action))
	}
	return apperror.Forbidden(entity, fmt.Sprintf("unknown role %q", actor.Role))
}

/* ===========================
   Submit & match
   =========================== */

// SubmitBloodRequest creates a Pending request and offers it to every
// eligible donor of a matching group.
func (s *FulfillmentService) SubmitBloodRequest(ctx context.Context, actor dto.Actor, in dto.SubmitBloodRequestInput) (*dto.SubmitResult, error) {
	if err := s.Validator.Struct(entity, in); err != nil {
		return nil, err
	}
	var out dto.SubmitResult
	err := s.run(ctx, OpSubmit, func(ctx context.Context, st stores) error {
		recipientID := in.RecipientID
		if recipientID == 0 && actor.Role == constants.RoleRecipient {
			own, err := st.recipients.GetByUserID(ctx, actor.UserID)
			if err != nil {
				return err
			}
			if own != nil {
				recipientID = own.RecipientProfileID
			}
		}
		if err := asRecipientOwner(ctx, st, actor, recipientID, "submit a blood request"); err != nil {
			return err
		}

		req, err := st.requests.Create(ctx, requestDTO.CreateBloodRequestRequest{
			RecipientID: recipientID,
			BloodGroup:  in.BloodGroup,
			Quantity:    in.Quantity,
			Date:        in.Date,
		})
		if err != nil {
			return err
		}
		match, err := s.match(ctx, st, req)
		if err != nil {
			return err
		}
		out = dto.SubmitResult{Request: req, MatchResult: *match}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Metrics.Transition("", string(constants.RequestPending))
	log.Printf("[REQUEST] submitted id=%d group=%s qty=%d matched=%d",
		out.Request.BloodRequestID, out.Request.BloodRequestGroup, out.Request.BloodRequestQuantity, len(out.Links))
	return &out, nil
}

// match links every eligible, not yet linked donor to req and notifies them.
func (s *FulfillmentService) match(ctx context.Context, st stores, req *requestModel.BloodRequestModel) (*dto.MatchResult, error) {
	groups := constants.DonorGroupsFor(req.BloodRequestGroup, s.Config.MatchPolicy)
	candidates, err := st.donors.FindEligible(ctx, groups, s.Validator.Clock().Now(), s.Config.RecoveryPeriod)
	if err != nil {
		return nil, err
	}

	res := &dto.MatchResult{}
	msg := fmt.Sprintf("Blood request #%d needs %d unit(s) of %s. You are a matching donor, please respond.",
		req.BloodRequestID, req.BloodRequestQuantity, req.BloodRequestGroup)
	for _, d := range candidates {
		linked, err := st.links.IsLinked(ctx, d.DonorProfileID, req.BloodRequestID)
		if err != nil {
			return nil, err
		}
		if linked {
			continue
		}
		link, err := st.links.Create(ctx, d.DonorProfileID, req.BloodRequestID)
		if err != nil {
			return nil, err
		}
		res.Links = append(res.Links, *link)
		if err := st.emit(ctx, d.DonorProfileUserID, msg); err != nil {
			return nil, err
		}
		res.Notified++
	}
	return res, nil
}

// RematchRequest re-runs donor matching for a Pending request, linking
// candidates that currently have no link.
func (s *FulfillmentService) RematchRequest(ctx context.Context, actor dto.Actor, requestID uint) (*dto.MatchResult, error) {
	var out *dto.MatchResult
	err := s.run(ctx, OpRematch, func(ctx context.Context, st stores) error {
		req, err := st.requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if err := asRecipientOwner(ctx, st, actor, req.BloodRequestRecipientID, "re-match a blood request"); err != nil {
			return err
		}
		if req.BloodRequestStatus != constants.RequestPending {
			return statusConflict(req, "re-matched")
		}
		out, err = s.match(ctx, st, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

/* ===========================
   Donor response
   =========================== */

// RespondToRequest records a matched donor's answer. The first accept wins;
// later accepts get a conflict. Transient lock failures on accept are
// retried up to the configured count.
func (s *FulfillmentService) RespondToRequest(ctx context.Context, actor dto.Actor, in dto.RespondInput) (*dto.RespondResult, error) {
	if err := s.Validator.Struct(entity, in); err != nil {
		return nil, err
	}
	if !in.Accept {
		return s.decline(ctx, actor, in)
	}
	if in.AppointmentAt.IsZero() {
		return nil, apperror.ValidationField(entity, "appointment_at", "required", "appointment_at is required when accepting")
	}

	attempts := s.Config.AcceptRetries + 1
	if attempts < 1 {
		attempts = 1
	}
	var (
		out *dto.RespondResult
		err error
	)
	for i := 0; i < attempts; i++ {
		out, err = s.accept(ctx, actor, in)
		if err == nil || !apperror.IsRetryable(err) || ctx.Err() != nil {
			break
		}
		log.Printf("[WORKFLOW] accept request=%d donor=%d retry %d/%d: %v", in.RequestID, in.DonorID, i+1, attempts-1, err)
	}
	return out, err
}

func (s *FulfillmentService) accept(ctx context.Context, actor dto.Actor, in dto.RespondInput) (*dto.RespondResult, error) {
	var out dto.RespondResult
	err := s.run(ctx, OpAccept, func(ctx context.Context, st stores) error {
		if err := asDonorOwner(ctx, st, actor, in.DonorID, "respond to a blood request"); err != nil {
			return err
		}
		req, err := st.requests.GetForUpdate(ctx, in.RequestID)
		if err != nil {
			return err
		}
		if err := requireLink(ctx, st, in.DonorID, in.RequestID); err != nil {
			return err
		}
		if req.BloodRequestStatus != constants.RequestPending {
			return statusConflict(req, "accepted")
		}

		appt, err := st.appointments.Create(ctx, apptDTO.CreateAppointmentRequest{
			DonorID: in.DonorID,
			BankID:  in.BloodBankID,
			At:      in.AppointmentAt,
			Remarks: in.Remarks,
		})
		if err != nil {
			return err
		}

		ok, err := st.requests.Transition(ctx, req.BloodRequestID,
			[]constants.RequestStatus{constants.RequestPending}, constants.RequestApproved,
			map[string]any{
				"blood_request_accepted_donor_id":  in.DonorID,
				"blood_request_fulfilling_bank_id": in.BloodBankID,
				"blood_request_appointment_id":     appt.AppointmentID,
			})
		if err != nil {
			return err
		}
		if !ok {
			return apperror.Conflict(entity, "accepted", fmt.Sprintf("request %d was accepted by another donor", req.BloodRequestID))
		}

		if err := s.notifyRecipient(ctx, st, req.BloodRequestRecipientID,
			fmt.Sprintf("A donor accepted your blood request #%d. Appointment on %s.",
				req.BloodRequestID, appt.AppointmentAt.Format("2006-01-02 15:04"))); err != nil {
			return err
		}

		out.Appointment = appt
		out.Request, err = st.requests.GetByID(ctx, req.BloodRequestID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Metrics.Transition(string(constants.RequestPending), string(constants.RequestApproved))
	return &out, nil
}

func (s *FulfillmentService) decline(ctx context.Context, actor dto.Actor, in dto.RespondInput) (*dto.RespondResult, error) {
	var out dto.RespondResult
	err := s.run(ctx, OpDecline, func(ctx context.Context, st stores) error {
		if err := asDonorOwner(ctx, st, actor, in.DonorID, "respond to a blood request"); err != nil {
			return err
		}
		req, err := st.requests.GetForUpdate(ctx, in.RequestID)
		if err != nil {
			return err
		}
		if req.BloodRequestStatus.Terminal() {
			return statusConflict(req, "declined")
		}
		if id := req.BloodRequestAcceptedDonorID; id != nil && *id == in.DonorID {
			return apperror.Conflict(entity, "accepted",
				fmt.Sprintf("donor %d already accepted request %d; cancel the request instead", in.DonorID, req.BloodRequestID))
		}

		removed, err := st.links.Unlink(ctx, in.DonorID, in.RequestID)
		if err != nil {
			return err
		}
		if !removed {
			return linkNotFound(in.DonorID, in.RequestID)
		}
		out.RemainingLinks, err = st.links.CountByRequest(ctx, in.RequestID)
		if err != nil {
			return err
		}
		if out.RemainingLinks == 0 && req.BloodRequestStatus == constants.RequestPending {
			if err := s.notifyRecipient(ctx, st, req.BloodRequestRecipientID,
				fmt.Sprintf("All matched donors declined blood request #%d. It can be re-matched.", req.BloodRequestID)); err != nil {
				return err
			}
		}
		out.Request = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func requireLink(ctx context.Context, st stores, donorID, requestID uint) error {
	linked, err := st.links.IsLinked(ctx, donorID, requestID)
	if err != nil {
		return err
	}
	if !linked {
		return linkNotFound(donorID, requestID)
	}
	return nil
}

func linkNotFound(donorID, requestID uint) error {
	return &apperror.Error{
		Kind:    apperror.KindNotFound,
		Entity:  "donor_request_links",
		Message: fmt.Sprintf("donor %d is not matched to request %d", donorID, requestID),
	}
}

/* ===========================
   Fulfill / cancel / reject
   =========================== */

// FulfillRequest completes an Approved request: stock is decremented
// atomically, the appointment completes, a donation record is written and the
// request becomes Fulfilled. Insufficient stock aborts everything.
func (s *FulfillmentService) FulfillRequest(ctx context.Context, actor dto.Actor, requestID uint) (*dto.FulfillResult, error) {
	var (
		out   dto.FulfillResult
		group constants.BloodGroup
		units int
	)
	err := s.run(ctx, OpFulfill, func(ctx context.Context, st stores) error {
		if err := asAdmin(ctx, st, actor, "fulfill a blood request"); err != nil {
			return err
		}
		req, err := st.requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req.BloodRequestStatus != constants.RequestApproved {
			return statusConflict(req, "fulfilled")
		}
		if req.BloodRequestFulfillingBankID == nil || req.BloodRequestAcceptedDonorID == nil {
			return apperror.Conflict(entity, "status", fmt.Sprintf("request %d has no accepted donor or bank", requestID))
		}
		bankID, donorID := *req.BloodRequestFulfillingBankID, *req.BloodRequestAcceptedDonorID

		if err := st.stocks.Decrement(ctx, bankID, req.BloodRequestGroup, req.BloodRequestQuantity); err != nil {
			return err
		}

		if id := req.BloodRequestAppointmentID; id != nil {
			if err := completeAppointment(ctx, st, *id, requestID); err != nil {
				return err
			}
		}

		rid := req.BloodRequestID
		out.Donation, err = st.donations.Create(ctx, donationDTO.CreateDonationRecordRequest{
			DonorID:   donorID,
			BankID:    bankID,
			Quantity:  1,
			RequestID: &rid,
		})
		if err != nil {
			return err
		}

		ok, err := st.requests.Transition(ctx, rid,
			[]constants.RequestStatus{constants.RequestApproved}, constants.RequestFulfilled, nil)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.Conflict(entity, "status", fmt.Sprintf("request %d changed state concurrently", rid))
		}

		if err := s.notifyRecipient(ctx, st, req.BloodRequestRecipientID,
			fmt.Sprintf("Blood request #%d has been fulfilled.", rid)); err != nil {
			return err
		}
		if err := s.notifyDonor(ctx, st, donorID,
			fmt.Sprintf("Thank you! Your donation for request #%d is recorded.", rid)); err != nil {
			return err
		}

		group, units = req.BloodRequestGroup, req.BloodRequestQuantity
		out.Request, err = st.requests.GetByID(ctx, rid)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Metrics.Transition(string(constants.RequestApproved), string(constants.RequestFulfilled))
	s.Metrics.StockConsumed(string(group), units)
	return &out, nil
}

// CancelRequest withdraws a Pending or Approved request. Stock is untouched;
// an open appointment is cancelled and the accepted donor is told.
func (s *FulfillmentService) CancelRequest(ctx context.Context, actor dto.Actor, requestID uint) (*requestModel.BloodRequestModel, error) {
	var (
		out  *requestModel.BloodRequestModel
		from constants.RequestStatus
	)
	err := s.run(ctx, OpCancel, func(ctx context.Context, st stores) error {
		req, err := st.requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if err := asRecipientOwner(ctx, st, actor, req.BloodRequestRecipientID, "cancel a blood request"); err != nil {
			return err
		}
		from = req.BloodRequestStatus
		ok, err := st.requests.Transition(ctx, requestID,
			[]constants.RequestStatus{constants.RequestPending, constants.RequestApproved}, constants.RequestCancelled, nil)
		if err != nil {
			return err
		}
		if !ok {
			return statusConflict(req, "cancelled")
		}

		if req.BloodRequestAppointmentID != nil {
			if _, err := st.appointments.Close(ctx, *req.BloodRequestAppointmentID, constants.AppointmentCancelled); err != nil {
				return err
			}
		}
		if req.BloodRequestAcceptedDonorID != nil {
			if err := s.notifyDonor(ctx, st, *req.BloodRequestAcceptedDonorID,
				fmt.Sprintf("Blood request #%d was cancelled; your appointment is cancelled.", requestID)); err != nil {
				return err
			}
		}
		out, err = st.requests.GetByID(ctx, requestID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Metrics.Transition(string(from), string(constants.RequestCancelled))
	return out, nil
}

// RejectRequest is the admin override for a Pending request nobody can serve.
func (s *FulfillmentService) RejectRequest(ctx context.Context, actor dto.Actor, requestID uint) (*requestModel.BloodRequestModel, error) {
	var out *requestModel.BloodRequestModel
	err := s.run(ctx, OpReject, func(ctx context.Context, st stores) error {
		if err := asAdmin(ctx, st, actor, "reject a blood request"); err != nil {
			return err
		}
		req, err := st.requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		ok, err := st.requests.Transition(ctx, requestID,
			[]constants.RequestStatus{constants.RequestPending}, constants.RequestRejected, nil)
		if err != nil {
			return err
		}
		if !ok {
			return statusConflict(req, "rejected")
		}
		if err := s.notifyRecipient(ctx, st, req.BloodRequestRecipientID,
			fmt.Sprintf("Blood request #%d was rejected by an administrator.", requestID)); err != nil {
			return err
		}
		out, err = st.requests.GetByID(ctx, requestID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Metrics.Transition(string(constants.RequestPending), string(constants.RequestRejected))
	return out, nil
}

/* ===========================
   Helpers
   =========================== */

// completeAppointment closes the request's appointment as Completed. One
// already marked Completed counts as done; a cancelled one blocks fulfillment.
func completeAppointment(ctx context.Context, st stores, apptID, requestID uint) error {
	closed, err := st.appointments.Close(ctx, apptID, constants.AppointmentCompleted)
	if err != nil || closed {
		return err
	}
	appt, err := st.appointments.GetByID(ctx, apptID)
	if err != nil {
		return err
	}
	if appt != nil && appt.AppointmentStatus == constants.AppointmentCompleted {
		return nil
	}
	return apperror.Conflict(entity, "appointment",
		fmt.Sprintf("appointment %d of request %d was cancelled", apptID, requestID))
}

func statusConflict(req *requestModel.BloodRequestModel, verb string) error {
	return apperror.Conflict(entity, "status",
		fmt.Sprintf("request %d is %s and cannot be %s", req.BloodRequestID, req.BloodRequestStatus, verb))
}

func (s *FulfillmentService) notifyRecipient(ctx context.Context, st stores, recipientID uint, msg string) error {
	r, err := st.recipients.GetByID(ctx, recipientID)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("load recipient %d: %w", recipientID, gorm.ErrRecordNotFound)
	}
	return st.emit(ctx, r.RecipientProfileUserID, msg)
}

func (s *FulfillmentService) notifyDonor(ctx context.Context, st stores, donorID uint, msg string) error {
	d, err := st.donors.GetByID(ctx, donorID)
	if err != nil {
		return err
	}
	if d == nil {
		return fmt.Errorf("load donor %d: %w", donorID, gorm.ErrRecordNotFound)
	}
	return st.emit(ctx, d.DonorProfileUserID, msg)
}
