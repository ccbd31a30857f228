package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"blood_donation_backend/internals/constants"
	"blood_donation_backend/internals/databases/dbtest"
	"blood_donation_backend/internals/features/home/notifications/dto"
	helper "blood_donation_backend/internals/helpers"
	"blood_donation_backend/internals/helpers/apperror"
)

func newService(t *testing.T) (*NotificationService, dbtest.Env) {
	t.Helper()
	env := dbtest.Open(t)
	return NewNotificationService(env.DB, env.Validator), env
}

func TestEmitRequiresUser(t *testing.T) {
	svc, env := newService(t)
	ctx := context.Background()

	if _, err := svc.Emit(ctx, 404, "hello"); !errors.Is(err, apperror.ErrReferential) {
		t.Fatalf("unknown user: %v", err)
	}
	u := dbtest.User(t, env.DB, constants.RoleDonor, "dodi")
	if _, err := svc.Emit(ctx, u.UserID, ""); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("empty message: %v", err)
	}

	n, err := svc.Emit(ctx, u.UserID, "Your appointment is confirmed.")
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	got, _ := svc.GetByID(ctx, n.NotificationID)
	if got == nil || got.NotificationIsRead || got.NotificationMessage != "Your appointment is confirmed." {
		t.Fatalf("round trip: %+v", got)
	}
}

func TestMarkReadIsIdempotent(t *testing.T) {
	svc, env := newService(t)
	ctx := context.Background()
	u := dbtest.User(t, env.DB, constants.RoleDonor, "dodi")
	n, _ := svc.Emit(ctx, u.UserID, "ping")

	if err := svc.MarkRead(ctx, n.NotificationID); err != nil {
		t.Fatalf("first mark: %v", err)
	}
	first, _ := svc.GetByID(ctx, n.NotificationID)

	env.Clock.Advance(time.Hour)
	if err := svc.MarkRead(ctx, n.NotificationID); err != nil {
		t.Fatalf("second mark: %v", err)
	}
	second, _ := svc.GetByID(ctx, n.NotificationID)
	if !second.NotificationIsRead || second.NotificationReadAt == nil || !second.NotificationReadAt.Equal(*first.NotificationReadAt) {
		t.Fatalf("read state changed: %+v vs %+v", first, second)
	}

	if err := svc.MarkRead(ctx, 999); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("unknown id: %v", err)
	}
}

func TestUnreadCountAndList(t *testing.T) {
	svc, env := newService(t)
	ctx := context.Background()
	u := dbtest.User(t, env.DB, constants.RoleRecipient, "rina")
	other := dbtest.User(t, env.DB, constants.RoleDonor, "dodi")

	for _, msg := range []string{"one", "two", "three"} {
		if _, err := svc.Emit(ctx, u.UserID, msg); err != nil {
			t.Fatalf("emit: %v", err)
		}
		env.Clock.Advance(time.Minute)
	}
	svc.Emit(ctx, other.UserID, "not yours")

	if n, _ := svc.UnreadCount(ctx, u.UserID); n != 3 {
		t.Fatalf("unread = %d, want 3", n)
	}
	page, err := svc.ListByUser(ctx, dto.ListNotificationsFilter{UserID: u.UserID}, helper.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 3 || page.Items[0].NotificationMessage != "three" {
		t.Fatalf("newest first expected: %+v", page.Items)
	}

	changed, err := svc.MarkAllRead(ctx, u.UserID)
	if err != nil || changed != 3 {
		t.Fatalf("mark all: %d %v", changed, err)
	}
	if n, _ := svc.UnreadCount(ctx, u.UserID); n != 0 {
		t.Fatalf("unread after mark all = %d", n)
	}
	if n, _ := svc.UnreadCount(ctx, other.UserID); n != 1 {
		t.Fatalf("other user unread = %d", n)
	}
}
