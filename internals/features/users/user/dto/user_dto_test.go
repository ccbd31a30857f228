package dto

import (
	"encoding/json"
	"strings"
	"testing"

	"blood_donation_backend/internals/constants"
	uModel "blood_donation_backend/internals/features/users/user/model"
)

func TestFromModelHidesPasswordHash(t *testing.T) {
	if FromModel(nil) != nil {
		t.Fatalf("nil model must map to nil")
	}

	list := []uModel.UserModel{
		{UserID: 1, UserUsername: "admin", UserRole: constants.RoleAdmin, UserPasswordHash: "$2a$10$secret"},
		{UserID: 2, UserUsername: "dina", UserRole: constants.RoleDonor, UserPasswordHash: "$2a$10$other"},
	}
	out := FromModelList(list)
	if len(out) != 2 || out[1].ID != 2 || out[1].Username != "dina" || out[1].Role != constants.RoleDonor {
		t.Fatalf("responses = %+v", out)
	}

	raw, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "$2a$") {
		t.Fatalf("password hash leaked: %s", raw)
	}
}
