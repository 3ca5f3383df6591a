package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestAccount_Identifier(t *testing.T) {
	id := uuid.New()

	player := NewPlayerAccount(id, "Steve")
	if player.Identifier() != id.String() {
		t.Errorf("player identifier = %s, want %s", player.Identifier(), id)
	}

	shared := NewNonPlayerAccount(AccountKindNonPlayer, "Treasury")
	if shared.Identifier() != "Treasury" {
		t.Errorf("shared identifier = %s, want Treasury", shared.Identifier())
	}
}

func TestValidExternalID(t *testing.T) {
	if !ValidExternalID(uuid.New().String()) {
		t.Error("uuid string should be a valid external id")
	}

	if ValidExternalID("Treasury") {
		t.Error("plain name should not be a valid external id")
	}
}

func TestAccountResponse_String(t *testing.T) {
	tests := []struct {
		response AccountResponse
		want     string
	}{
		{AccountCreated, "created"},
		{AccountAlreadyExists, "already exists"},
		{AccountCreationFailed, "creation failed"},
		{AccountResponse(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.response.String(); got != tt.want {
			t.Errorf("String() = %s, want %s", got, tt.want)
		}
	}
}
