package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/iho/goeconomy/internal/adapter/http/dto"
	"github.com/iho/goeconomy/internal/domain"
)

type accountServiceStub struct {
	createFn func(ctx context.Context, identifier, name string) domain.AccountResponse
	findFn   func(ctx context.Context, identifier string) (*domain.Account, bool)
	deleteFn func(ctx context.Context, identifier string) error
	listFn   func() []*domain.Account
}

func (s *accountServiceStub) CreateAccount(ctx context.Context, identifier, name string) domain.AccountResponse {
	return s.createFn(ctx, identifier, name)
}

func (s *accountServiceStub) FindAccount(ctx context.Context, identifier string) (*domain.Account, bool) {
	return s.findFn(ctx, identifier)
}

func (s *accountServiceStub) DeleteAccount(ctx context.Context, identifier string) error {
	return s.deleteFn(ctx, identifier)
}

func (s *accountServiceStub) Accounts() []*domain.Account {
	return s.listFn()
}

func TestAccountHandler_Create_Success(t *testing.T) {
	account := domain.NewNonPlayerAccount("town", "Spawn")

	var capturedIdentifier, capturedName string
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, identifier, name string) domain.AccountResponse {
			capturedIdentifier = identifier
			capturedName = name
			return domain.AccountCreated
		},
		findFn: func(ctx context.Context, identifier string) (*domain.Account, bool) {
			return account, true
		},
	})

	body, _ := json.Marshal(dto.CreateAccountRequest{Name: "Spawn"})

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// A request without an explicit identifier falls back to the name.
	if capturedIdentifier != "Spawn" || capturedName != "Spawn" {
		t.Fatalf("expected identifier/name Spawn, got %q/%q", capturedIdentifier, capturedName)
	}

	var resp dto.CreateAccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Result != "created" || resp.Account == nil || resp.Account.Name != "Spawn" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAccountHandler_Create_Conflict(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, identifier, name string) domain.AccountResponse {
			return domain.AccountAlreadyExists
		},
	})

	body, _ := json.Marshal(dto.CreateAccountRequest{Identifier: "Treasury", Name: "Treasury"})

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAccountHandler_Create_InvalidJSON(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, identifier, name string) domain.AccountResponse {
			t.Fatal("CreateAccount should not be called for invalid payload")
			return domain.AccountCreationFailed
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_Get_NotFound(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		findFn: func(ctx context.Context, identifier string) (*domain.Account, bool) {
			return nil, false
		},
	})

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("identifier", "Nobody")

	req := httptest.NewRequest(http.MethodGet, "/accounts/Nobody", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAccountHandler_List(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		listFn: func() []*domain.Account {
			return []*domain.Account{
				domain.NewNonPlayerAccount("town", "Spawn"),
				domain.NewNonPlayerAccount("nonplayer", "Treasury"),
			}
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ListAccountsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 2 || len(resp.Accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %+v", resp)
	}
}
