package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/parcelwatch/parcel-tracker/internal/core/domain"
)

type stubAuthService struct {
	issueFn func(ctx context.Context, password string) (string, error)
}

func (s *stubAuthService) IssueToken(ctx context.Context, password string) (string, error) {
	return s.issueFn(ctx, password)
}

func TestAuthHandler_Token(t *testing.T) {
	svc := &stubAuthService{
		issueFn: func(_ context.Context, password string) (string, error) {
			if password != "correct horse" {
				return "", domain.ErrInvalidCredentials
			}
			return "signed-token", nil
		},
	}
	h := NewAuthHandler(svc)

	c, rec := newTestContext(http.MethodPost, "/auth/token", `{"password":"correct horse"}`)
	if err := h.Token(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("undecodable response: %v", err)
	}
	if resp["token"] != "signed-token" {
		t.Errorf("expected the issued token, got %v", resp["token"])
	}
}

func TestAuthHandler_WrongPassword(t *testing.T) {
	svc := &stubAuthService{
		issueFn: func(context.Context, string) (string, error) {
			return "", domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(svc)

	c, _ := newTestContext(http.MethodPost, "/auth/token", `{"password":"wrong"}`)
	if err := h.Token(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials to propagate, got %v", err)
	}
}

func TestAuthHandler_MissingPassword(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{
		issueFn: func(context.Context, string) (string, error) {
			t.Error("no service call expected for an invalid request")
			return "", nil
		},
	})

	c, rec := newTestContext(http.MethodPost, "/auth/token", `{}`)
	if err := h.Token(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
