package handler

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/manavgup/ragcore/internal/types"
	"github.com/manavgup/ragcore/internal/types/interfaces"
)

type fakeUserService struct {
	interfaces.UserService
	validate func(ctx context.Context, token string) (*types.User, error)
}

func (f *fakeUserService) ValidateToken(ctx context.Context, token string) (*types.User, error) {
	return f.validate(ctx, token)
}

func TestAuthenticateUsesQueryTokenFirst(t *testing.T) {
	var seen string
	users := &fakeUserService{validate: func(ctx context.Context, token string) (*types.User, error) {
		seen = token
		return &types.User{ID: "u1"}, nil
	}}
	h := NewChatWSHandler(users, nil, nil)

	req := httptest.NewRequest("GET", "/ws/chat?token=abc123", nil)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = req

	user, err := h.authenticate(c)
	if err != nil {
		t.Fatalf("authenticate() error = %v", err)
	}
	if user.ID != "u1" || seen != "abc123" {
		t.Fatalf("authenticate() used token %q, want abc123", seen)
	}
}

func TestAuthenticateFallsBackToAuthorizationHeader(t *testing.T) {
	var seen string
	users := &fakeUserService{validate: func(ctx context.Context, token string) (*types.User, error) {
		seen = token
		return &types.User{ID: "u2"}, nil
	}}
	h := NewChatWSHandler(users, nil, nil)

	req := httptest.NewRequest("GET", "/ws/chat", nil)
	req.Header.Set("Authorization", "Bearer xyz789")
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = req

	user, err := h.authenticate(c)
	if err != nil {
		t.Fatalf("authenticate() error = %v", err)
	}
	if user.ID != "u2" || seen != "xyz789" {
		t.Fatalf("authenticate() used token %q, want xyz789 (Bearer prefix stripped)", seen)
	}
}

func TestAuthenticateFailsWithoutToken(t *testing.T) {
	h := NewChatWSHandler(&fakeUserService{validate: func(ctx context.Context, token string) (*types.User, error) {
		t.Fatal("ValidateToken must not be called without a token")
		return nil, nil
	}}, nil, nil)

	req := httptest.NewRequest("GET", "/ws/chat", nil)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = req

	if _, err := h.authenticate(c); err == nil {
		t.Fatal("expected an error when no token is present")
	}
}
