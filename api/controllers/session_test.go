package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Uptivity/justsell-pos-sub002/pkg/auth"
	"github.com/Uptivity/justsell-pos-sub002/pkg/auth/session"
	"github.com/Uptivity/justsell-pos-sub002/pkg/config"
	"github.com/Uptivity/justsell-pos-sub002/pkg/enums"
)

type stubSessionTokenManager struct {
	lastRevoked     string
	lastRotateOld   string
	lastRotateEmpID uuid.UUID
	lastRotateBody  string
	rotateRespID    string
	rotateRespTok   string
	rotateErr       error
	revokeErr       error
}

func (s *stubSessionTokenManager) Rotate(ctx context.Context, oldAccessID string, employeeID uuid.UUID, provided string) (string, string, error) {
	s.lastRotateOld = oldAccessID
	s.lastRotateEmpID = employeeID
	s.lastRotateBody = provided
	return s.rotateRespID, s.rotateRespTok, s.rotateErr
}

func (s *stubSessionTokenManager) Revoke(ctx context.Context, accessID string) error {
	s.lastRevoked = accessID
	return s.revokeErr
}

var sessionJWT = config.JWTConfig{Secret: "secret", Issuer: "justsell", ExpirationMinutes: 10}

func mintSessionToken(t *testing.T, cfg config.JWTConfig, now time.Time) (string, auth.AccessTokenPayload) {
	t.Helper()
	payload := auth.AccessTokenPayload{
		EmployeeID: uuid.New(),
		StoreID:    uuid.New(),
		Role:       enums.EmployeeRoleManager,
		JTI:        session.NewAccessID(),
	}
	token, err := auth.MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	return token, payload
}

func TestAuthLogout(t *testing.T) {
	manager := &stubSessionTokenManager{}
	token, payload := mintSessionToken(t, sessionJWT, time.Now())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	AuthLogout(manager, sessionJWT, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if manager.lastRevoked != payload.JTI {
		t.Fatalf("expected revoked %s got %s", payload.JTI, manager.lastRevoked)
	}
}

func TestAuthLogoutRequiresToken(t *testing.T) {
	rec := httptest.NewRecorder()
	AuthLogout(&stubSessionTokenManager{}, sessionJWT, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthRefreshAcceptsExpiredAccessToken(t *testing.T) {
	manager := &stubSessionTokenManager{rotateRespID: "new-jti", rotateRespTok: "new-refresh"}
	token, payload := mintSessionToken(t, sessionJWT, time.Now().Add(-time.Hour))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", strings.NewReader(`{"refresh_token":"old-refresh"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	AuthRefresh(manager, sessionJWT, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if manager.lastRotateOld != payload.JTI || manager.lastRotateBody != "old-refresh" || manager.lastRotateEmpID != payload.EmployeeID {
		t.Fatalf("unexpected rotate args %+v", manager)
	}

	var resp struct {
		Data refreshResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.RefreshToken != "new-refresh" || resp.Data.ExpiresIn != 600 {
		t.Fatalf("unexpected refresh payload %+v", resp.Data)
	}
	claims, err := auth.ParseAccessToken(sessionJWT, resp.Data.AccessToken)
	if err != nil {
		t.Fatalf("parse new token: %v", err)
	}
	if claims.ID != "new-jti" || claims.StoreID != payload.StoreID || claims.Role != enums.EmployeeRoleManager {
		t.Fatalf("unexpected new claims %+v", claims)
	}
	if rec.Header().Get("X-JustSell-Token") != resp.Data.AccessToken {
		t.Fatalf("expected token header")
	}
}

func TestAuthRefreshInvalidRefreshToken(t *testing.T) {
	manager := &stubSessionTokenManager{rotateErr: session.ErrInvalidRefreshToken}
	token, _ := mintSessionToken(t, sessionJWT, time.Now())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", strings.NewReader(`{"refresh_token":"wrong"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	AuthRefresh(manager, sessionJWT, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}

	manager.rotateErr = errors.New("redis down")
	req = httptest.NewRequest(http.MethodPost, "/api/auth/refresh", strings.NewReader(`{"refresh_token":"wrong"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	AuthRefresh(manager, sessionJWT, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}
