package service

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/smarterbot/smartermcp/internal/config"
)

func newTokenService() *TokenService {
	return NewTokenService(config.Auth{
		JWTSecret:   "test-secret",
		TokenExpiry: 24 * time.Hour,
	})
}

func TestIssueAndValidate(t *testing.T) {
	svc := newTokenService()

	tok, err := svc.Issue("acme", "user-1", []string{"odoo:read", "odoo:write"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if strings.Count(tok, ".") != 2 {
		t.Fatalf("token is not compact JWT form: %q", tok)
	}

	claims, err := svc.Validate(tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Tenant != "acme" || claims.UserID != "user-1" {
		t.Errorf("claims = %+v", claims)
	}
	if len(claims.Permissions) != 2 {
		t.Errorf("permissions = %v", claims.Permissions)
	}
	if claims.JTI == "" {
		t.Error("expected a jti")
	}
	if got := claims.Expiry - claims.IssuedAt; got != int64(24*time.Hour/time.Second) {
		t.Errorf("expiry window = %ds", got)
	}
}

func TestIssueRequiresIdentity(t *testing.T) {
	svc := newTokenService()
	if _, err := svc.Issue("", "user-1", nil); err == nil {
		t.Error("expected error for empty tenant")
	}
	if _, err := svc.Issue("acme", "", nil); err == nil {
		t.Error("expected error for empty user id")
	}
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	svc := newTokenService()
	tok, err := svc.Issue("acme", "user-1", nil)
	if err != nil {
		t.Fatal(err)
	}

	parts := strings.SplitN(tok, ".", 3)
	payload, _ := base64URLDecode(parts[1])
	tampered := strings.Replace(string(payload), `"acme"`, `"mallory"`, 1)
	parts[1] = base64URLEncode([]byte(tampered))

	if _, err := svc.Validate(strings.Join(parts, ".")); err == nil {
		t.Fatal("expected signature failure for tampered payload")
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	tok, err := newTokenService().Issue("acme", "user-1", nil)
	if err != nil {
		t.Fatal(err)
	}

	other := NewTokenService(config.Auth{JWTSecret: "different", TokenExpiry: time.Hour})
	if _, err := other.Validate(tok); err == nil {
		t.Fatal("expected signature failure with a different secret")
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := newTokenService()
	svc.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	tok, err := svc.Issue("acme", "user-1", nil)
	if err != nil {
		t.Fatal(err)
	}

	svc.now = time.Now
	if _, err := svc.Validate(tok); err == nil {
		t.Fatal("expected expiry failure")
	}
}

func TestValidateRejectsNoneAlgorithm(t *testing.T) {
	svc := newTokenService()

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	payload, _ := json.Marshal(map[string]any{
		"tenant": "acme", "userId": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
		"aud": "smartermcp", "iss": "smartermcp",
	})
	forged := header + "." + base64.RawURLEncoding.EncodeToString(payload) + "."

	if _, err := svc.Validate(forged); err == nil {
		t.Fatal("expected rejection of alg=none token")
	}
}

func TestValidateRejectsMalformed(t *testing.T) {
	svc := newTokenService()
	for _, tok := range []string{"", "abc", "a.b", "not a token at all"} {
		if _, err := svc.Validate(tok); err == nil {
			t.Errorf("expected error for %q", tok)
		}
	}
}
