// Package service contains the gateway's business logic: tenant gating,
// action dispatch, token issuance, provisioning, and release checking.
package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smarterbot/smartermcp/internal/config"
	"github.com/smarterbot/smartermcp/internal/domain/credential"
)

const (
	tokenAudience = "smartermcp"
	tokenIssuer   = "smartermcp"
)

// TokenService issues and validates bearer credentials.
type TokenService struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewTokenService creates a token service from auth config.
func NewTokenService(cfg config.Auth) *TokenService {
	return &TokenService{
		secret: []byte(cfg.JWTSecret),
		expiry: cfg.TokenExpiry,
		now:    time.Now,
	}
}

// Issue signs a credential for the given tenant and user.
func (s *TokenService) Issue(tenant, userID string, permissions []string) (string, error) {
	if tenant == "" || userID == "" {
		return "", errors.New("tenant and user id are required")
	}

	now := s.now()
	claims := credential.Claims{
		Tenant:      tenant,
		UserID:      userID,
		Permissions: permissions,
		IssuedAt:    now.Unix(),
		Expiry:      now.Add(s.expiry).Unix(),
		JTI:         uuid.NewString(),
		Audience:    tokenAudience,
		Issuer:      tokenIssuer,
	}
	return s.sign(claims)
}

// Validate verifies a credential's signature, algorithm, expiry, audience,
// and issuer, returning its claims.
func (s *TokenService) Validate(tokenStr string) (*credential.Claims, error) {
	parts := strings.SplitN(tokenStr, ".", 3)
	if len(parts) != 3 {
		return nil, errors.New("malformed token")
	}

	// Pin the algorithm before trusting the signature.
	headerJSON, err := base64URLDecode(parts[0])
	if err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}
	var header struct {
		Alg string `json:"alg"`
	}
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, fmt.Errorf("unmarshal header: %w", err)
	}
	if header.Alg != "HS256" {
		return nil, errors.New("unexpected token algorithm")
	}

	signingInput := parts[0] + "." + parts[1]
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(signingInput))
	expectedSig := base64URLEncode(mac.Sum(nil))

	if !hmac.Equal([]byte(parts[2]), []byte(expectedSig)) {
		return nil, errors.New("invalid signature")
	}

	payload, err := base64URLDecode(parts[1])
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	var claims credential.Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("unmarshal claims: %w", err)
	}

	if s.now().Unix() > claims.Expiry {
		return nil, errors.New("token expired")
	}
	if claims.Audience != tokenAudience {
		return nil, errors.New("invalid token audience")
	}
	if claims.Issuer != tokenIssuer {
		return nil, errors.New("invalid token issuer")
	}

	return &claims, nil
}

// --- JWT encoding (HS256 with stdlib) ---

// jwtHeader is the fixed base64url-encoded header for HS256.
var jwtHeader = base64URLEncode([]byte(`{"alg":"HS256","typ":"JWT"}`))

func (s *TokenService) sign(claims credential.Claims) (string, error) {
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}

	signingInput := jwtHeader + "." + base64URLEncode(payload)
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(signingInput))
	sig := base64URLEncode(mac.Sum(nil))

	return signingInput + "." + sig, nil
}

func base64URLEncode(data []byte) string {
	return strings.TrimRight(base64.URLEncoding.EncodeToString(data), "=")
}

func base64URLDecode(s string) ([]byte, error) {
	// Add padding back
	switch len(s) % 4 {
	case 2:
		s += "=="
	case 3:
		s += "="
	}
	return base64.URLEncoding.DecodeString(s)
}
