// Copyright (c) 2026 Kadrio. All rights reserved.
// Author: platform@kadrio.io

// Package sec provides cryptographic primitives and bearer token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer and has no persistence dependencies of its own — whether
// a token is revoked or blacklisted is the session registry's concern.
package sec

import (
	"crypto/rsa"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kadrio/kadrio/pkg/uuidv7"
)

// # Token Types

const (
	// TokenTypeAccess marks short-lived bearer tokens used on every request.
	TokenTypeAccess = "access"

	// TokenTypeRefresh marks long-lived tokens used only to mint new access tokens.
	TokenTypeRefresh = "refresh"
)

// registeredClaimKeys are the payload keys owned by this package. Everything
// else found in a verified token is surfaced through [Claims.Extra].
var registeredClaimKeys = map[string]bool{
	"sub": true, "iss": true, "iat": true, "exp": true, "jti": true,
	"user_id": true, "code": true, "full_name": true, "email": true,
	"unit_name": true, "role_name": true,
	"is_superadmin": true, "is_active": true, "token_type": true,
}

// Subject is the denormalized identity snapshot embedded in access tokens.
//
// # Why denormalized?
//
// By embedding the code, name, and unit/role labels directly inside the JWT,
// callers can authorize and display the user WITHOUT querying the identity
// service on every single request.
type Subject struct {
	ID           string
	Code         string
	FullName     string
	Email        string
	UnitName     string
	RoleName     string
	IsSuperadmin bool
	IsActive     bool
}

// Claims is the verified, decoded payload of a Kadrio bearer token.
type Claims struct {
	// Subject mirrors the registered 'sub' claim (identity UUID).
	Subject string

	// UserID duplicates Subject under the legacy 'user_id' key.
	UserID string

	Code         string
	FullName     string
	Email        string
	UnitName     string
	RoleName     string
	IsSuperadmin bool
	IsActive     bool

	// TokenType is "access" or "refresh".
	TokenType string

	// TokenID is the unique 'jti' claim.
	TokenID string

	IssuedAt  time.Time
	ExpiresAt time.Time

	// Extra carries any additional claims merged in at issuance
	// (e.g. the role selected at a scoped login). Round-trips unchanged.
	Extra map[string]any
}

// TokenService handles generation and verification of JWT tokens using RS256.
type TokenService struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
}

// NewTokenService creates a new TokenService.
// It reads RSA keys from the provided filesystem paths.
func NewTokenService(privateKeyPath, publicKeyPath, issuer string) (*TokenService, error) {
	privateKeyData, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read private key from %s: %w", privateKeyPath, err)
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse private key: %w", err)
	}

	publicKeyData, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read public key from %s: %w", publicKeyPath, err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse public key: %w", err)
	}

	return &TokenService{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
	}, nil
}

// NewTokenServiceFromKey creates a TokenService from an in-memory RSA key.
// The public key is derived from the private key. Used by tests and tooling.
func NewTokenServiceFromKey(privateKey *rsa.PrivateKey, issuer string) *TokenService {
	return &TokenService{
		privateKey: privateKey,
		publicKey:  &privateKey.PublicKey,
		issuer:     issuer,
	}
}

// # Issuance

/*
IssueAccess creates a signed access token for the given subject.

Description: Embeds the full denormalized identity snapshot plus any extra
claims. Extra claims are additive — they may not shadow registered keys.

Parameters:
  - subject: Subject (denormalized identity snapshot)
  - timeToLive: time.Duration
  - extraClaims: map[string]any (nil allowed)

Returns:
  - string: Signed JWT
  - error: Signing failures
*/
func (service *TokenService) IssueAccess(subject Subject, timeToLive time.Duration, extraClaims map[string]any) (string, error) {
	currentTime := time.Now()

	payload := jwt.MapClaims{
		"sub":           subject.ID,
		"user_id":       subject.ID,
		"iss":           service.issuer,
		"iat":           jwt.NewNumericDate(currentTime),
		"exp":           jwt.NewNumericDate(currentTime.Add(timeToLive)),
		"jti":           uuidv7.New(),
		"code":          subject.Code,
		"full_name":     subject.FullName,
		"email":         subject.Email,
		"unit_name":     subject.UnitName,
		"role_name":     subject.RoleName,
		"is_superadmin": subject.IsSuperadmin,
		"is_active":     subject.IsActive,
		"token_type":    TokenTypeAccess,
	}

	// Merge extra claims additively. Registered keys stay authoritative.
	for key, value := range extraClaims {
		if !registeredClaimKeys[key] {
			payload[key] = value
		}
	}

	return service.sign(payload)
}

/*
IssueRefresh creates a signed refresh token for the given subject.

Description: Refresh tokens carry a minimal payload — just enough to
re-resolve the identity. Display fields belong in access tokens only.

Parameters:
  - subject: Subject

Returns:
  - string: Signed JWT
  - error: Signing failures
*/
func (service *TokenService) IssueRefresh(subject Subject, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()

	payload := jwt.MapClaims{
		"sub":           subject.ID,
		"user_id":       subject.ID,
		"iss":           service.issuer,
		"iat":           jwt.NewNumericDate(currentTime),
		"exp":           jwt.NewNumericDate(currentTime.Add(timeToLive)),
		"jti":           uuidv7.New(),
		"code":          subject.Code,
		"is_superadmin": subject.IsSuperadmin,
		"token_type":    TokenTypeRefresh,
	}

	return service.sign(payload)
}

func (service *TokenService) sign(payload jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, payload)
	signedToken, err := token.SignedString(service.privateKey)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}
	return signedToken, nil
}

// # Verification

/*
Verify checks the signature, validity window, and declared type of a token.

Description: Fails closed — any signature mismatch, expiry, malformed payload,
or token-type mismatch yields an error, never a partial identity. An access
token presented where a refresh token is expected (or vice versa) is invalid.

Parameters:
  - tokenString: string
  - expectedType: string (TokenTypeAccess or TokenTypeRefresh)

Returns:
  - *Claims: Fully decoded payload including extra claims
  - error: Verification failures
*/
func (service *TokenService) Verify(tokenString, expectedType string) (*Claims, error) {
	payload := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, payload, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.publicKey, nil
	}, jwt.WithIssuer(service.issuer), jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	// Token-type discrimination: well-formed but wrong-type is invalid.
	if tokenType, _ := payload["token_type"].(string); tokenType != expectedType {
		return nil, fmt.Errorf("sec: token type mismatch")
	}

	return decodeClaims(payload), nil
}

// decodeClaims maps the raw payload into a typed [Claims], preserving any
// non-registered keys in Extra.
func decodeClaims(payload jwt.MapClaims) *Claims {
	claims := &Claims{
		Subject:      stringClaim(payload, "sub"),
		UserID:       stringClaim(payload, "user_id"),
		Code:         stringClaim(payload, "code"),
		FullName:     stringClaim(payload, "full_name"),
		Email:        stringClaim(payload, "email"),
		UnitName:     stringClaim(payload, "unit_name"),
		RoleName:     stringClaim(payload, "role_name"),
		IsSuperadmin: boolClaim(payload, "is_superadmin"),
		IsActive:     boolClaim(payload, "is_active"),
		TokenType:    stringClaim(payload, "token_type"),
		TokenID:      stringClaim(payload, "jti"),
	}

	if issuedAt, err := payload.GetIssuedAt(); err == nil && issuedAt != nil {
		claims.IssuedAt = issuedAt.Time
	}
	if expiresAt, err := payload.GetExpirationTime(); err == nil && expiresAt != nil {
		claims.ExpiresAt = expiresAt.Time
	}

	for key, value := range payload {
		if !registeredClaimKeys[key] {
			if claims.Extra == nil {
				claims.Extra = make(map[string]any)
			}
			claims.Extra[key] = value
		}
	}

	return claims
}

func stringClaim(payload jwt.MapClaims, key string) string {
	value, _ := payload[key].(string)
	return value
}

func boolClaim(payload jwt.MapClaims, key string) bool {
	value, _ := payload[key].(bool)
	return value
}
