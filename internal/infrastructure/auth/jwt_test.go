package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iho/rentledger/internal/domain"
	"github.com/iho/rentledger/internal/infrastructure/auth"
)

func TestJWTManagerGenerateAndVerify(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("super-secret", time.Minute)

	user := &domain.User{
		ID:    "owner-123",
		Email: "owner@example.com",
		Role:  domain.RoleOwner,
	}

	token, err := manager.Generate(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("expected token to verify, got %v", err)
	}

	if claims.UserID != user.ID || claims.Email != user.Email || claims.Role != user.Role {
		t.Fatalf("expected claims to match user, got %+v", claims)
	}

	if claims.Subject != user.ID || claims.Issuer != auth.Issuer {
		t.Fatalf("expected registered claims to be set, got %+v", claims.RegisteredClaims)
	}

	if got := claims.User(); got.ID != user.ID || got.Role != domain.RoleOwner {
		t.Fatalf("unexpected user from claims: %+v", got)
	}

	verified, err := manager.VerifyUser(token)
	if err != nil || verified.ID != user.ID {
		t.Fatalf("expected VerifyUser to return the caller, got %+v (err=%v)", verified, err)
	}
}

func TestJWTManagerGenerateRejectsInvalidUser(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", time.Minute)

	if _, err := manager.Generate(&domain.User{ID: "u1", Role: "viewer"}); err != domain.ErrInsufficientRole {
		t.Fatalf("expected ErrInsufficientRole, got %v", err)
	}

	if _, err := manager.Generate(&domain.User{Role: domain.RoleAdmin}); err != domain.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestJWTManagerVerifyErrors(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", time.Minute)

	expiredClaims := auth.Claims{
		UserID: "expired",
		Role:   domain.RoleOwner,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    auth.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
			NotBefore: jwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
		},
	}

	expiredToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expiredClaims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("failed to sign expired token: %v", err)
	}

	if _, err := manager.Verify(expiredToken); err != domain.ErrExpiredToken {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}

	otherManager := auth.NewJWTManager("other-secret", time.Minute)
	if _, err := otherManager.Verify(expiredToken); err == nil || err == domain.ErrExpiredToken {
		t.Fatalf("expected invalid token error, got %v", err)
	}

	if _, err := manager.Verify("not-a-token"); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for malformed token, got %v", err)
	}
}

func TestJWTManagerVerifyRejectsForeignIssuerAndRole(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", time.Minute)

	sign := func(claims auth.Claims) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		if err != nil {
			t.Fatalf("failed to sign token: %v", err)
		}
		return token
	}

	future := jwt.NewNumericDate(time.Now().Add(time.Minute))

	foreign := sign(auth.Claims{
		UserID:           "u1",
		Role:             domain.RoleOwner,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else", ExpiresAt: future},
	})
	if _, err := manager.Verify(foreign); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for foreign issuer, got %v", err)
	}

	badRole := sign(auth.Claims{
		UserID:           "u1",
		Role:             "superuser",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: auth.Issuer, ExpiresAt: future},
	})
	if _, err := manager.Verify(badRole); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for unknown role, got %v", err)
	}
}
