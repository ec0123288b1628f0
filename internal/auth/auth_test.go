package auth

import (
	"errors"
	"testing"

	"github.com/lfarias/oficina-system/internal/model"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret")

	u := &model.Usuario{
		ID:           7,
		Email:        "mecanico@oficina.com",
		NomeCompleto: "José Mecânico",
	}

	token, err := m.NewAccessToken(u)
	if err != nil {
		t.Fatalf("new access token: %v", err)
	}

	claims, err := m.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.UserID != u.ID {
		t.Fatalf("user id = %d, want %d", claims.UserID, u.ID)
	}
	if claims.Email != u.Email {
		t.Fatalf("email = %q, want %q", claims.Email, u.Email)
	}
	if claims.TokenType != TokenTypeAccess {
		t.Fatalf("token type = %q, want %q", claims.TokenType, TokenTypeAccess)
	}
}

func TestRefreshTokenRejectedAsAccess(t *testing.T) {
	m := NewTokenManager("test-secret")

	token, err := m.NewRefreshToken(&model.Usuario{ID: 7, Email: "a@b.com"})
	if err != nil {
		t.Fatalf("new refresh token: %v", err)
	}

	if _, err := m.ParseAccessToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for refresh token, got %v", err)
	}
}

func TestParseAccessTokenWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a").NewAccessToken(&model.Usuario{ID: 1, Email: "a@b.com"})
	if err != nil {
		t.Fatalf("new access token: %v", err)
	}

	if _, err := NewTokenManager("secret-b").ParseAccessToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestHashAndCheckSenha(t *testing.T) {
	hash, err := HashSenha("senha-forte")
	if err != nil {
		t.Fatalf("hash senha: %v", err)
	}

	if !CheckSenha(hash, "senha-forte") {
		t.Fatalf("correct senha rejected")
	}
	if CheckSenha(hash, "senha-errada") {
		t.Fatalf("wrong senha accepted")
	}
}
