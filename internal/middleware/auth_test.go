package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lfarias/oficina-system/internal/auth"
	"github.com/lfarias/oficina-system/internal/model"
)

func TestAuthMiddleware_WithValidToken(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret")
	m := NewAuthMiddleware(tokens)

	accessToken, err := tokens.NewAccessToken(&model.Usuario{
		ID:           42,
		Email:        "dono@oficina.com",
		NomeCompleto: "Dona da Oficina",
	})
	if err != nil {
		t.Fatalf("new access token: %v", err)
	}

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		claims, ok := GetUsuarioFromContext(r.Context())
		if !ok {
			t.Fatalf("usuario not in context")
		}
		if claims.UserID != 42 {
			t.Fatalf("user id from context = %d, want 42", claims.UserID)
		}
		if claims.Email != "dono@oficina.com" {
			t.Fatalf("email from context = %q, want dono@oficina.com", claims.Email)
		}
	})

	r := httptest.NewRequest(http.MethodGet, "/api/clientes", nil)
	r.Header.Set("Authorization", "Bearer "+accessToken)
	w := httptest.NewRecorder()

	m.Middleware(next).ServeHTTP(w, r)

	if !nextCalled {
		t.Fatalf("next handler not called")
	}
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	m := NewAuthMiddleware(auth.NewTokenManager("test-secret"))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next handler must not be called")
	})

	r := httptest.NewRequest(http.MethodGet, "/api/clientes", nil)
	w := httptest.NewRecorder()

	m.Middleware(next).ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content-type = %q, want application/json", ct)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	if resp["message"] != "Não autorizado, nenhum token fornecido." {
		t.Fatalf("message = %q", resp["message"])
	}
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	m := NewAuthMiddleware(auth.NewTokenManager("test-secret"))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next handler must not be called")
	})

	for _, header := range []string{"token-sem-prefixo", "Basic abc123"} {
		r := httptest.NewRequest(http.MethodGet, "/api/clientes", nil)
		r.Header.Set("Authorization", header)
		w := httptest.NewRecorder()

		m.Middleware(next).ServeHTTP(w, r)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: status = %d, want %d", header, w.Code, http.StatusUnauthorized)
		}
	}
}

func TestAuthMiddleware_TokenFromOtherSecret(t *testing.T) {
	other := auth.NewTokenManager("other-secret")
	accessToken, err := other.NewAccessToken(&model.Usuario{ID: 1, Email: "x@y.com"})
	if err != nil {
		t.Fatalf("new access token: %v", err)
	}

	m := NewAuthMiddleware(auth.NewTokenManager("test-secret"))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next handler must not be called")
	})

	r := httptest.NewRequest(http.MethodGet, "/api/clientes", nil)
	r.Header.Set("Authorization", "Bearer "+accessToken)
	w := httptest.NewRecorder()

	m.Middleware(next).ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
