// Package middleware contém os middlewares HTTP do serviço da oficina.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/lfarias/oficina-system/internal/auth"
)

type contextKey string

const usuarioKey contextKey = "usuario"

// AuthMiddleware valida o token Bearer das requisições e anexa a identidade
// verificada ao contexto. Os handlers nunca confiam em identidade enviada
// pelo cliente fora do token.
type AuthMiddleware struct {
	tokens *auth.TokenManager
}

// NewAuthMiddleware cria o middleware de autenticação com o gerenciador de
// tokens informado.
func NewAuthMiddleware(tokens *auth.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Middleware exige um token de acesso válido no header Authorization.
func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			unauthorized(w, "Não autorizado, nenhum token fornecido.")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorized(w, "Não autorizado, token inválido.")
			return
		}

		claims, err := a.tokens.ParseAccessToken(parts[1])
		if err != nil {
			unauthorized(w, "Não autorizado, token falhou ou é inválido.")
			return
		}

		ctx := context.WithValue(r.Context(), usuarioKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

// GetUsuarioFromContext extrai a identidade verificada do contexto da
// requisição.
func GetUsuarioFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(usuarioKey).(*auth.Claims)
	return claims, ok
}
