// Package auth emite e valida os tokens de acesso da aplicação e cuida do
// hash de senhas.
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/lfarias/oficina-system/internal/model"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 720 * time.Hour

	// TokenTypeAccess identifica tokens aceitos nas rotas protegidas.
	TokenTypeAccess = "access"
	// TokenTypeRefresh identifica tokens emitidos apenas para renovação.
	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken é retornado quando o token não pode ser validado.
var ErrInvalidToken = errors.New("invalid token")

// Claims são as claims carregadas nos tokens JWT da aplicação.
type Claims struct {
	UserID       int64  `json:"user_id"`
	Email        string `json:"email"`
	NomeCompleto string `json:"nome_completo,omitempty"`
	TokenType    string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenManager assina e valida tokens JWT com segredo simétrico (HS256).
type TokenManager struct {
	secret []byte
}

// NewTokenManager cria um TokenManager com o segredo informado. Com segredo
// vazio, um segredo aleatório é gerado e as sessões não sobrevivem ao
// reinício do processo.
func NewTokenManager(secret string) *TokenManager {
	key := []byte(secret)
	if len(key) == 0 {
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err == nil {
			key = randomKey
		} else {
			key = []byte("default-secret-key")
		}
	}

	return &TokenManager{secret: key}
}

// NewAccessToken emite um token de acesso para o usuário.
func (m *TokenManager) NewAccessToken(u *model.Usuario) (string, error) {
	return m.newToken(u, TokenTypeAccess, accessTokenTTL)
}

// NewRefreshToken emite um token de renovação para o usuário.
func (m *TokenManager) NewRefreshToken(u *model.Usuario) (string, error) {
	return m.newToken(u, TokenTypeRefresh, refreshTokenTTL)
}

func (m *TokenManager) newToken(u *model.Usuario, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:       u.ID,
		Email:        u.Email,
		NomeCompleto: u.NomeCompleto,
		TokenType:    tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseAccessToken valida um token de acesso e retorna suas claims. Tokens de
// renovação são rejeitados.
func (m *TokenManager) ParseAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %v", ErrInvalidToken, token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != TokenTypeAccess {
		return nil, fmt.Errorf("%w: token type %q", ErrInvalidToken, claims.TokenType)
	}

	return claims, nil
}

// HashSenha gera o hash bcrypt de uma senha.
func HashSenha(senha string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(senha), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash senha: %w", err)
	}
	return hash, nil
}

// CheckSenha reporta se a senha confere com o hash armazenado.
func CheckSenha(hash []byte, senha string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(senha)) == nil
}
