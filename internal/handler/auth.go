package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/lfarias/oficina-system/internal/model"
	"github.com/lfarias/oficina-system/internal/repository"
	"github.com/lfarias/oficina-system/internal/service"
)

type registerRequest struct {
	Email        string `json:"email"`
	Senha        string `json:"password"`
	NomeCompleto string `json:"nome_completo"`
}

type loginRequest struct {
	Email string `json:"email"`
	Senha string `json:"password"`
}

type usuarioResponse struct {
	UsuarioID    int64  `json:"usuario_id"`
	Email        string `json:"email"`
	NomeCompleto string `json:"nome_completo,omitempty"`
}

type loginResponse struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	Usuario      usuarioResponse `json:"user"`
}

func toUsuarioResponse(u *model.Usuario) usuarioResponse {
	return usuarioResponse{
		UsuarioID:    u.ID,
		Email:        u.Email,
		NomeCompleto: u.NomeCompleto,
	}
}

// Register cadastra um novo usuário da aplicação.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Senha == "" {
		h.respondError(w, http.StatusBadRequest, "Email e senha são obrigatórios")
		return
	}

	u, err := h.service.RegisterUsuario(r.Context(), req.Email, req.Senha, req.NomeCompleto)
	if err != nil {
		if errors.Is(err, repository.ErrUsuarioExists) {
			h.respondError(w, http.StatusBadRequest, "Usuário já cadastrado com este email")
			return
		}
		h.respondInternal(w, "register usuario", err)
		return
	}

	h.respondJSON(w, http.StatusCreated, toUsuarioResponse(u))
}

// Login autentica um usuário e emite os tokens de acesso.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Senha == "" {
		h.respondError(w, http.StatusBadRequest, "Email e senha são obrigatórios")
		return
	}

	u, err := h.service.AuthenticateUsuario(r.Context(), req.Email, req.Senha)
	if err != nil {
		if errors.Is(err, service.ErrCredenciaisInvalidas) {
			h.respondError(w, http.StatusUnauthorized, "Email ou senha inválidos")
			return
		}
		h.respondInternal(w, "authenticate usuario", err)
		return
	}

	accessToken, err := h.tokens.NewAccessToken(u)
	if err != nil {
		h.respondInternal(w, "issue access token", err)
		return
	}
	refreshToken, err := h.tokens.NewRefreshToken(u)
	if err != nil {
		h.respondInternal(w, "issue refresh token", err)
		return
	}

	h.respondJSON(w, http.StatusOK, loginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Usuario:      toUsuarioResponse(u),
	})
}
