package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/lfarias/oficina-system/internal/model"
	"github.com/lfarias/oficina-system/internal/repository"
)

type clienteRequest struct {
	Nome     string `json:"nome"`
	Endereco string `json:"endereco"`
	Telefone string `json:"telefone"`
	Email    string `json:"email"`
}

// ListClientes retorna todos os clientes ordenados por nome.
func (h *Handler) ListClientes(w http.ResponseWriter, r *http.Request) {
	clientes, err := h.service.ListClientes(r.Context())
	if err != nil {
		h.respondInternal(w, "list clientes", err)
		return
	}
	if clientes == nil {
		clientes = []model.Cliente{}
	}
	h.respondJSON(w, http.StatusOK, clientes)
}

// GetCliente retorna um cliente pelo identificador.
func (h *Handler) GetCliente(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	cliente, err := h.service.GetCliente(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "Cliente não encontrado")
			return
		}
		h.respondInternal(w, "get cliente", err)
		return
	}

	h.respondJSON(w, http.StatusOK, cliente)
}

// CreateCliente cadastra um novo cliente.
func (h *Handler) CreateCliente(w http.ResponseWriter, r *http.Request) {
	var req clienteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	req.Nome = strings.TrimSpace(req.Nome)
	if req.Nome == "" {
		h.respondError(w, http.StatusBadRequest, "Nome é obrigatório")
		return
	}

	cliente, err := h.service.CreateCliente(r.Context(), model.Cliente{
		Nome:     req.Nome,
		Endereco: req.Endereco,
		Telefone: req.Telefone,
		Email:    req.Email,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			h.respondError(w, http.StatusBadRequest, "Email já cadastrado")
			return
		}
		h.respondInternal(w, "create cliente", err)
		return
	}

	h.respondJSON(w, http.StatusCreated, cliente)
}

// UpdateCliente atualiza um cliente existente.
func (h *Handler) UpdateCliente(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	var req clienteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	req.Nome = strings.TrimSpace(req.Nome)
	if req.Nome == "" {
		h.respondError(w, http.StatusBadRequest, "Nome é obrigatório")
		return
	}

	cliente, err := h.service.UpdateCliente(r.Context(), model.Cliente{
		ID:       id,
		Nome:     req.Nome,
		Endereco: req.Endereco,
		Telefone: req.Telefone,
		Email:    req.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			h.respondError(w, http.StatusNotFound, "Cliente não encontrado")
		case errors.Is(err, repository.ErrEmailExists):
			h.respondError(w, http.StatusBadRequest, "Email já cadastrado")
		default:
			h.respondInternal(w, "update cliente", err)
		}
		return
	}

	h.respondJSON(w, http.StatusOK, cliente)
}

// DeleteCliente remove um cliente sem veículos vinculados.
func (h *Handler) DeleteCliente(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	if err := h.service.DeleteCliente(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			h.respondError(w, http.StatusNotFound, "Cliente não encontrado")
		case errors.Is(err, repository.ErrClienteHasVeiculos):
			h.respondError(w, http.StatusBadRequest, "Não é possível deletar cliente com veículos associados")
		default:
			h.respondInternal(w, "delete cliente", err)
		}
		return
	}

	h.logger.Info("cliente deletado", zap.Int64("clienteID", id), zap.String("usuario", actor(r)))
	h.respondJSON(w, http.StatusOK, map[string]string{"message": "Cliente deletado com sucesso"})
}

// ListVeiculosByCliente retorna os veículos de um cliente.
func (h *Handler) ListVeiculosByCliente(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	if _, err := h.service.GetCliente(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "Cliente não encontrado")
			return
		}
		h.respondInternal(w, "get cliente", err)
		return
	}

	veiculos, err := h.service.ListVeiculosByCliente(r.Context(), id)
	if err != nil {
		h.respondInternal(w, "list veiculos do cliente", err)
		return
	}
	if veiculos == nil {
		veiculos = []model.Veiculo{}
	}
	h.respondJSON(w, http.StatusOK, veiculos)
}
