package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/lfarias/oficina-system/internal/model"
	"github.com/lfarias/oficina-system/internal/repository"
	"github.com/lfarias/oficina-system/internal/service"
	"github.com/lfarias/oficina-system/internal/validation"
)

type veiculoRequest struct {
	ClienteID         *int64 `json:"cliente_id"`
	Modelo            string `json:"modelo"`
	Ano               int    `json:"ano"`
	Placa             string `json:"placa"`
	Chassi            string `json:"chassi"`
	HistoricoServicos string `json:"historico_servicos"`
}

func (req *veiculoRequest) validate() string {
	req.Modelo = strings.TrimSpace(req.Modelo)
	req.Placa = strings.TrimSpace(req.Placa)
	req.Chassi = strings.TrimSpace(req.Chassi)

	switch {
	case req.ClienteID == nil:
		return "Cliente é obrigatório"
	case req.Modelo == "":
		return "Modelo é obrigatório"
	case req.Placa == "":
		return "Placa é obrigatória"
	case !validation.IsValidPlaca(req.Placa):
		return "Placa inválida"
	case req.Chassi == "":
		return "Chassi é obrigatório"
	}
	return ""
}

func (req *veiculoRequest) toModel(id int64) model.Veiculo {
	return model.Veiculo{
		ID:                id,
		ClienteID:         *req.ClienteID,
		Modelo:            req.Modelo,
		Ano:               req.Ano,
		Placa:             strings.ToUpper(strings.ReplaceAll(req.Placa, "-", "")),
		Chassi:            req.Chassi,
		HistoricoServicos: req.HistoricoServicos,
	}
}

// ListVeiculos retorna todos os veículos com o nome do cliente.
func (h *Handler) ListVeiculos(w http.ResponseWriter, r *http.Request) {
	veiculos, err := h.service.ListVeiculos(r.Context())
	if err != nil {
		h.respondInternal(w, "list veiculos", err)
		return
	}
	if veiculos == nil {
		veiculos = []model.Veiculo{}
	}
	h.respondJSON(w, http.StatusOK, veiculos)
}

// GetVeiculo retorna um veículo pelo identificador.
func (h *Handler) GetVeiculo(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	veiculo, err := h.service.GetVeiculo(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "Veículo não encontrado")
			return
		}
		h.respondInternal(w, "get veiculo", err)
		return
	}

	h.respondJSON(w, http.StatusOK, veiculo)
}

// CreateVeiculo cadastra um veículo para um cliente existente.
func (h *Handler) CreateVeiculo(w http.ResponseWriter, r *http.Request) {
	var req veiculoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	if msg := req.validate(); msg != "" {
		h.respondError(w, http.StatusBadRequest, msg)
		return
	}

	veiculo, err := h.service.CreateVeiculo(r.Context(), req.toModel(0))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClienteNotFound):
			h.respondError(w, http.StatusBadRequest, "Cliente não encontrado")
		case errors.Is(err, repository.ErrPlacaExists):
			h.respondError(w, http.StatusBadRequest, "Placa já cadastrada")
		case errors.Is(err, repository.ErrChassiExists):
			h.respondError(w, http.StatusBadRequest, "Chassi já cadastrado")
		default:
			h.respondInternal(w, "create veiculo", err)
		}
		return
	}

	h.respondJSON(w, http.StatusCreated, veiculo)
}

// UpdateVeiculo atualiza um veículo existente.
func (h *Handler) UpdateVeiculo(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	var req veiculoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	if msg := req.validate(); msg != "" {
		h.respondError(w, http.StatusBadRequest, msg)
		return
	}

	veiculo, err := h.service.UpdateVeiculo(r.Context(), req.toModel(id))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			h.respondError(w, http.StatusNotFound, "Veículo não encontrado")
		case errors.Is(err, repository.ErrPlacaExists):
			h.respondError(w, http.StatusBadRequest, "Placa já cadastrada")
		case errors.Is(err, repository.ErrChassiExists):
			h.respondError(w, http.StatusBadRequest, "Chassi já cadastrado")
		default:
			h.respondInternal(w, "update veiculo", err)
		}
		return
	}

	h.respondJSON(w, http.StatusOK, veiculo)
}

// DeleteVeiculo remove um veículo sem serviços vinculados.
func (h *Handler) DeleteVeiculo(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	if err := h.service.DeleteVeiculo(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			h.respondError(w, http.StatusNotFound, "Veículo não encontrado")
		case errors.Is(err, repository.ErrVeiculoHasServicos):
			h.respondError(w, http.StatusBadRequest, "Não é possível deletar veículo com serviços associados")
		default:
			h.respondInternal(w, "delete veiculo", err)
		}
		return
	}

	h.logger.Info("veiculo deletado", zap.Int64("veiculoID", id), zap.String("usuario", actor(r)))
	h.respondJSON(w, http.StatusOK, map[string]string{"message": "Veículo deletado com sucesso"})
}
