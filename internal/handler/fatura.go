package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/lfarias/oficina-system/internal/model"
	"github.com/lfarias/oficina-system/internal/repository"
	"github.com/lfarias/oficina-system/internal/service"
)

type faturaRequest struct {
	ServicoID   *int64   `json:"servico_id"`
	DataEmissao string   `json:"data_emissao"`
	ValorTotal  *float64 `json:"valor_total_fatura"`
	Status      string   `json:"status_pagamento"`
}

type faturaResponse struct {
	FaturaID    int64               `json:"fatura_id"`
	ServicoID   int64               `json:"servico_id"`
	DataEmissao string              `json:"data_emissao"`
	ValorTotal  float64             `json:"valor_total_fatura"`
	Status      string              `json:"status_pagamento"`
	TipoServico string              `json:"tipo_servico,omitempty"`
	Placa       string              `json:"placa,omitempty"`
	NomeCliente string              `json:"nome_cliente,omitempty"`
	Pagamentos  []pagamentoResponse `json:"pagamentos,omitempty"`
}

func toFaturaResponse(f *model.Fatura, pagamentos []model.Pagamento) faturaResponse {
	resp := faturaResponse{
		FaturaID:    f.ID,
		ServicoID:   f.ServicoID,
		DataEmissao: formatDate(f.DataEmissao),
		ValorTotal:  reais(f.ValorTotal),
		Status:      string(f.Status),
		TipoServico: f.TipoServico,
		Placa:       f.Placa,
		NomeCliente: f.NomeCliente,
	}
	for i := range pagamentos {
		resp.Pagamentos = append(resp.Pagamentos, toPagamentoResponse(&pagamentos[i]))
	}
	return resp
}

func toFaturaResponses(faturas []model.Fatura) []faturaResponse {
	out := make([]faturaResponse, 0, len(faturas))
	for i := range faturas {
		out = append(out, toFaturaResponse(&faturas[i], nil))
	}
	return out
}

func (req *faturaRequest) validate() string {
	switch {
	case req.ServicoID == nil:
		return "Serviço é obrigatório"
	case req.ValorTotal == nil || *req.ValorTotal < 0:
		return "Valor total da fatura é obrigatório e não pode ser negativo"
	}
	return ""
}

func (req *faturaRequest) toModel(id int64) (model.Fatura, error) {
	data, err := parseDate(req.DataEmissao)
	if err != nil {
		return model.Fatura{}, err
	}
	return model.Fatura{
		ID:          id,
		ServicoID:   *req.ServicoID,
		DataEmissao: data,
		ValorTotal:  centavos(*req.ValorTotal),
		Status:      model.StatusPagamento(req.Status),
	}, nil
}

// ListFaturas retorna todas as faturas com dados do serviço e do cliente.
func (h *Handler) ListFaturas(w http.ResponseWriter, r *http.Request) {
	faturas, err := h.service.ListFaturas(r.Context())
	if err != nil {
		h.respondInternal(w, "list faturas", err)
		return
	}
	h.respondJSON(w, http.StatusOK, toFaturaResponses(faturas))
}

// ListFaturasEmAberto retorna as faturas com status "Aberto".
func (h *Handler) ListFaturasEmAberto(w http.ResponseWriter, r *http.Request) {
	faturas, err := h.service.ListFaturasEmAberto(r.Context())
	if err != nil {
		h.respondInternal(w, "list faturas em aberto", err)
		return
	}
	h.respondJSON(w, http.StatusOK, toFaturaResponses(faturas))
}

// GetFatura retorna uma fatura com os pagamentos registrados.
func (h *Handler) GetFatura(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	f, pagamentos, err := h.service.GetFatura(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "Fatura não encontrada")
			return
		}
		h.respondInternal(w, "get fatura", err)
		return
	}

	h.respondJSON(w, http.StatusOK, toFaturaResponse(f, pagamentos))
}

// CreateFatura emite uma fatura para uma ordem de serviço.
func (h *Handler) CreateFatura(w http.ResponseWriter, r *http.Request) {
	var req faturaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	if msg := req.validate(); msg != "" {
		h.respondError(w, http.StatusBadRequest, msg)
		return
	}

	f, err := req.toModel(0)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Data de emissão inválida, use o formato AAAA-MM-DD")
		return
	}

	created, err := h.service.CreateFatura(r.Context(), f)
	if err != nil {
		if errors.Is(err, service.ErrServicoNotFound) {
			h.respondError(w, http.StatusBadRequest, "Serviço não encontrado")
			return
		}
		h.respondInternal(w, "create fatura", err)
		return
	}

	h.respondJSON(w, http.StatusCreated, toFaturaResponse(created, nil))
}

// UpdateFatura atualiza uma fatura existente.
func (h *Handler) UpdateFatura(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	var req faturaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	if msg := req.validate(); msg != "" {
		h.respondError(w, http.StatusBadRequest, msg)
		return
	}

	f, err := req.toModel(id)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Data de emissão inválida, use o formato AAAA-MM-DD")
		return
	}

	updated, err := h.service.UpdateFatura(r.Context(), f)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "Fatura não encontrada")
			return
		}
		h.respondInternal(w, "update fatura", err)
		return
	}

	h.respondJSON(w, http.StatusOK, toFaturaResponse(updated, nil))
}

// DeleteFatura remove uma fatura sem pagamentos vinculados.
func (h *Handler) DeleteFatura(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	if err := h.service.DeleteFatura(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			h.respondError(w, http.StatusNotFound, "Fatura não encontrada")
		case errors.Is(err, repository.ErrFaturaHasPagamentos):
			h.respondError(w, http.StatusBadRequest, "Não é possível deletar fatura com pagamentos associados")
		default:
			h.respondInternal(w, "delete fatura", err)
		}
		return
	}

	h.logger.Info("fatura deletada", zap.Int64("faturaID", id), zap.String("usuario", actor(r)))
	h.respondJSON(w, http.StatusOK, map[string]string{"message": "Fatura deletada com sucesso"})
}
