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

type pagamentoRequest struct {
	FaturaID      *int64   `json:"fatura_id"`
	DataPagamento string   `json:"data_pagamento"`
	ValorPago     *float64 `json:"valor_pago"`
	Metodo        string   `json:"metodo_pagamento"`
}

type pagamentoResponse struct {
	PagamentoID      int64   `json:"pagamento_id"`
	FaturaID         int64   `json:"fatura_id"`
	DataPagamento    string  `json:"data_pagamento"`
	ValorPago        float64 `json:"valor_pago"`
	Metodo           string  `json:"metodo_pagamento"`
	DataEmissao      string  `json:"data_emissao,omitempty"`
	ValorTotalFatura float64 `json:"valor_total_fatura,omitempty"`
}

func toPagamentoResponse(p *model.Pagamento) pagamentoResponse {
	return pagamentoResponse{
		PagamentoID:      p.ID,
		FaturaID:         p.FaturaID,
		DataPagamento:    formatDate(p.DataPagamento),
		ValorPago:        reais(p.ValorPago),
		Metodo:           p.Metodo,
		DataEmissao:      formatDate(p.DataEmissao),
		ValorTotalFatura: reais(p.ValorTotalFatura),
	}
}

func toPagamentoResponses(pagamentos []model.Pagamento) []pagamentoResponse {
	out := make([]pagamentoResponse, 0, len(pagamentos))
	for i := range pagamentos {
		out = append(out, toPagamentoResponse(&pagamentos[i]))
	}
	return out
}

func (req *pagamentoRequest) validate() string {
	switch {
	case req.FaturaID == nil:
		return "Fatura é obrigatória"
	case req.ValorPago == nil || *req.ValorPago <= 0:
		return "Valor pago é obrigatório e deve ser positivo"
	case req.Metodo == "":
		return "Método de pagamento é obrigatório"
	}
	return ""
}

func (req *pagamentoRequest) toModel(id int64) (model.Pagamento, error) {
	data, err := parseDate(req.DataPagamento)
	if err != nil {
		return model.Pagamento{}, err
	}
	return model.Pagamento{
		ID:            id,
		FaturaID:      *req.FaturaID,
		DataPagamento: data,
		ValorPago:     centavos(*req.ValorPago),
		Metodo:        req.Metodo,
	}, nil
}

// ListPagamentos retorna todos os pagamentos com dados da fatura.
func (h *Handler) ListPagamentos(w http.ResponseWriter, r *http.Request) {
	pagamentos, err := h.service.ListPagamentos(r.Context())
	if err != nil {
		h.respondInternal(w, "list pagamentos", err)
		return
	}
	h.respondJSON(w, http.StatusOK, toPagamentoResponses(pagamentos))
}

// GetPagamento retorna um pagamento pelo identificador.
func (h *Handler) GetPagamento(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	p, err := h.service.GetPagamento(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "Pagamento não encontrado")
			return
		}
		h.respondInternal(w, "get pagamento", err)
		return
	}

	h.respondJSON(w, http.StatusOK, toPagamentoResponse(p))
}

// ListPagamentosByFatura retorna os pagamentos de uma fatura.
func (h *Handler) ListPagamentosByFatura(w http.ResponseWriter, r *http.Request) {
	faturaID, err := idParam(r, "faturaId")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	pagamentos, err := h.service.ListPagamentosByFatura(r.Context(), faturaID)
	if err != nil {
		if errors.Is(err, service.ErrFaturaNotFound) {
			h.respondError(w, http.StatusNotFound, "Fatura não encontrada")
			return
		}
		h.respondInternal(w, "list pagamentos da fatura", err)
		return
	}

	h.respondJSON(w, http.StatusOK, toPagamentoResponses(pagamentos))
}

// CreatePagamento registra um pagamento contra uma fatura.
func (h *Handler) CreatePagamento(w http.ResponseWriter, r *http.Request) {
	var req pagamentoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	if msg := req.validate(); msg != "" {
		h.respondError(w, http.StatusBadRequest, msg)
		return
	}

	p, err := req.toModel(0)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Data de pagamento inválida, use o formato AAAA-MM-DD")
		return
	}

	created, err := h.service.CreatePagamento(r.Context(), p)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFaturaNotFound):
			h.respondError(w, http.StatusBadRequest, "Fatura não encontrada")
		case errors.Is(err, service.ErrPagamentoExcedeFatura):
			h.respondError(w, http.StatusBadRequest, "Valor do pagamento excede o valor restante da fatura")
		default:
			h.respondInternal(w, "create pagamento", err)
		}
		return
	}

	h.respondJSON(w, http.StatusCreated, toPagamentoResponse(created))
}

// UpdatePagamento altera um pagamento existente.
func (h *Handler) UpdatePagamento(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	var req pagamentoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	if msg := req.validate(); msg != "" {
		h.respondError(w, http.StatusBadRequest, msg)
		return
	}

	p, err := req.toModel(id)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Data de pagamento inválida, use o formato AAAA-MM-DD")
		return
	}

	updated, err := h.service.UpdatePagamento(r.Context(), p)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFaturaNotFound):
			h.respondError(w, http.StatusBadRequest, "Fatura não encontrada")
		case errors.Is(err, repository.ErrNotFound):
			h.respondError(w, http.StatusNotFound, "Pagamento não encontrado")
		default:
			h.respondInternal(w, "update pagamento", err)
		}
		return
	}

	h.respondJSON(w, http.StatusOK, toPagamentoResponse(updated))
}

// DeletePagamento remove um pagamento e reconcilia a fatura.
func (h *Handler) DeletePagamento(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	if err := h.service.DeletePagamento(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "Pagamento não encontrado")
			return
		}
		h.respondInternal(w, "delete pagamento", err)
		return
	}

	h.logger.Info("pagamento deletado", zap.Int64("pagamentoID", id), zap.String("usuario", actor(r)))
	h.respondJSON(w, http.StatusOK, map[string]string{"message": "Pagamento deletado com sucesso"})
}
