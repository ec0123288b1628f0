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
)

type servicoPecaRequest struct {
	PecaID     *int64 `json:"peca_id"`
	Quantidade *int   `json:"quantidade"`
}

type servicoRequest struct {
	VeiculoID       *int64               `json:"veiculo_id"`
	FuncionarioID   *int64               `json:"funcionario_id"`
	DataAgendamento string               `json:"data_agendamento"`
	HoraAgendamento string               `json:"hora_agendamento"`
	TipoServico     string               `json:"tipo_servico"`
	Status          string               `json:"status"`
	Descricao       string               `json:"descricao"`
	ValorTotal      *float64             `json:"valor_total"`
	Pecas           []servicoPecaRequest `json:"pecas"`
}

type servicoPecaResponse struct {
	PecaID     int64   `json:"peca_id"`
	NomePeca   string  `json:"nome_peca"`
	Quantidade int     `json:"quantidade"`
	PrecoVenda float64 `json:"preco_venda"`
	SubTotal   float64 `json:"sub_total"`
}

type servicoResponse struct {
	ServicoID       int64                 `json:"servico_id"`
	VeiculoID       int64                 `json:"veiculo_id"`
	FuncionarioID   *int64                `json:"funcionario_id,omitempty"`
	DataAgendamento string                `json:"data_agendamento"`
	HoraAgendamento string                `json:"hora_agendamento,omitempty"`
	TipoServico     string                `json:"tipo_servico"`
	Status          string                `json:"status"`
	Descricao       string                `json:"descricao,omitempty"`
	ValorTotal      float64               `json:"valor_total"`
	Modelo          string                `json:"modelo,omitempty"`
	Placa           string                `json:"placa,omitempty"`
	NomeCliente     string                `json:"nome_cliente,omitempty"`
	Pecas           []servicoPecaResponse `json:"pecas,omitempty"`
}

func toServicoResponse(sv *model.Servico, pecas []model.ServicoPeca) servicoResponse {
	resp := servicoResponse{
		ServicoID:       sv.ID,
		VeiculoID:       sv.VeiculoID,
		FuncionarioID:   sv.FuncionarioID,
		DataAgendamento: formatDate(sv.DataAgendamento),
		HoraAgendamento: sv.HoraAgendamento,
		TipoServico:     sv.TipoServico,
		Status:          sv.Status,
		Descricao:       sv.Descricao,
		ValorTotal:      reais(sv.ValorTotal),
		Modelo:          sv.Modelo,
		Placa:           sv.Placa,
		NomeCliente:     sv.NomeCliente,
	}
	for _, p := range pecas {
		resp.Pecas = append(resp.Pecas, servicoPecaResponse{
			PecaID:     p.PecaID,
			NomePeca:   p.NomePeca,
			Quantidade: p.Quantidade,
			PrecoVenda: reais(p.PrecoVenda),
			SubTotal:   reais(p.SubTotal()),
		})
	}
	return resp
}

func (req *servicoRequest) validate() string {
	req.TipoServico = strings.TrimSpace(req.TipoServico)
	switch {
	case req.VeiculoID == nil:
		return "Veículo é obrigatório"
	case req.DataAgendamento == "":
		return "Data de agendamento é obrigatória"
	case req.TipoServico == "":
		return "Tipo de serviço é obrigatório"
	}
	for _, p := range req.Pecas {
		if p.PecaID == nil || p.Quantidade == nil || *p.Quantidade <= 0 {
			return "Peça e quantidade são obrigatórias em cada item de pecas"
		}
	}
	return ""
}

func (req *servicoRequest) toModel(id int64) (model.Servico, error) {
	data, err := parseDate(req.DataAgendamento)
	if err != nil {
		return model.Servico{}, err
	}

	sv := model.Servico{
		ID:              id,
		VeiculoID:       *req.VeiculoID,
		FuncionarioID:   req.FuncionarioID,
		DataAgendamento: data,
		HoraAgendamento: req.HoraAgendamento,
		TipoServico:     req.TipoServico,
		Status:          req.Status,
		Descricao:       req.Descricao,
	}
	if req.ValorTotal != nil {
		sv.ValorTotal = centavos(*req.ValorTotal)
	}
	return sv, nil
}

// ListServicos retorna todas as ordens de serviço com dados do veículo e do
// cliente.
func (h *Handler) ListServicos(w http.ResponseWriter, r *http.Request) {
	servicos, err := h.service.ListServicos(r.Context())
	if err != nil {
		h.respondInternal(w, "list servicos", err)
		return
	}

	out := make([]servicoResponse, 0, len(servicos))
	for i := range servicos {
		out = append(out, toServicoResponse(&servicos[i], nil))
	}
	h.respondJSON(w, http.StatusOK, out)
}

// GetServico retorna uma ordem de serviço com as peças utilizadas.
func (h *Handler) GetServico(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	sv, pecas, err := h.service.GetServico(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "Serviço não encontrado")
			return
		}
		h.respondInternal(w, "get servico", err)
		return
	}

	h.respondJSON(w, http.StatusOK, toServicoResponse(sv, pecas))
}

// CreateServico abre uma ordem de serviço, vinculando opcionalmente as peças
// informadas.
func (h *Handler) CreateServico(w http.ResponseWriter, r *http.Request) {
	var req servicoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	if msg := req.validate(); msg != "" {
		h.respondError(w, http.StatusBadRequest, msg)
		return
	}

	sv, err := req.toModel(0)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Data de agendamento inválida, use o formato AAAA-MM-DD")
		return
	}

	var pecas []model.ServicoPeca
	for _, p := range req.Pecas {
		pecas = append(pecas, model.ServicoPeca{PecaID: *p.PecaID, Quantidade: *p.Quantidade})
	}

	created, err := h.service.CreateServico(r.Context(), sv, pecas)
	if err != nil {
		if errors.Is(err, service.ErrVeiculoNotFound) {
			h.respondError(w, http.StatusBadRequest, "Veículo não encontrado")
			return
		}
		h.respondInternal(w, "create servico", err)
		return
	}

	h.respondJSON(w, http.StatusCreated, toServicoResponse(created, nil))
}

// UpdateServico atualiza uma ordem de serviço existente.
func (h *Handler) UpdateServico(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	var req servicoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	if msg := req.validate(); msg != "" {
		h.respondError(w, http.StatusBadRequest, msg)
		return
	}

	sv, err := req.toModel(id)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Data de agendamento inválida, use o formato AAAA-MM-DD")
		return
	}

	updated, err := h.service.UpdateServico(r.Context(), sv)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "Serviço não encontrado")
			return
		}
		h.respondInternal(w, "update servico", err)
		return
	}

	h.respondJSON(w, http.StatusOK, toServicoResponse(updated, nil))
}

// DeleteServico remove uma ordem de serviço sem faturas vinculadas.
func (h *Handler) DeleteServico(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	if err := h.service.DeleteServico(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			h.respondError(w, http.StatusNotFound, "Serviço não encontrado")
		case errors.Is(err, repository.ErrServicoHasFaturas):
			h.respondError(w, http.StatusBadRequest, "Não é possível deletar serviço com faturas associadas")
		default:
			h.respondInternal(w, "delete servico", err)
		}
		return
	}

	h.logger.Info("servico deletado", zap.Int64("servicoID", id), zap.String("usuario", actor(r)))
	h.respondJSON(w, http.StatusOK, map[string]string{"message": "Serviço deletado com sucesso"})
}

// AddPecaToServico vincula uma peça a uma ordem de serviço.
func (h *Handler) AddPecaToServico(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	var req servicoPecaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	if req.PecaID == nil || req.Quantidade == nil || *req.Quantidade <= 0 {
		h.respondError(w, http.StatusBadRequest, "Peça e quantidade são obrigatórias")
		return
	}

	pecas, err := h.service.AddPecaToServico(r.Context(), id, *req.PecaID, *req.Quantidade)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrServicoNotFound):
			h.respondError(w, http.StatusNotFound, "Serviço não encontrado")
		case errors.Is(err, service.ErrPecaNotFound):
			h.respondError(w, http.StatusBadRequest, "Peça não encontrada")
		default:
			h.respondInternal(w, "add peca to servico", err)
		}
		return
	}

	out := make([]servicoPecaResponse, 0, len(pecas))
	for _, p := range pecas {
		out = append(out, servicoPecaResponse{
			PecaID:     p.PecaID,
			NomePeca:   p.NomePeca,
			Quantidade: p.Quantidade,
			PrecoVenda: reais(p.PrecoVenda),
			SubTotal:   reais(p.SubTotal()),
		})
	}
	h.respondJSON(w, http.StatusOK, out)
}

// RemovePecaFromServico desfaz o vínculo entre uma peça e uma ordem de
// serviço.
func (h *Handler) RemovePecaFromServico(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "ID inválido")
		return
	}
	pecaID, err := idParam(r, "pecaId")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	if err := h.service.RemovePecaFromServico(r.Context(), id, pecaID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "Vínculo entre serviço e peça não encontrado")
			return
		}
		h.respondInternal(w, "remove peca from servico", err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"message": "Peça removida do serviço com sucesso"})
}
