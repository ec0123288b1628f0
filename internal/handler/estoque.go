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

type pecaRequest struct {
	NomePeca    string   `json:"nome_peca"`
	Descricao   string   `json:"descricao"`
	Quantidade  *int     `json:"quantidade"`
	PrecoCusto  *float64 `json:"preco_custo"`
	PrecoVenda  *float64 `json:"preco_venda"`
	NivelMinimo int      `json:"nivel_minimo"`
}

type pecaResponse struct {
	PecaID       int64   `json:"peca_id"`
	NomePeca     string  `json:"nome_peca"`
	Descricao    string  `json:"descricao,omitempty"`
	Quantidade   int     `json:"quantidade"`
	PrecoCusto   float64 `json:"preco_custo"`
	PrecoVenda   float64 `json:"preco_venda"`
	NivelMinimo  int     `json:"nivel_minimo"`
	EstoqueBaixo bool    `json:"estoque_baixo"`
}

type ajusteEstoqueRequest struct {
	Quantidade *int   `json:"quantidade"`
	Operacao   string `json:"operacao"`
}

func toPecaResponse(p *model.Peca) pecaResponse {
	return pecaResponse{
		PecaID:       p.ID,
		NomePeca:     p.NomePeca,
		Descricao:    p.Descricao,
		Quantidade:   p.Quantidade,
		PrecoCusto:   reais(p.PrecoCusto),
		PrecoVenda:   reais(p.PrecoVenda),
		NivelMinimo:  p.NivelMinimo,
		EstoqueBaixo: p.EstoqueBaixo(),
	}
}

func toPecaResponses(pecas []model.Peca) []pecaResponse {
	out := make([]pecaResponse, 0, len(pecas))
	for i := range pecas {
		out = append(out, toPecaResponse(&pecas[i]))
	}
	return out
}

func (req *pecaRequest) validate() string {
	req.NomePeca = strings.TrimSpace(req.NomePeca)
	switch {
	case req.NomePeca == "":
		return "Nome da peça é obrigatório"
	case req.Quantidade == nil || *req.Quantidade < 0:
		return "Quantidade é obrigatória e não pode ser negativa"
	case req.PrecoCusto == nil || *req.PrecoCusto < 0:
		return "Preço de custo é obrigatório e não pode ser negativo"
	case req.PrecoVenda == nil || *req.PrecoVenda < 0:
		return "Preço de venda é obrigatório e não pode ser negativo"
	}
	return ""
}

func (req *pecaRequest) toModel(id int64) model.Peca {
	return model.Peca{
		ID:          id,
		NomePeca:    req.NomePeca,
		Descricao:   req.Descricao,
		Quantidade:  *req.Quantidade,
		PrecoCusto:  centavos(*req.PrecoCusto),
		PrecoVenda:  centavos(*req.PrecoVenda),
		NivelMinimo: req.NivelMinimo,
	}
}

// ListPecas retorna todas as peças do estoque.
func (h *Handler) ListPecas(w http.ResponseWriter, r *http.Request) {
	pecas, err := h.service.ListPecas(r.Context())
	if err != nil {
		h.respondInternal(w, "list pecas", err)
		return
	}
	h.respondJSON(w, http.StatusOK, toPecaResponses(pecas))
}

// ListPecasBaixoEstoque retorna as peças no nível mínimo ou abaixo dele.
func (h *Handler) ListPecasBaixoEstoque(w http.ResponseWriter, r *http.Request) {
	pecas, err := h.service.ListPecasBaixoEstoque(r.Context())
	if err != nil {
		h.respondInternal(w, "list pecas baixo estoque", err)
		return
	}
	h.respondJSON(w, http.StatusOK, toPecaResponses(pecas))
}

// GetPeca retorna uma peça pelo identificador.
func (h *Handler) GetPeca(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	peca, err := h.service.GetPeca(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "Peça não encontrada")
			return
		}
		h.respondInternal(w, "get peca", err)
		return
	}

	h.respondJSON(w, http.StatusOK, toPecaResponse(peca))
}

// CreatePeca cadastra uma nova peça no estoque.
func (h *Handler) CreatePeca(w http.ResponseWriter, r *http.Request) {
	var req pecaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	if msg := req.validate(); msg != "" {
		h.respondError(w, http.StatusBadRequest, msg)
		return
	}

	peca, err := h.service.CreatePeca(r.Context(), req.toModel(0))
	if err != nil {
		if errors.Is(err, repository.ErrNomePecaExists) {
			h.respondError(w, http.StatusBadRequest, "Já existe uma peça com este nome")
			return
		}
		h.respondInternal(w, "create peca", err)
		return
	}

	h.respondJSON(w, http.StatusCreated, toPecaResponse(peca))
}

// UpdatePeca atualiza uma peça existente.
func (h *Handler) UpdatePeca(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	var req pecaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	if msg := req.validate(); msg != "" {
		h.respondError(w, http.StatusBadRequest, msg)
		return
	}

	peca, err := h.service.UpdatePeca(r.Context(), req.toModel(id))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			h.respondError(w, http.StatusNotFound, "Peça não encontrada")
		case errors.Is(err, repository.ErrNomePecaExists):
			h.respondError(w, http.StatusBadRequest, "Já existe uma peça com este nome")
		default:
			h.respondInternal(w, "update peca", err)
		}
		return
	}

	h.respondJSON(w, http.StatusOK, toPecaResponse(peca))
}

// DeletePeca remove uma peça não utilizada em serviços.
func (h *Handler) DeletePeca(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	if err := h.service.DeletePeca(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			h.respondError(w, http.StatusNotFound, "Peça não encontrada")
		case errors.Is(err, repository.ErrPecaInUse):
			h.respondError(w, http.StatusBadRequest, "Não é possível deletar peça utilizada em serviços")
		default:
			h.respondInternal(w, "delete peca", err)
		}
		return
	}

	h.logger.Info("peca deletada", zap.Int64("pecaID", id), zap.String("usuario", actor(r)))
	h.respondJSON(w, http.StatusOK, map[string]string{"message": "Peça deletada com sucesso"})
}

// AdjustPecaQuantidade soma ou subtrai quantidade do estoque de uma peça.
func (h *Handler) AdjustPecaQuantidade(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	var req ajusteEstoqueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	if req.Quantidade == nil || *req.Quantidade <= 0 || req.Operacao == "" {
		h.respondError(w, http.StatusBadRequest, "Quantidade e operação são obrigatórios")
		return
	}

	peca, err := h.service.AdjustPecaQuantidade(r.Context(), id, *req.Quantidade, req.Operacao)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOperacaoInvalida):
			h.respondError(w, http.StatusBadRequest, `Operação deve ser "adicionar" ou "remover"`)
		case errors.Is(err, repository.ErrNotFound):
			h.respondError(w, http.StatusNotFound, "Peça não encontrada")
		case errors.Is(err, repository.ErrEstoqueInsuficiente):
			h.respondError(w, http.StatusBadRequest, "Quantidade insuficiente em estoque")
		default:
			h.respondInternal(w, "adjust peca quantidade", err)
		}
		return
	}

	h.respondJSON(w, http.StatusOK, toPecaResponse(peca))
}
