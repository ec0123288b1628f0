// Package handler expõe a API REST da oficina.
package handler

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lfarias/oficina-system/internal/auth"
	"github.com/lfarias/oficina-system/internal/middleware"
	"github.com/lfarias/oficina-system/internal/model"
)

// Service descreve as operações de negócio usadas pelos handlers.
type Service interface {
	Ping(ctx context.Context) error

	RegisterUsuario(ctx context.Context, email, senha, nomeCompleto string) (*model.Usuario, error)
	AuthenticateUsuario(ctx context.Context, email, senha string) (*model.Usuario, error)

	ListClientes(ctx context.Context) ([]model.Cliente, error)
	GetCliente(ctx context.Context, id int64) (*model.Cliente, error)
	CreateCliente(ctx context.Context, c model.Cliente) (*model.Cliente, error)
	UpdateCliente(ctx context.Context, c model.Cliente) (*model.Cliente, error)
	DeleteCliente(ctx context.Context, id int64) error
	ListVeiculosByCliente(ctx context.Context, clienteID int64) ([]model.Veiculo, error)

	ListVeiculos(ctx context.Context) ([]model.Veiculo, error)
	GetVeiculo(ctx context.Context, id int64) (*model.Veiculo, error)
	CreateVeiculo(ctx context.Context, v model.Veiculo) (*model.Veiculo, error)
	UpdateVeiculo(ctx context.Context, v model.Veiculo) (*model.Veiculo, error)
	DeleteVeiculo(ctx context.Context, id int64) error

	ListPecas(ctx context.Context) ([]model.Peca, error)
	ListPecasBaixoEstoque(ctx context.Context) ([]model.Peca, error)
	GetPeca(ctx context.Context, id int64) (*model.Peca, error)
	CreatePeca(ctx context.Context, p model.Peca) (*model.Peca, error)
	UpdatePeca(ctx context.Context, p model.Peca) (*model.Peca, error)
	DeletePeca(ctx context.Context, id int64) error
	AdjustPecaQuantidade(ctx context.Context, id int64, quantidade int, operacao string) (*model.Peca, error)

	ListServicos(ctx context.Context) ([]model.Servico, error)
	GetServico(ctx context.Context, id int64) (*model.Servico, []model.ServicoPeca, error)
	CreateServico(ctx context.Context, s model.Servico, pecas []model.ServicoPeca) (*model.Servico, error)
	UpdateServico(ctx context.Context, s model.Servico) (*model.Servico, error)
	DeleteServico(ctx context.Context, id int64) error
	AddPecaToServico(ctx context.Context, servicoID, pecaID int64, quantidade int) ([]model.ServicoPeca, error)
	RemovePecaFromServico(ctx context.Context, servicoID, pecaID int64) error

	ListFaturas(ctx context.Context) ([]model.Fatura, error)
	ListFaturasEmAberto(ctx context.Context) ([]model.Fatura, error)
	GetFatura(ctx context.Context, id int64) (*model.Fatura, []model.Pagamento, error)
	CreateFatura(ctx context.Context, f model.Fatura) (*model.Fatura, error)
	UpdateFatura(ctx context.Context, f model.Fatura) (*model.Fatura, error)
	DeleteFatura(ctx context.Context, id int64) error

	ListPagamentos(ctx context.Context) ([]model.Pagamento, error)
	GetPagamento(ctx context.Context, id int64) (*model.Pagamento, error)
	ListPagamentosByFatura(ctx context.Context, faturaID int64) ([]model.Pagamento, error)
	CreatePagamento(ctx context.Context, p model.Pagamento) (*model.Pagamento, error)
	UpdatePagamento(ctx context.Context, p model.Pagamento) (*model.Pagamento, error)
	DeletePagamento(ctx context.Context, id int64) error
}

// Handler agrupa os handlers HTTP da API.
type Handler struct {
	service Service
	logger  *zap.Logger
	tokens  *auth.TokenManager
}

// NewHandler cria o conjunto de handlers da API.
func NewHandler(service Service, logger *zap.Logger, tokens *auth.TokenManager) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		tokens:  tokens,
	}
}

const dateLayout = "2006-01-02"

type errorResponse struct {
	Message string `json:"message"`
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", zap.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, errorResponse{Message: message})
}

func (h *Handler) respondInternal(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, zap.Error(err))
	h.respondError(w, http.StatusInternalServerError, "Erro interno do servidor")
}

// actor retorna o email do usuário autenticado da requisição, para registro
// de auditoria das operações destrutivas.
func actor(r *http.Request) string {
	if claims, ok := middleware.GetUsuarioFromContext(r.Context()); ok {
		return claims.Email
	}
	return ""
}

// idParam extrai um parâmetro numérico da rota.
func idParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// centavos converte um valor em reais para centavos.
func centavos(v float64) int64 {
	return int64(math.Round(v * 100))
}

// reais converte um valor em centavos para reais.
func reais(c int64) float64 {
	return float64(c) / 100
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}

// Health responde ao health check, incluindo a disponibilidade do banco.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ping(r.Context()); err != nil {
		h.logger.Error("health check", zap.Error(err))
		h.respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "error",
			"db":     "down",
		})
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"db":     "up",
	})
}

// Index responde à raiz com os metadados da API.
func (h *Handler) Index(w http.ResponseWriter, _ *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{
		"name":    "API do Sistema de Gestão de Oficina Mecânica",
		"status":  "online",
		"version": "1.0.0",
	})
}
