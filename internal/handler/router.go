package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lfarias/oficina-system/internal/middleware"
)

// NewRouter monta as rotas da API. As rotas de recursos exigem token de
// acesso; a raiz, o health check e a autenticação são públicas.
func NewRouter(h *Handler, authMiddleware *middleware.AuthMiddleware, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger(logger))
	r.Use(middleware.GzipMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		h.respondError(w, http.StatusNotFound, "Endpoint não encontrado")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		h.respondError(w, http.StatusMethodNotAllowed, "Método não permitido")
	})

	r.Get("/", h.Index)
	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Middleware)

			r.Route("/clientes", func(r chi.Router) {
				r.Get("/", h.ListClientes)
				r.Post("/", h.CreateCliente)
				r.Get("/{id}", h.GetCliente)
				r.Put("/{id}", h.UpdateCliente)
				r.Delete("/{id}", h.DeleteCliente)
				r.Get("/{id}/veiculos", h.ListVeiculosByCliente)
			})

			r.Route("/veiculos", func(r chi.Router) {
				r.Get("/", h.ListVeiculos)
				r.Post("/", h.CreateVeiculo)
				r.Get("/{id}", h.GetVeiculo)
				r.Put("/{id}", h.UpdateVeiculo)
				r.Delete("/{id}", h.DeleteVeiculo)
			})

			r.Route("/estoque", func(r chi.Router) {
				r.Get("/", h.ListPecas)
				r.Post("/", h.CreatePeca)
				r.Get("/baixo-estoque", h.ListPecasBaixoEstoque)
				r.Get("/{id}", h.GetPeca)
				r.Put("/{id}", h.UpdatePeca)
				r.Delete("/{id}", h.DeletePeca)
				r.Put("/{id}/quantidade", h.AdjustPecaQuantidade)
				r.Patch("/{id}/quantidade", h.AdjustPecaQuantidade)
			})

			r.Route("/servicos", func(r chi.Router) {
				r.Get("/", h.ListServicos)
				r.Post("/", h.CreateServico)
				r.Get("/{id}", h.GetServico)
				r.Put("/{id}", h.UpdateServico)
				r.Delete("/{id}", h.DeleteServico)
				r.Post("/{id}/pecas", h.AddPecaToServico)
				r.Delete("/{id}/pecas/{pecaId}", h.RemovePecaFromServico)
			})

			r.Route("/faturas", func(r chi.Router) {
				r.Get("/", h.ListFaturas)
				r.Post("/", h.CreateFatura)
				r.Get("/em-aberto", h.ListFaturasEmAberto)
				r.Get("/{id}", h.GetFatura)
				r.Put("/{id}", h.UpdateFatura)
				r.Delete("/{id}", h.DeleteFatura)
			})

			r.Route("/pagamentos", func(r chi.Router) {
				r.Get("/", h.ListPagamentos)
				r.Post("/", h.CreatePagamento)
				r.Get("/{id}", h.GetPagamento)
				r.Put("/{id}", h.UpdatePagamento)
				r.Delete("/{id}", h.DeletePagamento)
				r.Get("/fatura/{faturaId}", h.ListPagamentosByFatura)
			})
		})
	})

	return r
}
