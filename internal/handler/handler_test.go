package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lfarias/oficina-system/internal/auth"
	"github.com/lfarias/oficina-system/internal/middleware"
	"github.com/lfarias/oficina-system/internal/model"
	"github.com/lfarias/oficina-system/internal/repository"
	"github.com/lfarias/oficina-system/internal/service"
)

// stubService permite injetar o comportamento de cada operação por teste.
// Métodos sem função configurada devolvem valores zero.
type stubService struct {
	ping                 func(ctx context.Context) error
	registerUsuario      func(ctx context.Context, email, senha, nomeCompleto string) (*model.Usuario, error)
	authenticateUsuario  func(ctx context.Context, email, senha string) (*model.Usuario, error)
	listClientes         func(ctx context.Context) ([]model.Cliente, error)
	getCliente           func(ctx context.Context, id int64) (*model.Cliente, error)
	createCliente        func(ctx context.Context, c model.Cliente) (*model.Cliente, error)
	createVeiculo        func(ctx context.Context, v model.Veiculo) (*model.Veiculo, error)
	createPeca           func(ctx context.Context, p model.Peca) (*model.Peca, error)
	adjustPecaQuantidade func(ctx context.Context, id int64, quantidade int, operacao string) (*model.Peca, error)
	createPagamento      func(ctx context.Context, p model.Pagamento) (*model.Pagamento, error)
}

func (s *stubService) Ping(ctx context.Context) error {
	if s.ping != nil {
		return s.ping(ctx)
	}
	return nil
}

func (s *stubService) RegisterUsuario(ctx context.Context, email, senha, nomeCompleto string) (*model.Usuario, error) {
	if s.registerUsuario != nil {
		return s.registerUsuario(ctx, email, senha, nomeCompleto)
	}
	return &model.Usuario{ID: 1, Email: email, NomeCompleto: nomeCompleto}, nil
}

func (s *stubService) AuthenticateUsuario(ctx context.Context, email, senha string) (*model.Usuario, error) {
	if s.authenticateUsuario != nil {
		return s.authenticateUsuario(ctx, email, senha)
	}
	return &model.Usuario{ID: 1, Email: email}, nil
}

func (s *stubService) ListClientes(ctx context.Context) ([]model.Cliente, error) {
	if s.listClientes != nil {
		return s.listClientes(ctx)
	}
	return nil, nil
}

func (s *stubService) GetCliente(ctx context.Context, id int64) (*model.Cliente, error) {
	if s.getCliente != nil {
		return s.getCliente(ctx, id)
	}
	return &model.Cliente{ID: id}, nil
}

func (s *stubService) CreateCliente(ctx context.Context, c model.Cliente) (*model.Cliente, error) {
	if s.createCliente != nil {
		return s.createCliente(ctx, c)
	}
	c.ID = 1
	return &c, nil
}

func (s *stubService) UpdateCliente(_ context.Context, c model.Cliente) (*model.Cliente, error) {
	return &c, nil
}
func (s *stubService) DeleteCliente(_ context.Context, _ int64) error { return nil }
func (s *stubService) ListVeiculosByCliente(_ context.Context, _ int64) ([]model.Veiculo, error) {
	return nil, nil
}

func (s *stubService) ListVeiculos(_ context.Context) ([]model.Veiculo, error) { return nil, nil }
func (s *stubService) GetVeiculo(_ context.Context, id int64) (*model.Veiculo, error) {
	return &model.Veiculo{ID: id}, nil
}

func (s *stubService) CreateVeiculo(ctx context.Context, v model.Veiculo) (*model.Veiculo, error) {
	if s.createVeiculo != nil {
		return s.createVeiculo(ctx, v)
	}
	v.ID = 1
	return &v, nil
}

func (s *stubService) UpdateVeiculo(_ context.Context, v model.Veiculo) (*model.Veiculo, error) {
	return &v, nil
}
func (s *stubService) DeleteVeiculo(_ context.Context, _ int64) error { return nil }

func (s *stubService) ListPecas(_ context.Context) ([]model.Peca, error)             { return nil, nil }
func (s *stubService) ListPecasBaixoEstoque(_ context.Context) ([]model.Peca, error) { return nil, nil }
func (s *stubService) GetPeca(_ context.Context, id int64) (*model.Peca, error) {
	return &model.Peca{ID: id}, nil
}

func (s *stubService) CreatePeca(ctx context.Context, p model.Peca) (*model.Peca, error) {
	if s.createPeca != nil {
		return s.createPeca(ctx, p)
	}
	p.ID = 1
	return &p, nil
}

func (s *stubService) UpdatePeca(_ context.Context, p model.Peca) (*model.Peca, error) {
	return &p, nil
}
func (s *stubService) DeletePeca(_ context.Context, _ int64) error { return nil }

func (s *stubService) AdjustPecaQuantidade(ctx context.Context, id int64, quantidade int, operacao string) (*model.Peca, error) {
	if s.adjustPecaQuantidade != nil {
		return s.adjustPecaQuantidade(ctx, id, quantidade, operacao)
	}
	return &model.Peca{ID: id, Quantidade: quantidade}, nil
}

func (s *stubService) ListServicos(_ context.Context) ([]model.Servico, error) { return nil, nil }
func (s *stubService) GetServico(_ context.Context, id int64) (*model.Servico, []model.ServicoPeca, error) {
	return &model.Servico{ID: id}, nil, nil
}
func (s *stubService) CreateServico(_ context.Context, sv model.Servico, _ []model.ServicoPeca) (*model.Servico, error) {
	sv.ID = 1
	return &sv, nil
}
func (s *stubService) UpdateServico(_ context.Context, sv model.Servico) (*model.Servico, error) {
	return &sv, nil
}
func (s *stubService) DeleteServico(_ context.Context, _ int64) error { return nil }
func (s *stubService) AddPecaToServico(_ context.Context, _, _ int64, _ int) ([]model.ServicoPeca, error) {
	return nil, nil
}
func (s *stubService) RemovePecaFromServico(_ context.Context, _, _ int64) error { return nil }

func (s *stubService) ListFaturas(_ context.Context) ([]model.Fatura, error)         { return nil, nil }
func (s *stubService) ListFaturasEmAberto(_ context.Context) ([]model.Fatura, error) { return nil, nil }
func (s *stubService) GetFatura(_ context.Context, id int64) (*model.Fatura, []model.Pagamento, error) {
	return &model.Fatura{ID: id}, nil, nil
}
func (s *stubService) CreateFatura(_ context.Context, f model.Fatura) (*model.Fatura, error) {
	f.ID = 1
	return &f, nil
}
func (s *stubService) UpdateFatura(_ context.Context, f model.Fatura) (*model.Fatura, error) {
	return &f, nil
}
func (s *stubService) DeleteFatura(_ context.Context, _ int64) error { return nil }

func (s *stubService) ListPagamentos(_ context.Context) ([]model.Pagamento, error) { return nil, nil }
func (s *stubService) GetPagamento(_ context.Context, id int64) (*model.Pagamento, error) {
	return &model.Pagamento{ID: id}, nil
}
func (s *stubService) ListPagamentosByFatura(_ context.Context, _ int64) ([]model.Pagamento, error) {
	return nil, nil
}

func (s *stubService) CreatePagamento(ctx context.Context, p model.Pagamento) (*model.Pagamento, error) {
	if s.createPagamento != nil {
		return s.createPagamento(ctx, p)
	}
	p.ID = 1
	return &p, nil
}

func (s *stubService) UpdatePagamento(_ context.Context, p model.Pagamento) (*model.Pagamento, error) {
	return &p, nil
}
func (s *stubService) DeletePagamento(_ context.Context, _ int64) error { return nil }

type testServer struct {
	router http.Handler
	token  string
}

func newTestServer(t *testing.T, svc Service) *testServer {
	t.Helper()
	return newTestServerWithLogger(t, svc, zap.NewNop())
}

func newTestServerWithLogger(t *testing.T, svc Service, logger *zap.Logger) *testServer {
	t.Helper()

	tokens := auth.NewTokenManager("test-secret")
	h := NewHandler(svc, logger, tokens)
	router := NewRouter(h, middleware.NewAuthMiddleware(tokens), zap.NewNop())

	accessToken, err := tokens.NewAccessToken(&model.Usuario{ID: 1, Email: "dono@oficina.com"})
	if err != nil {
		t.Fatalf("new access token: %v", err)
	}

	return &testServer{router: router, token: accessToken}
}

func (ts *testServer) request(t *testing.T, method, path, body string, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return resp.Message
}

func TestRouter_ResourceRoutesRequireAuth(t *testing.T) {
	ts := newTestServer(t, &stubService{})

	for _, path := range []string{"/api/clientes", "/api/veiculos", "/api/estoque", "/api/servicos", "/api/faturas", "/api/pagamentos"} {
		w := ts.request(t, http.MethodGet, path, "", false)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s sem token: status = %d, want %d", path, w.Code, http.StatusUnauthorized)
		}
	}
}

func TestRouter_PublicRoutes(t *testing.T) {
	ts := newTestServer(t, &stubService{})

	if w := ts.request(t, http.MethodGet, "/", "", false); w.Code != http.StatusOK {
		t.Fatalf("GET /: status = %d, want %d", w.Code, http.StatusOK)
	}
	if w := ts.request(t, http.MethodGet, "/health", "", false); w.Code != http.StatusOK {
		t.Fatalf("GET /health: status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_EndpointDesconhecido(t *testing.T) {
	ts := newTestServer(t, &stubService{})

	w := ts.request(t, http.MethodGet, "/api/inexistente", "", true)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if msg := decodeError(t, w); msg != "Endpoint não encontrado" {
		t.Fatalf("message = %q", msg)
	}
}

func TestListClientes(t *testing.T) {
	svc := &stubService{
		listClientes: func(_ context.Context) ([]model.Cliente, error) {
			return []model.Cliente{{ID: 1, Nome: "Maria"}, {ID: 2, Nome: "Pedro"}}, nil
		},
	}
	ts := newTestServer(t, svc)

	w := ts.request(t, http.MethodGet, "/api/clientes", "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var clientes []model.Cliente
	if err := json.Unmarshal(w.Body.Bytes(), &clientes); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(clientes) != 2 || clientes[0].Nome != "Maria" {
		t.Fatalf("clientes = %+v", clientes)
	}
}

func TestCreateCliente_NomeObrigatorio(t *testing.T) {
	ts := newTestServer(t, &stubService{})

	w := ts.request(t, http.MethodPost, "/api/clientes", `{"email":"maria@exemplo.com"}`, true)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if msg := decodeError(t, w); msg != "Nome é obrigatório" {
		t.Fatalf("message = %q", msg)
	}
}

func TestGetCliente_NaoEncontrado(t *testing.T) {
	svc := &stubService{
		getCliente: func(_ context.Context, _ int64) (*model.Cliente, error) {
			return nil, repository.ErrNotFound
		},
	}
	ts := newTestServer(t, svc)

	w := ts.request(t, http.MethodGet, "/api/clientes/99", "", true)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if msg := decodeError(t, w); msg != "Cliente não encontrado" {
		t.Fatalf("message = %q", msg)
	}
}

func TestCreateVeiculo_PlacaInvalida(t *testing.T) {
	ts := newTestServer(t, &stubService{})

	body := `{"cliente_id":1,"modelo":"Gol","placa":"XYZ99","chassi":"9BWZZZ377VT004251"}`
	w := ts.request(t, http.MethodPost, "/api/veiculos", body, true)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if msg := decodeError(t, w); msg != "Placa inválida" {
		t.Fatalf("message = %q", msg)
	}
}

func TestCreateVeiculo_ClienteInexistente(t *testing.T) {
	svc := &stubService{
		createVeiculo: func(_ context.Context, _ model.Veiculo) (*model.Veiculo, error) {
			return nil, service.ErrClienteNotFound
		},
	}
	ts := newTestServer(t, svc)

	body := `{"cliente_id":42,"modelo":"Gol","placa":"ABC1D23","chassi":"9BWZZZ377VT004251"}`
	w := ts.request(t, http.MethodPost, "/api/veiculos", body, true)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if msg := decodeError(t, w); msg != "Cliente não encontrado" {
		t.Fatalf("message = %q", msg)
	}
}

func TestCreatePeca_ConverteParaCentavos(t *testing.T) {
	var got model.Peca
	svc := &stubService{
		createPeca: func(_ context.Context, p model.Peca) (*model.Peca, error) {
			got = p
			p.ID = 1
			return &p, nil
		},
	}
	ts := newTestServer(t, svc)

	body := `{"nome_peca":"Filtro de óleo","quantidade":10,"preco_custo":10.55,"preco_venda":19.9}`
	w := ts.request(t, http.MethodPost, "/api/estoque", body, true)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	if got.PrecoCusto != 1055 {
		t.Fatalf("preco_custo = %d centavos, want 1055", got.PrecoCusto)
	}
	if got.PrecoVenda != 1990 {
		t.Fatalf("preco_venda = %d centavos, want 1990", got.PrecoVenda)
	}

	var resp pecaResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.PrecoCusto != 10.55 || resp.PrecoVenda != 19.9 {
		t.Fatalf("resposta em reais = %+v", resp)
	}
}

func TestAdjustPecaQuantidade_OperacaoInvalida(t *testing.T) {
	svc := &stubService{
		adjustPecaQuantidade: func(_ context.Context, _ int64, _ int, _ string) (*model.Peca, error) {
			return nil, service.ErrOperacaoInvalida
		},
	}
	ts := newTestServer(t, svc)

	w := ts.request(t, http.MethodPut, "/api/estoque/1/quantidade", `{"quantidade":5,"operacao":"transferir"}`, true)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if msg := decodeError(t, w); msg != `Operação deve ser "adicionar" ou "remover"` {
		t.Fatalf("message = %q", msg)
	}
}

func TestAdjustPecaQuantidade_AceitaPutEPatch(t *testing.T) {
	ts := newTestServer(t, &stubService{})

	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		w := ts.request(t, method, "/api/estoque/1/quantidade", `{"quantidade":5,"operacao":"adicionar"}`, true)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, want %d: %s", method, w.Code, http.StatusOK, w.Body.String())
		}
	}
}

func TestAdjustPecaQuantidade_CamposObrigatorios(t *testing.T) {
	ts := newTestServer(t, &stubService{})

	w := ts.request(t, http.MethodPatch, "/api/estoque/1/quantidade", `{"operacao":"adicionar"}`, true)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if msg := decodeError(t, w); msg != "Quantidade e operação são obrigatórios" {
		t.Fatalf("message = %q", msg)
	}
}

func TestDeleteCliente_RegistraUsuarioNoLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ts := newTestServerWithLogger(t, &stubService{}, zap.New(core))

	w := ts.request(t, http.MethodDelete, "/api/clientes/1", "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	entries := logs.FilterMessage("cliente deletado").All()
	if len(entries) != 1 {
		t.Fatalf("entradas de log = %d, want 1", len(entries))
	}

	fields := entries[0].ContextMap()
	if fields["usuario"] != "dono@oficina.com" {
		t.Fatalf("usuario = %v, want dono@oficina.com", fields["usuario"])
	}
	if fields["clienteID"] != int64(1) {
		t.Fatalf("clienteID = %v, want 1", fields["clienteID"])
	}
}

func TestCreatePagamento_ExcedeFatura(t *testing.T) {
	svc := &stubService{
		createPagamento: func(_ context.Context, _ model.Pagamento) (*model.Pagamento, error) {
			return nil, service.ErrPagamentoExcedeFatura
		},
	}
	ts := newTestServer(t, svc)

	body := `{"fatura_id":1,"valor_pago":60,"metodo_pagamento":"Pix"}`
	w := ts.request(t, http.MethodPost, "/api/pagamentos", body, true)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if msg := decodeError(t, w); msg != "Valor do pagamento excede o valor restante da fatura" {
		t.Fatalf("message = %q", msg)
	}
}

func TestCreatePagamento_ConverteParaCentavos(t *testing.T) {
	var got model.Pagamento
	svc := &stubService{
		createPagamento: func(_ context.Context, p model.Pagamento) (*model.Pagamento, error) {
			got = p
			p.ID = 1
			return &p, nil
		},
	}
	ts := newTestServer(t, svc)

	body := `{"fatura_id":1,"valor_pago":150.75,"metodo_pagamento":"Cartão de Crédito"}`
	w := ts.request(t, http.MethodPost, "/api/pagamentos", body, true)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	if got.ValorPago != 15075 {
		t.Fatalf("valor_pago = %d centavos, want 15075", got.ValorPago)
	}
}

func TestLogin(t *testing.T) {
	svc := &stubService{
		authenticateUsuario: func(_ context.Context, email, senha string) (*model.Usuario, error) {
			if senha != "senha-forte" {
				return nil, service.ErrCredenciaisInvalidas
			}
			return &model.Usuario{ID: 7, Email: email, NomeCompleto: "Dona da Oficina"}, nil
		},
	}
	ts := newTestServer(t, svc)

	w := ts.request(t, http.MethodPost, "/api/auth/login", `{"email":"dono@oficina.com","password":"senha-forte"}`, false)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp loginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatalf("tokens vazios: %+v", resp)
	}
	if resp.Usuario.UsuarioID != 7 {
		t.Fatalf("usuario = %+v", resp.Usuario)
	}

	w = ts.request(t, http.MethodPost, "/api/auth/login", `{"email":"dono@oficina.com","password":"errada"}`, false)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("senha errada: status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRegister(t *testing.T) {
	svc := &stubService{
		registerUsuario: func(_ context.Context, email, _, nomeCompleto string) (*model.Usuario, error) {
			return &model.Usuario{ID: 3, Email: email, NomeCompleto: nomeCompleto}, nil
		},
	}
	ts := newTestServer(t, svc)

	body := `{"email":"novo@oficina.com","password":"senha-forte","nome_completo":"Novo Funcionário"}`
	w := ts.request(t, http.MethodPost, "/api/auth/register", body, false)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var resp usuarioResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.UsuarioID != 3 || resp.Email != "novo@oficina.com" {
		t.Fatalf("usuario = %+v", resp)
	}
}

func TestRegister_UsuarioExistente(t *testing.T) {
	svc := &stubService{
		registerUsuario: func(_ context.Context, _, _, _ string) (*model.Usuario, error) {
			return nil, repository.ErrUsuarioExists
		},
	}
	ts := newTestServer(t, svc)

	body := `{"email":"novo@oficina.com","password":"senha-forte"}`
	w := ts.request(t, http.MethodPost, "/api/auth/register", body, false)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
