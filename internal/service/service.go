// Package service implementa as regras de negócio da oficina.
package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/lfarias/oficina-system/internal/auth"
	"github.com/lfarias/oficina-system/internal/model"
	"github.com/lfarias/oficina-system/internal/repository"
)

// Operações aceitas no ajuste de quantidade do estoque.
const (
	OperacaoAdicionar = "adicionar"
	OperacaoRemover   = "remover"
)

// ErrCredenciaisInvalidas é retornado quando email ou senha não conferem.
var (
	ErrCredenciaisInvalidas = errors.New("invalid credentials")
	// ErrClienteNotFound indica referência a um cliente inexistente.
	ErrClienteNotFound = errors.New("cliente not found")
	// ErrVeiculoNotFound indica referência a um veículo inexistente.
	ErrVeiculoNotFound = errors.New("veiculo not found")
	// ErrServicoNotFound indica referência a uma ordem de serviço inexistente.
	ErrServicoNotFound = errors.New("servico not found")
	// ErrPecaNotFound indica referência a uma peça inexistente.
	ErrPecaNotFound = errors.New("peca not found")
	// ErrFaturaNotFound indica referência a uma fatura inexistente.
	ErrFaturaNotFound = errors.New("fatura not found")
	// ErrPagamentoExcedeFatura é retornado quando o pagamento ultrapassaria o
	// valor restante da fatura.
	ErrPagamentoExcedeFatura = errors.New("pagamento exceeds remaining fatura value")
	// ErrOperacaoInvalida é retornada para operações de estoque desconhecidas.
	ErrOperacaoInvalida = errors.New("invalid estoque operation")
)

// Repository descreve o contrato de acesso a dados usado pelo serviço.
type Repository interface {
	Close() error
	Ping(ctx context.Context) error

	CreateUsuario(ctx context.Context, email string, senhaHash []byte, nomeCompleto string) (*model.Usuario, error)
	GetUsuarioByEmail(ctx context.Context, email string) (*model.Usuario, error)

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
	AdjustPecaQuantidade(ctx context.Context, id int64, delta int) (*model.Peca, error)

	ListServicos(ctx context.Context) ([]model.Servico, error)
	GetServico(ctx context.Context, id int64) (*model.Servico, error)
	ListPecasByServico(ctx context.Context, servicoID int64) ([]model.ServicoPeca, error)
	CreateServico(ctx context.Context, s model.Servico) (int64, error)
	UpdateServico(ctx context.Context, s model.Servico) error
	DeleteServico(ctx context.Context, id int64) error
	UpsertServicoPeca(ctx context.Context, servicoID, pecaID int64, quantidade int) error
	DeleteServicoPeca(ctx context.Context, servicoID, pecaID int64) error

	ListFaturas(ctx context.Context) ([]model.Fatura, error)
	ListFaturasEmAberto(ctx context.Context) ([]model.Fatura, error)
	GetFatura(ctx context.Context, id int64) (*model.Fatura, error)
	CreateFatura(ctx context.Context, f model.Fatura) (int64, error)
	UpdateFatura(ctx context.Context, f model.Fatura) error
	DeleteFatura(ctx context.Context, id int64) error
	GetFaturaValorTotal(ctx context.Context, id int64) (int64, error)
	UpdateFaturaStatus(ctx context.Context, id int64, status model.StatusPagamento) error
	GetFaturaIDs(ctx context.Context, limit int) ([]int64, error)

	ListPagamentos(ctx context.Context) ([]model.Pagamento, error)
	GetPagamento(ctx context.Context, id int64) (*model.Pagamento, error)
	ListPagamentosByFatura(ctx context.Context, faturaID int64) ([]model.Pagamento, error)
	SumPagamentosByFatura(ctx context.Context, faturaID int64) (int64, error)
	CreatePagamento(ctx context.Context, p model.Pagamento) (int64, error)
	UpdatePagamento(ctx context.Context, p model.Pagamento) error
	DeletePagamento(ctx context.Context, id int64) error
}

// Service contém as regras de negócio da oficina.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService cria o serviço com o repositório e o logger informados.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Close libera os recursos do serviço.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// Ping verifica a disponibilidade do armazenamento.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// RegisterUsuario registra um novo usuário com a senha em hash bcrypt.
func (s *Service) RegisterUsuario(ctx context.Context, email, senha, nomeCompleto string) (*model.Usuario, error) {
	hash, err := auth.HashSenha(senha)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateUsuario(ctx, email, hash, nomeCompleto)
}

// AuthenticateUsuario valida email e senha e retorna o usuário. Email
// desconhecido e senha incorreta produzem o mesmo erro.
func (s *Service) AuthenticateUsuario(ctx context.Context, email, senha string) (*model.Usuario, error) {
	u, err := s.repo.GetUsuarioByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCredenciaisInvalidas
		}
		return nil, err
	}

	if !auth.CheckSenha(u.SenhaHash, senha) {
		return nil, ErrCredenciaisInvalidas
	}

	return u, nil
}

// ListClientes retorna todos os clientes.
func (s *Service) ListClientes(ctx context.Context) ([]model.Cliente, error) {
	return s.repo.ListClientes(ctx)
}

// GetCliente retorna um cliente pelo identificador.
func (s *Service) GetCliente(ctx context.Context, id int64) (*model.Cliente, error) {
	return s.repo.GetCliente(ctx, id)
}

// CreateCliente cadastra um novo cliente.
func (s *Service) CreateCliente(ctx context.Context, c model.Cliente) (*model.Cliente, error) {
	return s.repo.CreateCliente(ctx, c)
}

// UpdateCliente atualiza um cliente existente.
func (s *Service) UpdateCliente(ctx context.Context, c model.Cliente) (*model.Cliente, error) {
	return s.repo.UpdateCliente(ctx, c)
}

// DeleteCliente remove um cliente sem veículos vinculados.
func (s *Service) DeleteCliente(ctx context.Context, id int64) error {
	return s.repo.DeleteCliente(ctx, id)
}

// ListVeiculosByCliente retorna os veículos de um cliente.
func (s *Service) ListVeiculosByCliente(ctx context.Context, clienteID int64) ([]model.Veiculo, error) {
	return s.repo.ListVeiculosByCliente(ctx, clienteID)
}

// ListVeiculos retorna todos os veículos.
func (s *Service) ListVeiculos(ctx context.Context) ([]model.Veiculo, error) {
	return s.repo.ListVeiculos(ctx)
}

// GetVeiculo retorna um veículo pelo identificador.
func (s *Service) GetVeiculo(ctx context.Context, id int64) (*model.Veiculo, error) {
	return s.repo.GetVeiculo(ctx, id)
}

// CreateVeiculo cadastra um veículo após confirmar que o cliente existe.
func (s *Service) CreateVeiculo(ctx context.Context, v model.Veiculo) (*model.Veiculo, error) {
	if _, err := s.repo.GetCliente(ctx, v.ClienteID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClienteNotFound
		}
		return nil, err
	}
	return s.repo.CreateVeiculo(ctx, v)
}

// UpdateVeiculo atualiza um veículo existente.
func (s *Service) UpdateVeiculo(ctx context.Context, v model.Veiculo) (*model.Veiculo, error) {
	return s.repo.UpdateVeiculo(ctx, v)
}

// DeleteVeiculo remove um veículo sem serviços vinculados.
func (s *Service) DeleteVeiculo(ctx context.Context, id int64) error {
	return s.repo.DeleteVeiculo(ctx, id)
}

// ListPecas retorna todas as peças do estoque.
func (s *Service) ListPecas(ctx context.Context) ([]model.Peca, error) {
	return s.repo.ListPecas(ctx)
}

// ListPecasBaixoEstoque retorna as peças no nível mínimo ou abaixo dele.
func (s *Service) ListPecasBaixoEstoque(ctx context.Context) ([]model.Peca, error) {
	return s.repo.ListPecasBaixoEstoque(ctx)
}

// GetPeca retorna uma peça pelo identificador.
func (s *Service) GetPeca(ctx context.Context, id int64) (*model.Peca, error) {
	return s.repo.GetPeca(ctx, id)
}

// CreatePeca cadastra uma nova peça.
func (s *Service) CreatePeca(ctx context.Context, p model.Peca) (*model.Peca, error) {
	return s.repo.CreatePeca(ctx, p)
}

// UpdatePeca atualiza uma peça existente.
func (s *Service) UpdatePeca(ctx context.Context, p model.Peca) (*model.Peca, error) {
	return s.repo.UpdatePeca(ctx, p)
}

// DeletePeca remove uma peça não utilizada em serviços.
func (s *Service) DeletePeca(ctx context.Context, id int64) error {
	return s.repo.DeletePeca(ctx, id)
}

// AdjustPecaQuantidade soma ou subtrai quantidade do estoque de uma peça. A
// subtração que deixaria o estoque negativo é rejeitada.
func (s *Service) AdjustPecaQuantidade(ctx context.Context, id int64, quantidade int, operacao string) (*model.Peca, error) {
	var delta int
	switch operacao {
	case OperacaoAdicionar:
		delta = quantidade
	case OperacaoRemover:
		delta = -quantidade
	default:
		return nil, ErrOperacaoInvalida
	}

	return s.repo.AdjustPecaQuantidade(ctx, id, delta)
}
