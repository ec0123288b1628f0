// Package model contém as entidades de domínio da oficina mecânica.
package model

import "time"

// Usuario representa um usuário autenticável da aplicação.
type Usuario struct {
	ID           int64
	Email        string
	SenhaHash    []byte
	NomeCompleto string
	CriadoEm     time.Time
}

// Cliente representa um cliente da oficina.
type Cliente struct {
	ID       int64  `json:"cliente_id"`
	Nome     string `json:"nome"`
	Endereco string `json:"endereco,omitempty"`
	Telefone string `json:"telefone,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Veiculo representa um veículo vinculado a um cliente. NomeCliente é
// preenchido apenas nas consultas enriquecidas com join em clientes.
type Veiculo struct {
	ID                int64  `json:"veiculo_id"`
	ClienteID         int64  `json:"cliente_id"`
	Modelo            string `json:"modelo"`
	Ano               int    `json:"ano,omitempty"`
	Placa             string `json:"placa"`
	Chassi            string `json:"chassi"`
	HistoricoServicos string `json:"historico_servicos,omitempty"`
	NomeCliente       string `json:"nome_cliente,omitempty"`
}

// Peca representa uma peça do estoque. Preços em centavos.
type Peca struct {
	ID          int64
	NomePeca    string
	Descricao   string
	Quantidade  int
	PrecoCusto  int64
	PrecoVenda  int64
	NivelMinimo int
}

// EstoqueBaixo indica se a peça está no nível mínimo ou abaixo dele.
func (p Peca) EstoqueBaixo() bool {
	return p.Quantidade <= p.NivelMinimo
}

// Servico representa uma ordem de serviço agendada para um veículo.
// Modelo, Placa e NomeCliente vêm das consultas enriquecidas.
type Servico struct {
	ID              int64
	VeiculoID       int64
	FuncionarioID   *int64
	DataAgendamento time.Time
	HoraAgendamento string
	TipoServico     string
	Status          string
	Descricao       string
	ValorTotal      int64

	Modelo      string
	Placa       string
	NomeCliente string
}

// ServicoPeca representa uma peça consumida por uma ordem de serviço.
type ServicoPeca struct {
	PecaID     int64
	NomePeca   string
	Quantidade int
	PrecoVenda int64
}

// SubTotal retorna quantidade x preço de venda, em centavos.
func (sp ServicoPeca) SubTotal() int64 {
	return int64(sp.Quantidade) * sp.PrecoVenda
}

// StatusPagamento descreve o estado de quitação de uma fatura.
type StatusPagamento string

const (
	StatusAberto           StatusPagamento = "Aberto"
	StatusParcialmentePago StatusPagamento = "Parcialmente Pago"
	StatusPago             StatusPagamento = "Pago"
)

// StatusFor classifica o status de pagamento de uma fatura a partir do valor
// total devido e da soma dos pagamentos, ambos em centavos.
func StatusFor(valorTotal, totalPago int64) StatusPagamento {
	switch {
	case totalPago == 0:
		return StatusAberto
	case totalPago < valorTotal:
		return StatusParcialmentePago
	default:
		return StatusPago
	}
}

// Fatura representa a cobrança emitida para uma ordem de serviço. O valor
// total é fixado na emissão; o status é sempre recalculado a partir dos
// pagamentos. TipoServico, Placa e NomeCliente vêm das consultas enriquecidas.
type Fatura struct {
	ID          int64
	ServicoID   int64
	DataEmissao time.Time
	ValorTotal  int64
	Status      StatusPagamento

	TipoServico string
	Placa       string
	NomeCliente string
}

// Pagamento representa um pagamento lançado contra uma fatura. DataEmissao e
// ValorTotalFatura vêm das consultas enriquecidas.
type Pagamento struct {
	ID            int64
	FaturaID      int64
	DataPagamento time.Time
	ValorPago     int64
	Metodo        string

	DataEmissao      time.Time
	ValorTotalFatura int64
}
