package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lfarias/oficina-system/internal/model"
)

const servicoDetalhadoQuery = `
	SELECT s.servico_id, s.veiculo_id, s.funcionario_id, s.data_agendamento, s.hora_agendamento,
	       s.tipo_servico, s.status, COALESCE(s.descricao, ''), s.valor_total,
	       v.modelo, v.placa, c.nome
	FROM servicos s
	JOIN veiculos v ON v.veiculo_id = s.veiculo_id
	JOIN clientes c ON c.cliente_id = v.cliente_id`

func scanServicoDetalhado(row pgx.Row) (*model.Servico, error) {
	var s model.Servico
	err := row.Scan(&s.ID, &s.VeiculoID, &s.FuncionarioID, &s.DataAgendamento, &s.HoraAgendamento,
		&s.TipoServico, &s.Status, &s.Descricao, &s.ValorTotal,
		&s.Modelo, &s.Placa, &s.NomeCliente)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListServicos retorna todas as ordens de serviço com dados do veículo e do
// cliente, das mais recentes para as mais antigas.
func (r *PostgresRepository) ListServicos(ctx context.Context) ([]model.Servico, error) {
	rows, err := r.pool.Query(ctx,
		servicoDetalhadoQuery+` ORDER BY s.data_agendamento DESC, s.hora_agendamento DESC`)
	if err != nil {
		return nil, fmt.Errorf("select servicos: %w", err)
	}
	defer rows.Close()

	var servicos []model.Servico
	for rows.Next() {
		s, err := scanServicoDetalhado(rows)
		if err != nil {
			return nil, fmt.Errorf("scan servico: %w", err)
		}
		servicos = append(servicos, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return servicos, nil
}

// GetServico retorna uma ordem de serviço pelo identificador.
func (r *PostgresRepository) GetServico(ctx context.Context, id int64) (*model.Servico, error) {
	s, err := scanServicoDetalhado(r.pool.QueryRow(ctx, servicoDetalhadoQuery+` WHERE s.servico_id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get servico: %w", err)
	}
	return s, nil
}

// ListPecasByServico retorna as peças consumidas por uma ordem de serviço.
func (r *PostgresRepository) ListPecasByServico(ctx context.Context, servicoID int64) ([]model.ServicoPeca, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT sp.peca_id, e.nome_peca, sp.quantidade, e.preco_venda
		 FROM servicos_pecas sp
		 JOIN estoque e ON e.peca_id = sp.peca_id
		 WHERE sp.servico_id = $1
		 ORDER BY e.nome_peca`,
		servicoID,
	)
	if err != nil {
		return nil, fmt.Errorf("select pecas do servico: %w", err)
	}
	defer rows.Close()

	var pecas []model.ServicoPeca
	for rows.Next() {
		var sp model.ServicoPeca
		if err := rows.Scan(&sp.PecaID, &sp.NomePeca, &sp.Quantidade, &sp.PrecoVenda); err != nil {
			return nil, fmt.Errorf("scan servico peca: %w", err)
		}
		pecas = append(pecas, sp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return pecas, nil
}

// CreateServico insere uma nova ordem de serviço.
func (r *PostgresRepository) CreateServico(ctx context.Context, s model.Servico) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO servicos (veiculo_id, funcionario_id, data_agendamento, hora_agendamento,
		                       tipo_servico, status, descricao, valor_total)
		 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)
		 RETURNING servico_id`,
		s.VeiculoID, s.FuncionarioID, s.DataAgendamento, s.HoraAgendamento,
		s.TipoServico, s.Status, s.Descricao, s.ValorTotal,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert servico: %w", err)
	}
	return id, nil
}

// UpdateServico atualiza os dados de uma ordem de serviço.
func (r *PostgresRepository) UpdateServico(ctx context.Context, s model.Servico) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE servicos
		 SET veiculo_id = $2, funcionario_id = $3, data_agendamento = $4, hora_agendamento = $5,
		     tipo_servico = $6, status = $7, descricao = NULLIF($8, ''), valor_total = $9
		 WHERE servico_id = $1`,
		s.ID, s.VeiculoID, s.FuncionarioID, s.DataAgendamento, s.HoraAgendamento,
		s.TipoServico, s.Status, s.Descricao, s.ValorTotal,
	)
	if err != nil {
		return fmt.Errorf("update servico: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteServico remove uma ordem de serviço e suas peças associadas em uma
// única transação. A exclusão é bloqueada quando ainda há faturas emitidas.
func (r *PostgresRepository) DeleteServico(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM servicos_pecas WHERE servico_id = $1`, id); err != nil {
		return fmt.Errorf("delete pecas do servico: %w", err)
	}

	cmdTag, err := tx.Exec(ctx, `DELETE FROM servicos WHERE servico_id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrServicoHasFaturas
		}
		return fmt.Errorf("delete servico: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// UpsertServicoPeca vincula uma peça à ordem de serviço, atualizando a
// quantidade quando o vínculo já existe.
func (r *PostgresRepository) UpsertServicoPeca(ctx context.Context, servicoID, pecaID int64, quantidade int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO servicos_pecas (servico_id, peca_id, quantidade)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (servico_id, peca_id) DO UPDATE SET quantidade = EXCLUDED.quantidade`,
		servicoID, pecaID, quantidade,
	)
	if err != nil {
		return fmt.Errorf("upsert servico peca: %w", err)
	}
	return nil
}

// DeleteServicoPeca remove o vínculo de uma peça com a ordem de serviço.
func (r *PostgresRepository) DeleteServicoPeca(ctx context.Context, servicoID, pecaID int64) error {
	cmdTag, err := r.pool.Exec(ctx,
		`DELETE FROM servicos_pecas WHERE servico_id = $1 AND peca_id = $2`,
		servicoID, pecaID,
	)
	if err != nil {
		return fmt.Errorf("delete servico peca: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
