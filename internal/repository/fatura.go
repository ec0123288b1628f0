package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lfarias/oficina-system/internal/model"
)

const faturaDetalhadaQuery = `
	SELECT f.fatura_id, f.servico_id, f.data_emissao, f.valor_total_fatura, f.status_pagamento,
	       s.tipo_servico, v.placa, c.nome
	FROM faturas f
	JOIN servicos s ON s.servico_id = f.servico_id
	JOIN veiculos v ON v.veiculo_id = s.veiculo_id
	JOIN clientes c ON c.cliente_id = v.cliente_id`

func scanFaturaDetalhada(row pgx.Row) (*model.Fatura, error) {
	var f model.Fatura
	err := row.Scan(&f.ID, &f.ServicoID, &f.DataEmissao, &f.ValorTotal, &f.Status,
		&f.TipoServico, &f.Placa, &f.NomeCliente)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *PostgresRepository) listFaturas(ctx context.Context, query string, args ...any) ([]model.Fatura, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select faturas: %w", err)
	}
	defer rows.Close()

	var faturas []model.Fatura
	for rows.Next() {
		f, err := scanFaturaDetalhada(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fatura: %w", err)
		}
		faturas = append(faturas, *f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return faturas, nil
}

// ListFaturas retorna todas as faturas com dados do serviço e do cliente, das
// mais recentes para as mais antigas.
func (r *PostgresRepository) ListFaturas(ctx context.Context) ([]model.Fatura, error) {
	return r.listFaturas(ctx, faturaDetalhadaQuery+` ORDER BY f.data_emissao DESC, f.fatura_id DESC`)
}

// ListFaturasEmAberto retorna as faturas com status Aberto, das mais antigas
// para as mais recentes.
func (r *PostgresRepository) ListFaturasEmAberto(ctx context.Context) ([]model.Fatura, error) {
	return r.listFaturas(ctx,
		faturaDetalhadaQuery+` WHERE f.status_pagamento = $1 ORDER BY f.data_emissao, f.fatura_id`,
		string(model.StatusAberto))
}

// GetFatura retorna uma fatura pelo identificador.
func (r *PostgresRepository) GetFatura(ctx context.Context, id int64) (*model.Fatura, error) {
	f, err := scanFaturaDetalhada(r.pool.QueryRow(ctx, faturaDetalhadaQuery+` WHERE f.fatura_id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get fatura: %w", err)
	}
	return f, nil
}

// CreateFatura insere uma nova fatura. Quando a data de emissão é zero, o
// banco assume a data corrente.
func (r *PostgresRepository) CreateFatura(ctx context.Context, f model.Fatura) (int64, error) {
	var id int64
	var err error
	if f.DataEmissao.IsZero() {
		err = r.pool.QueryRow(ctx,
			`INSERT INTO faturas (servico_id, valor_total_fatura, status_pagamento)
			 VALUES ($1, $2, $3)
			 RETURNING fatura_id`,
			f.ServicoID, f.ValorTotal, string(f.Status),
		).Scan(&id)
	} else {
		err = r.pool.QueryRow(ctx,
			`INSERT INTO faturas (servico_id, data_emissao, valor_total_fatura, status_pagamento)
			 VALUES ($1, $2, $3, $4)
			 RETURNING fatura_id`,
			f.ServicoID, f.DataEmissao, f.ValorTotal, string(f.Status),
		).Scan(&id)
	}
	if err != nil {
		return 0, fmt.Errorf("insert fatura: %w", err)
	}
	return id, nil
}

// UpdateFatura atualiza os dados de uma fatura.
func (r *PostgresRepository) UpdateFatura(ctx context.Context, f model.Fatura) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE faturas
		 SET servico_id = $2, data_emissao = $3, valor_total_fatura = $4, status_pagamento = $5
		 WHERE fatura_id = $1`,
		f.ID, f.ServicoID, f.DataEmissao, f.ValorTotal, string(f.Status),
	)
	if err != nil {
		return fmt.Errorf("update fatura: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteFatura remove uma fatura. A exclusão é bloqueada quando ainda há
// pagamentos lançados.
func (r *PostgresRepository) DeleteFatura(ctx context.Context, id int64) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM faturas WHERE fatura_id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrFaturaHasPagamentos
		}
		return fmt.Errorf("delete fatura: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// GetFaturaValorTotal retorna o valor total devido de uma fatura, em centavos.
func (r *PostgresRepository) GetFaturaValorTotal(ctx context.Context, id int64) (int64, error) {
	var valor int64
	err := r.pool.QueryRow(ctx,
		`SELECT valor_total_fatura FROM faturas WHERE fatura_id = $1`, id,
	).Scan(&valor)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("get valor total da fatura: %w", err)
	}
	return valor, nil
}

// UpdateFaturaStatus grava o status de pagamento recalculado de uma fatura.
func (r *PostgresRepository) UpdateFaturaStatus(ctx context.Context, id int64, status model.StatusPagamento) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE faturas SET status_pagamento = $2 WHERE fatura_id = $1`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("update status da fatura: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// GetFaturaIDs retorna os identificadores de todas as faturas, usado pela
// varredura periódica de status.
func (r *PostgresRepository) GetFaturaIDs(ctx context.Context, limit int) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT fatura_id FROM faturas ORDER BY fatura_id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("select fatura ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan fatura id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return ids, nil
}
