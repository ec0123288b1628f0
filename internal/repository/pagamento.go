package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lfarias/oficina-system/internal/model"
)

const pagamentoDetalhadoQuery = `
	SELECT p.pagamento_id, p.fatura_id, p.data_pagamento, p.valor_pago, p.metodo_pagamento,
	       f.data_emissao, f.valor_total_fatura
	FROM pagamentos p
	JOIN faturas f ON f.fatura_id = p.fatura_id`

func scanPagamentoDetalhado(row pgx.Row) (*model.Pagamento, error) {
	var p model.Pagamento
	err := row.Scan(&p.ID, &p.FaturaID, &p.DataPagamento, &p.ValorPago, &p.Metodo,
		&p.DataEmissao, &p.ValorTotalFatura)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPagamentos retorna todos os pagamentos com dados da fatura, dos mais
// recentes para os mais antigos.
func (r *PostgresRepository) ListPagamentos(ctx context.Context) ([]model.Pagamento, error) {
	rows, err := r.pool.Query(ctx,
		pagamentoDetalhadoQuery+` ORDER BY p.data_pagamento DESC, p.pagamento_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("select pagamentos: %w", err)
	}
	defer rows.Close()

	var pagamentos []model.Pagamento
	for rows.Next() {
		p, err := scanPagamentoDetalhado(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pagamento: %w", err)
		}
		pagamentos = append(pagamentos, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return pagamentos, nil
}

// GetPagamento retorna um pagamento pelo identificador, com dados da fatura.
func (r *PostgresRepository) GetPagamento(ctx context.Context, id int64) (*model.Pagamento, error) {
	p, err := scanPagamentoDetalhado(r.pool.QueryRow(ctx,
		pagamentoDetalhadoQuery+` WHERE p.pagamento_id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get pagamento: %w", err)
	}
	return p, nil
}

// ListPagamentosByFatura retorna os pagamentos de uma fatura, dos mais
// recentes para os mais antigos.
func (r *PostgresRepository) ListPagamentosByFatura(ctx context.Context, faturaID int64) ([]model.Pagamento, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT pagamento_id, fatura_id, data_pagamento, valor_pago, metodo_pagamento
		 FROM pagamentos
		 WHERE fatura_id = $1
		 ORDER BY data_pagamento DESC, pagamento_id DESC`,
		faturaID,
	)
	if err != nil {
		return nil, fmt.Errorf("select pagamentos da fatura: %w", err)
	}
	defer rows.Close()

	var pagamentos []model.Pagamento
	for rows.Next() {
		var p model.Pagamento
		if err := rows.Scan(&p.ID, &p.FaturaID, &p.DataPagamento, &p.ValorPago, &p.Metodo); err != nil {
			return nil, fmt.Errorf("scan pagamento: %w", err)
		}
		pagamentos = append(pagamentos, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return pagamentos, nil
}

// SumPagamentosByFatura retorna a soma dos pagamentos de uma fatura, em
// centavos. Fatura sem pagamentos soma zero.
func (r *PostgresRepository) SumPagamentosByFatura(ctx context.Context, faturaID int64) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(valor_pago), 0) FROM pagamentos WHERE fatura_id = $1`,
		faturaID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum pagamentos: %w", err)
	}
	return total, nil
}

// CreatePagamento insere um novo pagamento. Quando a data é zero, o banco
// assume a data corrente.
func (r *PostgresRepository) CreatePagamento(ctx context.Context, p model.Pagamento) (int64, error) {
	var id int64
	var err error
	if p.DataPagamento.IsZero() {
		err = r.pool.QueryRow(ctx,
			`INSERT INTO pagamentos (fatura_id, valor_pago, metodo_pagamento)
			 VALUES ($1, $2, $3)
			 RETURNING pagamento_id`,
			p.FaturaID, p.ValorPago, p.Metodo,
		).Scan(&id)
	} else {
		err = r.pool.QueryRow(ctx,
			`INSERT INTO pagamentos (fatura_id, data_pagamento, valor_pago, metodo_pagamento)
			 VALUES ($1, $2, $3, $4)
			 RETURNING pagamento_id`,
			p.FaturaID, p.DataPagamento, p.ValorPago, p.Metodo,
		).Scan(&id)
	}
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("insert pagamento: %w", err)
	}
	return id, nil
}

// UpdatePagamento atualiza os dados de um pagamento.
func (r *PostgresRepository) UpdatePagamento(ctx context.Context, p model.Pagamento) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE pagamentos
		 SET fatura_id = $2, data_pagamento = $3, valor_pago = $4, metodo_pagamento = $5
		 WHERE pagamento_id = $1`,
		p.ID, p.FaturaID, p.DataPagamento, p.ValorPago, p.Metodo,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		return fmt.Errorf("update pagamento: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// DeletePagamento remove um pagamento.
func (r *PostgresRepository) DeletePagamento(ctx context.Context, id int64) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM pagamentos WHERE pagamento_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete pagamento: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
