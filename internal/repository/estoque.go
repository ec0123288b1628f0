package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lfarias/oficina-system/internal/model"
)

const pecaColumns = `peca_id, nome_peca, COALESCE(descricao, ''), quantidade, preco_custo, preco_venda, nivel_minimo`

func scanPeca(row pgx.Row) (*model.Peca, error) {
	var p model.Peca
	err := row.Scan(&p.ID, &p.NomePeca, &p.Descricao, &p.Quantidade, &p.PrecoCusto, &p.PrecoVenda, &p.NivelMinimo)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresRepository) listPecas(ctx context.Context, query string) ([]model.Peca, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select pecas: %w", err)
	}
	defer rows.Close()

	var pecas []model.Peca
	for rows.Next() {
		p, err := scanPeca(rows)
		if err != nil {
			return nil, fmt.Errorf("scan peca: %w", err)
		}
		pecas = append(pecas, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return pecas, nil
}

// ListPecas retorna todas as peças do estoque ordenadas por nome.
func (r *PostgresRepository) ListPecas(ctx context.Context) ([]model.Peca, error) {
	return r.listPecas(ctx, `SELECT `+pecaColumns+` FROM estoque ORDER BY nome_peca`)
}

// ListPecasBaixoEstoque retorna as peças com quantidade no nível mínimo ou
// abaixo dele.
func (r *PostgresRepository) ListPecasBaixoEstoque(ctx context.Context) ([]model.Peca, error) {
	return r.listPecas(ctx,
		`SELECT `+pecaColumns+` FROM estoque WHERE quantidade <= nivel_minimo ORDER BY nome_peca`)
}

// GetPeca retorna uma peça pelo identificador.
func (r *PostgresRepository) GetPeca(ctx context.Context, id int64) (*model.Peca, error) {
	p, err := scanPeca(r.pool.QueryRow(ctx,
		`SELECT `+pecaColumns+` FROM estoque WHERE peca_id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get peca: %w", err)
	}
	return p, nil
}

// CreatePeca insere uma nova peça no estoque.
func (r *PostgresRepository) CreatePeca(ctx context.Context, p model.Peca) (*model.Peca, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO estoque (nome_peca, descricao, quantidade, preco_custo, preco_venda, nivel_minimo)
		 VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6)
		 RETURNING peca_id`,
		p.NomePeca, p.Descricao, p.Quantidade, p.PrecoCusto, p.PrecoVenda, p.NivelMinimo,
	).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err, "estoque_nome_peca_key") {
			return nil, ErrNomePecaExists
		}
		return nil, fmt.Errorf("insert peca: %w", err)
	}

	return &p, nil
}

// UpdatePeca atualiza os dados de uma peça.
func (r *PostgresRepository) UpdatePeca(ctx context.Context, p model.Peca) (*model.Peca, error) {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE estoque
		 SET nome_peca = $2, descricao = NULLIF($3, ''), quantidade = $4, preco_custo = $5,
		     preco_venda = $6, nivel_minimo = $7
		 WHERE peca_id = $1`,
		p.ID, p.NomePeca, p.Descricao, p.Quantidade, p.PrecoCusto, p.PrecoVenda, p.NivelMinimo,
	)
	if err != nil {
		if isUniqueViolation(err, "estoque_nome_peca_key") {
			return nil, ErrNomePecaExists
		}
		return nil, fmt.Errorf("update peca: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	return &p, nil
}

// DeletePeca remove uma peça. A exclusão é bloqueada quando a peça ainda é
// referenciada por serviços.
func (r *PostgresRepository) DeletePeca(ctx context.Context, id int64) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM estoque WHERE peca_id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrPecaInUse
		}
		return fmt.Errorf("delete peca: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// AdjustPecaQuantidade soma delta (positivo ou negativo) à quantidade da peça
// em um único UPDATE condicional, de forma que a quantidade nunca fique
// negativa mesmo sob ajustes concorrentes.
func (r *PostgresRepository) AdjustPecaQuantidade(ctx context.Context, id int64, delta int) (*model.Peca, error) {
	p, err := scanPeca(r.pool.QueryRow(ctx,
		`UPDATE estoque
		 SET quantidade = quantidade + $2
		 WHERE peca_id = $1 AND quantidade + $2 >= 0
		 RETURNING `+pecaColumns,
		id, delta,
	))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("adjust quantidade: %w", err)
	}

	// Nenhuma linha alterada: ou a peça não existe, ou a baixa deixaria o
	// estoque negativo.
	if _, err := r.GetPeca(ctx, id); err != nil {
		return nil, err
	}
	return nil, ErrEstoqueInsuficiente
}
