package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lfarias/oficina-system/internal/model"
)

const veiculoDetalhadoQuery = `
	SELECT v.veiculo_id, v.cliente_id, v.modelo, COALESCE(v.ano, 0), v.placa, v.chassi,
	       COALESCE(v.historico_servicos, ''), c.nome
	FROM veiculos v
	JOIN clientes c ON c.cliente_id = v.cliente_id`

func scanVeiculoDetalhado(row pgx.Row) (*model.Veiculo, error) {
	var v model.Veiculo
	err := row.Scan(&v.ID, &v.ClienteID, &v.Modelo, &v.Ano, &v.Placa, &v.Chassi,
		&v.HistoricoServicos, &v.NomeCliente)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListVeiculos retorna todos os veículos com o nome do cliente, ordenados por
// modelo.
func (r *PostgresRepository) ListVeiculos(ctx context.Context) ([]model.Veiculo, error) {
	rows, err := r.pool.Query(ctx, veiculoDetalhadoQuery+` ORDER BY v.modelo`)
	if err != nil {
		return nil, fmt.Errorf("select veiculos: %w", err)
	}
	defer rows.Close()

	var veiculos []model.Veiculo
	for rows.Next() {
		v, err := scanVeiculoDetalhado(rows)
		if err != nil {
			return nil, fmt.Errorf("scan veiculo: %w", err)
		}
		veiculos = append(veiculos, *v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return veiculos, nil
}

// GetVeiculo retorna um veículo pelo identificador, com o nome do cliente.
func (r *PostgresRepository) GetVeiculo(ctx context.Context, id int64) (*model.Veiculo, error) {
	v, err := scanVeiculoDetalhado(r.pool.QueryRow(ctx, veiculoDetalhadoQuery+` WHERE v.veiculo_id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get veiculo: %w", err)
	}
	return v, nil
}

// CreateVeiculo insere um novo veículo.
func (r *PostgresRepository) CreateVeiculo(ctx context.Context, v model.Veiculo) (*model.Veiculo, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO veiculos (cliente_id, modelo, ano, placa, chassi, historico_servicos)
		 VALUES ($1, $2, NULLIF($3, 0), $4, $5, NULLIF($6, ''))
		 RETURNING veiculo_id`,
		v.ClienteID, v.Modelo, v.Ano, v.Placa, v.Chassi, v.HistoricoServicos,
	).Scan(&v.ID)
	if err != nil {
		if isUniqueViolation(err, "veiculos_placa_key") {
			return nil, ErrPlacaExists
		}
		if isUniqueViolation(err, "veiculos_chassi_key") {
			return nil, ErrChassiExists
		}
		return nil, fmt.Errorf("insert veiculo: %w", err)
	}

	return r.GetVeiculo(ctx, v.ID)
}

// UpdateVeiculo atualiza os dados de um veículo.
func (r *PostgresRepository) UpdateVeiculo(ctx context.Context, v model.Veiculo) (*model.Veiculo, error) {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE veiculos
		 SET cliente_id = $2, modelo = $3, ano = NULLIF($4, 0), placa = $5, chassi = $6,
		     historico_servicos = NULLIF($7, '')
		 WHERE veiculo_id = $1`,
		v.ID, v.ClienteID, v.Modelo, v.Ano, v.Placa, v.Chassi, v.HistoricoServicos,
	)
	if err != nil {
		if isUniqueViolation(err, "veiculos_placa_key") {
			return nil, ErrPlacaExists
		}
		if isUniqueViolation(err, "veiculos_chassi_key") {
			return nil, ErrChassiExists
		}
		return nil, fmt.Errorf("update veiculo: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	return r.GetVeiculo(ctx, v.ID)
}

// DeleteVeiculo remove um veículo. A exclusão é bloqueada quando ainda há
// serviços vinculados.
func (r *PostgresRepository) DeleteVeiculo(ctx context.Context, id int64) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM veiculos WHERE veiculo_id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrVeiculoHasServicos
		}
		return fmt.Errorf("delete veiculo: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
