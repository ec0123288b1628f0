package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lfarias/oficina-system/internal/model"
)

// ListClientes retorna todos os clientes ordenados por nome.
func (r *PostgresRepository) ListClientes(ctx context.Context) ([]model.Cliente, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT cliente_id, nome, COALESCE(endereco, ''), COALESCE(telefone, ''), COALESCE(email, '')
		 FROM clientes
		 ORDER BY nome`,
	)
	if err != nil {
		return nil, fmt.Errorf("select clientes: %w", err)
	}
	defer rows.Close()

	var clientes []model.Cliente
	for rows.Next() {
		var c model.Cliente
		if err := rows.Scan(&c.ID, &c.Nome, &c.Endereco, &c.Telefone, &c.Email); err != nil {
			return nil, fmt.Errorf("scan cliente: %w", err)
		}
		clientes = append(clientes, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return clientes, nil
}

// GetCliente retorna um cliente pelo identificador.
func (r *PostgresRepository) GetCliente(ctx context.Context, id int64) (*model.Cliente, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT cliente_id, nome, COALESCE(endereco, ''), COALESCE(telefone, ''), COALESCE(email, '')
		 FROM clientes
		 WHERE cliente_id = $1`,
		id,
	)

	var c model.Cliente
	if err := row.Scan(&c.ID, &c.Nome, &c.Endereco, &c.Telefone, &c.Email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get cliente: %w", err)
	}

	return &c, nil
}

// CreateCliente insere um novo cliente.
func (r *PostgresRepository) CreateCliente(ctx context.Context, c model.Cliente) (*model.Cliente, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO clientes (nome, endereco, telefone, email)
		 VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''))
		 RETURNING cliente_id`,
		c.Nome, c.Endereco, c.Telefone, c.Email,
	).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err, "clientes_email_key") {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("insert cliente: %w", err)
	}

	return &c, nil
}

// UpdateCliente atualiza os dados de um cliente.
func (r *PostgresRepository) UpdateCliente(ctx context.Context, c model.Cliente) (*model.Cliente, error) {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE clientes
		 SET nome = $2, endereco = NULLIF($3, ''), telefone = NULLIF($4, ''), email = NULLIF($5, '')
		 WHERE cliente_id = $1`,
		c.ID, c.Nome, c.Endereco, c.Telefone, c.Email,
	)
	if err != nil {
		if isUniqueViolation(err, "clientes_email_key") {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("update cliente: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	return &c, nil
}

// DeleteCliente remove um cliente. A exclusão é bloqueada quando ainda há
// veículos vinculados.
func (r *PostgresRepository) DeleteCliente(ctx context.Context, id int64) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM clientes WHERE cliente_id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrClienteHasVeiculos
		}
		return fmt.Errorf("delete cliente: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ListVeiculosByCliente retorna os veículos de um cliente.
func (r *PostgresRepository) ListVeiculosByCliente(ctx context.Context, clienteID int64) ([]model.Veiculo, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT veiculo_id, cliente_id, modelo, COALESCE(ano, 0), placa, chassi, COALESCE(historico_servicos, '')
		 FROM veiculos
		 WHERE cliente_id = $1
		 ORDER BY modelo`,
		clienteID,
	)
	if err != nil {
		return nil, fmt.Errorf("select veiculos do cliente: %w", err)
	}
	defer rows.Close()

	var veiculos []model.Veiculo
	for rows.Next() {
		var v model.Veiculo
		if err := rows.Scan(&v.ID, &v.ClienteID, &v.Modelo, &v.Ano, &v.Placa, &v.Chassi, &v.HistoricoServicos); err != nil {
			return nil, fmt.Errorf("scan veiculo: %w", err)
		}
		veiculos = append(veiculos, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return veiculos, nil
}
