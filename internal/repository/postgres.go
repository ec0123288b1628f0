// Package repository contém o acesso aos dados da oficina em PostgreSQL.
//
// Os códigos de erro do PostgreSQL são traduzidos aqui, na fronteira do
// repositório, para erros sentinela do pacote; nenhuma outra camada inspeciona
// SQLSTATE ou mensagens do banco.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound é retornado quando nenhuma linha corresponde ao identificador.
var (
	ErrNotFound = errors.New("record not found")
	// ErrUsuarioExists é retornado ao registrar um email já cadastrado.
	ErrUsuarioExists = errors.New("usuario already registered")
	// ErrEmailExists é retornado quando o email do cliente já está em uso.
	ErrEmailExists = errors.New("cliente email already registered")
	// ErrPlacaExists é retornado quando a placa já está cadastrada.
	ErrPlacaExists = errors.New("placa already registered")
	// ErrChassiExists é retornado quando o chassi já está cadastrado.
	ErrChassiExists = errors.New("chassi already registered")
	// ErrNomePecaExists é retornado quando o nome da peça já está cadastrado.
	ErrNomePecaExists = errors.New("peca name already registered")
	// ErrClienteHasVeiculos bloqueia a exclusão de cliente com veículos.
	ErrClienteHasVeiculos = errors.New("cliente still has veiculos")
	// ErrVeiculoHasServicos bloqueia a exclusão de veículo com serviços.
	ErrVeiculoHasServicos = errors.New("veiculo still has servicos")
	// ErrPecaInUse bloqueia a exclusão de peça utilizada em serviços.
	ErrPecaInUse = errors.New("peca is used by servicos")
	// ErrServicoHasFaturas bloqueia a exclusão de serviço com faturas.
	ErrServicoHasFaturas = errors.New("servico still has faturas")
	// ErrFaturaHasPagamentos bloqueia a exclusão de fatura com pagamentos.
	ErrFaturaHasPagamentos = errors.New("fatura still has pagamentos")
	// ErrEstoqueInsuficiente é retornado quando a baixa deixaria o estoque negativo.
	ErrEstoqueInsuficiente = errors.New("insufficient stock quantity")
)

// PostgresRepository fornece acesso ao banco de dados da oficina. O pool é
// criado uma única vez na inicialização e compartilhado por todo o processo.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository cria o repositório e aplica as migrações embutidas.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// Close encerra o pool de conexões.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// Ping verifica a conectividade com o banco de dados.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// isUniqueViolation reporta se err é uma violação de unicidade da constraint
// indicada.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == pgerrcode.UniqueViolation &&
		pgErr.ConstraintName == constraint
}

// isForeignKeyViolation reporta se err é uma violação de chave estrangeira,
// como a exclusão de uma linha ainda referenciada por registros filhos.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}
