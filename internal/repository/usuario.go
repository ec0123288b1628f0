package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lfarias/oficina-system/internal/model"
)

// CreateUsuario registra um novo usuário da aplicação.
func (r *PostgresRepository) CreateUsuario(ctx context.Context, email string, senhaHash []byte, nomeCompleto string) (*model.Usuario, error) {
	u := model.Usuario{
		Email:        email,
		SenhaHash:    senhaHash,
		NomeCompleto: nomeCompleto,
	}

	err := r.pool.QueryRow(ctx,
		`INSERT INTO usuarios (email, senha_hash, nome_completo)
		 VALUES ($1, $2, $3)
		 RETURNING usuario_id, criado_em`,
		email, senhaHash, nomeCompleto,
	).Scan(&u.ID, &u.CriadoEm)
	if err != nil {
		if isUniqueViolation(err, "usuarios_email_key") {
			return nil, fmt.Errorf("%w: %s", ErrUsuarioExists, email)
		}
		return nil, fmt.Errorf("insert usuario: %w", err)
	}

	return &u, nil
}

// GetUsuarioByEmail retorna um usuário pelo email.
func (r *PostgresRepository) GetUsuarioByEmail(ctx context.Context, email string) (*model.Usuario, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT usuario_id, email, senha_hash, nome_completo, criado_em
		 FROM usuarios
		 WHERE email = $1`,
		email,
	)

	var u model.Usuario
	if err := row.Scan(&u.ID, &u.Email, &u.SenhaHash, &u.NomeCompleto, &u.CriadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get usuario: %w", err)
	}

	return &u, nil
}
