package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/lfarias/oficina-system/internal/model"
	"github.com/lfarias/oficina-system/internal/repository"
)

// ListFaturas retorna todas as faturas.
func (s *Service) ListFaturas(ctx context.Context) ([]model.Fatura, error) {
	return s.repo.ListFaturas(ctx)
}

// ListFaturasEmAberto retorna as faturas com status "Aberto".
func (s *Service) ListFaturasEmAberto(ctx context.Context) ([]model.Fatura, error) {
	return s.repo.ListFaturasEmAberto(ctx)
}

// GetFatura retorna uma fatura e os pagamentos registrados nela. Uma falha ao
// carregar os pagamentos não derruba a consulta.
func (s *Service) GetFatura(ctx context.Context, id int64) (*model.Fatura, []model.Pagamento, error) {
	f, err := s.repo.GetFatura(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	pagamentos, err := s.repo.ListPagamentosByFatura(ctx, id)
	if err != nil {
		s.logger.Warn("list pagamentos by fatura",
			zap.Int64("faturaID", id),
			zap.Error(err),
		)
		pagamentos = nil
	}

	return f, pagamentos, nil
}

// CreateFatura emite uma fatura para uma ordem de serviço existente. Faturas
// novas nascem com status "Aberto" salvo indicação contrária.
func (s *Service) CreateFatura(ctx context.Context, f model.Fatura) (*model.Fatura, error) {
	if _, err := s.repo.GetServico(ctx, f.ServicoID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrServicoNotFound
		}
		return nil, err
	}

	if f.Status == "" {
		f.Status = model.StatusAberto
	}

	id, err := s.repo.CreateFatura(ctx, f)
	if err != nil {
		return nil, err
	}

	det, err := s.repo.GetFatura(ctx, id)
	if err != nil {
		s.logger.Warn("fetch fatura after create",
			zap.Int64("faturaID", id),
			zap.Error(err),
		)
		f.ID = id
		return &f, nil
	}

	return det, nil
}

// UpdateFatura atualiza uma fatura existente e reconcilia o status, já que o
// valor total pode ter mudado.
func (s *Service) UpdateFatura(ctx context.Context, f model.Fatura) (*model.Fatura, error) {
	if err := s.repo.UpdateFatura(ctx, f); err != nil {
		return nil, err
	}

	s.ReconcileFatura(ctx, f.ID)

	det, err := s.repo.GetFatura(ctx, f.ID)
	if err != nil {
		s.logger.Warn("fetch fatura after update",
			zap.Int64("faturaID", f.ID),
			zap.Error(err),
		)
		return &f, nil
	}

	return det, nil
}

// DeleteFatura remove uma fatura sem pagamentos vinculados.
func (s *Service) DeleteFatura(ctx context.Context, id int64) error {
	return s.repo.DeleteFatura(ctx, id)
}
