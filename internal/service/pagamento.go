package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/lfarias/oficina-system/internal/model"
	"github.com/lfarias/oficina-system/internal/repository"
)

// ListPagamentos retorna todos os pagamentos.
func (s *Service) ListPagamentos(ctx context.Context) ([]model.Pagamento, error) {
	return s.repo.ListPagamentos(ctx)
}

// GetPagamento retorna um pagamento pelo identificador.
func (s *Service) GetPagamento(ctx context.Context, id int64) (*model.Pagamento, error) {
	return s.repo.GetPagamento(ctx, id)
}

// ListPagamentosByFatura retorna os pagamentos de uma fatura existente.
func (s *Service) ListPagamentosByFatura(ctx context.Context, faturaID int64) ([]model.Pagamento, error) {
	if _, err := s.repo.GetFaturaValorTotal(ctx, faturaID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFaturaNotFound
		}
		return nil, err
	}
	return s.repo.ListPagamentosByFatura(ctx, faturaID)
}

// CreatePagamento registra um pagamento contra uma fatura. O pagamento é
// rejeitado quando a soma já paga mais o novo valor excederia o total da
// fatura. Após registrar, o status da fatura é reconciliado.
func (s *Service) CreatePagamento(ctx context.Context, p model.Pagamento) (*model.Pagamento, error) {
	total, err := s.repo.GetFaturaValorTotal(ctx, p.FaturaID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFaturaNotFound
		}
		return nil, err
	}

	pago, err := s.repo.SumPagamentosByFatura(ctx, p.FaturaID)
	if err != nil {
		return nil, err
	}

	if pago+p.ValorPago > total {
		return nil, ErrPagamentoExcedeFatura
	}

	id, err := s.repo.CreatePagamento(ctx, p)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFaturaNotFound
		}
		return nil, err
	}

	s.ReconcileFatura(ctx, p.FaturaID)

	det, err := s.repo.GetPagamento(ctx, id)
	if err != nil {
		s.logger.Warn("fetch pagamento after create",
			zap.Int64("pagamentoID", id),
			zap.Error(err),
		)
		p.ID = id
		return &p, nil
	}

	return det, nil
}

// UpdatePagamento altera um pagamento existente e reconcilia as faturas
// afetadas. Quando o pagamento muda de fatura, as duas são reconciliadas.
func (s *Service) UpdatePagamento(ctx context.Context, p model.Pagamento) (*model.Pagamento, error) {
	old, err := s.repo.GetPagamento(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdatePagamento(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) && p.FaturaID != old.FaturaID {
			return nil, ErrFaturaNotFound
		}
		return nil, err
	}

	s.ReconcileFatura(ctx, old.FaturaID)
	if p.FaturaID != old.FaturaID {
		s.ReconcileFatura(ctx, p.FaturaID)
	}

	det, err := s.repo.GetPagamento(ctx, p.ID)
	if err != nil {
		s.logger.Warn("fetch pagamento after update",
			zap.Int64("pagamentoID", p.ID),
			zap.Error(err),
		)
		return &p, nil
	}

	return det, nil
}

// DeletePagamento remove um pagamento e reconcilia o status da fatura.
func (s *Service) DeletePagamento(ctx context.Context, id int64) error {
	old, err := s.repo.GetPagamento(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeletePagamento(ctx, id); err != nil {
		return err
	}

	s.ReconcileFatura(ctx, old.FaturaID)
	return nil
}
