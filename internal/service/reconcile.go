package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/lfarias/oficina-system/internal/model"
	"github.com/lfarias/oficina-system/internal/repository"
)

const (
	statusSweepInterval  = 5 * time.Minute
	statusSweepBatchSize = 500
)

// ReconcileFatura recalcula o status de pagamento de uma fatura a partir da
// soma dos pagamentos registrados e grava o resultado. Falhas são registradas
// no log e não se propagam; a varredura periódica corrige divergências.
func (s *Service) ReconcileFatura(ctx context.Context, faturaID int64) {
	total, err := s.repo.GetFaturaValorTotal(ctx, faturaID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("reconcile: fatura no longer exists", zap.Int64("faturaID", faturaID))
		} else {
			s.logger.Error("reconcile: get fatura total",
				zap.Int64("faturaID", faturaID),
				zap.Error(err),
			)
		}
		return
	}

	pago, err := s.repo.SumPagamentosByFatura(ctx, faturaID)
	if err != nil {
		s.logger.Error("reconcile: sum pagamentos",
			zap.Int64("faturaID", faturaID),
			zap.Error(err),
		)
		return
	}

	status := model.StatusFor(total, pago)
	if err := s.repo.UpdateFaturaStatus(ctx, faturaID, status); err != nil {
		s.logger.Error("reconcile: update fatura status",
			zap.Int64("faturaID", faturaID),
			zap.String("status", string(status)),
			zap.Error(err),
		)
	}
}

// StartStatusSweeper inicia a varredura periódica que reconcilia o status de
// todas as faturas, cobrindo reconciliações que falharam no caminho da
// requisição. Encerra quando o contexto é cancelado.
func (s *Service) StartStatusSweeper(ctx context.Context) {
	ticker := time.NewTicker(statusSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("status sweeper stopped")
			return
		case <-ticker.C:
			s.sweepFaturaStatuses(ctx)
		}
	}
}

func (s *Service) sweepFaturaStatuses(ctx context.Context) {
	ids, err := s.repo.GetFaturaIDs(ctx, statusSweepBatchSize)
	if err != nil {
		s.logger.Error("sweep: list faturas", zap.Error(err))
		return
	}

	for _, id := range ids {
		s.ReconcileFatura(ctx, id)
	}
}
