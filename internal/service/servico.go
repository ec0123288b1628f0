package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/lfarias/oficina-system/internal/model"
	"github.com/lfarias/oficina-system/internal/repository"
)

// ListServicos retorna todas as ordens de serviço.
func (s *Service) ListServicos(ctx context.Context) ([]model.Servico, error) {
	return s.repo.ListServicos(ctx)
}

// GetServico retorna uma ordem de serviço e as peças utilizadas nela. Uma
// falha ao carregar as peças não derruba a consulta.
func (s *Service) GetServico(ctx context.Context, id int64) (*model.Servico, []model.ServicoPeca, error) {
	sv, err := s.repo.GetServico(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	pecas, err := s.repo.ListPecasByServico(ctx, id)
	if err != nil {
		s.logger.Warn("list pecas by servico",
			zap.Int64("servicoID", id),
			zap.Error(err),
		)
		pecas = nil
	}

	return sv, pecas, nil
}

// CreateServico abre uma ordem de serviço para um veículo existente,
// vinculando opcionalmente as peças informadas. Falha ao vincular uma peça é
// registrada sem desfazer a ordem criada.
func (s *Service) CreateServico(ctx context.Context, sv model.Servico, pecas []model.ServicoPeca) (*model.Servico, error) {
	if _, err := s.repo.GetVeiculo(ctx, sv.VeiculoID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVeiculoNotFound
		}
		return nil, err
	}

	if sv.Status == "" {
		sv.Status = "Agendado"
	}

	id, err := s.repo.CreateServico(ctx, sv)
	if err != nil {
		return nil, err
	}

	for _, p := range pecas {
		if err := s.repo.UpsertServicoPeca(ctx, id, p.PecaID, p.Quantidade); err != nil {
			s.logger.Error("attach peca to servico",
				zap.Int64("servicoID", id),
				zap.Int64("pecaID", p.PecaID),
				zap.Error(err),
			)
		}
	}

	det, err := s.repo.GetServico(ctx, id)
	if err != nil {
		s.logger.Warn("fetch servico after create",
			zap.Int64("servicoID", id),
			zap.Error(err),
		)
		sv.ID = id
		return &sv, nil
	}

	return det, nil
}

// UpdateServico atualiza uma ordem de serviço existente.
func (s *Service) UpdateServico(ctx context.Context, sv model.Servico) (*model.Servico, error) {
	if err := s.repo.UpdateServico(ctx, sv); err != nil {
		return nil, err
	}

	det, err := s.repo.GetServico(ctx, sv.ID)
	if err != nil {
		s.logger.Warn("fetch servico after update",
			zap.Int64("servicoID", sv.ID),
			zap.Error(err),
		)
		return &sv, nil
	}

	return det, nil
}

// DeleteServico remove uma ordem de serviço sem faturas vinculadas, junto com
// os vínculos de peças.
func (s *Service) DeleteServico(ctx context.Context, id int64) error {
	return s.repo.DeleteServico(ctx, id)
}

// AddPecaToServico vincula uma peça a uma ordem de serviço. Se o vínculo já
// existe a quantidade é substituída.
func (s *Service) AddPecaToServico(ctx context.Context, servicoID, pecaID int64, quantidade int) ([]model.ServicoPeca, error) {
	if _, err := s.repo.GetServico(ctx, servicoID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrServicoNotFound
		}
		return nil, err
	}
	if _, err := s.repo.GetPeca(ctx, pecaID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPecaNotFound
		}
		return nil, err
	}

	if err := s.repo.UpsertServicoPeca(ctx, servicoID, pecaID, quantidade); err != nil {
		return nil, err
	}

	return s.repo.ListPecasByServico(ctx, servicoID)
}

// RemovePecaFromServico desfaz o vínculo entre uma peça e uma ordem de
// serviço.
func (s *Service) RemovePecaFromServico(ctx context.Context, servicoID, pecaID int64) error {
	return s.repo.DeleteServicoPeca(ctx, servicoID, pecaID)
}
