package service

import (
	"context"

	"github.com/anyulbade/quota-settlement/internal/repository"
)

type PeriodStore interface {
	ListPeriods(ctx context.Context, companyID string, limit, offset int) ([]repository.PeriodRow, int, error)
}

type PeriodService struct {
	repo PeriodStore
}

func NewPeriodService(repo PeriodStore) *PeriodService {
	return &PeriodService{repo: repo}
}

func (s *PeriodService) List(ctx context.Context, companyID string, limit, offset int) ([]repository.PeriodRow, int, error) {
	rows, total, err := s.repo.ListPeriods(ctx, companyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if rows == nil {
		rows = []repository.PeriodRow{}
	}
	return rows, total, nil
}
