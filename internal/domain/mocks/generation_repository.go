package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ai-image-studio/internal/domain"
)

type GenerationRepository struct {
	mock.Mock
}

var _ domain.GenerationRepository = (*GenerationRepository)(nil)

func (m *GenerationRepository) Create(ctx context.Context, g *domain.Generation) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *GenerationRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Generation, error) {
	args := m.Called(ctx, userID, limit)
	gs, _ := args.Get(0).([]domain.Generation)
	return gs, args.Error(1)
}

func (m *GenerationRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
