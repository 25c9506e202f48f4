package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ai-image-studio/internal/domain"
)

type GenerationRepo struct{ db *gorm.DB }

var _ domain.GenerationRepository = (*GenerationRepo)(nil)

func NewGenerationRepo(db *gorm.DB) *GenerationRepo { return &GenerationRepo{db: db} }

func (r *GenerationRepo) Create(ctx context.Context, g *domain.Generation) error {
	if g.Status == "" {
		g.Status = domain.StatusCompleted
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(g).Error; err != nil {
		return fmt.Errorf("create generation for user %d: %w", g.UserID, err)
	}
	return nil
}

// ListByUser 最新在前；created_at 相同按 id 倒序
func (r *GenerationRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Generation, error) {
	out := make([]domain.Generation, 0, max(limit, 0))
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list generations for user %d: %w", userID, err)
	}
	return out, nil
}

func (r *GenerationRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Generation{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count generations: %w", err)
	}
	return n, nil
}
