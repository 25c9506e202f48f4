package domain

import (
	"context"
	"time"
)

const (
	MaxPromptLen = 500

	StatusCompleted = "completed"
)

// Styles 允许的风格
var Styles = []string{"realistic", "artistic", "vintage", "modern"}

func ValidStyle(s string) bool {
	for _, v := range Styles {
		if v == s {
			return true
		}
	}
	return false
}

// Generation 一次生成记录；ImageData 为 data URI，对外字段名沿用 image_url
type Generation struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;index:idx_generations_user_created,priority:1" json:"-"`
	User      *User     `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Prompt    string    `gorm:"size:500;not null" json:"prompt"`
	Style     string    `gorm:"size:16;not null" json:"style"`
	ImageData string    `gorm:"column:image_data;type:text;not null" json:"image_url"`
	Status    string    `gorm:"size:16;not null;default:completed" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_generations_user_created,priority:2" json:"created_at"`
}

func (Generation) TableName() string { return "generations" }

type GenerationRepository interface {
	Create(ctx context.Context, g *Generation) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]Generation, error)
	Count(ctx context.Context) (int64, error)
}
