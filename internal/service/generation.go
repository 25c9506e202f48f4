package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode/utf16"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"ai-image-studio/internal/domain"
)

const (
	DefaultOverloadRate = 0.2
	DefaultListLimit    = 5
	DefaultMaxListLimit = 100
)

var generationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "generations_total", Help: "Generation attempts by outcome"},
	[]string{"outcome"},
)

func init() { prometheus.MustRegister(generationsTotal) }

type GenerationOptions struct {
	OverloadRate float64        // [0,1]
	Rand         func() float64 // 均匀分布 [0,1)；nil 用 math/rand/v2
	DefaultLimit int
	MaxLimit     int
}

type CreateInput struct {
	UserID   int64
	Prompt   string
	Style    string
	Image    []byte
	MimeType string
}

type GenerationService struct {
	repo domain.GenerationRepository
	opt  GenerationOptions
	log  *zap.Logger
}

func NewGenerationService(repo domain.GenerationRepository, opt GenerationOptions, log *zap.Logger) (*GenerationService, error) {
	if repo == nil {
		return nil, errors.New("generation service: nil repository")
	}
	if opt.OverloadRate < 0 || opt.OverloadRate > 1 {
		return nil, fmt.Errorf("generation service: overload rate %v out of [0,1]", opt.OverloadRate)
	}
	if opt.Rand == nil {
		opt.Rand = rand.Float64
	}
	if opt.DefaultLimit <= 0 {
		opt.DefaultLimit = DefaultListLimit
	}
	if opt.MaxLimit <= 0 {
		opt.MaxLimit = DefaultMaxListLimit
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &GenerationService{repo: repo, opt: opt, log: log}, nil
}

func checkCreateInput(in CreateInput) error {
	switch {
	case in.UserID <= 0:
		return domain.Invalid("userId", `"userId" is required`)
	case in.Prompt == "":
		return domain.Invalid("prompt", `"prompt" is not allowed to be empty`)
	case promptLen(in.Prompt) > domain.MaxPromptLen:
		return domain.Invalid("prompt", `"prompt" length must be less than or equal to %d characters long`, domain.MaxPromptLen)
	case !domain.ValidStyle(in.Style):
		return domain.Invalid("style", `"style" must be one of [%s]`, strings.Join(domain.Styles, ", "))
	case len(in.Image) == 0:
		return domain.Invalid("image", "Image file is required")
	case !strings.Contains(in.MimeType, "image"):
		return domain.ErrUnsupportedMedia
	}
	return nil
}

// Create 按 OverloadRate 概率模拟下游过载（不落库）；否则编码为 data URI 写入
func (s *GenerationService) Create(ctx context.Context, in CreateInput) (*domain.Generation, error) {
	if err := checkCreateInput(in); err != nil {
		return nil, err
	}

	if s.opt.Rand() < s.opt.OverloadRate {
		generationsTotal.WithLabelValues("overloaded").Inc()
		s.log.Warn("generation overloaded (simulated)", zap.Int64("user_id", in.UserID))
		return nil, domain.ErrTransientOverload
	}

	g := &domain.Generation{
		UserID:    in.UserID,
		Prompt:    in.Prompt,
		Style:     in.Style,
		ImageData: DataURI(in.MimeType, in.Image),
		Status:    domain.StatusCompleted,
	}
	if err := s.repo.Create(ctx, g); err != nil {
		generationsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("create generation: %w", err)
	}
	generationsTotal.WithLabelValues("created").Inc()
	s.log.Info("generation created",
		zap.Int64("id", g.ID),
		zap.Int64("user_id", g.UserID),
		zap.String("style", g.Style),
		zap.Int("image_bytes", len(in.Image)),
	)
	return g, nil
}

// ListByUser limit<=0 取默认值，超过上限截断
func (s *GenerationService) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Generation, error) {
	if limit <= 0 {
		limit = s.opt.DefaultLimit
	}
	if limit > s.opt.MaxLimit {
		limit = s.opt.MaxLimit
	}
	gs, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if gs == nil {
		gs = []domain.Generation{}
	}
	return gs, nil
}

// promptLen 按 UTF-16 码元计数，与前端 String.length 一致（emoji 记 2）
func promptLen(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
