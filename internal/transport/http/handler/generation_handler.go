package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"ai-image-studio/internal/domain"
	"ai-image-studio/internal/service"
	"ai-image-studio/internal/transport/http/ez"
)

const DefaultMaxImageBytes = 10 << 20

type Generations interface {
	Create(ctx context.Context, in service.CreateInput) (*domain.Generation, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Generation, error)
}

type GenerationHandler struct {
	svc           Generations
	maxImageBytes int64
}

func NewGenerationHandler(svc Generations, maxImageBytes int64) *GenerationHandler {
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	return &GenerationHandler{svc: svc, maxImageBytes: maxImageBytes}
}

type createGenerationIn struct {
	Prompt string `form:"prompt" binding:"required,max=500"`
	Style  string `form:"style"  binding:"required,oneof=realistic artistic vintage modern"`
}

func (h *GenerationHandler) Create(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[createGenerationIn, *domain.Generation]{
		Method:  http.MethodPost,
		Path:    "",
		Binder:  ez.BindForm,
		Auth:    true,
		Message: "Generation completed successfully",
		Handler: func(c *gin.Context, in *createGenerationIn) (*domain.Generation, error) {
			data, mimeType, err := h.readImage(c)
			if err != nil {
				return nil, err
			}
			uid, _ := ez.UserID(c)
			return h.svc.Create(c.Request.Context(), service.CreateInput{
				UserID:   uid,
				Prompt:   in.Prompt,
				Style:    in.Style,
				Image:    data,
				MimeType: mimeType,
			})
		},
	})
}

// limit 按字符串接收：非数字不报错，按默认值处理
type listGenerationsIn struct {
	Limit string `form:"limit"`
}

func (h *GenerationHandler) List(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[listGenerationsIn, []domain.Generation]{
		Method:  http.MethodGet,
		Path:    "",
		Binder:  ez.BindQuery,
		Auth:    true,
		Message: "Generations retrieved successfully",
		Handler: func(c *gin.Context, in *listGenerationsIn) ([]domain.Generation, error) {
			limit, _ := strconv.Atoi(strings.TrimSpace(in.Limit))
			uid, _ := ez.UserID(c)
			return h.svc.ListByUser(c.Request.Context(), uid, limit)
		},
	})
}

// readImage 读取 image 文件；声明类型缺失或为 octet-stream 时按内容嗅探
func (h *GenerationHandler) readImage(c *gin.Context) ([]byte, string, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", domain.Invalid("image", "Image file is required")
		}
		return nil, "", ez.BindError(err)
	}
	if fh.Size > h.maxImageBytes {
		return nil, "", domain.Invalid("image", "Image file must be %dMB or smaller", h.maxImageBytes>>20)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > h.maxImageBytes {
		return nil, "", domain.Invalid("image", "Image file must be %dMB or smaller", h.maxImageBytes>>20)
	}
	if len(data) == 0 {
		return nil, "", domain.Invalid("image", "Image file is required")
	}

	mimeType := strings.TrimSpace(fh.Header.Get("Content-Type"))
	if mimeType == "" || strings.HasPrefix(mimeType, "application/octet-stream") {
		mimeType = mimetype.Detect(data).String()
	}
	if !strings.Contains(mimeType, "image") {
		return nil, "", domain.ErrUnsupportedMedia
	}
	return data, mimeType, nil
}
