package handlers

import (
	"go.uber.org/zap"

	"openai-image-gateway/internal/config"
	"openai-image-gateway/internal/services/openai"
	"openai-image-gateway/internal/services/resolver"
	"openai-image-gateway/internal/services/storage"
)

type ImageHandler struct {
	service  *openai.Service
	resolver *resolver.Resolver
	storage  *storage.Service
	logger   *zap.Logger
	config   *config.Config
}

func NewImageHandler(
	service *openai.Service,
	res *resolver.Resolver,
	store *storage.Service,
	logger *zap.Logger,
	cfg *config.Config,
) *ImageHandler {
	return &ImageHandler{
		service:  service,
		resolver: res,
		storage:  store,
		logger:   logger,
		config:   cfg,
	}
}
