package service

import (
	"time"

	"go.uber.org/zap"

	"class-schedule/backend/config"
	"class-schedule/backend/internal/repository"
	"class-schedule/backend/pkg/jwt"
	"class-schedule/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth          AuthService
	Schedule      ScheduleService
	ChangeRequest ChangeRequestService
	Export        ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	loc *time.Location,
	logger *zap.Logger,
) *Service {
	legacyPairing := cfg.Feature.LegacyPairInference
	return &Service{
		Auth:          NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		Schedule:      NewScheduleService(repo, logger, legacyPairing),
		ChangeRequest: NewChangeRequestService(repo, logger, legacyPairing),
		Export:        NewExportService(repo, logger, loc),
	}
}
