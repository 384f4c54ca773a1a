package handler

import "class-schedule/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth          *AuthHandler
	Schedule      *ScheduleHandler
	ChangeRequest *ChangeRequestHandler
	Export        *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:          NewAuthHandler(svc.Auth),
		Schedule:      NewScheduleHandler(svc.Schedule),
		ChangeRequest: NewChangeRequestHandler(svc.ChangeRequest),
		Export:        NewExportHandler(svc.Export),
	}
}
