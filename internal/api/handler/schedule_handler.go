package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"class-schedule/backend/internal/dto"
	"class-schedule/backend/internal/service"
	"class-schedule/backend/pkg/response"
)

// ScheduleHandler 课表模块 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

// List 课表列表
// GET /api/v1/schedules
func (h *ScheduleHandler) List(c *gin.Context) {
	result, err := h.scheduleSvc.ListSchedules(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// Get 课表详情（含全部条目）
// GET /api/v1/schedules/:id
func (h *ScheduleHandler) Get(c *gin.Context) {
	result, err := h.scheduleSvc.GetSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrScheduleNotFound) {
			response.NotFound(c, 12001, "课表不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// MyEntries 当前教师的课表条目
// GET /api/v1/schedules/:id/my-entries
func (h *ScheduleHandler) MyEntries(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	result, err := h.scheduleSvc.GetMyEntries(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, service.ErrScheduleNotFound) {
			response.NotFound(c, 12001, "课表不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// CheckConflict 调课预检（advisory，只读，不加锁）
// GET /api/v1/entries/:entryId/conflict-check
func (h *ScheduleHandler) CheckConflict(c *gin.Context) {
	var req dto.ConflictCheckRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.scheduleSvc.CheckConflict(c.Request.Context(), c.Param("entryId"), &req)
	if err != nil {
		writePlacementError(c, err)
		return
	}
	response.OK(c, result)
}

// LoadReport 教师周负荷报表
// GET /api/v1/schedules/:id/load-report
func (h *ScheduleHandler) LoadReport(c *gin.Context) {
	result, err := h.scheduleSvc.LoadReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrScheduleNotFound) {
			response.NotFound(c, 12001, "课表不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// writePlacementError 搬迁校验类错误的统一映射
// 预检与审批共用：换算失败属业务输入问题，一律 400 并带具体原因
func writePlacementError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEntryNotFound):
		response.NotFound(c, 12002, "排课条目不存在")
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 12001, "课表不存在")
	case errors.Is(err, service.ErrInvalidTarget):
		response.BadRequest(c, 12003, "调课目标无效")
	case errors.Is(err, service.ErrOddDuration):
		response.BadRequest(c, 12004, "时长为奇数分钟，无法平分为双周课次")
	case errors.Is(err, service.ErrDayNotInGroup):
		response.BadRequest(c, 12005, "目标星期不属于目标时间段的周频家族")
	case errors.Is(err, service.ErrUnknownDayGroup):
		response.BadRequest(c, 12006, "未知的周频家族标签")
	default:
		response.InternalError(c)
	}
}
