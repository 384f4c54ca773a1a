package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"class-schedule/backend/internal/dto"
	"class-schedule/backend/internal/service"
	pkgerrors "class-schedule/backend/pkg/errors"
	"class-schedule/backend/pkg/response"
)

// ChangeRequestHandler 调课申请模块 HTTP 处理器
type ChangeRequestHandler struct {
	crSvc service.ChangeRequestService
}

// NewChangeRequestHandler 创建 ChangeRequestHandler
func NewChangeRequestHandler(crSvc service.ChangeRequestService) *ChangeRequestHandler {
	return &ChangeRequestHandler{crSvc: crSvc}
}

// Submit 提交调课申请
// POST /api/v1/change-requests
func (h *ChangeRequestHandler) Submit(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SubmitChangeRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.crSvc.Submit(c.Request.Context(), &req, userID)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateRequest) {
			response.Error(c, http.StatusConflict, 13001, "该条目已存在待审批的调课申请")
			return
		}
		if errors.Is(err, service.ErrScheduleLocked) {
			response.Error(c, http.StatusConflict, 13002, "课表已锁定或归档，不再接受调课")
			return
		}
		writePlacementError(c, err)
		return
	}

	response.Created(c, result)
}

// Cancel 撤销申请（仅申请人本人）
// POST /api/v1/change-requests/:id/cancel
func (h *ChangeRequestHandler) Cancel(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.crSvc.Cancel(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.writeStateError(c, err)
		return
	}
	response.OK(c, result)
}

// Review 审批申请（approve / reject）
// POST /api/v1/change-requests/:id/review
func (h *ChangeRequestHandler) Review(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ReviewChangeRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.crSvc.Review(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		var conflictErr *service.ConflictError
		if errors.As(err, &conflictErr) {
			response.Conflict(c, 13006, "目标时段存在冲突，审批未通过", conflictErr.Conflicts)
			return
		}
		if errors.Is(err, service.ErrScheduleLocked) {
			response.Error(c, http.StatusConflict, 13002, "课表已锁定或归档，不再接受调课")
			return
		}
		h.writeStateError(c, err)
		return
	}
	response.OK(c, result)
}

// Get 申请详情
// GET /api/v1/change-requests/:id
func (h *ChangeRequestHandler) Get(c *gin.Context) {
	result, err := h.crSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeStateError(c, err)
		return
	}
	response.OK(c, result)
}

// List 申请列表（排课员/管理员视角）
// GET /api/v1/change-requests
func (h *ChangeRequestHandler) List(c *gin.Context) {
	var req dto.ChangeRequestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.crSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// ListMine 我的申请列表
// GET /api/v1/change-requests/mine
func (h *ChangeRequestHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ChangeRequestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.crSvc.ListMine(c.Request.Context(), userID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// writeStateError 状态机类错误的统一映射
func (h *ChangeRequestHandler) writeStateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		response.NotFound(c, 13003, "调课申请不存在")
	case errors.Is(err, service.ErrRequestNotPending):
		response.Error(c, http.StatusConflict, 13004, "调课申请已进入终态，不可执行此操作")
	case errors.Is(err, service.ErrNotRequester):
		response.Forbidden(c, 13005, "只有申请人本人可以撤销申请")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Error(c, http.StatusConflict, 13007, "数据已被并发修改，请刷新后重试")
	default:
		writePlacementError(c, err)
	}
}
