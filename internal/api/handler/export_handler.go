package handler

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/gin-gonic/gin"

	"class-schedule/backend/internal/service"
	"class-schedule/backend/pkg/response"
)

// ExportHandler 课表导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportExcel 导出整张课表为 Excel
// GET /api/v1/schedules/:id/export/excel
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportScheduleExcel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeExportError(c, err)
		return
	}

	writeAttachment(c, filename, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ExportMyICS 导出当前教师的个人课表为 iCalendar
// GET /api/v1/schedules/:id/export/ics
func (h *ExportHandler) ExportMyICS(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportFacultyICS(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.writeExportError(c, err)
		return
	}

	writeAttachment(c, filename, "text/calendar; charset=utf-8", buf.Bytes())
}

func (h *ExportHandler) writeExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 12001, "课表不存在")
	case errors.Is(err, service.ErrExportNoEntries):
		response.NotFound(c, 14001, "课表中无可导出的排课条目")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, 500, 14002, "导出文件生成失败")
	default:
		response.InternalError(c)
	}
}

// writeAttachment 以附件形式下发二进制内容，文件名做 RFC 5987 转义兼容中文
func writeAttachment(c *gin.Context, filename, contentType string, body []byte) {
	escaped := url.PathEscape(filename)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, escaped, escaped))
	c.Data(200, contentType, body)
}
