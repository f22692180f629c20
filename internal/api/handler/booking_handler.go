package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"examhub/backend/internal/dto"
	"examhub/backend/internal/model"
	"examhub/backend/internal/service"
	pkgerrors "examhub/backend/pkg/errors"
	"examhub/backend/pkg/response"
)

// BookingHandler 预约模块 HTTP 处理器
type BookingHandler struct {
	bookingSvc *service.BookingService
}

// NewBookingHandler 创建 BookingHandler
func NewBookingHandler(bookingSvc *service.BookingService) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc}
}

// CreateHold 创建占位
// POST /api/v1/bookings/hold
func (h *BookingHandler) CreateHold(c *gin.Context) {
	var req dto.CreateHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	booking, err := h.bookingSvc.CreateHold(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleBookingError(c, err)
		return
	}

	response.Created(c, toBookingResponse(booking))
}

// Submit 提交审核
// POST /api/v1/bookings/:id/submit
func (h *BookingHandler) Submit(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "预约ID不能为空")
		return
	}

	var req dto.SubmitBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	booking, err := h.bookingSvc.Submit(c.Request.Context(), userID, id, &req)
	if err != nil {
		h.handleBookingError(c, err)
		return
	}

	response.OK(c, toBookingResponse(booking))
}

// Cancel 取消占位
// DELETE /api/v1/bookings/:id
func (h *BookingHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "预约ID不能为空")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.bookingSvc.Cancel(c.Request.Context(), userID, id); err != nil {
		h.handleBookingError(c, err)
		return
	}

	response.OK(c, nil)
}

// Get 查询预约详情
// GET /api/v1/bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "预约ID不能为空")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	booking, err := h.bookingSvc.GetByID(c.Request.Context(), id, userID, IsAdmin(c))
	if err != nil {
		h.handleBookingError(c, err)
		return
	}

	response.OK(c, toBookingResponse(booking))
}

// GetHistory 查询预约审计历史
// GET /api/v1/bookings/:id/history
func (h *BookingHandler) GetHistory(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "预约ID不能为空")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	history, err := h.bookingSvc.GetHistory(c.Request.Context(), id, userID, IsAdmin(c))
	if err != nil {
		h.handleBookingError(c, err)
		return
	}

	items := make([]dto.BookingHistoryItem, 0, len(history))
	for _, e := range history {
		items = append(items, dto.BookingHistoryItem{
			HistoryID:   e.HistoryID,
			EventType:   e.EventType,
			Description: e.Description,
			OperatorID:  e.OperatorID,
			Metadata:    e.Metadata,
			CreatedAt:   e.CreatedAt,
		})
	}
	response.OK(c, gin.H{"list": items})
}

// ListMine 查询本部门的全部预约
// GET /api/v1/bookings/my
func (h *BookingHandler) ListMine(c *gin.Context) {
	departmentID, ok := MustGetDepartmentID(c)
	if !ok {
		return
	}
	if departmentID == "" {
		response.Forbidden(c, 10003, "当前账号未关联部门")
		return
	}

	bookings, err := h.bookingSvc.ListByDepartment(c.Request.Context(), departmentID)
	if err != nil {
		response.InternalError(c)
		return
	}

	list := make([]dto.BookingResponse, 0, len(bookings))
	for i := range bookings {
		list = append(list, toBookingResponse(&bookings[i]))
	}
	response.OK(c, gin.H{"list": list})
}

// List 管理员分页查询
// GET /api/v1/admin/bookings
func (h *BookingHandler) List(c *gin.Context) {
	var q dto.ListBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	bookings, total, err := h.bookingSvc.List(c.Request.Context(), &q)
	if err != nil {
		h.handleBookingError(c, err)
		return
	}

	list := make([]dto.BookingResponse, 0, len(bookings))
	for i := range bookings {
		list = append(list, toBookingResponse(&bookings[i]))
	}
	response.OKPage(c, list, total, q.Page, q.PageSize)
}

// Approve 审核通过
// POST /api/v1/admin/bookings/:id/approve
func (h *BookingHandler) Approve(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "预约ID不能为空")
		return
	}

	var req dto.ApproveBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	adminID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	booking, err := h.bookingSvc.Approve(c.Request.Context(), adminID, id, &req)
	if err != nil {
		h.handleBookingError(c, err)
		return
	}

	response.OK(c, toBookingResponse(booking))
}

// Reject 审核驳回
// POST /api/v1/admin/bookings/:id/reject
func (h *BookingHandler) Reject(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "预约ID不能为空")
		return
	}

	var req dto.RejectBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "驳回必须说明理由")
		return
	}

	adminID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.bookingSvc.Reject(c.Request.Context(), adminID, id, req.Reason); err != nil {
		h.handleBookingError(c, err)
		return
	}

	response.OK(c, nil)
}

// CompleteVoucher 用户标记凭证已办理
// POST /api/v1/bookings/:id/voucher/complete
func (h *BookingHandler) CompleteVoucher(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "预约ID不能为空")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.bookingSvc.CompleteVoucher(c.Request.Context(), userID, id); err != nil {
		h.handleBookingError(c, err)
		return
	}

	response.OK(c, nil)
}

// VerifyVoucher 管理员核验凭证
// POST /api/v1/admin/bookings/:id/voucher/verify
func (h *BookingHandler) VerifyVoucher(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "预约ID不能为空")
		return
	}

	var req dto.VerifyVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	adminID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.bookingSvc.VerifyVoucher(c.Request.Context(), adminID, id, &req); err != nil {
		h.handleBookingError(c, err)
		return
	}

	response.OK(c, nil)
}

// AdminCompleteVoucher 管理员代办凭证并直接核验
// POST /api/v1/admin/bookings/:id/voucher/admin-complete
func (h *BookingHandler) AdminCompleteVoucher(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "预约ID不能为空")
		return
	}

	var req dto.AdminCompleteVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	adminID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.bookingSvc.AdminCompleteVoucher(c.Request.Context(), adminID, id, req.Note); err != nil {
		h.handleBookingError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleBookingError 统一处理预约模块业务错误
func (h *BookingHandler) handleBookingError(c *gin.Context, err error) {
	var capErr *service.CapacityExceededError
	switch {
	case errors.Is(err, service.ErrBookingNotFound):
		response.NotFound(c, 20001, "预约不存在")
	case errors.Is(err, service.ErrActiveBookingExists):
		response.Conflict(c, 20002, "该部门已有未完成的预约")
	case errors.Is(err, service.ErrHoldExpired):
		response.Conflict(c, 20003, "占位已过期，请重新搜索时段")
	case errors.Is(err, service.ErrIllegalTransition):
		response.Conflict(c, 20004, "当前状态不允许该操作")
	case errors.Is(err, service.ErrNotBookingOwner):
		response.Forbidden(c, 20005, "无权操作该预约")
	case errors.Is(err, service.ErrDateUnavailable):
		response.BadRequest(c, 20006, "所选日期不可安排考试")
	case errors.Is(err, service.ErrDateTooEarly):
		response.BadRequest(c, 20007, "考试日期距课程结束的工作日间隔不足")
	case errors.Is(err, service.ErrHourOutOfShift):
		response.BadRequest(c, 20008, "起始小时不在所选场次范围内")
	case errors.Is(err, service.ErrVoucherStateInvalid):
		response.Conflict(c, 20009, "当前凭证状态不允许该操作")
	case errors.Is(err, pkgerrors.ErrStatusConflict):
		response.Conflict(c, 20010, "预约状态已变更，请刷新后重试")
	case errors.As(err, &capErr):
		response.ErrorWithData(c, http.StatusConflict, 24001, "该时段容量不足", capErr.Check)
	case errors.Is(err, service.ErrConfigurationMissing):
		response.Error(c, http.StatusUnprocessableEntity, 24002, "该时段缺少容量配置，无法审批")
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 22001, "场次不存在")
	case errors.Is(err, service.ErrShiftInactive):
		response.BadRequest(c, 22003, "场次已停用")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 10001, "日期格式不正确")
	default:
		response.InternalError(c)
	}
}

// toBookingResponse 模型转响应体
func toBookingResponse(b *model.Booking) dto.BookingResponse {
	shiftName := ""
	if b.Shift != nil {
		shiftName = b.Shift.Name
	}
	return dto.BookingResponse{
		BookingID:        b.BookingID,
		DepartmentID:     b.DepartmentID,
		UserID:           b.UserID,
		CandidateCount:   b.CandidateCount,
		CourseEndDate:    b.CourseEndDate.Format("2006-01-02"),
		ExamDate:         b.ExamDate.Format("2006-01-02"),
		ShiftID:          b.ShiftID,
		ShiftName:        shiftName,
		ExamStartHour:    b.ExamStartHour,
		Status:           string(b.Status),
		HoldExpiresAt:    b.HoldExpiresAt,
		ConfirmationCode: b.ConfirmationCode,
		Notes:            b.Notes,
		AdminNotes:       b.AdminNotes,
		VoucherStatus:    string(b.VoucherStatus),
		OverrideBy:       b.OverrideBy,
		OverrideAt:       b.OverrideAt,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}
