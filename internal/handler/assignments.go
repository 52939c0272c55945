package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/dencare-dev/staff-roster/backend/internal/assignment"
	"github.com/dencare-dev/staff-roster/backend/internal/domain"
	"github.com/dencare-dev/staff-roster/backend/internal/identity"
	"github.com/dencare-dev/staff-roster/backend/internal/selection"
	amqp "github.com/rabbitmq/amqp091-go"
)

// findMissingSlotIDs 找出请求里有但数据库中已经不存在的槽位 id
// 两边都要求升序，GetSlotsByIDs 的 ORDER BY 保证了这一点
func findMissingSlotIDs(requested []int64, slots []*domain.Slot) []int64 {
	missing := make([]int64, 0)

	i := 0
	for _, id := range requested {
		for i < len(slots) && slots[i].ID < id {
			i++
		}
		if i < len(slots) && slots[i].ID == id {
			i++
			continue
		}
		missing = append(missing, id)
	}

	return missing
}

// ConfirmAssignment 把候选牙医和护士绑定到跨月份合并后的全部被选槽位上
// 校验基于数据库中槽位的最新状态而不是会话快照，防止快照过期后
// 按旧的已排满状态放行；校验不通过时不会有任何状态被修改
func (h *Handler) ConfirmAssignment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DentistIDs []int64 `json:"dentistIDs"`
		NurseIDs   []int64 `json:"nurseIDs"`
		CheckToken string  `json:"checkToken"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	store := r.Context().Value(SessionCtx).(*selection.Store)

	// 冲突检测结果和当前选择必须对应，选择变化后的旧结果一律作废
	if req.CheckToken != "" && !store.CheckStillCurrent(req.CheckToken) {
		h.errorResponse(w, r, "选择已发生变化，请重新进行冲突检测")
		return
	}

	scope := store.Scope()
	if scope.RoomID == 0 {
		h.errorResponse(w, r, "请先选择诊室")
		return
	}

	room, err := h.repository.GetRoomByID(scope.RoomID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "诊室不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 用数据库数据复核一遍，会话快照里的已排满状态可能已经过期
	slotIDs := store.SelectedSlotIDs()
	selectedSlots, err := h.repository.GetSlotsByIDs(slotIDs)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if missing := findMissingSlotIDs(slotIDs, selectedSlots); len(missing) > 0 {
		h.errorResponse(w, r, "部分所选槽位已不存在，请刷新后重试")
		return
	}

	if err := assignment.ValidateConfirm(selectedSlots, room, req.DentistIDs, req.NurseIDs); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	modified, err := h.repository.AssignStaff(slotIDs, req.DentistIDs, req.NurseIDs)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.invalidateSlotCache(selectedSlots)

	// 给被排班的员工发通知邮件
	dates := collectSlotDates(selectedSlots)
	for _, dentistID := range req.DentistIDs {
		h.notifyAssignment(dentistID, domain.RoleDentist, room.Name, dates, len(slotIDs))
	}
	for _, nurseID := range req.NurseIDs {
		h.notifyAssignment(nurseID, domain.RoleNurse, room.Name, dates, len(slotIDs))
	}

	// 指派成功后清空选择，开始新一轮操作
	store.Clear()

	h.successResponse(w, r, "指派成功", struct {
		ModifiedCount int64 `json:"modifiedCount"`
	}{
		ModifiedCount: modified,
	})
}

// RemoveAssignment 解除被选槽位上指定角色的全部绑定
func (h *Handler) RemoveAssignment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RemoveDentists bool `json:"removeDentists"`
		RemoveNurses   bool `json:"removeNurses"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if !req.RemoveDentists && !req.RemoveNurses {
		h.errorResponse(w, r, "必须至少指定一个要解除的角色")
		return
	}

	store := r.Context().Value(SessionCtx).(*selection.Store)
	if store.TotalSelected() == 0 {
		h.errorResponse(w, r, "尚未选择任何槽位")
		return
	}

	selectedSlots, missing := store.SelectedSlots()
	if missing > 0 {
		h.errorResponse(w, r, "部分所选槽位的数据缺失，请刷新后重试")
		return
	}

	slotIDs := store.SelectedSlotIDs()
	modified, err := h.repository.RemoveStaff(slotIDs, req.RemoveDentists, req.RemoveNurses)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.invalidateSlotCache(selectedSlots)

	// 给被解除排班的员工发通知邮件
	dates := collectSlotDates(selectedSlots)
	removedIDs := make(map[int64]bool)
	for _, slot := range selectedSlots {
		if req.RemoveDentists {
			for _, d := range slot.Dentists {
				removedIDs[d.ID] = true
			}
		}
		if req.RemoveNurses {
			for _, n := range slot.Nurses {
				removedIDs[n.ID] = true
			}
		}
	}
	for staffID := range removedIDs {
		h.notifyRemoval(staffID, dates, len(slotIDs))
	}

	store.Clear()

	h.successResponse(w, r, "解除排班成功", struct {
		ModifiedCount int64 `json:"modifiedCount"`
	}{
		ModifiedCount: modified,
	})
}

// ReassignStaff 在被选槽位上用一名员工替换另一名员工
// 被替换员工在所选槽位中同时担任两种角色时无法确定要腾出的角色，直接拒绝
func (h *Handler) ReassignStaff(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldStaffID int64 `json:"oldStaffID" validate:"required"`
		NewStaffID int64 `json:"newStaffID" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.OldStaffID == req.NewStaffID {
		h.errorResponse(w, r, "替换前后的员工不能是同一个人")
		return
	}

	store := r.Context().Value(SessionCtx).(*selection.Store)
	if store.TotalSelected() == 0 {
		h.errorResponse(w, r, "尚未选择任何槽位")
		return
	}

	selectedSlots, missing := store.SelectedSlots()
	if missing > 0 {
		h.errorResponse(w, r, "部分所选槽位的数据缺失，请刷新后重试")
		return
	}

	role, err := assignment.ResolveReplacementRole(req.OldStaffID, selectedSlots)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	// 顶替者必须具有被腾出的角色
	newStaff, err := h.repository.GetStaffByID(req.NewStaffID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "顶替员工不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}
	if !identity.Resolve(newStaff).HasRole(role) {
		h.errorResponse(w, r, "顶替员工不具备所需的角色")
		return
	}

	slotIDs := store.SelectedSlotIDs()
	modified, err := h.repository.ReassignStaff(slotIDs, req.OldStaffID, req.NewStaffID, role)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.invalidateSlotCache(selectedSlots)

	dates := collectSlotDates(selectedSlots)
	h.notifyAssignment(req.NewStaffID, role, "", dates, len(slotIDs))
	h.notifyRemoval(req.OldStaffID, dates, len(slotIDs))

	store.Clear()

	h.successResponse(w, r, "替换成功", struct {
		Role          domain.Role `json:"role"`
		ModifiedCount int64       `json:"modifiedCount"`
	}{
		Role:          role,
		ModifiedCount: modified,
	})
}

func collectSlotDates(slots []*domain.Slot) []string {
	seen := make(map[string]bool)
	dates := make([]string, 0)
	for _, slot := range slots {
		if !seen[slot.Date] {
			seen[slot.Date] = true
			dates = append(dates, slot.Date)
		}
	}
	sort.Strings(dates)
	return dates
}

// notifyAssignment 给被排班的员工发通知邮件
// 通知失败只记日志，不影响已经完成的指派
func (h *Handler) notifyAssignment(staffID int64, role domain.Role, roomName string, dates []string, slotCount int) {
	staff, err := h.repository.GetStaffByID(staffID)
	if err != nil || staff.Email == "" {
		return
	}

	h.publishMail(domain.MailMessage{
		Type: "assignment_notice",
		To:   staff.Email,
		Data: domain.AssignmentNoticeMailData{
			FullName:  staff.FullName,
			Role:      role,
			RoomName:  roomName,
			Dates:     dates,
			SlotCount: slotCount,
		},
	})
}

func (h *Handler) notifyRemoval(staffID int64, dates []string, slotCount int) {
	staff, err := h.repository.GetStaffByID(staffID)
	if err != nil || staff.Email == "" {
		return
	}

	h.publishMail(domain.MailMessage{
		Type: "assignment_removed",
		To:   staff.Email,
		Data: domain.AssignmentRemovedMailData{
			FullName:  staff.FullName,
			Dates:     dates,
			SlotCount: slotCount,
		},
	})
}

func (h *Handler) publishMail(msg domain.MailMessage) {
	mailData, err := json.Marshal(msg)
	if err != nil {
		slog.Error("通知邮件序列化失败", "type", msg.Type, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.mailChannel.PublishWithContext(
		ctx,
		"",
		"email_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        mailData,
		},
	); err != nil {
		slog.Error("通知邮件入队失败", "type", msg.Type, "to", msg.To, "error", err)
	}
}
