package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dencare-dev/staff-roster/backend/internal/domain"
	"github.com/dencare-dev/staff-roster/backend/internal/selection"
)

// GetSelectionSummary 返回当前选择会话的概览
// totalSelected 是跨月份合并后的总数，任何跨月份的动作都应该以它为准
func (h *Handler) GetSelectionSummary(w http.ResponseWriter, r *http.Request) {
	store := r.Context().Value(SessionCtx).(*selection.Store)

	h.successResponse(w, r, "获取选择概览成功", struct {
		Scope           selection.Scope             `json:"scope"`
		ActiveMonth     string                      `json:"activeMonth"`
		ShiftFilters    []string                    `json:"shiftFilters"`
		Entries         []*selection.SelectionEntry `json:"entries"`
		TotalSelected   int                         `json:"totalSelected"`
		SelectedSlotIDs []int64                     `json:"selectedSlotIDs"`
		Busy            bool                        `json:"busy"`
	}{
		Scope:           store.Scope(),
		ActiveMonth:     store.ActiveMonth(),
		ShiftFilters:    store.ShiftFilters(),
		Entries:         store.Entries(),
		TotalSelected:   store.TotalSelected(),
		SelectedSlotIDs: store.SelectedSlotIDs(),
		Busy:            store.Busy(),
	})
}

// SwitchScope 切换浏览的诊室或员工，快照缓存和所有选择都会被清空
func (h *Handler) SwitchScope(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoomID    int64  `json:"roomID"`
		SubRoomID *int64 `json:"subRoomID"`
		StaffID   int64  `json:"staffID"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if (req.RoomID == 0) == (req.StaffID == 0) {
		h.errorResponse(w, r, "必须且只能指定诊室或员工中的一个")
		return
	}

	store := r.Context().Value(SessionCtx).(*selection.Store)
	store.SwitchScope(selection.Scope{
		RoomID:    req.RoomID,
		SubRoomID: req.SubRoomID,
		StaffID:   req.StaffID,
	})

	h.successResponse(w, r, "切换浏览对象成功", nil)
}

func (h *Handler) SetShiftFilters(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ShiftFilters []string `json:"shiftFilters" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	store := r.Context().Value(SessionCtx).(*selection.Store)
	store.SetShiftFilters(req.ShiftFilters)

	h.successResponse(w, r, "设置班次筛选成功", nil)
}

func (h *Handler) ToggleSlot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date      string `json:"date" validate:"required"`
		ShiftName string `json:"shiftName" validate:"required"`
		SlotID    int64  `json:"slotID" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	store := r.Context().Value(SessionCtx).(*selection.Store)
	if err := store.ToggleSlot(domain.MakeShiftKey(req.Date, req.ShiftName), req.SlotID); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	h.successResponse(w, r, "更新槽位选择成功", struct {
		TotalSelected int `json:"totalSelected"`
	}{
		TotalSelected: store.TotalSelected(),
	})
}

func (h *Handler) ToggleWholeShift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date      string `json:"date" validate:"required"`
		ShiftName string `json:"shiftName" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	store := r.Context().Value(SessionCtx).(*selection.Store)
	if err := store.ToggleWholeShift(domain.MakeShiftKey(req.Date, req.ShiftName)); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	h.successResponse(w, r, "更新整班选择成功", struct {
		TotalSelected int `json:"totalSelected"`
	}{
		TotalSelected: store.TotalSelected(),
	})
}

// PageMonth 翻页到另一个月份，离开的月份的选择会先被保存
func (h *Handler) PageMonth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Month string `json:"month" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if _, err := time.Parse("2006-01", req.Month); err != nil {
		h.errorResponse(w, r, "月份格式错误")
		return
	}

	store := r.Context().Value(SessionCtx).(*selection.Store)
	store.PageMonth(req.Month)

	h.successResponse(w, r, "切换月份成功", struct {
		ActiveMonth   string   `json:"activeMonth"`
		ShiftFilters  []string `json:"shiftFilters"`
		TotalSelected int      `json:"totalSelected"`
	}{
		ActiveMonth:   store.ActiveMonth(),
		ShiftFilters:  store.ShiftFilters(),
		TotalSelected: store.TotalSelected(),
	})
}

// SelectWholeMonth 把一个月内指定班次的所有槽位全部选中
// 需要按天按班次逐个拉取槽位详情，期间会话会被标记为忙碌，
// 阻止并发的勾选操作互相干扰
func (h *Handler) SelectWholeMonth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Month      string   `json:"month" validate:"required"`
		ShiftNames []string `json:"shiftNames" validate:"required,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	monthStart, err := time.Parse("2006-01", req.Month)
	if err != nil {
		h.errorResponse(w, r, "月份格式错误")
		return
	}

	store := r.Context().Value(SessionCtx).(*selection.Store)
	scope := store.Scope()
	if scope.RoomID == 0 {
		h.errorResponse(w, r, "请先选择诊室")
		return
	}

	store.PageMonth(req.Month)
	store.SetBusy(true)
	defer store.SetBusy(false)

	selectedShifts := 0
	for day := monthStart; day.Month() == monthStart.Month(); day = day.AddDate(0, 0, 1) {
		date := day.Format("2006-01-02")

		for _, shiftName := range req.ShiftNames {
			cacheKey := fmt.Sprintf("slots_room_%d_%s_%s", scope.RoomID, date, shiftName)
			slots, err := h.getSlotsWithCache(cacheKey, func() ([]*domain.Slot, error) {
				return h.repository.GetSlotsForShiftByRoom(scope.RoomID, date, shiftName)
			})
			if err != nil {
				h.internalServerError(w, r, err)
				return
			}
			if len(slots) == 0 {
				continue
			}

			key := domain.MakeShiftKey(date, shiftName)
			store.CacheSnapshot(key, slots)
			if err := store.SelectAllInShift(key); err != nil {
				h.errorResponse(w, r, err.Error())
				return
			}
			selectedShifts++
		}
	}

	h.successResponse(w, r, "整月批量选择完成", struct {
		SelectedShifts int `json:"selectedShifts"`
		TotalSelected  int `json:"totalSelected"`
	}{
		SelectedShifts: selectedShifts,
		TotalSelected:  store.TotalSelected(),
	})
}
