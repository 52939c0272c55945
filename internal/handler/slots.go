package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dencare-dev/staff-roster/backend/internal/domain"
	"github.com/dencare-dev/staff-roster/backend/internal/selection"
	"github.com/redis/go-redis/v9"
)

func (h *Handler) GetAllRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.repository.GetAllRooms()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取诊室列表成功", rooms)
}

// GetShiftSlots 获取某一天某个班次的详细槽位列表
// 悬停和快速勾选会反复请求同一个班次，结果按 (浏览对象, 日期, 班次) 缓存在 redis 中
// 拉取到的列表同时写入操作员的选择会话作为勾选快照
func (h *Handler) GetShiftSlots(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	shiftName := r.URL.Query().Get("shift")
	if date == "" || shiftName == "" {
		h.errorResponse(w, r, "缺少 date 或 shift 参数")
		return
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		h.errorResponse(w, r, "日期格式错误")
		return
	}

	roomIDParam := r.URL.Query().Get("roomID")
	staffIDParam := r.URL.Query().Get("staffID")

	var cacheKey string
	var fetch func() ([]*domain.Slot, error)

	switch {
	case roomIDParam != "":
		roomID, err := strconv.ParseInt(roomIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "诊室ID无效")
			return
		}
		cacheKey = fmt.Sprintf("slots_room_%d_%s_%s", roomID, date, shiftName)
		fetch = func() ([]*domain.Slot, error) {
			return h.repository.GetSlotsForShiftByRoom(roomID, date, shiftName)
		}
	case staffIDParam != "":
		staffID, err := strconv.ParseInt(staffIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "员工ID无效")
			return
		}
		cacheKey = fmt.Sprintf("slots_staff_%d_%s_%s", staffID, date, shiftName)
		fetch = func() ([]*domain.Slot, error) {
			return h.repository.GetSlotsForShiftByStaff(staffID, date, shiftName)
		}
	default:
		h.errorResponse(w, r, "必须指定 roomID 或 staffID")
		return
	}

	slots, err := h.getSlotsWithCache(cacheKey, fetch)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 写入选择会话的快照，后续的勾选都基于这份快照
	store := r.Context().Value(SessionCtx).(*selection.Store)
	store.CacheSnapshot(domain.MakeShiftKey(date, shiftName), slots)

	h.successResponse(w, r, "获取班次槽位成功", slots)
}

func (h *Handler) getSlotsWithCache(cacheKey string, fetch func() ([]*domain.Slot, error)) ([]*domain.Slot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
	defer cancel()

	cached, err := h.redisClient.Get(ctx, cacheKey).Result()
	if err == nil {
		slots := make([]*domain.Slot, 0)
		if err := json.Unmarshal([]byte(cached), &slots); err == nil {
			return slots, nil
		}
		// 缓存内容损坏时当作未命中处理，重新拉取并覆盖
	} else if err != redis.Nil {
		// redis 不可用不应该导致整个请求失败，降级为直接查库
		slots, fetchErr := fetch()
		if fetchErr != nil {
			return nil, fetchErr
		}
		return slots, nil
	}

	slots, err := fetch()
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(slots)
	if err != nil {
		return nil, err
	}

	if err := h.redisClient.Set(ctx, cacheKey, data, time.Duration(h.config.SlotCache.Expiration)*time.Second).Err(); err != nil {
		// 写缓存失败只影响下一次命中率，不影响本次结果
		return slots, nil
	}

	return slots, nil
}

// invalidateSlotCache 在指派变更后删除受影响班次的缓存
func (h *Handler) invalidateSlotCache(slots []*domain.Slot) {
	if len(slots) == 0 {
		return
	}

	keys := make([]string, 0, len(slots))
	seen := make(map[string]bool)
	for _, slot := range slots {
		key := fmt.Sprintf("slots_room_%d_%s_%s", slot.RoomID, slot.Date, slot.ShiftName)
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
	defer cancel()

	// 按员工维度的缓存键无法从槽位反推，依靠短过期时间自然失效
	if err := h.redisClient.Del(ctx, keys...).Err(); err != nil {
		slog.Error("删除槽位缓存失败", "keys", keys, "error", err)
	}
}
