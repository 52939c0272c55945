package handler

import (
	"fmt"
	"net/http"

	"github.com/dencare-dev/staff-roster/backend/internal/conflict"
	"github.com/dencare-dev/staff-roster/backend/internal/domain"
	"github.com/dencare-dev/staff-roster/backend/internal/selection"
)

// CheckConflicts 对所有候选员工和所有被选时间段做一次批量冲突检测
// 候选名单可能有几百人，必须一次调用覆盖全部候选，绝不能按员工逐个调用
// 返回的 token 用于请求关联：检测期间选择发生变化时，客户端应丢弃这份结果
func (h *Handler) CheckConflicts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DentistCandidateIDs []int64 `json:"dentistCandidateIDs"`
		NurseCandidateIDs   []int64 `json:"nurseCandidateIDs"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if len(req.DentistCandidateIDs) == 0 && len(req.NurseCandidateIDs) == 0 {
		h.errorResponse(w, r, "尚未选择候选员工")
		return
	}

	store := r.Context().Value(SessionCtx).(*selection.Store)

	token, intervals, excluded, err := store.BeginConflictCheck()
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	// 计算涉及的日期区间，一次把所有候选员工的已有排班查出来
	minDate := intervals[0].Date
	maxDate := intervals[0].Date
	for _, interval := range intervals {
		if interval.Date < minDate {
			minDate = interval.Date
		}
		if interval.Date > maxDate {
			maxDate = interval.Date
		}
	}

	staffIDSet := make(map[int64]bool)
	staffIDs := make([]int64, 0, len(req.DentistCandidateIDs)+len(req.NurseCandidateIDs))
	for _, id := range append(append([]int64{}, req.DentistCandidateIDs...), req.NurseCandidateIDs...) {
		if !staffIDSet[id] {
			staffIDSet[id] = true
			staffIDs = append(staffIDs, id)
		}
	}

	commitments, err := h.repository.GetCommitmentsByStaff(staffIDs, minDate, maxDate)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	result := &domain.ConflictCheckResult{
		Token:                 token,
		ConflictingDentistIDs: make([]int64, 0),
		ConflictingNurseIDs:   make([]int64, 0),
		ConflictsByStaffID:    make(map[int64][]domain.Conflict),
		SummariesByStaffID:    make(map[int64][]domain.ConflictSummary),
		StatsByStaffID:        make(map[int64]domain.AssignmentStats),
	}

	dentistCandidates := make(map[int64]bool, len(req.DentistCandidateIDs))
	for _, id := range req.DentistCandidateIDs {
		dentistCandidates[id] = true
	}
	nurseCandidates := make(map[int64]bool, len(req.NurseCandidateIDs))
	for _, id := range req.NurseCandidateIDs {
		nurseCandidates[id] = true
	}

	for _, staffID := range staffIDs {
		conflicts := conflict.Detect(intervals, commitments[staffID])
		result.StatsByStaffID[staffID] = conflict.ComputeStats(commitments[staffID])

		if len(conflicts) == 0 {
			continue
		}

		result.ConflictsByStaffID[staffID] = conflicts
		result.SummariesByStaffID[staffID] = conflict.Summarize(conflicts)

		if dentistCandidates[staffID] {
			result.ConflictingDentistIDs = append(result.ConflictingDentistIDs, staffID)
		}
		if nurseCandidates[staffID] {
			result.ConflictingNurseIDs = append(result.ConflictingNurseIDs, staffID)
		}
	}

	if excluded > 0 {
		warning := fmt.Sprintf("有 %d 个槽位的时间数据不可用，已从检测中剔除", excluded)
		h.successResponseWithWarning(w, r, "冲突检测完成", warning, result)
		return
	}

	h.successResponse(w, r, "冲突检测完成", result)
}
