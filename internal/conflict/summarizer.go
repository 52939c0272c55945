package conflict

import (
	"sort"

	"github.com/dencare-dev/staff-roster/backend/internal/domain"
	"github.com/dencare-dev/staff-roster/backend/internal/utils"
)

type summaryGroupKey struct {
	date        string
	roomName    string
	subRoomName string
	source      string
}

// Summarize 把同一名员工的一批原始冲突压缩成若干连续时间段
// 按 (日期, 诊室, 子诊室, 来源) 分组，组内按开始时间排序后顺序合并，
// 开始时间不晚于当前区间结束时间的冲突并入当前区间（端点相接也合并）
// 时间不可解析的冲突单独成为一条摘要，不参与合并
func Summarize(conflicts []domain.Conflict) []domain.ConflictSummary {
	summaries := make([]domain.ConflictSummary, 0)

	groups := make(map[summaryGroupKey][]domain.Conflict)
	groupOrder := make([]summaryGroupKey, 0)

	for _, c := range conflicts {
		key := summaryGroupKey{
			date:        c.Date,
			roomName:    c.RoomName,
			subRoomName: c.SubRoomName,
			source:      c.Source,
		}
		if _, exists := groups[key]; !exists {
			groupOrder = append(groupOrder, key)
		}
		groups[key] = append(groups[key], c)
	}

	for _, key := range groupOrder {
		summaries = append(summaries, summarizeGroup(key, groups[key])...)
	}

	return summaries
}

type timedConflict struct {
	conflict domain.Conflict
	start    int
	end      int
}

func summarizeGroup(key summaryGroupKey, group []domain.Conflict) []domain.ConflictSummary {
	summaries := make([]domain.ConflictSummary, 0)

	timed := make([]timedConflict, 0, len(group))
	for _, c := range group {
		start, startErr := utils.ParseClockMinutes(c.StartTime)
		end, endErr := utils.ParseClockMinutes(c.EndTime)
		if startErr != nil || endErr != nil {
			// 时间不可解析，单独输出一条摘要
			summaries = append(summaries, domain.ConflictSummary{
				Date:        key.date,
				RoomName:    key.roomName,
				SubRoomName: key.subRoomName,
				Source:      key.source,
				StartMinute: -1,
				EndMinute:   -1,
				ShiftNames:  []string{c.ShiftName},
				Count:       1,
			})
			continue
		}
		timed = append(timed, timedConflict{conflict: c, start: start, end: end})
	}

	sort.SliceStable(timed, func(i, j int) bool {
		return timed[i].start < timed[j].start
	})

	var running *domain.ConflictSummary
	for _, tc := range timed {
		if running != nil && tc.start <= running.EndMinute {
			// 并入当前区间
			if tc.end > running.EndMinute {
				running.EndMinute = tc.end
			}
			running.ShiftNames = appendShiftName(running.ShiftNames, tc.conflict.ShiftName)
			running.Count++
			continue
		}

		// 无法并入，结算当前区间并另起一个
		if running != nil {
			summaries = append(summaries, *running)
		}
		running = &domain.ConflictSummary{
			Date:        key.date,
			RoomName:    key.roomName,
			SubRoomName: key.subRoomName,
			Source:      key.source,
			StartMinute: tc.start,
			EndMinute:   tc.end,
			ShiftNames:  []string{tc.conflict.ShiftName},
			Count:       1,
		}
	}
	if running != nil {
		summaries = append(summaries, *running)
	}

	return summaries
}

func appendShiftName(names []string, name string) []string {
	for _, n := range names {
		if n == name {
			return names
		}
	}
	return append(names, name)
}
