package conflict

import (
	"fmt"

	"github.com/dencare-dev/staff-roster/backend/internal/domain"
	"github.com/dencare-dev/staff-roster/backend/internal/utils"
)

// Detect 找出候选时间段和员工已有排班之间的所有冲突
// 规则：
//  1. 只比较同一天的候选时间段和已有排班
//  2. 候选和已有排班引用同一个槽位时跳过（把槽位重新指派给本人不算冲突）
//  3. 采用半开区间的重叠判定，端点恰好相接不算冲突
//  4. 已有排班占用的是哪个角色无关紧要，一个人不能同时出现在两个地方
func Detect(candidates []domain.CandidateInterval, commitments []domain.Commitment) []domain.Conflict {
	conflicts := make([]domain.Conflict, 0)
	seen := make(map[string]bool)

	for _, cand := range candidates {
		candStart, err := utils.ParseClockMinutes(cand.StartTime)
		if err != nil {
			// 时间不可解析的候选时间段在上游就应该被剔除，这里直接跳过
			continue
		}
		candEnd, err := utils.ParseClockMinutes(cand.EndTime)
		if err != nil {
			continue
		}

		for _, com := range commitments {
			if com.Date != cand.Date {
				continue
			}
			if com.SlotID == cand.SlotID {
				continue
			}

			comStart, err := utils.ParseClockMinutes(com.StartTime)
			if err != nil {
				continue
			}
			comEnd, err := utils.ParseClockMinutes(com.EndTime)
			if err != nil {
				continue
			}

			if !(candStart < comEnd && comStart < candEnd) {
				continue
			}

			// 同一条已有排班可能和多个候选时间段重叠，需要去重避免重复上报
			key := fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s",
				com.Date, com.ShiftName, com.StartTime, com.EndTime, com.RoomName, com.SubRoomName, domain.ConflictSourceExisting)
			if seen[key] {
				continue
			}
			seen[key] = true

			conflicts = append(conflicts, domain.Conflict{
				Date:        com.Date,
				ShiftName:   com.ShiftName,
				StartTime:   com.StartTime,
				EndTime:     com.EndTime,
				RoomName:    com.RoomName,
				SubRoomName: com.SubRoomName,
				Role:        com.Role,
				Source:      domain.ConflictSourceExisting,
			})
		}
	}

	return conflicts
}

// ComputeStats 统计员工已有排班的槽位数和总工作时长
func ComputeStats(commitments []domain.Commitment) domain.AssignmentStats {
	stats := domain.AssignmentStats{
		AssignedSlotCount: len(commitments),
	}

	for _, com := range commitments {
		start, err := utils.ParseClockMinutes(com.StartTime)
		if err != nil {
			continue
		}
		end, err := utils.ParseClockMinutes(com.EndTime)
		if err != nil {
			continue
		}
		if end > start {
			stats.WorkMinutes += end - start
		}
	}

	return stats
}
