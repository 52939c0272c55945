package conflict

import (
	"testing"

	"github.com/dencare-dev/staff-roster/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(slotID int64, date, start, end string) domain.CandidateInterval {
	return domain.CandidateInterval{
		SlotID:    slotID,
		Date:      date,
		ShiftName: "上午班",
		StartTime: start,
		EndTime:   end,
		RoomName:  "一号诊室",
	}
}

func commitment(slotID int64, date, start, end string) domain.Commitment {
	return domain.Commitment{
		SlotID:    slotID,
		Date:      date,
		ShiftName: "下午班",
		StartTime: start,
		EndTime:   end,
		RoomName:  "二号诊室",
		Role:      domain.RoleDentist,
	}
}

func TestDetect(t *testing.T) {
	t.Run("时间重叠时报告冲突", func(t *testing.T) {
		conflicts := Detect(
			[]domain.CandidateInterval{candidate(1, "2026-03-02", "09:00:00", "12:00:00")},
			[]domain.Commitment{commitment(100, "2026-03-02", "11:00:00", "13:00:00")},
		)

		require.Len(t, conflicts, 1)
		assert.Equal(t, "2026-03-02", conflicts[0].Date)
		assert.Equal(t, "11:00:00", conflicts[0].StartTime)
		assert.Equal(t, domain.RoleDentist, conflicts[0].Role)
		assert.Equal(t, domain.ConflictSourceExisting, conflicts[0].Source)
	})

	t.Run("端点恰好相接不算冲突", func(t *testing.T) {
		conflicts := Detect(
			[]domain.CandidateInterval{candidate(1, "2026-03-02", "09:00:00", "12:00:00")},
			[]domain.Commitment{commitment(100, "2026-03-02", "12:00:00", "14:00:00")},
		)

		assert.Empty(t, conflicts)
	})

	t.Run("不同日期互不影响", func(t *testing.T) {
		conflicts := Detect(
			[]domain.CandidateInterval{candidate(1, "2026-03-02", "09:00:00", "12:00:00")},
			[]domain.Commitment{commitment(100, "2026-03-03", "09:00:00", "12:00:00")},
		)

		assert.Empty(t, conflicts)
	})

	t.Run("同一个槽位不和自己冲突", func(t *testing.T) {
		conflicts := Detect(
			[]domain.CandidateInterval{candidate(1, "2026-03-02", "09:00:00", "12:00:00")},
			[]domain.Commitment{commitment(1, "2026-03-02", "09:00:00", "12:00:00")},
		)

		assert.Empty(t, conflicts)
	})

	t.Run("重叠判定对调候选和已有排班结果一致", func(t *testing.T) {
		a := Detect(
			[]domain.CandidateInterval{candidate(1, "2026-03-02", "09:00:00", "11:00:00")},
			[]domain.Commitment{commitment(100, "2026-03-02", "10:00:00", "12:00:00")},
		)
		b := Detect(
			[]domain.CandidateInterval{candidate(1, "2026-03-02", "10:00:00", "12:00:00")},
			[]domain.Commitment{commitment(100, "2026-03-02", "09:00:00", "11:00:00")},
		)

		assert.Len(t, a, 1)
		assert.Len(t, b, 1)
	})

	t.Run("同一条已有排班只上报一次", func(t *testing.T) {
		conflicts := Detect(
			[]domain.CandidateInterval{
				candidate(1, "2026-03-02", "09:00:00", "10:00:00"),
				candidate(2, "2026-03-02", "09:30:00", "11:00:00"),
			},
			[]domain.Commitment{commitment(100, "2026-03-02", "09:00:00", "12:00:00")},
		)

		assert.Len(t, conflicts, 1)
	})

	t.Run("时间不可解析的记录被跳过", func(t *testing.T) {
		conflicts := Detect(
			[]domain.CandidateInterval{candidate(1, "2026-03-02", "无效时间", "12:00:00")},
			[]domain.Commitment{commitment(100, "2026-03-02", "09:00:00", "12:00:00")},
		)

		assert.Empty(t, conflicts)
	})
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats([]domain.Commitment{
		commitment(1, "2026-03-02", "09:00:00", "12:00:00"),
		commitment(2, "2026-03-03", "13:30:00", "17:30:00"),
		commitment(3, "2026-03-04", "无效时间", "17:30:00"),
	})

	assert.Equal(t, 3, stats.AssignedSlotCount)
	// 不可解析的记录计入槽位数但不计入时长
	assert.Equal(t, 180+240, stats.WorkMinutes)
}
