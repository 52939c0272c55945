package conflict

import (
	"testing"

	"github.com/dencare-dev/staff-roster/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conflictAt(date, room, shiftName, start, end string) domain.Conflict {
	return domain.Conflict{
		Date:      date,
		ShiftName: shiftName,
		StartTime: start,
		EndTime:   end,
		RoomName:  room,
		Role:      domain.RoleDentist,
		Source:    domain.ConflictSourceExisting,
	}
}

func TestSummarize(t *testing.T) {
	t.Run("重叠的冲突被合并成一个连续时间段", func(t *testing.T) {
		summaries := Summarize([]domain.Conflict{
			conflictAt("2026-03-02", "一号诊室", "上午班", "09:00:00", "09:30:00"),
			conflictAt("2026-03-02", "一号诊室", "上午班", "09:20:00", "10:00:00"),
		})

		require.Len(t, summaries, 1)
		assert.Equal(t, 9*60, summaries[0].StartMinute)
		assert.Equal(t, 10*60, summaries[0].EndMinute)
		assert.Equal(t, 2, summaries[0].Count)
		assert.Equal(t, []string{"上午班"}, summaries[0].ShiftNames)
	})

	t.Run("端点相接也会合并", func(t *testing.T) {
		summaries := Summarize([]domain.Conflict{
			conflictAt("2026-03-02", "一号诊室", "上午班", "09:00:00", "10:00:00"),
			conflictAt("2026-03-02", "一号诊室", "上午班", "10:00:00", "11:00:00"),
		})

		require.Len(t, summaries, 1)
		assert.Equal(t, 9*60, summaries[0].StartMinute)
		assert.Equal(t, 11*60, summaries[0].EndMinute)
	})

	t.Run("中间有空档的冲突不会合并", func(t *testing.T) {
		summaries := Summarize([]domain.Conflict{
			conflictAt("2026-03-02", "一号诊室", "上午班", "09:00:00", "10:00:00"),
			conflictAt("2026-03-02", "一号诊室", "下午班", "13:30:00", "15:00:00"),
		})

		require.Len(t, summaries, 2)
		assert.Equal(t, 9*60, summaries[0].StartMinute)
		assert.Equal(t, 13*60+30, summaries[1].StartMinute)
	})

	t.Run("不同日期或诊室分属不同分组", func(t *testing.T) {
		summaries := Summarize([]domain.Conflict{
			conflictAt("2026-03-02", "一号诊室", "上午班", "09:00:00", "10:00:00"),
			conflictAt("2026-03-02", "二号诊室", "上午班", "09:00:00", "10:00:00"),
			conflictAt("2026-03-03", "一号诊室", "上午班", "09:00:00", "10:00:00"),
		})

		assert.Len(t, summaries, 3)
	})

	t.Run("乱序输入按开始时间排序后合并", func(t *testing.T) {
		summaries := Summarize([]domain.Conflict{
			conflictAt("2026-03-02", "一号诊室", "上午班", "10:00:00", "11:00:00"),
			conflictAt("2026-03-02", "一号诊室", "上午班", "09:00:00", "10:30:00"),
		})

		require.Len(t, summaries, 1)
		assert.Equal(t, 9*60, summaries[0].StartMinute)
		assert.Equal(t, 11*60, summaries[0].EndMinute)
	})

	t.Run("时间不可解析的冲突单独成为一条摘要", func(t *testing.T) {
		summaries := Summarize([]domain.Conflict{
			conflictAt("2026-03-02", "一号诊室", "上午班", "09:00:00", "10:00:00"),
			conflictAt("2026-03-02", "一号诊室", "加班", "无效时间", "10:00:00"),
		})

		require.Len(t, summaries, 2)

		var singleton *domain.ConflictSummary
		for i := range summaries {
			if summaries[i].StartMinute == -1 {
				singleton = &summaries[i]
			}
		}
		require.NotNil(t, singleton)
		assert.Equal(t, -1, singleton.EndMinute)
		assert.Equal(t, 1, singleton.Count)
		assert.Equal(t, []string{"加班"}, singleton.ShiftNames)
	})

	t.Run("合并后的班次名去重", func(t *testing.T) {
		summaries := Summarize([]domain.Conflict{
			conflictAt("2026-03-02", "一号诊室", "上午班", "09:00:00", "10:00:00"),
			conflictAt("2026-03-02", "一号诊室", "上午班", "09:30:00", "10:30:00"),
			conflictAt("2026-03-02", "一号诊室", "加诊", "10:00:00", "11:00:00"),
		})

		require.Len(t, summaries, 1)
		assert.Equal(t, []string{"上午班", "加诊"}, summaries[0].ShiftNames)
		assert.Equal(t, 3, summaries[0].Count)
	})
}
