package handler

import (
	"testing"

	"github.com/dencare-dev/staff-roster/backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func dbSlots(ids ...int64) []*domain.Slot {
	slots := make([]*domain.Slot, 0, len(ids))
	for _, id := range ids {
		slots = append(slots, &domain.Slot{ID: id, Date: "2026-03-02"})
	}
	return slots
}

func TestFindMissingSlotIDs(t *testing.T) {
	t.Run("数据库返回了全部槽位时没有缺失", func(t *testing.T) {
		missing := findMissingSlotIDs([]int64{1, 2, 3}, dbSlots(1, 2, 3))
		assert.Empty(t, missing)
	})

	t.Run("已被删除的槽位被找出来", func(t *testing.T) {
		missing := findMissingSlotIDs([]int64{1, 2, 3, 5}, dbSlots(1, 3))
		assert.Equal(t, []int64{2, 5}, missing)
	})

	t.Run("数据库一个都没返回时全部缺失", func(t *testing.T) {
		missing := findMissingSlotIDs([]int64{1, 2}, nil)
		assert.Equal(t, []int64{1, 2}, missing)
	})

	t.Run("空请求没有缺失", func(t *testing.T) {
		assert.Empty(t, findMissingSlotIDs(nil, dbSlots(1)))
	})
}

func TestCollectSlotDates(t *testing.T) {
	slots := []*domain.Slot{
		{ID: 1, Date: "2026-03-05"},
		{ID: 2, Date: "2026-03-02"},
		{ID: 3, Date: "2026-03-05"},
	}

	// 去重并升序
	assert.Equal(t, []string{"2026-03-02", "2026-03-05"}, collectSlotDates(slots))
}
