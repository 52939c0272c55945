package assignment

import (
	"testing"

	"github.com/dencare-dev/staff-roster/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotWith(id int64, dentists []int64, nurses []int64) *domain.Slot {
	slot := &domain.Slot{
		ID:        id,
		Date:      "2026-03-02",
		ShiftName: "上午班",
		StartTime: "08:00:00",
		EndTime:   "12:00:00",
	}
	for _, d := range dentists {
		slot.Dentists = append(slot.Dentists, domain.AssignedStaff{ID: d})
	}
	for _, n := range nurses {
		slot.Nurses = append(slot.Nurses, domain.AssignedStaff{ID: n})
	}
	return slot
}

func TestValidateConfirm(t *testing.T) {
	room := &domain.Room{ID: 1, Name: "一号诊室", MaxDentists: 1, MaxNurses: 2}

	t.Run("空选择被拒绝", func(t *testing.T) {
		err := ValidateConfirm(nil, room, []int64{1}, nil)
		assert.EqualError(t, err, "尚未选择任何槽位")
	})

	t.Run("同一个人不能同时当牙医和护士", func(t *testing.T) {
		slots := []*domain.Slot{slotWith(1, nil, nil)}
		err := ValidateConfirm(slots, room, []int64{7}, []int64{7})
		assert.EqualError(t, err, "同一名员工不能同时被选为牙医和护士")
	})

	t.Run("超过诊室容量被拒绝", func(t *testing.T) {
		slots := []*domain.Slot{slotWith(1, nil, nil)}
		err := ValidateConfirm(slots, room, []int64{1, 2}, []int64{3, 4})
		assert.ErrorContains(t, err, "牙医人数超过了诊室容量")
	})

	t.Run("首次指派必须覆盖容量大于零的角色", func(t *testing.T) {
		slots := []*domain.Slot{slotWith(1, nil, nil)}

		err := ValidateConfirm(slots, room, nil, []int64{3})
		assert.EqualError(t, err, "该诊室需要指派牙医")

		err = ValidateConfirm(slots, room, []int64{1}, nil)
		assert.EqualError(t, err, "该诊室需要指派护士")

		err = ValidateConfirm(slots, room, []int64{1}, []int64{3})
		assert.NoError(t, err)
	})

	t.Run("容量为零的角色不要求候选", func(t *testing.T) {
		noNurseRoom := &domain.Room{ID: 2, Name: "洁牙室", MaxDentists: 1, MaxNurses: 0}
		slots := []*domain.Slot{slotWith(1, nil, nil)}

		err := ValidateConfirm(slots, noNurseRoom, []int64{1}, nil)
		assert.NoError(t, err)
	})

	t.Run("全部已排满时只要求至少选一个人", func(t *testing.T) {
		slots := []*domain.Slot{slotWith(1, []int64{9}, nil)}

		err := ValidateConfirm(slots, room, nil, nil)
		assert.EqualError(t, err, "请至少选择一名牙医或护士")

		// 只换护士也允许，不要求重新给出牙医
		err = ValidateConfirm(slots, room, nil, []int64{3})
		assert.NoError(t, err)
	})

	t.Run("只要有一个未排满的槽位就按首次指派处理", func(t *testing.T) {
		slots := []*domain.Slot{
			slotWith(1, []int64{9}, nil),
			slotWith(2, nil, nil),
		}

		err := ValidateConfirm(slots, room, nil, []int64{3})
		assert.EqualError(t, err, "该诊室需要指派牙医")
	})
}

func TestResolveReplacementRole(t *testing.T) {
	t.Run("只担任一种角色时返回该角色", func(t *testing.T) {
		slots := []*domain.Slot{
			slotWith(1, []int64{7}, nil),
			slotWith(2, []int64{7}, nil),
		}

		role, err := ResolveReplacementRole(7, slots)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleDentist, role)
	})

	t.Run("同时担任两种角色时拒绝替换", func(t *testing.T) {
		slots := []*domain.Slot{
			slotWith(1, []int64{7}, nil),
			slotWith(2, nil, []int64{7}),
		}

		_, err := ResolveReplacementRole(7, slots)
		assert.ErrorContains(t, err, "无法确定要替换的角色")
	})

	t.Run("不在所选槽位中时报错", func(t *testing.T) {
		slots := []*domain.Slot{slotWith(1, []int64{9}, nil)}

		_, err := ResolveReplacementRole(7, slots)
		assert.EqualError(t, err, "该员工不在所选槽位的排班中")
	})
}
