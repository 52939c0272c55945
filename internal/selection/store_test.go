package selection

import (
	"testing"

	"github.com/dencare-dev/staff-roster/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(activeMonth string) *Store {
	return NewStore(SessionContext{OperatorID: 1, Username: "admin"}, activeMonth)
}

func makeSlots(date, shiftName string, ids ...int64) (domain.ShiftKey, []*domain.Slot) {
	key := domain.MakeShiftKey(date, shiftName)
	slots := make([]*domain.Slot, 0, len(ids))
	for _, id := range ids {
		slots = append(slots, &domain.Slot{
			ID:        id,
			Date:      date,
			ShiftName: shiftName,
			StartTime: "08:00:00",
			EndTime:   "12:00:00",
			RoomID:    1,
			RoomName:  "一号诊室",
		})
	}
	return key, slots
}

func TestToggleSlot(t *testing.T) {
	t.Run("没有快照时拒绝勾选", func(t *testing.T) {
		store := testStore("2026-03")

		err := store.ToggleSlot(domain.MakeShiftKey("2026-03-02", "上午班"), 1)
		assert.ErrorContains(t, err, "快照不存在")
	})

	t.Run("不在快照中的槽位拒绝勾选", func(t *testing.T) {
		store := testStore("2026-03")
		key, slots := makeSlots("2026-03-02", "上午班", 1, 2)
		store.CacheSnapshot(key, slots)

		err := store.ToggleSlot(key, 99)
		assert.ErrorContains(t, err, "不在班次")
	})

	t.Run("两次勾选回到未选中状态", func(t *testing.T) {
		store := testStore("2026-03")
		key, slots := makeSlots("2026-03-02", "上午班", 1, 2)
		store.CacheSnapshot(key, slots)

		require.NoError(t, store.ToggleSlot(key, 1))
		assert.Equal(t, 1, store.TotalSelected())

		require.NoError(t, store.ToggleSlot(key, 1))
		assert.Equal(t, 0, store.TotalSelected())
		// 集合为空的条目被整个删除
		assert.Empty(t, store.Entries())
	})
}

func TestToggleWholeShift(t *testing.T) {
	store := testStore("2026-03")
	key, slots := makeSlots("2026-03-02", "上午班", 1, 2, 3)
	store.CacheSnapshot(key, slots)

	// 半选状态下整班勾选 → 全选
	require.NoError(t, store.ToggleSlot(key, 1))
	require.NoError(t, store.ToggleWholeShift(key))
	assert.Equal(t, 3, store.TotalSelected())

	// 全选状态下整班勾选 → 清空
	require.NoError(t, store.ToggleWholeShift(key))
	assert.Equal(t, 0, store.TotalSelected())

	// 未选状态下整班勾选 → 全选
	require.NoError(t, store.ToggleWholeShift(key))
	assert.Equal(t, 3, store.TotalSelected())
}

func TestSelectAllInShift(t *testing.T) {
	store := testStore("2026-03")
	key, slots := makeSlots("2026-03-02", "上午班", 1, 2, 3)
	store.CacheSnapshot(key, slots)

	// 与 ToggleWholeShift 不同，已经全选时不会反选
	require.NoError(t, store.SelectAllInShift(key))
	require.NoError(t, store.SelectAllInShift(key))
	assert.Equal(t, 3, store.TotalSelected())
}

func TestPageMonth(t *testing.T) {
	t.Run("翻页保存并恢复各月份的选择", func(t *testing.T) {
		store := testStore("2026-03")

		marchKey, marchSlots := makeSlots("2026-03-02", "上午班", 1, 2, 3)
		store.CacheSnapshot(marchKey, marchSlots)
		require.NoError(t, store.ToggleWholeShift(marchKey))

		store.PageMonth("2026-04")
		assert.Empty(t, store.Entries())

		aprilKey, aprilSlots := makeSlots("2026-04-06", "下午班", 10, 11)
		store.CacheSnapshot(aprilKey, aprilSlots)
		require.NoError(t, store.ToggleWholeShift(aprilKey))

		// 翻回三月份，三月的选择原样恢复
		store.PageMonth("2026-03")
		entries := store.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, marchKey, entries[0].ShiftKey)
		assert.Len(t, entries[0].SelectedIDs, 3)

		// 总数始终跨月份统计
		assert.Equal(t, 5, store.TotalSelected())
	})

	t.Run("没访问过的月份从空白开始", func(t *testing.T) {
		store := testStore("2026-03")
		key, slots := makeSlots("2026-03-02", "上午班", 1)
		store.CacheSnapshot(key, slots)
		require.NoError(t, store.ToggleSlot(key, 1))
		store.SetShiftFilters([]string{"上午班"})

		store.PageMonth("2026-05")

		assert.Empty(t, store.Entries())
		assert.Empty(t, store.ShiftFilters())
	})

	t.Run("翻到当前月份是空操作", func(t *testing.T) {
		store := testStore("2026-03")
		key, slots := makeSlots("2026-03-02", "上午班", 1)
		store.CacheSnapshot(key, slots)
		require.NoError(t, store.ToggleSlot(key, 1))

		store.PageMonth("2026-03")
		assert.Equal(t, 1, store.TotalSelected())
	})

	t.Run("翻页筛选随月份保存和恢复", func(t *testing.T) {
		store := testStore("2026-03")
		key, slots := makeSlots("2026-03-02", "上午班", 1)
		store.CacheSnapshot(key, slots)
		require.NoError(t, store.ToggleSlot(key, 1))
		store.SetShiftFilters([]string{"上午班", "下午班"})

		store.PageMonth("2026-04")
		store.PageMonth("2026-03")

		assert.Equal(t, []string{"上午班", "下午班"}, store.ShiftFilters())
	})
}

func TestSelectedSlotIDs(t *testing.T) {
	store := testStore("2026-03")

	marchKey, marchSlots := makeSlots("2026-03-02", "上午班", 3, 1)
	store.CacheSnapshot(marchKey, marchSlots)
	require.NoError(t, store.ToggleWholeShift(marchKey))

	store.PageMonth("2026-04")
	aprilKey, aprilSlots := makeSlots("2026-04-06", "下午班", 2)
	store.CacheSnapshot(aprilKey, aprilSlots)
	require.NoError(t, store.ToggleWholeShift(aprilKey))

	// 跨月份合并且升序
	assert.Equal(t, []int64{1, 2, 3}, store.SelectedSlotIDs())
}

func TestSelectedSlots(t *testing.T) {
	store := testStore("2026-03")
	key, slots := makeSlots("2026-03-02", "上午班", 1, 2)
	store.CacheSnapshot(key, slots)
	require.NoError(t, store.ToggleWholeShift(key))

	selected, missing := store.SelectedSlots()
	assert.Len(t, selected, 2)
	assert.Equal(t, 0, missing)

	// 切换 Scope 后快照和选择都被清空
	store.SwitchScope(Scope{RoomID: 2})
	selected, missing = store.SelectedSlots()
	assert.Empty(t, selected)
	assert.Equal(t, 0, missing)
}

func TestBeginConflictCheck(t *testing.T) {
	t.Run("空选择直接报错", func(t *testing.T) {
		store := testStore("2026-03")

		_, _, _, err := store.BeginConflictCheck()
		assert.EqualError(t, err, "尚未选择任何槽位")
	})

	t.Run("返回令牌和候选时间段", func(t *testing.T) {
		store := testStore("2026-03")
		key, slots := makeSlots("2026-03-02", "上午班", 1, 2)
		store.CacheSnapshot(key, slots)
		require.NoError(t, store.ToggleWholeShift(key))

		token, intervals, excluded, err := store.BeginConflictCheck()
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Len(t, intervals, 2)
		assert.Equal(t, 0, excluded)
	})

	t.Run("时间不可用的槽位被剔除", func(t *testing.T) {
		store := testStore("2026-03")
		key, slots := makeSlots("2026-03-02", "上午班", 1, 2)
		slots[1].StartTime = "无效时间"
		store.CacheSnapshot(key, slots)
		require.NoError(t, store.ToggleWholeShift(key))

		_, intervals, excluded, err := store.BeginConflictCheck()
		require.NoError(t, err)
		assert.Len(t, intervals, 1)
		assert.Equal(t, 1, excluded)
	})

	t.Run("所有槽位时间都不可用时报错", func(t *testing.T) {
		store := testStore("2026-03")
		key, slots := makeSlots("2026-03-02", "上午班", 1)
		slots[0].EndTime = "无效时间"
		store.CacheSnapshot(key, slots)
		require.NoError(t, store.ToggleWholeShift(key))

		_, _, _, err := store.BeginConflictCheck()
		assert.ErrorContains(t, err, "无法进行冲突检测")
	})
}

func TestCheckStillCurrent(t *testing.T) {
	store := testStore("2026-03")
	key, slots := makeSlots("2026-03-02", "上午班", 1, 2)
	store.CacheSnapshot(key, slots)
	require.NoError(t, store.ToggleWholeShift(key))

	token, _, _, err := store.BeginConflictCheck()
	require.NoError(t, err)

	// 选择没变时结果有效
	assert.True(t, store.CheckStillCurrent(token))
	// 空令牌和未知令牌无效
	assert.False(t, store.CheckStillCurrent(""))
	assert.False(t, store.CheckStillCurrent("其他令牌"))

	// 请求飞行期间选择变化，结果作废
	require.NoError(t, store.ToggleSlot(key, 1))
	assert.False(t, store.CheckStillCurrent(token))

	// 改回原样后集合一致，结果重新有效
	require.NoError(t, store.ToggleSlot(key, 1))
	assert.True(t, store.CheckStillCurrent(token))
}

func TestSwitchScopeAndClear(t *testing.T) {
	store := testStore("2026-03")
	key, slots := makeSlots("2026-03-02", "上午班", 1, 2)
	store.CacheSnapshot(key, slots)
	require.NoError(t, store.ToggleWholeShift(key))
	store.PageMonth("2026-04")
	store.PageMonth("2026-03")

	t.Run("切换对象清空一切", func(t *testing.T) {
		store.SwitchScope(Scope{StaffID: 7})

		assert.Equal(t, int64(7), store.Scope().StaffID)
		assert.Equal(t, 0, store.TotalSelected())
		_, exists := store.Snapshot(key)
		assert.False(t, exists)
	})

	t.Run("指派成功后清空选择但保留快照", func(t *testing.T) {
		store.CacheSnapshot(key, slots)
		require.NoError(t, store.ToggleWholeShift(key))
		require.Equal(t, 2, store.TotalSelected())

		store.Clear()

		assert.Equal(t, 0, store.TotalSelected())
		_, exists := store.Snapshot(key)
		assert.True(t, exists)
	})
}

func TestManagerSession(t *testing.T) {
	manager := NewManager(0)

	first := manager.Session(SessionContext{OperatorID: 1, Username: "admin"}, "2026-03")
	second := manager.Session(SessionContext{OperatorID: 1, Username: "admin"}, "2026-04")
	other := manager.Session(SessionContext{OperatorID: 2, Username: "zhangwei"}, "2026-03")

	// 同一个操作员取回同一个会话，活动月份以创建时为准
	assert.Same(t, first, second)
	assert.Equal(t, "2026-03", first.ActiveMonth())
	assert.NotSame(t, first, other)

	manager.Drop(1)
	third := manager.Session(SessionContext{OperatorID: 1, Username: "admin"}, "2026-05")
	assert.NotSame(t, first, third)
	assert.Equal(t, "2026-05", third.ActiveMonth())
}
