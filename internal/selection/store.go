package selection

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dencare-dev/staff-roster/backend/internal/domain"
	"github.com/dencare-dev/staff-roster/backend/internal/utils"
	"github.com/google/uuid"
)

// Scope 表示当前选择面向的对象：按诊室浏览或按员工浏览
// 二者互斥，切换 Scope 会清空快照缓存和全部选择
type Scope struct {
	RoomID    int64  `json:"roomID"`
	SubRoomID *int64 `json:"subRoomID"`
	StaffID   int64  `json:"staffID"`
}

// SlotSnapshot 是某个班次的槽位数据快照，选择必须基于快照进行
type SlotSnapshot struct {
	Slots     []*domain.Slot
	FetchedAt time.Time
}

// SelectionEntry 记录一个班次里被勾选的槽位集合
// 不变量：被选中的槽位 id 一定是该班次快照中存在的 id 的子集，
// 勾选集合为空的条目会被整个删除
type SelectionEntry struct {
	ShiftKey    domain.ShiftKey `json:"shiftKey"`
	Date        string          `json:"date"`
	ShiftName   string          `json:"shiftName"`
	SelectedIDs map[int64]bool  `json:"selectedIDs"`
	TotalSlots  int             `json:"totalSlots"`
}

// MonthState 是离开某个月份时保存的选择和筛选快照，按 2006-01 作为键
type MonthState struct {
	ShiftFilters []string
	Entries      map[domain.ShiftKey]*SelectionEntry
}

// Store 拥有一名操作员跨月份的全部槽位选择状态
// 同一个操作员的请求基本是串行的，这里加锁只是以防万一
type Store struct {
	mu sync.Mutex

	ctx          SessionContext
	scope        Scope
	activeMonth  string
	shiftFilters []string
	entries      map[domain.ShiftKey]*SelectionEntry
	snapshots    map[domain.ShiftKey]*SlotSnapshot
	months       map[string]*MonthState

	// 冲突检测的请求关联：记录发起检测时的槽位集合，
	// 响应回来时如果选择已经变化则丢弃结果
	checkToken   string
	checkSlotIDs map[int64]bool

	busy      bool
	lastTouch time.Time
}

func NewStore(ctx SessionContext, activeMonth string) *Store {
	return &Store{
		ctx:         ctx,
		activeMonth: activeMonth,
		entries:     make(map[domain.ShiftKey]*SelectionEntry),
		snapshots:   make(map[domain.ShiftKey]*SlotSnapshot),
		months:      make(map[string]*MonthState),
		lastTouch:   time.Now(),
	}
}

func (s *Store) Context() SessionContext {
	return s.ctx
}

func (s *Store) Scope() Scope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scope
}

// SwitchScope 切换当前浏览的诊室或员工
// 快照缓存和所有月份的选择都会被清空，防止旧数据串台
func (s *Store) SwitchScope(scope Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.scope = scope
	s.entries = make(map[domain.ShiftKey]*SelectionEntry)
	s.snapshots = make(map[domain.ShiftKey]*SlotSnapshot)
	s.months = make(map[string]*MonthState)
	s.shiftFilters = nil
	s.checkToken = ""
	s.checkSlotIDs = nil
}

func (s *Store) SetShiftFilters(filters []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.shiftFilters = append([]string(nil), filters...)
}

func (s *Store) ShiftFilters() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.shiftFilters...)
}

// CacheSnapshot 缓存一个班次的槽位快照，后续的勾选都基于这份快照
func (s *Store) CacheSnapshot(key domain.ShiftKey, slots []*domain.Slot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.snapshots[key] = &SlotSnapshot{
		Slots:     slots,
		FetchedAt: time.Now(),
	}
}

func (s *Store) Snapshot(key domain.ShiftKey) (*SlotSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, exists := s.snapshots[key]
	return snapshot, exists
}

// ToggleSlot 翻转某个班次里一个槽位的勾选状态
// 勾选后集合为空时整个条目会被删除
func (s *Store) ToggleSlot(key domain.ShiftKey, slotID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	snapshot, exists := s.snapshots[key]
	if !exists {
		return fmt.Errorf("班次 %s 的槽位快照不存在，请先拉取槽位列表", key)
	}

	found := false
	for _, slot := range snapshot.Slots {
		if slot.ID == slotID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("槽位 %d 不在班次 %s 的快照中", slotID, key)
	}

	entry, exists := s.entries[key]
	if !exists {
		entry = &SelectionEntry{
			ShiftKey:    key,
			Date:        key.Date(),
			ShiftName:   key.ShiftName(),
			SelectedIDs: make(map[int64]bool),
			TotalSlots:  len(snapshot.Slots),
		}
		s.entries[key] = entry
	}

	if entry.SelectedIDs[slotID] {
		delete(entry.SelectedIDs, slotID)
	} else {
		entry.SelectedIDs[slotID] = true
	}

	if len(entry.SelectedIDs) == 0 {
		delete(s.entries, key)
	}

	return nil
}

// ToggleWholeShift 实现整班勾选框的语义：
// 已经全选 → 清空该班次；没选或只选了部分 → 全选
func (s *Store) ToggleWholeShift(key domain.ShiftKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	snapshot, exists := s.snapshots[key]
	if !exists {
		return fmt.Errorf("班次 %s 的槽位快照不存在，请先拉取槽位列表", key)
	}

	entry, exists := s.entries[key]
	if exists && len(entry.SelectedIDs) == len(snapshot.Slots) {
		delete(s.entries, key)
		return nil
	}

	selected := make(map[int64]bool, len(snapshot.Slots))
	for _, slot := range snapshot.Slots {
		selected[slot.ID] = true
	}

	s.entries[key] = &SelectionEntry{
		ShiftKey:    key,
		Date:        key.Date(),
		ShiftName:   key.ShiftName(),
		SelectedIDs: selected,
		TotalSlots:  len(snapshot.Slots),
	}

	return nil
}

// SelectAllInShift 无条件选中一个班次的全部槽位，供整月批量选择使用
// 与 ToggleWholeShift 不同，已经全选的班次不会被反选
func (s *Store) SelectAllInShift(key domain.ShiftKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	snapshot, exists := s.snapshots[key]
	if !exists {
		return fmt.Errorf("班次 %s 的槽位快照不存在，请先拉取槽位列表", key)
	}

	selected := make(map[int64]bool, len(snapshot.Slots))
	for _, slot := range snapshot.Slots {
		selected[slot.ID] = true
	}

	s.entries[key] = &SelectionEntry{
		ShiftKey:    key,
		Date:        key.Date(),
		ShiftName:   key.ShiftName(),
		SelectedIDs: selected,
		TotalSlots:  len(snapshot.Slots),
	}

	return nil
}

// PageMonth 翻页到另一个月份
// 离开前一定会先保存当前月份，保证未保存的选择不会在翻页时丢失
func (s *Store) PageMonth(monthKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if monthKey == s.activeMonth {
		return
	}

	s.saveMonth(s.activeMonth)
	s.activeMonth = monthKey
	s.restoreMonth(monthKey)
}

func (s *Store) ActiveMonth() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeMonth
}

// saveMonth 保存当前的筛选和选择条目，选择为空时删除该月份的记录
func (s *Store) saveMonth(monthKey string) {
	if len(s.entries) == 0 {
		delete(s.months, monthKey)
		return
	}

	entries := make(map[domain.ShiftKey]*SelectionEntry, len(s.entries))
	for key, entry := range s.entries {
		selected := make(map[int64]bool, len(entry.SelectedIDs))
		for id := range entry.SelectedIDs {
			selected[id] = true
		}
		entries[key] = &SelectionEntry{
			ShiftKey:    entry.ShiftKey,
			Date:        entry.Date,
			ShiftName:   entry.ShiftName,
			SelectedIDs: selected,
			TotalSlots:  entry.TotalSlots,
		}
	}

	s.months[monthKey] = &MonthState{
		ShiftFilters: append([]string(nil), s.shiftFilters...),
		Entries:      entries,
	}
}

// restoreMonth 恢复某个月份保存的状态
// 没有保存过的月份一律重置为空白，而不是沿用上一个月份的状态
func (s *Store) restoreMonth(monthKey string) {
	state, exists := s.months[monthKey]
	if !exists {
		s.entries = make(map[domain.ShiftKey]*SelectionEntry)
		s.shiftFilters = nil
		return
	}

	s.shiftFilters = append([]string(nil), state.ShiftFilters...)
	s.entries = make(map[domain.ShiftKey]*SelectionEntry, len(state.Entries))
	for key, entry := range state.Entries {
		selected := make(map[int64]bool, len(entry.SelectedIDs))
		for id := range entry.SelectedIDs {
			selected[id] = true
		}
		s.entries[key] = &SelectionEntry{
			ShiftKey:    entry.ShiftKey,
			Date:        entry.Date,
			ShiftName:   entry.ShiftName,
			SelectedIDs: selected,
			TotalSlots:  entry.TotalSlots,
		}
	}
}

// mergedEntries 合并所有已保存月份和当前月份的选择条目
// 当前月份和已保存副本出现同一个 ShiftKey 时以当前月份为准
func (s *Store) mergedEntries() map[domain.ShiftKey]*SelectionEntry {
	merged := make(map[domain.ShiftKey]*SelectionEntry)

	for monthKey, state := range s.months {
		if monthKey == s.activeMonth {
			continue
		}
		for key, entry := range state.Entries {
			merged[key] = entry
		}
	}
	for key, entry := range s.entries {
		merged[key] = entry
	}

	return merged
}

// TotalSelected 统计所有月份（含当前月份）被选中的槽位总数
// 任何跨月份的动作都必须使用这个数字，而不是只看当前月份
func (s *Store) TotalSelected() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, entry := range s.mergedEntries() {
		total += len(entry.SelectedIDs)
	}
	return total
}

// SelectedSlotIDs 返回跨月份合并后的全部被选槽位 id，升序排列
func (s *Store) SelectedSlotIDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.selectedSlotIDs()
}

func (s *Store) selectedSlotIDs() []int64 {
	idSet := make(map[int64]bool)
	for _, entry := range s.mergedEntries() {
		for id := range entry.SelectedIDs {
			idSet[id] = true
		}
	}

	ids := make([]int64, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

// SelectedSlots 从快照中取出全部被选槽位的数据
// 快照缺失的槽位会被跳过并记入 missing 计数，由调用方决定是否告警
func (s *Store) SelectedSlots() (slots []*domain.Slot, missing int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.selectedSlotsLocked()
}

// Entries 返回当前月份的选择条目，按 ShiftKey 排序
func (s *Store) Entries() []*SelectionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]*SelectionEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ShiftKey < entries[j].ShiftKey })

	return entries
}

// BeginConflictCheck 发起一次冲突检测
// 返回本次检测的关联令牌和候选时间段列表
// 时间不可解析或快照缺失的槽位会被剔除出检测载荷，剔除数量通过 excluded 返回
func (s *Store) BeginConflictCheck() (token string, intervals []domain.CandidateInterval, excluded int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	slots, missing := s.selectedSlotsLocked()
	excluded = missing

	if len(slots) == 0 && missing == 0 {
		return "", nil, 0, errors.New("尚未选择任何槽位")
	}

	idSet := make(map[int64]bool)
	for _, slot := range slots {
		if err := utils.ValidateInterval(slot.StartTime, slot.EndTime); err != nil {
			excluded++
			continue
		}

		idSet[slot.ID] = true
		intervals = append(intervals, domain.CandidateInterval{
			SlotID:      slot.ID,
			Date:        slot.Date,
			ShiftName:   slot.ShiftName,
			StartTime:   slot.StartTime,
			EndTime:     slot.EndTime,
			RoomName:    slot.RoomName,
			SubRoomName: slot.SubRoomName,
		})
	}

	if len(intervals) == 0 {
		return "", nil, excluded, errors.New("所选槽位的时间数据均不可用，无法进行冲突检测")
	}

	token = uuid.NewString()
	s.checkToken = token
	s.checkSlotIDs = idSet

	return token, intervals, excluded, nil
}

func (s *Store) selectedSlotsLocked() (slots []*domain.Slot, missing int) {
	for _, entry := range s.mergedEntries() {
		snapshot, exists := s.snapshots[entry.ShiftKey]
		if !exists {
			missing += len(entry.SelectedIDs)
			continue
		}

		slotByID := make(map[int64]*domain.Slot, len(snapshot.Slots))
		for _, slot := range snapshot.Slots {
			slotByID[slot.ID] = slot
		}

		for id := range entry.SelectedIDs {
			slot, exists := slotByID[id]
			if !exists {
				missing++
				continue
			}
			slots = append(slots, slot)
		}
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].ID < slots[j].ID })

	return slots, missing
}

// CheckStillCurrent 判断一次冲突检测的结果是否仍然有效
// 令牌必须是最近一次发起的，并且当前的被选槽位集合和发起时完全一致，
// 否则结果已经过期，应当被丢弃
func (s *Store) CheckStillCurrent(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == "" || token != s.checkToken {
		return false
	}

	current := s.selectedSlotIDs()
	if len(current) != len(s.checkSlotIDs) {
		return false
	}
	for _, id := range current {
		if !s.checkSlotIDs[id] {
			return false
		}
	}

	return true
}

// SetBusy 标记整月批量选择正在进行
// 批量拉取期间的并发勾选会相互干扰，调用方应根据这个标记阻止新的操作
func (s *Store) SetBusy(busy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.busy = busy
}

func (s *Store) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Clear 在指派成功后清空全部选择
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.entries = make(map[domain.ShiftKey]*SelectionEntry)
	s.months = make(map[string]*MonthState)
	s.checkToken = ""
	s.checkSlotIDs = nil
}

func (s *Store) touch() {
	s.lastTouch = time.Now()
}

func (s *Store) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTouch
}
