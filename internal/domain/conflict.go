package domain

// ConflictSourceExisting 表示冲突来源于员工已有的排班
const ConflictSourceExisting = "existing_schedule"

// CandidateInterval 是一次冲突检测中待排班的时间段
type CandidateInterval struct {
	SlotID      int64  `json:"slotID"`
	Date        string `json:"date"`
	ShiftName   string `json:"shiftName"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	RoomName    string `json:"roomName"`
	SubRoomName string `json:"subRoomName"`
}

// Commitment 是员工已有的一条排班记录，Role 为当时占用的角色
type Commitment struct {
	SlotID      int64  `json:"slotID"`
	Date        string `json:"date"`
	ShiftName   string `json:"shiftName"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	RoomName    string `json:"roomName"`
	SubRoomName string `json:"subRoomName"`
	Role        Role   `json:"role"`
}

// Conflict 表示候选时间段和已有排班的一次重叠
// 冲突只在每次检测请求中临时推导，从不落库
type Conflict struct {
	Date        string `json:"date"`
	ShiftName   string `json:"shiftName"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	RoomName    string `json:"roomName"`
	SubRoomName string `json:"subRoomName"`
	Role        Role   `json:"role"` // 员工在冲突时间已经在担任的角色
	Source      string `json:"source"`
}

// ConflictSummary 是把同组冲突合并后的一个连续时间段
type ConflictSummary struct {
	Date        string   `json:"date"`
	RoomName    string   `json:"roomName"`
	SubRoomName string   `json:"subRoomName"`
	Source      string   `json:"source"`
	StartMinute int      `json:"startMinute"` // 从零点起算的分钟数
	EndMinute   int      `json:"endMinute"`
	ShiftNames  []string `json:"shiftNames"`
	Count       int      `json:"count"` // 被合并的原始冲突数量
}

// AssignmentStats 是冲突检测时顺带返回的员工排班统计
type AssignmentStats struct {
	AssignedSlotCount int `json:"assignedSlotCount"`
	WorkMinutes       int `json:"workMinutes"`
}

// ConflictCheckResult 是一次批量冲突检测的完整结果
// Token 用于请求和响应的关联：选择在请求飞行期间发生变化时，
// 消费方依据 Token 丢弃已经过期的结果
type ConflictCheckResult struct {
	Token                 string                      `json:"token"`
	ConflictingDentistIDs []int64                     `json:"conflictingDentistIDs"`
	ConflictingNurseIDs   []int64                     `json:"conflictingNurseIDs"`
	ConflictsByStaffID    map[int64][]Conflict        `json:"conflictsByStaffID"`
	SummariesByStaffID    map[int64][]ConflictSummary `json:"summariesByStaffID"`
	StatsByStaffID        map[int64]AssignmentStats   `json:"statsByStaffID"`
}
