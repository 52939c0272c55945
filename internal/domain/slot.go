package domain

import "strings"

// AssignedStaff 表示已经绑定到槽位上的一名员工
// 统一用切片表示零个或多个，避免源数据里对象或数组混用的形态
type AssignedStaff struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
}

// Slot 是某一天某个班次里一个具体的可预约单元
type Slot struct {
	ID          int64           `json:"id"`
	Date        string          `json:"date"` // 格式为 2006-01-02
	ShiftName   string          `json:"shiftName"`
	StartTime   string          `json:"startTime"` // 格式为 15:04:05
	EndTime     string          `json:"endTime"`
	RoomID      int64           `json:"roomID"`
	RoomName    string          `json:"roomName"`
	SubRoomID   *int64          `json:"subRoomID"`
	SubRoomName string          `json:"subRoomName"`
	Dentists    []AssignedStaff `json:"dentists"`
	Nurses      []AssignedStaff `json:"nurses"`
}

// FullyAssigned 判断槽位是否已经排上人
// 当前的业务规则是至少绑定了一名牙医或一名护士即视为已排满
func (s *Slot) FullyAssigned() bool {
	return len(s.Dentists) > 0 || len(s.Nurses) > 0
}

// ShiftKey 是 日期 + "-" + 班次名 组成的复合键，每天每个班次唯一
type ShiftKey string

const shiftKeyDateLen = len("2006-01-02")

func MakeShiftKey(date string, shiftName string) ShiftKey {
	return ShiftKey(date + "-" + shiftName)
}

// Date 返回键中的日期部分，键格式非法时返回空字符串
func (k ShiftKey) Date() string {
	if len(k) <= shiftKeyDateLen {
		return ""
	}
	return string(k)[:shiftKeyDateLen]
}

// ShiftName 返回键中的班次名部分，键格式非法时返回空字符串
func (k ShiftKey) ShiftName() string {
	if len(k) <= shiftKeyDateLen+1 {
		return ""
	}
	return string(k)[shiftKeyDateLen+1:]
}

// MonthKey 返回该键所属月份，格式为 2006-01
func (k ShiftKey) MonthKey() string {
	date := k.Date()
	if idx := strings.LastIndex(date, "-"); idx > 0 {
		return date[:idx]
	}
	return ""
}

// Room 表示一个诊室及其对各角色的容量限制
// 某个角色的容量为 0 是合法的，表示该诊室不使用这个角色
type Room struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	MaxDentists int32     `json:"maxDentists"`
	MaxNurses   int32     `json:"maxNurses"`
	SubRooms    []SubRoom `json:"subRooms"`
	Version     int32     `json:"-"`
}

type SubRoom struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
