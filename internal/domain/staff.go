package domain

import (
	"time"
)

type Role string

const (
	RoleDentist Role = "dentist"
	RoleNurse   Role = "nurse"
)

// LegacyRoleDoctor 是历史数据中遗留的单角色字段取值，统一映射到 dentist
const LegacyRoleDoctor = "doctor"

// Staff 是数据库中的原始员工记录
// 注意历史数据只有 LegacyRole 单角色字段，新数据使用 Roles 集合
type Staff struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	EmployeeCode string    `json:"employeeCode"`
	LegacyRole   string    `json:"legacyRole,omitempty"`
	Roles        []Role    `json:"roles"`
	IsAdmin      bool      `json:"isAdmin"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}

// StaffIdentity 是从原始员工记录归一化得到的展示身份
// 每次拉取员工列表时重新生成，不会回写到原始记录
type StaffIdentity struct {
	ID           int64  `json:"id"`
	DisplayName  string `json:"displayName"`
	EmployeeCode string `json:"employeeCode"`
	Roles        []Role `json:"roles"`
	SearchKey    string `json:"searchKey"`
}

// HasRole 判断归一化后的身份是否具有某个可排班角色
func (si *StaffIdentity) HasRole(role Role) bool {
	for _, r := range si.Roles {
		if r == role {
			return true
		}
	}
	return false
}
