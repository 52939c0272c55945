package identity

import (
	"strings"

	"github.com/dencare-dev/staff-roster/backend/internal/domain"
	"github.com/mozillazg/go-pinyin"
)

// PlaceholderName 是所有候选姓名字段都为空时使用的占位展示名
const PlaceholderName = "未设置姓名"

// Resolve 把一条原始员工记录归一化成可用于排班的身份
// 缺失的字段一律降级为空值或占位符，不会报错
func Resolve(staff *domain.Staff) *domain.StaffIdentity {
	return &domain.StaffIdentity{
		ID:           staff.ID,
		DisplayName:  resolveDisplayName(staff),
		EmployeeCode: staff.EmployeeCode,
		Roles:        resolveRoles(staff),
		SearchKey:    buildSearchKey(staff),
	}
}

// ResolveAll 对整个员工列表做归一化
func ResolveAll(staffList []*domain.Staff) []*domain.StaffIdentity {
	identities := make([]*domain.StaffIdentity, 0, len(staffList))
	for _, staff := range staffList {
		identities = append(identities, Resolve(staff))
	}
	return identities
}

// resolveRoles 把角色归一化到 {dentist, nurse} 集合
// 新数据使用 Roles 集合，历史数据只有 LegacyRole 单角色字段
// 历史取值 doctor 统一映射到 dentist
func resolveRoles(staff *domain.Staff) []domain.Role {
	var rawRoles []string
	if len(staff.Roles) > 0 {
		for _, role := range staff.Roles {
			rawRoles = append(rawRoles, string(role))
		}
	} else if staff.LegacyRole != "" {
		rawRoles = append(rawRoles, staff.LegacyRole)
	}

	roles := make([]domain.Role, 0, len(rawRoles))
	seen := make(map[domain.Role]bool)

	for _, raw := range rawRoles {
		var role domain.Role
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case string(domain.RoleDentist), domain.LegacyRoleDoctor:
			role = domain.RoleDentist
		case string(domain.RoleNurse):
			role = domain.RoleNurse
		default:
			// 不可排班的角色直接丢弃
			continue
		}

		if !seen[role] {
			seen[role] = true
			roles = append(roles, role)
		}
	}

	return roles
}

// resolveDisplayName 按优先级选出第一个非空的姓名候选
func resolveDisplayName(staff *domain.Staff) string {
	if name := strings.TrimSpace(staff.FullName); name != "" {
		return name
	}

	composed := strings.TrimSpace(strings.TrimSpace(staff.LastName) + " " + strings.TrimSpace(staff.FirstName))
	if composed != "" {
		return composed
	}

	if username := strings.TrimSpace(staff.Username); username != "" {
		return username
	}

	if email := strings.TrimSpace(staff.Email); email != "" {
		return email
	}

	return PlaceholderName
}

// buildSearchKey 拼接用于子串搜索的关键字串
// 中文姓名额外拼上拼音，方便用字母搜索
func buildSearchKey(staff *domain.Staff) string {
	parts := []string{
		resolveDisplayName(staff),
		staff.EmployeeCode,
		staff.Email,
		staff.Phone,
	}

	pinyinParts := pinyin.LazyConvert(resolveDisplayName(staff), nil)
	parts = append(parts, strings.Join(pinyinParts, ""))

	for _, role := range resolveRoles(staff) {
		parts = append(parts, string(role))
	}

	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			keywords = append(keywords, part)
		}
	}

	return strings.Join(keywords, " ")
}

// MatchKeyword 判断身份是否命中搜索关键字，空关键字命中所有人
func MatchKeyword(si *domain.StaffIdentity, keyword string) bool {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return true
	}
	return strings.Contains(si.SearchKey, keyword)
}
