package identity

import (
	"testing"

	"github.com/dencare-dev/staff-roster/backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestResolveRoles(t *testing.T) {
	t.Run("优先使用新的角色集合", func(t *testing.T) {
		si := Resolve(&domain.Staff{
			Username:   "zhangwei",
			Roles:      []domain.Role{domain.RoleNurse},
			LegacyRole: "doctor",
		})

		assert.Equal(t, []domain.Role{domain.RoleNurse}, si.Roles)
	})

	t.Run("历史角色 doctor 映射到 dentist", func(t *testing.T) {
		si := Resolve(&domain.Staff{Username: "zhangwei", LegacyRole: "doctor"})

		assert.Equal(t, []domain.Role{domain.RoleDentist}, si.Roles)
	})

	t.Run("大小写和空白被归一化", func(t *testing.T) {
		si := Resolve(&domain.Staff{
			Username: "zhangwei",
			Roles:    []domain.Role{" Dentist ", "NURSE"},
		})

		assert.Equal(t, []domain.Role{domain.RoleDentist, domain.RoleNurse}, si.Roles)
	})

	t.Run("重复和不可排班的角色被丢弃", func(t *testing.T) {
		si := Resolve(&domain.Staff{
			Username: "zhangwei",
			Roles:    []domain.Role{"dentist", "doctor", "前台", "dentist"},
		})

		assert.Equal(t, []domain.Role{domain.RoleDentist}, si.Roles)
	})

	t.Run("没有任何角色时返回空集合", func(t *testing.T) {
		si := Resolve(&domain.Staff{Username: "zhangwei"})

		assert.Empty(t, si.Roles)
	})
}

func TestResolveDisplayName(t *testing.T) {
	tests := []struct {
		name  string
		staff domain.Staff
		want  string
	}{
		{"优先使用全名", domain.Staff{FullName: "张伟", LastName: "张", FirstName: "伟", Username: "zhangwei"}, "张伟"},
		{"其次拼接姓和名", domain.Staff{LastName: "张", FirstName: "伟", Username: "zhangwei"}, "张 伟"},
		{"只有姓也可以", domain.Staff{LastName: "张"}, "张"},
		{"再退回用户名", domain.Staff{Username: "zhangwei", Email: "zw@dencare.test"}, "zhangwei"},
		{"最后退回邮箱", domain.Staff{Email: "zw@dencare.test"}, "zw@dencare.test"},
		{"全部为空时使用占位符", domain.Staff{}, PlaceholderName},
		{"空白字符视为空", domain.Staff{FullName: "  ", Username: "zhangwei"}, "zhangwei"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			si := Resolve(&tt.staff)
			assert.Equal(t, tt.want, si.DisplayName)
		})
	}
}

func TestMatchKeyword(t *testing.T) {
	si := Resolve(&domain.Staff{
		FullName:     "张伟",
		EmployeeCode: "DC001",
		Email:        "zhangwei@dencare.test",
		Phone:        "13800000000",
		Roles:        []domain.Role{domain.RoleDentist},
	})

	// 中文姓名可以用拼音搜索
	assert.True(t, MatchKeyword(si, "zhangwei"))
	assert.True(t, MatchKeyword(si, "张伟"))
	assert.True(t, MatchKeyword(si, "dc001"))
	assert.True(t, MatchKeyword(si, "13800000000"))
	assert.True(t, MatchKeyword(si, "dentist"))
	// 关键字大小写和首尾空白不敏感
	assert.True(t, MatchKeyword(si, " DC001 "))
	// 空关键字命中所有人
	assert.True(t, MatchKeyword(si, ""))

	assert.False(t, MatchKeyword(si, "李娜"))
	assert.False(t, MatchKeyword(si, "nurse"))
}
