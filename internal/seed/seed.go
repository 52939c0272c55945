package seed

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dencare-dev/staff-roster/backend/internal/domain"
	"github.com/dencare-dev/staff-roster/backend/internal/repository"
)

// 旧系统导出的花名册中的角色写法到系统内角色的映射
var roleHeaderMap = map[string]domain.Role{
	"牙医": domain.RoleDentist,
	"医生": domain.RoleDentist,
	"护士": domain.RoleNurse,
}

// SeedRealData 从旧系统导出的花名册 CSV 中导入员工
// CSV 的列：姓名、工号、用户名、邮箱、手机、角色（多个角色用 / 分隔）
func SeedRealData(r *repository.Repository) {
	file, err := os.Open("./internal/seed/data/roster.csv")
	if err != nil {
		slog.Error("打开文件失败", "error", err)
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		slog.Error("读取表头失败", "error", err)
		return
	}

	headerIndex := make(map[string]int)
	for i, header := range headers {
		headerIndex[strings.TrimSpace(header)] = i
	}
	for _, required := range []string{"姓名", "工号", "用户名", "邮箱", "角色"} {
		if _, ok := headerIndex[required]; !ok {
			slog.Error("花名册缺少必需的列", "column", required)
			return
		}
	}

	field := func(row []string, name string) string {
		idx, ok := headerIndex[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	// 逐行读取并插入员工
	inserted := 0
	for {
		row, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			slog.Error("读取文件失败", "error", err)
			return
		}

		username := field(row, "用户名")
		if username == "" {
			slog.Error("没有找到用户名", "row", row)
			continue
		}

		// 已经存在的员工跳过，保证导入可以重复执行
		if _, err := r.GetStaffByUsername(username); err == nil {
			continue
		} else if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("获取员工失败", "error", err)
			continue
		}

		roles := make([]domain.Role, 0)
		for _, label := range strings.Split(field(row, "角色"), "/") {
			role, ok := roleHeaderMap[strings.TrimSpace(label)]
			if !ok {
				continue
			}
			roles = append(roles, role)
		}
		if len(roles) == 0 {
			slog.Error("员工没有可识别的角色", "username", username)
			continue
		}

		staff := &domain.Staff{
			Username:     username,
			PasswordHash: "$2a$10$aUTaWl3vmXuQFocBkb9Qx.YJPAzNoaAcj2VC5tI45l1Roh24meCgO", // dencare@test8403
			FullName:     field(row, "姓名"),
			Email:        field(row, "邮箱"),
			Phone:        field(row, "手机"),
			EmployeeCode: field(row, "工号"),
			Roles:        roles,
			IsActive:     true,
		}

		if err := r.CreateStaff(staff); err != nil {
			slog.Error("插入员工失败", "error", err)
			continue
		}
		inserted++
	}

	slog.Info("插入数据完成", "count", inserted)
}
