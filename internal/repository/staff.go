package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dencare-dev/staff-roster/backend/internal/domain"
)

func (r *Repository) GetStaffByID(id int64) (*domain.Staff, error) {
	query := `
		SELECT
			s.username,
			s.password_hash,
			s.full_name,
			s.first_name,
			s.last_name,
			s.email,
			s.phone,
			s.employee_code,
			s.legacy_role,
			s.is_admin,
			s.is_active,
			s.created_at,
			s.version,
			sr.role
		FROM staff s
		LEFT JOIN staff_roles sr ON s.id = sr.staff_id
		WHERE s.id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var staff *domain.Staff

	for rows.Next() {
		if staff == nil {
			staff = &domain.Staff{ID: id, Roles: make([]domain.Role, 0)}
		}

		var role sql.NullString
		dst := []any{
			&staff.Username, &staff.PasswordHash, &staff.FullName, &staff.FirstName, &staff.LastName,
			&staff.Email, &staff.Phone, &staff.EmployeeCode, &staff.LegacyRole,
			&staff.IsAdmin, &staff.IsActive, &staff.CreatedAt, &staff.Version, &role,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if role.Valid {
			staff.Roles = append(staff.Roles, domain.Role(role.String))
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if staff == nil {
		return nil, sql.ErrNoRows
	}

	return staff, nil
}

func (r *Repository) GetStaffByUsername(username string) (*domain.Staff, error) {
	query := `
		SELECT id FROM staff WHERE username = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var id int64
	if err := r.dbpool.QueryRowContext(ctx, query, username).Scan(&id); err != nil {
		return nil, err
	}

	return r.GetStaffByID(id)
}

func (r *Repository) GetAllStaff() ([]*domain.Staff, error) {
	query := `
		SELECT
			s.id,
			s.username,
			s.full_name,
			s.first_name,
			s.last_name,
			s.email,
			s.phone,
			s.employee_code,
			s.legacy_role,
			s.is_admin,
			s.is_active,
			s.created_at,
			s.version,
			sr.role
		FROM staff s
		LEFT JOIN staff_roles sr ON s.id = sr.staff_id
		ORDER BY s.id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	staffMap := make(map[int64]*domain.Staff)
	staffOrder := make([]int64, 0)

	for rows.Next() {
		var row struct {
			ID           int64
			Username     string
			FullName     string
			FirstName    string
			LastName     string
			Email        string
			Phone        string
			EmployeeCode string
			LegacyRole   string
			IsAdmin      bool
			IsActive     bool
			CreatedAt    time.Time
			Version      int32
			Role         sql.NullString
		}

		dst := []any{
			&row.ID, &row.Username, &row.FullName, &row.FirstName, &row.LastName,
			&row.Email, &row.Phone, &row.EmployeeCode, &row.LegacyRole,
			&row.IsAdmin, &row.IsActive, &row.CreatedAt, &row.Version, &row.Role,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		staff, exists := staffMap[row.ID]
		if !exists {
			// 第一次查到这个员工，需要在 map 中初始化
			staff = &domain.Staff{
				ID:           row.ID,
				Username:     row.Username,
				FullName:     row.FullName,
				FirstName:    row.FirstName,
				LastName:     row.LastName,
				Email:        row.Email,
				Phone:        row.Phone,
				EmployeeCode: row.EmployeeCode,
				LegacyRole:   row.LegacyRole,
				IsAdmin:      row.IsAdmin,
				IsActive:     row.IsActive,
				CreatedAt:    row.CreatedAt,
				Version:      row.Version,
				Roles:        make([]domain.Role, 0),
			}
			staffMap[row.ID] = staff
			staffOrder = append(staffOrder, row.ID)
		}

		if row.Role.Valid {
			staff.Roles = append(staff.Roles, domain.Role(row.Role.String))
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	staffList := make([]*domain.Staff, 0, len(staffOrder))
	for _, id := range staffOrder {
		staffList = append(staffList, staffMap[id])
	}

	return staffList, nil
}

func (r *Repository) CreateStaff(staff *domain.Staff) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO staff (username, password_hash, full_name, first_name, last_name, email, phone, employee_code, legacy_role, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, is_active, created_at, version
	`

	args := []any{
		staff.Username, staff.PasswordHash, staff.FullName, staff.FirstName, staff.LastName,
		staff.Email, staff.Phone, staff.EmployeeCode, staff.LegacyRole, staff.IsAdmin,
	}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&staff.ID, &staff.IsActive, &staff.CreatedAt, &staff.Version); err != nil {
		return err
	}

	for _, role := range staff.Roles {
		if _, err := tx.ExecContext(ctx, `INSERT INTO staff_roles (staff_id, role) VALUES ($1, $2)`, staff.ID, role); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) UpdateStaff(staff *domain.Staff) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE staff
		SET
			password_hash = $1,
			full_name = $2,
			email = $3,
			phone = $4,
			employee_code = $5,
			is_active = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING username, created_at, version
	`

	args := []any{
		staff.PasswordHash, staff.FullName, staff.Email, staff.Phone,
		staff.EmployeeCode, staff.IsActive, staff.ID, staff.Version,
	}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&staff.Username, &staff.CreatedAt, &staff.Version); err != nil {
		return err
	}

	// 角色集合整体重写
	if _, err := tx.ExecContext(ctx, `DELETE FROM staff_roles WHERE staff_id = $1`, staff.ID); err != nil {
		return err
	}
	for _, role := range staff.Roles {
		if _, err := tx.ExecContext(ctx, `INSERT INTO staff_roles (staff_id, role) VALUES ($1, $2)`, staff.ID, role); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// buildInPlaceholders 生成 IN 子句所需的 $n 占位符，start 是第一个参数的序号
func buildInPlaceholders(start int, count int) string {
	placeholders := make([]string, count)
	for i := 0; i < count; i++ {
		placeholders[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(placeholders, ", ")
}
