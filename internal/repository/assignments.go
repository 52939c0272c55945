package repository

import (
	"context"
	"time"

	"github.com/dencare-dev/staff-roster/backend/internal/domain"
)

// AssignStaff 把给定的牙医和护士绑定到每一个槽位上
// 已经存在的绑定不会重复插入，返回实际修改的行数
func (r *Repository) AssignStaff(slotIDs []int64, dentistIDs []int64, nurseIDs []int64) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO slot_assignments (slot_id, staff_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (slot_id, staff_id, role) DO NOTHING
	`

	var modified int64

	for _, slotID := range slotIDs {
		for _, dentistID := range dentistIDs {
			result, err := tx.ExecContext(ctx, query, slotID, dentistID, domain.RoleDentist)
			if err != nil {
				return 0, err
			}
			affected, err := result.RowsAffected()
			if err != nil {
				return 0, err
			}
			modified += affected
		}

		for _, nurseID := range nurseIDs {
			result, err := tx.ExecContext(ctx, query, slotID, nurseID, domain.RoleNurse)
			if err != nil {
				return 0, err
			}
			affected, err := result.RowsAffected()
			if err != nil {
				return 0, err
			}
			modified += affected
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return modified, nil
}

// RemoveStaff 解除给定槽位上指定角色的全部绑定，返回实际修改的行数
func (r *Repository) RemoveStaff(slotIDs []int64, removeDentists bool, removeNurses bool) (int64, error) {
	if len(slotIDs) == 0 || (!removeDentists && !removeNurses) {
		return 0, nil
	}

	roles := make([]domain.Role, 0, 2)
	if removeDentists {
		roles = append(roles, domain.RoleDentist)
	}
	if removeNurses {
		roles = append(roles, domain.RoleNurse)
	}

	query := `
		DELETE FROM slot_assignments
		WHERE role IN (` + buildInPlaceholders(1, len(roles)) + `)
			AND slot_id IN (` + buildInPlaceholders(1+len(roles), len(slotIDs)) + `)
	`

	args := make([]any, 0, len(roles)+len(slotIDs))
	for _, role := range roles {
		args = append(args, role)
	}
	for _, id := range slotIDs {
		args = append(args, id)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// ReassignStaff 在给定槽位上把一名员工按指定角色替换为另一名员工
func (r *Repository) ReassignStaff(slotIDs []int64, oldStaffID int64, newStaffID int64, role domain.Role) (int64, error) {
	if len(slotIDs) == 0 {
		return 0, nil
	}

	query := `
		UPDATE slot_assignments
		SET staff_id = $1
		WHERE staff_id = $2 AND role = $3
			AND slot_id IN (` + buildInPlaceholders(4, len(slotIDs)) + `)
	`

	args := []any{newStaffID, oldStaffID, role}
	for _, id := range slotIDs {
		args = append(args, id)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// CreateSlot 创建一个槽位，目前只有数据填充工具在用
func (r *Repository) CreateSlot(slot *domain.Slot) error {
	query := `
		INSERT INTO slots (date, shift_name, start_time, end_time, room_id, sub_room_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{slot.Date, slot.ShiftName, slot.StartTime, slot.EndTime, slot.RoomID, slot.SubRoomID}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&slot.ID); err != nil {
		return err
	}

	return nil
}

// CreateRoom 创建一个诊室及其子诊室，目前只有数据填充工具在用
func (r *Repository) CreateRoom(room *domain.Room) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO rooms (name, max_dentists, max_nurses)
		VALUES ($1, $2, $3)
		RETURNING id, version
	`
	if err := tx.QueryRowContext(ctx, query, room.Name, room.MaxDentists, room.MaxNurses).Scan(&room.ID, &room.Version); err != nil {
		return err
	}

	for i := range room.SubRooms {
		subQuery := `
			INSERT INTO sub_rooms (room_id, name)
			VALUES ($1, $2)
			RETURNING id
		`
		if err := tx.QueryRowContext(ctx, subQuery, room.ID, room.SubRooms[i].Name).Scan(&room.SubRooms[i].ID); err != nil {
			return err
		}
	}

	return tx.Commit()
}
