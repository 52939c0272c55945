package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/dencare-dev/staff-roster/backend/internal/domain"
)

const slotSelectColumns = `
	sl.id,
	to_char(sl.date, 'YYYY-MM-DD'),
	sl.shift_name,
	to_char(sl.start_time, 'HH24:MI:SS'),
	to_char(sl.end_time, 'HH24:MI:SS'),
	rm.id,
	rm.name,
	sub.id,
	sub.name,
	sa.role,
	st.id,
	st.full_name
`

// scanSlotRows 把槽位和其分配记录的联查结果组装成槽位列表
// 同一个槽位会因为多条分配记录出现多行，需要按 id 聚合
func scanSlotRows(rows *sql.Rows) ([]*domain.Slot, error) {
	slotsMap := make(map[int64]*domain.Slot)
	slotOrder := make([]int64, 0)

	for rows.Next() {
		var row struct {
			ID          int64
			Date        string
			ShiftName   string
			StartTime   string
			EndTime     string
			RoomID      int64
			RoomName    string
			SubRoomID   sql.NullInt64
			SubRoomName sql.NullString
			Role        sql.NullString
			StaffID     sql.NullInt64
			StaffName   sql.NullString
		}

		dst := []any{
			&row.ID, &row.Date, &row.ShiftName, &row.StartTime, &row.EndTime,
			&row.RoomID, &row.RoomName, &row.SubRoomID, &row.SubRoomName,
			&row.Role, &row.StaffID, &row.StaffName,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		slot, exists := slotsMap[row.ID]
		if !exists {
			slot = &domain.Slot{
				ID:        row.ID,
				Date:      row.Date,
				ShiftName: row.ShiftName,
				StartTime: row.StartTime,
				EndTime:   row.EndTime,
				RoomID:    row.RoomID,
				RoomName:  row.RoomName,
				Dentists:  make([]domain.AssignedStaff, 0),
				Nurses:    make([]domain.AssignedStaff, 0),
			}
			if row.SubRoomID.Valid {
				subRoomID := row.SubRoomID.Int64
				slot.SubRoomID = &subRoomID
				slot.SubRoomName = row.SubRoomName.String
			}
			slotsMap[row.ID] = slot
			slotOrder = append(slotOrder, row.ID)
		}

		// 分配记录为空表示这个槽位还没有排人
		if !row.Role.Valid || !row.StaffID.Valid {
			continue
		}

		assigned := domain.AssignedStaff{
			ID:       row.StaffID.Int64,
			FullName: row.StaffName.String,
		}
		switch domain.Role(row.Role.String) {
		case domain.RoleDentist:
			slot.Dentists = append(slot.Dentists, assigned)
		case domain.RoleNurse:
			slot.Nurses = append(slot.Nurses, assigned)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	slots := make([]*domain.Slot, 0, len(slotOrder))
	for _, id := range slotOrder {
		slots = append(slots, slotsMap[id])
	}

	return slots, nil
}

// GetSlotsForShiftByRoom 获取某个诊室在某一天某个班次的全部槽位（含已排员工）
func (r *Repository) GetSlotsForShiftByRoom(roomID int64, date string, shiftName string) ([]*domain.Slot, error) {
	query := `
		SELECT ` + slotSelectColumns + `
		FROM slots sl
		JOIN rooms rm ON sl.room_id = rm.id
		LEFT JOIN sub_rooms sub ON sl.sub_room_id = sub.id
		LEFT JOIN slot_assignments sa ON sl.id = sa.slot_id
		LEFT JOIN staff st ON sa.staff_id = st.id
		WHERE sl.room_id = $1 AND sl.date = $2 AND sl.shift_name = $3
		ORDER BY sl.id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, roomID, date, shiftName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSlotRows(rows)
}

// GetSlotsForShiftByStaff 获取某名员工在某一天某个班次里被排到的全部槽位
func (r *Repository) GetSlotsForShiftByStaff(staffID int64, date string, shiftName string) ([]*domain.Slot, error) {
	query := `
		SELECT ` + slotSelectColumns + `
		FROM slots sl
		JOIN rooms rm ON sl.room_id = rm.id
		LEFT JOIN sub_rooms sub ON sl.sub_room_id = sub.id
		LEFT JOIN slot_assignments sa ON sl.id = sa.slot_id
		LEFT JOIN staff st ON sa.staff_id = st.id
		WHERE sl.date = $2 AND sl.shift_name = $3
			AND sl.id IN (SELECT slot_id FROM slot_assignments WHERE staff_id = $1)
		ORDER BY sl.id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, staffID, date, shiftName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSlotRows(rows)
}

// GetSlotsByIDs 按 id 批量获取槽位，确认指派前服务端会用数据库数据复核一遍
func (r *Repository) GetSlotsByIDs(slotIDs []int64) ([]*domain.Slot, error) {
	if len(slotIDs) == 0 {
		return []*domain.Slot{}, nil
	}

	query := `
		SELECT ` + slotSelectColumns + `
		FROM slots sl
		JOIN rooms rm ON sl.room_id = rm.id
		LEFT JOIN sub_rooms sub ON sl.sub_room_id = sub.id
		LEFT JOIN slot_assignments sa ON sl.id = sa.slot_id
		LEFT JOIN staff st ON sa.staff_id = st.id
		WHERE sl.id IN (` + buildInPlaceholders(1, len(slotIDs)) + `)
		ORDER BY sl.id
	`

	args := make([]any, 0, len(slotIDs))
	for _, id := range slotIDs {
		args = append(args, id)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSlotRows(rows)
}
