package repository

import (
	"context"
	"time"

	"github.com/dencare-dev/staff-roster/backend/internal/domain"
)

// GetCommitmentsByStaff 批量获取一批员工在日期区间内的已有排班
// 冲突检测是对所有候选员工的一次批量调用，绝不能按员工逐个查询，
// 候选名单可能有几百人
func (r *Repository) GetCommitmentsByStaff(staffIDs []int64, startDate string, endDate string) (map[int64][]domain.Commitment, error) {
	commitments := make(map[int64][]domain.Commitment, len(staffIDs))
	for _, id := range staffIDs {
		commitments[id] = []domain.Commitment{}
	}

	if len(staffIDs) == 0 {
		return commitments, nil
	}

	query := `
		SELECT
			sa.staff_id,
			sl.id,
			to_char(sl.date, 'YYYY-MM-DD'),
			sl.shift_name,
			to_char(sl.start_time, 'HH24:MI:SS'),
			to_char(sl.end_time, 'HH24:MI:SS'),
			rm.name,
			COALESCE(sub.name, ''),
			sa.role
		FROM slot_assignments sa
		JOIN slots sl ON sa.slot_id = sl.id
		JOIN rooms rm ON sl.room_id = rm.id
		LEFT JOIN sub_rooms sub ON sl.sub_room_id = sub.id
		WHERE sl.date BETWEEN $1 AND $2
			AND sa.staff_id IN (` + buildInPlaceholders(3, len(staffIDs)) + `)
		ORDER BY sa.staff_id, sl.date, sl.start_time
	`

	args := []any{startDate, endDate}
	for _, id := range staffIDs {
		args = append(args, id)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var staffID int64
		var com domain.Commitment

		dst := []any{
			&staffID, &com.SlotID, &com.Date, &com.ShiftName,
			&com.StartTime, &com.EndTime, &com.RoomName, &com.SubRoomName, &com.Role,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		commitments[staffID] = append(commitments[staffID], com)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return commitments, nil
}
