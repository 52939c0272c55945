package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/dencare-dev/staff-roster/backend/internal/domain"
)

func (r *Repository) GetRoomByID(id int64) (*domain.Room, error) {
	query := `
		SELECT
			rm.name,
			rm.max_dentists,
			rm.max_nurses,
			rm.version,
			sub.id,
			sub.name
		FROM rooms rm
		LEFT JOIN sub_rooms sub ON rm.id = sub.room_id
		WHERE rm.id = $1
		ORDER BY sub.id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var room *domain.Room

	for rows.Next() {
		if room == nil {
			room = &domain.Room{ID: id, SubRooms: make([]domain.SubRoom, 0)}
		}

		var subRoomID sql.NullInt64
		var subRoomName sql.NullString

		dst := []any{&room.Name, &room.MaxDentists, &room.MaxNurses, &room.Version, &subRoomID, &subRoomName}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		// 子诊室为空表示这个诊室没有划分子诊室
		if subRoomID.Valid {
			room.SubRooms = append(room.SubRooms, domain.SubRoom{
				ID:   subRoomID.Int64,
				Name: subRoomName.String,
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if room == nil {
		return nil, sql.ErrNoRows
	}

	return room, nil
}

func (r *Repository) GetAllRooms() ([]*domain.Room, error) {
	query := `
		SELECT
			rm.id,
			rm.name,
			rm.max_dentists,
			rm.max_nurses,
			rm.version,
			sub.id,
			sub.name
		FROM rooms rm
		LEFT JOIN sub_rooms sub ON rm.id = sub.room_id
		ORDER BY rm.id, sub.id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roomsMap := make(map[int64]*domain.Room)
	roomOrder := make([]int64, 0)

	for rows.Next() {
		var row struct {
			ID          int64
			Name        string
			MaxDentists int32
			MaxNurses   int32
			Version     int32
			SubRoomID   sql.NullInt64
			SubRoomName sql.NullString
		}

		dst := []any{&row.ID, &row.Name, &row.MaxDentists, &row.MaxNurses, &row.Version, &row.SubRoomID, &row.SubRoomName}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		room, exists := roomsMap[row.ID]
		if !exists {
			room = &domain.Room{
				ID:          row.ID,
				Name:        row.Name,
				MaxDentists: row.MaxDentists,
				MaxNurses:   row.MaxNurses,
				Version:     row.Version,
				SubRooms:    make([]domain.SubRoom, 0),
			}
			roomsMap[row.ID] = room
			roomOrder = append(roomOrder, row.ID)
		}

		if row.SubRoomID.Valid {
			room.SubRooms = append(room.SubRooms, domain.SubRoom{
				ID:   row.SubRoomID.Int64,
				Name: row.SubRoomName.String,
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	rooms := make([]*domain.Room, 0, len(roomOrder))
	for _, id := range roomOrder {
		rooms = append(rooms, roomsMap[id])
	}

	return rooms, nil
}
