package db

import (
	"context"
	"database/sql"
)

type ScheduleItem struct {
	ID           int64
	GroupCode    string
	Period       string
	SourceUrl    string
	Day          string
	LessonNumber sql.NullInt64
	Time         string
	Subject      string
	SubjectUrl   string
	Teacher      string
	TeacherUrl   string
	Room         string
	RoomUrl      string
	Subgroup     string
	ParsedAt     string
	DataHash     string
}

const getLatestDataHash = `-- name: GetLatestDataHash :one
select data_hash from schedule_items
where group_code = ?
order by parsed_at desc
limit 1
`

func (q *Queries) GetLatestDataHash(ctx context.Context, groupCode string) (string, error) {
	row := q.db.QueryRowContext(ctx, getLatestDataHash, groupCode)
	var data_hash string
	err := row.Scan(&data_hash)
	return data_hash, err
}

const deleteGroupItems = `-- name: DeleteGroupItems :exec
delete from schedule_items
where group_code = ?
`

func (q *Queries) DeleteGroupItems(ctx context.Context, groupCode string) error {
	_, err := q.db.ExecContext(ctx, deleteGroupItems, groupCode)
	return err
}

const createScheduleItem = `-- name: CreateScheduleItem :exec
insert into schedule_items (
    group_code, period, source_url, day, lesson_number, time,
    subject, subject_url, teacher, teacher_url, room, room_url,
    subgroup, parsed_at, data_hash
) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateScheduleItemParams struct {
	GroupCode    string
	Period       string
	SourceUrl    string
	Day          string
	LessonNumber sql.NullInt64
	Time         string
	Subject      string
	SubjectUrl   string
	Teacher      string
	TeacherUrl   string
	Room         string
	RoomUrl      string
	Subgroup     string
	ParsedAt     string
	DataHash     string
}

func (q *Queries) CreateScheduleItem(ctx context.Context, arg CreateScheduleItemParams) error {
	_, err := q.db.ExecContext(ctx, createScheduleItem,
		arg.GroupCode,
		arg.Period,
		arg.SourceUrl,
		arg.Day,
		arg.LessonNumber,
		arg.Time,
		arg.Subject,
		arg.SubjectUrl,
		arg.Teacher,
		arg.TeacherUrl,
		arg.Room,
		arg.RoomUrl,
		arg.Subgroup,
		arg.ParsedAt,
		arg.DataHash,
	)
	return err
}

const listGroupItems = `-- name: ListGroupItems :many
select id, group_code, period, source_url, day, lesson_number, time,
    subject, subject_url, teacher, teacher_url, room, room_url,
    subgroup, parsed_at, data_hash
from schedule_items
where group_code = ?
order by id
`

func (q *Queries) ListGroupItems(ctx context.Context, groupCode string) ([]ScheduleItem, error) {
	rows, err := q.db.QueryContext(ctx, listGroupItems, groupCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ScheduleItem
	for rows.Next() {
		var i ScheduleItem
		if err := rows.Scan(
			&i.ID,
			&i.GroupCode,
			&i.Period,
			&i.SourceUrl,
			&i.Day,
			&i.LessonNumber,
			&i.Time,
			&i.Subject,
			&i.SubjectUrl,
			&i.Teacher,
			&i.TeacherUrl,
			&i.Room,
			&i.RoomUrl,
			&i.Subgroup,
			&i.ParsedAt,
			&i.DataHash,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
