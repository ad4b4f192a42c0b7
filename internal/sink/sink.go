package sink

import (
	"context"
	"time"

	"nhtk-schedule/internal/scrapers/nhtk"
)

// PARSED_AT_LAYOUT is fixed width and always UTC so that parsed_at sorts
// the same as text and as a timestamp.
const PARSED_AT_LAYOUT = "2006-01-02T15:04:05.000000Z07:00"

// Row is one lesson flattened together with the metadata of the page it came
// from, it is the unit every sink stores.
type Row struct {
	GroupCode    string `json:"group_code"`
	Period       string `json:"period"`
	SourceUrl    string `json:"source_url"`
	Day          string `json:"day"`
	LessonNumber *int   `json:"lesson_number"`
	Time         string `json:"time"`
	Subject      string `json:"subject"`
	SubjectUrl   string `json:"subject_url"`
	Teacher      string `json:"teacher"`
	TeacherUrl   string `json:"teacher_url"`
	Room         string `json:"room"`
	RoomUrl      string `json:"room_url"`
	Subgroup     string `json:"subgroup"`
	ParsedAt     string `json:"parsed_at"`
	DataHash     string `json:"data_hash"`
}

// Sink is a store that keeps the latest schedule of every group.
//
// note: fault injection point
type Sink interface {
	// Name identifies the sink in logs.
	Name() string
	// LatestFingerprint returns the data_hash of the most recently parsed
	// rows of a group, found is false when the sink holds nothing for it.
	LatestFingerprint(ctx context.Context, group string) (hash string, found bool, err error)
	// Replace removes every row of the group and stores `rows` in their place.
	Replace(ctx context.Context, group string, rows []Row) error
}

// FormatParsedAt formats a batch timestamp the way it is stored.
func FormatParsedAt(t time.Time) string {
	return t.UTC().Format(PARSED_AT_LAYOUT)
}

// FlattenRows turns a document into sink rows, every row of the batch shares
// the same parsed_at and data_hash.
func FlattenRows(doc nhtk.Document, parsedAt time.Time, hash string) []Row {
	stamp := FormatParsedAt(parsedAt)
	rows := make([]Row, len(doc.Schedule))
	for i, lesson := range doc.Schedule {
		rows[i] = Row{
			GroupCode:    doc.Metadata.Group,
			Period:       doc.Metadata.Period,
			SourceUrl:    doc.Metadata.SourceUrl,
			Day:          lesson.Day,
			LessonNumber: lesson.LessonNumber,
			Time:         lesson.Time,
			Subject:      lesson.Subject,
			SubjectUrl:   lesson.SubjectUrl,
			Teacher:      lesson.Teacher,
			TeacherUrl:   lesson.TeacherUrl,
			Room:         lesson.Room,
			RoomUrl:      lesson.RoomUrl,
			Subgroup:     lesson.Subgroup,
			ParsedAt:     stamp,
			DataHash:     hash,
		}
	}
	return rows
}
