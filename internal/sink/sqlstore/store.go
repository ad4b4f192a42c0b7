package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"nhtk-schedule/internal/components/telemetry"
	"nhtk-schedule/internal/sink"
	"nhtk-schedule/internal/sink/sqlstore/db"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	_ "modernc.org/sqlite"
)

const (
	report_store_latest_fingerprint = "store.latest-fingerprint"
	report_store_replace            = "store.replace"
)

const (
	DRIVER_SQLITE = "sqlite"
	DRIVER_LIBSQL = "libsql"
)

var tracer = otel.Tracer("nhtk-schedule/sink/sqlstore")

// OpenDB opens the archive database. For sqlite the dsn is a file path (or
// :memory:), for libsql it is a libsql:// url with an optional authToken.
func OpenDB(driver, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("a dsn was not specified")
	}

	switch driver {
	case DRIVER_LIBSQL:
		return sql.Open(DRIVER_LIBSQL, dsn)
	case DRIVER_SQLITE, "":
	default:
		return nil, fmt.Errorf("unknown archive driver '%s'", driver)
	}

	if dsn != ":memory:" {
		_, statErr := os.Stat(dsn)
		if os.IsNotExist(statErr) {
			f, err := os.Create(dsn)
			if err != nil {
				return nil, err
			}
			f.Close()
		}
	}

	database, err := sql.Open(DRIVER_SQLITE, dsn)
	if err != nil {
		return nil, err
	}
	// sqlite only allows a single writer, this also keeps an in-memory
	// database on a single connection.
	database.SetMaxOpenConns(1)
	_, err = database.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// Store is the archive sink, it keeps the latest rows of every group in a
// schedule_items table.
type Store struct {
	db  *sql.DB
	qry *db.Queries
	tel telemetry.API
}

func NewStore(database *sql.DB, tel telemetry.API) Store {
	return Store{
		db:  database,
		qry: db.New(database),
		tel: telemetry.NewScopedAPI("archive", tel),
	}
}

// Migrate creates the schedule_items table if it does not exist yet.
func (s Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, db.Schema)
	return err
}

func (s Store) Name() string {
	return "archive"
}

func (s Store) LatestFingerprint(ctx context.Context, group string) (string, bool, error) {
	ctx, span := tracer.Start(ctx, "Store.LatestFingerprint")
	defer span.End()
	span.SetAttributes(attribute.String("group", group))

	hash, err := s.qry.GetLatestDataHash(ctx, group)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.tel.ReportBroken(report_store_latest_fingerprint, err, group)
		return "", false, err
	}
	return hash, true, nil
}

// Replace swaps the rows of a group in a single transaction.
func (s Store) Replace(ctx context.Context, group string, rows []sink.Row) error {
	ctx, span := tracer.Start(ctx, "Store.Replace")
	defer span.End()
	span.SetAttributes(
		attribute.String("group", group),
		attribute.Int("rows", len(rows)),
	)

	err := s.replace(ctx, group, rows)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.tel.ReportBroken(report_store_replace, err, group, len(rows))
		return err
	}
	return nil
}

func (s Store) replace(ctx context.Context, group string, rows []sink.Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	err = txqry.DeleteGroupItems(ctx, group)
	if err != nil {
		return err
	}
	for _, row := range rows {
		lessonNumber := sql.NullInt64{}
		if row.LessonNumber != nil {
			lessonNumber = sql.NullInt64{Int64: int64(*row.LessonNumber), Valid: true}
		}
		err = txqry.CreateScheduleItem(ctx, db.CreateScheduleItemParams{
			GroupCode:    row.GroupCode,
			Period:       row.Period,
			SourceUrl:    row.SourceUrl,
			Day:          row.Day,
			LessonNumber: lessonNumber,
			Time:         row.Time,
			Subject:      row.Subject,
			SubjectUrl:   row.SubjectUrl,
			Teacher:      row.Teacher,
			TeacherUrl:   row.TeacherUrl,
			Room:         row.Room,
			RoomUrl:      row.RoomUrl,
			Subgroup:     row.Subgroup,
			ParsedAt:     row.ParsedAt,
			DataHash:     row.DataHash,
		})
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Rows returns the stored rows of a group in insertion order.
func (s Store) Rows(ctx context.Context, group string) ([]sink.Row, error) {
	items, err := s.qry.ListGroupItems(ctx, group)
	if err != nil {
		return nil, err
	}
	rows := make([]sink.Row, len(items))
	for i, item := range items {
		var lessonNumber *int
		if item.LessonNumber.Valid {
			n := int(item.LessonNumber.Int64)
			lessonNumber = &n
		}
		rows[i] = sink.Row{
			GroupCode:    item.GroupCode,
			Period:       item.Period,
			SourceUrl:    item.SourceUrl,
			Day:          item.Day,
			LessonNumber: lessonNumber,
			Time:         item.Time,
			Subject:      item.Subject,
			SubjectUrl:   item.SubjectUrl,
			Teacher:      item.Teacher,
			TeacherUrl:   item.TeacherUrl,
			Room:         item.Room,
			RoomUrl:      item.RoomUrl,
			Subgroup:     item.Subgroup,
			ParsedAt:     item.ParsedAt,
			DataHash:     item.DataHash,
		}
	}
	return rows, nil
}
