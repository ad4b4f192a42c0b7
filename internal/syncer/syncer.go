package syncer

import (
	"context"
	"errors"
	"fmt"

	"nhtk-schedule/internal/components/assert"
	"nhtk-schedule/internal/components/chrono"
	"nhtk-schedule/internal/components/telemetry"
	"nhtk-schedule/internal/fingerprint"
	"nhtk-schedule/internal/scrapers/nhtk"
	"nhtk-schedule/internal/sink"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	report_syncer_has_changed = "syncer.has-changed"
	report_syncer_sync        = "syncer.sync"
)

var (
	tracer = otel.Tracer("nhtk-schedule/syncer")
	meter  = otel.Meter("nhtk-schedule/syncer")
)

// ErrNothingToSync is returned when a document without lessons is synced, an
// empty schedule is far more likely a broken page than a week off.
var ErrNothingToSync = errors.New("no lessons to sync")

type Result struct {
	Sink string
	Hash string
	// Skipped is true when the sink already held the same fingerprint.
	Skipped bool
	Written int
}

// Syncer writes documents to a sink when their content changed.
type Syncer struct {
	sink sink.Sink
	time chrono.TimeAPI
	tel  telemetry.API

	rowsWritten metric.Int64Counter
}

func New(s sink.Sink, time chrono.TimeAPI, tel telemetry.API) Syncer {
	assert.NotNil(s, "sink")
	assert.NotEmptyStr(s.Name(), "sink name")
	assert.NotNil(time, "time")
	assert.NotNil(tel, "tel")

	rowsWritten, err := meter.Int64Counter(
		"nhtk.sync.rows_written",
		metric.WithDescription("rows written to a sink"),
	)
	if err != nil {
		rowsWritten = noop.Int64Counter{}
	}

	return Syncer{
		sink:        s,
		time:        time,
		tel:         telemetry.NewScopedAPI(fmt.Sprintf("syncer_%s", s.Name()), tel),
		rowsWritten: rowsWritten,
	}
}

// HasChanged compares `hash` with the latest fingerprint the sink holds for
// the group. Whenever the prior state cannot be determined it assumes the
// content changed.
func (s Syncer) HasChanged(ctx context.Context, group, hash string) bool {
	if group == "" {
		s.tel.ReportDebug("no group code, assuming changed")
		return true
	}

	latest, found, err := s.sink.LatestFingerprint(ctx, group)
	if err != nil {
		s.tel.ReportWarning(report_syncer_has_changed, fmt.Errorf("assuming changed: %w", err), group)
		return true
	}
	if !found {
		s.tel.ReportDebug("no previous rows", group)
		return true
	}
	if latest == hash {
		s.tel.ReportDebug("fingerprint unchanged", group, hash)
		return false
	}
	s.tel.ReportDebug("fingerprint changed", group, latest, hash)
	return true
}

// Sync replaces the rows of the document's group unless the sink already
// holds the same content, `force` skips the comparison.
func (s Syncer) Sync(ctx context.Context, doc nhtk.Document, force bool) (Result, error) {
	ctx, span := tracer.Start(ctx, "Syncer.Sync")
	defer span.End()

	group := doc.Metadata.Group
	result := Result{Sink: s.sink.Name()}
	span.SetAttributes(
		attribute.String("sink", result.Sink),
		attribute.String("group", group),
		attribute.Bool("force", force),
	)

	if len(doc.Schedule) == 0 {
		span.SetStatus(codes.Error, "nothing to sync")
		s.tel.ReportWarning(report_syncer_sync, ErrNothingToSync, group)
		return result, ErrNothingToSync
	}

	hash, err := fingerprint.Lessons(doc.Schedule)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.tel.ReportBroken(report_syncer_sync, err, group)
		return result, err
	}
	result.Hash = hash

	if !force && !s.HasChanged(ctx, group, hash) {
		result.Skipped = true
		return result, nil
	}

	rows := sink.FlattenRows(doc, s.time.Now(), hash)
	err = s.sink.Replace(ctx, group, rows)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.tel.ReportBroken(report_syncer_sync, err, group)
		return result, err
	}
	result.Written = len(rows)

	s.rowsWritten.Add(ctx, int64(len(rows)), metric.WithAttributes(
		attribute.String("sink", result.Sink),
		attribute.String("group", group),
	))
	s.tel.ReportCount(report_syncer_sync, int64(len(rows)))
	return result, nil
}
