package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"nhtk-schedule/internal/components/assert"
	"nhtk-schedule/internal/components/telemetry"
	"nhtk-schedule/internal/scrapers/nhtk"
	"nhtk-schedule/internal/syncer"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	report_runner_fetch  = "runner.fetch"
	report_runner_output = "runner.output"
	report_runner_sync   = "runner.sync"
)

var tracer = otel.Tracer("nhtk-schedule/runner")

// ErrSync is returned when a sink could not be brought up to date, the
// local artifact has already been written by then.
var ErrSync = errors.New("sync schedule")

// Fetcher downloads a schedule page.
//
// note: fault injection point
type Fetcher interface {
	Fetch(ctx context.Context, pageUrl string) (markup []byte, sourceUrl string, err error)
}

type Options struct {
	Url string
	// Output is where the parsed document is written, nothing is written when empty.
	Output    string
	Force     bool
	Scheduled bool
}

// Runner performs a single independent run: fetch, parse, write the local
// artifact and sync every configured sink.
type Runner struct {
	fetcher Fetcher
	parser  nhtk.Parser
	syncers []syncer.Syncer
	tel     telemetry.API
}

func New(fetcher Fetcher, parser nhtk.Parser, syncers []syncer.Syncer, tel telemetry.API) Runner {
	assert.NotNil(fetcher, "fetcher")
	assert.NotNil(tel, "tel")

	return Runner{
		fetcher: fetcher,
		parser:  parser,
		syncers: syncers,
		tel:     telemetry.NewScopedAPI("runner", tel),
	}
}

// EncodeDocument writes a document as indented json, non-ascii text is kept
// as is.
func EncodeDocument(w io.Writer, doc nhtk.Document) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func WriteDocument(path string, doc nhtk.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = EncodeDocument(f, doc)
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (r Runner) Run(ctx context.Context, opts Options) (nhtk.Document, error) {
	ctx, span := tracer.Start(ctx, "Runner.Run", trace.WithAttributes(
		attribute.String("url", opts.Url),
		attribute.Bool("scheduled", opts.Scheduled),
		attribute.Bool("force", opts.Force),
	))
	defer span.End()

	trigger := "manual"
	if opts.Scheduled {
		trigger = "scheduled"
	}
	r.tel.ReportDebug("starting run", trigger, opts.Url, len(r.syncers))

	markup, sourceUrl, err := r.fetcher.Fetch(ctx, opts.Url)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		r.tel.ReportBroken(report_runner_fetch, err, opts.Url)
		return nhtk.Document{}, err
	}

	doc, err := r.parser.Parse(ctx, markup, sourceUrl)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nhtk.Document{}, fmt.Errorf("parse schedule page: %w", err)
	}
	r.tel.ReportDebug("parsed schedule", doc.Metadata.Group, len(doc.Schedule))

	if opts.Output != "" {
		err = WriteDocument(opts.Output, doc)
		if err != nil {
			r.tel.ReportBroken(report_runner_output, err, opts.Output)
		}
	}

	var errs []error
	for _, s := range r.syncers {
		result, err := s.Sync(ctx, doc, opts.Force)
		if err != nil {
			r.tel.ReportBroken(report_runner_sync, err, result.Sink)
			errs = append(errs, fmt.Errorf("%s: %w", result.Sink, err))
			continue
		}
		if result.Skipped {
			r.tel.ReportDebug("sink already up to date", result.Sink, result.Hash)
			continue
		}
		r.tel.ReportDebug("sink updated", result.Sink, result.Written, result.Hash)
	}
	if len(errs) > 0 {
		span.SetStatus(codes.Error, "sync failed")
		return doc, fmt.Errorf("%w: %w", ErrSync, errors.Join(errs...))
	}
	return doc, nil
}
