package supabase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nhtk-schedule/internal/components/telemetry"
	"nhtk-schedule/internal/sink"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	report_sink_latest_fingerprint = "sink.latest-fingerprint"
	report_sink_replace            = "sink.replace"
)

const DEFAULT_TABLE = "schedule_items"

var tracer = otel.Tracer("nhtk-schedule/sink/supabase")

// ErrStatus is returned when the rest api answers with a non-2xx status.
var ErrStatus = errors.New("unexpected supabase status")

type Options struct {
	// Url is the project url, ex. https://xyz.supabase.co
	Url string
	// Key is the api key, it is sent both as the apikey and as the bearer token.
	Key   string
	Table string
	// Timeout bounds every request, no timeout is set when zero.
	Timeout time.Duration
}

// Sink stores rows in a supabase table through its PostgREST api.
type Sink struct {
	http  *resty.Client
	table string
	tel   telemetry.API
}

func New(opts Options, tel telemetry.API) (Sink, error) {
	if opts.Url == "" || opts.Key == "" {
		return Sink{}, fmt.Errorf("supabase url and key are both required")
	}
	table := opts.Table
	if table == "" {
		table = DEFAULT_TABLE
	}
	tel = telemetry.NewScopedAPI("supabase", tel)

	httpClient := resty.New()
	httpClient.SetBaseURL(strings.TrimRight(opts.Url, "/") + "/rest/v1")
	httpClient.SetHeader("apikey", opts.Key)
	httpClient.SetAuthToken(opts.Key)
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}
	telemetry.InstrumentResty(httpClient, tel)

	return Sink{
		http:  httpClient,
		table: table,
		tel:   tel,
	}, nil
}

func (s Sink) Name() string {
	return "supabase"
}

func (s Sink) checkStatus(res *resty.Response, op string) error {
	if res.IsSuccess() {
		return nil
	}
	return fmt.Errorf("%s: %w %s: %s", op, ErrStatus, res.Status(), res.String())
}

type fingerprintRow struct {
	DataHash string `json:"data_hash"`
}

func (s Sink) LatestFingerprint(ctx context.Context, group string) (string, bool, error) {
	ctx, span := tracer.Start(ctx, "Supabase.LatestFingerprint")
	defer span.End()
	span.SetAttributes(attribute.String("group", group))

	var result []fingerprintRow
	res, err := s.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"select":     "data_hash",
			"group_code": "eq." + group,
			"order":      "parsed_at.desc",
			"limit":      "1",
		}).
		SetResult(&result).
		Get("/" + s.table)
	if err == nil {
		err = s.checkStatus(res, "select latest fingerprint")
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.tel.ReportBroken(report_sink_latest_fingerprint, err, group)
		return "", false, err
	}

	if len(result) == 0 {
		return "", false, nil
	}
	return result[0].DataHash, true, nil
}

// Replace deletes and then inserts, the two requests are not atomic so an
// interruption in between leaves the group empty until the next run.
func (s Sink) Replace(ctx context.Context, group string, rows []sink.Row) error {
	ctx, span := tracer.Start(ctx, "Supabase.Replace")
	defer span.End()
	span.SetAttributes(
		attribute.String("group", group),
		attribute.Int("rows", len(rows)),
	)

	res, err := s.http.R().
		SetContext(ctx).
		SetQueryParam("group_code", "eq."+group).
		Delete("/" + s.table)
	if err == nil {
		err = s.checkStatus(res, "delete group rows")
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.tel.ReportBroken(report_sink_replace, err, group)
		return err
	}

	if len(rows) == 0 {
		return nil
	}

	res, err = s.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=minimal").
		SetHeader("Content-Type", "application/json").
		SetBody(rows).
		Post("/" + s.table)
	if err == nil {
		err = s.checkStatus(res, "insert rows")
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.tel.ReportBroken(report_sink_replace, err, group, len(rows))
		return err
	}

	s.tel.ReportDebug("replaced group rows", group, len(rows))
	return nil
}
