package nhtk

import (
	"bytes"
	"context"
	"fmt"

	"nhtk-schedule/internal/components/assert"
	"nhtk-schedule/internal/components/chrono"
	"nhtk-schedule/internal/components/telemetry"
	"nhtk-schedule/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	report_parser_parse       = "parser.parse"
	report_parser_reject_row  = "parser.reject-row"
	report_parser_lesson_rows = "parser.lessons"
)

var (
	tracer = otel.Tracer("nhtk-schedule/scrapers/nhtk")
	meter  = otel.Meter("nhtk-schedule/scrapers/nhtk")
)

// Parser turns a schedule page into a Document.
type Parser struct {
	opts Options
	time chrono.TimeAPI
	tel  telemetry.API

	lessonsParsed metric.Int64Counter
	rowsRejected  metric.Int64Counter
}

func NewParser(opts Options, time chrono.TimeAPI, tel telemetry.API) Parser {
	assert.NotNil(time, "time")
	assert.NotNil(tel, "tel")

	lessonsParsed, err := meter.Int64Counter(
		"nhtk.lessons.parsed",
		metric.WithDescription("lessons extracted from schedule pages"),
	)
	if err != nil {
		lessonsParsed = noop.Int64Counter{}
	}
	rowsRejected, err := meter.Int64Counter(
		"nhtk.rows.rejected",
		metric.WithDescription("lesson rows that did not yield a lesson"),
	)
	if err != nil {
		rowsRejected = noop.Int64Counter{}
	}

	return Parser{
		opts:          opts.withDefaults(),
		time:          time,
		tel:           telemetry.NewScopedAPI("nhtk_parser", tel),
		lessonsParsed: lessonsParsed,
		rowsRejected:  rowsRejected,
	}
}

// readRows reduces every <tr> of the document to its cells.
func (p Parser) readRows(doc *goquery.Document) []Row {
	var rows []Row
	doc.Find("tr").Each(func(i int, tr *goquery.Selection) {
		row := Row{Index: i}
		tr.Find("td, th").Each(func(j int, td *goquery.Selection) {
			href, _ := htmlutil.FirstHref(td)
			row.Cells = append(row.Cells, Cell{
				Index: j,
				Text:  htmlutil.GetStrippedText(td.Nodes[0]),
				Href:  normalizeHref(p.opts.BaseUrl, href),
			})
		})
		rows = append(rows, row)
	})
	return rows
}

// Parse extracts the group, period and lessons of a schedule page. Parsing
// itself never fails on odd markup, rows that cannot be understood are
// reported and skipped.
func (p Parser) Parse(ctx context.Context, markup []byte, sourceUrl string) (Document, error) {
	ctx, span := tracer.Start(ctx, "Parser.Parse")
	defer span.End()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		p.tel.ReportBroken(report_parser_parse, fmt.Errorf("read markup: %w", err), sourceUrl)
		return Document{}, err
	}

	group, period := parseMetadata(doc)
	if group == "" {
		p.tel.ReportWarning(report_parser_parse, "group not found", sourceUrl)
	}
	if period == "" {
		p.tel.ReportWarning(report_parser_parse, "period not found", sourceUrl)
	}

	rows := p.readRows(doc)
	state := foldRows(p.opts, rows)

	for _, rejection := range state.Rejections {
		p.tel.ReportWarning(
			report_parser_reject_row,
			rejection.Reason,
			rejection.Row,
			rejection.Day,
			rejection.Cells,
			rejection.Detail,
		)
	}

	p.tel.ReportDebug("parsed table", len(rows), len(state.DayHeaders), len(state.Lessons))
	p.tel.ReportCount(report_parser_lesson_rows, int64(len(state.Lessons)))

	attrs := metric.WithAttributes(attribute.String("group", group))
	p.lessonsParsed.Add(ctx, int64(len(state.Lessons)), attrs)
	p.rowsRejected.Add(ctx, int64(len(state.Rejections)), attrs)
	span.SetAttributes(
		attribute.String("group", group),
		attribute.Int("rows", len(rows)),
		attribute.Int("lessons", len(state.Lessons)),
	)

	return Document{
		Metadata: Metadata{
			SourceUrl: sourceUrl,
			ParseDate: p.time.Now(),
			Group:     group,
			Period:    period,
		},
		Schedule: state.Lessons,
	}, nil
}
