package nhtk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nhtk-schedule/internal/components/assert"
	"nhtk-schedule/internal/components/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

const (
	report_client_fetch = "client.fetch"
)

// pageAnchor is appended to every page url, the site scrolls to the table with it.
const pageAnchor = "#заголовок"

const DEFAULT_FETCH_TIMEOUT = 10 * time.Second

// ErrFetch wraps every failure to retrieve a schedule page.
var ErrFetch = errors.New("fetch schedule page")

type ClientOptions struct {
	// Timeout bounds the whole request, DEFAULT_FETCH_TIMEOUT is used when zero.
	Timeout time.Duration
	// CloudflareBypass wraps the transport so requests look like a real browser's.
	CloudflareBypass bool
}

// Client downloads schedule pages.
type Client struct {
	http *resty.Client
	tel  telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) *Client {
	assert.NotNil(tel, "tel")
	tel = telemetry.NewScopedAPI("nhtk_client", tel)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DEFAULT_FETCH_TIMEOUT
	}

	httpClient := resty.New()
	httpClient.SetTimeout(timeout)
	httpClient.SetHeaders(map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language": "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7",
		"Connection":      "keep-alive",
	})
	// 1 request per second, the site is a single small server
	rateLimiter := rate.NewLimiter(1, 1)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}
	telemetry.InstrumentResty(httpClient, tel)

	return &Client{
		http: httpClient,
		tel:  tel,
	}
}

// PageUrl returns the address a page is recorded under, which always carries
// the table anchor.
func PageUrl(pageUrl string) string {
	if strings.Contains(pageUrl, pageAnchor) {
		return pageUrl
	}
	return pageUrl + pageAnchor
}

// Fetch downloads the page at `pageUrl`, the returned source url is the
// address the page should be recorded under.
func (c *Client) Fetch(ctx context.Context, pageUrl string) (markup []byte, sourceUrl string, err error) {
	ctx, span := tracer.Start(ctx, "Client.Fetch")
	defer span.End()

	sourceUrl = PageUrl(pageUrl)
	span.SetAttributes(attribute.String("url", sourceUrl))

	res, err := c.http.R().
		SetContext(ctx).
		Get(sourceUrl)
	if err != nil {
		span.SetStatus(codes.Error, "request failed")
		c.tel.ReportBroken(report_client_fetch, err, sourceUrl)
		return nil, sourceUrl, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if !res.IsSuccess() {
		err := fmt.Errorf("%w: unexpected status %s", ErrFetch, res.Status())
		span.SetStatus(codes.Error, "unexpected status")
		c.tel.ReportBroken(report_client_fetch, err, sourceUrl)
		return nil, sourceUrl, err
	}

	c.tel.ReportDebug("fetched page", sourceUrl, len(res.Body()))
	return res.Body(), sourceUrl, nil
}
