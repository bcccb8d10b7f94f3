package proxy

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zachfi/radioproxy/pkg/shoutcast"
)

const userAgent = "radioproxy"

var tracer = otel.Tracer("github.com/zachfi/radioproxy/modules/proxy")

// Backend performs the calls to the radio backend. Each call is made once;
// failures are returned to the caller and never retried.
type Backend struct {
	client  *resty.Client
	streams *shoutcast.Client
}

func NewBackend(cfg *Config) *Backend {
	return &Backend{
		client: resty.New().
			SetTimeout(cfg.BackendTimeout).
			SetHeader("User-Agent", userAgent),
		streams: shoutcast.NewClient(
			shoutcast.WithUserAgent(userAgent),
			shoutcast.WithTimeouts(cfg.StreamConnectTimeout, cfg.StreamHeaderTimeout),
			shoutcast.WithMetadata(cfg.StreamMetadata),
		),
	}
}

// Fetch reads a complete response body, used for metadata and downloads.
func (b *Backend) Fetch(ctx context.Context, endpoint, url string) (body []byte, err error) {
	ctx, span := tracer.Start(ctx, "Backend.Fetch", trace.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("url", url),
	))
	defer func() { endSpan(span, err) }()

	start := time.Now()
	resp, err := b.client.R().SetContext(ctx).Get(url)
	metricBackendDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metricBackendRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("%w: %w", ErrBackendUnreachable, err)
	}

	if !resp.IsSuccess() {
		metricBackendRequests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode())).Inc()
		return nil, &StatusError{URL: url, Code: resp.StatusCode()}
	}

	metricBackendRequests.WithLabelValues(endpoint, "success").Inc()
	return resp.Body(), nil
}

// OpenStream connects to a station stream. The connection is bound to ctx.
func (b *Backend) OpenStream(ctx context.Context, url string) (stream *shoutcast.Stream, err error) {
	ctx, span := tracer.Start(ctx, "Backend.OpenStream", trace.WithAttributes(
		attribute.String("url", url),
	))
	defer func() { endSpan(span, err) }()

	start := time.Now()
	stream, err = b.streams.Open(ctx, url)
	metricBackendDuration.WithLabelValues(endpointStream).Observe(time.Since(start).Seconds())
	if err != nil {
		var se *shoutcast.StatusError
		if errors.As(err, &se) {
			metricBackendRequests.WithLabelValues(endpointStream, strconv.Itoa(se.Code)).Inc()
			return nil, &StatusError{URL: url, Code: se.Code}
		}
		metricBackendRequests.WithLabelValues(endpointStream, "error").Inc()
		return nil, fmt.Errorf("%w: %w", ErrBackendUnreachable, err)
	}

	metricBackendRequests.WithLabelValues(endpointStream, "success").Inc()
	return stream, nil
}

func (b *Backend) CloseIdleConnections() {
	b.client.GetClient().CloseIdleConnections()
	b.streams.CloseIdleConnections()
}

func endSpan(span trace.Span, err error) {
	defer span.End()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "ok")
}
