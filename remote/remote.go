// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package remote provides config sources which are fetched over HTTP.
package remote

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/z5labs/bindings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Format is the serialization of a fetched config document.
type Format int

const (
	// Detect picks the format from the response Content-Type, falling
	// back to the URL extension and finally YAML.
	Detect Format = iota
	YAML
	JSON
)

// UnexpectedStatusError is returned when the server does not answer with 200 OK.
type UnexpectedStatusError struct {
	URL        string
	StatusCode int
}

// Error implements the [builtin.error] interface.
func (e UnexpectedStatusError) Error() string {
	return fmt.Sprintf("unexpected status code fetching config from %s: %d", e.URL, e.StatusCode)
}

type options struct {
	client *http.Client
	format Format
	header http.Header
	log    *zap.Logger
}

// Option configures a [FromURL] source.
type Option func(*options)

// Client sets the [http.Client] used to fetch the document.
func Client(c *http.Client) Option {
	return func(o *options) {
		o.client = c
	}
}

// AsFormat forces the document to be decoded as f.
func AsFormat(f Format) Option {
	return func(o *options) {
		o.format = f
	}
}

// Header adds a request header, e.g. for authorization.
func Header(key, value string) Option {
	return func(o *options) {
		o.header.Add(key, value)
	}
}

// Logger sets the logger for fetch events.
func Logger(logger *zap.Logger) Option {
	return func(o *options) {
		o.log = logger
	}
}

// FromURL returns a [bindings.Source] which fetches a YAML or JSON
// document with a GET request once it is applied.
func FromURL(ctx context.Context, url string, opts ...Option) bindings.Source {
	o := &options{
		client: http.DefaultClient,
		header: make(http.Header),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	return bindings.SourceFunc(func(store bindings.Store) error {
		spanCtx, span := otel.Tracer("remote").Start(ctx, "FromURL", trace.WithAttributes(
			attribute.String("url", url),
		))
		defer span.End()

		err := fetch(spanCtx, o, url, store)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	})
}

func fetch(ctx context.Context, o *options, url string, store bindings.Store) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	for key, values := range o.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Accept", "application/yaml, application/json;q=0.9, */*;q=0.5")

	resp, err := o.client.Do(req)
	if err != nil {
		o.log.Error("failed to fetch config", zap.String("url", url), zap.Error(err))
		return err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		o.log.Error("unexpected status code", zap.String("url", url), zap.Int("http_status_code", resp.StatusCode))
		return UnexpectedStatusError{URL: url, StatusCode: resp.StatusCode}
	}

	format := o.format
	if format == Detect {
		format = detect(resp.Header.Get("Content-Type"), req.URL.Path)
	}
	o.log.Debug("fetched config", zap.String("url", url), zap.Bool("json", format == JSON))

	switch format {
	case JSON:
		return bindings.FromJson(resp.Body).Apply(store)
	default:
		return bindings.FromYaml(resp.Body).Apply(store)
	}
}

func detect(contentType, urlPath string) Format {
	mt, _, err := mime.ParseMediaType(contentType)
	if err == nil {
		switch {
		case mt == "application/json", strings.HasSuffix(mt, "+json"):
			return JSON
		case strings.Contains(mt, "yaml"):
			return YAML
		}
	}
	if strings.EqualFold(path.Ext(urlPath), ".json") {
		return JSON
	}
	return YAML
}
