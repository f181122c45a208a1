// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package cli

import (
	"context"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/z5labs/bindings"
	"github.com/z5labs/bindings/remote"
	"github.com/z5labs/bindings/value"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type loader struct {
	fs       fs.FS
	env      bindings.Environment
	log      *zap.Logger
	template bool
	client   *http.Client
}

func (ld loader) source(ctx context.Context, name string) bindings.Source {
	if isURL(name) {
		ld.log.Debug("fetching remote config", zap.String("url", name))
		return remote.FromURL(
			ctx,
			name,
			remote.Client(ld.client),
			remote.Logger(ld.log),
		)
	}

	ld.log.Debug("reading config file", zap.String("path", name))
	var r io.Reader = bindings.NewFileReader(ld.fs, name)
	if ld.template {
		r = bindings.RenderTextTemplate(r, bindings.TemplateEnv(ld.env))
	}
	if strings.EqualFold(path.Ext(name), ".json") {
		return bindings.FromJson(r)
	}
	return bindings.FromYaml(r)
}

func isURL(name string) bool {
	return strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://")
}

func newHTTPClient(log *zap.Logger, timeout time.Duration) *http.Client {
	transport := remote.RoundTripperWith(
		otelhttp.NewTransport(http.DefaultTransport),
		remote.CircuitBreaker(
			remote.CircuitName("remote"),
			remote.CircuitLogger(log),
		),
	)
	return remote.NewClient(
		remote.ClientTimeout(timeout),
		remote.WithTransport(transport),
		remote.RetryRequests(remote.RetryAttemptLogger(log)),
	)
}

// applyOverrides sets every path=value pair. Values are typed like YAML
// scalars so --set replicas=3 stores an integer.
func applyOverrides(b *bindings.Bindings, sets []string) error {
	for _, kv := range sets {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return InvalidOverrideError{Arg: kv}
		}
		err := b.Set(strings.TrimSpace(k), value.ParseScalar(v))
		if err != nil {
			return err
		}
	}
	return nil
}
