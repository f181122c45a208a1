// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/z5labs/bindings/internal/otelconfig"

	"github.com/spf13/viper"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newLogger(w io.Writer, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		lvl,
	)
	return zap.New(core), nil
}

// tracerProvider returns nil when tracing is disabled.
func tracerProvider(ctx context.Context, v *viper.Viper, stderr io.Writer) (*sdktrace.TracerProvider, error) {
	common := otelconfig.Common{ServiceName: "bindings"}

	var initializer otelconfig.Initializer
	switch name := v.GetString("trace"); name {
	case "":
		return nil, nil
	case "stdout":
		initializer = otelconfig.Local{Common: common, Out: stderr}
	case "otlp":
		initializer = otelconfig.OTLP{Common: common, Target: v.GetString("otlp-target")}
	case "gcp":
		initializer = otelconfig.GoogleCloud{Common: common, ProjectId: v.GetString("gcp-project")}
	default:
		return nil, UnknownExporterError{Name: name}
	}
	return initializer.Init(ctx)
}
