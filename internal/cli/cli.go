// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package cli implements the bindings command.
package cli

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/z5labs/bindings"
	"github.com/z5labs/bindings/internal/try"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// Option configures an [App].
type Option func(*App)

// Name sets the command name shown in usage.
func Name(name string) Option {
	return func(a *App) {
		a.name = name
	}
}

// Stdout sets where command output is written.
func Stdout(w io.Writer) Option {
	return func(a *App) {
		a.stdout = w
	}
}

// Stderr sets where logs and local spans are written.
func Stderr(w io.Writer) Option {
	return func(a *App) {
		a.stderr = w
	}
}

// Stdin sets where "replace -" reads its template from.
func Stdin(r io.Reader) Option {
	return func(a *App) {
		a.stdin = r
	}
}

// Environment sets the environment placeholders fall back to.
func Environment(env bindings.Environment) Option {
	return func(a *App) {
		a.env = env
	}
}

// FS sets the filesystem local config files are read from.
func FS(fsys fs.FS) Option {
	return func(a *App) {
		a.fs = fsys
	}
}

// App is the bindings command line application. It loads config files,
// remote documents and overrides into [bindings.Bindings] and then
// queries them.
type App struct {
	name   string
	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
	env    bindings.Environment
	fs     fs.FS
}

// New returns a fully initialized App.
func New(opts ...Option) *App {
	app := &App{
		name:   "bindings",
		stdout: os.Stdout,
		stderr: os.Stderr,
		stdin:  os.Stdin,
		env:    bindings.OSEnv(),
		fs:     bindings.OSFS(),
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// Run executes the command with the given arguments. An OS interrupt
// cancels any in flight remote fetch.
func (app *App) Run(args ...string) (err error) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	s := &session{}
	defer func() {
		err = errors.Join(err, s.close(context.Background()))
	}()

	cmd := buildCmd(app, s)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

// session is the state shared by every subcommand once the persistent
// flags have been processed.
type session struct {
	cfg    *viper.Viper
	log    *zap.Logger
	b      *bindings.Bindings
	tp     *sdktrace.TracerProvider
	output string
}

func (s *session) close(ctx context.Context) error {
	var errs []error
	if s.tp != nil {
		errs = append(errs, s.tp.Shutdown(ctx))
	}
	if s.log != nil {
		// syncing a terminal fails on some platforms so the error is dropped
		_ = s.log.Sync()
	}
	return errors.Join(errs...)
}

func buildCmd(app *App, s *session) *cobra.Command {
	v := viper.New()
	s.cfg = v

	root := &cobra.Command{
		Use:   app.name,
		Short: "Merge layered config and resolve ${path} placeholders",
		Long: `Merge layered YAML and JSON config documents, local or fetched over HTTP,
and resolve ${path} and ${path:default} placeholders against the merged tree
and the environment.

Every flag can also be set with a BINDINGS_ prefixed environment variable,
e.g. BINDINGS_LOG_LEVEL=debug.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			defer try.Recover(&err)
			return s.load(cmd.Context(), app)
		},
	}
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)
	root.SetIn(app.stdin)

	flags := root.PersistentFlags()
	flags.StringSliceP("file", "f", nil, "config files or http(s) URLs, merged in order")
	flags.StringSlice("set", nil, "override values with path=value, applied after every file")
	flags.Bool("template", false, "render local files as text/template before parsing")
	flags.Bool("typed-defaults", false, "parse placeholder defaults as YAML scalars")
	flags.StringP("output", "o", "yaml", "output format for lists and maps: yaml or json")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.Duration("timeout", 30*time.Second, "timeout for fetching each remote document")
	flags.String("trace", "", "span exporter: stdout, otlp or gcp")
	flags.String("otlp-target", "localhost:4317", "OTLP collector gRPC target")
	flags.String("gcp-project", "", "Google Cloud project to export spans to")

	v.SetEnvPrefix("BINDINGS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	err := v.BindPFlags(flags)
	if err != nil {
		panic(err)
	}

	root.AddCommand(
		getCmd(s),
		replaceCmd(s),
		dumpCmd(s),
	)
	return root
}

func (s *session) load(ctx context.Context, app *App) error {
	v := s.cfg

	log, err := newLogger(app.stderr, v.GetString("log-level"))
	if err != nil {
		return err
	}
	s.log = log

	s.output = v.GetString("output")
	if s.output != "yaml" && s.output != "json" {
		return UnsupportedFormatError{Format: s.output}
	}

	s.tp, err = tracerProvider(ctx, v, app.stderr)
	if err != nil {
		return err
	}
	if s.tp != nil {
		otel.SetTracerProvider(s.tp)
		otel.SetTextMapPropagator(propagation.TraceContext{})
	}

	spanCtx, span := otel.Tracer("bindings").Start(ctx, "load")
	defer span.End()

	opts := []bindings.Option{
		bindings.WithEnvironment(app.env),
		bindings.WithFS(app.fs),
		bindings.Logger(log),
	}
	if v.GetBool("typed-defaults") {
		opts = append(opts, bindings.TypedDefaults())
	}
	b := bindings.New(opts...)

	ld := loader{
		fs:       app.fs,
		env:      app.env,
		log:      log,
		template: v.GetBool("template"),
		client:   newHTTPClient(log, v.GetDuration("timeout")),
	}
	srcs := make([]bindings.Source, 0, len(v.GetStringSlice("file")))
	for _, name := range v.GetStringSlice("file") {
		srcs = append(srcs, ld.source(spanCtx, name))
	}
	err = b.ImportSources(srcs...)
	if err != nil {
		span.RecordError(err)
		return err
	}

	err = applyOverrides(b, v.GetStringSlice("set"))
	if err != nil {
		return err
	}

	s.b = b
	return nil
}
