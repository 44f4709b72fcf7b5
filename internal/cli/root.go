// Package cli implements the anchor CLI commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"

	"github.com/dropanchor/anchor-go/client"
	"github.com/dropanchor/anchor-go/internal/config"
	"github.com/dropanchor/anchor-go/internal/richtext"
	"github.com/dropanchor/anchor-go/internal/session"
	"github.com/dropanchor/anchor-go/internal/store"
	"github.com/dropanchor/anchor-go/internal/usecase"
)

var (
	configPath string
	verbose    bool

	shutdownTrace func(context.Context) error
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "anchor",
	Short: "Check in at places on the open social web",
	Long:  "Drop anchor at a venue: publishes a location record and a check-in referencing it to your own repo, with an optional announcement post.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		cfg, err := config.Load(getConfigPath())
		if err != nil {
			exitErr("load config", err)
		}
		if cfg.Trace.Enable {
			shutdown, terr := setupTrace(cmd.Context(), cfg.Trace.Endpoint)
			if terr != nil {
				slog.Warn("trace exporter setup failed", "error", terr)
			} else {
				shutdownTrace = shutdown
			}
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if shutdownTrace != nil {
			if err := shutdownTrace(cmd.Context()); err != nil {
				slog.Warn("trace shutdown failed", "error", err)
			}
		}
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config path (default: $ANCHOR_CONFIG or ~/.anchor/config.yaml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}

func getConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if env := os.Getenv("ANCHOR_CONFIG"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".anchor", "config.yaml")
}

// app bundles the wired components a command needs.
type app struct {
	cfg      config.Config
	client   *client.Client
	sessions *session.Manager
}

// The manager drives the remote session through the XRPC client.
var _ session.API = (*client.Client)(nil)

func newApp() *app {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		exitErr("load config", err)
	}

	cl := client.New(cfg.Client.PDSHost)
	mgr := session.NewManager(session.NewFileStore(cfg.Paths.Credentials), cl)
	mgr.Load()

	return &app{cfg: cfg, client: cl, sessions: mgr}
}

func (a *app) openJournal() *store.Journal {
	j, err := store.NewJournal(a.cfg.Paths.Journal)
	if err != nil {
		exitErr("open journal", err)
	}
	return j
}

func (a *app) composer() *richtext.Composer {
	return richtext.NewComposer(a.cfg.Account.DefaultMessage)
}

func (a *app) checkins(j *store.Journal, withPost bool) *usecase.CheckinUsecase {
	return usecase.NewCheckinUsecase(
		a.client,
		a.sessions,
		a.composer(),
		usecase.WithJournal(j),
		usecase.WithSocialPost(withPost && !a.cfg.Account.DisablePost),
	)
}

func (a *app) verifier(j *store.Journal) *usecase.VerifyUsecase {
	return usecase.NewVerifyUsecase(a.client, usecase.WithVerifyJournal(j))
}

func setupTrace(ctx context.Context, endpoint string) (func(context.Context) error, error) {
	opts := []otlptracehttp.Option{}
	if endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName("anchor"),
		)),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
