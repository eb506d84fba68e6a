// Package cli implements the transcriptctl command tree.
package cli

import (
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/okian/transcript/internal/client"
	"github.com/okian/transcript/internal/config"
	"github.com/okian/transcript/pkg/logger"
	"github.com/okian/transcript/pkg/metrics"
)

type app struct {
	cfg *config.Config
	out io.Writer
	log logger.Logger
}

// Root builds the command tree. Flags write through to cfg, and command
// output goes to out.
func Root(cfg *config.Config, out io.Writer, log logger.Logger) *cobra.Command {
	if log == nil {
		log = logger.Nop()
	}
	a := &app{cfg: cfg, out: out, log: log}

	root := &cobra.Command{
		Use:           "transcriptctl",
		Short:         "talks to the transcription backend",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if err := logger.SetLevelString(cfg.LogLevel); err != nil {
				return err
			}
			return cfg.Validate()
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "backend root URL")
	flags.StringVarP(&cfg.Output, "output", "o", cfg.Output, "output format: table, json or yaml")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")

	root.AddCommand(a.configCmd(), a.sessionsCmd(), a.probeCmd())
	return root
}

// client builds an API client for baseURL from the loaded config.
func (a *app) client(baseURL string) *client.Client {
	opts := []client.Option{
		client.WithBaseURL(baseURL),
		client.WithHTTPClient(&http.Client{Timeout: a.cfg.Timeout()}),
		client.WithLogger(a.log.Named("client")),
		client.WithRequestID(a.cfg.RequestID),
		client.WithMetrics(a.metrics()),
	}
	return client.New(opts...)
}

// metrics returns the process metrics manager, or nil when disabled.
func (a *app) metrics() *metrics.Manager {
	if !a.cfg.MetricsEnabled {
		return nil
	}
	return metrics.Default()
}
