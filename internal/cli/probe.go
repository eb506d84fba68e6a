package cli

import (
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/okian/transcript/internal/client/clienttest"
	"github.com/okian/transcript/internal/model"
	"github.com/okian/transcript/internal/probe"
	"github.com/okian/transcript/pkg/metrics"
)

const selfTestAPIKey = "sk-selftest-0000"

type probeReport struct {
	Workers        int            `json:"workers"`
	Submitted      int            `json:"submitted"`
	Succeeded      int            `json:"succeeded"`
	Failed         int            `json:"failed"`
	Lists          int            `json:"lists"`
	Creates        int            `json:"creates"`
	Duration       string         `json:"duration"`
	CallsPerSecond float64        `json:"calls_per_second"`
	Failures       map[string]int `json:"failures,omitempty"`
}

func (a *app) probeCmd() *cobra.Command {
	var (
		cfg         probe.Config
		sessionURL  string
		selfTest    bool
		metricsFile string
	)
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "issue concurrent API calls and report how they resolved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			baseURL := a.cfg.BaseURL
			if selfTest {
				srv := clienttest.NewServer()
				defer srv.Close()
				srv.SetAPIKey(selfTestAPIKey)
				baseURL = srv.URL
			}
			if cfg.Create {
				cfg.Session = model.SessionInput{URL: sessionURL}
			}

			runner := probe.New(a.client(baseURL),
				probe.WithLogger(a.log.Named("probe")),
				probe.WithMetrics(a.metrics()))
			stats, runErr := runner.Run(cmd.Context(), cfg)
			if runErr != nil && stats.Submitted == 0 {
				return runErr
			}

			if metricsFile != "" {
				if err := metrics.WriteToFile(metricsFile); err != nil {
					return err
				}
			}

			report := probeReport{
				Workers:        cfg.Workers,
				Submitted:      stats.Submitted,
				Succeeded:      stats.Succeeded,
				Failed:         stats.Failed,
				Lists:          stats.Lists,
				Creates:        stats.Creates,
				Duration:       stats.Duration.String(),
				CallsPerSecond: stats.CallsPerSecond(),
				Failures:       stats.Failures,
			}
			if err := a.render(report, func(tw table.Writer) { probeTable(tw, report) }); err != nil {
				return err
			}
			return runErr
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&cfg.Workers, "workers", a.cfg.ProbeWorkers, "concurrent workers")
	flags.IntVar(&cfg.Requests, "requests", a.cfg.ProbeRequests, "total calls to issue")
	flags.BoolVar(&cfg.Create, "create", false, "interleave session creates with lists")
	flags.StringVar(&sessionURL, "url", "https://example.com/video", "video URL used for creates")
	flags.BoolVar(&selfTest, "self-test", false, "run against an in-process stub backend")
	flags.StringVar(&metricsFile, "metrics-file", "", "write client metrics in text format to this file")
	return cmd
}

func probeTable(tw table.Writer, r probeReport) {
	tw.AppendHeader(table.Row{"Field", "Value"})
	tw.AppendRows([]table.Row{
		{"workers", r.Workers},
		{"submitted", r.Submitted},
		{"succeeded", r.Succeeded},
		{"failed", r.Failed},
		{"lists", r.Lists},
		{"creates", r.Creates},
		{"duration", r.Duration},
		{"calls/s", r.CallsPerSecond},
	})
	msgs := make([]string, 0, len(r.Failures))
	for msg := range r.Failures {
		msgs = append(msgs, msg)
	}
	sort.Strings(msgs)
	for _, msg := range msgs {
		tw.AppendRow(table.Row{"failure: " + msg, r.Failures[msg]})
	}
}
