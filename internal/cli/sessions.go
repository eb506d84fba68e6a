package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/okian/transcript/internal/client"
	"github.com/okian/transcript/internal/model"
)

func (a *app) sessionsCmd() *cobra.Command {
	sessions := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session"},
		Short:   "manage transcription sessions",
	}

	var in model.SessionInput
	create := &cobra.Command{
		Use:   "create",
		Short: "start a transcription session for a video URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := model.Validate(in); err != nil {
				return err
			}
			p, err := a.client(a.cfg.BaseURL).CreateSession(cmd.Context(), in)
			if err != nil {
				return err
			}
			created, err := client.Decode[model.Created](p)
			if err != nil {
				return err
			}
			return a.render(p, keyValueTable(table.Row{"id", created.ID}))
		},
	}
	create.Flags().StringVar(&in.URL, "url", "", "video URL to transcribe")
	create.Flags().StringVar(&in.Style, "style", "", "note style")
	create.Flags().StringVar(&in.Remark, "remark", "", "free-form remark")
	sessions.AddCommand(create)

	sessions.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "list sessions, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.client(a.cfg.BaseURL).ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			list, err := client.Decode[model.SessionList](p)
			if err != nil {
				return err
			}
			return a.render(p, func(tw table.Writer) {
				tw.AppendHeader(table.Row{"ID", "Status", "Stage", "URL", "Style", "Created"})
				for _, s := range list.Items {
					tw.AppendRow(table.Row{s.ID, s.Status, s.Stage, s.URL, s.Style, s.CreatedAt})
				}
				tw.AppendFooter(table.Row{"", "", "", "", "Total", len(list.Items)})
			})
		},
	})

	sessions.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "show a session and its pipeline steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.client(a.cfg.BaseURL).GetSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			detail, err := client.Decode[model.SessionDetail](p)
			if err != nil {
				return err
			}
			return a.render(p, func(tw table.Writer) {
				s := detail.Session
				tw.SetTitle("Session %d", s.ID)
				tw.AppendHeader(table.Row{"Step", "Status", "Message", "Updated"})
				for _, st := range detail.Steps {
					tw.AppendRow(table.Row{st.Step, st.Status, st.Message, st.UpdatedAt})
				}
				tw.AppendFooter(table.Row{"session", s.Status, s.Error, s.UpdatedAt})
			})
		},
	})

	sessions.AddCommand(&cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "delete a session",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.client(a.cfg.BaseURL).DeleteSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.render(p, keyValueTable(table.Row{"deleted", args[0]}))
		},
	})

	return sessions
}
