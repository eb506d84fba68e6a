package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/okian/transcript/internal/client"
	"github.com/okian/transcript/internal/model"
)

func (a *app) configCmd() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "show or change the backend configuration",
	}

	cfg.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "show whether an API key is configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.client(a.cfg.BaseURL).GetConfig(cmd.Context())
			if err != nil {
				return err
			}
			status, err := client.Decode[model.ConfigStatus](p)
			if err != nil {
				return err
			}
			return a.render(p, keyValueTable(
				table.Row{"has_key", status.HasKey},
				table.Row{"api_key", status.APIKeyMasked},
			))
		},
	})

	var apiKey string
	save := &cobra.Command{
		Use:   "save",
		Short: "store the API key used by the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := model.ConfigInput{APIKey: apiKey}
			if err := model.Validate(in); err != nil {
				return err
			}
			p, err := a.client(a.cfg.BaseURL).SaveConfig(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.render(p, keyValueTable(table.Row{"saved", true}))
		},
	}
	save.Flags().StringVar(&apiKey, "api-key", "", "API key to store")
	cfg.AddCommand(save)

	return cfg
}
