package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lectern/internal/dashboard"
)

func newDashboardCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Serve the dataset statistics dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.componentLogger("dashboard")
			if err != nil {
				return err
			}

			address := strings.TrimSpace(bind)
			if address == "" {
				address = cfg.Paths.DashboardBind
			}

			server, err := dashboard.NewServer(cfg.Paths.ManifestPath, logger)
			if err != nil {
				return err
			}
			if err := server.Start(cmd.Context(), address); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Dashboard listening on http://%s (Ctrl-C to stop)\n", server.Addr())
			<-cmd.Context().Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (defaults to config)")
	return cmd
}
