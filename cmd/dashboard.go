package cmd

import (
	"github.com/smart-agence/crm-service/internal/application"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Serve the web dashboard against API_BASE_URL",
	RunE:  runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	app, err := application.NewDashboard(cfg)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()
	return app.Run(ctx)
}
