package cmd

import (
	"github.com/KarpovAlexandrGo/task-tracker/internal/app"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "HTTP port (overrides http.port)")
	serveCmd.Flags().String("storage", "", "storage driver: memory, postgres or sqlite")
}

func runServe(cmd *cobra.Command, _ []string) error {
	bindServeFlags(cmd)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := app.NewApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	return a.Run(cmd.Context())
}

// bindServeFlags copies explicitly set flags over config values.
func bindServeFlags(cmd *cobra.Command) {
	for key, flag := range map[string]string{"http.port": "port", "storage.driver": "storage"} {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		viper.Set(key, f.Value.String())
	}
}
