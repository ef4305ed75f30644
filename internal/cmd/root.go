package cmd

import (
	"github.com/KarpovAlexandrGo/task-tracker/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time with -ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "task-service",
	Short: "Task tracking HTTP service",
	Long: `task-service stores tasks (title, description, due date, status) and
exposes them over a JSON HTTP API with filtering by status and due date.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

// Execute runs the root command. Errors are returned, not printed; main logs
// them.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./configs/config.yaml)")
	rootCmd.AddCommand(serveCmd, migrateCmd, versionCmd)
}

func loadConfig() (config.Config, error) {
	return config.Load(viper.GetViper(), cfgFile)
}
