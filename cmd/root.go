package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flames/config"
	"flames/logger"
)

const app = "flames"

var (
	cfgFile string
	debug   bool

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "FLAMES couple compatibility predictor",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute executes the root command and prints its error, if any, to stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		rootCmd.PrintErrln(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file")
	rootCmd.PersistentFlags().StringP("model", "m", "", "classifier artifact (overrides model.path)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "verbose/debug output")
}

// loadConfig reads the config file and applies persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		cfg.Model.Path = model
	}
	if debug {
		cfg.Log.Level = "debug"
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(logger.Options{
		Level:      cfg.Log.Level,
		JSON:       cfg.Log.JSON,
		Path:       cfg.Log.Path,
		MaxSize:    cfg.Log.MaxSize,
		MaxAge:     cfg.Log.MaxAge,
		MaxBackups: cfg.Log.MaxBackups,
	})
}
