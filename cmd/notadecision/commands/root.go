// Package commands implements the CLI commands for notadecision.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/notadecision/internal/config"
	"github.com/jmylchreest/notadecision/internal/logger"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "notadecision",
	Short: "Extract the proposed decision from Nota documents",
	Long: `Notadecision extracts the "VOORSTEL VAN BESLISSING" section from the
PDF of a Nota and renders it as minimal paragraph markup.

Examples:
  # Run the HTTP service
  notadecision serve --addr :8080

  # Extract the decision of one or more Notas by id
  notadecision extract 5F2A1B3C 6E4D2A1F --format jsonl

  # Clean a local PDF or text file
  notadecision clean nota.pdf --stats`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Init(logger.Options{
			Debug: viper.GetBool(config.KeyDebug),
			Quiet: viper.GetBool(config.KeyQuiet),
			JSON:  viper.GetBool(config.KeyLogJSON),
		})
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default $HOME/.notadecision.yaml)")
	flags.Bool("debug", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "suppress progress output")
	flags.Bool("log-json", false, "log as JSON")
	flags.String("rules", "", "YAML file with extraction rules")
	flags.String("mode", "", "formatting mode: structured, simple")

	_ = viper.BindPFlag(config.KeyDebug, flags.Lookup("debug"))
	_ = viper.BindPFlag(config.KeyQuiet, flags.Lookup("quiet"))
	_ = viper.BindPFlag(config.KeyLogJSON, flags.Lookup("log-json"))
	_ = viper.BindPFlag(config.KeyRulesFile, flags.Lookup("rules"))
	_ = viper.BindPFlag(config.KeyMode, flags.Lookup("mode"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".notadecision")
		viper.SetConfigType("yaml")
	}

	config.SetDefaults(viper.GetViper())

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves the configuration from flags, file and environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return nil, err
	}
	return cfg, nil
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// logInfo prints an info message to stderr (unless quiet mode).
func logInfo(format string, args ...any) {
	if !viper.GetBool(config.KeyQuiet) {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
