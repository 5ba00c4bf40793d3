package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Microsoft/data-accelerator/internal/infrastructure/sensitivedata"
)

var (
	cfgFile string
	verbose bool

	// secrets collects every plaintext secret the run touches; the log
	// writer scrubs them from stderr.
	secrets = sensitivedata.NewProvider()
)

// rootCmd is the application entry point.
var rootCmd = &cobra.Command{
	Use:   "datax-configgen",
	Short: "Generate DataX deployment configs from authored flows",
	Long: `datax-configgen turns authored DataX streaming flows into deployment
configs. Plaintext secrets in a flow are moved into the runtime vault and
replaced by secret references, rule outputs are grouped into runtime sinks,
and the resulting token table is written per flow.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		setupLogging()
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.datax/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().String("execution-mode", "", "override execution_mode: cloud or local")
	rootCmd.PersistentFlags().String("runtime-vault", "", "override runtime_keyvault_name")

	_ = viper.BindPFlag("execution-mode", rootCmd.PersistentFlags().Lookup("execution-mode"))
	_ = viper.BindPFlag("runtime-vault", rootCmd.PersistentFlags().Lookup("runtime-vault"))
}

// initConfig wires flag overrides to DATAX_* environment variables.
func initConfig() {
	viper.SetEnvPrefix("datax")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// configPath returns the system config file: --config, then DATAX_CONFIG,
// then ~/.datax/config.yaml.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := viper.GetString("config"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		slog.Debug("failed to find home directory", "error", err)
		return ""
	}
	return filepath.Join(home, ".datax", "config.yaml")
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	// Using TextHandler for CLI friendliness
	logger := slog.New(slog.NewTextHandler(sensitivedata.NewWriter(os.Stderr, secrets), &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
