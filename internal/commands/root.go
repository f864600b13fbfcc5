package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"evalgo.org/fibertrack/internal/config"
	"evalgo.org/fibertrack/internal/logging"
	"evalgo.org/fibertrack/internal/storage"
	"evalgo.org/fibertrack/internal/version"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
	cfg       *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "fibertrack",
	Short: "FTTH network inventory",
	Long: `Fibertrack keeps the inventory of a fiber-to-the-home network:
sites, splitter cabinets, cables, tubes, cores, distribution points and
subscriber drops, with archive/delete lifecycles and hierarchy reports.

Run the REST API with "fibertrack server" or inspect the database directly
with "fibertrack stats" and "fibertrack tree".`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	rootCmd.Version = version.Version
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, text)")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "%s" .Version}}
`)
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Flags win over file and environment
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
}

// newLogger builds the process logger. CLI commands other than server log to
// stderr so their stdout stays machine readable.
func newLogger(cmd *cobra.Command) *slog.Logger {
	logger := logging.New(cfg.Logging, cmd.ErrOrStderr())
	slog.SetDefault(logger)
	return logger
}

// openStorage connects to the configured database.
func openStorage(cmd *cobra.Command) (*storage.Storage, *slog.Logger, error) {
	logger := newLogger(cmd)
	store, err := storage.New(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return store, logger, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		out := cmd.OutOrStdout()

		verbose, _ := cmd.Flags().GetBool("verbose")
		if !verbose {
			fmt.Fprintln(out, info.String())
			return nil
		}

		data, err := yaml.Marshal(info)
		if err != nil {
			return err
		}
		fmt.Fprint(out, string(data))
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolP("verbose", "v", false, "verbose version output")
}
