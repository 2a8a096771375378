// Package root contains the root command for the application
package root

import (
	"sharathv/tally-connect/internal/cachestore"
	"sharathv/tally-connect/internal/config"
	"sharathv/tally-connect/internal/export"
	"sharathv/tally-connect/internal/transport"
	"sharathv/tally-connect/pkg/tally"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Company string
	Output  string
	Period  string
}

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// Cfg is the resolved configuration, available after PersistentPreRunE
	Cfg *config.Config

	// Client is the shared Tally client, available after PersistentPreRunE
	Client *tally.Client

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "tally-connect",
		Short: "A CLI tool to pull masters, stock positions and vouchers from a Tally endpoint.",
		Long: `tally-connect talks to the XML reporting interface of a running Tally
instance and exports company masters, stock positions and voucher
registers to CSV.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to tally-connect!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()

			cfg, err := config.InitializeConfig()
			if err != nil {
				return err
			}
			Cfg = cfg
			Log = config.ConfigureLoggingFromConfig(cfg)

			// Set the configured logger everywhere
			transport.SetLogger(Log)
			cachestore.SetLogger(Log)
			export.SetLogger(Log)

			if cfg.CSV.Delimiter != "" {
				export.SetDelimiter([]rune(cfg.CSV.Delimiter)[0])
			}
			if SharedFlags.Company == "" {
				SharedFlags.Company = cfg.Tally.Company
			}

			Client = tally.NewClient(cfg, Log)
			return nil
		},
	}

	// Common flags accessible to all commands
	SharedFlags = CommonFlags{}
)

// QueryOptions translates the shared period flag into client options.
func QueryOptions() []tally.QueryOption {
	if SharedFlags.Period == "" {
		return nil
	}
	return []tally.QueryOption{tally.WithPeriod(SharedFlags.Period)}
}

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Company, "company", "c", "", "Company name (defaults to tally.company from configuration)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output CSV file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Period, "period", "p", "", "Reporting period token, e.g. FY23 or CY2023 H1")
}
