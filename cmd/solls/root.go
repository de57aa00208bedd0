package main

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/odvcencio/solls/internal/config"
	"github.com/odvcencio/solls/internal/logger"
)

// exitCodeError carries a process exit code other than 1.
type exitCodeError struct {
	code int
	err  error
}

func (e exitCodeError) Error() string {
	if e.err == nil {
		return "command failed"
	}
	return e.err.Error()
}

func (e exitCodeError) Unwrap() error { return e.err }

func (e exitCodeError) ExitCode() int {
	if e.code <= 0 {
		return 1
	}
	return e.code
}

// app is the state shared by all subcommands once flags are parsed.
type app struct {
	configFile string
	cfg        *config.Config
	logs       io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "solls",
		Short:         "Go-to-definition for Solidity",
		Long:          "solls resolves Solidity identifiers to their declarations, as a language server or from the command line.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.logs != nil {
				return a.logs.Close()
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default ./solls.yaml when present)")
	flags.String("root", "", "project root; source unit names are relative to it")
	flags.StringSlice("include-path", nil, "extra directory searched for imports (repeatable)")
	flags.StringSlice("remap", nil, "import remapping [context:]prefix=target (repeatable)")
	flags.String("log-level", "", "log level: debug, info, warn, error or off")
	flags.String("log-file", "", "write logs to this file instead of stderr")

	root.AddCommand(newServeCmd(a), newDefinitionCmd(a), newVersionCmd())
	return root
}

// load reads configuration for cmd and installs the loggers.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(viper.New(), a.configFile, cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg

	closer, err := logger.Configure(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	a.logs = closer

	var path *string
	if cfg.Log.File != "" {
		path = &cfg.Log.File
	}
	commonlog.Configure(commonlogVerbosity(cfg.Log.Level), path)
	return nil
}

// commonlogVerbosity maps a log level onto commonlog's verbosity scale,
// which runs from -4 (nothing) to 2 (debug).
func commonlogVerbosity(level string) int {
	switch level {
	case "debug", "trace":
		return 2
	case "", "info":
		return 1
	case "warn", "warning":
		return -1
	case "error":
		return -2
	default:
		return -4
	}
}
