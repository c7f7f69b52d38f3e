package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/gridflow/internal/app"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables read as configuration.
const EnvPrefix = "GRIDFLOW"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"script":             "script",
	"entry":              "entry",
	"mode":               "mode",
	"log-level":          "log_level",
	"log-format":         "log_format",
	"publisher":          "publisher",
	"publish-dir":        "publish_dir",
	"publish-url":        "publish_url",
	"socketio-url":       "socketio_url",
	"socketio-namespace": "socketio_namespace",
	"diagnostics-port":   "diagnostics_port",
}

const description = `gridflow - evaluates workflow scripts and runs their entry component.

SCRIPT_PATH is a single .hcl file or a directory containing .hcl files.
Every option can also be set through GRIDFLOW_<KEY> environment variables
(for example GRIDFLOW_LOG_LEVEL) or a config file passed with --config.`

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	var (
		config   *app.Config
		cfgFile  string
		parseErr error
	)

	cmd := &cobra.Command{
		Use:           "gridflow [flags] [SCRIPT_PATH]",
		Short:         "Run a gridflow workflow script.",
		Long:          description,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, positional []string) error {
			if cfgFile != "" {
				v.SetConfigFile(cfgFile)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
				}
			}
			if len(positional) > 0 && !cmd.Flags().Changed("script") {
				v.Set("script", positional[0])
			}

			var raw app.Config
			if err := v.Unmarshal(&raw); err != nil {
				return fmt.Errorf("failed to decode configuration: %w", err)
			}
			if raw.ScriptPath == "" {
				slog.Debug("No script path provided, printing usage and exiting.")
				return cmd.Usage()
			}
			config, parseErr = app.NewConfig(raw)
			return nil
		},
	}
	cmd.SetArgs(args)
	cmd.SetOut(output)
	cmd.SetErr(output)

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "Path to a config file (yaml, json or toml).")
	flags.StringP("script", "s", "", "Path to the script file or directory.")
	flags.StringP("entry", "e", "", "Name of the component to invoke instead of the unnamed workflow.")
	flags.String("mode", "module", "Declaration mode. Options: 'module' or 'legacy'.")
	flags.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flags.String("publisher", app.PublisherLog, "Default publish backend. Options: 'log', 'print', 'dir', 'http', 'socketio'.")
	flags.String("publish-dir", "", "Directory the 'dir' publisher writes into.")
	flags.String("publish-url", "", "Default URL the 'http' publisher posts to.")
	flags.String("socketio-url", "", "Server URL of the 'socketio' publisher.")
	flags.String("socketio-namespace", "/", "Namespace of the 'socketio' publisher.")
	flags.Int("diagnostics-port", 0, "Port for the diagnostics HTTP server. 0 is disabled.")

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag '%s': %v", name, err))
		}
	}

	if err := cmd.Execute(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if parseErr != nil {
		return nil, false, &ExitError{Code: 2, Message: parseErr.Error()}
	}
	if config == nil {
		// Help was requested or no script was given.
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "script", config.ScriptPath, "entry", config.Entry, "mode", config.Mode)
	return config, false, nil
}
