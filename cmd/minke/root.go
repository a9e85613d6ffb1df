package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/zx06/minke/internal/config"
	"github.com/zx06/minke/internal/errors"
	"github.com/zx06/minke/internal/log"
	"github.com/zx06/minke/internal/output"
)

// Build-time variables (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Config holds the resolved configuration
type Config struct {
	FormatStr      string
	ConfigStr      string
	LogLevelStr    string
	StoreDriverStr string
	StorePathStr   string
	Resolved       config.Resolved
	Logger         *slog.Logger
}

// GlobalConfig holds the global configuration state
var GlobalConfig = &Config{}

// IO 是命令共享的输入输出。
type IO struct {
	In io.Reader
	W  *output.Writer
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "minke",
		Short:         "Keep remote-server credentials in the OS secret store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// CLI > ENV > Config
			configSet := cmd.Flags().Changed("config")
			if configSet && GlobalConfig.ConfigStr == "" {
				return errors.New(errors.CodeCfgInvalid, "config path is empty", nil)
			}
			env, xe := config.ReadEnv(nil)
			if xe != nil {
				return xe
			}

			r, xe := config.Resolve(config.Options{
				ConfigPath:        GlobalConfig.ConfigStr,
				CLIFormat:         GlobalConfig.FormatStr,
				CLIFormatSet:      cmd.Flags().Changed("format"),
				CLILogLevel:       GlobalConfig.LogLevelStr,
				CLILogLevelSet:    cmd.Flags().Changed("log-level"),
				CLIStoreDriver:    GlobalConfig.StoreDriverStr,
				CLIStoreDriverSet: cmd.Flags().Changed("store-driver"),
				CLIStorePath:      GlobalConfig.StorePathStr,
				CLIStorePathSet:   cmd.Flags().Changed("store-path"),
				Env:               env,
			})
			if xe != nil {
				return xe
			}
			GlobalConfig.Resolved = r
			GlobalConfig.FormatStr = r.Format

			level, xe := log.ParseLevel(r.LogLevel)
			if xe != nil {
				return xe
			}
			GlobalConfig.Logger = log.New(cmd.ErrOrStderr(), level)
			GlobalConfig.Logger.Debug("config resolved",
				"config_path", r.ConfigPath,
				"store_driver", r.StoreDriver,
				"store_path", r.StorePath,
				"keyring_service", r.KeyringService,
			)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&GlobalConfig.ConfigStr, "config", "", "Config file path (YAML); default: ./minke.yaml or $HOME/.config/minke/minke.yaml")
	pf.StringVarP(&GlobalConfig.FormatStr, "format", "f", "auto", "Output format: json|yaml|table|csv|auto")
	pf.StringVar(&GlobalConfig.LogLevelStr, "log-level", "warn", "Log level on stderr: debug|info|warn|error")
	pf.StringVar(&GlobalConfig.StoreDriverStr, "store-driver", "file", "Config store backend for tags: file|sqlite")
	pf.StringVar(&GlobalConfig.StorePathStr, "store-path", "", "Config store path (default under the user config dir)")

	return root
}
