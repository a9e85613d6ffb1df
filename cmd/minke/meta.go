package main

import (
	"github.com/spf13/cobra"

	"github.com/zx06/minke/internal/app"
	"github.com/zx06/minke/internal/errors"
	"github.com/zx06/minke/internal/output"
)

// NewSpecCommand creates the spec command
func NewSpecCommand(a *app.App, w *output.Writer) *cobra.Command {
	var only string
	cmd := &cobra.Command{
		Use:   "spec",
		Short: "Export tool spec for AI/agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}
			s := a.BuildSpec()
			if only != "" {
				c, ok := s.Command(only)
				if !ok {
					return errors.New(errors.CodeCfgInvalid, "unknown command", map[string]any{"command": only})
				}
				return w.WriteOK(format, c)
			}
			return w.WriteOK(format, s)
		},
	}
	cmd.Flags().StringVar(&only, "command", "", "Only describe this command (e.g. \"tags add\")")
	return cmd
}

// NewVersionCommand creates the version command
func NewVersionCommand(a *app.App, w *output.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}
			v := a.VersionInfo()
			if format.Human() {
				return w.WriteOK(format, map[string]any{"version": v.Version, "commit": v.Commit, "date": v.Date})
			}
			return w.WriteOK(format, v)
		},
	}
}
