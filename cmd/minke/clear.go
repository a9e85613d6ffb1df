package main

import (
	stderrors "errors"

	"github.com/spf13/cobra"

	"github.com/zx06/minke/internal/errors"
	"github.com/zx06/minke/internal/prompt"
)

// NewClearCommand creates the clear command
func NewClearCommand(cio *IO) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all servers and tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}
			ctx := cmdContext(cmd)
			if !yes {
				if !isInteractive() {
					return errors.New(errors.CodeCfgInvalid, "refusing to clear without confirmation; pass --yes", nil)
				}
				ok, err := prompt.Confirm(ctx, newAsker(), "Clear all data?", "Every server and tag will be removed. This cannot be undone.")
				if err != nil && !stderrors.Is(err, prompt.ErrAborted) {
					return errors.Wrap(errors.CodeInternal, "confirmation prompt failed", nil, err)
				}
				if !ok {
					printer(cmd).Warn("clear cancelled")
					return cio.W.WriteOK(format, map[string]any{"cleared": false})
				}
			}

			s, err := openWriteSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Registry.Clear(ctx); err != nil {
				return err
			}
			return cio.W.WriteOK(format, map[string]any{"cleared": true})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
