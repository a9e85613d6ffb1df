package main

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zx06/minke/internal/errors"
	"github.com/zx06/minke/internal/prompt"
	"github.com/zx06/minke/internal/registry"
)

const conflictAsk = "ask"

// NewImportCommand creates the import command
func NewImportCommand(cio *IO) *cobra.Command {
	var onConflict string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Merge servers from an export file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}
			res, err := conflictResolver(cmd, onConflict)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(errors.CodeFileIOFailed, "failed to read import file", map[string]any{"path": args[0]}, err)
			}

			ctx := cmdContext(cmd)
			s, err := openWriteSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			report, err := s.Registry.Import(ctx, data, res)
			if err != nil {
				if format.Human() && errors.HasCode(err, errors.CodeImportInvalid) {
					printer(cmd).Error("import failed: invalid file format", "expected a JSON array of {ip, user, password, note, tags}")
				}
				return err
			}
			if format.Human() {
				p := printer(cmd)
				p.Success("import finished")
				p.Summary("added", len(report.Added))
				p.Summary("overwritten", len(report.Overwritten))
				p.Summary("skipped", len(report.Skipped))
				p.Summary("unchanged", len(report.Unchanged))
			}
			return cio.W.WriteOK(format, report)
		},
	}
	cmd.Flags().StringVar(&onConflict, "on-conflict", conflictAsk, "Conflict policy: ask|overwrite|skip")
	return cmd
}

func conflictResolver(cmd *cobra.Command, policy string) (registry.Resolver, error) {
	if d, ok := registry.ParseDecision(policy); ok {
		return registry.Always(d), nil
	}
	if policy != conflictAsk {
		return nil, errors.New(errors.CodeCfgInvalid, "invalid --on-conflict value",
			map[string]any{"value": policy, "allowed": []string{conflictAsk, registry.Overwrite.String(), registry.Skip.String()}})
	}
	if !isInteractive() {
		printer(cmd).Warn("no terminal for conflict prompts; conflicting servers will be skipped")
		return registry.Always(registry.Skip), nil
	}
	return prompt.NewConflictResolver(newAsker()), nil
}

// NewExportCommand creates the export command
func NewExportCommand(cio *IO) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write all servers, passwords included, to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}
			s, err := openSession(cmdContext(cmd))
			if err != nil {
				return err
			}
			defer s.Close()

			var buf bytes.Buffer
			if err := s.Registry.Export(&buf); err != nil {
				return errors.Wrap(errors.CodeInternal, "failed to encode export", nil, err)
			}
			path := args[0]
			if err := writePrivateFile(path, buf.Bytes()); err != nil {
				return errors.Wrap(errors.CodeFileIOFailed, "failed to write export file", map[string]any{"path": path}, err)
			}
			printer(cmd).Warn("%s contains plaintext passwords", path)
			return cio.W.WriteOK(format, map[string]any{"path": path, "servers": len(s.Registry.Servers())})
		},
	}
}

// writePrivateFile 以 0600 写入，已存在的文件也收紧权限。
func writePrivateFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if err := f.Chmod(0o600); err != nil {
		_ = f.Close()
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
