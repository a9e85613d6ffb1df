package main

import (
	"context"
	stderrors "errors"
	"os"

	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"
	"golang.org/x/term"

	"github.com/zx06/minke/internal/app"
	"github.com/zx06/minke/internal/errors"
	"github.com/zx06/minke/internal/log"
	"github.com/zx06/minke/internal/output"
	"github.com/zx06/minke/internal/prompt"
	"github.com/zx06/minke/internal/secret"
	"github.com/zx06/minke/internal/ui"
)

// 测试中替换
var (
	isInteractive = prompt.IsInteractive
	newAsker      = func() prompt.Asker { return prompt.HuhAsker(prompt.Options{}) }
	secretStore   = func(service string) secret.Store { return secret.NewKeyring(service) }
)

// parseOutputFormat parses and validates the output format string
func parseOutputFormat(s string) (output.Format, error) {
	f := output.Format(s)
	if !output.IsValid(f) {
		return "", errors.New(errors.CodeCfgInvalid, "invalid output format", map[string]any{"format": s})
	}
	return resolveAuto(f), nil
}

// resolveFormatForError resolves the format for error output
func resolveFormatForError(s string) output.Format {
	f := output.Format(s)
	if !output.IsValid(f) {
		f = output.FormatAuto
	}
	return resolveAuto(f)
}

// resolveAuto resolves "auto" format to appropriate format based on TTY
func resolveAuto(f output.Format) output.Format {
	if f != output.FormatAuto {
		return f
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return output.FormatTable
	}
	return output.FormatJSON
}

// normalizeErr normalizes any error to XError
func normalizeErr(err error) *errors.XError {
	if xe, ok := errors.As(err); ok {
		return xe
	}
	// Preserve original error message
	return errors.Wrap(errors.CodeInternal, err.Error(), nil, err)
}

// errorHint 为已知的存储限制给出一行提示，其余错误返回空。
func errorHint(xe *errors.XError) string {
	if xe.Code == errors.CodeStorageWriteFailed && stderrors.Is(xe, keyring.ErrSetDataTooBig) {
		return "the server list no longer fits in one OS keychain item; delete unused servers (export first to keep a copy)"
	}
	return ""
}

// openSession 按已解析的配置打开 registry（只读命令）。
func openSession(ctx context.Context) (*app.Session, error) {
	return openSessionWith(ctx, false)
}

// openWriteSession 在持有 registry 锁的情况下打开，供会修改数据的命令使用。
func openWriteSession(ctx context.Context) (*app.Session, error) {
	return openSessionWith(ctx, true)
}

func openSessionWith(ctx context.Context, exclusive bool) (*app.Session, error) {
	logger := GlobalConfig.Logger
	if logger == nil {
		logger = log.Discard()
	}
	s, xe := app.OpenSession(ctx, app.SessionOptions{
		Config:    GlobalConfig.Resolved,
		Logger:    logger,
		Secrets:   secretStore(GlobalConfig.Resolved.KeyringService),
		Exclusive: exclusive,
	})
	if xe != nil {
		return nil, xe
	}
	return s, nil
}

// printer 返回 stderr 上的状态行输出；非 TTY 时不加样式。
func printer(cmd *cobra.Command) ui.Printer {
	return ui.New(cmd.ErrOrStderr(), !isInteractive())
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
