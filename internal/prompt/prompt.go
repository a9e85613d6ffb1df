// Package prompt 提供交互式输入：导入冲突确认、危险操作确认与密码输入。
// 表单由 charmbracelet/huh 渲染；非 TTY 环境下由调用方决定降级策略。
package prompt

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/zx06/minke/internal/registry"
)

// ErrAborted 表示用户取消了提示（Ctrl+C / Esc）。
var ErrAborted = stderrors.New("prompt aborted")

// IsInteractive 判断 stdin 与 stderr 是否都连接到终端。
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}

// Asker 向用户提一个是/否问题。
type Asker func(ctx context.Context, q Question) (bool, error)

type Question struct {
	Title       string
	Description string
	Affirmative string
	Negative    string
}

// Options 控制表单的 IO；零值使用进程的 stdin/stderr。
type Options struct {
	In         io.Reader
	Out        io.Writer
	Accessible bool
}

func (o Options) form(groups ...*huh.Group) *huh.Form {
	f := huh.NewForm(groups...).WithAccessible(o.Accessible)
	if o.In != nil {
		f = f.WithInput(o.In)
	}
	out := o.Out
	if out == nil {
		out = os.Stderr
	}
	return f.WithOutput(out)
}

// HuhAsker 用 huh confirm 表单实现 Asker。
func HuhAsker(opts Options) Asker {
	return func(ctx context.Context, q Question) (bool, error) {
		var answer bool
		confirm := huh.NewConfirm().
			Title(q.Title).
			Description(q.Description).
			Value(&answer)
		if q.Affirmative != "" {
			confirm = confirm.Affirmative(q.Affirmative)
		}
		if q.Negative != "" {
			confirm = confirm.Negative(q.Negative)
		}
		if err := opts.form(huh.NewGroup(confirm)).RunWithContext(ctx); err != nil {
			return false, translate(err)
		}
		return answer, nil
	}
}

// ConflictResolver 对每个冲突的 ip 询问一次是否覆盖，实现 registry.Resolver。
type ConflictResolver struct {
	ask Asker
}

func NewConflictResolver(ask Asker) *ConflictResolver {
	return &ConflictResolver{ask: ask}
}

// ConflictQuestion 是导入冲突时展示的问题。
func ConflictQuestion(ip string) Question {
	return Question{
		Title:       "Conflict",
		Description: fmt.Sprintf("Server with IP %s already exists. Overwrite?", ip),
		Affirmative: "Overwrite",
		Negative:    "Skip",
	}
}

func (c *ConflictResolver) Resolve(ctx context.Context, ip string) (registry.Decision, error) {
	ok, err := c.ask(ctx, ConflictQuestion(ip))
	if err != nil {
		return registry.Skip, err
	}
	if ok {
		return registry.Overwrite, nil
	}
	return registry.Skip, nil
}

// Confirm 询问一个危险操作是否继续；取消视为否，并返回 ErrAborted。
func Confirm(ctx context.Context, ask Asker, title, description string) (bool, error) {
	ok, err := ask(ctx, Question{Title: title, Description: description, Affirmative: "Yes", Negative: "No"})
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Password 用隐藏回显的输入框读取一个非空密码。
func Password(ctx context.Context, opts Options, title string) (string, error) {
	var pw string
	input := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Validate(func(s string) error {
			if s == "" {
				return stderrors.New("password must not be empty")
			}
			return nil
		}).
		Value(&pw)
	if err := opts.form(huh.NewGroup(input)).RunWithContext(ctx); err != nil {
		return "", translate(err)
	}
	return pw, nil
}

// ReadPasswordLine 从非交互输入读取第一行作为密码（用于 --password -）。
func ReadPasswordLine(r io.Reader) (string, error) {
	b, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(string(b), "\n")
	line = strings.TrimRight(line, "\r")
	if line == "" {
		return "", stderrors.New("password must not be empty")
	}
	return line, nil
}

func translate(err error) error {
	if stderrors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	return err
}
