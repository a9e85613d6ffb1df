package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/zx06/minke/internal/errors"
	"github.com/zx06/minke/internal/prompt"
	"github.com/zx06/minke/internal/registry"
)

// serverList 是 list 的输出，table/csv 下按列展示。
type serverList struct {
	Servers []registry.Server `json:"servers" yaml:"servers"`
}

func (l serverList) ToTableData() ([]string, []map[string]any, bool) {
	rows := make([]map[string]any, len(l.Servers))
	for i, s := range l.Servers {
		rows[i] = map[string]any{
			"ip":       s.IP,
			"user":     s.User,
			"password": s.Password,
			"note":     s.Note,
			"tags":     strings.Join(s.Tags, ","),
		}
	}
	return []string{"ip", "user", "password", "note", "tags"}, rows, true
}

func (serverList) RowNoun() string { return "servers" }

// NewListCommand creates the list command
func NewListCommand(cio *IO) *cobra.Command {
	var tag string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List servers (passwords redacted)",
		Args:  cobra.NoArgs,
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

			servers := registry.FilterByTag(s.Registry.Servers(), tag)
			for i := range servers {
				servers[i] = servers[i].Redacted()
			}
			return cio.W.WriteOK(format, serverList{Servers: servers})
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "Only servers carrying this tag")
	return cmd
}

// NewShowCommand creates the show command
func NewShowCommand(cio *IO) *cobra.Command {
	var reveal bool
	cmd := &cobra.Command{
		Use:   "show <ip>",
		Short: "Show one server",
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

			srv, ok := s.Registry.Get(args[0])
			if !ok {
				return errors.New(errors.CodeServerNotFound, "server not found", map[string]any{"ip": args[0]})
			}
			if !reveal {
				srv = srv.Redacted()
			}
			return cio.W.WriteOK(format, srv)
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "Include the password in output")
	return cmd
}

type addFlags struct {
	ip       string
	user     string
	password string
	note     string
	tags     []string
}

// NewAddCommand creates the add command
func NewAddCommand(cio *IO) *cobra.Command {
	f := &addFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a server, or replace the one with the same ip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, f, cmd.Flags().Changed("password"), cio)
		},
	}
	cmd.Flags().StringVar(&f.ip, "ip", "", "Server address (unique key)")
	cmd.Flags().StringVar(&f.user, "user", "", "Login user")
	cmd.Flags().StringVar(&f.password, "password", "", "Password; '-' reads it from stdin (omit to be prompted)")
	cmd.Flags().StringVar(&f.note, "note", "", "Free-form note")
	cmd.Flags().StringArrayVar(&f.tags, "tag", nil, "Tag (repeatable)")
	_ = cmd.MarkFlagRequired("ip")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func runAdd(cmd *cobra.Command, f *addFlags, passwordSet bool, cio *IO) error {
	format, err := parseOutputFormat(GlobalConfig.FormatStr)
	if err != nil {
		return err
	}
	ctx := cmdContext(cmd)
	if strings.TrimSpace(f.ip) == "" || strings.TrimSpace(f.user) == "" {
		return errors.New(errors.CodeCfgInvalid, "ip and user must not be empty", nil)
	}

	password := f.password
	switch {
	case passwordSet && password == "-":
		pw, err := prompt.ReadPasswordLine(cio.In)
		if err != nil {
			return errors.Wrap(errors.CodeCfgInvalid, "failed to read password from stdin", nil, err)
		}
		password = pw
	case passwordSet:
		if password == "" {
			return errors.New(errors.CodeCfgInvalid, "password must not be empty", nil)
		}
	case isInteractive():
		pw, err := prompt.Password(ctx, prompt.Options{}, "Password for "+f.user+"@"+f.ip)
		if err != nil {
			return errors.Wrap(errors.CodeCfgInvalid, "password prompt cancelled", nil, err)
		}
		password = pw
	default:
		return errors.New(errors.CodeCfgInvalid, "password is required; pass --password - to read it from stdin", nil)
	}

	s, err := openWriteSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	_, existed := s.Registry.Get(f.ip)
	srv := registry.Server{IP: f.ip, User: f.user, Password: password, Note: f.note, Tags: f.tags}
	if err := s.Registry.Upsert(ctx, srv); err != nil {
		return err
	}
	// UI 中新建的 tag 会进入 tag 集合
	if len(f.tags) > 0 {
		if err := s.Registry.AddTags(ctx, f.tags...); err != nil {
			return err
		}
	}

	action := "added"
	if existed {
		action = "updated"
	}
	return cio.W.WriteOK(format, map[string]any{"ip": f.ip, "action": action})
}

// NewDeleteCommand creates the delete command
func NewDeleteCommand(cio *IO) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <ip>",
		Aliases: []string{"rm"},
		Short:   "Delete a server",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}
			ctx := cmdContext(cmd)
			s, err := openWriteSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			removed, err := s.Registry.Delete(ctx, args[0])
			if err != nil {
				return err
			}
			if !removed {
				printer(cmd).Warn("no server with ip %s", args[0])
			}
			return cio.W.WriteOK(format, map[string]any{"ip": args[0], "deleted": removed})
		},
	}
}
