package app

import (
	"github.com/zx06/minke/internal/errors"
	"github.com/zx06/minke/internal/output"
	"github.com/zx06/minke/internal/spec"
)

type App struct {
	Version string
	Commit  string
	Date    string
}

func New(version, commit, date string) App {
	return App{Version: version, Commit: commit, Date: date}
}

func (a App) BuildSpec() spec.Spec {
	globalFlags := []spec.FlagSpec{
		{Name: "config", Env: "MINKE_CONFIG", Default: "", Description: "Config file path (YAML); default: ./minke.yaml or $HOME/.config/minke/minke.yaml"},
		{Name: "format", Shorthand: "f", Env: "MINKE_FORMAT", Default: "auto", Description: "Output format: json|yaml|table|csv|auto"},
		{Name: "log-level", Env: "MINKE_LOG_LEVEL", Default: "warn", Description: "Log level on stderr: debug|info|warn|error"},
		{Name: "store-driver", Env: "MINKE_CONFIG_STORE_DRIVER", Default: "file", Description: "Config store backend for tags: file|sqlite"},
		{Name: "store-path", Env: "MINKE_CONFIG_STORE_PATH", Default: "", Description: "Config store path; default under the user config dir"},
	}
	return spec.Spec{
		SchemaVersion: output.SchemaVersion,
		GlobalFlags:   globalFlags,
		Commands: []spec.CommandSpec{
			{Name: "list", Description: "List servers (passwords redacted)", Flags: []spec.FlagSpec{
				{Name: "tag", Description: "Only servers carrying this tag"},
			}},
			{Name: "show", Args: "<ip>", Description: "Show one server", Flags: []spec.FlagSpec{
				{Name: "reveal", Default: "false", Description: "Include the password in output"},
			}},
			{Name: "add", Description: "Add a server, or replace the one with the same ip", Mutates: true, Flags: []spec.FlagSpec{
				{Name: "ip", Description: "Server address (unique key)"},
				{Name: "user", Description: "Login user"},
				{Name: "password", Description: "Password; '-' reads it from stdin; omitted prompts on a TTY"},
				{Name: "note", Description: "Free-form note"},
				{Name: "tag", Description: "Tag (repeatable)"},
			}},
			{Name: "delete", Args: "<ip>", Description: "Delete a server", Mutates: true},
			{Name: "import", Args: "<file>", Description: "Merge servers from an export file", Mutates: true, Flags: []spec.FlagSpec{
				{Name: "on-conflict", Default: "ask", Description: "Conflict policy: ask|overwrite|skip (ask needs a TTY, otherwise skip)"},
			}},
			{Name: "export", Args: "<file>", Description: "Write all servers, passwords included, to a file (mode 0600)"},
			{Name: "clear", Description: "Remove all servers and tags", Mutates: true, Flags: []spec.FlagSpec{
				{Name: "yes", Default: "false", Description: "Skip the confirmation prompt"},
			}},
			{Name: "tags list", Description: "List known tags"},
			{Name: "tags add", Args: "<tag>...", Description: "Add tags to the tag set", Mutates: true},
			{Name: "probe", Args: "<ip>", Description: "Check the stored credentials with an SSH login", Flags: []spec.FlagSpec{
				{Name: "port", Default: "22", Description: "SSH port (config: ssh.port)"},
				{Name: "skip-host-key", Default: "false", Description: "Skip known_hosts verification (dangerous)"},
			}},
			{Name: "mcp server", Description: "Run the read-only MCP server", Flags: []spec.FlagSpec{
				{Name: "transport", Env: "MINKE_MCP_TRANSPORT", Default: "stdio", Description: "stdio|streamable_http"},
				{Name: "http-addr", Env: "MINKE_MCP_HTTP_ADDR", Default: "127.0.0.1:8787", Description: "Streamable HTTP listen address"},
				{Name: "http-auth-token", Env: "MINKE_MCP_HTTP_AUTH_TOKEN", Description: "Bearer token; supports keyring:<key>"},
			}},
			{Name: "spec", Description: "Export tool spec for AI/agents"},
			{Name: "version", Description: "Print version information"},
		},
		ErrorCodes: errors.AllCodes(),
	}
}

type VersionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
}

func (a App) VersionInfo() VersionInfo {
	return VersionInfo{Version: a.Version, Commit: a.Commit, Date: a.Date}
}
