package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/zx06/minke/internal/errors"
	"github.com/zx06/minke/internal/kvstore"
	"github.com/zx06/minke/internal/secret"
)

const (
	DefaultFormat      = "auto"
	DefaultLogLevel    = "warn"
	DefaultSSHPort     = 22
	DefaultSSHTimeout  = 10 * time.Second
	DefaultMCPHTTPAddr = "127.0.0.1:8787"
	AppDirName         = "minke"
)

// Resolve 合并配置：CLI > ENV > Config > 默认值。
func Resolve(opts Options) (Resolved, *errors.XError) {
	opts.fillDirs()

	// 1) 读取配置文件（如有）
	cfg, cfgPath, xe := LoadConfig(opts)
	if xe != nil {
		return Resolved{}, xe
	}

	// 2) format / log level
	format := pick(opts.CLIFormatSet, opts.CLIFormat, opts.Env.Format, cfg.Format, DefaultFormat)
	logLevel := pick(opts.CLILogLevelSet, opts.CLILogLevel, opts.Env.LogLevel, cfg.LogLevel, DefaultLogLevel)

	// 3) secret store service 名
	service := firstNonEmpty(opts.Env.KeyringService, cfg.Keyring.Service, secret.DefaultService)

	// 4) config store
	driver := strings.ToLower(pick(opts.CLIStoreDriverSet, opts.CLIStoreDriver, opts.Env.StoreDriver, cfg.ConfigStore.Driver, kvstore.DriverFile))
	if driver != kvstore.DriverFile && driver != kvstore.DriverSQLite {
		return Resolved{}, errors.New(errors.CodeCfgInvalid, "unsupported config store driver",
			map[string]any{"driver": driver, "supported": []string{kvstore.DriverFile, kvstore.DriverSQLite}})
	}
	storePath := pick(opts.CLIStorePathSet, opts.CLIStorePath, opts.Env.StorePath, cfg.ConfigStore.Path, "")
	if storePath == "" {
		if opts.UserConfigDir == "" {
			return Resolved{}, errors.New(errors.CodeCfgInvalid, "cannot determine config store path; set config_store.path", nil)
		}
		storePath = kvstore.DefaultPath(filepath.Join(opts.UserConfigDir, AppDirName), driver)
	} else if !filepath.IsAbs(storePath) {
		storePath = filepath.Join(opts.WorkDir, storePath)
	}

	// 5) ssh
	sshCfg := cfg.SSH
	if sshCfg.Port == 0 {
		sshCfg.Port = DefaultSSHPort
	}
	if sshCfg.Port < 0 || sshCfg.Port > 65535 {
		return Resolved{}, errors.New(errors.CodeCfgInvalid, "invalid ssh port", map[string]any{"port": sshCfg.Port})
	}
	if sshCfg.Timeout <= 0 {
		sshCfg.Timeout = DefaultSSHTimeout
	}

	// 6) mcp
	mcpCfg := cfg.MCP
	mcpCfg.Transport = firstNonEmpty(opts.Env.MCPTransport, mcpCfg.Transport)
	mcpCfg.HTTP.Addr = firstNonEmpty(opts.Env.MCPHTTPAddr, mcpCfg.HTTP.Addr)
	mcpCfg.HTTP.AuthToken = firstNonEmpty(opts.Env.MCPHTTPAuthToken, mcpCfg.HTTP.AuthToken)

	return Resolved{
		ConfigPath:     cfgPath,
		Format:         format,
		LogLevel:       logLevel,
		KeyringService: service,
		StoreDriver:    driver,
		StorePath:      storePath,
		SSH:            sshCfg,
		MCP:            mcpCfg,
	}, nil
}

func pick(cliSet bool, cli, envValue, fileValue, def string) string {
	if cliSet {
		return cli
	}
	return firstNonEmpty(envValue, fileValue, def)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
