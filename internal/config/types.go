package config

import "time"

// File 表示 minke.yaml 的配置结构。
// 约束：配置优先级为 CLI > ENV > Config > 默认值。
type File struct {
	Format   string `yaml:"format"`    // json | yaml | table | csv | auto
	LogLevel string `yaml:"log_level"` // debug | info | warn | error

	Keyring     KeyringConfig     `yaml:"keyring"`
	ConfigStore ConfigStoreConfig `yaml:"config_store"`
	SSH         SSHConfig         `yaml:"ssh"`
	MCP         MCPConfig         `yaml:"mcp"`
}

type KeyringConfig struct {
	Service string `yaml:"service"`
}

// ConfigStoreConfig 选择存放 tags 等非敏感数据的后端。
type ConfigStoreConfig struct {
	Driver string `yaml:"driver"` // file | sqlite
	Path   string `yaml:"path"`
}

// SSHConfig 用于 probe 命令。
type SSHConfig struct {
	Port           int           `yaml:"port"`
	KnownHostsFile string        `yaml:"known_hosts_file"`
	SkipHostKey    bool          `yaml:"skip_host_key"` // 极不推荐
	Timeout        time.Duration `yaml:"timeout"`
}

type MCPConfig struct {
	Transport string        `yaml:"transport"` // stdio | streamable_http
	HTTP      MCPHTTPConfig `yaml:"http"`
}

type MCPHTTPConfig struct {
	Addr                string `yaml:"addr"`
	AuthToken           string `yaml:"auth_token"` // 支持 keyring:xxx 引用
	AllowPlaintextToken bool   `yaml:"allow_plaintext_token"`
}

// Env 是从环境变量读取的覆盖项，空值表示未设置。
type Env struct {
	ConfigPath       string `env:"MINKE_CONFIG"`
	Format           string `env:"MINKE_FORMAT"`
	LogLevel         string `env:"MINKE_LOG_LEVEL"`
	KeyringService   string `env:"MINKE_KEYRING_SERVICE"`
	StoreDriver      string `env:"MINKE_CONFIG_STORE_DRIVER"`
	StorePath        string `env:"MINKE_CONFIG_STORE_PATH"`
	MCPTransport     string `env:"MINKE_MCP_TRANSPORT"`
	MCPHTTPAddr      string `env:"MINKE_MCP_HTTP_ADDR"`
	MCPHTTPAuthToken string `env:"MINKE_MCP_HTTP_AUTH_TOKEN"`
}

type Resolved struct {
	ConfigPath     string
	Format         string
	LogLevel       string
	KeyringService string
	StoreDriver    string
	StorePath      string
	SSH            SSHConfig
	MCP            MCPConfig
}

type Options struct {
	// ConfigPath: 若非空，则只读取该文件（不存在报错）。
	ConfigPath string

	// CLI
	CLIFormat         string
	CLIFormatSet      bool
	CLILogLevel       string
	CLILogLevelSet    bool
	CLIStoreDriver    string
	CLIStoreDriverSet bool
	CLIStorePath      string
	CLIStorePathSet   bool

	// ENV（由调用方注入，便于测试）
	Env Env

	// HomeDir 用于默认路径计算（为空则自动探测）。
	HomeDir string

	// WorkDir 用于默认路径（为空则使用进程当前工作目录）。
	WorkDir string

	// UserConfigDir 用于默认 config store 路径（为空则使用 os.UserConfigDir）。
	UserConfigDir string
}
