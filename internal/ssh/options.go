package ssh

import "time"

const (
	DefaultPort    = 22
	DefaultTimeout = 10 * time.Second
)

// Options 包含一次凭据探测所需参数。
// Password 来自 registry，不会被记录到日志。
type Options struct {
	Host           string // ip 或 host，也可以是 host:port
	Port           int
	User           string
	Password       string
	KnownHostsFile string // 默认 ~/.ssh/known_hosts
	Timeout        time.Duration

	// SkipKnownHostsCheck 跳过 known_hosts 校验（极不推荐！）
	SkipKnownHostsCheck bool
}

func DefaultKnownHostsPath() string {
	return "~/.ssh/known_hosts"
}
