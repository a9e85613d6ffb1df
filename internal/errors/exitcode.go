package errors

// ExitCode 是进程退出码（稳定契约）。
type ExitCode int

const (
	ExitOK ExitCode = 0

	// 2: 参数/配置/输入错误
	ExitConfig ExitCode = 2

	// 3: 连接错误（SSH probe）
	ExitConnect ExitCode = 3

	// 4: 存储错误（keyring / config store / 导入导出文件）
	ExitStorage ExitCode = 4

	// 10: 内部错误
	ExitInternal ExitCode = 10
)

func ExitCodeFor(code Code) ExitCode {
	switch code {
	case CodeCfgNotFound, CodeCfgInvalid, CodeSecretNotFound,
		CodeServerNotFound, CodeImportInvalid:
		return ExitConfig
	case CodeSSHAuthFailed, CodeSSHHostKeyMismatch, CodeSSHDialFailed:
		return ExitConnect
	case CodeStorageReadFailed, CodeStorageWriteFailed, CodeFileIOFailed:
		return ExitStorage
	case CodeInternal:
		fallthrough
	default:
		return ExitInternal
	}
}
