package errors

// Code 是稳定错误码（字符串），供 AI/agent 与程序判断。
// 只增不改、不复用旧含义。
type Code string

const (
	// Config / args
	CodeCfgNotFound    Code = "MINKE_CFG_NOT_FOUND"
	CodeCfgInvalid     Code = "MINKE_CFG_INVALID"
	CodeSecretNotFound Code = "MINKE_SECRET_NOT_FOUND"

	// Registry
	CodeServerNotFound Code = "MINKE_SERVER_NOT_FOUND"
	CodeImportInvalid  Code = "MINKE_IMPORT_INVALID"

	// Storage
	CodeStorageReadFailed  Code = "MINKE_STORAGE_READ_FAILED"
	CodeStorageWriteFailed Code = "MINKE_STORAGE_WRITE_FAILED"
	CodeFileIOFailed       Code = "MINKE_FILE_IO_FAILED"

	// SSH
	CodeSSHAuthFailed      Code = "MINKE_SSH_AUTH_FAILED"
	CodeSSHHostKeyMismatch Code = "MINKE_SSH_HOSTKEY_MISMATCH"
	CodeSSHDialFailed      Code = "MINKE_SSH_DIAL_FAILED"

	// Internal
	CodeInternal Code = "MINKE_INTERNAL"
)

func AllCodes() []Code {
	return []Code{
		CodeCfgNotFound,
		CodeCfgInvalid,
		CodeSecretNotFound,
		CodeServerNotFound,
		CodeImportInvalid,
		CodeStorageReadFailed,
		CodeStorageWriteFailed,
		CodeFileIOFailed,
		CodeSSHAuthFailed,
		CodeSSHHostKeyMismatch,
		CodeSSHDialFailed,
		CodeInternal,
	}
}
