package secret

import (
	stderrors "errors"
	"strings"

	"github.com/zx06/minke/internal/errors"
)

const keyringPrefix = "keyring:"

// Options 控制 secret 解析行为。
type Options struct {
	AllowPlaintext bool  // 是否允许明文（默认 false）
	Store          Store // 可注入的 secret store（nil 则用默认 Keyring）
}

// Resolve 解析配置中的 secret 值：
//  1. keyring:xxx → 从 secret store 读取
//  2. 否则若为明文且允许明文 → 直接返回
//  3. 否则报错
func Resolve(raw string, opts Options) (string, *errors.XError) {
	if strings.HasPrefix(raw, keyringPrefix) {
		key := strings.TrimPrefix(raw, keyringPrefix)
		if key == "" {
			return "", errors.New(errors.CodeCfgInvalid, "empty keyring reference", nil)
		}
		st := opts.Store
		if st == nil {
			st = NewKeyring("")
		}
		val, err := st.Get(key)
		if err != nil {
			if stderrors.Is(err, ErrNotFound) {
				return "", errors.New(errors.CodeSecretNotFound, "secret not found in keyring", map[string]any{"key": key})
			}
			return "", errors.Wrap(errors.CodeSecretNotFound, "failed to read secret from keyring", map[string]any{"key": key}, err)
		}
		return val, nil
	}
	// 明文
	if opts.AllowPlaintext {
		return raw, nil
	}
	return "", errors.New(errors.CodeCfgInvalid, "plaintext secret not allowed; use keyring: reference or enable allow_plaintext", nil)
}

// IsKeyringRef 判断值是否为 keyring 引用。
func IsKeyringRef(s string) bool {
	return strings.HasPrefix(s, keyringPrefix)
}
