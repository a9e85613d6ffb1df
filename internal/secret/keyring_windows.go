//go:build windows

package secret

import (
	"strings"

	"github.com/zalando/go-keyring"
)

func (k *Keyring) Get(key string) (string, error) {
	val, err := keyring.Get(k.service, key)
	if err != nil {
		return "", translateNotFound(err)
	}
	// Windows cmdkey 在字符间插入 null 字节（UTF-16 遗留问题）
	val = strings.ReplaceAll(val, "\x00", "")
	return val, nil
}
