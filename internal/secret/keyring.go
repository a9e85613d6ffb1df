// Package secret 是 OS secret store 的适配层。
//
// 所有条目共用一个 keyring service（默认 com.uros.minke-registry），
// account 即 key（例如 "servers"）。值对 keyring 而言是不透明字符串。
package secret

import (
	stderrors "errors"

	"github.com/zalando/go-keyring"
)

// DefaultService 是默认的 keyring service name。
const DefaultService = "com.uros.minke-registry"

// ErrNotFound 表示 key 在 secret store 中不存在。
var ErrNotFound = stderrors.New("secret not found")

// Store 是对 secret store 的最小抽象，便于测试与跨平台。
type Store interface {
	// Get 返回 key 对应的值；不存在时返回 ErrNotFound。
	Get(key string) (string, error)
	// Set 覆盖写入 key。
	Set(key, value string) error
	// Delete 删除 key；key 不存在不视为错误。
	Delete(key string) error
}

// Keyring 基于 zalando/go-keyring（macOS Keychain / Windows Credential Manager / Secret Service）。
type Keyring struct {
	service string
}

// NewKeyring 返回使用指定 service 的 Keyring；service 为空时使用 DefaultService。
func NewKeyring(service string) *Keyring {
	if service == "" {
		service = DefaultService
	}
	return &Keyring{service: service}
}

// Service 返回当前使用的 keyring service name。
func (k *Keyring) Service() string { return k.service }

func (k *Keyring) Set(key, value string) error {
	return keyring.Set(k.service, key, value)
}

func (k *Keyring) Delete(key string) error {
	err := keyring.Delete(k.service, key)
	if stderrors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

func translateNotFound(err error) error {
	if stderrors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
