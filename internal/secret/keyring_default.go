//go:build !windows

package secret

import "github.com/zalando/go-keyring"

func (k *Keyring) Get(key string) (string, error) {
	val, err := keyring.Get(k.service, key)
	if err != nil {
		return "", translateNotFound(err)
	}
	return val, nil
}
