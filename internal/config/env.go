package config

import (
	"github.com/caarlos0/env/v9"

	"github.com/zx06/minke/internal/errors"
)

// ReadEnv 解析 MINKE_* 环境变量。environ 为 nil 时读取进程环境。
func ReadEnv(environ map[string]string) (Env, *errors.XError) {
	var e Env
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&e, opts); err != nil {
		return Env{}, errors.Wrap(errors.CodeCfgInvalid, "invalid environment configuration", nil, err)
	}
	return e, nil
}
