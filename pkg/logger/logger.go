// Package logger настраивает глобальный slog: текстовый вывод в dev,
// JSON через zap с сэмплированием в stage/prod.
package logger

import "log/slog"

var def *slog.Logger

func Init(cfg Config) {
	if cfg.Env == "" {
		cfg.Env = DetectEnv()
	}
	if cfg.Service == "" {
		cfg.Service = "relay-service"
	}
	cfg.InstanceID = ensureInstanceID(cfg.InstanceID)

	// Бекенд по умолчанию зависит от среды.
	if cfg.Backend == "" {
		if cfg.Env == EnvDev {
			cfg.Backend = BackendStd
		} else {
			cfg.Backend = BackendZap
		}
	}

	var h slog.Handler
	switch cfg.Backend {
	case BackendZap:
		h = newZapHandler(cfg)
	default:
		h = newStdHandler(cfg)
	}

	base := slog.New(h.WithAttrs(commonAttrs(cfg)))
	slog.SetDefault(base)
	def = base
}

func L() *slog.Logger {
	if def != nil {
		return def
	}

	Init(Config{})
	return def
}
