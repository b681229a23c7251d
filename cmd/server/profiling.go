package main

import (
	"log/slog"

	"note-weave/internal/config"

	"github.com/grafana/pyroscope-go"
)

// startProfiling ships continuous profiles to Pyroscope when an address is
// configured. The returned stop func is always safe to call.
func startProfiling(cfg config.Config, log *slog.Logger) (func(), error) {
	noop := func() {}
	if cfg.PyroscopeServerAddress == "" {
		return noop, nil
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: "note-weave",
		ServerAddress:   cfg.PyroscopeServerAddress,
		Tags:            map[string]string{"store": cfg.StoreDriver},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	if err != nil {
		return noop, err
	}

	log.Info("profiling enabled", "server", cfg.PyroscopeServerAddress)
	return func() {
		if err := profiler.Stop(); err != nil {
			log.Warn("failed to stop profiler", "error", err)
		}
	}, nil
}
