package bootstrap

import (
	"fmt"

	appconfig "github.com/wolfman30/mindcare/internal/config"
	"github.com/wolfman30/mindcare/internal/fakebackend"
	"github.com/wolfman30/mindcare/pkg/logging"
)

// BuildFakeBackend creates the in-memory backend, its first admin and,
// when enabled, the demo data set.
func BuildFakeBackend(cfg *appconfig.Config, logger *logging.Logger) (*fakebackend.Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	srv := fakebackend.New(fakebackend.Config{
		Logger:         logger,
		Secret:         cfg.FakeBackendSecret,
		CORSOrigins:    cfg.FakeBackendCORSOrigins,
		LoginPerMinute: float64(cfg.FakeBackendLoginPerMinute),
	})
	if _, err := srv.EnsureAdmin(cfg.FakeBackendAdminEmail, cfg.FakeBackendAdminPassword, cfg.FakeBackendAdminName); err != nil {
		return nil, fmt.Errorf("bootstrap: create admin: %w", err)
	}
	if cfg.FakeBackendSeed {
		if err := srv.Seed(); err != nil {
			return nil, fmt.Errorf("bootstrap: seed: %w", err)
		}
		logger.Info("demo data loaded")
	}
	return srv, nil
}
