// AngelaMos | 2026
// sentry.go

package core

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/carterperez-dev/templates/reservation-api/internal/config"
)

// InitSentry configures error reporting. An empty DSN leaves the SDK
// uninitialized, which turns every capture into a no-op.
func InitSentry(cfg config.SentryConfig, app config.AppConfig) error {
	if cfg.DSN == "" {
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      app.Environment,
		Release:          app.Name + "@" + app.Version,
		AttachStacktrace: true,
	})
	if err != nil {
		return fmt.Errorf("init sentry: %w", err)
	}

	return nil
}

func FlushSentry() {
	sentry.Flush(2 * time.Second)
}
