package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/hardcover-sync/internal/config"
	"github.com/listenupapp/hardcover-sync/internal/hardcover"
	"github.com/listenupapp/hardcover-sync/internal/logger"
)

// HardcoverClientHandle wraps the API client with shutdown capability.
type HardcoverClientHandle struct {
	*hardcover.Client
}

// Shutdown implements do.Shutdownable.
func (h *HardcoverClientHandle) Shutdown() {
	h.Close()
}

// ProvideHardcoverClient provides the rate-limited Hardcover.app client.
func ProvideHardcoverClient(i do.Injector) (*HardcoverClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client, err := hardcover.New(hardcover.Config{
		Endpoint:          cfg.Hardcover.Endpoint,
		Authorization:     cfg.Hardcover.Authorization,
		RequestsPerMinute: cfg.Hardcover.RequestsPerMinute,
	}, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Debug("Hardcover.app client ready",
		"endpoint", cfg.Hardcover.Endpoint,
		"requests_per_minute", cfg.Hardcover.RequestsPerMinute,
	)

	return &HardcoverClientHandle{Client: client}, nil
}
