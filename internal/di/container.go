// Package di provides dependency injection configuration for hardcover-sync.
package di

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/hardcover-sync/internal/config"
	"github.com/listenupapp/hardcover-sync/internal/di/providers"
	"github.com/listenupapp/hardcover-sync/internal/logger"
	"github.com/listenupapp/hardcover-sync/internal/service"
	"github.com/listenupapp/hardcover-sync/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
// The configuration is loaded by the caller so that its errors keep their codes.
func NewContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Local library and remote API
	do.Provide(injector, providers.ProvideKoboLibrary)
	do.Provide(injector, providers.ProvideHardcoverClient)

	// Sync core
	do.Provide(injector, providers.ProvideIdentityResolver)
	do.Provide(injector, providers.ProvideUserBookSynchronizer)
	do.Provide(injector, providers.ProvideJournalReconciler)

	// Command services
	do.Provide(injector, providers.ProvideProgressService)
	do.Provide(injector, providers.ProvideReviewService)
	do.Provide(injector, providers.ProvideJournalService)
	do.Provide(injector, providers.ProvideSearchService)

	return injector
}

// Bootstrap initializes all services.
// The Kobo database itself is opened on first use.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*validation.Validator](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.KoboLibraryHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HardcoverClientHandle](injector); err != nil {
		return err
	}

	if _, err := do.Invoke[*service.ProgressService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.ReviewService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.JournalService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.SearchService](injector); err != nil {
		return err
	}

	return nil
}
