package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/hardcover-sync/internal/config"
	"github.com/listenupapp/hardcover-sync/internal/logger"
	"github.com/listenupapp/hardcover-sync/internal/service"
	"github.com/listenupapp/hardcover-sync/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideIdentityResolver provides the local-to-remote book resolver.
func ProvideIdentityResolver(i do.Injector) (*service.IdentityResolver, error) {
	client := do.MustInvoke[*HardcoverClientHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewIdentityResolver(client.Client, log.Logger), nil
}

// ProvideUserBookSynchronizer provides the user book and read writer.
func ProvideUserBookSynchronizer(i do.Injector) (*service.UserBookSynchronizer, error) {
	client := do.MustInvoke[*HardcoverClientHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserBookSynchronizer(client.Client, log.Logger), nil
}

// ProvideJournalReconciler provides the reading journal reconciler.
func ProvideJournalReconciler(i do.Injector) (*service.JournalReconciler, error) {
	client := do.MustInvoke[*HardcoverClientHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewJournalReconciler(client.Client, log.Logger), nil
}

// ProvideProgressService provides the progress sync service.
func ProvideProgressService(i do.Injector) (*service.ProgressService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	library := do.MustInvoke[*KoboLibraryHandle](i)
	identities := do.MustInvoke[*service.IdentityResolver](i)
	userBooks := do.MustInvoke[*service.UserBookSynchronizer](i)
	journals := do.MustInvoke[*service.JournalReconciler](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProgressService(
		library,
		identities,
		userBooks,
		journals,
		validator,
		cfg.Sync.Bookmarks,
		log.Logger,
	), nil
}

// ProvideReviewService provides the user book and review service.
func ProvideReviewService(i do.Injector) (*service.ReviewService, error) {
	library := do.MustInvoke[*KoboLibraryHandle](i)
	identities := do.MustInvoke[*service.IdentityResolver](i)
	userBooks := do.MustInvoke[*service.UserBookSynchronizer](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReviewService(library, identities, userBooks, validator, log.Logger), nil
}

// ProvideJournalService provides the journal note and listing service.
func ProvideJournalService(i do.Injector) (*service.JournalService, error) {
	library := do.MustInvoke[*KoboLibraryHandle](i)
	identities := do.MustInvoke[*service.IdentityResolver](i)
	journals := do.MustInvoke[*service.JournalReconciler](i)
	client := do.MustInvoke[*HardcoverClientHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewJournalService(library, identities, journals, client.Client, validator, log.Logger), nil
}

// ProvideSearchService provides the catalog search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	client := do.MustInvoke[*HardcoverClientHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(client.Client, validator, log.Logger), nil
}
