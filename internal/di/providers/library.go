package providers

import (
	"context"
	"log/slog"
	"sync"

	"github.com/samber/do/v2"

	"github.com/listenupapp/hardcover-sync/internal/config"
	"github.com/listenupapp/hardcover-sync/internal/domain"
	"github.com/listenupapp/hardcover-sync/internal/kobo"
	"github.com/listenupapp/hardcover-sync/internal/logger"
)

// KoboLibraryHandle opens the e-reader database on first use, so commands
// given only a --book-id run without a device attached.
type KoboLibraryHandle struct {
	path   string
	logger *slog.Logger

	once  sync.Once
	store *kobo.Store
	err   error
}

func (h *KoboLibraryHandle) open() (*kobo.Store, error) {
	h.once.Do(func() {
		h.store, h.err = kobo.Open(h.path, h.logger)
		if h.err == nil {
			h.logger.Debug("Kobo database opened", "path", h.path)
		}
	})
	return h.store, h.err
}

// Identifiers implements service.IdentifierSource.
func (h *KoboLibraryHandle) Identifiers(ctx context.Context, contentID string) ([]string, error) {
	store, err := h.open()
	if err != nil {
		return nil, err
	}
	return store.Identifiers(ctx, contentID)
}

// BookmarkSources implements service.LocalLibrary.
func (h *KoboLibraryHandle) BookmarkSources(ctx context.Context, contentID, modifiedAfter string) ([]domain.BookmarkSource, error) {
	store, err := h.open()
	if err != nil {
		return nil, err
	}
	return store.BookmarkSources(ctx, contentID, modifiedAfter)
}

// Shutdown implements do.Shutdownable.
func (h *KoboLibraryHandle) Shutdown() error {
	if h.store == nil {
		return nil
	}
	return h.store.Close()
}

// ProvideKoboLibrary provides the lazily opened Kobo library.
func ProvideKoboLibrary(i do.Injector) (*KoboLibraryHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return &KoboLibraryHandle{
		path:   cfg.Kobo.SQLitePath,
		logger: log.Logger,
	}, nil
}
