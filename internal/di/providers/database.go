package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/circleapp/circle-server/internal/config"
	"github.com/circleapp/circle-server/internal/domain"
	"github.com/circleapp/circle-server/internal/logger"
	"github.com/circleapp/circle-server/internal/service"
	"github.com/circleapp/circle-server/internal/sse"
	"github.com/circleapp/circle-server/internal/store/badger"
	"github.com/circleapp/circle-server/internal/store/sqlite"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// StoreHandle wraps the SQLite store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the relational store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := cfg.Data.DatabasePath()
	db, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// FeedStoreHandle wraps the badger feed store with shutdown capability.
type FeedStoreHandle struct {
	*badger.FeedStore
}

// Shutdown implements do.Shutdownable.
func (h *FeedStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideFeedStore provides the materialized feed store.
func ProvideFeedStore(i do.Injector) (*FeedStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	feeds, err := badger.Open(badger.Options{
		Path:   cfg.Data.FeedPath(),
		Logger: log.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &FeedStoreHandle{FeedStore: feeds}, nil
}

// Bootstrap contains the startup seeding result.
type Bootstrap struct {
	Everyone *domain.AppLabel
}

// ProvideBootstrap makes sure the app labels every user joins exist.
func ProvideBootstrap(i do.Injector) (*Bootstrap, error) {
	log := do.MustInvoke[*logger.Logger](i)
	labels := do.MustInvoke[*service.LabelService](i)

	everyone, err := labels.EnsureAppLabel(context.Background(), domain.EveryoneLabel)
	if err != nil {
		return nil, err
	}

	log.Info("App labels ready",
		"label_id", everyone.ID,
		"identifier", everyone.Identifier,
		"members", len(everyone.Items),
	)

	return &Bootstrap{Everyone: everyone}, nil
}
