package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/circleapp/circle-server/internal/api"
	"github.com/circleapp/circle-server/internal/config"
	"github.com/circleapp/circle-server/internal/logger"
	"github.com/circleapp/circle-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.Join(h.Server.Shutdown(ctx), h.api.Close())
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	feedHandle := do.MustInvoke[*FeedStoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Auth:    do.MustInvoke[*service.AuthService](i),
		Session: do.MustInvoke[*service.SessionService](i),
		User:    do.MustInvoke[*service.UserService](i),
		Label:   do.MustInvoke[*service.LabelService](i),
		Friend:  do.MustInvoke[*service.FriendService](i),
		Post:    do.MustInvoke[*service.PostService](i),
		Feed:    do.MustInvoke[*service.FeedService](i),
		Filter:  do.MustInvoke[*service.FilterService](i),
		Search:  do.MustInvoke[*service.SearchService](i),
	}

	handler := api.NewServer(
		storeHandle.Store,
		feedHandle.FeedStore,
		services,
		sseHandle.Manager,
		api.Options{
			CORSOrigins:    cfg.Server.CORSOrigins,
			LoginRateLimit: cfg.Auth.LoginRateLimit,
		},
		log.Logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv, api: handler}, nil
}
