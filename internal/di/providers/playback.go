package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/listenupapp/listenup-player/internal/config"
	"github.com/listenupapp/listenup-player/internal/download"
	"github.com/listenupapp/listenup-player/internal/engine"
	"github.com/listenupapp/listenup-player/internal/extract"
	"github.com/listenupapp/listenup-player/internal/library"
	"github.com/listenupapp/listenup-player/internal/logger"
	"github.com/listenupapp/listenup-player/internal/player"
)

// ProvideExtractor provides the native audio metadata extractor.
func ProvideExtractor(i do.Injector) (extract.Extractor, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return extract.NewNativeExtractor(log.Logger), nil
}

// ProvideStater provides the filesystem status primitive for download
// progress estimation.
func ProvideStater(i do.Injector) (download.Stater, error) {
	return download.NewUnixStater(), nil
}

// ProvideMonitor provides the cloud download monitor.
// The Materializer is platform-owned and must be registered by the
// embedding application before bootstrap.
func ProvideMonitor(i do.Injector) (*download.Monitor, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	materializer := do.MustInvoke[download.Materializer](i)
	stater := do.MustInvoke[download.Stater](i)
	extractor := do.MustInvoke[extract.Extractor](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return download.NewMonitor(
		materializer,
		stater,
		extractor,
		storeHandle.Store,
		cfg.Download.PollInterval,
		log.Logger,
	), nil
}

// ProvideBookmarkManager provides the bookmark manager.
func ProvideBookmarkManager(i do.Injector) (*player.BookmarkManager, error) {
	log := do.MustInvoke[*logger.Logger](i)
	eng := do.MustInvoke[engine.Engine](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	busHandle := do.MustInvoke[*BusHandle](i)

	return player.NewBookmarkManager(storeHandle.Store, eng, busHandle.Bus, log.Logger), nil
}

// ControllerHandle wraps the session controller with its run loop for
// lifecycle management.
type ControllerHandle struct {
	*player.Controller
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *ControllerHandle) Shutdown() error {
	h.cancel()
	return nil
}

// ProvideController provides the playback session controller and starts
// its run loop.
// The Engine is platform-owned and must be registered by the embedding
// application before bootstrap.
func ProvideController(i do.Injector) (*ControllerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	eng := do.MustInvoke[engine.Engine](i)
	monitor := do.MustInvoke[*download.Monitor](i)
	lib := do.MustInvoke[library.Library](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	bookmarks := do.MustInvoke[*player.BookmarkManager](i)
	extractor := do.MustInvoke[extract.Extractor](i)
	busHandle := do.MustInvoke[*BusHandle](i)

	controller := player.NewController(
		eng,
		monitor,
		lib,
		storeHandle.Store,
		bookmarks,
		extractor,
		busHandle.Bus,
		cfg.Playback.DefaultSleepTimerMin,
		log.Logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	go controller.Run(ctx)

	log.Info("Session controller started")

	return &ControllerHandle{
		Controller: controller,
		cancel:     cancel,
	}, nil
}
