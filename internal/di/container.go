// Package di provides dependency injection configuration for the ListenUp player.
package di

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/listenup-player/internal/config"
	"github.com/listenupapp/listenup-player/internal/di/providers"
	"github.com/listenupapp/listenup-player/internal/download"
	"github.com/listenupapp/listenup-player/internal/engine"
	"github.com/listenupapp/listenup-player/internal/extract"
	"github.com/listenupapp/listenup-player/internal/library"
	"github.com/listenupapp/listenup-player/internal/logger"
	"github.com/listenupapp/listenup-player/internal/player"
)

// Platform holds the two primitives only the embedding application can
// supply: the audio engine and the file materialization primitive.
type Platform struct {
	Engine       engine.Engine
	Materializer download.Materializer
}

// NewContainer creates and configures the DI container with all providers.
func NewContainer(platform Platform) *do.RootScope {
	injector := do.New()

	// Platform primitives
	do.ProvideValue(injector, platform.Engine)
	do.ProvideValue(injector, platform.Materializer)

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideLibrary)

	// Events
	do.Provide(injector, providers.ProvideBus)

	// Download layer
	do.Provide(injector, providers.ProvideExtractor)
	do.Provide(injector, providers.ProvideStater)
	do.Provide(injector, providers.ProvideMonitor)

	// Playback session
	do.Provide(injector, providers.ProvideBookmarkManager)
	do.Provide(injector, providers.ProvideController)

	return injector
}

// Bootstrap initializes all services and returns the session controller.
// This triggers lazy initialization of the full playback stack.
func Bootstrap(injector *do.RootScope) (*providers.ControllerHandle, error) {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[library.Library](injector)
	_ = do.MustInvoke[*providers.BusHandle](injector)
	_ = do.MustInvoke[extract.Extractor](injector)
	_ = do.MustInvoke[download.Stater](injector)
	_ = do.MustInvoke[*download.Monitor](injector)
	_ = do.MustInvoke[*player.BookmarkManager](injector)

	return do.MustInvoke[*providers.ControllerHandle](injector), nil
}
