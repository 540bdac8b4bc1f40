package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/listenup-player/internal/events"
	"github.com/listenupapp/listenup-player/internal/logger"
)

// BusHandle wraps the event bus with shutdown capability.
type BusHandle struct {
	*events.Bus
}

// Shutdown implements do.Shutdownable.
func (h *BusHandle) Shutdown() error {
	h.Bus.Close()
	return nil
}

// ProvideBus provides the player event bus.
func ProvideBus(i do.Injector) (*BusHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return &BusHandle{Bus: events.NewBus(log.Logger)}, nil
}
