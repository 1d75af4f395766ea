// internal/app/features/stream/handler.go
package stream

import (
	"sync"
	"time"

	"github.com/dalemusser/pastoralhub/internal/app/directory"
	uierrors "github.com/dalemusser/pastoralhub/internal/app/features/errors"
	"github.com/dalemusser/waffle/pantry/sse"
	"go.uber.org/zap"
)

// DefaultKeepAlive is how often an idle stream sends a comment line.
const DefaultKeepAlive = 15 * time.Second

// Handler streams collection snapshots as Server-Sent Events. Every feed
// has a broker channel named after it; one pump per feed turns snapshots
// into events for that channel.
type Handler struct {
	Dir    *directory.Directory
	Broker *sse.Broker
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger

	mu     sync.Mutex
	pumps  map[string]func()
	closed bool
}

func NewHandler(dir *directory.Directory, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	cfg := sse.DefaultBrokerConfig()
	cfg.KeepAliveInterval = DefaultKeepAlive
	broker := sse.NewBrokerWithConfig(cfg)
	broker.OnConnect = func(c *sse.Client) {
		logger.Debug("stream opened", zap.String("client_id", c.ID()))
	}
	broker.OnDisconnect = func(c *sse.Client) {
		logger.Debug("stream closed", zap.String("client_id", c.ID()))
	}
	return &Handler{
		Dir:    dir,
		Broker: broker,
		Log:    logger,
		ErrLog: errLog,
		pumps:  make(map[string]func()),
	}
}

// Close stops the feed pumps and disconnects every stream.
func (h *Handler) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	pumps := h.pumps
	h.pumps = nil
	h.mu.Unlock()

	for _, stop := range pumps {
		stop()
	}
	h.Broker.Close()
}
