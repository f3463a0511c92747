package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"chatline/contract"
	"chatline/domain"
	"chatline/errors"

	"github.com/google/uuid"
)

// Controller forcibly terminates a named session's participation.
// It collaborates with the hub: the target first gets the transport-level
// quit sentinel so its own inbound loop can wind down gracefully, and after
// a bounded grace period the session is torn down through the same path as
// a normal disconnect.
type Controller struct {
	log      *slog.Logger
	registry contract.IRegistry
	hub      contract.Hub
	grace    time.Duration
}

func NewController(log *slog.Logger, registry contract.IRegistry, hub contract.Hub, grace time.Duration) *Controller {
	return &Controller{log: log, registry: registry, hub: hub, grace: grace}
}

// Remove looks the target up by display name, signals it, waits the grace
// period, then detaches it unconditionally. Detach is idempotent, so the
// target disconnecting on its own during the grace period is not an error;
// the admin-removal notice is broadcast exactly once either way.
// Returns ErrSessionNotFound with no side effects when no live session
// matches the name.
func (c *Controller) Remove(ctx context.Context, displayName string) error {
	target, ok := c.registry.ByName(displayName)
	if !ok {
		return errors.ErrSessionNotFound
	}

	c.log.Info("Removing session", "name", target.Name())

	// Best effort: a dead sink just shortens the grace period's purpose.
	if err := target.Send(domain.QuitSentinel); err != nil {
		c.log.Debug("Quit sentinel not delivered", "name", target.Name(), "error", err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(c.grace):
	}

	_ = target.Close()
	c.hub.Detach(target.ID())
	c.hub.Broadcast(uuid.Nil, domain.KindSystem,
		fmt.Sprintf("SERVER: %s was removed by an administrator.", target.Name()))
	return nil
}
