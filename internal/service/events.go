// Package service implements the settlement engine's operations: market
// lifecycle, wager admission, resolution, payouts, and shielded aggregate
// coordination. Services validate and compute; the stores make each
// operation's effects atomic.
package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/wagerpool/internal/domain"
)

// newEvent builds an audit event for a market-scoped operation.
func newEvent(typ domain.EventType, market string, at time.Time, detail map[string]any) domain.Event {
	return domain.Event{
		ID:        uuid.New().String(),
		Type:      typ,
		Market:    market,
		Detail:    detail,
		CreatedAt: at,
	}
}

// nopSink drops events; used when no fan-out is wired.
type nopSink struct{}

func (nopSink) Publish(domain.Event) {}
