package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/alanyoungcy/wagerpool/internal/domain"
)

// sendTimeout bounds each webhook delivery spawned from an event.
const sendTimeout = 15 * time.Second

// Sink adapts the Notifier to domain.EventSink. Each committed event is
// rendered into an operator message and delivered asynchronously, so a slow
// webhook never holds up a settlement response.
type Sink struct {
	notifier *Notifier
}

// NewSink creates a Sink over the given Notifier.
func NewSink(notifier *Notifier) *Sink {
	return &Sink{notifier: notifier}
}

// Publish renders and dispatches the event in the background.
func (s *Sink) Publish(ev domain.Event) {
	title, message := render(ev)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		_ = s.notifier.Notify(ctx, string(ev.Type), title, message)
	}()
}

// render maps an event to a notification title and body.
func render(ev domain.Event) (title, message string) {
	switch ev.Type {
	case domain.EventMarketCreated:
		return "Market created", fmt.Sprintf("market %s\n%v", ev.Market, ev.Detail["question"])
	case domain.EventMarketResolved:
		return "Market resolved", fmt.Sprintf("market %s\noutcome: %v\nyes pool: %v, no pool: %v",
			ev.Market, ev.Detail["outcome"], ev.Detail["yes_pool"], ev.Detail["no_pool"])
	case domain.EventWinningsClaimed:
		return "Winnings claimed", fmt.Sprintf("market %s\nclaimant: %v\npayout: %v",
			ev.Market, ev.Detail["claimant"], ev.Detail["payout"])
	case domain.EventShieldedPoolInit:
		return "Shielded pool initialized", fmt.Sprintf("market %s", ev.Market)
	default:
		return string(ev.Type), fmt.Sprintf("market %s", ev.Market)
	}
}

// Compile-time interface check.
var _ domain.EventSink = (*Sink)(nil)
