package domain

import "time"

// EventType names an append-only settlement event.
type EventType string

const (
	EventMarketCreated      EventType = "market_created"
	EventBetPlaced          EventType = "bet_placed"
	EventShieldedBetPlaced  EventType = "shielded_bet_placed"
	EventMarketResolved     EventType = "market_resolved"
	EventWinningsClaimed    EventType = "winnings_claimed"
	EventShieldedPoolInit   EventType = "shielded_pool_initialized"
	EventAggregateSubmitted EventType = "shielded_aggregate_submitted"
)

// Event is one record of the append-only audit log. Events are committed in
// the same transaction as the state change they describe and are the only
// externally observable history besides the records themselves.
//
// A shielded-bet event never carries an amount.
type Event struct {
	ID        string
	Type      EventType
	Market    string
	Detail    map[string]any
	CreatedAt time.Time
}
