// Package sse implements Server-Sent Events for live catalog and tier list updates.
package sse

import (
	"time"

	"github.com/gamevault/gamevault-server/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventCatalogRefreshed is sent after the catalog cache repopulates.
	EventCatalogRefreshed EventType = "catalog.refreshed"

	// EventTierListCreated represents a tier list creation event.
	EventTierListCreated EventType = "tierlist.created"
	// EventTierListUpdated represents a tier list update event.
	EventTierListUpdated EventType = "tierlist.updated"
	// EventTierListDeleted represents a tier list deletion event.
	EventTierListDeleted EventType = "tierlist.deleted"
	// EventTierListLiked is sent when a tier list's like counter changes.
	EventTierListLiked EventType = "tierlist.liked"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// UserID restricts delivery to one user's authenticated connections.
	// Empty means broadcast to everyone.
	UserID string `json:"-"`
}

// CatalogRefreshedEventData is the data payload for catalog.refreshed.
type CatalogRefreshedEventData struct {
	LastUpdated time.Time      `json:"lastUpdated"`
	Counts      map[string]int `json:"counts"`
}

// TierListEventData is the data payload for tier list create/update events.
type TierListEventData struct {
	TierList *domain.TierList `json:"tierList"`
}

// TierListDeletedEventData is the data payload for tierlist.deleted.
type TierListDeletedEventData struct {
	ID        string    `json:"id"`
	DeletedAt time.Time `json:"deletedAt"`
}

// TierListLikedEventData is the data payload for tierlist.liked.
type TierListLikedEventData struct {
	ID    string `json:"id"`
	Likes int    `json:"likes"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"serverTime"`
}

// NewCatalogRefreshedEvent creates a catalog.refreshed event.
func NewCatalogRefreshedEvent(lastUpdated time.Time, counts map[string]int) Event {
	return Event{
		Type:      EventCatalogRefreshed,
		Data:      CatalogRefreshedEventData{LastUpdated: lastUpdated, Counts: counts},
		Timestamp: time.Now(),
	}
}

// NewTierListCreatedEvent creates a tierlist.created event.
// Private lists are addressed to their owner only.
func NewTierListCreatedEvent(list *domain.TierList) Event {
	return tierListEvent(EventTierListCreated, list, TierListEventData{TierList: list})
}

// NewTierListUpdatedEvent creates a tierlist.updated event.
func NewTierListUpdatedEvent(list *domain.TierList) Event {
	return tierListEvent(EventTierListUpdated, list, TierListEventData{TierList: list})
}

// NewTierListDeletedEvent creates a tierlist.deleted event.
func NewTierListDeletedEvent(list *domain.TierList) Event {
	return tierListEvent(EventTierListDeleted, list, TierListDeletedEventData{
		ID:        list.ID,
		DeletedAt: time.Now(),
	})
}

// NewTierListLikedEvent creates a tierlist.liked event.
func NewTierListLikedEvent(list *domain.TierList) Event {
	return tierListEvent(EventTierListLiked, list, TierListLikedEventData{
		ID:    list.ID,
		Likes: list.Likes,
	})
}

func tierListEvent(t EventType, list *domain.TierList, data any) Event {
	evt := Event{
		Type:      t,
		Data:      data,
		Timestamp: time.Now(),
	}
	if !list.IsPublic {
		evt.UserID = list.UserID
	}
	return evt
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type: EventHeartbeat,
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}
