// Package realtime is the publish/subscribe seam between the game core
// and connected clients. Topic granularity is the room id; messages are
// row-level deltas for rooms, players and messages. Vault rows are never
// published through here.
package realtime

import (
	"sync"

	"github.com/rs/zerolog/log"
)

type Kind string

const (
	KindInsert Kind = "insert"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
)

const (
	TableRooms    = "rooms"
	TablePlayers  = "players"
	TableMessages = "messages"
)

type Event struct {
	RoomID string `json:"roomId"`
	Table  string `json:"table"`
	Kind   Kind   `json:"kind"`
	Row    any    `json:"row"`
}

// Subscription delivers events for one room in publish order. A slow
// consumer loses events rather than blocking the publisher.
type Subscription struct {
	C      chan Event
	broker *Broker
	roomID string
	once   sync.Once
}

func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.broker.remove(s.roomID, s)
		close(s.C)
	})
}

type Broker struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{}
}

func NewBroker() *Broker {
	return &Broker{topics: map[string]map[*Subscription]struct{}{}}
}

func (b *Broker) Subscribe(roomID string, buffer int) *Subscription {
	sub := &Subscription{
		C:      make(chan Event, buffer),
		broker: b,
		roomID: roomID,
	}
	b.mu.Lock()
	subs, ok := b.topics[roomID]
	if !ok {
		subs = map[*Subscription]struct{}{}
		b.topics[roomID] = subs
	}
	subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

func (b *Broker) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.topics[evt.RoomID] {
		select {
		case sub.C <- evt:
		default:
			log.Warn().
				Str("room", evt.RoomID).
				Str("table", evt.Table).
				Msg("dropping realtime event for slow subscriber")
		}
	}
}

func (b *Broker) remove(roomID string, sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.topics[roomID]
	if !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(b.topics, roomID)
	}
}
