// Package mapserver abstracts the zone-server link the character server
// hands players off to.
package mapserver

import (
	"fmt"
	"net"
	"sync"
)

// Endpoint is the zone address put into the handoff packet.
type Endpoint struct {
	IP   net.IP
	Port uint16
}

// MapServer is what the character server needs from a zone server: a
// handoff target per selected character and visibility of who is online.
type MapServer interface {
	// CharacterSelected registers the player on the zone and returns the
	// endpoint the client should connect to.
	CharacterSelected(accountID, characterID uint32) (Endpoint, error)

	// CharacterOffline drops the player from the online table.
	CharacterOffline(accountID uint32)

	// ChangeServer rehomes an online player onto another zone and returns
	// the endpoint the client should reconnect to.
	ChangeServer(accountID uint32) (Endpoint, error)

	// Maps returns the map ids the zone serves.
	Maps() []uint32

	// Accounts returns the account ids currently on the zone.
	Accounts() []uint32

	// PlayerCount returns how many players the zone holds.
	PlayerCount() int
}

// Static is a single-zone map server known only by its address. It serves
// every map and accepts every handoff; the online table is bookkeeping for
// the player-count reporting.
type Static struct {
	endpoint Endpoint
	mapIDs   []uint32

	mu     sync.Mutex
	online map[uint32]uint32 // account id -> character id
}

// NewStatic builds a static zone entry from its endpoint and the map ids it
// claims to serve.
func NewStatic(ip net.IP, port uint16, mapIDs []uint32) *Static {
	return &Static{
		endpoint: Endpoint{IP: ip, Port: port},
		mapIDs:   mapIDs,
		online:   make(map[uint32]uint32),
	}
}

func (s *Static) CharacterSelected(accountID, characterID uint32) (Endpoint, error) {
	if s.endpoint.IP == nil {
		return Endpoint{}, fmt.Errorf("no zone server configured")
	}
	s.mu.Lock()
	s.online[accountID] = characterID
	s.mu.Unlock()
	return s.endpoint, nil
}

// ChangeServer keeps the player on the single zone: there is no sibling to
// move to, so the same endpoint comes back for players known to be online.
func (s *Static) ChangeServer(accountID uint32) (Endpoint, error) {
	s.mu.Lock()
	_, online := s.online[accountID]
	s.mu.Unlock()
	if !online {
		return Endpoint{}, fmt.Errorf("account %d is not on this zone", accountID)
	}
	return s.endpoint, nil
}

func (s *Static) CharacterOffline(accountID uint32) {
	s.mu.Lock()
	delete(s.online, accountID)
	s.mu.Unlock()
}

func (s *Static) Maps() []uint32 {
	out := make([]uint32, len(s.mapIDs))
	copy(out, s.mapIDs)
	return out
}

func (s *Static) Accounts() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uint32, 0, len(s.online))
	for id := range s.online {
		out = append(out, id)
	}
	return out
}

func (s *Static) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.online)
}
