package store

import (
	"sync"
	"time"

	"github.com/valkyrja/ro2go/internal/model"
)

// TicketStore is the authenticated-session table shared between the login
// and character servers. sync.Map keeps the hot Consume path lock-free; the
// atomic remove-on-check is the one place a read mutates.
type TicketStore struct {
	tickets sync.Map // map[uint32]model.Ticket, keyed by account id

	// now is swapped in tests to drive expiry.
	now func() time.Time
}

// NewTicketStore returns an empty ticket table.
func NewTicketStore() *TicketStore {
	return &TicketStore{now: time.Now}
}

// Store records a ticket for the account, overwriting any prior one. The
// expiry is stamped here: now + 900 s.
func (s *TicketStore) Store(t model.Ticket) {
	t.ExpiresAt = s.now().Add(model.TicketTTL)
	s.tickets.Store(t.AccountID, t)
}

// Consume atomically removes and returns the ticket matching the presented
// fields. A missing, mismatched or expired ticket fails; an expired one is
// reaped on the spot. The ticket can never be consumed twice.
func (s *TicketStore) Consume(accountID, authCode, userLevel uint32) (model.Ticket, bool) {
	val, ok := s.tickets.LoadAndDelete(accountID)
	if !ok {
		return model.Ticket{}, false
	}
	t := val.(model.Ticket)
	if t.Expired(s.now()) {
		return model.Ticket{}, false
	}
	if !t.Matches(accountID, authCode, userLevel) {
		// Wrong code with a live ticket burns it; the client must log in
		// again to get a fresh one.
		return model.Ticket{}, false
	}
	return t, true
}

// CleanExpired reaps tickets past their deadline. Run from a janitor
// goroutine.
func (s *TicketStore) CleanExpired() {
	now := s.now()
	s.tickets.Range(func(key, value any) bool {
		if value.(model.Ticket).Expired(now) {
			s.tickets.Delete(key)
		}
		return true
	})
}

// Count returns the number of live entries, expired or not.
func (s *TicketStore) Count() int {
	count := 0
	s.tickets.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// SetClock swaps the time source (tests only).
func (s *TicketStore) SetClock(now func() time.Time) {
	s.now = now
}
