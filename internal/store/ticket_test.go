package store

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valkyrja/ro2go/internal/model"
)

func TestTicketStoreConsumeOnce(t *testing.T) {
	s := NewTicketStore()
	s.Store(model.Ticket{AccountID: 2_000_042, AuthenticationCode: 7, UserLevel: 3})

	got, ok := s.Consume(2_000_042, 7, 3)
	require.True(t, ok)
	assert.Equal(t, uint32(7), got.AuthenticationCode)

	// one-shot: the same fields fail the second time
	_, ok = s.Consume(2_000_042, 7, 3)
	assert.False(t, ok)
}

func TestTicketStoreMismatchBurnsTicket(t *testing.T) {
	s := NewTicketStore()
	s.Store(model.Ticket{AccountID: 2_000_042, AuthenticationCode: 7, UserLevel: 3})

	_, ok := s.Consume(2_000_042, 8, 3)
	assert.False(t, ok)

	// the failed check already removed the ticket
	_, ok = s.Consume(2_000_042, 7, 3)
	assert.False(t, ok)
}

func TestTicketStoreUnknownAccount(t *testing.T) {
	s := NewTicketStore()
	_, ok := s.Consume(1, 2, 3)
	assert.False(t, ok)
}

func TestTicketStoreOverwrite(t *testing.T) {
	s := NewTicketStore()
	s.Store(model.Ticket{AccountID: 2_000_042, AuthenticationCode: 7, UserLevel: 3})
	s.Store(model.Ticket{AccountID: 2_000_042, AuthenticationCode: 9, UserLevel: 3})

	_, ok := s.Consume(2_000_042, 7, 3)
	assert.False(t, ok)
	s.Store(model.Ticket{AccountID: 2_000_042, AuthenticationCode: 9, UserLevel: 3})
	_, ok = s.Consume(2_000_042, 9, 3)
	assert.True(t, ok)
}

func TestTicketStoreExpiry(t *testing.T) {
	now := time.Now()
	clock := now
	s := NewTicketStore()
	s.SetClock(func() time.Time { return clock })

	s.Store(model.Ticket{AccountID: 2_000_042, AuthenticationCode: 7, UserLevel: 3})

	// 900 s later the ticket is still on the edge of validity
	clock = now.Add(900 * time.Second)
	assert.Equal(t, 1, s.Count())

	// 901 s after minting it is dead
	clock = now.Add(901 * time.Second)
	_, ok := s.Consume(2_000_042, 7, 3)
	assert.False(t, ok)
}

func TestTicketStoreCleanExpired(t *testing.T) {
	now := time.Now()
	clock := now
	s := NewTicketStore()
	s.SetClock(func() time.Time { return clock })

	s.Store(model.Ticket{AccountID: 1, AuthenticationCode: 1, UserLevel: 1})
	clock = now.Add(500 * time.Second)
	s.Store(model.Ticket{AccountID: 2, AuthenticationCode: 2, UserLevel: 2})

	clock = now.Add(1000 * time.Second)
	s.CleanExpired()

	assert.Equal(t, 1, s.Count())
	_, ok := s.Consume(2, 2, 2)
	assert.True(t, ok)
}

func TestTicketStoreConcurrentConsume(t *testing.T) {
	s := NewTicketStore()
	s.Store(model.Ticket{AccountID: 2_000_042, AuthenticationCode: 7, UserLevel: 3})

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := s.Consume(2_000_042, 7, 3); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	// exactly one goroutine gets the ticket
	assert.Equal(t, int32(1), wins.Load())
}
