// Package store holds the process-local data stores: accounts, characters,
// inventories and the authenticated-session (ticket) table. All stores allow
// concurrent readers with exclusive writers; no reader observes a
// half-updated record.
package store

import "errors"

var (
	// ErrAccountExists is returned when the random account-id draw keeps
	// colliding, or the user id is already taken.
	ErrAccountExists = errors.New("account already exists")

	// ErrNotFound covers missing accounts, characters and inventories.
	ErrNotFound = errors.New("not found")

	// ErrSlotTaken is returned when a character create or move targets an
	// occupied (account, slot) pair.
	ErrSlotTaken = errors.New("slot already taken")

	// ErrIDSpaceExhausted is returned when bounded random-id retries run out.
	ErrIDSpaceExhausted = errors.New("id space exhausted")
)
