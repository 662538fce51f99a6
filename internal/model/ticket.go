package model

import "time"

// TicketTTL is how long a login-issued ticket stays valid.
const TicketTTL = 900 * time.Second

// Ticket is the authentication handoff the login server mints and the
// character server consumes exactly once. The client relays it verbatim in
// its first character-port packet.
type Ticket struct {
	AccountID          uint32
	AuthenticationCode uint32
	UserLevel          uint32
	Sex                Sex
	WebAuthToken       [16]byte
	ExpiresAt          time.Time
}

// Expired reports whether the ticket is past its deadline at now.
func (t Ticket) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Matches checks the three client-presented fields against the stored ticket.
func (t Ticket) Matches(accountID, authCode, userLevel uint32) bool {
	return t.AccountID == accountID &&
		t.AuthenticationCode == authCode &&
		t.UserLevel == userLevel
}
