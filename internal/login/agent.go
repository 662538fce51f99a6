package login

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/binary"
	"log/slog"
	"time"

	"github.com/valkyrja/ro2go/internal/model"
	"github.com/valkyrja/ro2go/internal/store"
)

// Agent validates credentials against the account store and mints the
// authentication ticket the client relays to the character server.
type Agent struct {
	accounts *store.AccountStore
	tickets  *store.TicketStore

	now func() time.Time
}

// NewAgent wires the agent to its stores.
func NewAgent(accounts *store.AccountStore, tickets *store.TicketStore) *Agent {
	return &Agent{
		accounts: accounts,
		tickets:  tickets,
		now:      time.Now,
	}
}

// Authenticate resolves the credentials to an account or a refusal.
// Unknown users get UnregisteredID only on the cleartext path; the hashed
// path answers RejectedFromServer so it cannot be used to probe user names.
func (a *Agent) Authenticate(c Credentials) (model.Account, *Failure) {
	acc, err := a.accounts.GetByUser(c.Username)
	if err != nil {
		if c.Kind == CredentialsCleartext {
			return model.Account{}, NewFailure(FailUnregisteredID)
		}
		return model.Account{}, NewFailure(FailRejectedFromServer)
	}

	if !passwordMatches(acc.Password, c) {
		return model.Account{}, NewFailure(FailIncorrectPassword)
	}

	if fail := a.checkState(&acc); fail != nil {
		return model.Account{}, fail
	}

	acc.LoginCount++
	acc.LastLogin = a.now()
	if err := a.accounts.Save(acc); err != nil {
		slog.Error("failed to persist login", "account", acc.ID, "error", err)
		return model.Account{}, NewFailure(FailRejectedFromServer)
	}
	return acc, nil
}

// checkState applies the account gate. A ban whose deadline has passed is
// rewritten to Normal in place, so the caller's Save persists the lift.
func (a *Agent) checkState(acc *model.Account) *Failure {
	switch acc.State.Kind {
	case model.StateBanned:
		if a.now().After(acc.State.Until) {
			acc.State = model.AccountState{Kind: model.StateNormal}
			return nil
		}
		return BannedUntil(acc.State.Until)
	case model.StateExpireOn:
		if !a.now().Before(acc.State.Until) {
			return NewFailure(FailIDExpired)
		}
		return nil
	default:
		return nil
	}
}

// CreateSession mints the ticket for a freshly authenticated account:
// random non-zero authentication code and user level, a fresh web-auth
// token persisted on the account, expiry in 900 s. Any prior ticket for
// the account is overwritten.
func (a *Agent) CreateSession(acc model.Account) (model.Ticket, error) {
	t := model.Ticket{
		AccountID:          acc.ID,
		AuthenticationCode: randomNonZeroUint32(),
		UserLevel:          randomNonZeroUint32(),
		Sex:                acc.Sex,
	}
	if _, err := rand.Read(t.WebAuthToken[:]); err != nil {
		return model.Ticket{}, err
	}
	if err := a.accounts.EnableWebToken(acc.ID, t.WebAuthToken); err != nil {
		return model.Ticket{}, err
	}
	a.tickets.Store(t)
	return t, nil
}

func passwordMatches(stored model.Password, c Credentials) bool {
	switch c.Kind {
	case CredentialsHashed:
		if stored.Kind != model.PasswordMD5 {
			return false
		}
		return subtle.ConstantTimeCompare(stored.Hash[:], c.Hash[:]) == 1
	default:
		if stored.Kind != model.PasswordCleartext {
			return false
		}
		return subtle.ConstantTimeCompare([]byte(stored.Clear), []byte(c.Password)) == 1
	}
}

func randomNonZeroUint32() uint32 {
	var b [4]byte
	for {
		if _, err := rand.Read(b[:]); err != nil {
			continue
		}
		if v := binary.LittleEndian.Uint32(b[:]); v != 0 {
			return v
		}
	}
}
