package login

import (
	"crypto/md5"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valkyrja/ro2go/internal/model"
	"github.com/valkyrja/ro2go/internal/store"
)

func newTestAgent(t *testing.T) (*Agent, *store.AccountStore, *store.TicketStore) {
	t.Helper()
	accounts := store.NewAccountStore()
	require.NoError(t, accounts.Init())
	tickets := store.NewTicketStore()
	return NewAgent(accounts, tickets), accounts, tickets
}

func cleartext(user, pass string) Credentials {
	return Credentials{Kind: CredentialsCleartext, Username: user, Password: pass}
}

func TestAuthenticateCleartext(t *testing.T) {
	agent, accounts, _ := newTestAgent(t)

	t.Run("happy path", func(t *testing.T) {
		acc, fail := agent.Authenticate(cleartext("sadroeck", "olasenor"))
		require.Nil(t, fail)
		assert.Equal(t, uint32(store.DevAccountID), acc.ID)

		// login bookkeeping persisted
		stored, err := accounts.GetByID(store.DevAccountID)
		require.NoError(t, err)
		assert.Equal(t, uint32(1), stored.LoginCount)
		assert.False(t, stored.LastLogin.IsZero())
	})

	t.Run("wrong password", func(t *testing.T) {
		_, fail := agent.Authenticate(cleartext("sadroeck", "WRONG"))
		require.NotNil(t, fail)
		assert.Equal(t, FailIncorrectPassword, fail.Code)
	})

	t.Run("unknown user discloses unregistered id", func(t *testing.T) {
		_, fail := agent.Authenticate(cleartext("nobody", "olasenor"))
		require.NotNil(t, fail)
		assert.Equal(t, FailUnregisteredID, fail.Code)
	})
}

func TestAuthenticateHashed(t *testing.T) {
	agent, accounts, _ := newTestAgent(t)

	digest := md5.Sum([]byte("hunter2"))
	hashed := model.NewAccount(0, "hasheduser", model.MD5Password(digest), model.Female)
	require.NoError(t, accounts.Create(hashed))

	t.Run("happy path", func(t *testing.T) {
		acc, fail := agent.Authenticate(Credentials{
			Kind: CredentialsHashed, Username: "hasheduser", Hash: digest,
		})
		require.Nil(t, fail)
		assert.Equal(t, hashed.ID, acc.ID)
	})

	t.Run("wrong digest", func(t *testing.T) {
		_, fail := agent.Authenticate(Credentials{
			Kind: CredentialsHashed, Username: "hasheduser", Hash: md5.Sum([]byte("nope")),
		})
		require.NotNil(t, fail)
		assert.Equal(t, FailIncorrectPassword, fail.Code)
	})

	t.Run("unknown user hides behind rejected", func(t *testing.T) {
		_, fail := agent.Authenticate(Credentials{
			Kind: CredentialsHashed, Username: "nobody", Hash: digest,
		})
		require.NotNil(t, fail)
		assert.Equal(t, FailRejectedFromServer, fail.Code)
	})

	t.Run("hashed credentials against cleartext account", func(t *testing.T) {
		_, fail := agent.Authenticate(Credentials{
			Kind: CredentialsHashed, Username: "sadroeck", Hash: md5.Sum([]byte("olasenor")),
		})
		require.NotNil(t, fail)
		assert.Equal(t, FailIncorrectPassword, fail.Code)
	})
}

func TestAuthenticateStateGate(t *testing.T) {
	agent, accounts, _ := newTestAgent(t)

	setState := func(t *testing.T, state model.AccountState) {
		t.Helper()
		acc, err := accounts.GetByID(store.DevAccountID)
		require.NoError(t, err)
		acc.State = state
		require.NoError(t, accounts.Save(acc))
	}

	t.Run("active ban refuses with deadline", func(t *testing.T) {
		until := time.Now().Add(time.Hour)
		setState(t, model.AccountState{Kind: model.StateBanned, Until: until})

		_, fail := agent.Authenticate(cleartext("sadroeck", "olasenor"))
		require.NotNil(t, fail)
		assert.Equal(t, FailBannedUntil, fail.Code)
		assert.Equal(t, until, fail.BanUntil)
	})

	t.Run("elapsed ban lifts and persists", func(t *testing.T) {
		setState(t, model.AccountState{Kind: model.StateBanned, Until: time.Now().Add(-time.Minute)})

		_, fail := agent.Authenticate(cleartext("sadroeck", "olasenor"))
		require.Nil(t, fail)

		stored, err := accounts.GetByID(store.DevAccountID)
		require.NoError(t, err)
		assert.Equal(t, model.StateNormal, stored.State.Kind)
	})

	t.Run("expired id refuses", func(t *testing.T) {
		setState(t, model.AccountState{Kind: model.StateExpireOn, Until: time.Now().Add(-time.Minute)})

		_, fail := agent.Authenticate(cleartext("sadroeck", "olasenor"))
		require.NotNil(t, fail)
		assert.Equal(t, FailIDExpired, fail.Code)
	})

	t.Run("future expiry passes", func(t *testing.T) {
		setState(t, model.AccountState{Kind: model.StateExpireOn, Until: time.Now().Add(time.Hour)})

		_, fail := agent.Authenticate(cleartext("sadroeck", "olasenor"))
		assert.Nil(t, fail)
	})
}

func TestCreateSession(t *testing.T) {
	agent, accounts, tickets := newTestAgent(t)

	acc, fail := agent.Authenticate(cleartext("sadroeck", "olasenor"))
	require.Nil(t, fail)

	ticket, err := agent.CreateSession(acc)
	require.NoError(t, err)

	assert.NotZero(t, ticket.AuthenticationCode)
	assert.NotZero(t, ticket.UserLevel)
	assert.NotEqual(t, [16]byte{}, ticket.WebAuthToken)

	// web token persisted on the account
	stored, err := accounts.GetByID(acc.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.WebAuthToken, stored.WebAuthToken)

	// ticket is live in the session table
	got, ok := tickets.Consume(acc.ID, ticket.AuthenticationCode, ticket.UserLevel)
	require.True(t, ok)
	assert.Equal(t, acc.Sex, got.Sex)
}
