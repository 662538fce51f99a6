package model

import "time"

// MaxCharactersPerAccount is the hard cap of character slots the client UI
// can address.
const MaxCharactersPerAccount = 12

// DefaultCharSlots is the number of slots a fresh account may actually use.
const DefaultCharSlots = 10

// Sex is the account/character sex as it travels on the wire.
type Sex byte

const (
	Female Sex = 0
	Male   Sex = 1
	// Server marks GM/server-side accounts.
	Server Sex = 2
)

// ParseSex validates a wire byte. Anything outside the enum is a protocol
// violation, not a default.
func ParseSex(b byte) (Sex, bool) {
	switch Sex(b) {
	case Female, Male, Server:
		return Sex(b), true
	default:
		return 0, false
	}
}

func (s Sex) String() string {
	switch s {
	case Female:
		return "female"
	case Male:
		return "male"
	case Server:
		return "server"
	default:
		return "unknown"
	}
}

// PasswordKind discriminates how an account password is stored.
type PasswordKind byte

const (
	PasswordNone PasswordKind = iota
	PasswordCleartext
	PasswordMD5
)

// Password is a tagged union: cleartext accounts compare Clear byte-for-byte,
// hashed accounts compare the 16 MD5 bytes. Kind PasswordNone only appears on
// zero values, never on a stored account.
type Password struct {
	Kind  PasswordKind
	Clear string
	Hash  [16]byte
}

// CleartextPassword builds a cleartext credential.
func CleartextPassword(s string) Password {
	return Password{Kind: PasswordCleartext, Clear: s}
}

// MD5Password builds a hashed credential from raw digest bytes.
func MD5Password(hash [16]byte) Password {
	return Password{Kind: PasswordMD5, Hash: hash}
}

// AccountStateKind discriminates the account gate applied at login.
type AccountStateKind byte

const (
	StateNormal AccountStateKind = iota
	StateBanned
	StateExpireOn
)

// AccountState carries the gate plus its deadline where one applies.
// Banned accounts whose Until has passed are rewritten to Normal on the next
// authentication attempt.
type AccountState struct {
	Kind  AccountStateKind
	Until time.Time
}

// Account is a player account. The stores own these records; sessions work
// on copies.
type Account struct {
	ID            uint32
	UserID        string
	Password      Password
	Sex           Sex
	Email         string
	GroupID       uint32
	CharSlots     uint8
	State         AccountState
	LoginCount    uint32
	LastLogin     time.Time
	LastIP        string
	BirthDate     string
	Pincode       [4]byte
	PincodeChange time.Time
	WebAuthToken  [16]byte
}

// NewAccount returns an account with the default slot allowance and Normal
// state. The caller fills credentials.
func NewAccount(id uint32, userID string, password Password, sex Sex) *Account {
	return &Account{
		ID:        id,
		UserID:    userID,
		Password:  password,
		Sex:       sex,
		CharSlots: DefaultCharSlots,
		State:     AccountState{Kind: StateNormal},
	}
}

// HasPincode reports whether the account has a PIN set. An all-zero pincode
// means none was configured.
func (a *Account) HasPincode() bool {
	return a.Pincode != [4]byte{}
}
