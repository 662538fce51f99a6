package login

// CredentialsKind discriminates how the client sent its password.
type CredentialsKind byte

const (
	CredentialsCleartext CredentialsKind = iota
	CredentialsHashed
)

// Credentials are the login fields extracted from any of the ClientLogin
// packet versions. Cleartext carries Password, hashed carries the raw MD5
// digest in Hash.
type Credentials struct {
	Kind       CredentialsKind
	Username   string
	Password   string
	Hash       [16]byte
	ClientType byte
}
