package login

// CharacterServer is what the login server needs from a character server
// beyond its advertised address: bringing its zone link up and a liveness
// probe for the server-list activity field.
type CharacterServer interface {
	// ConnectMapServer verifies the character server's zone link.
	ConnectMapServer() error

	// Ping reports whether the character server accepts connections.
	Ping() error
}
