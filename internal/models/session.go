package models

// Status is the authentication state of the client.
type Status int

const (
	Unauthenticated Status = iota
	Authenticating
	Authenticated
)

func (s Status) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	}
	return "unknown"
}

// Session pairs the status with the token. Token is non-empty iff Status is [Authenticated].
type Session struct {
	Status Status
	Token  string
}

// Valid reports whether the token/status invariant holds.
func (s Session) Valid() bool {
	return (s.Status == Authenticated) == (s.Token != "")
}
