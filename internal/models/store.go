package models

// Keys under which client state is persisted. All three are cleared together on logout.
const (
	KeyToken        = "token"
	KeyUploads      = "uploads"
	KeySelectedFile = "selectedFile"
)

// SessionKeys lists every key owned by a login session.
var SessionKeys = []string{KeyToken, KeyUploads, KeySelectedFile}

// Store is a durable, synchronous key/value capability.
//
// Get returns shared.ErrKeyNotFound for missing keys. Remove deletes every given key in one step and ignores absent keys.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(keys ...string) error
}
