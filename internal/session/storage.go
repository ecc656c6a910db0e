// Package session owns the authenticated identity: who is logged in, with
// what token and role, persisted across restarts the way the browser app
// persisted it in local storage.
package session

// Fixed storage keys for the persisted session snapshot.
const (
	StorageKeyToken    = "access_token"
	StorageKeyUser     = "user"
	StorageKeyCurrency = "currency"
)

// Storage is the persisted key-value store behind the session manager.
// It is read once at startup and written on every login, logout and
// profile update.
type Storage interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
}
