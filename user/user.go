// Package user defines the immutable user record shared across the core.
//
// A User is fetched from the remote directory and never partially mutated;
// stale records are replaced wholesale by a re-fetch.
package user

// User identifies another account on the service.
type User struct {
	ID          string
	Username    string
	DisplayName string
}

// Label returns the name to show for the user, preferring the display
// name and falling back to the username.
func (u User) Label() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
