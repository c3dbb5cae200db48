package domain

// CredentialStore is the core port for durable per-user API tokens.
// Implementations must be safe for concurrent use.
type CredentialStore interface {
	// Get returns the token for a user, and whether one exists.
	Get(userID int64) (string, bool, error)
	// Set stores a token for a user, overwriting any previous one.
	Set(userID int64, token string) error
	// Delete removes a user's token. Deleting an absent token is not an error.
	Delete(userID int64) error
	// Count returns the number of registered users.
	Count() (int, error)
}
