package models

// User is the credential document stored per account.
type User struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordSalt string `json:"password_salt"`
	PasswordHash string `json:"password_hash"`
	CreatedAt    string `json:"created_at"`
	LastLoginAt  string `json:"last_login_at,omitempty"`
}
