package model

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// SessionState is what gets persisted between console runs: the bearer
// token plus the user record it was minted for.
type SessionState struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
