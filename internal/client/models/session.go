package models

// Session is the persisted login state of the CLI. Tokens are kept so the
// user does not have to re-enter the password on every start.
type Session struct {
	Address      string
	AccessToken  string
	RefreshToken string
}
