package core

// LoginResult is the outcome of a login attempt. It is either a success
// carrying the user or a failure carrying a human-readable message, never both.
type LoginResult struct {
	user    *User
	message string
}

// LoginSucceeded returns a successful result for user.
func LoginSucceeded(user User) LoginResult {
	return LoginResult{user: &user}
}

// LoginFailed returns a failed result with the given message.
func LoginFailed(message string) LoginResult {
	return LoginResult{message: message}
}

// Success reports whether the login succeeded.
func (r LoginResult) Success() bool {
	return r.user != nil
}

// User returns a copy of the authenticated user and true on success.
func (r LoginResult) User() (User, bool) {
	if r.user == nil {
		return User{}, false
	}
	return *r.user, true
}

// Message returns the failure message. It is empty on success.
func (r LoginResult) Message() string {
	return r.message
}
