// Package auth checks credentials against the user directory and applies
// directory changes.
//
// Credentials are compared in plaintext, exactly and case-sensitively. This
// is a known weakness of the record format; hashing is out of scope.
package auth

import (
	"errors"
	"strings"

	"github.com/go-ports/pocketledger/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingCredentials = errors.New("username and password are required")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrAdminUndeletable   = errors.New("the admin account cannot be deleted")
	ErrSelfDelete         = errors.New("cannot delete the account you are logged in with")
)

// Authenticate returns the user whose username and password both match.
// There is no lockout or backoff.
func Authenticate(username, password string, users []models.User) (models.User, error) {
	for _, u := range users {
		if u.Username == username && u.Password == password {
			return u, nil
		}
	}
	return models.User{}, ErrInvalidCredentials
}

// AddUser appends a new account with id newID.
func AddUser(users []models.User, username, password, newID string) ([]models.User, models.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return users, models.User{}, ErrMissingCredentials
	}
	for _, u := range users {
		if u.Username == username {
			return users, models.User{}, ErrUsernameTaken
		}
	}
	nu := models.User{ID: newID, Username: username, Password: password}
	out := make([]models.User, len(users), len(users)+1)
	copy(out, users)
	return append(out, nu), nu, nil
}

// UpdateProfile replaces the username and password of the account with id.
func UpdateProfile(users []models.User, id, username, password string) ([]models.User, models.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return users, models.User{}, ErrMissingCredentials
	}
	idx := -1
	for i, u := range users {
		if u.ID == id {
			idx = i
		} else if u.Username == username {
			return users, models.User{}, ErrUsernameTaken
		}
	}
	if idx < 0 {
		return users, models.User{}, ErrUserNotFound
	}
	out := make([]models.User, len(users))
	copy(out, users)
	out[idx].Username = username
	out[idx].Password = password
	return out, out[idx], nil
}

// DeleteUser removes the account with id. The admin account and the
// caller's own account are refused. The user's ledger is left in place.
func DeleteUser(users []models.User, id, currentID string) ([]models.User, error) {
	switch {
	case id == models.AdminID:
		return users, ErrAdminUndeletable
	case id == currentID:
		return users, ErrSelfDelete
	}
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.ID != id {
			out = append(out, u)
		}
	}
	if len(out) == len(users) {
		return users, ErrUserNotFound
	}
	return out, nil
}
