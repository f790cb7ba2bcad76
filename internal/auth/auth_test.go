package auth_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/pocketledger/internal/auth"
	"github.com/go-ports/pocketledger/internal/models"
)

func directory() []models.User {
	return []models.User{
		models.DefaultAdmin(),
		{ID: "u1", Username: "mona", Password: "s3cret"},
	}
}

// ---------------------------------------------------------------------------
// Authenticate
// ---------------------------------------------------------------------------

func TestAuthenticate(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		name     string
		username string
		password string
		wantID   string
		wantErr  error
	}{
		{"admin matches", "admin", "admin", "admin", nil},
		{"user matches", "mona", "s3cret", "u1", nil},
		{"wrong password", "mona", "nope", "", auth.ErrInvalidCredentials},
		{"username is case sensitive", "Mona", "s3cret", "", auth.ErrInvalidCredentials},
		{"password is case sensitive", "mona", "S3CRET", "", auth.ErrInvalidCredentials},
		{"empty input", "", "", "", auth.ErrInvalidCredentials},
	}

	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			u, err := auth.Authenticate(tc.username, tc.password, directory())
			if tc.wantErr != nil {
				c.Assert(err, qt.ErrorIs, tc.wantErr)
				return
			}
			c.Assert(err, qt.IsNil)
			c.Assert(u.ID, qt.Equals, tc.wantID)
		})
	}
}

// ---------------------------------------------------------------------------
// Directory changes
// ---------------------------------------------------------------------------

func TestAddUser(t *testing.T) {
	c := qt.New(t)

	c.Run("appends a new account", func(c *qt.C) {
		users, nu, err := auth.AddUser(directory(), "omar", "pw", "u2")
		c.Assert(err, qt.IsNil)
		c.Assert(nu, qt.DeepEquals, models.User{ID: "u2", Username: "omar", Password: "pw"})
		c.Assert(users, qt.HasLen, 3)
	})

	c.Run("missing fields are rejected", func(c *qt.C) {
		_, _, err := auth.AddUser(directory(), "", "pw", "u2")
		c.Assert(err, qt.ErrorIs, auth.ErrMissingCredentials)
		_, _, err = auth.AddUser(directory(), "omar", "", "u2")
		c.Assert(err, qt.ErrorIs, auth.ErrMissingCredentials)
	})

	c.Run("duplicate username is rejected", func(c *qt.C) {
		_, _, err := auth.AddUser(directory(), "mona", "x", "u2")
		c.Assert(err, qt.ErrorIs, auth.ErrUsernameTaken)
	})
}

func TestUpdateProfile(t *testing.T) {
	c := qt.New(t)

	c.Run("renames and changes password", func(c *qt.C) {
		in := directory()
		users, u, err := auth.UpdateProfile(in, "u1", "mona2", "new")
		c.Assert(err, qt.IsNil)
		c.Assert(u.Username, qt.Equals, "mona2")
		c.Assert(users[1].Password, qt.Equals, "new")
		c.Assert(in[1].Username, qt.Equals, "mona")
	})

	c.Run("unknown id", func(c *qt.C) {
		_, _, err := auth.UpdateProfile(directory(), "zz", "a", "b")
		c.Assert(err, qt.ErrorIs, auth.ErrUserNotFound)
	})

	c.Run("taking another user's name is rejected", func(c *qt.C) {
		_, _, err := auth.UpdateProfile(directory(), "u1", "admin", "b")
		c.Assert(err, qt.ErrorIs, auth.ErrUsernameTaken)
	})
}

func TestDeleteUser(t *testing.T) {
	c := qt.New(t)

	c.Run("admin cannot be deleted", func(c *qt.C) {
		in := directory()
		users, err := auth.DeleteUser(in, models.AdminID, "u1")
		c.Assert(err, qt.ErrorIs, auth.ErrAdminUndeletable)
		c.Assert(users, qt.DeepEquals, directory())
	})

	c.Run("own account cannot be deleted", func(c *qt.C) {
		_, err := auth.DeleteUser(directory(), "u1", "u1")
		c.Assert(err, qt.ErrorIs, auth.ErrSelfDelete)
	})

	c.Run("unknown id", func(c *qt.C) {
		_, err := auth.DeleteUser(directory(), "zz", "admin")
		c.Assert(err, qt.ErrorIs, auth.ErrUserNotFound)
	})

	c.Run("deletes another account", func(c *qt.C) {
		users, err := auth.DeleteUser(directory(), "u1", "admin")
		c.Assert(err, qt.IsNil)
		c.Assert(users, qt.DeepEquals, []models.User{models.DefaultAdmin()})
	})
}
