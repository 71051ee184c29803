package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/wfunc/rpsserver/models"
	"github.com/wfunc/rpsserver/persistence"
)

const DefaultHeader = "X-User-Id"

// ErrUnauthenticated covers a missing, malformed or unknown caller id.
var ErrUnauthenticated = errors.New("user not found")

// UserFinder is the part of the store the authenticator needs.
type UserFinder interface {
	FindUser(ctx context.Context, id int64) (*models.User, error)
}

// HeaderAuthenticator trusts the user id supplied by the caller in a request header.
type HeaderAuthenticator struct {
	header string
	users  UserFinder
}

func NewHeaderAuthenticator(header string, users UserFinder) *HeaderAuthenticator {
	if header == "" {
		header = DefaultHeader
	}
	return &HeaderAuthenticator{header: header, users: users}
}

// Header returns the name of the header carrying the caller id.
func (a *HeaderAuthenticator) Header() string {
	return a.header
}

// UserID extracts the caller id without looking it up.
func (a *HeaderAuthenticator) UserID(r *http.Request) (int64, bool) {
	return models.ParseID(r.Header.Get(a.header))
}

// Authenticate resolves the caller. Store failures other than a missing user
// are returned as-is so they surface as server errors.
func (a *HeaderAuthenticator) Authenticate(r *http.Request) (*models.User, error) {
	id, ok := a.UserID(r)
	if !ok {
		return nil, ErrUnauthenticated
	}
	user, err := a.users.FindUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, persistence.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return user, nil
}
