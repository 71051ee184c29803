package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/rpsserver/models"
	"github.com/wfunc/rpsserver/persistence"
)

func TestSeedUsers(t *testing.T) {
	db := persistence.NewMemoryStore()

	err := seedUsers(db, []models.User{{ID: 1, Name: "alice"}, {ID: 2, Name: "bob"}})
	require.NoError(t, err)

	u, err := db.FindUser(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "bob", u.Name)

	// Reseeding renames.
	require.NoError(t, seedUsers(db, []models.User{{ID: 2, Name: "robert"}}))
	u, err = db.FindUser(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "robert", u.Name)
}

func TestSeedUsers_RejectsBadID(t *testing.T) {
	db := persistence.NewMemoryStore()
	assert.Error(t, seedUsers(db, []models.User{{ID: 0, Name: "nobody"}}))
}
