package main

import (
	"context"
	"fmt"
	"time"

	"github.com/wfunc/rpsserver/logger"
	"github.com/wfunc/rpsserver/models"
	"github.com/wfunc/rpsserver/persistence"
)

// seedUsers makes the configured users known to the store. Existing rows are
// overwritten so renames in the config take effect.
func seedUsers(db persistence.Store, users []models.User) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for i := range users {
		u := users[i]
		if u.ID <= 0 {
			return fmt.Errorf("user %q: id must be positive", u.Name)
		}
		if err := db.SaveUser(ctx, &u); err != nil {
			return fmt.Errorf("save user %d: %w", u.ID, err)
		}
	}
	logger.Log.Infof("Seeded %d users", len(users))
	return nil
}
