package db

import (
	"github.com/pkg/errors"

	"github.com/polychat/polychat/internal/profile"
	"github.com/polychat/polychat/store"
	"github.com/polychat/polychat/store/db/sqlite"
)

// NewDBDriver creates a new DB driver based on the profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	switch profile.Driver {
	case "sqlite":
		return sqlite.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver: %s", profile.Driver)
	}
}
