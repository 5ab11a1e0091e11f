package database

import (
	"path/filepath"

	"github.com/pkg/errors"
)

// StormFilename is the name of the storm file created in the configured database path.
const StormFilename = "todobot.db"

// Options are the settings used by Open.
type Options struct {
	Driver string
	// Storm params
	Path  string
	Codec string
	// Postgres params
	URL          string
	MaxOpenConns int
}

// StormFile returns the storm file location for the given directory.
func StormFile(path string) string {
	if len(path) == 0 {
		return StormFilename
	}
	return filepath.Join(path, StormFilename)
}

// Open returns a Client for the configured driver.
func Open(opts Options) (Client, error) {
	switch opts.Driver {
	case "", DriverStorm:
		return StormOpen(StormFile(opts.Path), opts.Codec)
	case DriverPostgres:
		return PostgresOpen(opts.URL, opts.MaxOpenConns)
	default:
		return nil, errors.Errorf("unsupported database driver %q", opts.Driver)
	}
}

// Init creates the collection and its indexes for the configured driver.
func Init(opts Options) error {
	switch opts.Driver {
	case "", DriverStorm:
		return StormInit(StormFile(opts.Path), opts.Codec)
	case DriverPostgres:
		return PostgresInit(opts.URL)
	default:
		return errors.Errorf("unsupported database driver %q", opts.Driver)
	}
}
