package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bgentry/go-netrc/netrc"
)

// Credentials is a host-scoped username/password pair.
type Credentials struct {
	// Username is the login field of the netrc machine record.
	Username string
	// Password is the password field of the netrc machine record.
	Password string
}

var (
	// ErrMachineNotFound is returned when the netrc file has no record for
	// the requested host.
	ErrMachineNotFound = errors.New("no credentials for machine")

	// errHomeNotFound is returned when the default netrc location cannot be
	// determined.
	errHomeNotFound = errors.New("unable to determine home directory")
)

// DefaultPath returns the conventional netrc location in the user's home
// directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: %w", errHomeNotFound, err)
	}

	return filepath.Join(home, ".netrc"), nil
}

// Lookup reads the netrc file at path (or the default location when path is
// empty) and returns the credentials recorded for the provided machine.
func Lookup(path, machine string) (*Credentials, error) {
	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}

		path = defaultPath
	}

	rc, err := netrc.ParseFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("parse netrc: %w", err)
	}

	record := rc.FindMachine(machine)
	if record == nil {
		return nil, fmt.Errorf("%s: %w", machine, ErrMachineNotFound)
	}

	return &Credentials{
		Username: record.Login,
		Password: record.Password,
	}, nil
}
