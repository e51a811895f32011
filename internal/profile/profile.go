package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Profile is configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo".
	Mode string
	// Addr is the binding address for server.
	Addr string
	// Port is the binding port for server.
	Port int
	// Data is the data directory.
	Data string
	// Driver is the database driver. Only "sqlite" is supported; the store is
	// client-resident by design.
	Driver string
	// DSN points to the database.
	DSN string
	// Version is the current version of server.
	Version string
	// PersistPartial controls whether a partially streamed assistant reply is
	// committed to the store when the stream fails mid-way. Off by default;
	// the partial text stays with the client.
	PersistPartial bool
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver != "sqlite" {
		return errors.Errorf("unsupported database driver %q (only sqlite is supported)", p.Driver)
	}

	if p.Mode == "prod" && p.Data == "" {
		p.Data = "/var/opt/polychat"
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		return err
	}
	p.Data = dataDir

	if p.DSN == "" {
		dbFile := fmt.Sprintf("polychat_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}
