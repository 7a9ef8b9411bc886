// Package database builds, persists and queries the local crates snapshot.
package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/sigmaSd/rustman-database/internal/models"
	"github.com/sigmaSd/rustman-database/internal/signer"
	"github.com/sigmaSd/rustman-database/internal/storage"
	"github.com/sirupsen/logrus"
)

type state int

const (
	stateReady state = iota
	stateUpdating
	stateFailed
)

// Database ties the aggregator to the updater, the on-disk snapshot and the
// query engine
type Database struct {
	crates  *Aggregator
	updater *Updater
	signer  signer.Signer

	mu      sync.RWMutex
	state   state
	lastErr error
}

// Option customizes a Database
type Option func(*Database)

// WithSigner signs every saved snapshot with s
func WithSigner(s signer.Signer) Option {
	return func(d *Database) {
		d.signer = s
	}
}

// New creates an empty database. updater may be nil for read-only use.
func New(updater *Updater, opts ...Option) *Database {
	d := &Database{
		crates:  NewAggregator(),
		updater: updater,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Update rebuilds the whole collection from the registry. After a failure the
// database refuses to save or search until the next successful Update or Load.
func (d *Database) Update(ctx context.Context) error {
	if d.updater == nil {
		return &models.DatabaseError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("database has no updater"),
		}
	}

	d.setState(stateUpdating, nil)
	if err := d.updater.Update(ctx, d.crates); err != nil {
		d.setState(stateFailed, err)
		return err
	}
	d.setState(stateReady, nil)
	return nil
}

// Save writes the snapshot to path, replacing any previous content
func (d *Database) Save(path string) error {
	if err := d.checkState(true); err != nil {
		return err
	}

	crates := d.crates.Snapshot()
	if err := storage.Save(path, crates); err != nil {
		return err
	}
	logrus.Infof("Saved %d crates to %s", len(crates), path)

	if d.signer != nil {
		sigPath, err := signer.SignFile(d.signer, path)
		if err != nil {
			return &models.DatabaseError{
				Type: models.ErrFileOp,
				Path: path,
				Err:  fmt.Errorf("failed to sign database: %w", err),
			}
		}
		logrus.Infof("Signature written to %s", sigPath)
	}

	return nil
}

// Load replaces the collection with the snapshot stored at path
func (d *Database) Load(path string) error {
	crates, err := storage.Load(path)
	if err != nil {
		return err
	}

	d.crates.Clear()
	d.crates.PushAll(crates)
	d.setState(stateReady, nil)
	logrus.Debugf("Loaded %d crates from %s", len(crates), path)
	return nil
}

// Search returns every crate matching all terms. It runs on a copy, so it
// may be called while an update is filling the collection.
func (d *Database) Search(terms []string) ([]models.Crate, error) {
	if err := d.checkState(false); err != nil {
		return nil, err
	}
	return Search(d.crates.Snapshot(), terms), nil
}

// Crates returns a copy of the complete collection
func (d *Database) Crates() ([]models.Crate, error) {
	if err := d.checkState(true); err != nil {
		return nil, err
	}
	return d.crates.Snapshot(), nil
}

// Len returns the number of crates currently held
func (d *Database) Len() int {
	return d.crates.Len()
}

func (d *Database) setState(s state, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = s
	d.lastErr = err
}

// checkState rejects reads after a failed update; requireComplete also
// rejects reads while an update is running
func (d *Database) checkState(requireComplete bool) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	switch {
	case d.state == stateFailed:
		return &models.DatabaseError{
			Type: models.ErrIncomplete,
			Err:  fmt.Errorf("last update failed, snapshot is partial: %w", d.lastErr),
		}
	case d.state == stateUpdating && requireComplete:
		return &models.DatabaseError{
			Type: models.ErrIncomplete,
			Err:  fmt.Errorf("update in progress"),
		}
	}
	return nil
}
