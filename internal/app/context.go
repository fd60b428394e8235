// Package app wires a lair workspace: database, migrations, config, the
// shared store and the rule components. The CLI and the HTTP server both
// start from here.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"villainlair/internal/config"
	"villainlair/internal/db"
	"villainlair/internal/events"
	"villainlair/internal/migrate"
	"villainlair/internal/repo"
	"villainlair/internal/rules"
	"villainlair/internal/store"
)

type Lair struct {
	DB     *sql.DB
	Repo   repo.Repo
	Store  *store.Store
	Config *config.Config
	Events events.Writer

	Schemes   rules.SchemeRules
	Minions   rules.MinionRules
	Equipment rules.EquipmentRules
	Bases     rules.BaseRules
}

type Options struct {
	Workspace string
	// Seed inserts the demo lair when the database is empty.
	Seed bool
}

// Open builds a ready-to-use Lair: opens the database, applies migrations,
// loads the workspace config, optionally seeds, and fills the store.
func Open(ctx context.Context, opts Options) (*Lair, error) {
	conn, err := db.Open(db.Config{Workspace: opts.Workspace})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := migrate.Migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	cfg, err := config.LoadOptional(opts.Workspace)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("load config: %w", err)
	}

	r := repo.Repo{DB: conn}
	if opts.Seed {
		if err := r.SeedInitialData(ctx); err != nil {
			conn.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	st := store.New()
	if err := st.Reload(ctx, r); err != nil {
		conn.Close()
		return nil, fmt.Errorf("load store: %w", err)
	}

	w := events.Writer{DB: conn}
	l := &Lair{
		DB:     conn,
		Repo:   r,
		Store:  st,
		Config: cfg,
		Events: w,

		Schemes:   rules.SchemeRules{Repo: r, Store: st, Config: cfg, Events: w},
		Minions:   rules.MinionRules{Repo: r, Store: st, Config: cfg, Events: w},
		Equipment: rules.EquipmentRules{Repo: r, Store: st, Config: cfg, Events: w},
		Bases:     rules.BaseRules{Repo: r, Store: st, Config: cfg, Events: w},
	}
	return l, nil
}

// SetNow pins the clock on every component, mainly for tests.
func (l *Lair) SetNow(now func() time.Time) {
	l.Events.Now = now
	l.Schemes.Now = now
	l.Minions.Now = now
	l.Equipment.Now = now
	l.Bases.Now = now
	l.Schemes.Events = l.Events
	l.Minions.Events = l.Events
	l.Equipment.Events = l.Events
	l.Bases.Events = l.Events
}

func (l *Lair) Close() error {
	return l.DB.Close()
}
