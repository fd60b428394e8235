package rules_test

import (
	"context"
	"testing"
	"time"

	"villainlair/internal/config"
	"villainlair/internal/db"
	"villainlair/internal/domain"
	"villainlair/internal/events"
	"villainlair/internal/migrate"
	"villainlair/internal/repo"
	"villainlair/internal/rules"
	"villainlair/internal/store"
)

// All rule tests pin the clock to this instant.
var testNow = time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

type env struct {
	ctx       context.Context
	repo      repo.Repo
	store     *store.Store
	cfg       *config.Config
	schemes   rules.SchemeRules
	minions   rules.MinionRules
	equipment rules.EquipmentRules
	bases     rules.BaseRules
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: dir})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	r := repo.Repo{DB: conn}
	st := store.New()
	cfg := config.Default()
	now := func() time.Time { return testNow }
	w := events.Writer{DB: conn, Now: now}

	return &env{
		ctx:       context.Background(),
		repo:      r,
		store:     st,
		cfg:       cfg,
		schemes:   rules.SchemeRules{Repo: r, Store: st, Config: cfg, Events: w, Now: now},
		minions:   rules.MinionRules{Repo: r, Store: st, Config: cfg, Events: w, Now: now},
		equipment: rules.EquipmentRules{Repo: r, Store: st, Config: cfg, Events: w, Now: now},
		bases:     rules.BaseRules{Repo: r, Store: st, Config: cfg, Events: w, Now: now},
	}
}

func ts(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func ptr[T any](v T) *T { return &v }

func (e *env) addScheme(t *testing.T, s domain.EvilScheme) domain.EvilScheme {
	t.Helper()
	if s.Name == "" {
		s.Name = "Test Scheme"
	}
	if s.Status == "" {
		s.Status = domain.StatusPlanning
	}
	if s.Budget == 0 {
		s.Budget = 500000
	}
	if s.TargetCompletionDate == "" {
		s.TargetCompletionDate = ts(testNow.AddDate(0, 6, 0))
	}
	if s.RequiredSpecialty == "" {
		s.RequiredSpecialty = "Engineering"
	}
	if s.DiabolicalRating == 0 {
		s.DiabolicalRating = 5
	}
	id, err := e.repo.InsertScheme(e.ctx, s)
	if err != nil {
		t.Fatalf("insert scheme: %v", err)
	}
	s.ID = id
	e.store.PutScheme(s)
	return s
}

func (e *env) addMinion(t *testing.T, m domain.Minion) domain.Minion {
	t.Helper()
	if m.Name == "" {
		m.Name = "Test Minion"
	}
	if m.Specialty == "" {
		m.Specialty = "Engineering"
	}
	if m.SkillLevel == 0 {
		m.SkillLevel = 5
	}
	if m.SalaryDemand == 0 {
		m.SalaryDemand = 5000
	}
	if m.LastMoodUpdate == "" {
		m.LastMoodUpdate = ts(testNow)
	}
	id, err := e.repo.InsertMinion(e.ctx, m)
	if err != nil {
		t.Fatalf("insert minion: %v", err)
	}
	m.ID = id
	e.store.PutMinion(m)
	return m
}

func (e *env) addEquipment(t *testing.T, eq domain.Equipment) domain.Equipment {
	t.Helper()
	if eq.Name == "" {
		eq.Name = "Test Gear"
	}
	if eq.Category == "" {
		eq.Category = "Gadget"
	}
	if eq.PurchasePrice == 0 {
		eq.PurchasePrice = 10000
	}
	id, err := e.repo.InsertEquipment(e.ctx, eq)
	if err != nil {
		t.Fatalf("insert equipment: %v", err)
	}
	eq.ID = id
	e.store.PutEquipment(eq)
	return eq
}

func (e *env) addBase(t *testing.T, b domain.SecretBase) domain.SecretBase {
	t.Helper()
	if b.Name == "" {
		b.Name = "Test Base"
	}
	if b.Location == "" {
		b.Location = "Undisclosed"
	}
	if b.Capacity == 0 {
		b.Capacity = 10
	}
	if b.SecurityLevel == 0 {
		b.SecurityLevel = 5
	}
	id, err := e.repo.InsertBase(e.ctx, b)
	if err != nil {
		t.Fatalf("insert base: %v", err)
	}
	b.ID = id
	e.store.PutBase(b)
	return b
}

func wantViolation(t *testing.T, err error) *rules.Violation {
	t.Helper()
	if err == nil {
		t.Fatalf("expected rule violation, got nil")
	}
	v, ok := err.(*rules.Violation)
	if !ok {
		t.Fatalf("expected *rules.Violation, got %T: %v", err, err)
	}
	return v
}
