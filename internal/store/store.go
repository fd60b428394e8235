// Package store holds the shared in-memory projection of the repository.
// One Store instance is injected into every rule component, so a write made
// through one component is immediately visible to the others. The repository
// stays the source of truth; Reload rebuilds the projection from it.
package store

import (
	"context"
	"sort"

	"villainlair/internal/domain"
	"villainlair/internal/repo"
)

type Store struct {
	Minions   map[int64]domain.Minion
	Schemes   map[int64]domain.EvilScheme
	Equipment map[int64]domain.Equipment
	Bases     map[int64]domain.SecretBase
}

func New() *Store {
	return &Store{
		Minions:   map[int64]domain.Minion{},
		Schemes:   map[int64]domain.EvilScheme{},
		Equipment: map[int64]domain.Equipment{},
		Bases:     map[int64]domain.SecretBase{},
	}
}

// Reload rebuilds every projection from the repository.
func (s *Store) Reload(ctx context.Context, r repo.Repo) error {
	minions, err := r.GetAllMinions(ctx)
	if err != nil {
		return err
	}
	schemes, err := r.GetAllSchemes(ctx)
	if err != nil {
		return err
	}
	equipment, err := r.GetAllEquipment(ctx)
	if err != nil {
		return err
	}
	bases, err := r.GetAllBases(ctx)
	if err != nil {
		return err
	}
	s.Minions = make(map[int64]domain.Minion, len(minions))
	for _, m := range minions {
		s.Minions[m.ID] = m
	}
	s.Schemes = make(map[int64]domain.EvilScheme, len(schemes))
	for _, sc := range schemes {
		s.Schemes[sc.ID] = sc
	}
	s.Equipment = make(map[int64]domain.Equipment, len(equipment))
	for _, e := range equipment {
		s.Equipment[e.ID] = e
	}
	s.Bases = make(map[int64]domain.SecretBase, len(bases))
	for _, b := range bases {
		s.Bases[b.ID] = b
	}
	return nil
}

func (s *Store) PutMinion(m domain.Minion)       { s.Minions[m.ID] = m }
func (s *Store) PutScheme(sc domain.EvilScheme)  { s.Schemes[sc.ID] = sc }
func (s *Store) PutEquipment(e domain.Equipment) { s.Equipment[e.ID] = e }
func (s *Store) PutBase(b domain.SecretBase)     { s.Bases[b.ID] = b }

func (s *Store) RemoveMinion(id int64)    { delete(s.Minions, id) }
func (s *Store) RemoveScheme(id int64)    { delete(s.Schemes, id) }
func (s *Store) RemoveEquipment(id int64) { delete(s.Equipment, id) }
func (s *Store) RemoveBase(id int64)      { delete(s.Bases, id) }

// SchemeMinions returns the minions assigned to a scheme, ordered by id so
// derived computations are deterministic.
func (s *Store) SchemeMinions(schemeID int64) []domain.Minion {
	var res []domain.Minion
	for _, m := range s.Minions {
		if m.CurrentSchemeID != nil && *m.CurrentSchemeID == schemeID {
			res = append(res, m)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// SchemeEquipment returns the equipment assigned to a scheme, ordered by id.
func (s *Store) SchemeEquipment(schemeID int64) []domain.Equipment {
	var res []domain.Equipment
	for _, e := range s.Equipment {
		if e.AssignedSchemeID != nil && *e.AssignedSchemeID == schemeID {
			res = append(res, e)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// BaseMinions returns the minions stationed at a base, ordered by id.
func (s *Store) BaseMinions(baseID int64) []domain.Minion {
	var res []domain.Minion
	for _, m := range s.Minions {
		if m.CurrentBaseID != nil && *m.CurrentBaseID == baseID {
			res = append(res, m)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// BaseEquipment returns the equipment stored at a base, ordered by id.
func (s *Store) BaseEquipment(baseID int64) []domain.Equipment {
	var res []domain.Equipment
	for _, e := range s.Equipment {
		if e.StoredBaseID != nil && *e.StoredBaseID == baseID {
			res = append(res, e)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}
