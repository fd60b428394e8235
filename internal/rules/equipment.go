package rules

import (
	"context"
	"fmt"
	"time"

	"villainlair/internal/config"
	"villainlair/internal/domain"
	"villainlair/internal/events"
	"villainlair/internal/repo"
	"villainlair/internal/store"
)

// EquipmentRules covers condition decay, maintenance economics, assignment
// eligibility and the delete side effect on schemes.
type EquipmentRules struct {
	Repo   repo.Repo
	Store  *store.Store
	Config *config.Config
	Events events.Writer
	Now    func() time.Time
}

func (r EquipmentRules) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// DegradeCondition applies monthly wear to equipment working an Active
// scheme. Wear is the whole-month gap since last maintenance times the
// degradation rate; never-maintained equipment does not degrade (there is
// no reference point). Persists only when the condition changed.
func (r EquipmentRules) DegradeCondition(ctx context.Context, equipmentID int64) (domain.Equipment, error) {
	e, err := getEquipment(ctx, r.Repo, r.Store, equipmentID)
	if err != nil {
		return e, err
	}
	if e.AssignedSchemeID == nil {
		return e, nil
	}
	scheme, err := getScheme(ctx, r.Repo, r.Store, *e.AssignedSchemeID)
	if err != nil {
		return e, err
	}
	if scheme.Status != domain.StatusActive {
		return e, nil
	}

	months := 0
	if e.LastMaintenance != nil {
		months = monthsBetween(parseTime(*e.LastMaintenance), r.now())
	}
	degradation := months * r.Config.Equipment.DegradationRate
	if degradation == 0 {
		return e, nil
	}
	before := e.Condition
	e.Condition = clamp(e.Condition-degradation, 0, 100)
	if e.Condition == before {
		return e, nil
	}
	if err := r.Repo.UpdateEquipment(ctx, e); err != nil {
		return e, err
	}
	r.Store.PutEquipment(e)
	err = r.Events.Append(ctx, "equipment.degraded", "equipment", equipmentID, "system", events.EventPayload{
		"from": before, "to": e.Condition, "months": months,
	})
	return e, err
}

// MaintenanceCost is what a full repair costs: a percentage of purchase
// price, doubled for doomsday devices.
func (r EquipmentRules) MaintenanceCost(e domain.Equipment) float64 {
	if e.Category == domain.CategoryDoomsday {
		return e.PurchasePrice * r.Config.Equipment.DoomsdayMaintenancePct
	}
	return e.PurchasePrice * r.Config.Equipment.MaintenancePct
}

// PerformMaintenance restores equipment to perfect condition and returns
// the cost. Reads the equipment fresh from the repository so a stale
// projection cannot charge for a repair that is not needed.
func (r EquipmentRules) PerformMaintenance(ctx context.Context, equipmentID int64, availableFunds float64) (float64, error) {
	e, err := r.Repo.GetEquipmentByID(ctx, equipmentID)
	if err != nil {
		return 0, err
	}
	r.Store.PutEquipment(e)

	if e.Condition >= 100 {
		return 0, violationf("Equipment is already in perfect condition")
	}
	cost := r.MaintenanceCost(e)
	if availableFunds < cost {
		return 0, violationf("Insufficient funds for maintenance")
	}

	ts := r.now().UTC().Format(time.RFC3339)
	e.Condition = 100
	e.LastMaintenance = &ts
	if err := r.Repo.UpdateEquipment(ctx, e); err != nil {
		return 0, err
	}
	r.Store.PutEquipment(e)
	if err := r.Events.Append(ctx, "equipment.maintained", "equipment", equipmentID, "system", events.EventPayload{"cost": cost}); err != nil {
		return 0, err
	}
	return cost, nil
}

// IsOperational reports whether the equipment meets the minimum working
// condition.
func (r EquipmentRules) IsOperational(ctx context.Context, equipmentID int64) (bool, error) {
	e, err := getEquipment(ctx, r.Repo, r.Store, equipmentID)
	if err != nil {
		return false, err
	}
	return e.Condition >= r.Config.Equipment.MinCondition, nil
}

// IsBroken reports whether the equipment is below the broken threshold.
func (r EquipmentRules) IsBroken(ctx context.Context, equipmentID int64) (bool, error) {
	e, err := getEquipment(ctx, r.Repo, r.Store, equipmentID)
	if err != nil {
		return false, err
	}
	return e.Condition < r.Config.Equipment.BrokenCondition, nil
}

// ValidateAssignment checks whether equipment may be assigned to a scheme.
// Doomsday devices always demand a skill-9 specialist on the crew and add
// storage and rating diagnostics that warn without blocking.
func (r EquipmentRules) ValidateAssignment(ctx context.Context, equipmentID, schemeID int64) (bool, string, []string, error) {
	e, err := getEquipment(ctx, r.Repo, r.Store, equipmentID)
	if err != nil {
		return false, "", nil, err
	}
	scheme, err := getScheme(ctx, r.Repo, r.Store, schemeID)
	if err != nil {
		return false, "", nil, err
	}

	if e.Condition < r.Config.Equipment.MinCondition {
		return false, "Equipment condition too low for use", nil, nil
	}
	if e.StoredBaseID == nil {
		return false, "Equipment must be stored at a base first", nil, nil
	}
	if e.AssignedSchemeID != nil && *e.AssignedSchemeID != schemeID {
		assigned, err := getScheme(ctx, r.Repo, r.Store, *e.AssignedSchemeID)
		if err != nil {
			return false, "", nil, err
		}
		if assigned.Status == domain.StatusActive {
			return false, "Equipment already assigned to another active scheme", nil, nil
		}
	}

	requiredSkill := r.Config.Rules.SpecialistSkillLevel
	requiresSpecialist := e.RequiresSpecialist
	var warnings []string

	if e.Category == domain.CategoryDoomsday {
		requiresSpecialist = true
		requiredSkill = r.Config.Rules.DoomsdaySpecialistSkill

		storedBase, err := getBase(ctx, r.Repo, r.Store, *e.StoredBaseID)
		if err != nil {
			return false, "", nil, err
		}
		if !storedBase.HasDoomsdayDevice {
			warnings = append(warnings, "Base not equipped to store doomsday devices")
		}
		if scheme.DiabolicalRating < r.Config.Scheme.HighDiabolicalRating {
			warnings = append(warnings, "Doomsday device overkill for low-rated scheme")
		}
	}

	if requiresSpecialist {
		hasSpecialist := false
		for _, m := range r.Store.SchemeMinions(schemeID) {
			if m.SkillLevel >= requiredSkill {
				hasSpecialist = true
				break
			}
		}
		if !hasSpecialist {
			return false, fmt.Sprintf("Equipment requires a specialist minion (skill %d+)", requiredSkill), warnings, nil
		}
	}

	if scheme.PrimaryBaseID != nil && e.StoredBaseID != nil && *e.StoredBaseID != *scheme.PrimaryBaseID {
		warnings = append(warnings, "Equipment is stored away from the scheme's primary base")
	}

	return true, "Assignment Valid", warnings, nil
}

// AssignEquipmentToScheme validates and records the assignment.
func (r EquipmentRules) AssignEquipmentToScheme(ctx context.Context, equipmentID, schemeID int64) ([]string, error) {
	valid, msg, warnings, err := r.ValidateAssignment(ctx, equipmentID, schemeID)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, violationf("%s", msg)
	}
	e, err := getEquipment(ctx, r.Repo, r.Store, equipmentID)
	if err != nil {
		return nil, err
	}
	e.AssignedSchemeID = &schemeID
	if err := r.Repo.UpdateEquipment(ctx, e); err != nil {
		return nil, err
	}
	r.Store.PutEquipment(e)
	if err := r.Events.Append(ctx, "equipment.scheme.assigned", "equipment", equipmentID, "system", events.EventPayload{"scheme_id": schemeID}); err != nil {
		return nil, err
	}
	return warnings, nil
}

// UnassignEquipment pulls equipment off its scheme. Losing gear costs the
// scheme five points of success likelihood, floored at zero.
func (r EquipmentRules) UnassignEquipment(ctx context.Context, equipmentID int64) error {
	e, err := getEquipment(ctx, r.Repo, r.Store, equipmentID)
	if err != nil {
		return err
	}
	if e.AssignedSchemeID == nil {
		return nil
	}
	schemeID := *e.AssignedSchemeID
	if err := r.penalizeScheme(ctx, schemeID); err != nil {
		return err
	}
	e.AssignedSchemeID = nil
	if err := r.Repo.UpdateEquipment(ctx, e); err != nil {
		return err
	}
	r.Store.PutEquipment(e)
	return r.Events.Append(ctx, "equipment.scheme.unassigned", "equipment", equipmentID, "system", events.EventPayload{"scheme_id": schemeID})
}

func (r EquipmentRules) penalizeScheme(ctx context.Context, schemeID int64) error {
	scheme, err := getScheme(ctx, r.Repo, r.Store, schemeID)
	if err != nil {
		return err
	}
	scheme.SuccessLikelihood = clamp(scheme.SuccessLikelihood-5, 0, 100)
	if err := r.Repo.UpdateScheme(ctx, scheme); err != nil {
		return err
	}
	r.Store.PutScheme(scheme)
	return nil
}

// ValidateEquipment checks field rules. Maintenance cost above purchase
// price is suspicious but allowed.
func (r EquipmentRules) ValidateEquipment(e domain.Equipment) (bool, string, []string) {
	if e.Category == "" || !r.Config.ValidCategory(e.Category) {
		return false, "Invalid category", nil
	}
	if e.Condition < 0 || e.Condition > 100 {
		return false, "Condition must be between 0 and 100", nil
	}
	if e.PurchasePrice <= 0 {
		return false, "Purchase price must be greater than zero", nil
	}
	if e.MaintenanceCost < 0 {
		return false, "Maintenance cost cannot be negative", nil
	}
	var warnings []string
	if e.MaintenanceCost > e.PurchasePrice {
		warnings = append(warnings, "Maintenance cost exceeds purchase price")
	}
	return true, "Equipment Valid", warnings
}

// AddEquipment validates and persists a new equipment record.
func (r EquipmentRules) AddEquipment(ctx context.Context, e domain.Equipment) (domain.Equipment, []string, error) {
	valid, msg, warnings := r.ValidateEquipment(e)
	if !valid {
		return e, nil, violationf("%s", msg)
	}
	id, err := r.Repo.InsertEquipment(ctx, e)
	if err != nil {
		return e, nil, err
	}
	e.ID = id
	r.Store.PutEquipment(e)
	if err := r.Events.Append(ctx, "equipment.created", "equipment", id, "system", events.EventPayload{"name": e.Name}); err != nil {
		return e, nil, err
	}
	return e, warnings, nil
}

// UpdateEquipment validates and persists field edits.
func (r EquipmentRules) UpdateEquipment(ctx context.Context, e domain.Equipment) ([]string, error) {
	valid, msg, warnings := r.ValidateEquipment(e)
	if !valid {
		return nil, violationf("%s", msg)
	}
	if err := r.Repo.UpdateEquipment(ctx, e); err != nil {
		return nil, err
	}
	r.Store.PutEquipment(e)
	if err := r.Events.Append(ctx, "equipment.updated", "equipment", e.ID, "system", events.EventPayload{"name": e.Name}); err != nil {
		return nil, err
	}
	return warnings, nil
}

// DeleteEquipment removes the record. If it was assigned to a scheme, that
// scheme loses five points of success likelihood first.
func (r EquipmentRules) DeleteEquipment(ctx context.Context, equipmentID int64) error {
	e, err := r.Repo.GetEquipmentByID(ctx, equipmentID)
	if err != nil {
		return err
	}
	if e.AssignedSchemeID != nil {
		if err := r.penalizeScheme(ctx, *e.AssignedSchemeID); err != nil {
			return err
		}
	}
	if err := r.Repo.DeleteEquipment(ctx, equipmentID); err != nil {
		return err
	}
	r.Store.RemoveEquipment(equipmentID)
	return r.Events.Append(ctx, "equipment.deleted", "equipment", equipmentID, "system", nil)
}
