package rules

import (
	"context"
	"fmt"
	"strings"
	"time"

	"villainlair/internal/config"
	"villainlair/internal/domain"
	"villainlair/internal/events"
	"villainlair/internal/repo"
	"villainlair/internal/store"
)

// BaseRules covers occupancy and capacity, discovery state, equipment
// storage and monthly cost aggregation.
type BaseRules struct {
	Repo   repo.Repo
	Store  *store.Store
	Config *config.Config
	Events events.Writer
	Now    func() time.Time
}

func (r BaseRules) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Security status classifications.
const (
	SecuritySafe       = "Safe"
	SecurityUrgent     = "Recently Discovered - Urgent Evacuation"
	SecurityDiscovered = "Discovered"
)

// CurrentOccupancy counts minions stationed at the base. Always derived,
// never stored.
func (r BaseRules) CurrentOccupancy(ctx context.Context, baseID int64) (int, error) {
	return r.Repo.GetBaseOccupancy(ctx, baseID)
}

// AvailableCapacity returns how many more minions the base can take.
func (r BaseRules) AvailableCapacity(ctx context.Context, baseID int64) (int, error) {
	base, err := getBase(ctx, r.Repo, r.Store, baseID)
	if err != nil {
		return 0, err
	}
	occupancy, err := r.CurrentOccupancy(ctx, baseID)
	if err != nil {
		return 0, err
	}
	return base.Capacity - occupancy, nil
}

// CanAccommodateMinion reports whether there is room for one more.
func (r BaseRules) CanAccommodateMinion(ctx context.Context, baseID int64) (bool, error) {
	avail, err := r.AvailableCapacity(ctx, baseID)
	if err != nil {
		return false, err
	}
	return avail > 0, nil
}

// OccupancyPercentage returns occupancy as a percentage of capacity, zero
// for a zero-capacity base.
func (r BaseRules) OccupancyPercentage(ctx context.Context, baseID int64) (float64, error) {
	base, err := getBase(ctx, r.Repo, r.Store, baseID)
	if err != nil {
		return 0, err
	}
	if base.Capacity == 0 {
		return 0, nil
	}
	occupancy, err := r.CurrentOccupancy(ctx, baseID)
	if err != nil {
		return 0, err
	}
	return float64(occupancy) / float64(base.Capacity) * 100, nil
}

// IsAtFullCapacity reports whether the base has no room left.
func (r BaseRules) IsAtFullCapacity(ctx context.Context, baseID int64) (bool, error) {
	avail, err := r.AvailableCapacity(ctx, baseID)
	if err != nil {
		return false, err
	}
	return avail <= 0, nil
}

// CanAssignMinion is the soft pre-check for stationing a minion, collecting
// every applicable objection.
func (r BaseRules) CanAssignMinion(ctx context.Context, baseID, minionID int64) (bool, []string, error) {
	base, err := getBase(ctx, r.Repo, r.Store, baseID)
	if err != nil {
		return false, nil, err
	}
	m, err := getMinion(ctx, r.Repo, r.Store, minionID)
	if err != nil {
		return false, nil, err
	}
	var errs []string
	if m.CurrentBaseID != nil && *m.CurrentBaseID == baseID {
		errs = append(errs, "Minion is already at this base")
	}
	occupancy, err := r.CurrentOccupancy(ctx, baseID)
	if err != nil {
		return false, nil, err
	}
	if occupancy >= base.Capacity {
		errs = append(errs, fmt.Sprintf("Base is at full capacity (%d minions)", base.Capacity))
	}
	return len(errs) == 0, errs, nil
}

// MarkDiscovered records that the heroes found the base.
func (r BaseRules) MarkDiscovered(ctx context.Context, baseID int64, discoveryDate time.Time) error {
	base, err := getBase(ctx, r.Repo, r.Store, baseID)
	if err != nil {
		return err
	}
	ts := discoveryDate.UTC().Format(time.RFC3339)
	base.IsDiscovered = true
	base.LastInspectionDate = &ts
	if err := r.Repo.UpdateBase(ctx, base); err != nil {
		return err
	}
	r.Store.PutBase(base)
	return r.Events.Append(ctx, "base.discovered", "base", baseID, "system", events.EventPayload{"date": ts})
}

// MarkSafe clears the discovery flag after relocation or cover-up.
func (r BaseRules) MarkSafe(ctx context.Context, baseID int64) error {
	base, err := getBase(ctx, r.Repo, r.Store, baseID)
	if err != nil {
		return err
	}
	base.IsDiscovered = false
	if err := r.Repo.UpdateBase(ctx, base); err != nil {
		return err
	}
	r.Store.PutBase(base)
	return r.Events.Append(ctx, "base.secured", "base", baseID, "system", nil)
}

// SecurityStatus classifies discovery state. A discovery within the last
// week calls for evacuation.
func (r BaseRules) SecurityStatus(ctx context.Context, baseID int64) (string, error) {
	base, err := getBase(ctx, r.Repo, r.Store, baseID)
	if err != nil {
		return "", err
	}
	if !base.IsDiscovered {
		return SecuritySafe, nil
	}
	if base.LastInspectionDate != nil && daysSince(r.now(), *base.LastInspectionDate) < 7 {
		return SecurityUrgent, nil
	}
	return SecurityDiscovered, nil
}

// CanStoreEquipment is the soft pre-check for storing equipment at a base.
// Equipment lives at one base at a time.
func (r BaseRules) CanStoreEquipment(ctx context.Context, baseID, equipmentID int64) (bool, []string, error) {
	if _, err := getBase(ctx, r.Repo, r.Store, baseID); err != nil {
		return false, nil, err
	}
	e, err := getEquipment(ctx, r.Repo, r.Store, equipmentID)
	if err != nil {
		return false, nil, err
	}
	var errs []string
	if e.Condition < r.Config.Equipment.MinCondition {
		errs = append(errs, fmt.Sprintf("Equipment condition too low (%d%%) - must be at least %d%%", e.Condition, r.Config.Equipment.MinCondition))
	}
	if e.StoredBaseID != nil && *e.StoredBaseID == baseID {
		errs = append(errs, "Equipment is already stored at this base")
	}
	if e.StoredBaseID != nil && *e.StoredBaseID != baseID {
		errs = append(errs, "Equipment is already stored at another base")
	}
	return len(errs) == 0, errs, nil
}

// StoreEquipment validates and records equipment storage at the base.
func (r BaseRules) StoreEquipment(ctx context.Context, baseID, equipmentID int64) error {
	ok, errs, err := r.CanStoreEquipment(ctx, baseID, equipmentID)
	if err != nil {
		return err
	}
	if !ok {
		return violationf("%s", strings.Join(errs, "; "))
	}
	e, err := getEquipment(ctx, r.Repo, r.Store, equipmentID)
	if err != nil {
		return err
	}
	e.StoredBaseID = &baseID
	if err := r.Repo.UpdateEquipment(ctx, e); err != nil {
		return err
	}
	r.Store.PutEquipment(e)
	return r.Events.Append(ctx, "equipment.stored", "equipment", equipmentID, "system", events.EventPayload{"base_id": baseID})
}

// StoredEquipment lists the equipment currently stored at the base.
func (r BaseRules) StoredEquipment(ctx context.Context, baseID int64) ([]domain.Equipment, error) {
	if _, err := getBase(ctx, r.Repo, r.Store, baseID); err != nil {
		return nil, err
	}
	return r.Store.BaseEquipment(baseID), nil
}

// AvailableStorageSpace estimates remaining storage slots: two items per
// unit of capacity, floored at zero.
func (r BaseRules) AvailableStorageSpace(ctx context.Context, baseID int64) (int, error) {
	base, err := getBase(ctx, r.Repo, r.Store, baseID)
	if err != nil {
		return 0, err
	}
	stored := len(r.Store.BaseEquipment(baseID))
	space := base.Capacity*2 - stored
	if space < 0 {
		space = 0
	}
	return space, nil
}

// MonthlyCosts sums the base's maintenance with the salary demands of
// every minion stationed there.
func (r BaseRules) MonthlyCosts(ctx context.Context, baseID int64) (float64, error) {
	base, err := getBase(ctx, r.Repo, r.Store, baseID)
	if err != nil {
		return 0, err
	}
	total := base.MonthlyMaintenance
	for _, m := range r.Store.BaseMinions(baseID) {
		total += m.SalaryDemand
	}
	return total, nil
}

// CostTrend gives a rough forward-cost signal: a crowded base full of
// disloyal minions gets expensive.
func (r BaseRules) CostTrend(ctx context.Context, baseID int64) (string, error) {
	base, err := getBase(ctx, r.Repo, r.Store, baseID)
	if err != nil {
		return "", err
	}
	minions := r.Store.BaseMinions(baseID)
	if len(minions) == 0 {
		return "Minimal", nil
	}
	loyaltySum := 0
	for _, m := range minions {
		loyaltySum += m.LoyaltyScore
	}
	avgLoyalty := float64(loyaltySum) / float64(len(minions))
	if float64(len(minions)) >= float64(base.Capacity)*0.8 && avgLoyalty < 50 {
		return "Increasing (High occupancy + Low morale)", nil
	}
	return "Stable", nil
}

// Summary renders a one-screen report of the base.
func (r BaseRules) Summary(ctx context.Context, baseID int64) (string, error) {
	base, err := getBase(ctx, r.Repo, r.Store, baseID)
	if err != nil {
		return "", err
	}
	occupancy, err := r.CurrentOccupancy(ctx, baseID)
	if err != nil {
		return "", err
	}
	monthly, err := r.MonthlyCosts(ctx, baseID)
	if err != nil {
		return "", err
	}
	security, err := r.SecurityStatus(ctx, baseID)
	if err != nil {
		return "", err
	}
	doomsday := "No"
	if base.HasDoomsdayDevice {
		doomsday = "YES"
	}
	stored := len(r.Store.BaseEquipment(baseID))

	var b strings.Builder
	fmt.Fprintf(&b, "Base: %s\n", base.Name)
	fmt.Fprintf(&b, "Location: %s\n", base.Location)
	fmt.Fprintf(&b, "Security Level: %d/10\n", base.SecurityLevel)
	fmt.Fprintf(&b, "Occupancy: %d/%d (%d available)\n", occupancy, base.Capacity, base.Capacity-occupancy)
	fmt.Fprintf(&b, "Doomsday Device: %s\n", doomsday)
	fmt.Fprintf(&b, "Discovery Status: %s\n", security)
	fmt.Fprintf(&b, "Monthly Costs: $%.2f\n", monthly)
	fmt.Fprintf(&b, "Stored Equipment: %d items", stored)
	return b.String(), nil
}
