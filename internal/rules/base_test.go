package rules_test

import (
	"strings"
	"testing"

	"villainlair/internal/domain"
)

func TestOccupancyDerivation(t *testing.T) {
	e := newEnv(t)
	base := e.addBase(t, domain.SecretBase{Capacity: 10})
	for i := 0; i < 3; i++ {
		e.addMinion(t, domain.Minion{CurrentBaseID: &base.ID})
	}

	occupancy, err := e.bases.CurrentOccupancy(e.ctx, base.ID)
	if err != nil || occupancy != 3 {
		t.Fatalf("occupancy = %d, %v", occupancy, err)
	}
	avail, err := e.bases.AvailableCapacity(e.ctx, base.ID)
	if err != nil || avail != 7 {
		t.Fatalf("available = %d, %v", avail, err)
	}
	pct, err := e.bases.OccupancyPercentage(e.ctx, base.ID)
	if err != nil || pct != 30 {
		t.Fatalf("percentage = %v, %v", pct, err)
	}
	full, err := e.bases.IsAtFullCapacity(e.ctx, base.ID)
	if err != nil || full {
		t.Fatalf("full = %v, %v", full, err)
	}
	room, err := e.bases.CanAccommodateMinion(e.ctx, base.ID)
	if err != nil || !room {
		t.Fatalf("can accommodate = %v, %v", room, err)
	}

	for i := 0; i < 7; i++ {
		e.addMinion(t, domain.Minion{CurrentBaseID: &base.ID})
	}
	full, err = e.bases.IsAtFullCapacity(e.ctx, base.ID)
	if err != nil || !full {
		t.Fatalf("full after filling = %v, %v", full, err)
	}
	room, err = e.bases.CanAccommodateMinion(e.ctx, base.ID)
	if err != nil || room {
		t.Fatalf("can accommodate at capacity = %v, %v", room, err)
	}
}

func TestOccupancyPercentageZeroCapacity(t *testing.T) {
	e := newEnv(t)
	base := e.addBase(t, domain.SecretBase{})
	base.Capacity = 0
	if err := e.repo.UpdateBase(e.ctx, base); err != nil {
		t.Fatalf("update: %v", err)
	}
	e.store.PutBase(base)

	pct, err := e.bases.OccupancyPercentage(e.ctx, base.ID)
	if err != nil || pct != 0 {
		t.Fatalf("percentage for zero capacity = %v, %v", pct, err)
	}
}

func TestCanAssignMinionCollectsErrors(t *testing.T) {
	e := newEnv(t)
	base := e.addBase(t, domain.SecretBase{Capacity: 1})
	resident := e.addMinion(t, domain.Minion{CurrentBaseID: &base.ID})

	ok, errs, err := e.bases.CanAssignMinion(e.ctx, base.ID, resident.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if ok || len(errs) != 2 {
		t.Fatalf("resident at a full base should trip both rules: ok=%v errs=%v", ok, errs)
	}

	outsider := e.addMinion(t, domain.Minion{})
	ok, errs, err = e.bases.CanAssignMinion(e.ctx, base.ID, outsider.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if ok || len(errs) != 1 || !strings.Contains(errs[0], "full capacity") {
		t.Fatalf("outsider vs full base: ok=%v errs=%v", ok, errs)
	}
}

func TestDiscoveryLifecycle(t *testing.T) {
	e := newEnv(t)
	base := e.addBase(t, domain.SecretBase{})

	status, err := e.bases.SecurityStatus(e.ctx, base.ID)
	if err != nil || status != "Safe" {
		t.Fatalf("fresh base status = %q, %v", status, err)
	}

	if err := e.bases.MarkDiscovered(e.ctx, base.ID, testNow.AddDate(0, 0, -3)); err != nil {
		t.Fatalf("mark discovered: %v", err)
	}
	status, err = e.bases.SecurityStatus(e.ctx, base.ID)
	if err != nil || status != "Recently Discovered - Urgent Evacuation" {
		t.Fatalf("freshly discovered status = %q, %v", status, err)
	}

	if err := e.bases.MarkDiscovered(e.ctx, base.ID, testNow.AddDate(0, 0, -10)); err != nil {
		t.Fatalf("mark discovered: %v", err)
	}
	status, err = e.bases.SecurityStatus(e.ctx, base.ID)
	if err != nil || status != "Discovered" {
		t.Fatalf("stale discovery status = %q, %v", status, err)
	}

	if err := e.bases.MarkSafe(e.ctx, base.ID); err != nil {
		t.Fatalf("mark safe: %v", err)
	}
	stored, err := e.repo.GetBaseByID(e.ctx, base.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.IsDiscovered {
		t.Fatalf("discovery flag not cleared")
	}
	status, err = e.bases.SecurityStatus(e.ctx, base.ID)
	if err != nil || status != "Safe" {
		t.Fatalf("secured base status = %q, %v", status, err)
	}
}

func TestCanStoreEquipment(t *testing.T) {
	e := newEnv(t)
	base := e.addBase(t, domain.SecretBase{})
	other := e.addBase(t, domain.SecretBase{})

	worn := e.addEquipment(t, domain.Equipment{Condition: 40})
	ok, errs, err := e.bases.CanStoreEquipment(e.ctx, base.ID, worn.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if ok || len(errs) != 1 || !strings.Contains(errs[0], "condition too low") {
		t.Fatalf("worn gear: ok=%v errs=%v", ok, errs)
	}

	here := e.addEquipment(t, domain.Equipment{Condition: 80, StoredBaseID: &base.ID})
	ok, errs, err = e.bases.CanStoreEquipment(e.ctx, base.ID, here.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if ok || len(errs) != 1 || !strings.Contains(errs[0], "already stored at this base") {
		t.Fatalf("resident gear: ok=%v errs=%v", ok, errs)
	}

	elsewhere := e.addEquipment(t, domain.Equipment{Condition: 80, StoredBaseID: &other.ID})
	ok, errs, err = e.bases.CanStoreEquipment(e.ctx, base.ID, elsewhere.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if ok || len(errs) != 1 || !strings.Contains(errs[0], "another base") {
		t.Fatalf("foreign gear: ok=%v errs=%v", ok, errs)
	}

	fresh := e.addEquipment(t, domain.Equipment{Condition: 80})
	if err := e.bases.StoreEquipment(e.ctx, base.ID, fresh.ID); err != nil {
		t.Fatalf("store: %v", err)
	}
	stored, err := e.repo.GetEquipmentByID(e.ctx, fresh.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.StoredBaseID == nil || *stored.StoredBaseID != base.ID {
		t.Fatalf("storage not persisted: %+v", stored)
	}
}

func TestStorageSpace(t *testing.T) {
	e := newEnv(t)
	base := e.addBase(t, domain.SecretBase{Capacity: 2})
	for i := 0; i < 3; i++ {
		e.addEquipment(t, domain.Equipment{Condition: 80, StoredBaseID: &base.ID})
	}

	items, err := e.bases.StoredEquipment(e.ctx, base.ID)
	if err != nil || len(items) != 3 {
		t.Fatalf("stored = %d, %v", len(items), err)
	}
	space, err := e.bases.AvailableStorageSpace(e.ctx, base.ID)
	if err != nil || space != 1 {
		t.Fatalf("space = %d, %v (capacity 2 means 4 slots)", space, err)
	}
}

func TestMonthlyCosts(t *testing.T) {
	e := newEnv(t)
	base := e.addBase(t, domain.SecretBase{MonthlyMaintenance: 20000})
	e.addMinion(t, domain.Minion{SalaryDemand: 3000, CurrentBaseID: &base.ID})
	e.addMinion(t, domain.Minion{SalaryDemand: 4000, CurrentBaseID: &base.ID})
	e.addMinion(t, domain.Minion{SalaryDemand: 9000}) // stationed nowhere

	total, err := e.bases.MonthlyCosts(e.ctx, base.ID)
	if err != nil || total != 27000 {
		t.Fatalf("monthly costs = %v, %v, want 27000", total, err)
	}
}

func TestCostTrend(t *testing.T) {
	e := newEnv(t)

	empty := e.addBase(t, domain.SecretBase{})
	trend, err := e.bases.CostTrend(e.ctx, empty.ID)
	if err != nil || trend != "Minimal" {
		t.Fatalf("empty base trend = %q, %v", trend, err)
	}

	crowded := e.addBase(t, domain.SecretBase{Capacity: 5})
	for i := 0; i < 4; i++ {
		e.addMinion(t, domain.Minion{LoyaltyScore: 20, CurrentBaseID: &crowded.ID})
	}
	trend, err = e.bases.CostTrend(e.ctx, crowded.ID)
	if err != nil || !strings.HasPrefix(trend, "Increasing") {
		t.Fatalf("crowded disloyal base trend = %q, %v", trend, err)
	}

	content := e.addBase(t, domain.SecretBase{Capacity: 5})
	e.addMinion(t, domain.Minion{LoyaltyScore: 90, CurrentBaseID: &content.ID})
	trend, err = e.bases.CostTrend(e.ctx, content.ID)
	if err != nil || trend != "Stable" {
		t.Fatalf("quiet base trend = %q, %v", trend, err)
	}
}

func TestBaseSummary(t *testing.T) {
	e := newEnv(t)
	base := e.addBase(t, domain.SecretBase{
		Name:               "Volcano Fortress",
		Location:           "Pacific Island",
		Capacity:           50,
		SecurityLevel:      9,
		MonthlyMaintenance: 50000,
		HasDoomsdayDevice:  true,
	})
	e.addMinion(t, domain.Minion{SalaryDemand: 3000, CurrentBaseID: &base.ID})

	summary, err := e.bases.Summary(e.ctx, base.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	for _, want := range []string{
		"Base: Volcano Fortress",
		"Occupancy: 1/50 (49 available)",
		"Doomsday Device: YES",
		"Discovery Status: Safe",
		"Monthly Costs: $53000.00",
	} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q:\n%s", want, summary)
		}
	}
}
