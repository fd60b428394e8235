package rules_test

import (
	"strings"
	"testing"

	"villainlair/internal/domain"
)

func TestLoyaltyGrowthAndDecay(t *testing.T) {
	e := newEnv(t)
	cases := []struct {
		name    string
		initial int
		demand  float64
		paid    float64
		want    int
	}{
		{"satisfied", 70, 5000, 5000, 73},
		{"overpaid", 70, 5000, 6000, 73},
		{"underpaid", 70, 5000, 4000, 65},
		{"clamped at zero", 3, 3000, 2000, 0},
		{"clamped at hundred", 98, 3000, 4000, 100},
	}
	for _, tc := range cases {
		m := e.addMinion(t, domain.Minion{LoyaltyScore: tc.initial, SalaryDemand: tc.demand})
		got, err := e.minions.UpdateLoyalty(e.ctx, m.ID, tc.paid)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got.LoyaltyScore != tc.want {
			t.Fatalf("%s: loyalty = %d, want %d", tc.name, got.LoyaltyScore, tc.want)
		}
		stored, err := e.repo.GetMinionByID(e.ctx, m.ID)
		if err != nil {
			t.Fatalf("%s: get: %v", tc.name, err)
		}
		if stored.LoyaltyScore != tc.want {
			t.Fatalf("%s: persisted loyalty = %d, want %d", tc.name, stored.LoyaltyScore, tc.want)
		}
	}
}

func TestMoodDetermination(t *testing.T) {
	e := newEnv(t)
	cases := []struct {
		name         string
		loyalty      int
		daysAssigned int // 0 means unassigned
		want         string
	}{
		{"loyal and rested", 85, 30, domain.MoodHappy},
		{"loyal but overworked", 85, 70, domain.MoodExhausted},
		{"middling", 55, 20, domain.MoodGrumpy},
		{"disloyal", 25, 15, domain.MoodBetrayal},
		{"unassigned middling", 45, 0, domain.MoodGrumpy},
	}
	scheme := e.addScheme(t, domain.EvilScheme{})
	for _, tc := range cases {
		m := domain.Minion{LoyaltyScore: tc.loyalty}
		if tc.daysAssigned > 0 {
			schemeID := scheme.ID
			m.CurrentSchemeID = &schemeID
			m.SchemeAssignmentDate = ptr(ts(testNow.AddDate(0, 0, -tc.daysAssigned)))
		}
		created := e.addMinion(t, m)

		got, err := e.minions.UpdateMood(e.ctx, created.ID)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got.MoodStatus != tc.want {
			t.Fatalf("%s: mood = %q, want %q", tc.name, got.MoodStatus, tc.want)
		}
		if got.LastMoodUpdate != ts(testNow) {
			t.Fatalf("%s: mood timestamp not refreshed: %q", tc.name, got.LastMoodUpdate)
		}
	}
}

func TestMoodBoundaries(t *testing.T) {
	e := newEnv(t)

	scheme := e.addScheme(t, domain.EvilScheme{})

	// Loyalty exactly at a threshold falls in the Grumpy band, and exactly
	// 60 days assigned is not yet overworked.
	m := e.addMinion(t, domain.Minion{
		LoyaltyScore:         70,
		CurrentSchemeID:      ptr(scheme.ID),
		SchemeAssignmentDate: ptr(ts(testNow.AddDate(0, 0, -60))),
	})
	got, err := e.minions.UpdateMood(e.ctx, m.ID)
	if err != nil {
		t.Fatalf("update mood: %v", err)
	}
	if got.MoodStatus != domain.MoodGrumpy {
		t.Fatalf("mood = %q, want Grumpy at both boundaries", got.MoodStatus)
	}

	low := e.addMinion(t, domain.Minion{LoyaltyScore: 40})
	got, err = e.minions.UpdateMood(e.ctx, low.ID)
	if err != nil {
		t.Fatalf("update mood: %v", err)
	}
	if got.MoodStatus != domain.MoodGrumpy {
		t.Fatalf("loyalty 40 mood = %q, want Grumpy", got.MoodStatus)
	}
}

func TestAssignMinionToScheme(t *testing.T) {
	e := newEnv(t)
	scheme := e.addScheme(t, domain.EvilScheme{
		RequiredSkillLevel: 6,
		RequiredSpecialty:  "Hacking",
		Status:             domain.StatusPlanning,
	})

	lowSkill := e.addMinion(t, domain.Minion{SkillLevel: 5, Specialty: "Hacking"})
	wantViolation(t, e.minions.AssignMinionToScheme(e.ctx, lowSkill.ID, scheme.ID))

	wrongTrade := e.addMinion(t, domain.Minion{SkillLevel: 8, Specialty: "Combat"})
	wantViolation(t, e.minions.AssignMinionToScheme(e.ctx, wrongTrade.ID, scheme.ID))

	qualified := e.addMinion(t, domain.Minion{SkillLevel: 8, Specialty: "Hacking"})
	if err := e.minions.AssignMinionToScheme(e.ctx, qualified.ID, scheme.ID); err != nil {
		t.Fatalf("valid assignment rejected: %v", err)
	}
	stored, err := e.repo.GetMinionByID(e.ctx, qualified.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.CurrentSchemeID == nil || *stored.CurrentSchemeID != scheme.ID {
		t.Fatalf("scheme reference not persisted: %+v", stored)
	}
	if stored.SchemeAssignmentDate == nil || *stored.SchemeAssignmentDate != ts(testNow) {
		t.Fatalf("assignment timestamp not recorded: %+v", stored.SchemeAssignmentDate)
	}
}

func TestReassignmentBlockedOnlyForActiveTargets(t *testing.T) {
	e := newEnv(t)
	other := e.addScheme(t, domain.EvilScheme{RequiredSpecialty: "Hacking"})
	busy := e.addMinion(t, domain.Minion{SkillLevel: 8, Specialty: "Hacking", CurrentSchemeID: &other.ID})

	activeTarget := e.addScheme(t, domain.EvilScheme{
		Status:             domain.StatusActive,
		RequiredSkillLevel: 6,
		RequiredSpecialty:  "Hacking",
	})
	wantViolation(t, e.minions.AssignMinionToScheme(e.ctx, busy.ID, activeTarget.ID))

	planningTarget := e.addScheme(t, domain.EvilScheme{
		Status:             domain.StatusPlanning,
		RequiredSkillLevel: 6,
		RequiredSpecialty:  "Hacking",
	})
	if err := e.minions.AssignMinionToScheme(e.ctx, busy.ID, planningTarget.ID); err != nil {
		t.Fatalf("poaching for a planning scheme should be allowed: %v", err)
	}
}

func TestUnassignMinionFromScheme(t *testing.T) {
	e := newEnv(t)
	scheme := e.addScheme(t, domain.EvilScheme{})
	m := e.addMinion(t, domain.Minion{
		CurrentSchemeID:      &scheme.ID,
		SchemeAssignmentDate: ptr(ts(testNow)),
	})

	if err := e.minions.UnassignMinionFromScheme(e.ctx, m.ID); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	stored, err := e.repo.GetMinionByID(e.ctx, m.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.CurrentSchemeID != nil || stored.SchemeAssignmentDate != nil {
		t.Fatalf("scheme reference should be cleared to NULL: %+v", stored)
	}

	// Unassigning an unassigned minion is a no-op.
	if err := e.minions.UnassignMinionFromScheme(e.ctx, m.ID); err != nil {
		t.Fatalf("repeat unassign: %v", err)
	}
}

func TestAssignMinionToBaseCapacity(t *testing.T) {
	e := newEnv(t)
	base := e.addBase(t, domain.SecretBase{Capacity: 2})
	e.addMinion(t, domain.Minion{CurrentBaseID: &base.ID})

	m := e.addMinion(t, domain.Minion{})
	if err := e.minions.AssignMinionToBase(e.ctx, m.ID, base.ID); err != nil {
		t.Fatalf("assign below capacity: %v", err)
	}

	extra := e.addMinion(t, domain.Minion{})
	v := wantViolation(t, e.minions.AssignMinionToBase(e.ctx, extra.ID, base.ID))
	if !strings.Contains(v.Message, "at full capacity") {
		t.Fatalf("violation message %q", v.Message)
	}
}

func TestBulkBaseAssignmentIsAllOrNothing(t *testing.T) {
	e := newEnv(t)
	base := e.addBase(t, domain.SecretBase{Capacity: 30})
	for i := 0; i < 28; i++ {
		e.addMinion(t, domain.Minion{CurrentBaseID: &base.ID})
	}

	var newcomers []int64
	for i := 0; i < 3; i++ {
		m := e.addMinion(t, domain.Minion{})
		newcomers = append(newcomers, m.ID)
	}

	v := wantViolation(t, e.minions.AssignMinionsToBase(e.ctx, newcomers, base.ID))
	if !strings.Contains(v.Message, "would exceed capacity") {
		t.Fatalf("violation message %q", v.Message)
	}
	for _, id := range newcomers {
		stored, err := e.repo.GetMinionByID(e.ctx, id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if stored.CurrentBaseID != nil {
			t.Fatalf("minion %d was assigned despite batch rejection", id)
		}
	}

	// Two fit exactly.
	if err := e.minions.AssignMinionsToBase(e.ctx, newcomers[:2], base.ID); err != nil {
		t.Fatalf("fitting batch rejected: %v", err)
	}
	occupancy, err := e.repo.GetBaseOccupancy(e.ctx, base.ID)
	if err != nil {
		t.Fatalf("occupancy: %v", err)
	}
	if occupancy != 30 {
		t.Fatalf("occupancy = %d, want 30", occupancy)
	}
}

func TestCreateMinionFieldValidation(t *testing.T) {
	e := newEnv(t)
	valid := domain.Minion{Name: "Recruit", Specialty: "Hacking", SkillLevel: 8, SalaryDemand: 5000}

	cases := []struct {
		name   string
		mutate func(domain.Minion) domain.Minion
	}{
		{"unknown specialty", func(m domain.Minion) domain.Minion { m.Specialty = "Magic"; return m }},
		{"wrong case specialty", func(m domain.Minion) domain.Minion { m.Specialty = "hacking"; return m }},
		{"skill too low", func(m domain.Minion) domain.Minion { m.SkillLevel = 0; return m }},
		{"skill too high", func(m domain.Minion) domain.Minion { m.SkillLevel = 11; return m }},
		{"zero salary", func(m domain.Minion) domain.Minion { m.SalaryDemand = 0; return m }},
		{"negative salary", func(m domain.Minion) domain.Minion { m.SalaryDemand = -1000; return m }},
	}
	for _, tc := range cases {
		_, _, err := e.minions.CreateMinion(e.ctx, tc.mutate(valid))
		wantViolation(t, err)
	}

	m, warnings, err := e.minions.CreateMinion(e.ctx, valid)
	if err != nil {
		t.Fatalf("valid minion rejected: %v", err)
	}
	if m.ID == 0 || len(warnings) != 0 {
		t.Fatalf("created minion: %+v warnings=%v", m, warnings)
	}
	if m.MoodStatus != domain.MoodBetrayal {
		t.Fatalf("zero-loyalty recruit mood = %q, want Plotting Betrayal", m.MoodStatus)
	}
}

func TestCreateMinionFlagsAnomalousSalary(t *testing.T) {
	e := newEnv(t)
	m, warnings, err := e.minions.CreateMinion(e.ctx, domain.Minion{
		Name: "Diva", Specialty: "Disguise", SkillLevel: 9, SalaryDemand: 1500000,
	})
	if err != nil {
		t.Fatalf("anomalous salary should be accepted: %v", err)
	}
	if m.ID == 0 || len(warnings) != 1 {
		t.Fatalf("want exactly one salary warning, got %v", warnings)
	}
}

func TestDeleteMinion(t *testing.T) {
	e := newEnv(t)
	m := e.addMinion(t, domain.Minion{})
	if err := e.minions.DeleteMinion(e.ctx, m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := e.repo.GetMinionByID(e.ctx, m.ID); err == nil {
		t.Fatalf("minion still present after delete")
	}
	if _, ok := e.store.Minions[m.ID]; ok {
		t.Fatalf("minion still cached after delete")
	}
}
