package rules_test

import (
	"strings"
	"testing"

	"villainlair/internal/domain"
)

func TestSuccessLikelihoodBareScheme(t *testing.T) {
	e := newEnv(t)
	s := e.addScheme(t, domain.EvilScheme{})

	// No crew at all: base 50 minus the resource penalty.
	got, err := e.schemes.CalculateSuccessLikelihood(e.ctx, s.ID)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if got != 35 {
		t.Fatalf("bare scheme score = %d, want 35", got)
	}
}

func TestSuccessLikelihoodClampsAtHundred(t *testing.T) {
	e := newEnv(t)
	s := e.addScheme(t, domain.EvilScheme{RequiredSpecialty: "Engineering"})
	for i := 0; i < 3; i++ {
		e.addMinion(t, domain.Minion{Specialty: "Engineering", CurrentSchemeID: &s.ID})
	}
	for i := 0; i < 4; i++ {
		e.addEquipment(t, domain.Equipment{Condition: 80, AssignedSchemeID: &s.ID})
	}

	// 50 + 3*10 + 4*5 = 100 exactly; anything more must clamp.
	got, err := e.schemes.CalculateSuccessLikelihood(e.ctx, s.ID)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if got != 100 {
		t.Fatalf("score = %d, want 100", got)
	}

	e.addEquipment(t, domain.Equipment{Condition: 100, AssignedSchemeID: &s.ID})
	got, err = e.schemes.CalculateSuccessLikelihood(e.ctx, s.ID)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if got != 100 {
		t.Fatalf("score after extra equipment = %d, want clamp at 100", got)
	}
}

func TestSuccessLikelihoodClampsAtZero(t *testing.T) {
	e := newEnv(t)
	s := e.addScheme(t, domain.EvilScheme{
		Budget:               50000,
		CurrentSpending:      60000,
		TargetCompletionDate: ts(testNow.AddDate(0, 0, -10)),
	})

	// 50 - 20 - 15 - 25 = -10, clamped to 0.
	got, err := e.schemes.CalculateSuccessLikelihood(e.ctx, s.ID)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if got != 0 {
		t.Fatalf("score = %d, want 0", got)
	}
}

func TestSuccessLikelihoodIgnoresUnworkingEquipment(t *testing.T) {
	e := newEnv(t)
	s := e.addScheme(t, domain.EvilScheme{})
	e.addEquipment(t, domain.Equipment{Condition: 49, AssignedSchemeID: &s.ID})
	e.addEquipment(t, domain.Equipment{Condition: 50, AssignedSchemeID: &s.ID})

	// Only the condition-50 item counts: 50 + 5 - 15 = 40.
	got, err := e.schemes.CalculateSuccessLikelihood(e.ctx, s.ID)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if got != 40 {
		t.Fatalf("score = %d, want 40", got)
	}
}

func TestUpdateSuccessLikelihoodPersistsAndIsIdempotent(t *testing.T) {
	e := newEnv(t)
	s := e.addScheme(t, domain.EvilScheme{SuccessLikelihood: 99})

	first, err := e.schemes.UpdateSuccessLikelihood(e.ctx, s.ID)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	stored, err := e.repo.GetSchemeByID(e.ctx, s.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.SuccessLikelihood != first {
		t.Fatalf("persisted %d, computed %d", stored.SuccessLikelihood, first)
	}

	second, err := e.schemes.UpdateSuccessLikelihood(e.ctx, s.ID)
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if second != first {
		t.Fatalf("recompute with identical resources changed score: %d -> %d", first, second)
	}
}

func TestBudgetStatusBoundaries(t *testing.T) {
	e := newEnv(t)
	cases := []struct {
		spending  float64
		status    string
		allowsNew bool
	}{
		{45000, "Within Budget", true},  // exactly 90% is still within
		{45001, "Approaching Budget Limit", true},
		{50000, "Within Budget", true},  // exactly 100% is not approaching
		{51000, "Over Budget - Action Required", false},
	}
	for _, tc := range cases {
		s := e.addScheme(t, domain.EvilScheme{Budget: 50000, CurrentSpending: tc.spending})
		status, allow, err := e.schemes.ValidateBudgetStatus(e.ctx, s.ID)
		if err != nil {
			t.Fatalf("spending %v: %v", tc.spending, err)
		}
		if status != tc.status || allow != tc.allowsNew {
			t.Fatalf("spending %v: got (%q, %v), want (%q, %v)", tc.spending, status, allow, tc.status, tc.allowsNew)
		}
		if e.store.Schemes[s.ID].AllowNewAssignments != tc.allowsNew {
			t.Fatalf("spending %v: allow flag not written to cached scheme", tc.spending)
		}
	}
}

func TestBudgetHelpers(t *testing.T) {
	e := newEnv(t)
	s := e.addScheme(t, domain.EvilScheme{Budget: 100000, CurrentSpending: 60000})

	over, err := e.schemes.IsOverBudget(e.ctx, s.ID)
	if err != nil || over {
		t.Fatalf("IsOverBudget = %v, %v", over, err)
	}
	remaining, err := e.schemes.RemainingBudget(e.ctx, s.ID)
	if err != nil || remaining != 40000 {
		t.Fatalf("RemainingBudget = %v, %v", remaining, err)
	}
	ok, err := e.schemes.CanAfford(e.ctx, s.ID, 40000)
	if err != nil || !ok {
		t.Fatalf("CanAfford(40000) = %v, %v", ok, err)
	}
	ok, err = e.schemes.CanAfford(e.ctx, s.ID, 40001)
	if err != nil || ok {
		t.Fatalf("CanAfford(40001) = %v, %v", ok, err)
	}
}

func TestCalculateEstimatedSpending(t *testing.T) {
	e := newEnv(t)
	// 45 days out: ceil(45/30) = 2 months.
	s := e.addScheme(t, domain.EvilScheme{
		Budget:               500000,
		CurrentSpending:      495000,
		TargetCompletionDate: ts(testNow.AddDate(0, 0, 45)),
	})
	m := domain.Minion{SalaryDemand: 5000}

	added, total, exceeds, err := e.schemes.CalculateEstimatedSpending(e.ctx, s.ID, m)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if added != 10000 || total != 505000 || !exceeds {
		t.Fatalf("got (%v, %v, %v), want (10000, 505000, true)", added, total, exceeds)
	}

	// A deadline already behind still bills one month.
	past := e.addScheme(t, domain.EvilScheme{TargetCompletionDate: ts(testNow.AddDate(0, 0, -10))})
	added, _, _, err = e.schemes.CalculateEstimatedSpending(e.ctx, past.ID, m)
	if err != nil {
		t.Fatalf("estimate past deadline: %v", err)
	}
	if added != 5000 {
		t.Fatalf("past-deadline added = %v, want one month of salary", added)
	}
}

func TestPlanningToActiveCollectsAllErrors(t *testing.T) {
	e := newEnv(t)
	s := e.addScheme(t, domain.EvilScheme{Status: domain.StatusPlanning})

	ok, errs, err := e.schemes.CanTransitionToStatus(e.ctx, s.ID, domain.StatusActive)
	if err != nil {
		t.Fatalf("transition check: %v", err)
	}
	if ok {
		t.Fatalf("expected rejection")
	}
	if len(errs) != 3 {
		t.Fatalf("got %d errors %v, want start date + minion count + specialty", len(errs), errs)
	}
}

func TestPlanningToActiveHappyPath(t *testing.T) {
	e := newEnv(t)
	s := e.addScheme(t, domain.EvilScheme{
		Status:    domain.StatusPlanning,
		StartDate: ptr(ts(testNow)),
	})
	e.addMinion(t, domain.Minion{Specialty: "Engineering", CurrentSchemeID: &s.ID})
	e.addMinion(t, domain.Minion{Specialty: "Combat", CurrentSchemeID: &s.ID})

	if err := e.schemes.TransitionToStatus(e.ctx, s.ID, domain.StatusActive); err != nil {
		t.Fatalf("activate: %v", err)
	}
	stored, err := e.repo.GetSchemeByID(e.ctx, s.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != domain.StatusActive {
		t.Fatalf("status = %q, want Active", stored.Status)
	}
}

func TestTransitionTable(t *testing.T) {
	e := newEnv(t)

	active := e.addScheme(t, domain.EvilScheme{Status: domain.StatusActive})
	for _, target := range []string{domain.StatusOnHold, domain.StatusFailed, domain.StatusPlanning} {
		ok, errs, err := e.schemes.CanTransitionToStatus(e.ctx, active.ID, target)
		if err != nil || !ok {
			t.Fatalf("Active -> %s: ok=%v errs=%v err=%v", target, ok, errs, err)
		}
	}

	completed := e.addScheme(t, domain.EvilScheme{Status: domain.StatusCompleted})
	ok, errs, err := e.schemes.CanTransitionToStatus(e.ctx, completed.ID, domain.StatusActive)
	if err != nil {
		t.Fatalf("Completed -> Active: %v", err)
	}
	if ok || len(errs) != 1 || !strings.Contains(errs[0], "Cannot transition") {
		t.Fatalf("Completed -> Active: ok=%v errs=%v", ok, errs)
	}
	ok, _, err = e.schemes.CanTransitionToStatus(e.ctx, completed.ID, domain.StatusPlanning)
	if err != nil || !ok {
		t.Fatalf("Completed -> Planning should always be allowed: ok=%v err=%v", ok, err)
	}
}

func TestActiveToCompletedPreconditions(t *testing.T) {
	e := newEnv(t)
	s := e.addScheme(t, domain.EvilScheme{
		Status:               domain.StatusActive,
		SuccessLikelihood:    60,
		TargetCompletionDate: ts(testNow.AddDate(0, 1, 0)),
	})

	ok, errs, err := e.schemes.CanTransitionToStatus(e.ctx, s.ID, domain.StatusCompleted)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if ok || len(errs) != 2 {
		t.Fatalf("expected success + date failures, got ok=%v errs=%v", ok, errs)
	}

	done := e.addScheme(t, domain.EvilScheme{
		Status:               domain.StatusActive,
		SuccessLikelihood:    70,
		TargetCompletionDate: ts(testNow.AddDate(0, 0, -1)),
	})
	ok, errs, err = e.schemes.CanTransitionToStatus(e.ctx, done.ID, domain.StatusCompleted)
	if err != nil || !ok {
		t.Fatalf("completable scheme rejected: errs=%v err=%v", errs, err)
	}
}

func TestOnHoldToActiveChecksCrewOnly(t *testing.T) {
	e := newEnv(t)
	// Over budget and no start date, but On Hold -> Active only checks crew.
	s := e.addScheme(t, domain.EvilScheme{
		Status:          domain.StatusOnHold,
		Budget:          50000,
		CurrentSpending: 90000,
	})
	e.addMinion(t, domain.Minion{Specialty: "Engineering", CurrentSchemeID: &s.ID})
	e.addMinion(t, domain.Minion{Specialty: "Combat", CurrentSchemeID: &s.ID})

	ok, errs, err := e.schemes.CanTransitionToStatus(e.ctx, s.ID, domain.StatusActive)
	if err != nil || !ok {
		t.Fatalf("On Hold -> Active: ok=%v errs=%v err=%v", ok, errs, err)
	}
}

func TestTransitionToStatusRejectsWithViolation(t *testing.T) {
	e := newEnv(t)
	s := e.addScheme(t, domain.EvilScheme{Status: domain.StatusPlanning})

	v := wantViolation(t, e.schemes.TransitionToStatus(e.ctx, s.ID, domain.StatusActive))
	if !strings.Contains(v.Message, "At least 2 minions") {
		t.Fatalf("violation message %q misses minion precondition", v.Message)
	}
	wantViolation(t, e.schemes.TransitionToStatus(e.ctx, s.ID, "Ascended"))
}

func TestResourceRequirements(t *testing.T) {
	e := newEnv(t)
	cases := []struct {
		rating                    int
		minions, equipment        int
		doomsday                  bool
	}{
		{10, 3, 2, true},
		{8, 3, 2, true},
		{7, 2, 1, false},
		{5, 2, 1, false},
		{4, 1, 0, false},
		{1, 1, 0, false},
	}
	for _, tc := range cases {
		m, eq, dd := e.schemes.GetResourceRequirements(tc.rating)
		if m != tc.minions || eq != tc.equipment || dd != tc.doomsday {
			t.Fatalf("rating %d: got (%d,%d,%v), want (%d,%d,%v)", tc.rating, m, eq, dd, tc.minions, tc.equipment, tc.doomsday)
		}
	}
}

func TestValidateResourceRequirements(t *testing.T) {
	e := newEnv(t)
	s := e.addScheme(t, domain.EvilScheme{DiabolicalRating: 9})

	met, warnings, err := e.schemes.ValidateResourceRequirements(e.ctx, s.ID, 1, 0, false)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if met || len(warnings) != 3 {
		t.Fatalf("expected all three warnings, got met=%v warnings=%v", met, warnings)
	}

	met, warnings, err = e.schemes.ValidateResourceRequirements(e.ctx, s.ID, 3, 2, true)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !met || len(warnings) != 0 {
		t.Fatalf("fully resourced scheme: met=%v warnings=%v", met, warnings)
	}
}

func TestDeadlineStatus(t *testing.T) {
	e := newEnv(t)
	cases := []struct {
		days int
		want string
	}{
		{-5, domain.DeadlineOverdue},
		{5, domain.DeadlineUrgent},
		{7, domain.DeadlineUrgent},
		{15, domain.DeadlineDueSoon},
		{30, domain.DeadlineDueSoon},
		{60, domain.DeadlineOnTrack},
	}
	for _, tc := range cases {
		s := e.addScheme(t, domain.EvilScheme{TargetCompletionDate: ts(testNow.AddDate(0, 0, tc.days))})
		got, err := e.schemes.GetDeadlineStatus(e.ctx, s.ID)
		if err != nil {
			t.Fatalf("%+d days: %v", tc.days, err)
		}
		if got != tc.want {
			t.Fatalf("%+d days: got %q, want %q", tc.days, got, tc.want)
		}
	}
}

func TestSpecialtyMatchingWarnings(t *testing.T) {
	e := newEnv(t)

	s := e.addScheme(t, domain.EvilScheme{Status: domain.StatusActive, RequiredSpecialty: "Hacking"})
	has, count, warnings, err := e.schemes.ValidateSpecialtyMatching(e.ctx, s.ID)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if has || count != 0 || len(warnings) != 1 {
		t.Fatalf("active scheme without specialist: has=%v count=%d warnings=%v", has, count, warnings)
	}

	e.addMinion(t, domain.Minion{Specialty: "Hacking", CurrentSchemeID: &s.ID})
	has, count, warnings, err = e.schemes.ValidateSpecialtyMatching(e.ctx, s.ID)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !has || count != 1 || len(warnings) != 1 || !strings.Contains(warnings[0], "risky") {
		t.Fatalf("single specialist: has=%v count=%d warnings=%v", has, count, warnings)
	}

	e.addMinion(t, domain.Minion{Specialty: "Hacking", CurrentSchemeID: &s.ID})
	has, count, warnings, err = e.schemes.ValidateSpecialtyMatching(e.ctx, s.ID)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !has || count != 2 || len(warnings) != 0 {
		t.Fatalf("two specialists: has=%v count=%d warnings=%v", has, count, warnings)
	}
}

func TestValidateBudgetValues(t *testing.T) {
	e := newEnv(t)

	ok, warnings := e.schemes.ValidateBudgetValues(9999, 0)
	if ok || len(warnings) != 1 {
		t.Fatalf("tiny budget: ok=%v warnings=%v", ok, warnings)
	}
	ok, warnings = e.schemes.ValidateBudgetValues(20000000, 0)
	if !ok || len(warnings) != 1 || !strings.Contains(warnings[0], "unrealistic") {
		t.Fatalf("huge budget: ok=%v warnings=%v", ok, warnings)
	}
	ok, warnings = e.schemes.ValidateBudgetValues(50000, 80000)
	if !ok || len(warnings) != 1 || !strings.Contains(warnings[0], "insufficient") {
		t.Fatalf("thin budget: ok=%v warnings=%v", ok, warnings)
	}
	ok, warnings = e.schemes.ValidateBudgetValues(50000, 40000)
	if !ok || len(warnings) != 0 {
		t.Fatalf("sane budget: ok=%v warnings=%v", ok, warnings)
	}
}

func TestCreateScheme(t *testing.T) {
	e := newEnv(t)

	s, warnings, err := e.schemes.CreateScheme(e.ctx, domain.EvilScheme{
		Name:                 "Weather Dominator",
		Budget:               200000,
		RequiredSpecialty:    "Engineering",
		TargetCompletionDate: ts(testNow.AddDate(1, 0, 0)),
		DiabolicalRating:     6,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if s.ID == 0 || s.Status != domain.StatusPlanning || len(warnings) != 0 {
		t.Fatalf("created scheme: %+v warnings=%v", s, warnings)
	}

	_, _, err = e.schemes.CreateScheme(e.ctx, domain.EvilScheme{Name: "Cheap Plot", Budget: 500})
	wantViolation(t, err)
}

func TestApplyAutoTransitions(t *testing.T) {
	e := newEnv(t)
	overdue := ts(testNow.AddDate(0, 0, -3))

	cases := []struct {
		name    string
		status  string
		success int
		target  string
		want    string
	}{
		{"completes on high success", domain.StatusActive, 75, overdue, domain.StatusCompleted},
		{"fails on low success", domain.StatusActive, 20, overdue, domain.StatusFailed},
		{"middle band untouched", domain.StatusActive, 50, overdue, domain.StatusActive},
		{"future deadline untouched", domain.StatusActive, 75, ts(testNow.AddDate(0, 1, 0)), domain.StatusActive},
		{"planning untouched", domain.StatusPlanning, 10, overdue, domain.StatusPlanning},
	}
	for _, tc := range cases {
		s := e.addScheme(t, domain.EvilScheme{Status: tc.status, SuccessLikelihood: tc.success, TargetCompletionDate: tc.target})
		if err := e.schemes.ApplyAutoTransitions(e.ctx, s.ID); err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		stored, err := e.repo.GetSchemeByID(e.ctx, s.ID)
		if err != nil {
			t.Fatalf("%s: get: %v", tc.name, err)
		}
		if stored.Status != tc.want {
			t.Fatalf("%s: status %q, want %q", tc.name, stored.Status, tc.want)
		}
	}
}
