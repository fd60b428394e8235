package rules

import (
	"context"
	"time"

	"villainlair/internal/config"
	"villainlair/internal/domain"
	"villainlair/internal/events"
	"villainlair/internal/repo"
	"villainlair/internal/store"
)

// MinionRules covers loyalty and mood updates, assignment eligibility and
// creation-time field validation.
type MinionRules struct {
	Repo   repo.Repo
	Store  *store.Store
	Config *config.Config
	Events events.Writer
	Now    func() time.Time
}

func (r MinionRules) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// UpdateLoyalty adjusts loyalty from salary satisfaction: paid at or above
// demand grows loyalty, underpayment decays it faster. Clamped to [0,100].
// Mood is always refreshed afterwards.
func (r MinionRules) UpdateLoyalty(ctx context.Context, minionID int64, actualSalaryPaid float64) (domain.Minion, error) {
	m, err := getMinion(ctx, r.Repo, r.Store, minionID)
	if err != nil {
		return m, err
	}
	before := m.LoyaltyScore
	if actualSalaryPaid >= m.SalaryDemand {
		m.LoyaltyScore += r.Config.Loyalty.GrowthRate
	} else {
		m.LoyaltyScore -= r.Config.Loyalty.DecayRate
	}
	m.LoyaltyScore = clamp(m.LoyaltyScore, 0, 100)
	r.Store.PutMinion(m)

	m, err = r.UpdateMood(ctx, minionID)
	if err != nil {
		return m, err
	}
	err = r.Events.Append(ctx, "minion.loyalty.updated", "minion", minionID, "system", events.EventPayload{
		"from": before, "to": m.LoyaltyScore, "paid": actualSalaryPaid,
	})
	return m, err
}

// UpdateMood derives mood and persists it. A minion assigned to a scheme
// for longer than the overwork threshold is Exhausted no matter how loyal;
// otherwise loyalty above the high threshold is Happy, below the low
// threshold is Plotting Betrayal, and the middle band is Grumpy.
func (r MinionRules) UpdateMood(ctx context.Context, minionID int64) (domain.Minion, error) {
	m, err := getMinion(ctx, r.Repo, r.Store, minionID)
	if err != nil {
		return m, err
	}
	now := r.now()
	if m.SchemeAssignmentDate != nil && daysSince(now, *m.SchemeAssignmentDate) > r.Config.Rules.OverworkedDays {
		m.MoodStatus = domain.MoodExhausted
	} else if m.LoyaltyScore > r.Config.Loyalty.HighThreshold {
		m.MoodStatus = domain.MoodHappy
	} else if m.LoyaltyScore < r.Config.Loyalty.LowThreshold {
		m.MoodStatus = domain.MoodBetrayal
	} else {
		m.MoodStatus = domain.MoodGrumpy
	}
	m.LastMoodUpdate = now.UTC().Format(time.RFC3339)

	if err := r.Repo.UpdateMinion(ctx, m); err != nil {
		return m, err
	}
	r.Store.PutMinion(m)
	err = r.Events.Append(ctx, "minion.mood.updated", "minion", minionID, "system", events.EventPayload{"mood": m.MoodStatus})
	return m, err
}

// AssignMinionToScheme checks eligibility and records the assignment with
// its timestamp. A minion working another scheme can only be poached if the
// target scheme is not yet Active.
func (r MinionRules) AssignMinionToScheme(ctx context.Context, minionID, schemeID int64) error {
	m, err := getMinion(ctx, r.Repo, r.Store, minionID)
	if err != nil {
		return err
	}
	scheme, err := getScheme(ctx, r.Repo, r.Store, schemeID)
	if err != nil {
		return err
	}
	if m.CurrentSchemeID != nil && *m.CurrentSchemeID != schemeID && scheme.Status == domain.StatusActive {
		return violationf("Minion %s is already assigned to another scheme", m.Name)
	}
	if m.SkillLevel < scheme.RequiredSkillLevel {
		return violationf("Minion skill level %d is below required level %d", m.SkillLevel, scheme.RequiredSkillLevel)
	}
	if m.Specialty != scheme.RequiredSpecialty {
		return violationf("Minion specialty %s does not match required specialty %s", m.Specialty, scheme.RequiredSpecialty)
	}

	ts := r.now().UTC().Format(time.RFC3339)
	m.CurrentSchemeID = &schemeID
	m.SchemeAssignmentDate = &ts
	if err := r.Repo.UpdateMinion(ctx, m); err != nil {
		return err
	}
	r.Store.PutMinion(m)
	return r.Events.Append(ctx, "minion.scheme.assigned", "minion", minionID, "system", events.EventPayload{"scheme_id": schemeID})
}

// UnassignMinionFromScheme clears the scheme reference and the assignment
// timestamp.
func (r MinionRules) UnassignMinionFromScheme(ctx context.Context, minionID int64) error {
	m, err := getMinion(ctx, r.Repo, r.Store, minionID)
	if err != nil {
		return err
	}
	if m.CurrentSchemeID == nil {
		return nil
	}
	schemeID := *m.CurrentSchemeID
	m.CurrentSchemeID = nil
	m.SchemeAssignmentDate = nil
	if err := r.Repo.UpdateMinion(ctx, m); err != nil {
		return err
	}
	r.Store.PutMinion(m)
	return r.Events.Append(ctx, "minion.scheme.unassigned", "minion", minionID, "system", events.EventPayload{"scheme_id": schemeID})
}

// AssignMinionToBase stations a minion at a base, capacity permitting.
func (r MinionRules) AssignMinionToBase(ctx context.Context, minionID, baseID int64) error {
	m, err := getMinion(ctx, r.Repo, r.Store, minionID)
	if err != nil {
		return err
	}
	base, err := getBase(ctx, r.Repo, r.Store, baseID)
	if err != nil {
		return err
	}
	occupancy, err := r.Repo.GetBaseOccupancy(ctx, baseID)
	if err != nil {
		return err
	}
	if occupancy >= base.Capacity {
		return violationf("Base %s is at full capacity (%d minions)", base.Name, base.Capacity)
	}
	m.CurrentBaseID = &baseID
	if err := r.Repo.UpdateMinion(ctx, m); err != nil {
		return err
	}
	r.Store.PutMinion(m)
	return r.Events.Append(ctx, "minion.base.assigned", "minion", minionID, "system", events.EventPayload{"base_id": baseID})
}

// AssignMinionsToBase stations several minions at once. The whole batch is
// validated against remaining capacity before any minion moves; a batch
// that does not fit is rejected entirely.
func (r MinionRules) AssignMinionsToBase(ctx context.Context, minionIDs []int64, baseID int64) error {
	base, err := getBase(ctx, r.Repo, r.Store, baseID)
	if err != nil {
		return err
	}
	occupancy, err := r.Repo.GetBaseOccupancy(ctx, baseID)
	if err != nil {
		return err
	}
	if occupancy+len(minionIDs) > base.Capacity {
		return violationf("Assigning %d minions would exceed capacity of base %s (%d/%d occupied)",
			len(minionIDs), base.Name, occupancy, base.Capacity)
	}

	batch := make([]domain.Minion, 0, len(minionIDs))
	for _, id := range minionIDs {
		m, err := getMinion(ctx, r.Repo, r.Store, id)
		if err != nil {
			return err
		}
		batch = append(batch, m)
	}
	for _, m := range batch {
		m.CurrentBaseID = &baseID
		if err := r.Repo.UpdateMinion(ctx, m); err != nil {
			return err
		}
		r.Store.PutMinion(m)
		if err := r.Events.Append(ctx, "minion.base.assigned", "minion", m.ID, "system", events.EventPayload{"base_id": baseID, "bulk": true}); err != nil {
			return err
		}
	}
	return nil
}

// ValidateMinion checks creation-time field rules. The specialty whitelist
// match is case-sensitive. An absurd salary demand is accepted but flagged.
func (r MinionRules) ValidateMinion(m domain.Minion) ([]string, error) {
	if !r.Config.ValidSpecialty(m.Specialty) {
		return nil, violationf("Invalid specialty %q", m.Specialty)
	}
	if m.SkillLevel < 1 || m.SkillLevel > 10 {
		return nil, violationf("Skill level must be between 1 and 10, got %d", m.SkillLevel)
	}
	if m.SalaryDemand <= 0 {
		return nil, violationf("Salary demand must be positive")
	}
	var warnings []string
	if m.SalaryDemand > r.Config.Salary.AnomalousSalary {
		warnings = append(warnings, "Salary demand is unusually high - negotiate before hiring")
	}
	return warnings, nil
}

// CreateMinion validates and persists a new minion. Loyalty is clamped,
// the initial mood is derived from it and the mood timestamp is set.
func (r MinionRules) CreateMinion(ctx context.Context, m domain.Minion) (domain.Minion, []string, error) {
	warnings, err := r.ValidateMinion(m)
	if err != nil {
		return m, nil, err
	}
	m.LoyaltyScore = clamp(m.LoyaltyScore, 0, 100)
	if m.MoodStatus == "" {
		switch {
		case m.LoyaltyScore > r.Config.Loyalty.HighThreshold:
			m.MoodStatus = domain.MoodHappy
		case m.LoyaltyScore < r.Config.Loyalty.LowThreshold:
			m.MoodStatus = domain.MoodBetrayal
		default:
			m.MoodStatus = domain.MoodGrumpy
		}
	}
	if m.LastMoodUpdate == "" {
		m.LastMoodUpdate = r.now().UTC().Format(time.RFC3339)
	}
	id, err := r.Repo.InsertMinion(ctx, m)
	if err != nil {
		return m, nil, err
	}
	m.ID = id
	r.Store.PutMinion(m)
	if err := r.Events.Append(ctx, "minion.created", "minion", id, "system", events.EventPayload{"name": m.Name}); err != nil {
		return m, nil, err
	}
	return m, warnings, nil
}

// UpdateMinion validates and persists field edits to an existing minion.
func (r MinionRules) UpdateMinion(ctx context.Context, m domain.Minion) ([]string, error) {
	warnings, err := r.ValidateMinion(m)
	if err != nil {
		return nil, err
	}
	m.LoyaltyScore = clamp(m.LoyaltyScore, 0, 100)
	if err := r.Repo.UpdateMinion(ctx, m); err != nil {
		return nil, err
	}
	r.Store.PutMinion(m)
	if err := r.Events.Append(ctx, "minion.updated", "minion", m.ID, "system", events.EventPayload{"name": m.Name}); err != nil {
		return nil, err
	}
	return warnings, nil
}

// DeleteMinion removes a minion outright. No cascading side effects.
func (r MinionRules) DeleteMinion(ctx context.Context, minionID int64) error {
	if err := r.Repo.DeleteMinion(ctx, minionID); err != nil {
		return err
	}
	r.Store.RemoveMinion(minionID)
	return r.Events.Append(ctx, "minion.deleted", "minion", minionID, "system", nil)
}
