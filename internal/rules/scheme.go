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

// SchemeRules covers success scoring, budget health, deadlines, resource
// requirements and the scheme status state machine.
type SchemeRules struct {
	Repo   repo.Repo
	Store  *store.Store
	Config *config.Config
	Events events.Writer
	Now    func() time.Time
}

func (r SchemeRules) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// CalculateSuccessLikelihood scores a scheme from its assigned resources.
// Base 50, +10 per minion matching the required specialty, +5 per working
// equipment item, −20 over budget, −15 without a viable crew (two minions,
// one matching), −25 past the deadline. Clamped to [0,100]. Pure: nothing
// is persisted.
func (r SchemeRules) CalculateSuccessLikelihood(ctx context.Context, schemeID int64) (int, error) {
	scheme, err := getScheme(ctx, r.Repo, r.Store, schemeID)
	if err != nil {
		return 0, err
	}

	score := 50
	totalMinions := 0
	matchingMinions := 0
	for _, m := range r.Store.SchemeMinions(schemeID) {
		totalMinions++
		if m.Specialty == scheme.RequiredSpecialty {
			matchingMinions++
		}
	}
	score += matchingMinions * 10

	for _, e := range r.Store.SchemeEquipment(schemeID) {
		if e.Condition >= r.Config.Equipment.MinCondition {
			score += 5
		}
	}

	if scheme.CurrentSpending > scheme.Budget {
		score -= 20
	}
	if !(totalMinions >= 2 && matchingMinions >= 1) {
		score -= 15
	}
	if r.now().After(parseTime(scheme.TargetCompletionDate)) {
		score -= 25
	}

	return clamp(score, 0, 100), nil
}

// UpdateSuccessLikelihood recomputes the score and persists it.
func (r SchemeRules) UpdateSuccessLikelihood(ctx context.Context, schemeID int64) (int, error) {
	scheme, err := getScheme(ctx, r.Repo, r.Store, schemeID)
	if err != nil {
		return 0, err
	}
	score, err := r.CalculateSuccessLikelihood(ctx, schemeID)
	if err != nil {
		return 0, err
	}
	scheme.SuccessLikelihood = score
	if err := r.Repo.UpdateScheme(ctx, scheme); err != nil {
		return 0, err
	}
	r.Store.PutScheme(scheme)
	if err := r.Events.Append(ctx, "scheme.success.updated", "scheme", schemeID, "system", events.EventPayload{"success_likelihood": score}); err != nil {
		return 0, err
	}
	return score, nil
}

// IsOverBudget reports whether spending exceeds the budget.
func (r SchemeRules) IsOverBudget(ctx context.Context, schemeID int64) (bool, error) {
	scheme, err := getScheme(ctx, r.Repo, r.Store, schemeID)
	if err != nil {
		return false, err
	}
	return scheme.CurrentSpending > scheme.Budget, nil
}

// RemainingBudget returns budget minus current spending (negative when over).
func (r SchemeRules) RemainingBudget(ctx context.Context, schemeID int64) (float64, error) {
	scheme, err := getScheme(ctx, r.Repo, r.Store, schemeID)
	if err != nil {
		return 0, err
	}
	return scheme.Budget - scheme.CurrentSpending, nil
}

// CanAfford reports whether the remaining budget covers amount.
func (r SchemeRules) CanAfford(ctx context.Context, schemeID int64, amount float64) (bool, error) {
	remaining, err := r.RemainingBudget(ctx, schemeID)
	if err != nil {
		return false, err
	}
	return remaining >= amount, nil
}

// Budget status classifications.
const (
	BudgetOverLimit   = "Over Budget - Action Required"
	BudgetApproaching = "Approaching Budget Limit"
	BudgetWithin      = "Within Budget"
)

// ValidateBudgetStatus classifies budget health and derives whether new
// assignments are allowed. Spending at exactly 90% of budget is still
// within budget; the approaching band is exclusive on both ends. The
// allow-flag is written onto the cached scheme, not persisted.
func (r SchemeRules) ValidateBudgetStatus(ctx context.Context, schemeID int64) (string, bool, error) {
	scheme, err := getScheme(ctx, r.Repo, r.Store, schemeID)
	if err != nil {
		return "", false, err
	}
	var status string
	var allow bool
	switch {
	case scheme.CurrentSpending > scheme.Budget:
		status, allow = BudgetOverLimit, false
	case scheme.CurrentSpending > scheme.Budget*0.9 && scheme.CurrentSpending < scheme.Budget:
		status, allow = BudgetApproaching, true
	default:
		status, allow = BudgetWithin, true
	}
	scheme.AllowNewAssignments = allow
	r.Store.PutScheme(scheme)
	return status, allow, nil
}

// CalculateEstimatedSpending projects what assigning a minion would cost:
// the candidate's salary for every month remaining until the deadline
// (ceiling of days/30, at least one month).
func (r SchemeRules) CalculateEstimatedSpending(ctx context.Context, schemeID int64, candidate domain.Minion) (added, newTotal float64, wouldExceed bool, err error) {
	scheme, err := getScheme(ctx, r.Repo, r.Store, schemeID)
	if err != nil {
		return 0, 0, false, err
	}
	months := monthsRemaining(r.now(), scheme.TargetCompletionDate)
	added = candidate.SalaryDemand * float64(months)
	newTotal = scheme.CurrentSpending + added
	return added, newTotal, newTotal > scheme.Budget, nil
}

// CanTransitionToStatus checks the status transition table. All applicable
// precondition failures are collected, not short-circuited.
func (r SchemeRules) CanTransitionToStatus(ctx context.Context, schemeID int64, target string) (bool, []string, error) {
	scheme, err := getScheme(ctx, r.Repo, r.Store, schemeID)
	if err != nil {
		return false, nil, err
	}
	current := scheme.Status
	if current == "" {
		current = domain.StatusPlanning
	}
	var errs []string

	switch {
	case current == domain.StatusPlanning && target == domain.StatusActive:
		if scheme.StartDate == nil {
			errs = append(errs, "StartDate must be set before activating")
		}
		errs = append(errs, r.crewErrors(schemeID, scheme.RequiredSpecialty)...)
		if scheme.CurrentSpending > scheme.Budget {
			errs = append(errs, "Scheme cannot be over budget when activating")
		}
		return len(errs) == 0, errs, nil

	case current == domain.StatusOnHold && target == domain.StatusActive:
		errs = append(errs, r.crewErrors(schemeID, scheme.RequiredSpecialty)...)
		return len(errs) == 0, errs, nil

	case current == domain.StatusActive && target == domain.StatusCompleted:
		if scheme.SuccessLikelihood < r.Config.Scheme.SuccessHighThreshold {
			errs = append(errs, fmt.Sprintf("Success likelihood must be at least %d%% to complete", r.Config.Scheme.SuccessHighThreshold))
		}
		if r.now().Before(parseTime(scheme.TargetCompletionDate)) {
			errs = append(errs, "Target completion date must have passed")
		}
		return len(errs) == 0, errs, nil

	case current == domain.StatusActive && target == domain.StatusOnHold,
		current == domain.StatusActive && target == domain.StatusFailed,
		target == domain.StatusPlanning:
		return true, nil, nil
	}

	errs = append(errs, fmt.Sprintf("Cannot transition from %s to %s", current, target))
	return false, errs, nil
}

func (r SchemeRules) crewErrors(schemeID int64, requiredSpecialty string) []string {
	total := 0
	matching := 0
	for _, m := range r.Store.SchemeMinions(schemeID) {
		total++
		if m.Specialty == requiredSpecialty {
			matching++
		}
	}
	var errs []string
	if total < 2 {
		errs = append(errs, "At least 2 minions must be assigned")
	}
	if matching < 1 {
		errs = append(errs, "At least 1 minion with required specialty must be assigned")
	}
	return errs
}

// TransitionToStatus validates and persists a status change. Rejections
// carry every failed precondition in one violation.
func (r SchemeRules) TransitionToStatus(ctx context.Context, schemeID int64, target string) error {
	if !r.Config.ValidStatus(target) {
		return violationf("Unknown scheme status %q", target)
	}
	ok, errs, err := r.CanTransitionToStatus(ctx, schemeID, target)
	if err != nil {
		return err
	}
	if !ok {
		return violationf("%s", strings.Join(errs, "; "))
	}
	scheme, err := getScheme(ctx, r.Repo, r.Store, schemeID)
	if err != nil {
		return err
	}
	from := scheme.Status
	scheme.Status = target
	if target == domain.StatusActive && scheme.StartDate == nil {
		ts := r.now().UTC().Format(time.RFC3339)
		scheme.StartDate = &ts
	}
	if err := r.Repo.UpdateScheme(ctx, scheme); err != nil {
		return err
	}
	r.Store.PutScheme(scheme)
	return r.Events.Append(ctx, "scheme.status.changed", "scheme", schemeID, "system", events.EventPayload{"from": from, "to": target})
}

// GetResourceRequirements derives minimum crew and gear from the
// diabolical rating.
func (r SchemeRules) GetResourceRequirements(diabolicalRating int) (minMinions, minEquipment int, requiresDoomsday bool) {
	switch {
	case diabolicalRating >= r.Config.Scheme.HighDiabolicalRating:
		return 3, 2, true
	case diabolicalRating >= 5:
		return 2, 1, false
	default:
		return 1, 0, false
	}
}

// ValidateResourceRequirements compares assigned resources against the
// rating-derived minimums. One warning per unmet dimension.
func (r SchemeRules) ValidateResourceRequirements(ctx context.Context, schemeID int64, minionCount, equipmentCount int, hasDoomsday bool) (bool, []string, error) {
	scheme, err := getScheme(ctx, r.Repo, r.Store, schemeID)
	if err != nil {
		return false, nil, err
	}
	minMinions, minEquipment, requiresDoomsday := r.GetResourceRequirements(scheme.DiabolicalRating)

	var warnings []string
	if requiresDoomsday && !hasDoomsday {
		warnings = append(warnings, "Highly diabolical schemes require a doomsday device")
	}
	if equipmentCount < minEquipment {
		warnings = append(warnings, fmt.Sprintf("Scheme requires at least %d equipment, but only %d assigned", minEquipment, equipmentCount))
	}
	if minionCount < minMinions {
		warnings = append(warnings, fmt.Sprintf("Scheme requires at least %d minions, but only %d assigned", minMinions, minionCount))
	}

	met := equipmentCount >= minEquipment && minionCount >= minMinions && (!requiresDoomsday || hasDoomsday)
	return met, warnings, nil
}

// GetDeadlineStatus classifies deadline urgency from truncated whole days
// until the target date.
func (r SchemeRules) GetDeadlineStatus(ctx context.Context, schemeID int64) (string, error) {
	scheme, err := getScheme(ctx, r.Repo, r.Store, schemeID)
	if err != nil {
		return "", err
	}
	days := daysUntil(r.now(), scheme.TargetCompletionDate)
	switch {
	case days < 0:
		return domain.DeadlineOverdue, nil
	case days <= 7:
		return domain.DeadlineUrgent, nil
	case days <= 30:
		return domain.DeadlineDueSoon, nil
	default:
		return domain.DeadlineOnTrack, nil
	}
}

// ValidateSpecialtyMatching counts assigned minions carrying the scheme's
// required specialty and warns on thin coverage.
func (r SchemeRules) ValidateSpecialtyMatching(ctx context.Context, schemeID int64) (bool, int, []string, error) {
	scheme, err := getScheme(ctx, r.Repo, r.Store, schemeID)
	if err != nil {
		return false, 0, nil, err
	}
	matching := 0
	for _, m := range r.Store.SchemeMinions(schemeID) {
		if m.Specialty == scheme.RequiredSpecialty {
			matching++
		}
	}
	var warnings []string
	if matching == 0 && scheme.Status == domain.StatusActive {
		warnings = append(warnings, "No minions with required specialty assigned")
	} else if matching == 1 {
		warnings = append(warnings, "Only one minion with required specialty - risky!")
	}
	return matching > 0, matching, warnings, nil
}

// ValidateBudgetValues checks a proposed budget against the configured
// bounds. A budget below the minimum is invalid; an implausibly large or
// insufficient budget only warns.
func (r SchemeRules) ValidateBudgetValues(budget, estimatedCost float64) (bool, []string) {
	if budget < r.Config.Scheme.MinBudget {
		return false, []string{fmt.Sprintf("Budget too low - minimum is %.0f evil dollars", r.Config.Scheme.MinBudget)}
	}
	var warnings []string
	if budget > r.Config.Scheme.MaxBudget {
		warnings = append(warnings, "Budget seems unrealistic - are you sure?")
	}
	if budget < estimatedCost {
		warnings = append(warnings, "Budget may be insufficient for resource requirements")
	}
	return true, warnings
}

// CreateScheme validates budget values and persists a new scheme in
// Planning status. Returns the stored scheme and any budget warnings.
func (r SchemeRules) CreateScheme(ctx context.Context, scheme domain.EvilScheme) (domain.EvilScheme, []string, error) {
	ok, warnings := r.ValidateBudgetValues(scheme.Budget, scheme.CurrentSpending)
	if !ok {
		return scheme, nil, violationf("%s", warnings[0])
	}
	if scheme.Status == "" {
		scheme.Status = domain.StatusPlanning
	}
	if !r.Config.ValidStatus(scheme.Status) {
		return scheme, nil, violationf("Unknown scheme status %q", scheme.Status)
	}
	id, err := r.Repo.InsertScheme(ctx, scheme)
	if err != nil {
		return scheme, nil, err
	}
	scheme.ID = id
	r.Store.PutScheme(scheme)
	if err := r.Events.Append(ctx, "scheme.created", "scheme", id, "system", events.EventPayload{"name": scheme.Name}); err != nil {
		return scheme, nil, err
	}
	return scheme, warnings, nil
}

// ApplyAutoTransitions sweeps an Active scheme whose deadline has passed:
// high success auto-completes, low success auto-fails, the band in between
// is left for the villain to decide.
func (r SchemeRules) ApplyAutoTransitions(ctx context.Context, schemeID int64) error {
	scheme, err := getScheme(ctx, r.Repo, r.Store, schemeID)
	if err != nil {
		return err
	}
	if scheme.Status != domain.StatusActive {
		return nil
	}
	if daysUntil(r.now(), scheme.TargetCompletionDate) >= 0 {
		return nil
	}

	var target string
	switch {
	case scheme.SuccessLikelihood >= r.Config.Scheme.SuccessHighThreshold:
		target = domain.StatusCompleted
	case scheme.SuccessLikelihood < r.Config.Scheme.SuccessLowThreshold:
		target = domain.StatusFailed
	default:
		return nil
	}

	from := scheme.Status
	scheme.Status = target
	if err := r.Repo.UpdateScheme(ctx, scheme); err != nil {
		return err
	}
	r.Store.PutScheme(scheme)
	return r.Events.Append(ctx, "scheme.status.changed", "scheme", schemeID, "system", events.EventPayload{"from": from, "to": target, "auto": true})
}
