// Package rules implements the lair's derived-state calculators and
// transition validators. Hard rejections are returned as *Violation errors;
// soft validations return (bool, warnings) and never fail.
package rules

import (
	"context"
	"fmt"
	"math"
	"time"

	"villainlair/internal/domain"
	"villainlair/internal/repo"
	"villainlair/internal/store"
)

// Violation is a hard rule rejection. Callers are expected to surface the
// message; it names the rule that was broken.
type Violation struct {
	Message string
}

func (v *Violation) Error() string { return v.Message }

func violationf(format string, args ...any) *Violation {
	return &Violation{Message: fmt.Sprintf(format, args...)}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

// daysUntil truncates toward zero, so the deadline day itself counts as
// zero days remaining, not overdue.
func daysUntil(now time.Time, target string) int {
	return int(parseTime(target).Sub(now).Hours() / 24)
}

func daysSince(now time.Time, ts string) int {
	return int(now.Sub(parseTime(ts)).Hours() / 24)
}

// monthsBetween is the whole-month calendar difference, floored at zero.
func monthsBetween(last, now time.Time) int {
	months := (now.Year()-last.Year())*12 + int(now.Month()) - int(last.Month())
	if months < 0 {
		return 0
	}
	return months
}

// monthsRemaining is the ceiling of days/30, floored at one month.
func monthsRemaining(now time.Time, target string) int {
	days := parseTime(target).Sub(now).Hours() / 24
	months := int(math.Ceil(days / 30.0))
	if months < 1 {
		return 1
	}
	return months
}

func getMinion(ctx context.Context, r repo.Repo, st *store.Store, id int64) (domain.Minion, error) {
	if m, ok := st.Minions[id]; ok {
		return m, nil
	}
	m, err := r.GetMinionByID(ctx, id)
	if err != nil {
		return m, err
	}
	st.PutMinion(m)
	return m, nil
}

func getScheme(ctx context.Context, r repo.Repo, st *store.Store, id int64) (domain.EvilScheme, error) {
	if s, ok := st.Schemes[id]; ok {
		return s, nil
	}
	s, err := r.GetSchemeByID(ctx, id)
	if err != nil {
		return s, err
	}
	st.PutScheme(s)
	return s, nil
}

func getEquipment(ctx context.Context, r repo.Repo, st *store.Store, id int64) (domain.Equipment, error) {
	if e, ok := st.Equipment[id]; ok {
		return e, nil
	}
	e, err := r.GetEquipmentByID(ctx, id)
	if err != nil {
		return e, err
	}
	st.PutEquipment(e)
	return e, nil
}

func getBase(ctx context.Context, r repo.Repo, st *store.Store, id int64) (domain.SecretBase, error) {
	if b, ok := st.Bases[id]; ok {
		return b, nil
	}
	b, err := r.GetBaseByID(ctx, id)
	if err != nil {
		return b, err
	}
	st.PutBase(b)
	return b, nil
}
