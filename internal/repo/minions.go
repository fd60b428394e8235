package repo

import (
	"context"
	"database/sql"

	"villainlair/internal/domain"
)

const minionCols = `id,name,skill_level,specialty,loyalty_score,salary_demand,current_base_id,current_scheme_id,COALESCE(mood_status,''),COALESCE(last_mood_update,''),scheme_assignment_date`

func scanMinion(scan func(...any) error) (domain.Minion, error) {
	var m domain.Minion
	var baseID, schemeID sql.NullInt64
	var assigned sql.NullString
	err := scan(&m.ID, &m.Name, &m.SkillLevel, &m.Specialty, &m.LoyaltyScore, &m.SalaryDemand,
		&baseID, &schemeID, &m.MoodStatus, &m.LastMoodUpdate, &assigned)
	if err != nil {
		return m, err
	}
	m.CurrentBaseID = idPtr(baseID)
	m.CurrentSchemeID = idPtr(schemeID)
	m.SchemeAssignmentDate = strPtr(assigned)
	return m, nil
}

func (r Repo) InsertMinion(ctx context.Context, m domain.Minion) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO minions(name,skill_level,specialty,loyalty_score,salary_demand,current_base_id,current_scheme_id,mood_status,last_mood_update,scheme_assignment_date) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		m.Name, m.SkillLevel, m.Specialty, m.LoyaltyScore, m.SalaryDemand,
		nullID(m.CurrentBaseID), nullID(m.CurrentSchemeID), m.MoodStatus, m.LastMoodUpdate, nullStr(m.SchemeAssignmentDate))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r Repo) GetMinionByID(ctx context.Context, id int64) (domain.Minion, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+minionCols+` FROM minions WHERE id=?`, id)
	m, err := scanMinion(row.Scan)
	if err == sql.ErrNoRows {
		return m, notFound("minion", id)
	}
	return m, err
}

func (r Repo) GetAllMinions(ctx context.Context) ([]domain.Minion, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+minionCols+` FROM minions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Minion
	for rows.Next() {
		m, err := scanMinion(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func (r Repo) UpdateMinion(ctx context.Context, m domain.Minion) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE minions SET name=?,skill_level=?,specialty=?,loyalty_score=?,salary_demand=?,current_base_id=?,current_scheme_id=?,mood_status=?,last_mood_update=?,scheme_assignment_date=? WHERE id=?`,
		m.Name, m.SkillLevel, m.Specialty, m.LoyaltyScore, m.SalaryDemand,
		nullID(m.CurrentBaseID), nullID(m.CurrentSchemeID), m.MoodStatus, m.LastMoodUpdate, nullStr(m.SchemeAssignmentDate), m.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("minion", m.ID)
	}
	return nil
}

func (r Repo) DeleteMinion(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM minions WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("minion", id)
	}
	return nil
}

// GetBaseOccupancy counts minions stationed at a base.
func (r Repo) GetBaseOccupancy(ctx context.Context, baseID int64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM minions WHERE current_base_id=?`, baseID).Scan(&n)
	return n, err
}

// GetSchemeAssignedMinionsCount counts minions assigned to a scheme.
func (r Repo) GetSchemeAssignedMinionsCount(ctx context.Context, schemeID int64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM minions WHERE current_scheme_id=?`, schemeID).Scan(&n)
	return n, err
}
