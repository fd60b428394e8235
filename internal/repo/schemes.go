package repo

import (
	"context"
	"database/sql"

	"villainlair/internal/domain"
)

const schemeCols = `id,name,COALESCE(description,''),budget,current_spending,required_skill_level,required_specialty,status,start_date,target_completion_date,diabolical_rating,success_likelihood,primary_base_id`

func scanScheme(scan func(...any) error) (domain.EvilScheme, error) {
	var s domain.EvilScheme
	var start sql.NullString
	var baseID sql.NullInt64
	err := scan(&s.ID, &s.Name, &s.Description, &s.Budget, &s.CurrentSpending, &s.RequiredSkillLevel,
		&s.RequiredSpecialty, &s.Status, &start, &s.TargetCompletionDate, &s.DiabolicalRating,
		&s.SuccessLikelihood, &baseID)
	if err != nil {
		return s, err
	}
	s.StartDate = strPtr(start)
	s.PrimaryBaseID = idPtr(baseID)
	return s, nil
}

func (r Repo) InsertScheme(ctx context.Context, s domain.EvilScheme) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO evil_schemes(name,description,budget,current_spending,required_skill_level,required_specialty,status,start_date,target_completion_date,diabolical_rating,success_likelihood,primary_base_id) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		s.Name, s.Description, s.Budget, s.CurrentSpending, s.RequiredSkillLevel, s.RequiredSpecialty,
		s.Status, nullStr(s.StartDate), s.TargetCompletionDate, s.DiabolicalRating, s.SuccessLikelihood,
		nullID(s.PrimaryBaseID))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r Repo) GetSchemeByID(ctx context.Context, id int64) (domain.EvilScheme, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+schemeCols+` FROM evil_schemes WHERE id=?`, id)
	s, err := scanScheme(row.Scan)
	if err == sql.ErrNoRows {
		return s, notFound("scheme", id)
	}
	return s, err
}

func (r Repo) GetAllSchemes(ctx context.Context) ([]domain.EvilScheme, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+schemeCols+` FROM evil_schemes ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.EvilScheme
	for rows.Next() {
		s, err := scanScheme(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

func (r Repo) UpdateScheme(ctx context.Context, s domain.EvilScheme) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE evil_schemes SET name=?,description=?,budget=?,current_spending=?,required_skill_level=?,required_specialty=?,status=?,start_date=?,target_completion_date=?,diabolical_rating=?,success_likelihood=?,primary_base_id=? WHERE id=?`,
		s.Name, s.Description, s.Budget, s.CurrentSpending, s.RequiredSkillLevel, s.RequiredSpecialty,
		s.Status, nullStr(s.StartDate), s.TargetCompletionDate, s.DiabolicalRating, s.SuccessLikelihood,
		nullID(s.PrimaryBaseID), s.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("scheme", s.ID)
	}
	return nil
}

func (r Repo) DeleteScheme(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM evil_schemes WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("scheme", id)
	}
	return nil
}
