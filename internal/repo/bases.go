package repo

import (
	"context"
	"database/sql"

	"villainlair/internal/domain"
)

const baseCols = `id,name,location,capacity,security_level,monthly_maintenance,has_doomsday_device,is_discovered,last_inspection_date`

func scanBase(scan func(...any) error) (domain.SecretBase, error) {
	var b domain.SecretBase
	var inspected sql.NullString
	err := scan(&b.ID, &b.Name, &b.Location, &b.Capacity, &b.SecurityLevel, &b.MonthlyMaintenance,
		&b.HasDoomsdayDevice, &b.IsDiscovered, &inspected)
	if err != nil {
		return b, err
	}
	b.LastInspectionDate = strPtr(inspected)
	return b, nil
}

func (r Repo) InsertBase(ctx context.Context, b domain.SecretBase) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO secret_bases(name,location,capacity,security_level,monthly_maintenance,has_doomsday_device,is_discovered,last_inspection_date) VALUES (?,?,?,?,?,?,?,?)`,
		b.Name, b.Location, b.Capacity, b.SecurityLevel, b.MonthlyMaintenance,
		b.HasDoomsdayDevice, b.IsDiscovered, nullStr(b.LastInspectionDate))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r Repo) GetBaseByID(ctx context.Context, id int64) (domain.SecretBase, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+baseCols+` FROM secret_bases WHERE id=?`, id)
	b, err := scanBase(row.Scan)
	if err == sql.ErrNoRows {
		return b, notFound("base", id)
	}
	return b, err
}

func (r Repo) GetAllBases(ctx context.Context) ([]domain.SecretBase, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+baseCols+` FROM secret_bases ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.SecretBase
	for rows.Next() {
		b, err := scanBase(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, b)
	}
	return res, rows.Err()
}

func (r Repo) UpdateBase(ctx context.Context, b domain.SecretBase) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE secret_bases SET name=?,location=?,capacity=?,security_level=?,monthly_maintenance=?,has_doomsday_device=?,is_discovered=?,last_inspection_date=? WHERE id=?`,
		b.Name, b.Location, b.Capacity, b.SecurityLevel, b.MonthlyMaintenance,
		b.HasDoomsdayDevice, b.IsDiscovered, nullStr(b.LastInspectionDate), b.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("base", b.ID)
	}
	return nil
}

func (r Repo) DeleteBase(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM secret_bases WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("base", id)
	}
	return nil
}
