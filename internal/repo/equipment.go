package repo

import (
	"context"
	"database/sql"

	"villainlair/internal/domain"
)

const equipmentCols = `id,name,category,condition,purchase_price,maintenance_cost,assigned_scheme_id,stored_base_id,requires_specialist,last_maintenance`

func scanEquipment(scan func(...any) error) (domain.Equipment, error) {
	var e domain.Equipment
	var schemeID, baseID sql.NullInt64
	var maint sql.NullString
	err := scan(&e.ID, &e.Name, &e.Category, &e.Condition, &e.PurchasePrice, &e.MaintenanceCost,
		&schemeID, &baseID, &e.RequiresSpecialist, &maint)
	if err != nil {
		return e, err
	}
	e.AssignedSchemeID = idPtr(schemeID)
	e.StoredBaseID = idPtr(baseID)
	e.LastMaintenance = strPtr(maint)
	return e, nil
}

func (r Repo) InsertEquipment(ctx context.Context, e domain.Equipment) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO equipment(name,category,condition,purchase_price,maintenance_cost,assigned_scheme_id,stored_base_id,requires_specialist,last_maintenance) VALUES (?,?,?,?,?,?,?,?,?)`,
		e.Name, e.Category, e.Condition, e.PurchasePrice, e.MaintenanceCost,
		nullID(e.AssignedSchemeID), nullID(e.StoredBaseID), e.RequiresSpecialist, nullStr(e.LastMaintenance))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r Repo) GetEquipmentByID(ctx context.Context, id int64) (domain.Equipment, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+equipmentCols+` FROM equipment WHERE id=?`, id)
	e, err := scanEquipment(row.Scan)
	if err == sql.ErrNoRows {
		return e, notFound("equipment", id)
	}
	return e, err
}

func (r Repo) GetAllEquipment(ctx context.Context) ([]domain.Equipment, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+equipmentCols+` FROM equipment ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Equipment
	for rows.Next() {
		e, err := scanEquipment(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func (r Repo) UpdateEquipment(ctx context.Context, e domain.Equipment) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE equipment SET name=?,category=?,condition=?,purchase_price=?,maintenance_cost=?,assigned_scheme_id=?,stored_base_id=?,requires_specialist=?,last_maintenance=? WHERE id=?`,
		e.Name, e.Category, e.Condition, e.PurchasePrice, e.MaintenanceCost,
		nullID(e.AssignedSchemeID), nullID(e.StoredBaseID), e.RequiresSpecialist, nullStr(e.LastMaintenance), e.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("equipment", e.ID)
	}
	return nil
}

func (r Repo) DeleteEquipment(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM equipment WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("equipment", id)
	}
	return nil
}

// GetSchemeAssignedEquipmentCount counts equipment assigned to a scheme.
func (r Repo) GetSchemeAssignedEquipmentCount(ctx context.Context, schemeID int64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM equipment WHERE assigned_scheme_id=?`, schemeID).Scan(&n)
	return n, err
}
