package repo

import (
	"context"
	"fmt"
)

// SeedInitialData inserts the demo lair when the minions table is empty.
// Idempotent: re-running against a populated database is a no-op.
func (r Repo) SeedInitialData(ctx context.Context) error {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM minions`).Scan(&n); err != nil {
		return fmt.Errorf("check seed state: %w", err)
	}
	if n > 0 {
		return nil
	}

	stmts := []string{
		`INSERT INTO secret_bases (name, location, capacity, security_level, monthly_maintenance, has_doomsday_device, is_discovered, last_inspection_date)
		 VALUES
			('Volcano Fortress', 'Pacific Island', 50, 9, 50000, 1, 0, '2025-11-01T00:00:00Z'),
			('Arctic Hideout', 'North Pole', 30, 7, 30000, 0, 0, '2025-10-15T00:00:00Z'),
			('Underwater Lair', 'Mariana Trench', 40, 10, 45000, 1, 0, '2025-11-20T00:00:00Z'),
			('Desert Bunker', 'Sahara Desert', 25, 6, 20000, 0, 0, NULL)`,
		`INSERT INTO evil_schemes (name, description, budget, current_spending, required_skill_level, required_specialty, status, start_date, target_completion_date, diabolical_rating, success_likelihood)
		 VALUES
			('Steal the Moon', 'Use shrink ray to steal the moon and hold world hostage', 1000000, 15000, 8, 'Engineering', 'Planning', NULL, '2026-06-01T00:00:00Z', 10, 50),
			('Freeze Entire City', 'Deploy freeze ray to freeze major city and demand ransom', 500000, 45000, 6, 'Engineering', 'Active', '2025-11-01T00:00:00Z', '2025-12-31T00:00:00Z', 8, 60),
			('Replace World Leaders', 'Use disguises to infiltrate governments worldwide', 750000, 0, 9, 'Disguise', 'Planning', NULL, '2026-03-01T00:00:00Z', 9, 45),
			('Hack Global Banks', 'Steal millions from international banking systems', 250000, 12000, 8, 'Hacking', 'Active', '2025-10-15T00:00:00Z', '2025-12-15T00:00:00Z', 7, 55),
			('Build Robot Army', 'Create army of combat robots for world domination', 2000000, 0, 7, 'Engineering', 'Planning', NULL, '2027-01-01T00:00:00Z', 10, 40)`,
		`INSERT INTO minions (name, skill_level, specialty, loyalty_score, salary_demand, current_base_id, current_scheme_id, mood_status, last_mood_update)
		 VALUES
			('Igor', 3, 'Combat', 85, 3000, 1, NULL, 'Happy', '2025-12-01T00:00:00Z'),
			('Helga', 8, 'Hacking', 45, 8000, 1, 4, 'Grumpy', '2025-12-01T00:00:00Z'),
			('Boris', 6, 'Explosives', 92, 5500, 2, 2, 'Happy', '2025-12-01T00:00:00Z'),
			('Natasha', 9, 'Disguise', 25, 9500, 1, NULL, 'Plotting Betrayal', '2025-12-01T00:00:00Z'),
			('Klaus', 7, 'Engineering', 78, 6500, 1, 2, 'Happy', '2025-12-01T00:00:00Z'),
			('Olga', 5, 'Combat', 55, 4500, 2, NULL, 'Grumpy', '2025-12-01T00:00:00Z'),
			('Vladimir', 9, 'Hacking', 88, 9000, 3, 4, 'Happy', '2025-12-01T00:00:00Z'),
			('Svetlana', 4, 'Disguise', 62, 4000, 3, NULL, 'Grumpy', '2025-12-01T00:00:00Z'),
			('Dimitri', 8, 'Engineering', 90, 7500, 1, NULL, 'Happy', '2025-12-01T00:00:00Z'),
			('Anastasia', 6, 'Piloting', 70, 5800, 2, NULL, 'Happy', '2025-12-01T00:00:00Z')`,
		`INSERT INTO equipment (name, category, condition, purchase_price, maintenance_cost, assigned_scheme_id, stored_base_id, requires_specialist, last_maintenance)
		 VALUES
			('Freeze Ray', 'Weapon', 85, 100000, 15000, 2, 1, 1, '2025-11-01T00:00:00Z'),
			('Drill Tank', 'Vehicle', 72, 250000, 30000, NULL, 1, 0, '2025-10-20T00:00:00Z'),
			('Shrink Ray', 'Doomsday Device', 95, 500000, 150000, NULL, 1, 1, '2025-11-15T00:00:00Z'),
			('Invisibility Cloak', 'Gadget', 60, 50000, 5000, NULL, 2, 0, '2025-09-30T00:00:00Z'),
			('Hacking Suite', 'Gadget', 90, 75000, 10000, 4, 3, 1, '2025-11-10T00:00:00Z'),
			('Combat Mech', 'Vehicle', 45, 300000, 40000, NULL, 3, 1, '2025-08-15T00:00:00Z'),
			('EMP Generator', 'Weapon', 78, 150000, 20000, 4, 3, 1, '2025-10-25T00:00:00Z'),
			('Jetpack', 'Vehicle', 55, 80000, 12000, NULL, 2, 0, '2025-10-10T00:00:00Z')`,
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	return tx.Commit()
}
