package sqlite

import (
	"context"
	"fmt"

	"github.com/hirepipe/hirepipe/pkg/repository"
)

// AddSlots inserts slots into the pool for a role. Existing (role, slot)
// pairs are left untouched so seeding on boot is idempotent.
func (r *SQLiteRepo) AddSlots(ctx context.Context, role string, slots []string) error {
	for _, s := range slots {
		if _, err := r.conn.Exec(ctx, `INSERT OR IGNORE INTO panel_slots (role, slot) VALUES (?, ?)`, role, s); err != nil {
			return fmt.Errorf("add slot %s/%s: %w", role, s, err)
		}
	}
	return nil
}

// AvailableSlots lists unbooked slots for a role in insertion order.
func (r *SQLiteRepo) AvailableSlots(ctx context.Context, role string) ([]string, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT slot FROM panel_slots WHERE role = ? AND booked_by IS NULL ORDER BY id`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// BookSlot marks a slot as taken by a candidate. The guarded UPDATE makes the
// booking atomic: a slot already booked reports ErrNotFound.
func (r *SQLiteRepo) BookSlot(ctx context.Context, role, slot, candidateID string) error {
	res, err := r.conn.Exec(ctx, `UPDATE panel_slots SET booked_by = ? WHERE role = ? AND slot = ? AND booked_by IS NULL`, candidateID, role, slot)
	if err != nil {
		return fmt.Errorf("book slot %s/%s: %w", role, slot, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
