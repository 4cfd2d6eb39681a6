package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hirepipe/hirepipe/pkg/models"
	"github.com/hirepipe/hirepipe/pkg/repository"
)

func (r *SQLiteRepo) CreateUser(ctx context.Context, u *models.HRUser) (int64, error) {
	if u == nil {
		return 0, fmt.Errorf("user is nil")
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO hr_users (name, email, password_hash, updated) VALUES (?, ?, ?, ?)`, u.Name, u.Email, u.PasswordHash, now())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) GetUserByEmail(ctx context.Context, email string) (*models.HRUser, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, name, email, password_hash, updated FROM hr_users WHERE email = ?`, email)

	var u models.HRUser
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
