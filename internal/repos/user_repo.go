package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `u.id, u.email, u.name, u.password_hash`

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`SELECT `+userCols+` FROM users u WHERE LOWER(u.email)=LOWER(?)`), email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) error {
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`INSERT INTO users(id,email,name,password_hash) VALUES(?,?,?,?)`),
		u.ID, u.Email, u.Name, u.Hash)
	return err
}

// BindSession attaches userID to the session, creating the session row if
// needed. Written as update-then-insert so it runs on every backend.
func (r *UserRepo) BindSession(ctx context.Context, sid, userID string) error {
	now := Timestamp(time.Now())
	return withTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE sessions SET user_id=?, last_seen=? WHERE id=?`), userID, now, sid)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			return nil
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO sessions(id,user_id,last_seen) VALUES(?,?,?)`), sid, userID, now)
		return err
	})
}

func (r *UserRepo) SessionUser(ctx context.Context, sid string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`
      SELECT `+userCols+`
      FROM sessions s
      JOIN users u ON u.id=s.user_id
      WHERE s.id=?`), sid)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) UnbindSession(ctx context.Context, sid string) error {
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`UPDATE sessions SET user_id=NULL,last_seen=? WHERE id=?`), Timestamp(time.Now()), sid)
	return err
}
