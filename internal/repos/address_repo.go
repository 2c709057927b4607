package repos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type AddressRepo struct{ db *sqlx.DB }

func NewAddressRepo(db *sqlx.DB) *AddressRepo { return &AddressRepo{db: db} }

const addressCols = `id, user_id, name, locality, city, state, zipcode`

func (r *AddressRepo) ListByUser(ctx context.Context, userID string) ([]domain.Address, error) {
	out := []domain.Address{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT `+addressCols+` FROM addresses WHERE user_id = ? ORDER BY name, id`), userID)
	return out, err
}

// Get only finds addresses owned by userID.
func (r *AddressRepo) Get(ctx context.Context, userID, id string) (domain.Address, error) {
	var a domain.Address
	err := r.db.GetContext(ctx, &a, r.db.Rebind(`
		SELECT `+addressCols+` FROM addresses WHERE id = ? AND user_id = ?`), id, userID)
	return a, err
}

func (r *AddressRepo) Create(ctx context.Context, a domain.Address) (domain.Address, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO addresses(`+addressCols+`) VALUES(?,?,?,?,?,?,?)`),
		a.ID, a.UserID, a.Name, a.Locality, a.City, a.State, a.Zipcode)
	return a, err
}
