package repos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, title, brand, category, selling_price, discounted_price, description, image`

// ProductFilter narrows a listing. Zero values mean "no constraint"; the price
// bounds are inclusive, matching Django's __range.
type ProductFilter struct {
	Categories []domain.Category
	Brand      string
	Below      *decimal.Decimal // discounted_price < Below
	Above      *decimal.Decimal // discounted_price > Above
	Min, Max   *decimal.Decimal // Min <= discounted_price <= Max
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`SELECT `+productCols+` FROM products WHERE id = ?`), id)
	return p, err
}

func (r *ProductRepo) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	where := []string{"1=1"}
	args := []any{}
	if len(f.Categories) > 0 {
		q, a, err := sqlx.In(`category IN (?)`, f.Categories)
		if err != nil {
			return nil, err
		}
		where = append(where, q)
		args = append(args, a...)
	}
	if f.Brand != "" {
		where = append(where, `LOWER(brand) = LOWER(?)`)
		args = append(args, f.Brand)
	}
	if f.Below != nil {
		where = append(where, `discounted_price < ?`)
		args = append(args, *f.Below)
	}
	if f.Above != nil {
		where = append(where, `discounted_price > ?`)
		args = append(args, *f.Above)
	}
	if f.Min != nil && f.Max != nil {
		where = append(where, `discounted_price BETWEEN ? AND ?`)
		args = append(args, *f.Min, *f.Max)
	}

	query := `SELECT ` + productCols + ` FROM products WHERE ` + strings.Join(where, " AND ") + ` ORDER BY title`
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(query), args...)
	return out, err
}

// likeEscaper neutralises LIKE wildcards in user input. '!' is the escape
// character because a backslash literal is spelled differently on MySQL.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// Search matches q against title, brand and category code, case-insensitively.
// q is matched literally: % and _ are not wildcards.
func (r *ProductRepo) Search(ctx context.Context, q string, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 50
	}
	like := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT `+productCols+`
		FROM products
		WHERE LOWER(title) LIKE ? ESCAPE '!' OR LOWER(brand) LIKE ? ESCAPE '!' OR LOWER(category) LIKE ? ESCAPE '!'
		ORDER BY title
		LIMIT ?`), like, like, like, limit)
	return out, err
}
