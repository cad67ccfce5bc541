package linen

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const categoryCols = `id, name, price_per_item, active, created_at`

func scanCategory(row pgx.Row) (*Category, error) {
	var c Category
	if err := row.Scan(&c.ID, &c.Name, &c.PricePerItem, &c.Active, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) Create(ctx context.Context, name string, price decimal.Decimal) (*Category, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO linen_categories (name, price_per_item) VALUES ($1,$2)
		ON CONFLICT (name) DO NOTHING
		RETURNING `+categoryCols, name, price)
	c, err := scanCategory(row)
	if err == pgx.ErrNoRows {
		// уже есть: вернём существующую
		return r.GetByName(ctx, name)
	}
	return c, err
}

// GetByID возвращает (nil, nil), если категории нет.
func (r *Repo) GetByID(ctx context.Context, id int64) (*Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx, `SELECT `+categoryCols+` FROM linen_categories WHERE id=$1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (r *Repo) GetByName(ctx context.Context, name string) (*Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx, `SELECT `+categoryCols+` FROM linen_categories WHERE name=$1`, name))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (r *Repo) List(ctx context.Context, onlyActive bool) ([]Category, error) {
	q := `SELECT ` + categoryCols + ` FROM linen_categories`
	if onlyActive {
		q += ` WHERE active = TRUE`
	}
	q += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *Repo) UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) (*Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx, `
		UPDATE linen_categories SET price_per_item=$2, updated_at=now()
		WHERE id=$1
		RETURNING `+categoryCols, id, price))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (r *Repo) SetActive(ctx context.Context, id int64, active bool) (*Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx, `
		UPDATE linen_categories SET active=$2, updated_at=now()
		WHERE id=$1
		RETURNING `+categoryCols, id, active))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return c, err
}
