package clients

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const clientCols = `id, name, contact, phone, address, active, created_at`

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	if err := row.Scan(&c.ID, &c.Name, &c.Contact, &c.Phone, &c.Address, &c.Active, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) Create(ctx context.Context, c Client) (*Client, error) {
	return scanClient(r.pool.QueryRow(ctx, `
		INSERT INTO clients (name, contact, phone, address)
		VALUES ($1,$2,$3,$4)
		RETURNING `+clientCols, c.Name, c.Contact, c.Phone, c.Address))
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Client, error) {
	c, err := scanClient(r.pool.QueryRow(ctx, `SELECT `+clientCols+` FROM clients WHERE id=$1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (r *Repo) List(ctx context.Context, onlyActive bool) ([]Client, error) {
	q := `SELECT ` + clientCols + ` FROM clients`
	if onlyActive {
		q += ` WHERE active = TRUE`
	}
	q += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *Repo) Update(ctx context.Context, c Client) (*Client, error) {
	out, err := scanClient(r.pool.QueryRow(ctx, `
		UPDATE clients SET name=$2, contact=$3, phone=$4, address=$5
		WHERE id=$1
		RETURNING `+clientCols, c.ID, c.Name, c.Contact, c.Phone, c.Address))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return out, err
}

func (r *Repo) SetActive(ctx context.Context, id int64, active bool) (*Client, error) {
	out, err := scanClient(r.pool.QueryRow(ctx, `
		UPDATE clients SET active=$2 WHERE id=$1
		RETURNING `+clientCols, id, active))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return out, err
}
