package invoices

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const invoiceCols = `id, client_id, year, month, amount, status, created_at, paid_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	if err := row.Scan(&inv.ID, &inv.ClientID, &inv.Year, &inv.Month, &inv.Amount, &inv.Status, &inv.CreatedAt, &inv.PaidAt); err != nil {
		return nil, err
	}
	return &inv, nil
}

// Upsert создаёт счёт за период или обновляет сумму ещё не оплаченного.
// Оплаченный счёт не трогаем и возвращаем как есть.
func (r *Repo) Upsert(ctx context.Context, clientID int64, year, month int, amount decimal.Decimal) (*Invoice, error) {
	inv, err := scanInvoice(r.pool.QueryRow(ctx, `
		INSERT INTO invoices (client_id, year, month, amount, status)
		VALUES ($1,$2,$3,$4,'pending')
		ON CONFLICT (client_id, year, month)
		DO UPDATE SET amount=EXCLUDED.amount
		WHERE invoices.status = 'pending'
		RETURNING `+invoiceCols, clientID, year, month, amount))
	if err == pgx.ErrNoRows {
		return r.GetByPeriod(ctx, clientID, year, month)
	}
	return inv, err
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Invoice, error) {
	inv, err := scanInvoice(r.pool.QueryRow(ctx, `SELECT `+invoiceCols+` FROM invoices WHERE id=$1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return inv, err
}

func (r *Repo) GetByPeriod(ctx context.Context, clientID int64, year, month int) (*Invoice, error) {
	inv, err := scanInvoice(r.pool.QueryRow(ctx, `
		SELECT `+invoiceCols+` FROM invoices WHERE client_id=$1 AND year=$2 AND month=$3
	`, clientID, year, month))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return inv, err
}

// SetStatus возвращает pgx.ErrNoRows, если счёта нет.
func (r *Repo) SetStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE invoices
		SET status=$2,
		    paid_at = CASE WHEN $2 = 'paid' THEN now() ELSE NULL END
		WHERE id=$1
	`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
