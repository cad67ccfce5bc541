package batches

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const batchSelect = `
	SELECT b.id, b.client_id, c.name, b.pickup_date, b.status,
	       b.total_amount, b.has_discrepancy, b.notes, b.created_at, b.updated_at
	FROM batches b
	JOIN clients c ON c.id = b.client_id`

func scanBatch(row pgx.Row) (*Batch, error) {
	var b Batch
	if err := row.Scan(&b.ID, &b.ClientID, &b.ClientName, &b.PickupDate, &b.Status,
		&b.TotalAmount, &b.HasDiscrepancy, &b.Notes, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// Create сохраняет партию вместе со строками в одной транзакции.
func (r *Repo) Create(ctx context.Context, b Batch) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO batches (client_id, pickup_date, status, total_amount, has_discrepancy)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`, b.ClientID, b.PickupDate, string(b.Status), b.TotalAmount, b.HasDiscrepancy).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert batch: %w", err)
	}

	for _, l := range b.Lines {
		if err := insertLine(ctx, tx, id, l); err != nil {
			return 0, err
		}
	}
	return id, tx.Commit(ctx)
}

func insertLine(ctx context.Context, tx pgx.Tx, batchID int64, l Line) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO batch_items (batch_id, linen_category_id, quantity_sent, quantity_received,
		                         price_per_item, express_delivery, discrepancy_details)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, batchID, l.CategoryID, l.QuantitySent, l.QuantityReceived, l.PricePerItem, l.ExpressDelivery, l.DiscrepancyDetails)
	if err != nil {
		return fmt.Errorf("insert line (category %d): %w", l.CategoryID, err)
	}
	return nil
}

// GetByID возвращает партию с клиентом и строками; (nil, nil), если партии нет.
func (r *Repo) GetByID(ctx context.Context, id int64) (*Batch, error) {
	b, err := scanBatch(r.pool.QueryRow(ctx, batchSelect+` WHERE b.id=$1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	lines, err := r.linesFor(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	b.Lines = lines[id]
	return b, nil
}

// ListByPeriod: партии с pickup_date в [start, end] включительно (даты YYYY-MM-DD),
// при clientID != nil только этого клиента.
func (r *Repo) ListByPeriod(ctx context.Context, start, end string, clientID *int64) ([]Batch, error) {
	q := batchSelect + ` WHERE b.pickup_date BETWEEN $1::date AND $2::date`
	args := []any{start, end}
	if clientID != nil {
		q += ` AND b.client_id = $3`
		args = append(args, *clientID)
	}
	q += ` ORDER BY b.pickup_date, b.id`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Batch
	var ids []int64
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
		ids = append(ids, b.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	lines, err := r.linesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Lines = lines[out[i].ID]
	}
	return out, nil
}

func (r *Repo) linesFor(ctx context.Context, batchIDs []int64) (map[int64][]Line, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT bi.batch_id, bi.id, bi.linen_category_id, lc.name, bi.quantity_sent, bi.quantity_received,
		       bi.price_per_item, bi.express_delivery, bi.discrepancy_details
		FROM batch_items bi
		JOIN linen_categories lc ON lc.id = bi.linen_category_id
		WHERE bi.batch_id = ANY($1)
		ORDER BY bi.batch_id, lc.name
	`, batchIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]Line, len(batchIDs))
	for rows.Next() {
		var batchID int64
		var l Line
		if err := rows.Scan(&batchID, &l.ID, &l.CategoryID, &l.CategoryName, &l.QuantitySent, &l.QuantityReceived,
			&l.PricePerItem, &l.ExpressDelivery, &l.DiscrepancyDetails); err != nil {
			return nil, err
		}
		out[batchID] = append(out[batchID], l)
	}
	return out, rows.Err()
}

// ReplaceLines приводит строки партии к переданному набору: существующие категории
// обновляются, новые добавляются, отсутствующие удаляются; затем пишутся итоги.
func (r *Repo) ReplaceLines(ctx context.Context, batchID int64, lines []Line, totals Totals) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `SELECT linen_category_id FROM batch_items WHERE batch_id=$1 FOR UPDATE`, batchID)
	if err != nil {
		return err
	}
	existing := map[int64]bool{}
	for rows.Next() {
		var catID int64
		if err := rows.Scan(&catID); err != nil {
			rows.Close()
			return err
		}
		existing[catID] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	keep := make([]int64, 0, len(lines))
	for _, l := range lines {
		keep = append(keep, l.CategoryID)
		if existing[l.CategoryID] {
			if _, err := tx.Exec(ctx, `
				UPDATE batch_items
				SET quantity_sent=$3, quantity_received=$4, price_per_item=$5,
				    express_delivery=$6, discrepancy_details=$7
				WHERE batch_id=$1 AND linen_category_id=$2
			`, batchID, l.CategoryID, l.QuantitySent, l.QuantityReceived, l.PricePerItem,
				l.ExpressDelivery, l.DiscrepancyDetails); err != nil {
				return fmt.Errorf("update line (category %d): %w", l.CategoryID, err)
			}
			continue
		}
		if err := insertLine(ctx, tx, batchID, l); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM batch_items
		WHERE batch_id=$1 AND NOT (linen_category_id = ANY($2))
	`, batchID, keep); err != nil {
		return fmt.Errorf("delete removed lines: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE batches SET total_amount=$2, has_discrepancy=$3, updated_at=now()
		WHERE id=$1
	`, batchID, totals.TotalAmount, totals.HasDiscrepancy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return tx.Commit(ctx)
}

// UpdateStatus меняет статус и, если есть, сохраняет заметку этапа.
func (r *Repo) UpdateStatus(ctx context.Context, id int64, status Status, note string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE batches
		SET status=$2,
		    notes = CASE WHEN $3 = '' THEN notes ELSE notes || jsonb_build_object($2::text, $3::text) END,
		    updated_at=now()
		WHERE id=$1
	`, id, string(status), note)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
