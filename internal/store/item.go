package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/techcabinet/apiserver/types"
)

// ItemRepository handles persistence for inventory items.
type ItemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) List(ctx context.Context) ([]types.Item, error) {
	const query = `
		SELECT id, name, quantity, date_in, date_out, created_by, created_at
		FROM items
		ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]types.Item, 0)
	for rows.Next() {
		var item types.Item
		if err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Quantity,
			&item.DateIn,
			&item.DateOut,
			&item.CreatedBy,
			&item.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *ItemRepository) GetByName(ctx context.Context, name string) (types.Item, error) {
	const query = `
		SELECT id, name, quantity, date_in, date_out, created_by, created_at
		FROM items
		WHERE name = $1`
	var item types.Item
	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&item.ID,
		&item.Name,
		&item.Quantity,
		&item.DateIn,
		&item.DateOut,
		&item.CreatedBy,
		&item.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Item{}, ErrNotFound
		}
		return types.Item{}, err
	}
	return item, nil
}

func (r *ItemRepository) Create(ctx context.Context, item types.Item) (types.Item, error) {
	now := time.Now()
	item.DateIn = now
	item.CreatedAt = now

	const query = `
		INSERT INTO items (name, quantity, date_in, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		item.Name,
		item.Quantity,
		item.DateIn,
		item.CreatedBy,
		item.CreatedAt,
	).Scan(&item.ID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return types.Item{}, ErrDuplicate
		}
		return types.Item{}, err
	}
	return item, nil
}

// DeleteByName removes an item. Its transactions go with it via the
// foreign key cascade.
func (r *ItemRepository) DeleteByName(ctx context.Context, name string) error {
	const query = `DELETE FROM items WHERE name = $1`
	result, err := r.db.ExecContext(ctx, query, name)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustQuantity applies a signed delta to an item's quantity. The
// update is conditional so the stored quantity can never go negative,
// even under concurrent callers.
func (r *ItemRepository) AdjustQuantity(ctx context.Context, name string, delta int) (types.Item, error) {
	const query = `
		UPDATE items
		SET quantity = quantity + $1
		WHERE name = $2 AND quantity + $1 >= 0
		RETURNING id, name, quantity, date_in, date_out, created_by, created_at`
	var item types.Item
	err := r.db.QueryRowContext(ctx, query, delta, name).Scan(
		&item.ID,
		&item.Name,
		&item.Quantity,
		&item.DateIn,
		&item.DateOut,
		&item.CreatedBy,
		&item.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Zero rows means either the item is missing or the delta
			// would underflow; look again to tell the two apart.
			if _, getErr := r.GetByName(ctx, name); getErr != nil {
				return types.Item{}, getErr
			}
			return types.Item{}, ErrInsufficient
		}
		return types.Item{}, err
	}
	return item, nil
}
