package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/techcabinet/apiserver/types"
)

// TransactionRepository handles persistence for checkout transactions.
// Every state transition that touches both a transaction row and its
// item's quantity runs inside a single database transaction, so the
// check-then-write sequences cannot interleave with concurrent callers.
type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `
	id, user_id, item_id, accepted_by, requested_quantity,
	accepted, returned, date_requested, date_accepted, date_returned`

func scanTransaction(row *sql.Row) (types.Transaction, error) {
	var tx types.Transaction
	err := row.Scan(
		&tx.ID,
		&tx.UserID,
		&tx.ItemID,
		&tx.AcceptedBy,
		&tx.RequestedQuantity,
		&tx.Accepted,
		&tx.Returned,
		&tx.DateRequested,
		&tx.DateAccepted,
		&tx.DateReturned,
	)
	return tx, err
}

func (r *TransactionRepository) List(ctx context.Context) ([]types.Transaction, error) {
	const query = `
		SELECT` + transactionColumns + `
		FROM transactions
		ORDER BY id`
	return r.queryList(ctx, query)
}

func (r *TransactionRepository) ListByUser(ctx context.Context, userID int) ([]types.Transaction, error) {
	const query = `
		SELECT` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY id`
	return r.queryList(ctx, query, userID)
}

func (r *TransactionRepository) queryList(ctx context.Context, query string, args ...any) ([]types.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]types.Transaction, 0)
	for rows.Next() {
		var tx types.Transaction
		if err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&tx.ItemID,
			&tx.AcceptedBy,
			&tx.RequestedQuantity,
			&tx.Accepted,
			&tx.Returned,
			&tx.DateRequested,
			&tx.DateAccepted,
			&tx.DateReturned,
		); err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return transactions, nil
}

// Reserve withholds quantity units from an item and records the
// requested transaction, atomically. The decrement is conditional on
// sufficient stock; when it matches no row the whole operation rolls
// back and either ErrNotFound or ErrInsufficient is returned.
func (r *TransactionRepository) Reserve(ctx context.Context, userID, itemID, quantity int) (types.Transaction, error) {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Transaction{}, err
	}
	defer dbTx.Rollback()

	const decrement = `
		UPDATE items
		SET quantity = quantity - $1
		WHERE id = $2 AND quantity >= $1`
	result, err := dbTx.ExecContext(ctx, decrement, quantity, itemID)
	if err != nil {
		return types.Transaction{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Transaction{}, err
	}
	if affected == 0 {
		var exists bool
		if err := dbTx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM items WHERE id = $1)`, itemID,
		).Scan(&exists); err != nil {
			return types.Transaction{}, err
		}
		if !exists {
			return types.Transaction{}, ErrNotFound
		}
		return types.Transaction{}, ErrInsufficient
	}

	tx := types.Transaction{
		UserID:            userID,
		ItemID:            itemID,
		RequestedQuantity: quantity,
		DateRequested:     time.Now(),
	}
	const insert = `
		INSERT INTO transactions (user_id, item_id, requested_quantity, accepted, returned, date_requested)
		VALUES ($1, $2, $3, FALSE, FALSE, $4)
		RETURNING id`
	if err := dbTx.QueryRowContext(
		ctx,
		insert,
		tx.UserID,
		tx.ItemID,
		tx.RequestedQuantity,
		tx.DateRequested,
	).Scan(&tx.ID); err != nil {
		return types.Transaction{}, err
	}

	if err := dbTx.Commit(); err != nil {
		return types.Transaction{}, err
	}
	return tx, nil
}

// Accept transitions a requested transaction to accepted and stamps the
// item's checkout date. The update is conditional on the transaction
// not having been accepted yet, so a double-accept matches no row and
// reports ErrNotFound.
func (r *TransactionRepository) Accept(ctx context.Context, id, adminID int) (types.Transaction, error) {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Transaction{}, err
	}
	defer dbTx.Rollback()

	now := time.Now()
	const accept = `
		UPDATE transactions
		SET accepted = TRUE, accepted_by = $2, date_accepted = $3
		WHERE id = $1 AND NOT accepted
		RETURNING` + transactionColumns
	tx, err := scanTransaction(dbTx.QueryRowContext(ctx, accept, id, adminID, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Transaction{}, ErrNotFound
		}
		return types.Transaction{}, err
	}

	const stampOut = `UPDATE items SET date_out = $1 WHERE id = $2`
	if _, err := dbTx.ExecContext(ctx, stampOut, now, tx.ItemID); err != nil {
		return types.Transaction{}, err
	}

	if err := dbTx.Commit(); err != nil {
		return types.Transaction{}, err
	}
	return tx, nil
}

// Return transitions an accepted transaction to returned and restores
// the withheld quantity to the item. Only accepted, not yet returned
// transactions match; anything else reports ErrNotFound.
func (r *TransactionRepository) Return(ctx context.Context, id int) (types.Transaction, error) {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Transaction{}, err
	}
	defer dbTx.Rollback()

	now := time.Now()
	const markReturned = `
		UPDATE transactions
		SET returned = TRUE, date_returned = $2
		WHERE id = $1 AND accepted AND NOT returned
		RETURNING` + transactionColumns
	tx, err := scanTransaction(dbTx.QueryRowContext(ctx, markReturned, id, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Transaction{}, ErrNotFound
		}
		return types.Transaction{}, err
	}

	const restock = `
		UPDATE items
		SET quantity = quantity + $1, date_in = $2, date_out = NULL
		WHERE id = $3`
	if _, err := dbTx.ExecContext(ctx, restock, tx.RequestedQuantity, now, tx.ItemID); err != nil {
		return types.Transaction{}, err
	}

	if err := dbTx.Commit(); err != nil {
		return types.Transaction{}, err
	}
	return tx, nil
}
