package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/SaicharanT-tech/eventra/internal/domain"
)

// reserveTx decrements every line with a conditional update. The first
// line that cannot be satisfied returns an error and the caller's
// transaction rolls back, so stock is never partially taken.
func reserveTx(ctx context.Context, tx pgx.Tx, lines []domain.ResourceLine) error {
	for _, l := range lockOrder(lines) {
		tag, err := tx.Exec(ctx, `
			UPDATE resources SET
				quantity_available = quantity_available - $2,
				updated_at = NOW()
			WHERE id = $1 AND quantity_available >= $2
		`, l.ResourceID, l.Quantity)
		if err != nil {
			return storeErr("reserve resource", err)
		}
		if tag.RowsAffected() == 1 {
			continue
		}

		var name string
		err = tx.QueryRow(ctx, `SELECT name FROM resources WHERE id = $1`, l.ResourceID).Scan(&name)
		if errors.Is(err, pgx.ErrNoRows) {
			// resource deleted since creation: final approval answers 404 for the resource, not the event
			return domain.NewError(domain.ErrNotFound, "Resource %s not found", l.ResourceID)
		}
		if err != nil {
			return storeErr("look up resource", err)
		}
		return domain.NewError(domain.ErrResourceUnavailable, "Not enough %s available", name)
	}
	return nil
}

// releaseTx returns every line to stock. Lines naming a resource that no
// longer exists are skipped.
func releaseTx(ctx context.Context, tx pgx.Tx, lines []domain.ResourceLine) error {
	for _, l := range lockOrder(lines) {
		_, err := tx.Exec(ctx, `
			UPDATE resources SET
				quantity_available = quantity_available + $2,
				updated_at = NOW()
			WHERE id = $1
		`, l.ResourceID, l.Quantity)
		if err != nil {
			return storeErr("release resource", err)
		}
	}
	return nil
}

// lockOrder sorts lines by resource id so concurrent reservations take row
// locks in the same order.
func lockOrder(lines []domain.ResourceLine) []domain.ResourceLine {
	out := make([]domain.ResourceLine, len(lines))
	copy(out, lines)
	sort.Slice(out, func(i, j int) bool { return out[i].ResourceID < out[j].ResourceID })
	return out
}
