package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"railbook/internal/db"
	"railbook/internal/domain/models"
)

const bookingPrefix = "bookings/"

// BookingRepo keeps one record per reference under bookings/<ref>.
type BookingRepo struct{}

func BookingKey(ref string) string {
	return bookingPrefix + ref
}

// Get reports false when no booking has ref.
func (BookingRepo) Get(ctx context.Context, tx db.Tx, ref string) (models.Booking, bool, error) {
	var b models.Booking
	ok, err := db.GetJSON(ctx, tx, BookingKey(ref), &b)
	if err != nil || !ok {
		return models.Booking{}, false, err
	}
	return b, true, nil
}

func (BookingRepo) Put(ctx context.Context, tx db.Tx, b models.Booking) error {
	if strings.TrimSpace(b.Reference) == "" {
		return fmt.Errorf("booking reference required")
	}
	return db.PutJSON(ctx, tx, BookingKey(b.Reference), b)
}

// List returns bookings oldest first. An empty owner lists every booking.
func (BookingRepo) List(ctx context.Context, tx db.Tx, owner string) ([]models.Booking, error) {
	entries, err := tx.Scan(ctx, bookingPrefix)
	if err != nil {
		return nil, err
	}

	out := make([]models.Booking, 0, len(entries))
	for _, e := range entries {
		var b models.Booking
		if err := json.Unmarshal(e.Value, &b); err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.Key, err)
		}
		if owner != "" && !strings.EqualFold(b.Owner, owner) {
			continue
		}
		out = append(out, b)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Reference < out[j].Reference
	})
	return out, nil
}
