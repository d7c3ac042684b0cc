package repositories

import (
	"context"
	"sort"

	"railbook/internal/db"
	"railbook/internal/domain/models"
)

// SeatRepo stores one sorted occupied-seat list per partition.
// An empty partition has no key at all.
type SeatRepo struct{}

func SeatKey(p models.PartitionKey) string {
	return "seats/" + p.String()
}

func (SeatRepo) Occupied(ctx context.Context, tx db.Tx, p models.PartitionKey) ([]int, error) {
	out := []int{}
	if _, err := db.GetJSON(ctx, tx, SeatKey(p), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Save writes seats deduplicated and sorted, or removes the key when seats is empty.
func (SeatRepo) Save(ctx context.Context, tx db.Tx, p models.PartitionKey, seats []int) error {
	clean := SortedUnique(seats)
	if len(clean) == 0 {
		return tx.Delete(ctx, SeatKey(p))
	}
	return db.PutJSON(ctx, tx, SeatKey(p), clean)
}

// SortedUnique returns a sorted copy of seats with duplicates dropped.
func SortedUnique(seats []int) []int {
	out := make([]int, 0, len(seats))
	seen := make(map[int]struct{}, len(seats))
	for _, s := range seats {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}
