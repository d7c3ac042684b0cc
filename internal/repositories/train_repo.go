package repositories

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"railbook/internal/db"
	"railbook/internal/domain/models"
)

const catalogKey = "catalog/trains"

//go:embed seed/trains.json
var seedTrains []byte

// DefaultTrains returns the built-in timetable.
func DefaultTrains() ([]models.Train, error) {
	var out []models.Train
	if err := json.Unmarshal(seedTrains, &out); err != nil {
		return nil, fmt.Errorf("decode seed trains: %w", err)
	}
	return out, nil
}

type TrainRepo struct{}

// List returns the stored catalog in stored order. Empty when never seeded.
func (TrainRepo) List(ctx context.Context, tx db.Tx) ([]models.Train, error) {
	var out []models.Train
	if _, err := db.GetJSON(ctx, tx, catalogKey, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Save replaces the stored catalog.
func (TrainRepo) Save(ctx context.Context, tx db.Tx, trains []models.Train) error {
	return db.PutJSON(ctx, tx, catalogKey, trains)
}

// Seed writes trains only when no catalog exists yet and returns whatever is stored afterwards.
func (r TrainRepo) Seed(ctx context.Context, store db.Store, trains []models.Train) ([]models.Train, error) {
	var out []models.Train
	err := store.Update(ctx, func(ctx context.Context, tx db.Tx) error {
		existing, err := r.List(ctx, tx)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			out = existing
			return nil
		}
		out = trains
		return r.Save(ctx, tx, trains)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
