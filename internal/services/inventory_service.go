package services

import (
	"context"
	"strconv"
	"sync"

	"railbook/internal/db"
	"railbook/internal/domain"
	"railbook/internal/domain/models"
	"railbook/internal/repositories"
)

// InventoryService guards seat exclusivity per (train, date, class) partition.
// Every read-check-write on a partition runs under that partition's lock and
// inside one store transaction.
type InventoryService struct {
	Store db.Store
	Seats repositories.SeatRepo

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewInventoryService(store db.Store) *InventoryService {
	return &InventoryService{Store: store, locks: map[string]*sync.Mutex{}}
}

// lock blocks until the partition is free and returns its unlock func.
func (s *InventoryService) lock(p models.PartitionKey) func() {
	s.mu.Lock()
	if s.locks == nil {
		s.locks = map[string]*sync.Mutex{}
	}
	m, ok := s.locks[p.String()]
	if !ok {
		m = &sync.Mutex{}
		s.locks[p.String()] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Occupied returns the partition's occupied seats, ascending. Advisory only.
func (s *InventoryService) Occupied(ctx context.Context, p models.PartitionKey) ([]int, error) {
	occ, err := s.Seats.Occupied(ctx, s.Store, p)
	if err != nil {
		return nil, storeError("read seats", err)
	}
	return occ, nil
}

// Reserve adds seats to the partition, failing with a SeatConflictError when any is taken.
func (s *InventoryService) Reserve(ctx context.Context, train models.Train, date, class string, seats []int) ([]int, error) {
	p, err := partitionFor(train, date, class, seats)
	if err != nil {
		return nil, err
	}
	unlock := s.lock(p)
	defer unlock()

	var out []int
	err = s.Store.Update(ctx, func(ctx context.Context, tx db.Tx) error {
		occ, err := s.reserveTx(ctx, tx, p, seats)
		out = occ
		return err
	})
	if err != nil {
		return nil, storeError("reserve seats", err)
	}
	return out, nil
}

// Release removes seats from the partition. Seats that are not occupied are ignored.
func (s *InventoryService) Release(ctx context.Context, train models.Train, date, class string, seats []int) ([]int, error) {
	p, err := partitionFor(train, date, class, seats)
	if err != nil {
		return nil, err
	}
	unlock := s.lock(p)
	defer unlock()

	var out []int
	err = s.Store.Update(ctx, func(ctx context.Context, tx db.Tx) error {
		occ, err := s.releaseTx(ctx, tx, p, seats)
		out = occ
		return err
	})
	if err != nil {
		return nil, storeError("release seats", err)
	}
	return out, nil
}

// reserveTx must run under the partition lock.
func (s *InventoryService) reserveTx(ctx context.Context, tx db.Tx, p models.PartitionKey, seats []int) ([]int, error) {
	occ, err := s.Seats.Occupied(ctx, tx, p)
	if err != nil {
		return nil, err
	}
	taken := make(map[int]bool, len(occ))
	for _, n := range occ {
		taken[n] = true
	}
	var conflicts []int
	for _, n := range repositories.SortedUnique(seats) {
		if taken[n] {
			conflicts = append(conflicts, n)
		}
	}
	if len(conflicts) > 0 {
		return nil, domain.NewSeatConflict(conflicts)
	}

	next := repositories.SortedUnique(append(occ, seats...))
	if err := s.Seats.Save(ctx, tx, p, next); err != nil {
		return nil, err
	}
	return next, nil
}

// releaseTx must run under the partition lock.
func (s *InventoryService) releaseTx(ctx context.Context, tx db.Tx, p models.PartitionKey, seats []int) ([]int, error) {
	occ, err := s.Seats.Occupied(ctx, tx, p)
	if err != nil {
		return nil, err
	}
	drop := make(map[int]bool, len(seats))
	for _, n := range seats {
		drop[n] = true
	}
	next := make([]int, 0, len(occ))
	for _, n := range occ {
		if !drop[n] {
			next = append(next, n)
		}
	}
	if err := s.Seats.Save(ctx, tx, p, next); err != nil {
		return nil, err
	}
	return next, nil
}

// partitionFor checks class and seat bounds against train.
func partitionFor(train models.Train, date, class string, seats []int) (models.PartitionKey, error) {
	if _, ok := train.UnitPrice(class); !ok {
		return models.PartitionKey{}, domain.ValidationError{Field: "class", Msg: class + " is not sold on " + train.ID, Err: domain.ErrUnknownClass}
	}
	for _, n := range seats {
		if !train.ValidSeat(n) {
			return models.PartitionKey{}, invalidSeat(train, n)
		}
	}
	return models.PartitionKey{TrainID: train.ID, Date: date, Class: class}, nil
}

func invalidSeat(train models.Train, n int) error {
	return domain.ValidationError{
		Field: "seat",
		Msg:   "seat " + strconv.Itoa(n) + " is outside 1-" + strconv.Itoa(train.SeatsPerClass),
		Err:   domain.ErrInvalidSeat,
	}
}

// storeError keeps domain errors as they are and wraps anything else as internal.
func storeError(msg string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsValidation(err) || domain.IsConflict(err) || domain.IsNotFound(err) || domain.IsInternal(err) {
		return err
	}
	return domain.InternalError{Msg: msg, Err: err}
}
