package services

import (
	"context"
	"strings"
	"time"

	"railbook/internal/db"
	"railbook/internal/domain"
	"railbook/internal/domain/models"
	"railbook/internal/repositories"
	"railbook/internal/utils"
)

// maxRefAttempts bounds how often Commit regenerates a reference that already exists.
const maxRefAttempts = 5

// BookingService is the ledger. Commit and Cancel touch inventory and ledger
// in one store transaction under the partition lock.
type BookingService struct {
	Store     db.Store
	Inventory *InventoryService
	Bookings  repositories.BookingRepo
	NewRef    RefGenerator
	Now       func() time.Time
}

func NewBookingService(store db.Store, inventory *InventoryService) *BookingService {
	return &BookingService{
		Store:     store,
		Inventory: inventory,
		NewRef:    NewBookingRef,
		Now:       utils.NowUTC,
	}
}

// CommitRequest is everything a confirmed booking is built from.
// Passenger and Payment are expected to be validated already.
type CommitRequest struct {
	RequestID string
	Owner     string
	Train     models.Train
	Date      string
	Class     string
	Seats     []int
	Passenger models.Passenger
	Payment   models.PaymentSummary
}

func (s *BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return utils.NowUTC()
}

func (s *BookingService) newRef() string {
	if s.NewRef != nil {
		return s.NewRef()
	}
	return NewBookingRef()
}

// Commit re-checks the seats against the latest occupancy, reserves them and
// appends a CONFIRMED booking. Either both writes land or neither does.
func (s *BookingService) Commit(ctx context.Context, req CommitRequest) (models.Booking, error) {
	seats := repositories.SortedUnique(req.Seats)
	if len(seats) == 0 {
		return models.Booking{}, domain.ValidationError{Field: "seats", Err: domain.ErrEmptySelection}
	}
	p, err := partitionFor(req.Train, req.Date, req.Class, seats)
	if err != nil {
		return models.Booking{}, err
	}
	fare, err := domain.Quote(req.Train, req.Class, len(seats))
	if err != nil {
		return models.Booking{}, err
	}

	unlock := s.Inventory.lock(p)
	defer unlock()

	var booking models.Booking
	err = s.Store.Update(ctx, func(ctx context.Context, tx db.Tx) error {
		if _, err := s.Inventory.reserveTx(ctx, tx, p, seats); err != nil {
			return err
		}
		ref, err := s.uniqueRef(ctx, tx)
		if err != nil {
			return err
		}
		booking = models.Booking{
			Reference: ref,
			Owner:     req.Owner,
			TrainID:   req.Train.ID,
			TrainName: req.Train.Name,
			From:      req.Train.From,
			To:        req.Train.To,
			Date:      req.Date,
			Class:     req.Class,
			Seats:     seats,
			Fare:      fare,
			Amount:    fare.Total,
			Passenger: req.Passenger,
			Payment:   req.Payment,
			CreatedAt: s.now(),
			Status:    models.BookingConfirmed,
		}
		return s.Bookings.Put(ctx, tx, booking)
	})
	if err != nil {
		if domain.IsConflict(err) {
			utils.LogEventf(req.RequestID, "booking", "commit_conflict", "partition=%s seats=%v", p, domain.ConflictingSeats(err))
		}
		return models.Booking{}, storeError("commit booking", err)
	}

	utils.LogEventf(req.RequestID, "booking", "commit", "pnr=%s partition=%s seats=%v amount=%d", booking.Reference, p, seats, booking.Amount)
	return booking, nil
}

func (s *BookingService) uniqueRef(ctx context.Context, tx db.Tx) (string, error) {
	for i := 0; i < maxRefAttempts; i++ {
		ref := s.newRef()
		_, exists, err := s.Bookings.Get(ctx, tx, ref)
		if err != nil {
			return "", err
		}
		if !exists {
			return ref, nil
		}
	}
	return "", domain.InternalError{Msg: "could not generate a unique booking reference"}
}

// Cancel releases exactly the booking's seats and marks it CANCELLED.
// The record is kept; nothing is refunded.
func (s *BookingService) Cancel(ctx context.Context, requestID, ref string) (models.Booking, error) {
	current, err := s.Get(ctx, ref)
	if err != nil {
		return models.Booking{}, err
	}

	p := current.Partition()
	unlock := s.Inventory.lock(p)
	defer unlock()

	var out models.Booking
	err = s.Store.Update(ctx, func(ctx context.Context, tx db.Tx) error {
		b, ok, err := s.Bookings.Get(ctx, tx, current.Reference)
		if err != nil {
			return err
		}
		if !ok {
			return bookingNotFound()
		}
		if b.Status == models.BookingCancelled {
			return domain.ConflictError{Resource: "booking", Msg: b.Reference + " is already cancelled", Err: domain.ErrAlreadyCancelled}
		}
		if _, err := s.Inventory.releaseTx(ctx, tx, p, b.Seats); err != nil {
			return err
		}
		at := s.now()
		b.Status = models.BookingCancelled
		b.CancelledAt = &at
		out = b
		return s.Bookings.Put(ctx, tx, b)
	})
	if err != nil {
		return models.Booking{}, storeError("cancel booking", err)
	}

	utils.LogEventf(requestID, "booking", "cancel", "pnr=%s partition=%s seats=%v", out.Reference, p, out.Seats)
	return out, nil
}

func (s *BookingService) Get(ctx context.Context, ref string) (models.Booking, error) {
	b, ok, err := s.Bookings.Get(ctx, s.Store, strings.ToUpper(strings.TrimSpace(ref)))
	if err != nil {
		return models.Booking{}, storeError("read booking", err)
	}
	if !ok {
		return models.Booking{}, bookingNotFound()
	}
	return b, nil
}

// List returns bookings oldest first. An empty owner lists all of them.
func (s *BookingService) List(ctx context.Context, owner string) ([]models.Booking, error) {
	out, err := s.Bookings.List(ctx, s.Store, owner)
	if err != nil {
		return nil, storeError("list bookings", err)
	}
	return out, nil
}

func bookingNotFound() error {
	return domain.NotFoundError{Resource: "booking", Err: domain.ErrNotFound}
}
