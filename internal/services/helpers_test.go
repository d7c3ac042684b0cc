package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"railbook/internal/db"
	"railbook/internal/domain/models"
	"railbook/internal/repositories"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func sequentialRefs() RefGenerator {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("PNR-T%06d", n)
	}
}

type testEnv struct {
	store     db.Store
	clock     *testClock
	catalog   *CatalogService
	inventory *InventoryService
	bookings  *BookingService
	sessions  *SessionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, db.NewMemoryStore())
}

func newTestEnvWithStore(t *testing.T, store db.Store) *testEnv {
	t.Helper()
	trains, err := repositories.DefaultTrains()
	if err != nil {
		t.Fatalf("default trains: %v", err)
	}
	clock := newTestClock()
	catalog := NewCatalog(trains)
	inventory := NewInventoryService(store)
	bookings := NewBookingService(store, inventory)
	bookings.Now = clock.Now
	bookings.NewRef = sequentialRefs()
	sessions := NewSessionService(catalog, inventory, bookings, 15*time.Minute)
	sessions.Now = clock.Now
	return &testEnv{
		store:     store,
		clock:     clock,
		catalog:   catalog,
		inventory: inventory,
		bookings:  bookings,
		sessions:  sessions,
	}
}

func (e *testEnv) train(t *testing.T, id string) models.Train {
	t.Helper()
	tr, err := e.catalog.Train(id)
	if err != nil {
		t.Fatalf("train %s: %v", id, err)
	}
	return tr
}

func (e *testEnv) occupied(t *testing.T, train, date, class string) []int {
	t.Helper()
	occ, err := e.inventory.Occupied(context.Background(), models.PartitionKey{TrainID: train, Date: date, Class: class})
	if err != nil {
		t.Fatalf("occupied: %v", err)
	}
	return occ
}

func validPassenger() models.Passenger {
	return models.Passenger{
		Name:  "Ali Khan",
		CNIC:  "12345-1234567-1",
		Phone: "0300-1234567",
		Email: "ali@example.pk",
	}
}

func cardPayment() models.PaymentInput {
	return models.PaymentInput{Method: "Card", CardNumber: "4111 1111 1111 1111"}
}

// book runs a whole session for seats and returns the booking.
func (e *testEnv) book(t *testing.T, owner, date string, seats ...int) models.Booking {
	t.Helper()
	ctx := context.Background()
	sess, err := e.sessions.StartSession(ctx, StartSessionInput{Owner: owner, TrainID: "PKR-1", Date: date, Class: "Economy", Pax: len(seats)})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	for _, n := range seats {
		if _, err := e.sessions.SelectSeat(ctx, sess.ID, n); err != nil {
			t.Fatalf("select %d: %v", n, err)
		}
	}
	if _, err := e.sessions.Quote(ctx, sess.ID); err != nil {
		t.Fatalf("quote: %v", err)
	}
	b, err := e.sessions.Confirm(ctx, sess.ID, ConfirmInput{Passenger: validPassenger(), Payment: cardPayment()})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	return b
}

func sameSeats(got []int, want ...int) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// failingStore makes Put fail inside transactions for keys under prefix.
type failingStore struct {
	db.Store
	prefix string
}

func (f failingStore) Update(ctx context.Context, fn func(ctx context.Context, tx db.Tx) error) error {
	return f.Store.Update(ctx, func(ctx context.Context, tx db.Tx) error {
		return fn(ctx, failingTx{Tx: tx, prefix: f.prefix})
	})
}

type failingTx struct {
	db.Tx
	prefix string
}

func (f failingTx) Put(ctx context.Context, key string, value []byte) error {
	if strings.HasPrefix(key, f.prefix) {
		return errors.New("ledger unavailable")
	}
	return f.Tx.Put(ctx, key, value)
}
