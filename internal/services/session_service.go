package services

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"railbook/internal/domain"
	"railbook/internal/domain/models"
	"railbook/internal/utils"
)

// DefaultSessionTTL is how long an idle session survives.
const DefaultSessionTTL = 30 * time.Minute

// DefaultClass is used when a session is opened without a class.
const DefaultClass = "Economy"

// SessionService runs the seat-selection, payment and confirmation flow.
// Sessions live only in memory; abandoning one leaves no trace in the store.
// Expired sessions are dropped lazily on access.
type SessionService struct {
	Catalog   *CatalogService
	Inventory *InventoryService
	Bookings  *BookingService
	TTL       time.Duration
	Now       func() time.Time
	NewID     func() string

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	mu sync.Mutex
	s  models.Session
	// gone is set once the session is confirmed or discarded.
	gone bool
}

func NewSessionService(catalog *CatalogService, inventory *InventoryService, bookings *BookingService, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{
		Catalog:   catalog,
		Inventory: inventory,
		Bookings:  bookings,
		TTL:       ttl,
		Now:       utils.NowUTC,
		NewID:     NewSessionID,
		sessions:  map[string]*sessionEntry{},
	}
}

// StartSessionInput opens a session. Empty Date, Class and Pax fall back to today, Economy and 1.
type StartSessionInput struct {
	RequestID string
	Owner     string
	TrainID   string
	Date      string
	Class     string
	Pax       int
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return utils.NowUTC()
}

func (s *SessionService) StartSession(ctx context.Context, in StartSessionInput) (models.Session, error) {
	train, err := s.Catalog.Train(in.TrainID)
	if err != nil {
		return models.Session{}, err
	}

	date := utils.TodayUTC()
	if strings.TrimSpace(in.Date) != "" {
		d, ok := utils.NormalizeDate(in.Date)
		if !ok {
			return models.Session{}, domain.ValidationError{Field: "date", Msg: "date must be YYYY-MM-DD", Err: domain.ErrInvalidDate}
		}
		date = d
	}

	class := strings.TrimSpace(in.Class)
	if class == "" {
		class = DefaultClass
	}
	if _, ok := train.UnitPrice(class); !ok {
		return models.Session{}, domain.ValidationError{Field: "class", Msg: class + " is not sold on " + train.ID, Err: domain.ErrUnknownClass}
	}

	pax := in.Pax
	if pax == 0 {
		pax = 1
	}
	if pax < 1 || pax > train.SeatsPerClass {
		return models.Session{}, domain.ValidationError{Field: "pax", Msg: "pax must be between 1 and " + strconv.Itoa(train.SeatsPerClass), Err: domain.ErrInvalidPax}
	}

	now := s.now()
	sess := models.Session{
		ID:        s.newID(),
		Owner:     in.Owner,
		TrainID:   train.ID,
		Date:      date,
		Class:     class,
		Pax:       pax,
		Selected:  []int{},
		Stage:     models.StageSeatSelection,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	if s.sessions == nil {
		s.sessions = map[string]*sessionEntry{}
	}
	s.sweepLocked(now)
	s.sessions[sess.ID] = &sessionEntry{s: sess}
	s.mu.Unlock()

	utils.LogEventf(in.RequestID, "session", "start", "session=%s partition=%s pax=%d", sess.ID, sess.Partition(), pax)
	return sess.Clone(), nil
}

func (s *SessionService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return NewSessionID()
}

// sweepLocked drops expired sessions. s.mu must be held.
func (s *SessionService) sweepLocked(now time.Time) {
	for id, e := range s.sessions {
		if !e.mu.TryLock() {
			continue
		}
		if s.expired(e.s, now) {
			e.gone = true
			delete(s.sessions, id)
		}
		e.mu.Unlock()
	}
}

func (s *SessionService) expired(sess models.Session, now time.Time) bool {
	return s.TTL > 0 && now.Sub(sess.UpdatedAt) > s.TTL
}

// with runs fn on the locked session. Changes fn makes to the session are kept.
func (s *SessionService) with(id string, fn func(e *sessionEntry) error) error {
	s.mu.Lock()
	e, ok := s.sessions[strings.TrimSpace(id)]
	s.mu.Unlock()
	if !ok {
		return sessionNotFound()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return sessionNotFound()
	}
	if s.expired(e.s, s.now()) {
		s.drop(e)
		return sessionNotFound()
	}
	return fn(e)
}

// drop removes e from the table. e.mu must be held.
func (s *SessionService) drop(e *sessionEntry) {
	e.gone = true
	s.mu.Lock()
	if cur, ok := s.sessions[e.s.ID]; ok && cur == e {
		delete(s.sessions, e.s.ID)
	}
	s.mu.Unlock()
}

func sessionNotFound() error {
	return domain.NotFoundError{Resource: "session", Err: domain.ErrSessionNotFound}
}

func stageError(stage models.SessionStage, op string) error {
	return domain.ConflictError{Resource: "session", Msg: op + " is not allowed in stage " + string(stage), Err: domain.ErrSessionStage}
}

func (s *SessionService) Get(id string) (models.Session, error) {
	var out models.Session
	err := s.with(id, func(e *sessionEntry) error {
		out = e.s.Clone()
		return nil
	})
	return out, err
}

// SelectSeat adds seat to the tentative selection after an advisory occupancy check.
// Selecting a seat that is already selected changes nothing. A change made during
// Payment sends the session back to seat selection and drops the quote.
func (s *SessionService) SelectSeat(ctx context.Context, id string, seat int) (models.Session, error) {
	var out models.Session
	err := s.with(id, func(e *sessionEntry) error {
		train, err := s.Catalog.Train(e.s.TrainID)
		if err != nil {
			return err
		}
		if !train.ValidSeat(seat) {
			return invalidSeat(train, seat)
		}
		if e.s.HasSeat(seat) {
			out = e.s.Clone()
			return nil
		}
		if len(e.s.Selected) >= e.s.Pax {
			return domain.ValidationError{
				Field: "seat",
				Msg:   "select at most " + strconv.Itoa(e.s.Pax) + " seats",
				Err:   domain.ErrSelectionLimitExceeded,
			}
		}

		occ, err := s.Inventory.Occupied(ctx, e.s.Partition())
		if err != nil {
			return err
		}
		for _, n := range occ {
			if n == seat {
				return domain.NewSeatConflict([]int{seat})
			}
		}

		e.s.Selected = append(e.s.Selected, seat)
		s.touchSelection(&e.s)
		out = e.s.Clone()
		return nil
	})
	return out, err
}

// DeselectSeat removes seat from the selection. Removing an unselected seat is a no-op.
func (s *SessionService) DeselectSeat(ctx context.Context, id string, seat int) (models.Session, error) {
	var out models.Session
	err := s.with(id, func(e *sessionEntry) error {
		if !e.s.HasSeat(seat) {
			out = e.s.Clone()
			return nil
		}
		e.s.Selected = removeSeats(e.s.Selected, []int{seat})
		s.touchSelection(&e.s)
		out = e.s.Clone()
		return nil
	})
	return out, err
}

func (s *SessionService) touchSelection(sess *models.Session) {
	sess.Stage = models.StageSeatSelection
	sess.Quote = nil
	sess.UpdatedAt = s.now()
}

// Quote prices the current selection and moves the session to Payment.
func (s *SessionService) Quote(ctx context.Context, id string) (models.Session, error) {
	var out models.Session
	err := s.with(id, func(e *sessionEntry) error {
		if len(e.s.Selected) == 0 {
			return domain.ValidationError{Field: "seats", Msg: "select at least one seat", Err: domain.ErrEmptySelection}
		}
		train, err := s.Catalog.Train(e.s.TrainID)
		if err != nil {
			return err
		}
		fare, err := domain.Quote(train, e.s.Class, len(e.s.Selected))
		if err != nil {
			return err
		}
		e.s.Quote = &fare
		e.s.Stage = models.StagePayment
		e.s.UpdatedAt = s.now()
		out = e.s.Clone()
		return nil
	})
	return out, err
}

// ConfirmInput is the payment step's form.
type ConfirmInput struct {
	RequestID string
	Passenger models.Passenger
	Payment   models.PaymentInput
}

// Confirm validates passenger and payment, then commits. On a seat conflict the
// taken seats leave the selection and the session returns to seat selection.
// On success the session is gone and the booking is returned.
func (s *SessionService) Confirm(ctx context.Context, id string, in ConfirmInput) (models.Booking, error) {
	var out models.Booking
	err := s.with(id, func(e *sessionEntry) error {
		if e.s.Stage != models.StagePayment {
			return stageError(e.s.Stage, "confirm")
		}
		passenger, err := ValidatePassenger(in.Passenger)
		if err != nil {
			return err
		}
		payment, err := ValidatePayment(in.Payment)
		if err != nil {
			return err
		}
		train, err := s.Catalog.Train(e.s.TrainID)
		if err != nil {
			return err
		}

		b, err := s.Bookings.Commit(ctx, CommitRequest{
			RequestID: in.RequestID,
			Owner:     e.s.Owner,
			Train:     train,
			Date:      e.s.Date,
			Class:     e.s.Class,
			Seats:     e.s.Selected,
			Passenger: passenger,
			Payment:   payment,
		})
		if err != nil {
			if taken := domain.ConflictingSeats(err); len(taken) > 0 {
				e.s.Selected = removeSeats(e.s.Selected, taken)
				s.touchSelection(&e.s)
			}
			return err
		}

		e.s.Stage = models.StageConfirmed
		s.drop(e)
		utils.LogEventf(in.RequestID, "session", "confirm", "session=%s pnr=%s", e.s.ID, b.Reference)
		out = b
		return nil
	})
	return out, err
}

// Discard abandons the session. Nothing durable is touched.
func (s *SessionService) Discard(id string) error {
	return s.with(id, func(e *sessionEntry) error {
		s.drop(e)
		return nil
	})
}

func removeSeats(selected, drop []int) []int {
	gone := make(map[int]bool, len(drop))
	for _, n := range drop {
		gone[n] = true
	}
	out := make([]int, 0, len(selected))
	for _, n := range selected {
		if !gone[n] {
			out = append(out, n)
		}
	}
	return out
}
