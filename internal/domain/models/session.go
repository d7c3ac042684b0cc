package models

import (
	"sort"
	"time"
)

type SessionStage string

const (
	StageSeatSelection SessionStage = "SEAT_SELECTION"
	StagePayment       SessionStage = "PAYMENT"
	StageConfirmed     SessionStage = "CONFIRMED"
)

// Session is an in-progress reservation attempt. Nothing in it is durable.
type Session struct {
	ID        string       `json:"id"`
	Owner     string       `json:"owner,omitempty"`
	TrainID   string       `json:"trainId"`
	Date      string       `json:"date"`
	Class     string       `json:"class"`
	Pax       int          `json:"pax"`
	Selected  []int        `json:"selected"`
	Quote     *Fare        `json:"quote,omitempty"`
	Stage     SessionStage `json:"stage"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func (s Session) Partition() PartitionKey {
	return PartitionKey{TrainID: s.TrainID, Date: s.Date, Class: s.Class}
}

func (s Session) HasSeat(n int) bool {
	for _, v := range s.Selected {
		if v == n {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices or pointers with s.
func (s Session) Clone() Session {
	out := s
	out.Selected = append([]int(nil), s.Selected...)
	if s.Quote != nil {
		q := *s.Quote
		out.Quote = &q
	}
	return out
}

// SortedSeats returns the selection in ascending order.
func (s Session) SortedSeats() []int {
	out := append([]int(nil), s.Selected...)
	sort.Ints(out)
	return out
}
