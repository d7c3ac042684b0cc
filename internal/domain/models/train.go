package models

import (
	"sort"
	"strings"
)

// Train is one catalog entry. Immutable after the catalog is loaded.
type Train struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	From          string           `json:"from"`
	To            string           `json:"to"`
	Via           []string         `json:"via"`
	Departs       string           `json:"dep"`
	Arrives       string           `json:"arr"`
	Days          []string         `json:"days"`
	Classes       map[string]int64 `json:"classes"`
	SeatsPerClass int              `json:"seatsPerCoach"`
}

// Serves reports whether city is the origin, a via-stop or, with dest set, the destination.
func (t Train) Serves(city string, dest bool) bool {
	if city == "" {
		return true
	}
	if !dest && t.From == city {
		return true
	}
	if dest && t.To == city {
		return true
	}
	for _, v := range t.Via {
		if v == city {
			return true
		}
	}
	return false
}

// UnitPrice returns the per-seat price for class.
func (t Train) UnitPrice(class string) (int64, bool) {
	p, ok := t.Classes[class]
	return p, ok
}

// ClassNames lists the price table keys, cheapest first.
func (t Train) ClassNames() []string {
	out := make([]string, 0, len(t.Classes))
	for c := range t.Classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := t.Classes[out[i]], t.Classes[out[j]]
		if pi != pj {
			return pi < pj
		}
		return out[i] < out[j]
	})
	return out
}

// ValidSeat reports whether n is inside [1, SeatsPerClass].
func (t Train) ValidSeat(n int) bool {
	return n >= 1 && n <= t.SeatsPerClass
}

// PartitionKey identifies one unit of seat exclusivity.
type PartitionKey struct {
	TrainID string `json:"trainId"`
	Date    string `json:"date"`
	Class   string `json:"class"`
}

func (k PartitionKey) String() string {
	return strings.Join([]string{k.TrainID, k.Date, k.Class}, "/")
}
