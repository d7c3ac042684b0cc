package services

import (
	"context"
	"sort"
	"strings"

	"railbook/internal/db"
	"railbook/internal/domain"
	"railbook/internal/domain/models"
	"railbook/internal/repositories"
	"railbook/internal/utils"
)

// CatalogService is the read-only timetable. It never changes after LoadCatalog.
type CatalogService struct {
	trains []models.Train
	byID   map[string]models.Train
}

// NewCatalog builds a catalog from trains, keeping their order.
func NewCatalog(trains []models.Train) *CatalogService {
	c := &CatalogService{
		trains: make([]models.Train, 0, len(trains)),
		byID:   make(map[string]models.Train, len(trains)),
	}
	for _, t := range trains {
		if _, dup := c.byID[t.ID]; dup {
			continue
		}
		c.trains = append(c.trains, t)
		c.byID[t.ID] = t
	}
	return c
}

// LoadCatalog seeds the built-in timetable into store on first run and loads whatever is stored.
func LoadCatalog(ctx context.Context, store db.Store) (*CatalogService, error) {
	defaults, err := repositories.DefaultTrains()
	if err != nil {
		return nil, domain.InternalError{Msg: "load catalog", Err: err}
	}
	trains, err := repositories.TrainRepo{}.Seed(ctx, store, defaults)
	if err != nil {
		return nil, domain.InternalError{Msg: "load catalog", Err: err}
	}
	utils.LogEventf("", "catalog", "load", "trains=%d", len(trains))
	return NewCatalog(trains), nil
}

// FindTrains filters by origin and destination city, in catalog order.
// An empty city matches everything; a via-stop matches either side.
func (c *CatalogService) FindTrains(from, to string) []models.Train {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	out := make([]models.Train, 0, len(c.trains))
	for _, t := range c.trains {
		if t.Serves(from, false) && t.Serves(to, true) {
			out = append(out, t)
		}
	}
	return out
}

func (c *CatalogService) Train(id string) (models.Train, error) {
	t, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return models.Train{}, domain.NotFoundError{Resource: "train", Err: domain.ErrTrainNotFound}
	}
	return t, nil
}

// KnownCities are offered in the station picker even when no train serves them yet.
var KnownCities = []string{
	"Karachi", "Hyderabad", "Rohri", "Multan", "Lahore",
	"Rawalpindi", "Peshawar", "Quetta", "Sukkur", "Faisalabad",
}

// Cities merges KnownCities with every origin, via-stop and destination, sorted.
func (c *CatalogService) Cities() []string {
	seen := map[string]bool{}
	var out []string
	add := func(city string) {
		if city != "" && !seen[city] {
			seen[city] = true
			out = append(out, city)
		}
	}
	for _, city := range KnownCities {
		add(city)
	}
	for _, t := range c.trains {
		add(t.From)
		for _, v := range t.Via {
			add(v)
		}
		add(t.To)
	}
	sort.Strings(out)
	return out
}
