package services

import (
	"context"
	"sort"
	"testing"

	"railbook/internal/db"
	"railbook/internal/domain"
	"railbook/internal/domain/models"
)

func trainIDs(env *testEnv, from, to string) []string {
	var out []string
	for _, t := range env.catalog.FindTrains(from, to) {
		out = append(out, t.ID)
	}
	return out
}

func TestFindTrains(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name     string
		from, to string
		want     []string
	}{
		{name: "no filter keeps catalog order", want: []string{"PKR-1", "PKR-5", "PKR-9", "PKR-15"}},
		{name: "origin", from: "Quetta", want: []string{"PKR-15"}},
		{name: "destination", to: "Peshawar", want: []string{"PKR-5"}},
		{name: "via stops both sides", from: "Multan", to: "Lahore", want: []string{"PKR-1", "PKR-5", "PKR-9", "PKR-15"}},
		{name: "destination is not an origin", from: "Islamabad"},
		{name: "origin is not a destination", to: "Karachi"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := trainIDs(env, tc.from, tc.to)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("expected %v, got %v", tc.want, got)
				}
			}
		})
	}
}

func TestCatalogTrainNotFound(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.catalog.Train("PKR-404"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLoadCatalogSeedsStore(t *testing.T) {
	store := db.NewMemoryStore()
	c, err := LoadCatalog(context.Background(), store)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if len(c.FindTrains("", "")) != 4 {
		t.Fatalf("expected 4 trains")
	}
	if _, err := store.Get(context.Background(), "catalog/trains"); err != nil {
		t.Fatalf("expected catalog persisted, got %v", err)
	}
}

func TestCitiesSortedAndMerged(t *testing.T) {
	c := NewCatalog([]models.Train{{ID: "X-1", From: "Lahore", Via: []string{"Sahiwal"}, To: "Karachi"}})
	cities := c.Cities()
	if len(cities) != len(KnownCities)+1 {
		t.Fatalf("expected known cities plus Sahiwal once, got %v", cities)
	}
	if !sort.StringsAreSorted(cities) {
		t.Fatalf("expected sorted cities, got %v", cities)
	}
	if cities[0] != "Faisalabad" || cities[len(cities)-1] != "Sukkur" {
		t.Fatalf("unexpected cities %v", cities)
	}
}
