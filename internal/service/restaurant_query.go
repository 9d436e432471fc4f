package service

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/noah-isme/resto-dashboard/internal/models"
)

const (
	SortByName     = "name"
	SortByLocation = "location"
	SortByCuisine  = "cuisine"
)

var sortKeys = map[string]func(models.Restaurant) string{
	SortByName:     func(r models.Restaurant) string { return r.Name },
	SortByLocation: func(r models.Restaurant) string { return r.Location },
	SortByCuisine:  func(r models.Restaurant) string { return r.Cuisine },
}

// QueryRestaurants filters restaurants by a case-insensitive substring of name,
// location or cuisine and sorts them by sortKey. An empty key sorts by name; an
// unknown key keeps the server order. The input slice is not modified.
func QueryRestaurants(restaurants []models.Restaurant, search, sortKey string) []models.Restaurant {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]models.Restaurant, 0, len(restaurants))
	for _, restaurant := range restaurants {
		if needle == "" || matchesRestaurant(restaurant, needle) {
			out = append(out, restaurant)
		}
	}

	sortKey = strings.ToLower(strings.TrimSpace(sortKey))
	if sortKey == "" {
		sortKey = SortByName
	}
	key, ok := sortKeys[sortKey]
	if !ok {
		return out
	}

	collator := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(out, func(i, j int) bool {
		return collator.CompareString(key(out[i]), key(out[j])) < 0
	})
	return out
}

func matchesRestaurant(restaurant models.Restaurant, needle string) bool {
	for _, field := range []string{restaurant.Name, restaurant.Location, restaurant.Cuisine} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
