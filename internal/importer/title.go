package importer

import (
	"slices"
	"strings"

	"github.com/kozaktomas/photo-memories/internal/constants"
	"github.com/kozaktomas/photo-memories/internal/geocoding"
)

// deriveTitle builds a cluster title and notes from the places of its
// sub-groups, in sub-group order.
func deriveTitle(places []geocoding.Place) (title, notes string) {
	var cities, countries []string
	for _, p := range places {
		if p.City != "" && !slices.Contains(cities, p.City) {
			cities = append(cities, p.City)
		}
		if p.Country != "" && !slices.Contains(countries, p.Country) {
			countries = append(countries, p.Country)
		}
	}

	title, notes = constants.DefaultTitle, constants.DefaultNotes

	switch {
	case len(cities) == 1:
		title = cities[0]
		if len(countries) > 0 {
			title = cities[0] + ", " + countries[0]
		}
	case len(cities) > 1:
		switch len(countries) {
		case 0:
			title = constants.MultiCountryFallbackTitle
		case 1:
			title = countries[0]
		default:
			title = countries[0] + " Trip"
		}
		sorted := slices.Clone(cities)
		slices.Sort(sorted)
		notes = constants.VisitedPrefix + strings.Join(sorted, ", ")
	case len(countries) > 0:
		title = countries[0]
	}
	return title, notes
}
