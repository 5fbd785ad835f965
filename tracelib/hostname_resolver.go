package tracelib

import (
	"regexp"
	"strings"
)

const (
	// HostnameCityMinNameLength is a length a city name has to exceed
	// to be searched in hostnames. Short names match almost anything.
	HostnameCityMinNameLength = 5

	// HostnameCityMinPopulation is a population a city has to exceed
	// to be a candidate in the city pass.
	HostnameCityMinPopulation = 5000
)

var hostnameTokenRegexp = regexp.MustCompile(`[a-z]{3}`)

// HostnameResolver guesses a location of the hop by its hostname. This
// is a heuristic: it makes no network calls and can be wrong.
type HostnameResolver struct {
	cities   *CityTable
	airports *AirportTable
}

// Resolve tries a city pass and then an airport token pass.
func (h *HostnameResolver) Resolve(hostname string) (LocationGuess, bool) {
	hostname = strings.ToLower(hostname)

	if guess, ok := h.resolveCity(hostname); ok {
		return guess, true
	}

	return h.resolveAirport(hostname)
}

func (h *HostnameResolver) resolveCity(hostname string) (LocationGuess, bool) {
	var best CityEntry

	found := false

	for _, name := range h.cities.names {
		if len(name) <= HostnameCityMinNameLength || !strings.Contains(hostname, name) {
			continue
		}

		city := h.cities.byName[name][0]

		if city.Population > HostnameCityMinPopulation && (!found || city.Population > best.Population) {
			best = city
			found = true
		}
	}

	if !found {
		return LocationGuess{}, false
	}

	population := best.Population

	return LocationGuess{
		Label:      best.Name,
		Latitude:   best.Latitude,
		Longitude:  best.Longitude,
		Population: &population,
	}, true
}

// resolveAirport returns the first usable airport. Order of tokens
// matters: it is the order of appearance in the hostname.
func (h *HostnameResolver) resolveAirport(hostname string) (LocationGuess, bool) {
	for _, token := range hostnameTokenRegexp.FindAllString(hostname, -1) {
		code := NormalizeCode(token)

		airport, ok := h.airports.Lookup(code)
		if !ok {
			continue
		}

		city, ok := h.usableAirportCity(airport)
		if !ok {
			continue
		}

		population := city.Population

		return LocationGuess{
			Label:      strings.ToUpper(code),
			Latitude:   airport.Latitude,
			Longitude:  airport.Longitude,
			Population: &population,
		}, true
	}

	return LocationGuess{}, false
}

func (h *HostnameResolver) usableAirportCity(airport AirportEntry) (CityEntry, bool) {
	if airport.URL == "" || airport.ICAO == "" {
		return CityEntry{}, false
	}

	city, ok := h.cities.Lookup(airport.CityName)
	if !ok || city.Population < AirportMinCityPopulation {
		return CityEntry{}, false
	}

	return city, true
}

// NewHostnameResolver creates a resolver on top of reference tables.
// Tables are shared and never modified.
func NewHostnameResolver(cities *CityTable, airports *AirportTable) *HostnameResolver {
	return &HostnameResolver{
		cities:   cities,
		airports: airports,
	}
}
