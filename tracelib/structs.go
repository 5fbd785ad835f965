package tracelib

import "encoding/json"

// HopRecord is a single parsed line of traceroute output.
type HopRecord struct {
	Index    int
	Hostname string
	Address  string
	DelayMs  float64
}

// LocationGuess is a best-effort location of the hop. Population is
// optional: it is a population of a city the guess is based on.
type LocationGuess struct {
	Label      string
	Latitude   float64
	Longitude  float64
	Population *int
}

// ResolvedHop is a hop with its location guess. Guess is nil if we
// have no idea where this hop is.
type ResolvedHop struct {
	HopRecord

	Guess *LocationGuess
}

type resolvedHopAnalysisJSON struct {
	CityOrAirport string     `json:"cityOrAirport"`
	Coordinates   [2]float64 `json:"coordinates"`
	Population    *int       `json:"population,omitempty"`
}

type resolvedHopJSON struct {
	Index          int                      `json:"index"`
	Domain         string                   `json:"domain"`
	IP             string                   `json:"ip"`
	Delay          float64                  `json:"delay"`
	DomainAnalysis *resolvedHopAnalysisJSON `json:"domainAnalysis,omitempty"`
}

func (r ResolvedHop) MarshalJSON() ([]byte, error) {
	value := resolvedHopJSON{
		Index:  r.Index,
		Domain: r.Hostname,
		IP:     r.Address,
		Delay:  r.DelayMs,
	}

	if r.Guess != nil {
		value.DomainAnalysis = &resolvedHopAnalysisJSON{
			CityOrAirport: r.Guess.Label,
			Coordinates:   [2]float64{r.Guess.Latitude, r.Guess.Longitude},
			Population:    r.Guess.Population,
		}
	}

	return json.Marshal(&value)
}

// OriginHop is a synthetic hop where a trace starts. It never goes
// through the resolvers; HTTP API reports it separately so a map can
// draw the first segment of the route.
type OriginHop struct {
	Label     string  `json:"label"`
	Address   string  `json:"ip"`
	Delay     float64 `json:"delay"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// NewOriginHop returns an origin hop with a given fixed location.
func NewOriginHop(latitude, longitude float64) OriginHop {
	return OriginHop{
		Label:     "Origin Server",
		Address:   "Unknown",
		Latitude:  latitude,
		Longitude: longitude,
	}
}

// ProviderLookupResult is a response of geolocation provider.
type ProviderLookupResult struct {
	Latitude  float64
	Longitude float64
}
