package tracelib

import (
	"sort"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"github.com/spf13/afero"
)

const (
	// AirportMinCityPopulation is a minimal population of the city an
	// airport belongs to. Small airfields are too often false
	// positives.
	AirportMinCityPopulation = 25000

	citiesCSVFields   = 5
	airportsCSVFields = 6
)

// CityEntry is a row of city directory.
type CityEntry struct {
	Name       string
	ASCIIName  string
	Population int
	Latitude   float64
	Longitude  float64
}

// AirportEntry is a row of airport directory.
type AirportEntry struct {
	Code      string
	ICAO      string
	URL       string
	CityName  string
	Latitude  float64
	Longitude float64
}

// CityTable is an immutable index of cities by lowercased ASCII name.
type CityTable struct {
	byName map[string][]CityEntry
	names  []string
}

// Lookup returns the most populated city with a given name.
func (c *CityTable) Lookup(name string) (CityEntry, bool) {
	entries := c.byName[strings.ToLower(name)]
	if len(entries) == 0 {
		return CityEntry{}, false
	}

	return entries[0], true
}

// Len returns a number of distinct city names.
func (c *CityTable) Len() int {
	return len(c.names)
}

// NewCityTable builds an index from a list of cities.
func NewCityTable(entries []CityEntry) *CityTable {
	rv := &CityTable{
		byName: map[string][]CityEntry{},
	}

	for _, v := range entries {
		key := strings.ToLower(v.ASCIIName)
		if key == "" {
			continue
		}

		rv.byName[key] = append(rv.byName[key], v)
	}

	rv.names = make([]string, 0, len(rv.byName))

	for k, v := range rv.byName {
		sort.SliceStable(v, func(i, j int) bool {
			return v[i].Population > v[j].Population
		})

		rv.names = append(rv.names, k)
	}

	sort.Strings(rv.names)

	return rv
}

// AirportTable is an immutable index of airports by lowercased code.
type AirportTable struct {
	byCode map[string]AirportEntry
}

// Lookup returns an airport for the given code. It does not check if
// airport is usable.
func (a *AirportTable) Lookup(code string) (AirportEntry, bool) {
	rv, ok := a.byCode[strings.ToLower(code)]

	return rv, ok
}

// Len returns a number of airports.
func (a *AirportTable) Len() int {
	return len(a.byCode)
}

// NewAirportTable builds an index from a list of airports. If code is
// duplicated, the first entry wins.
func NewAirportTable(entries []AirportEntry) *AirportTable {
	rv := &AirportTable{
		byCode: make(map[string]AirportEntry, len(entries)),
	}

	for _, v := range entries {
		key := strings.ToLower(v.Code)
		if key == "" {
			continue
		}

		if _, ok := rv.byCode[key]; !ok {
			rv.byCode[key] = v
		}
	}

	return rv
}

// LoadCityTable reads a city directory from CSV file with columns
// name, ascii_name, population, lat, lon.
func LoadCityTable(fs afero.Fs, path string) (*CityTable, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, errors.Annotatef(err, "Cannot open city directory %s", path)
	}
	defer file.Close()

	entries := []CityEntry{}
	reader := newCSVReader(file, citiesCSVFields, func(data []string) error {
		population, err := strconv.Atoi(strings.TrimSpace(data[2]))
		if err != nil {
			return errors.Annotate(err, "Incorrect population")
		}

		lat, err := csvFloat(data[3])
		if err != nil {
			return err
		}

		lon, err := csvFloat(data[4])
		if err != nil {
			return err
		}

		entries = append(entries, CityEntry{
			Name:       data[0],
			ASCIIName:  data[1],
			Population: population,
			Latitude:   lat,
			Longitude:  lon,
		})

		return nil
	})

	if err := reader.ReadAll(); err != nil {
		return nil, errors.Annotatef(err, "Cannot parse city directory %s", path)
	}

	return NewCityTable(entries), nil
}

// LoadAirportTable reads an airport directory from CSV file with
// columns code, icao, url, city, lat, lon.
func LoadAirportTable(fs afero.Fs, path string) (*AirportTable, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, errors.Annotatef(err, "Cannot open airport directory %s", path)
	}
	defer file.Close()

	entries := []AirportEntry{}
	reader := newCSVReader(file, airportsCSVFields, func(data []string) error {
		lat, err := csvFloat(data[4])
		if err != nil {
			return err
		}

		lon, err := csvFloat(data[5])
		if err != nil {
			return err
		}

		entries = append(entries, AirportEntry{
			Code:      strings.TrimSpace(data[0]),
			ICAO:      strings.TrimSpace(data[1]),
			URL:       strings.TrimSpace(data[2]),
			CityName:  data[3],
			Latitude:  lat,
			Longitude: lon,
		})

		return nil
	})

	if err := reader.ReadAll(); err != nil {
		return nil, errors.Annotatef(err, "Cannot parse airport directory %s", path)
	}

	return NewAirportTable(entries), nil
}
