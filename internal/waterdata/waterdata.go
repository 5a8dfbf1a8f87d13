// Package waterdata serves the fixed sample water-quality datasets shown on
// the area, reports and map screens. All values are read-only; only the
// human-readable text varies by language.
package waterdata

import (
	"errors"
	"slices"

	"github.com/navyasetu/varunnetra/internal/i18n"
)

// ErrUnknownFilter is returned for a map filter outside Filters().
var ErrUnknownFilter = errors.New("unknown zone filter")

// Zone is a map risk class.
type Zone string

const (
	ZoneSafe     Zone = "safe"
	ZoneModerate Zone = "moderate"
	ZoneHigh     Zone = "high"
)

// FilterAll selects every city on the map.
const FilterAll = "all"

// Filters returns the accepted map filters in display order.
func Filters() []string {
	return []string{FilterAll, string(ZoneSafe), string(ZoneModerate), string(ZoneHigh)}
}

// text is one string in every supported language.
type text map[i18n.Tag]string

func (t text) in(tag i18n.Tag) string {
	if s, ok := t[tag]; ok {
		return s
	}
	return t[i18n.Default]
}

// Parameter is one measured water parameter.
type Parameter struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Unit        string `json:"unit,omitempty"`
	Status      string `json:"status"`
	Range       string `json:"range"`
	Description string `json:"description"`
}

// Metal is one heavy-metal reading against its permitted limit.
type Metal struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Unit   string `json:"unit"`
	Limit  string `json:"limit"`
	Status string `json:"status"`
}

// Index is a composite quality index.
type Index struct {
	Key    string `json:"key"`
	Value  int    `json:"value"`
	Status string `json:"status"`
	Color  string `json:"color"`
}

// AreaReport is the current report for the visitor's area.
type AreaReport struct {
	Language        i18n.Tag    `json:"language"`
	Area            string      `json:"area"`
	SafeForDrinking bool        `json:"safe_for_drinking"`
	Parameters      []Parameter `json:"parameters"`
	HeavyMetals     []Metal     `json:"heavy_metals"`
	Indices         []Index     `json:"indices"`
	Recommendations []string    `json:"recommendations"`
}

// Sample is one point of a quality time series.
type Sample struct {
	Period      string  `json:"period"`
	WQI         int     `json:"wqi"`
	PH          float64 `json:"ph"`
	TDS         int     `json:"tds"`
	HeavyMetals int     `json:"heavy_metals"`
}

// PollutionSource is one slice of the pollution-source breakdown.
type PollutionSource struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Percent int    `json:"percent"`
	Color   string `json:"color"`
}

// Reports is the historical analysis.
type Reports struct {
	Language        i18n.Tag          `json:"language"`
	Trend           string            `json:"trend"`
	Monthly         []Sample          `json:"monthly"`
	Yearly          []Sample          `json:"yearly"`
	Sources         []PollutionSource `json:"sources"`
	Insights        []string          `json:"insights"`
	Recommendations []string          `json:"recommendations"`
}

// Position places a city marker on the map, in percent of the map box.
type Position struct {
	Top  string `json:"top"`
	Left string `json:"left"`
}

// City is one monitored city on the map.
type City struct {
	Key        string   `json:"key"`
	Name       string   `json:"name"`
	WQI        int      `json:"wqi"`
	Zone       Zone     `json:"zone"`
	Population string   `json:"population"`
	Region     string   `json:"region"`
	Position   Position `json:"position"`
}

// Map is the filtered city map.
type Map struct {
	Language         i18n.Tag        `json:"language"`
	Filter           string          `json:"filter"`
	Cities           []City          `json:"cities"`
	ZoneDescriptions map[Zone]string `json:"zone_descriptions"`
	Counts           map[Zone]int    `json:"counts"`
}

// Area returns the area report in the resolved language.
func Area(lang string) AreaReport {
	tag := i18n.Resolve(lang)
	out := AreaReport{
		Language:        tag,
		Area:            areaName.in(tag),
		SafeForDrinking: true,
		Parameters:      make([]Parameter, 0, len(areaParameters)),
		HeavyMetals:     make([]Metal, 0, len(areaMetals)),
		Indices:         make([]Index, 0, len(areaIndices)),
		Recommendations: listIn(areaRecommendations, tag),
	}
	for _, p := range areaParameters {
		out.Parameters = append(out.Parameters, Parameter{
			Key:         p.key,
			Value:       p.value,
			Unit:        p.unit,
			Status:      p.status.in(tag),
			Range:       p.rng,
			Description: p.description.in(tag),
		})
	}
	for _, m := range areaMetals {
		out.HeavyMetals = append(out.HeavyMetals, Metal{
			Key:    m.key,
			Value:  m.value,
			Unit:   "mg/L",
			Limit:  m.limit,
			Status: statusSafe.in(tag),
		})
	}
	for _, ix := range areaIndices {
		out.Indices = append(out.Indices, Index{
			Key:    ix.key,
			Value:  ix.value,
			Status: ix.status.in(tag),
			Color:  "green",
		})
	}
	return out
}

// HistoricalReports returns the historical analysis in the resolved language.
func HistoricalReports(lang string) Reports {
	tag := i18n.Resolve(lang)
	sources := make([]PollutionSource, 0, len(pollutionSources))
	for _, s := range pollutionSources {
		sources = append(sources, PollutionSource{
			Key:     s.key,
			Name:    s.name.in(tag),
			Percent: s.percent,
			Color:   s.color,
		})
	}
	return Reports{
		Language:        tag,
		Trend:           trendImproving.in(tag),
		Monthly:         slices.Clone(monthlySamples),
		Yearly:          slices.Clone(yearlySamples),
		Sources:         sources,
		Insights:        listIn(reportInsights, tag),
		Recommendations: listIn(reportRecommendations, tag),
	}
}

// CityMap returns the cities matching filter in the resolved language.
// An empty filter means FilterAll.
func CityMap(lang, filter string) (Map, error) {
	if filter == "" {
		filter = FilterAll
	}
	if !slices.Contains(Filters(), filter) {
		return Map{}, ErrUnknownFilter
	}

	tag := i18n.Resolve(lang)
	out := Map{
		Language:         tag,
		Filter:           filter,
		Cities:           []City{},
		ZoneDescriptions: make(map[Zone]string, len(zoneDescriptions)),
		Counts:           map[Zone]int{ZoneSafe: 0, ZoneModerate: 0, ZoneHigh: 0},
	}
	for zone, desc := range zoneDescriptions {
		out.ZoneDescriptions[zone] = desc.in(tag)
	}
	for _, c := range cities {
		out.Counts[c.zone]++
		if filter != FilterAll && string(c.zone) != filter {
			continue
		}
		out.Cities = append(out.Cities, City{
			Key:        c.key,
			Name:       c.name.in(tag),
			WQI:        c.wqi,
			Zone:       c.zone,
			Population: c.population,
			Region:     c.region.in(tag),
			Position:   c.position,
		})
	}
	return out, nil
}

func listIn(lists map[i18n.Tag][]string, tag i18n.Tag) []string {
	if l, ok := lists[tag]; ok {
		return slices.Clone(l)
	}
	return slices.Clone(lists[i18n.Default])
}
