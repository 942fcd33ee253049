package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/covid-series-service/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// Query operation labels for the queries_total metric.
const (
	opDays       = "days"
	opSummary    = "summary"
	opTotal      = "total"
	opDelta      = "delta"
	opCumulative = "cumulative"
	opLocations  = "locations"
)

type errorResponse struct {
	Error string `json:"error"`
}

type daysResponse struct {
	First      string    `json:"first"`
	Last       string    `json:"last"`
	Days       []string  `json:"days"`
	SnapshotID string    `json:"snapshot_id"`
	LoadedAt   time.Time `json:"loaded_at"`
}

type summaryResponse struct {
	Day  string       `json:"day"`
	KPIs []domain.KPI `json:"kpis"`
}

type totalResponse struct {
	Table domain.Table `json:"table"`
	Day   string       `json:"day"`
	Total int64        `json:"total"`
}

type deltaResponse struct {
	Table domain.Table `json:"table"`
	Day   string       `json:"day"`
	Delta int64        `json:"delta"`
}

type cumulativeResponse struct {
	Table  domain.Table      `json:"table"`
	Upto   string            `json:"upto"`
	Series []domain.DayTotal `json:"series"`
}

type locationsResponse struct {
	Table       domain.Table           `json:"table"`
	Day         string                 `json:"day"`
	ExcludeZero bool                   `json:"exclude_zero"`
	Locations   []domain.LocationCount `json:"locations"`
}

func (s *Server) handleDays(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.store.Current()
	if !ok {
		s.unavailable(w, opDays)
		return
	}
	agg := snap.Aggregator
	s.ok(w, opDays, daysResponse{
		First:      agg.FirstDay(),
		Last:       agg.LastDay(),
		Days:       agg.Days(),
		SnapshotID: snap.ID.String(),
		LoadedAt:   snap.LoadedAt,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	agg, ok := s.aggregator(w, opSummary)
	if !ok {
		return
	}
	day := dayParam(r, "day", agg)
	kpis, err := agg.Summary(day)
	if err != nil {
		s.queryError(w, opSummary, err)
		return
	}
	s.ok(w, opSummary, summaryResponse{Day: kpis[0].Day, KPIs: kpis})
}

func (s *Server) handleTotal(w http.ResponseWriter, r *http.Request) {
	agg, table, ok := s.tableQuery(w, r, opTotal)
	if !ok {
		return
	}
	day := dayParam(r, "day", agg)
	total, err := agg.TotalOnDay(table, day)
	if err != nil {
		s.queryError(w, opTotal, err)
		return
	}
	s.ok(w, opTotal, totalResponse{Table: table, Day: resolvedDay(day), Total: total})
}

func (s *Server) handleDelta(w http.ResponseWriter, r *http.Request) {
	agg, table, ok := s.tableQuery(w, r, opDelta)
	if !ok {
		return
	}
	day := dayParam(r, "day", agg)
	delta, err := agg.DeltaOnDay(table, day)
	if err != nil {
		s.queryError(w, opDelta, err)
		return
	}
	s.ok(w, opDelta, deltaResponse{Table: table, Day: resolvedDay(day), Delta: delta})
}

func (s *Server) handleCumulative(w http.ResponseWriter, r *http.Request) {
	agg, table, ok := s.tableQuery(w, r, opCumulative)
	if !ok {
		return
	}
	upto := dayParam(r, "upto", agg)
	series, err := agg.CumulativeSeries(table, upto)
	if err != nil {
		s.queryError(w, opCumulative, err)
		return
	}
	s.ok(w, opCumulative, cumulativeResponse{Table: table, Upto: series[len(series)-1].Day, Series: series})
}

// handleLocations serves per-location counts. exclude_zero defaults to true,
// matching what a bubble map needs.
func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	agg, table, ok := s.tableQuery(w, r, opLocations)
	if !ok {
		return
	}
	excludeZero := true
	if v := r.URL.Query().Get("exclude_zero"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.fail(w, opLocations, "bad_request", http.StatusBadRequest, "invalid exclude_zero: want true or false")
			return
		}
		excludeZero = b
	}
	day := dayParam(r, "day", agg)
	locs, err := agg.ActiveLocations(table, day, excludeZero)
	if err != nil {
		s.queryError(w, opLocations, err)
		return
	}
	s.ok(w, opLocations, locationsResponse{Table: table, Day: resolvedDay(day), ExcludeZero: excludeZero, Locations: locs})
}

// aggregator returns the current snapshot's aggregator, answering 503 when
// nothing has been loaded yet.
func (s *Server) aggregator(w http.ResponseWriter, op string) (*domain.Aggregator, bool) {
	snap, ok := s.store.Current()
	if !ok {
		s.unavailable(w, op)
		return nil, false
	}
	return snap.Aggregator, true
}

func (s *Server) tableQuery(w http.ResponseWriter, r *http.Request, op string) (*domain.Aggregator, domain.Table, bool) {
	agg, ok := s.aggregator(w, op)
	if !ok {
		return nil, "", false
	}
	table, err := domain.ParseTable(r.PathValue("table"))
	if err != nil {
		s.queryError(w, op, err)
		return nil, "", false
	}
	return agg, table, true
}

// dayParam returns the named query parameter, defaulting to the last loaded day.
func dayParam(r *http.Request, name string, agg *domain.Aggregator) string {
	if day := r.URL.Query().Get(name); day != "" {
		return day
	}
	return agg.LastDay()
}

// resolvedDay returns the canonical form of a day the aggregator accepted,
// dropping any time suffix the client sent.
func resolvedDay(day string) string {
	if canon, ok := domain.CanonicalDay(day); ok {
		return canon
	}
	return day
}

func (s *Server) queryError(w http.ResponseWriter, op string, err error) {
	var unknownDate *domain.UnknownDateError
	var unknownTable *domain.UnknownTableError
	switch {
	case errors.As(err, &unknownDate):
		s.fail(w, op, "unknown_date", http.StatusNotFound, err.Error())
	case errors.As(err, &unknownTable):
		s.fail(w, op, "unknown_table", http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("series query failed", "op", op, "error", err)
		s.fail(w, op, "error", http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) unavailable(w http.ResponseWriter, op string) {
	s.fail(w, op, "unavailable", http.StatusServiceUnavailable, "no series snapshot loaded yet")
}

func (s *Server) fail(w http.ResponseWriter, op, outcome string, status int, msg string) {
	s.metrics.Queries.WithLabelValues(op, outcome).Inc()
	sharedobs.WriteJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) ok(w http.ResponseWriter, op string, v any) {
	s.metrics.Queries.WithLabelValues(op, "ok").Inc()
	sharedobs.WriteJSON(w, http.StatusOK, v)
}
