package server

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fuelboard/fuelboard/internal/model"
	"github.com/fuelboard/fuelboard/internal/price"
	"github.com/fuelboard/fuelboard/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		zap.L().Error("health check failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// stationView is the listing representation of a station: the station row
// plus its current price table and the distance from the home station.
type stationView struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Brand       string           `json:"brand,omitempty"`
	Address     string           `json:"address,omitempty"`
	City        string           `json:"city,omitempty"`
	State       string           `json:"state,omitempty"`
	Latitude    *float64         `json:"lat,omitempty"`
	Longitude   *float64         `json:"lng,omitempty"`
	IsHome      bool             `json:"is_home"`
	PricesCents map[string]int64 `json:"prices_cents"`
	DistanceKM  *float64         `json:"distance_km,omitempty"`
}

func (s *Server) handleListStations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stations, err := s.store.ListStations(ctx)
	if err != nil {
		zap.L().Error("list stations", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if s.enricher != nil {
		stations = s.enricher.EnrichAll(ctx, stations)
	}

	approved, err := s.store.ListApprovedPrices(ctx)
	if err != nil {
		zap.L().Error("list approved prices", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	prices := price.Aggregate(approved)

	model.SortForListing(stations)

	var home *model.Station
	for i := range stations {
		if stations[i].IsHome {
			home = &stations[i]
			break
		}
	}

	views := make([]stationView, 0, len(stations))
	for _, st := range stations {
		v := stationView{
			ID:          st.ID,
			Name:        st.Name,
			Brand:       st.Brand,
			Address:     st.Address,
			City:        st.City,
			State:       st.State,
			Latitude:    st.Latitude,
			Longitude:   st.Longitude,
			IsHome:      st.IsHome,
			PricesCents: map[string]int64{},
		}
		if p, ok := prices[st.ID]; ok {
			v.PricesCents = p
		}
		if home != nil && !st.IsHome {
			if km, ok := model.DistanceKM(*home, st); ok {
				rounded := math.Round(km*100) / 100
				v.DistanceKM = &rounded
			}
		}
		views = append(views, v)
	}

	writeJSON(w, http.StatusOK, map[string]any{"stations": views})
}

func (s *Server) handleSubmitPrices(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := price.ParseRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rows := req.Normalize(clientAddr(r))
	if len(rows) == 0 {
		writeError(w, http.StatusBadRequest, "no valid grade/price submissions found")
		return
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		sub, err := s.store.InsertSubmission(r.Context(), row)
		if err != nil {
			zap.L().Error("insert submission", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		ids = append(ids, sub.ID)
	}

	if req.Shape == price.ShapeLegacy {
		writeJSON(w, http.StatusCreated, map[string]any{"id": ids[0], "status": "pending"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ids": ids, "status": "pending"})
}

type suggestRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Brand   string `json:"brand"`
	Source  string `json:"source"`
	Notes   string `json:"notes"`
}

func (s *Server) handleSuggestStation(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	// Brand and source ride along in the notes so a suggestion stays a
	// single review row.
	var parts []string
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		parts = append(parts, notes)
	}
	if brand := strings.TrimSpace(req.Brand); brand != "" {
		parts = append(parts, "Brand: "+brand)
	}
	if source := strings.TrimSpace(req.Source); source != "" {
		parts = append(parts, "Source: "+source)
	}

	row := model.Submission{
		StationName:   &name,
		Status:        model.StatusPending,
		SubmittedFrom: optional(clientAddr(r)),
	}
	if address := strings.TrimSpace(req.Address); address != "" {
		row.StationAddress = &address
	}
	if len(parts) > 0 {
		notes := strings.Join(parts, " | ")
		row.Notes = &notes
	}

	sub, err := s.store.InsertSubmission(r.Context(), row)
	if err != nil {
		zap.L().Error("insert suggestion", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": sub.ID, "status": "pending"})
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.SubmissionFilter{
		Status: model.ReviewStatus(q.Get("status")),
	}
	if v := q.Get("station_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid station_id")
			return
		}
		filter.StationID = &id
	}
	if v := q.Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	if v := q.Get("offset"); v != "" {
		filter.Offset, _ = strconv.Atoi(v)
	}

	subs, err := s.store.ListSubmissions(r.Context(), filter)
	if err != nil {
		zap.L().Error("list submissions", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if subs == nil {
		subs = []model.Submission{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"submissions": subs})
}

func (s *Server) handleReview(approve bool) http.HandlerFunc {
	status := model.StatusRejected
	if approve {
		status = model.StatusApproved
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid submission id")
			return
		}

		if err := s.store.ReviewSubmission(r.Context(), id, status); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "submission not found")
				return
			}
			zap.L().Error("review submission", zap.Int64("id", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": string(status)})
	}
}

type createStationRequest struct {
	Name      string   `json:"name"`
	Brand     string   `json:"brand"`
	Address   string   `json:"address"`
	City      string   `json:"city"`
	State     string   `json:"state"`
	Latitude  *float64 `json:"lat"`
	Longitude *float64 `json:"lng"`
	IsHome    bool     `json:"is_home"`
}

func (s *Server) handleCreateStation(w http.ResponseWriter, r *http.Request) {
	var req createStationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	st, err := s.store.CreateStation(r.Context(), model.Station{
		Name:      strings.TrimSpace(req.Name),
		Brand:     strings.TrimSpace(req.Brand),
		Address:   strings.TrimSpace(req.Address),
		City:      strings.TrimSpace(req.City),
		State:     strings.TrimSpace(req.State),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		IsHome:    req.IsHome,
	})
	if err != nil {
		zap.L().Error("create station", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

// clientAddr returns the caller's IP, already resolved by the RealIP
// middleware when forwarding headers are present.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
