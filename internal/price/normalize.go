package price

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/fuelboard/fuelboard/internal/model"
)

// Shape identifies which of the two accepted submission payload variants a
// request carries. Parsing resolves the shape up front so normalization does
// not have to sniff field presence.
type Shape int

const (
	// ShapeLegacy is the single grade/price pair at the payload top level.
	ShapeLegacy Shape = iota
	// ShapeMulti is the per-grade entry array under "submissions".
	ShapeMulti
)

// Entry is one grade/price pair from a parsed request.
type Entry struct {
	Grade      string
	Price      *float64 // dollars
	PriceCents *float64 // mills, takes precedence when numeric
	Notes      string
}

// Request is the parsed tagged union of the two accepted submission shapes,
// plus the payload-level fields shared by both.
type Request struct {
	Shape          Shape
	StationID      *int64
	StationName    string
	StationAddress string
	DefaultGrade   string
	Notes          string
	SubmittedBy    string
	Entries        []Entry // ShapeMulti
	Legacy         Entry   // ShapeLegacy
}

// rawRequest mirrors the submission payload JSON. station_id is accepted as
// either a number or a numeric string, so it decodes as any.
type rawRequest struct {
	StationID      any        `json:"station_id"`
	StationName    string     `json:"station_name"`
	StationAddress string     `json:"station_address"`
	Grade          string     `json:"grade"`
	Price          *float64   `json:"price"`
	PriceCents     *float64   `json:"price_cents"`
	Notes          string     `json:"notes"`
	SubmittedBy    string     `json:"submitted_by"`
	Submissions    []rawEntry `json:"submissions"`
}

type rawEntry struct {
	Grade      string   `json:"grade"`
	Price      *float64 `json:"price"`
	PriceCents *float64 `json:"price_cents"`
	Notes      string   `json:"notes"`
}

// ParseRequest decodes a submission payload into its tagged-union form.
// A non-empty "submissions" array selects the multi-grade shape; otherwise
// the top-level grade/price pair is treated as the legacy shape.
func ParseRequest(data []byte) (*Request, error) {
	var raw rawRequest
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(err, "price: parse submission payload")
	}

	req := &Request{
		StationID:      coerceStationID(raw.StationID),
		StationName:    strings.TrimSpace(raw.StationName),
		StationAddress: strings.TrimSpace(raw.StationAddress),
		DefaultGrade:   strings.TrimSpace(raw.Grade),
		Notes:          strings.TrimSpace(raw.Notes),
		SubmittedBy:    strings.TrimSpace(raw.SubmittedBy),
	}

	if len(raw.Submissions) > 0 {
		req.Shape = ShapeMulti
		for _, e := range raw.Submissions {
			req.Entries = append(req.Entries, Entry{
				Grade:      strings.TrimSpace(e.Grade),
				Price:      e.Price,
				PriceCents: e.PriceCents,
				Notes:      strings.TrimSpace(e.Notes),
			})
		}
		return req, nil
	}

	req.Shape = ShapeLegacy
	req.Legacy = Entry{
		Grade:      req.DefaultGrade,
		Price:      raw.Price,
		PriceCents: raw.PriceCents,
		Notes:      req.Notes,
	}
	return req, nil
}

// Normalize converts a parsed request into zero or more well-formed
// submission rows. Entries without both a usable grade and a usable finite
// non-negative price are silently skipped; an empty result is the caller's
// signal to reject the request as a client error.
func (r *Request) Normalize(origin string) []model.Submission {
	entries := r.Entries
	if r.Shape == ShapeLegacy {
		entries = []Entry{r.Legacy}
	}

	var rows []model.Submission
	for _, e := range entries {
		grade := e.Grade
		if grade == "" {
			grade = r.DefaultGrade
		}
		mills, ok := entryMills(e)
		if grade == "" || !ok {
			continue
		}

		notes := e.Notes
		if notes == "" {
			notes = r.Notes
		}

		rows = append(rows, model.Submission{
			StationID:      r.StationID,
			StationName:    optional(r.StationName),
			StationAddress: optional(r.StationAddress),
			Grade:          &grade,
			PriceCents:     &mills,
			Notes:          optional(notes),
			SubmittedBy:    optional(r.SubmittedBy),
			SubmittedFrom:  optional(origin),
			Status:         model.StatusPending,
		})
	}
	return rows
}

// DollarsToMills converts a dollar amount to integer mills using
// round-half-away-from-zero, matching the stored price precision
// (4.4995 -> 4500, 4.499 -> 4499).
func DollarsToMills(dollars float64) int64 {
	return int64(math.Round(dollars * 1000))
}

// entryMills resolves an entry's price to mills: the price_cents field wins
// when numeric, else the dollar price is converted. Non-finite or negative
// values are unusable.
func entryMills(e Entry) (int64, bool) {
	if e.PriceCents != nil && usable(*e.PriceCents) {
		return int64(math.Round(*e.PriceCents)), true
	}
	if e.Price != nil && usable(*e.Price) {
		return DollarsToMills(*e.Price), true
	}
	return 0, false
}

func usable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// coerceStationID accepts a numeric or numeric-string station identifier;
// anything else (including absence) means "no station", the new-station
// suggestion path.
func coerceStationID(v any) *int64 {
	switch id := v.(type) {
	case float64:
		n := int64(id)
		return &n
	case string:
		id = strings.TrimSpace(id)
		if id == "" {
			return nil
		}
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
