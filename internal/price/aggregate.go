package price

import (
	"strings"
	"time"

	"github.com/fuelboard/fuelboard/internal/model"
)

// Aggregate derives the current price table from the submission history:
// for every station, a mapping from canonical grade to the latest approved
// price in mills. The result is ephemeral and recomputed per request.
//
// Selection order, most recent first: review timestamp (a missing review
// timestamp sorts oldest), then creation timestamp, then row id. One row
// survives per (station, raw grade); when two raw grades canonicalize to the
// same bucket, the more recent winner takes the bucket, with exact timestamp
// ties resolved toward the alphabetically smaller raw grade.
func Aggregate(subs []model.Submission) map[int64]map[string]int64 {
	// Latest row per (station, raw grade).
	type key struct {
		station int64
		grade   string
	}
	latest := make(map[key]model.Submission)
	for _, sub := range subs {
		if sub.Status != model.StatusApproved ||
			sub.StationID == nil || sub.Grade == nil || sub.PriceCents == nil {
			continue
		}
		raw := strings.TrimSpace(*sub.Grade)
		if raw == "" {
			continue
		}
		k := key{station: *sub.StationID, grade: raw}
		if cur, ok := latest[k]; !ok || moreRecent(sub, cur) {
			latest[k] = sub
		}
	}

	// Collapse raw grades into canonical buckets per station.
	type bucketKey struct {
		station int64
		grade   string
	}
	type winner struct {
		sub model.Submission
		raw string
	}
	buckets := make(map[bucketKey]winner)
	for k, sub := range latest {
		bk := bucketKey{station: k.station, grade: CanonicalGrade(k.grade)}
		cur, ok := buckets[bk]
		if !ok || takesBucket(sub, k.grade, cur.sub, cur.raw) {
			buckets[bk] = winner{sub: sub, raw: k.grade}
		}
	}

	out := make(map[int64]map[string]int64)
	for bk, w := range buckets {
		m, ok := out[bk.station]
		if !ok {
			m = make(map[string]int64)
			out[bk.station] = m
		}
		m[bk.grade] = *w.sub.PriceCents
	}
	return out
}

// takesBucket decides canonical-bucket collisions between the per-raw-grade
// winners: later review timestamp, then later creation timestamp, then the
// alphabetically smaller raw grade. Row ids deliberately do not participate
// here so the tie-break stays reproducible across stores.
func takesBucket(a model.Submission, aRaw string, b model.Submission, bRaw string) bool {
	at, bt := reviewTime(a), reviewTime(b)
	if !at.Equal(bt) {
		return at.After(bt)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return aRaw < bRaw
}

// moreRecent reports whether a should be preferred over b: later review
// timestamp, then later creation timestamp, then higher id. Unreviewed rows
// are treated as older than any reviewed row.
func moreRecent(a, b model.Submission) bool {
	at, bt := reviewTime(a), reviewTime(b)
	if !at.Equal(bt) {
		return at.After(bt)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func reviewTime(s model.Submission) time.Time {
	if s.ReviewedAt == nil {
		return time.Time{}
	}
	return *s.ReviewedAt
}
