package price

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelboard/fuelboard/internal/model"
)

var aggBase = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func approved(id, station int64, grade string, mills int64, created, reviewed time.Time) model.Submission {
	var reviewedAt *time.Time
	if !reviewed.IsZero() {
		reviewedAt = &reviewed
	}
	return model.Submission{
		ID:         id,
		StationID:  &station,
		Grade:      &grade,
		PriceCents: &mills,
		Status:     model.StatusApproved,
		CreatedAt:  created,
		ReviewedAt: reviewedAt,
	}
}

func TestAggregate_LatestReviewedWinsPerGrade(t *testing.T) {
	subs := []model.Submission{
		approved(1, 1, "87", 4199, aggBase, aggBase.Add(1*time.Hour)),
		approved(2, 1, "87", 4299, aggBase, aggBase.Add(2*time.Hour)),
		approved(3, 1, "diesel", 4899, aggBase, aggBase.Add(1*time.Hour)),
	}

	got := Aggregate(subs)
	require.Contains(t, got, int64(1))
	assert.Equal(t, int64(4299), got[1]["87"])
	assert.Equal(t, int64(4899), got[1]["diesel"])
	assert.Len(t, got[1], 2)
}

func TestAggregate_UnreviewedSortsOldest(t *testing.T) {
	subs := []model.Submission{
		// Approved but never stamped with a review time: loses to any
		// reviewed row regardless of creation order.
		approved(5, 1, "87", 5000, aggBase.Add(3*time.Hour), time.Time{}),
		approved(4, 1, "87", 4100, aggBase, aggBase.Add(1*time.Minute)),
	}

	got := Aggregate(subs)
	assert.Equal(t, int64(4100), got[1]["87"])
}

func TestAggregate_IgnoresNonEligibleRows(t *testing.T) {
	station := int64(1)
	grade := "87"
	mills := int64(4000)
	subs := []model.Submission{
		{ID: 1, StationID: &station, Grade: &grade, PriceCents: &mills, Status: model.StatusPending, CreatedAt: aggBase},
		{ID: 2, StationID: &station, Grade: &grade, PriceCents: &mills, Status: model.StatusRejected, CreatedAt: aggBase},
		{ID: 3, Grade: &grade, PriceCents: &mills, Status: model.StatusApproved, CreatedAt: aggBase},             // no station
		{ID: 4, StationID: &station, PriceCents: &mills, Status: model.StatusApproved, CreatedAt: aggBase},       // no grade
		{ID: 5, StationID: &station, Grade: &grade, Status: model.StatusApproved, CreatedAt: aggBase},            // no price
	}

	assert.Empty(t, Aggregate(subs))
}

func TestAggregate_CanonicalCollision_LaterWins(t *testing.T) {
	// "87" and "unleaded" both canonicalize to "87"; the more recently
	// reviewed raw grade takes the bucket.
	subs := []model.Submission{
		approved(1, 1, "87", 4199, aggBase, aggBase.Add(1*time.Hour)),
		approved(2, 1, "Unleaded", 4350, aggBase, aggBase.Add(2*time.Hour)),
	}

	got := Aggregate(subs)
	require.Len(t, got[1], 1)
	assert.Equal(t, int64(4350), got[1]["87"])
}

func TestAggregate_CanonicalCollision_AlphabeticalTieBreak(t *testing.T) {
	// Identical review and creation timestamps: the alphabetically smaller
	// raw grade wins, independent of row ids.
	reviewed := aggBase.Add(1 * time.Hour)
	subs := []model.Submission{
		approved(9, 1, "regular", 4300, aggBase, reviewed),
		approved(2, 1, "87", 4200, aggBase, reviewed),
	}

	got := Aggregate(subs)
	require.Len(t, got[1], 1)
	assert.Equal(t, int64(4200), got[1]["87"])
}

func TestAggregate_MultipleStations(t *testing.T) {
	subs := []model.Submission{
		approved(1, 1, "87", 4000, aggBase, aggBase.Add(time.Hour)),
		approved(2, 2, "93", 4600, aggBase, aggBase.Add(time.Hour)),
	}

	got := Aggregate(subs)
	assert.Equal(t, int64(4000), got[1]["87"])
	assert.Equal(t, int64(4600), got[2]["93"])
}

func TestAggregate_CreationTimeBreaksReviewTies(t *testing.T) {
	reviewed := aggBase.Add(1 * time.Hour)
	subs := []model.Submission{
		approved(1, 1, "87", 4000, aggBase, reviewed),
		approved(2, 1, "87", 4111, aggBase.Add(10*time.Minute), reviewed),
	}

	got := Aggregate(subs)
	assert.Equal(t, int64(4111), got[1]["87"])
}
