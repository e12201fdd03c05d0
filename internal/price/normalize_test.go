package price

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseAndNormalize(t *testing.T, payload, origin string) []int64 {
	t.Helper()
	req, err := ParseRequest([]byte(payload))
	require.NoError(t, err)
	rows := req.Normalize(origin)
	prices := make([]int64, 0, len(rows))
	for _, r := range rows {
		require.NotNil(t, r.PriceCents)
		prices = append(prices, *r.PriceCents)
	}
	return prices
}

func TestNormalize_LegacyShape(t *testing.T) {
	req, err := ParseRequest([]byte(`{"grade":"87","price":4.499,"station_id":3}`))
	require.NoError(t, err)
	assert.Equal(t, ShapeLegacy, req.Shape)

	rows := req.Normalize("203.0.113.9")
	require.Len(t, rows, 1)
	assert.Equal(t, "87", *rows[0].Grade)
	assert.Equal(t, int64(4499), *rows[0].PriceCents)
	assert.Equal(t, int64(3), *rows[0].StationID)
	assert.Equal(t, "203.0.113.9", *rows[0].SubmittedFrom)
}

func TestNormalize_MultiGradeShape(t *testing.T) {
	req, err := ParseRequest([]byte(`{"submissions":[{"grade":"89","price_cents":4799}]}`))
	require.NoError(t, err)
	assert.Equal(t, ShapeMulti, req.Shape)

	rows := req.Normalize("")
	require.Len(t, rows, 1)
	assert.Equal(t, "89", *rows[0].Grade)
	assert.Equal(t, int64(4799), *rows[0].PriceCents)
	assert.Nil(t, rows[0].StationID)
	assert.Nil(t, rows[0].SubmittedFrom)
}

func TestNormalize_DollarsRoundHalfUp(t *testing.T) {
	prices := parseAndNormalize(t, `{"grade":"87","price":4.4995}`, "")
	require.Len(t, prices, 1)
	assert.Equal(t, int64(4500), prices[0])
}

func TestDollarsToMills(t *testing.T) {
	tests := []struct {
		dollars float64
		want    int64
	}{
		{4.499, 4499},
		{4.4995, 4500},
		{3.999, 3999},
		{0, 0},
		{5, 5000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DollarsToMills(tt.dollars), "dollars %v", tt.dollars)
	}
}

func TestNormalize_PriceCentsWinsOverDollars(t *testing.T) {
	prices := parseAndNormalize(t, `{"submissions":[{"grade":"87","price_cents":4299,"price":9.99}]}`, "")
	require.Len(t, prices, 1)
	assert.Equal(t, int64(4299), prices[0])
}

func TestNormalize_SkipsUnusableEntries(t *testing.T) {
	payload := `{"submissions":[
		{"notes":"no grade, no price"},
		{"grade":"87"},
		{"price":3.579},
		{"grade":"93","price":-1},
		{"grade":"87","price":3.999}
	]}`
	prices := parseAndNormalize(t, payload, "")
	require.Len(t, prices, 1)
	assert.Equal(t, int64(3999), prices[0])
}

func TestNormalize_DefaultGradeAppliesToEntries(t *testing.T) {
	req, err := ParseRequest([]byte(`{"grade":"diesel","submissions":[{"price_cents":4099}]}`))
	require.NoError(t, err)

	rows := req.Normalize("")
	require.Len(t, rows, 1)
	assert.Equal(t, "diesel", *rows[0].Grade)
}

func TestNormalize_EmptyPayloadYieldsNoRows(t *testing.T) {
	req, err := ParseRequest([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, req.Normalize(""))
}

func TestParseRequest_StationIDCoercion(t *testing.T) {
	tests := []struct {
		payload string
		want    *int64
	}{
		{`{"station_id":42}`, ptr(int64(42))},
		{`{"station_id":"42"}`, ptr(int64(42))},
		{`{"station_id":" 7 "}`, ptr(int64(7))},
		{`{"station_id":"joe's"}`, nil},
		{`{"station_id":""}`, nil},
		{`{}`, nil},
	}
	for _, tt := range tests {
		req, err := ParseRequest([]byte(tt.payload))
		require.NoError(t, err, tt.payload)
		if tt.want == nil {
			assert.Nil(t, req.StationID, tt.payload)
		} else {
			require.NotNil(t, req.StationID, tt.payload)
			assert.Equal(t, *tt.want, *req.StationID, tt.payload)
		}
	}
}

func TestParseRequest_TrimsOptionalFields(t *testing.T) {
	payload := `{"grade":"87","price":4.0,"station_name":"  ","notes":" cash only ","submitted_by":""}`
	req, err := ParseRequest([]byte(payload))
	require.NoError(t, err)

	rows := req.Normalize("")
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].StationName)
	assert.Nil(t, rows[0].SubmittedBy)
	require.NotNil(t, rows[0].Notes)
	assert.Equal(t, "cash only", *rows[0].Notes)
}

func TestParseRequest_MalformedJSON(t *testing.T) {
	_, err := ParseRequest([]byte("not json"))
	assert.Error(t, err)
}

func ptr[T any](v T) *T { return &v }
