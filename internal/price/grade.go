// Package price implements the submission normalization, grade
// canonicalization, and current-price aggregation logic.
package price

import "strings"

// Canonical grade labels. Anything outside this set passes through
// canonicalization as a lowercased custom bucket.
const (
	Grade87     = "87"
	Grade89     = "89"
	Grade93     = "93"
	GradeDiesel = "diesel"
)

var gradeAliases = map[string]string{
	"regular":  Grade87,
	"87":       Grade87,
	"unleaded": Grade87,
	"midgrade": Grade89,
	"89":       Grade89,
	"premium":  Grade93,
	"93":       Grade93,
	"supreme":  Grade93,
	"diesel":   GradeDiesel,
	"d":        GradeDiesel,
}

// CanonicalGrade maps a free-text grade label onto the fixed label set.
// Unrecognized labels pass through lowercased and trimmed, so the function
// is total over any string input and idempotent. The empty string maps to
// itself; upstream validation keeps empty grades out of stored rows.
func CanonicalGrade(label string) string {
	key := strings.ToLower(strings.TrimSpace(label))
	if canonical, ok := gradeAliases[key]; ok {
		return canonical
	}
	return key
}
