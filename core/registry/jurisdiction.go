package registry

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Federal is the jurisdiction code used for federal courts.
const Federal = "US"

// Filter is a set of listing query parameters in the registry's native syntax.
type Filter url.Values

var federalAliases = map[string]struct{}{
	"US":      {},
	"FED":     {},
	"FEDERAL": {},
}

var stateNames = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"DC": "District of Columbia", "FL": "Florida", "GA": "Georgia", "HI": "Hawaii",
	"ID": "Idaho", "IL": "Illinois", "IN": "Indiana", "IA": "Iowa",
	"KS": "Kansas", "KY": "Kentucky", "LA": "Louisiana", "ME": "Maine",
	"MD": "Maryland", "MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota",
	"MS": "Mississippi", "MO": "Missouri", "MT": "Montana", "NE": "Nebraska",
	"NV": "Nevada", "NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico",
	"NY": "New York", "NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio",
	"OK": "Oklahoma", "OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island",
	"SC": "South Carolina", "SD": "South Dakota", "TN": "Tennessee", "TX": "Texas",
	"UT": "Utah", "VT": "Vermont", "VA": "Virginia", "WA": "Washington",
	"WV": "West Virginia", "WI": "Wisconsin", "WY": "Wyoming",
}

// statesByNameLength lists state codes with the longest names first so that
// "West Virginia" wins over "Virginia" and "Arkansas" over "Kansas".
var statesByNameLength = func() []string {
	codes := make([]string, 0, len(stateNames))
	for code := range stateNames {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		if len(stateNames[codes[i]]) != len(stateNames[codes[j]]) {
			return len(stateNames[codes[i]]) > len(stateNames[codes[j]])
		}
		return codes[i] < codes[j]
	})
	return codes
}()

// CanonicalJurisdiction upper-cases code and folds federal aliases into Federal.
func CanonicalJurisdiction(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if _, ok := federalAliases[code]; ok {
		return Federal
	}
	return code
}

// IsFederal reports whether code names the federal jurisdiction.
func IsFederal(code string) bool {
	return CanonicalJurisdiction(code) == Federal
}

// StateName returns the state name for a two-letter code.
func StateName(code string) (string, bool) {
	name, ok := stateNames[strings.ToUpper(code)]
	return name, ok
}

// StateFromText finds the first state whose name appears in text, preferring
// longer names. It returns "" when none does.
func StateFromText(text string) string {
	lower := strings.ToLower(text)
	for _, code := range statesByNameLength {
		if strings.Contains(lower, strings.ToLower(stateNames[code])) {
			return code
		}
	}
	return ""
}

// FilterFor translates a jurisdiction into the listing filter:
//
//	federal sentinel   -> positions__court__jurisdiction__startswith=F
//	two-letter state   -> positions__court__jurisdiction__startswith=S and the state name
//	"key=value&..."    -> passed through as a native query
//
// Anything else is ErrUnsupportedJurisdiction.
func FilterFor(jurisdiction string) (Filter, error) {
	raw := strings.TrimSpace(jurisdiction)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrUnsupportedJurisdiction)
	}

	if strings.Contains(raw, "=") {
		values, err := url.ParseQuery(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrUnsupportedJurisdiction, raw, err)
		}
		return Filter(values), nil
	}

	code := CanonicalJurisdiction(raw)
	if code == Federal {
		return Filter{"positions__court__jurisdiction__startswith": {"F"}}, nil
	}
	if name, ok := stateNames[code]; ok {
		return Filter{
			"positions__court__jurisdiction__startswith": {"S"},
			"positions__court__full_name__icontains":     {name},
		}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedJurisdiction, raw)
}
