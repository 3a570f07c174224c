package claim

// Claim is a user-submitted assertion of roster membership:
// full name, graduation year and class number.
type Claim struct {
	FullName string
	Year     int
	Klass    int
}

// Bounds accepted for year and class, shared by the parser and the
// step-by-step intake flow.
const (
	MinYear  = 1950
	MaxYear  = 2030
	MinKlass = 1
	MaxKlass = 11
)

// YearInRange reports whether y is a plausible graduation year.
func YearInRange(y int) bool { return y >= MinYear && y <= MaxYear }

// KlassInRange reports whether k is a valid class number.
func KlassInRange(k int) bool { return k >= MinKlass && k <= MaxKlass }
