package classify

import "github.com/dixzzzzz/axelinkapps-sub000/pkg/types"

// MatchField selects which part of the device identity a rule inspects.
type MatchField string

const (
	// MatchIdentity matches against the ACS device ID. Device IDs embed the
	// OUI, product class and serial, making them the most reliable signal.
	MatchIdentity MatchField = "identity"
	// MatchDescriptive matches against the manufacturer, product class and
	// model strings reported by the device itself.
	MatchDescriptive MatchField = "descriptive"
)

// Rule is one prioritized pattern group. The first rule with a matching
// pattern decides the vendor; pattern order within a rule carries no meaning.
type Rule struct {
	Vendor   types.VendorTag
	Field    MatchField
	Patterns []string
}

// DefaultRules returns the classification rule list. All identity rules come
// before all descriptive rules: identity strings are deterministic while
// descriptive fields are prone to generic substrings, so a descriptive match
// must never pre-empt an identity match. Within each tier vendors are
// evaluated in a fixed order.
//
// The two-letter "an"/"fh" FiberHome patterns are known to be weak and can
// false-positive on unrelated serials. That matches long-standing fleet
// behavior and is kept on purpose; reclassifying those devices would flip
// their parameter tables mid-flight.
func DefaultRules() []Rule {
	return []Rule{
		// Identity tier.
		{Vendor: types.VendorZTE, Field: MatchIdentity, Patterns: []string{
			"zxhn", "zxa10", "f670", "f680", "f660", "f663", "f609", "f612",
		}},
		{Vendor: types.VendorHuawei, Field: MatchIdentity, Patterns: []string{
			"hg8245", "hg8145", "hg8546", "eg8145", "eg8141", "hs8545", "hs8546",
		}},
		{Vendor: types.VendorFiberhome, Field: MatchIdentity, Patterns: []string{
			"an5506", "hg6243", "hg6245", "hg6145", "an", "fh",
		}},
		{Vendor: types.VendorNokia, Field: MatchIdentity, Patterns: []string{
			"g-140w", "g140w", "g-240w", "g240w", "g-2425", "g-2426", "i-240w",
		}},
		{Vendor: types.VendorTechnicolor, Field: MatchIdentity, Patterns: []string{
			"tg789", "tg799", "tg588", "dga", "cga",
		}},

		// Descriptive tier.
		{Vendor: types.VendorZTE, Field: MatchDescriptive, Patterns: []string{
			"zte",
		}},
		{Vendor: types.VendorHuawei, Field: MatchDescriptive, Patterns: []string{
			"huawei",
		}},
		{Vendor: types.VendorFiberhome, Field: MatchDescriptive, Patterns: []string{
			"fiberhome",
		}},
		{Vendor: types.VendorNokia, Field: MatchDescriptive, Patterns: []string{
			"nokia", "alcatel",
		}},
		{Vendor: types.VendorTechnicolor, Field: MatchDescriptive, Patterns: []string{
			"technicolor", "thomson",
		}},
	}
}
