// Package classify maps opaque device records to vendor families.
//
// Classification is a pure substring heuristic over the device identity: the
// device ID is checked first, then the descriptive manufacturer/model fields.
// Devices matching no rule fall back to the generic vendor, whose parameter
// table always resolves.
package classify

import (
	"strings"

	"github.com/dixzzzzz/axelinkapps-sub000/pkg/types"
)

// Classifier evaluates an ordered rule list against device identity strings.
type Classifier struct {
	rules []Rule
}

// New creates a classifier with the default rule list.
func New() *Classifier {
	return &Classifier{rules: DefaultRules()}
}

// NewWithRules creates a classifier with a custom rule list, preserving the
// given order.
func NewWithRules(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns the vendor family for a device record. It is total: any
// record, including nil or malformed trees, yields a vendor, with generic as
// the fallback.
func (c *Classifier) Classify(record types.DeviceRecord) types.VendorTag {
	if record == nil {
		return types.VendorGeneric
	}

	identity := strings.ToLower(record.ID())
	descriptive := strings.ToLower(strings.Join([]string{
		record.Manufacturer(),
		record.ProductClass(),
		record.ModelName(),
	}, " "))

	for _, rule := range c.rules {
		haystack := identity
		if rule.Field == MatchDescriptive {
			haystack = descriptive
		}
		if haystack == "" {
			continue
		}
		for _, pattern := range rule.Patterns {
			if strings.Contains(haystack, pattern) {
				return rule.Vendor
			}
		}
	}
	return types.VendorGeneric
}
