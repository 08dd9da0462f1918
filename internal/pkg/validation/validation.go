package validation

import (
	"strconv"
	"strings"
)

// RequiredListingFields are the mandatory create-listing form fields; the
// dashboard refuses to submit without every one of them.
var RequiredListingFields = []string{
	"propertyType", "title", "listingType", "bedrooms", "guests", "beds",
	"bathrooms", "rooms", "size", "unitMeasure", "price", "address", "description",
}

// NumericListingFields must parse as numbers before the form goes upstream.
var NumericListingFields = []string{
	"bedrooms", "guests", "beds", "bathrooms", "rooms", "size", "price",
}

// CheckListingForm validates a create-listing form. It returns the missing
// required fields and the fields that failed numeric coercion, both in
// declaration order.
func CheckListingForm(values map[string][]string) (missing, invalid []string) {
	get := func(name string) string {
		if vs, ok := values[name]; ok && len(vs) > 0 {
			return strings.TrimSpace(vs[0])
		}
		return ""
	}
	for _, f := range RequiredListingFields {
		if get(f) == "" {
			missing = append(missing, f)
		}
	}
	for _, f := range NumericListingFields {
		v := get(f)
		if v == "" {
			continue // already reported as missing
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			invalid = append(invalid, f)
		}
	}
	return missing, invalid
}
