package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fullForm() map[string][]string {
	return map[string][]string{
		"propertyType": {"apartment"},
		"title":        {"Nice place"},
		"listingType":  {"rent"},
		"bedrooms":     {"2"},
		"guests":       {"4"},
		"beds":         {"2"},
		"bathrooms":    {"1"},
		"rooms":        {"3"},
		"size":         {"120"},
		"unitMeasure":  {"sqm"},
		"price":        {"250000"},
		"address":      {"Douala"},
		"description":  {"Sea view"},
	}
}

func TestCheckListingForm_Complete(t *testing.T) {
	missing, invalid := CheckListingForm(fullForm())
	assert.Empty(t, missing)
	assert.Empty(t, invalid)
}

func TestCheckListingForm_MissingFields(t *testing.T) {
	form := fullForm()
	delete(form, "price")
	form["title"] = []string{"  "}

	missing, _ := CheckListingForm(form)
	assert.Contains(t, missing, "price")
	assert.Contains(t, missing, "title")
}

func TestCheckListingForm_NonNumericValues(t *testing.T) {
	form := fullForm()
	form["bedrooms"] = []string{"two"}
	form["price"] = []string{"expensive"}

	missing, invalid := CheckListingForm(form)
	assert.Empty(t, missing)
	assert.Contains(t, invalid, "bedrooms")
	assert.Contains(t, invalid, "price")
}

func TestCheckListingForm_DecimalNumbersAllowed(t *testing.T) {
	form := fullForm()
	form["size"] = []string{"120.5"}

	_, invalid := CheckListingForm(form)
	assert.Empty(t, invalid)
}
