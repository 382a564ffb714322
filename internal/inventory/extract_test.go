package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractBudget(t *testing.T) {
	cases := []struct {
		text  string
		cents int64
		found bool
	}{
		{"something under 25k", 2500000, true},
		{"budget is 30,000", 3000000, true},
		{"around 28", 2800000, true},
		{"call me at 555-1234", 0, false},
		{"my max is $45,000", 4500000, true},
		{"looking to spend about 12.5k", 1250000, true},
		{"budget of 18000", 1800000, true},
		{"under 30 would be ideal", 3000000, true},
		{"I make 401k contributions", 0, false},
		{"under 300 bucks a month", 0, false},
		{"no numbers here at all", 0, false},
	}
	for _, tc := range cases {
		cents, found := ExtractBudget(tc.text)
		assert.Equal(t, tc.found, found, "text: %q", tc.text)
		if tc.found {
			assert.Equal(t, tc.cents, cents, "text: %q", tc.text)
		}
	}
}

func TestDetectMake(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"do you have any toyota corollas", "Toyota"},
		{"looking for a Chevy truck", "Chevrolet"},
		{"a used vw golf maybe", "Volkswagen"},
		{"always wanted a mercedes", "Mercedes-Benz"},
		{"is the land rover still available", "Land Rover"},
		{"her name is Kiana", ""},
		{"nothing about cars", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DetectMake(tc.text), "text: %q", tc.text)
	}
}

func TestDetectYear(t *testing.T) {
	assert.Equal(t, 2019, DetectYear("the 2019 civic you listed"))
	assert.Equal(t, 1998, DetectYear("a 1998 classic"))
	assert.Zero(t, DetectYear("something around 28"))
	assert.Zero(t, DetectYear("priced at 20000"))
}
