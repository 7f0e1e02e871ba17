// Package enginetest builds random documents for store and service tests.
package enginetest

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"diagramdb/src/models"
)

// runePool mixes ASCII, characters the JSON encoder escapes (HTML, line separators,
// control characters, quotes) and multi-byte runes.
var runePool = []rune("abcXYZ019 _-.:<>&'\"\\/\t\n  éß日本Ж\U0001F600\U0001F4CA")

// RandomString returns a valid UTF-8 string of up to maxLen runes.
func RandomString(r *rand.Rand, maxLen int) string {
	n := r.Intn(maxLen + 1)
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteRune(runePool[r.Intn(len(runePool))])
	}
	return b.String()
}

// RandomNumber returns a json.Number in integer, decimal or exponent form.
func RandomNumber(r *rand.Rand) json.Number {
	whole := strconv.FormatInt(r.Int63n(2_000_000_000_000)-1_000_000_000_000, 10)
	switch r.Intn(3) {
	case 0:
		return json.Number(whole)
	case 1:
		return json.Number(fmt.Sprintf("%s.%0*d", whole, 1+r.Intn(4), r.Intn(10_000)))
	default:
		return json.Number(fmt.Sprintf("%dE%d", 1+r.Intn(9), r.Intn(41)-20))
	}
}

// RandomValue returns a value of the kinds DecodeDocument produces: nested objects,
// arrays, strings, json.Number, bools and nulls. depth bounds the nesting.
func RandomValue(r *rand.Rand, depth int) interface{} {
	kinds := 6
	if depth <= 0 {
		kinds = 4
	}
	switch r.Intn(kinds) {
	case 0:
		return RandomString(r, 12)
	case 1:
		return RandomNumber(r)
	case 2:
		return r.Intn(2) == 0
	case 3:
		return nil
	case 4:
		items := make([]interface{}, r.Intn(4))
		for i := range items {
			items[i] = RandomValue(r, depth-1)
		}
		return items
	default:
		return map[string]interface{}(RandomDocument(r, depth-1))
	}
}

// RandomDocument returns an object of up to five random fields. Keys listed in reserved
// are never generated.
func RandomDocument(r *rand.Rand, depth int, reserved ...string) models.Document {
	doc := models.Document{}
	n := r.Intn(6)
	for len(doc) < n {
		key := RandomString(r, 8)
		if isReserved(key, reserved) {
			continue
		}
		doc[key] = RandomValue(r, depth)
	}
	return doc
}

func isReserved(key string, reserved []string) bool {
	for _, k := range reserved {
		if k == key {
			return true
		}
	}
	return false
}
