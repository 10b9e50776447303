// internal/app/system/search/search.go
package search

import (
	"regexp"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NamePrefix builds a filter matching documents whose folded name_ci
// field starts with the folded query. Folding on both sides makes the
// search case- and diacritic-insensitive while staying on the name_ci
// index (anchored prefix regexes use the index; unanchored ones scan).
func NamePrefix(q string) bson.M {
	return prefix("name_ci", q)
}

func prefix(field, q string) bson.M {
	folded := regexp.QuoteMeta(text.Fold(q))
	return bson.M{field: primitive.Regex{Pattern: "^" + folded}}
}
