// Package assets embeds the fallback dictionary word lists shipped inside
// the binary, used when WORDS_SHORT_FILE/WORDS_FULL_FILE are unset.
package assets

import _ "embed"

//go:embed short.txt
var shortDictionary string

//go:embed full.txt
var fullDictionary string

// ShortDictionary is the embedded short word list, one uppercase word per
// line.
var ShortDictionary = shortDictionary

// FullDictionary is the embedded full word list, a superset of
// ShortDictionary with longer and rarer entries.
var FullDictionary = fullDictionary
