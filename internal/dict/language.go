// Package dict holds the dictionary data model shared by the API client,
// the settings store and the lookup orchestrator.
package dict

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Language is a dictionary language. Two languages are the same language
// when their codes match; Name and Favorite are presentation data.
type Language struct {
	Code     string `json:"code" yaml:"code"`
	Name     string `json:"name" yaml:"name"`
	Favorite bool   `json:"favorite" yaml:"favorite"`
}

// Equal reports whether l and other share the same code.
func (l Language) Equal(other Language) bool {
	return l.Code == other.Code
}

func (l Language) String() string {
	if l.Name == "" {
		return l.Code
	}
	return l.Name
}

// SortLanguages orders langs in place: favorites first, then by name using
// locale-aware collation, then by code.
func SortLanguages(langs []Language) {
	c := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(langs, func(i, j int) bool {
		a, b := langs[i], langs[j]
		if a.Favorite != b.Favorite {
			return a.Favorite
		}
		if r := c.CompareString(a.Name, b.Name); r != 0 {
			return r < 0
		}
		return a.Code < b.Code
	})
}

// IndexOf returns the position of the language with the given code, or -1.
func IndexOf(langs []Language, code string) int {
	for i, l := range langs {
		if l.Code == code {
			return i
		}
	}
	return -1
}

// LookupFlags is the filter bit set understood by the dictionary API.
type LookupFlags int

const (
	// FlagFamily applies the family search filter.
	FlagFamily LookupFlags = 0x1
	// FlagMorpho enables searching by word form.
	FlagMorpho LookupFlags = 0x4
	// FlagPosFilter keeps only translations with the same part of speech.
	FlagPosFilter LookupFlags = 0x8
)

var flagNames = []struct {
	flag LookupFlags
	name string
}{
	{FlagFamily, "family"},
	{FlagMorpho, "morpho"},
	{FlagPosFilter, "pos-filter"},
}

// Has reports whether all bits of flag are set.
func (f LookupFlags) Has(flag LookupFlags) bool {
	return f&flag == flag
}

// Names returns the names of the set flags in a stable order.
func (f LookupFlags) Names() []string {
	var names []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	return names
}

// ParseLookupFlag maps a flag name ("family", "morpho", "pos-filter") to its bit.
func ParseLookupFlag(name string) (LookupFlags, bool) {
	for _, fn := range flagNames {
		if fn.name == name {
			return fn.flag, true
		}
	}
	return 0, false
}
