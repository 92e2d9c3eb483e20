package matching

import "sort"

// Record is one resolvable entity: an upstream row plus the derived alias set
// used for fuzzy matching. Aliases are derived from Labels and are invalid the
// moment Labels changes; records are rebuilt, never mutated.
type Record struct {
	ID         string
	Collection string
	Status     string   // empty means active
	Labels     []string // first element is the canonical display label
	Aliases    []string // deduplicated, sorted; purely derived
}

// Label returns the canonical display label, falling back to the raw id.
func (r *Record) Label() string {
	if len(r.Labels) > 0 {
		return r.Labels[0]
	}
	return r.ID
}

// Active reports whether the record is considered live. Absence of a status
// tag is treated as active.
func (r *Record) Active() bool {
	switch Normalize(r.Status) {
	case "", "active":
		return true
	}
	return false
}

// NumericPrefixed marks collections whose labels carry zero-padded numeric
// codes ("0515-Johnson Home"); for those, the padded prefix and its integer
// form both become aliases.
type NumericPrefixed map[string]bool

// NewRecord builds a Record with its full alias set. Labels are deduplicated
// preserving order and the raw id is appended as a fallback label. An empty or
// whitespace-only label contributes nothing beyond the id.
func NewRecord(id, collection, status string, labels []string, numeric NumericPrefixed) *Record {
	rec := &Record{ID: id, Collection: collection, Status: status}

	seenLabel := make(map[string]bool)
	for _, l := range append(append([]string{}, labels...), id) {
		if l == "" || seenLabel[l] {
			continue
		}
		seenLabel[l] = true
		rec.Labels = append(rec.Labels, l)
	}

	aliases := make(map[string]bool)
	for _, l := range rec.Labels {
		for a := range BuildAliases(l, collection, numeric[collection]) {
			aliases[a] = true
		}
	}
	rec.Aliases = make([]string, 0, len(aliases))
	for a := range aliases {
		rec.Aliases = append(rec.Aliases, a)
	}
	sort.Strings(rec.Aliases)
	return rec
}

// BuildAliases derives the matchable alias set for a single label:
// the normalized label, the squished label, every token of length >= 2, an
// acronym of token initials (when >= 2 chars), and for numeric-prefixed labels
// both the zero-padded prefix and its integer form. Pure function; an empty
// label yields an empty set.
func BuildAliases(label, collection string, numericPrefixed bool) map[string]bool {
	out := make(map[string]bool)

	norm := Normalize(label)
	if norm == "" {
		return out
	}
	out[norm] = true

	if sq := Squish(label); sq != "" {
		out[sq] = true
	}

	toks := Tokens(label)
	var acronym []byte
	for _, t := range toks {
		if len(t) >= 2 {
			out[t] = true
		}
		acronym = append(acronym, t[0])
	}
	if len(acronym) >= 2 {
		out[string(acronym)] = true
	}

	padded, integer, ok := NumericPrefix(label)
	if !ok && numericPrefixed {
		// Collection is known to use numeric codes; a bare-code label ("0515")
		// still gets its integer form.
		if len(norm) >= 3 && len(norm) <= 4 && IsNumericToken(norm) {
			padded, integer, ok = norm, trimZeros(norm), true
		}
	}
	if ok {
		out[padded] = true
		out[integer] = true
	}

	return out
}

func trimZeros(s string) string {
	for len(s) > 1 && s[0] == '0' {
		s = s[1:]
	}
	return s
}
