package alphabet

import "strings"

// Flag is a parsed flag-diacritic tag of the form <var:value>. Value 0
// means the tag resets the variable.
type Flag struct {
	Var   int
	Value int
}

// Flags parses every tag of the form <var:value> once. The result is
// indexed by tag position (-id-1); entries for ordinary tags have ok=false.
// Variables and values are numbered densely from 0 and 1 respectively.
func (a *Alphabet) Flags() (flags []Flag, ok []bool, vars int) {
	flags = make([]Flag, len(a.tags))
	ok = make([]bool, len(a.tags))
	varIDs := make(map[string]int)
	valIDs := make(map[string]int)
	for tag, id := range a.index {
		name, value, found := parseFlag(tag)
		if !found {
			continue
		}
		v, seen := varIDs[name]
		if !seen {
			v = len(varIDs)
			varIDs[name] = v
		}
		val := 0
		if value != "" {
			if val, seen = valIDs[value]; !seen {
				val = len(valIDs) + 1
				valIDs[value] = val
			}
		}
		i := int(-id - 1)
		flags[i] = Flag{Var: v, Value: val}
		ok[i] = true
	}
	return flags, ok, len(varIDs)
}

func parseFlag(tag string) (name, value string, ok bool) {
	if len(tag) < 3 || tag[0] != '<' || tag[len(tag)-1] != '>' {
		return "", "", false
	}
	name, value, ok = strings.Cut(tag[1:len(tag)-1], ":")
	if !ok || name == "" || strings.Contains(value, ":") {
		return "", "", false
	}
	return name, value, true
}
