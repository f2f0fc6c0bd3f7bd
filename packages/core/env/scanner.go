package env

import "regexp"

// variablePattern matches {{NAME}}; the first "}}" closes a reference.
var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// References returns the names referenced in s through {{NAME}} syntax, in
// order of appearance. Names are returned verbatim and duplicates are kept.
func References(s string) []string {
	if s == "" {
		return nil
	}
	matches := variablePattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// Unresolved returns the references in s that have no entry in known, in
// order, duplicates kept.
func Unresolved(s string, known map[string]string) []string {
	var missing []string
	for _, name := range References(s) {
		if _, ok := known[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Substitute replaces each {{NAME}} in s with values[NAME]. References with
// no value are left intact.
func Substitute(s string, values map[string]string) string {
	if s == "" {
		return s
	}
	return variablePattern.ReplaceAllStringFunc(s, func(match string) string {
		if val, ok := values[match[2:len(match)-2]]; ok {
			return val
		}
		return match
	})
}
