package account

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var upper = cases.Upper(language.Und)

// normalizeRoles recorta, pasa a mayúsculas y elimina vacíos y duplicados
// conservando el orden. Si no queda ninguno devuelve [def].
func normalizeRoles(in []string, def string) []string {
	out := make([]string, 0, len(in))
	for _, r := range in {
		r = upper.String(strings.TrimSpace(r))
		if r == "" || slices.Contains(out, r) {
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		out = append(out, def)
	}
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
