package query

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vegasq/docsql/document"
)

// changeCase implements UPPER and LOWER with locale specific rules
// (tr-TR maps i to İ, for example). Null passes through.
func changeCase(v document.Value, tag language.Tag, upper bool) (document.Value, error) {
	if v.IsNull() {
		return v, nil
	}
	if v.Kind() != document.KindString {
		name := "LOWER"
		if upper {
			name = "UPPER"
		}
		return document.Null, fmt.Errorf("%w: %s needs a string, got %s", ErrInvalidArgument, name, v.Kind())
	}

	// Casers keep state between calls, so one is made per use
	if upper {
		return document.String(cases.Upper(tag).String(v.AsString())), nil
	}
	return document.String(cases.Lower(tag).String(v.AsString())), nil
}
