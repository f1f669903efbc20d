package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"

	"github.com/vegasq/docsql/document"
)

// ISO-8601 layouts tried by TO_DATE without a pattern, date-time first
var (
	isoDateTimeLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02T15:04Z07:00",
	}
	isoDateLayouts = []string{
		"2006-01-02",
		"2006-01-02Z07:00",
	}
)

// datePattern is a compiled TO_DATE pattern
type datePattern struct {
	source   string
	layout   string // Go layout, unused for strftime patterns
	strftime bool
	hasTime  bool
}

// compileDatePattern accepts Java style patterns (yyyy-MM-dd HH:mm:ss) and,
// when the pattern contains %, strftime patterns (%Y-%m-%d %H:%M:%S).
func compileDatePattern(pattern string) (*datePattern, error) {
	if strings.Contains(pattern, "%") {
		return &datePattern{source: pattern, strftime: true, hasTime: strftimeHasTime(pattern)}, nil
	}
	layout, hasTime, err := javaLayout(pattern)
	if err != nil {
		return nil, err
	}
	return &datePattern{source: pattern, layout: layout, hasTime: hasTime}, nil
}

func (p *datePattern) parse(text string) (time.Time, error) {
	if p.strftime {
		return strftime.Parse(p.source, text)
	}
	return time.Parse(p.layout, text)
}

// toDate implements TO_DATE. Without a pattern it tries a full date-time and
// falls back to a plain date. Values that are already temporal pass through.
func toDate(v document.Value, p *datePattern) (document.Value, error) {
	switch v.Kind() {
	case document.KindNull, document.KindDate, document.KindDateTime:
		return v, nil
	case document.KindString:
	default:
		return document.Null, fmt.Errorf("%w: TO_DATE needs a string, got %s", ErrInvalidArgument, v.Kind())
	}

	text := strings.TrimSpace(v.AsString())
	if p != nil {
		t, err := p.parse(text)
		if err != nil {
			return document.Null, fmt.Errorf("%w: TO_DATE(%q, %q): %v", ErrInvalidArgument, text, p.source, err)
		}
		if p.hasTime {
			return document.DateTime(t), nil
		}
		return document.Date(t), nil
	}

	for _, layout := range isoDateTimeLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return document.DateTime(t), nil
		}
	}
	for _, layout := range isoDateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return document.Date(t), nil
		}
	}
	return document.Null, fmt.Errorf("%w: TO_DATE cannot parse %q", ErrInvalidArgument, text)
}

// javaLayout translates a java.time DateTimeFormatter pattern into a Go
// layout. It reports whether the pattern carries time-of-day fields.
func javaLayout(pattern string) (string, bool, error) {
	var b strings.Builder
	hasTime := false

	for i := 0; i < len(pattern); {
		c := pattern[i]

		if c == '\'' {
			end := strings.IndexByte(pattern[i+1:], '\'')
			if end < 0 {
				return "", false, fmt.Errorf("%w: unterminated quote in date pattern %q", ErrInvalidArgument, pattern)
			}
			if end == 0 {
				b.WriteByte('\'')
			} else {
				b.WriteString(pattern[i+1 : i+1+end])
			}
			i += end + 2
			continue
		}

		if !isASCIILetter(c) {
			b.WriteByte(c)
			i++
			continue
		}

		n := 1
		for i+n < len(pattern) && pattern[i+n] == c {
			n++
		}
		i += n

		var field string
		switch c {
		case 'y', 'u':
			field = "2006"
			if n == 2 {
				field = "06"
			}
		case 'M', 'L':
			switch n {
			case 1:
				field = "1"
			case 2:
				field = "01"
			case 3:
				field = "Jan"
			default:
				field = "January"
			}
		case 'd':
			field = "02"
			if n == 1 {
				field = "2"
			}
		case 'D':
			field = "002"
		case 'E':
			field = "Mon"
			if n >= 4 {
				field = "Monday"
			}
		case 'H':
			field, hasTime = "15", true
		case 'h':
			field, hasTime = "03", true
			if n == 1 {
				field = "3"
			}
		case 'm':
			field, hasTime = "04", true
			if n == 1 {
				field = "4"
			}
		case 's':
			field, hasTime = "05", true
			if n == 1 {
				field = "5"
			}
		case 'S':
			field, hasTime = strings.Repeat("0", n), true
		case 'a':
			field, hasTime = "PM", true
		case 'X', 'x':
			field = "Z07:00"
			if n == 1 {
				field = "Z07"
			}
		case 'Z':
			field = "-0700"
		case 'z':
			field = "MST"
		default:
			return "", false, fmt.Errorf("%w: unsupported date pattern letter %q in %q", ErrInvalidArgument, c, pattern)
		}
		b.WriteString(field)
	}
	return b.String(), hasTime, nil
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// strftimeHasTime reports whether a strftime pattern has time-of-day specifiers
func strftimeHasTime(pattern string) bool {
	for i := 0; i+1 < len(pattern); i++ {
		if pattern[i] != '%' {
			continue
		}
		i++
		if strings.IndexByte("HIklMSTRrcpPfL", pattern[i]) >= 0 {
			return true
		}
	}
	return false
}
