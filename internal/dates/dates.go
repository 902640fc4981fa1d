// Package dates parses the free-text dates found in bibliographic records.
package dates

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// precision of a parsed date
type precision int

const (
	yearOnly precision = iota + 1
	yearMonth
	fullDate
)

type layout struct {
	format    string
	precision precision
}

var layouts = []layout{
	{"2006-01-02", fullDate},
	{"2006-1-2", fullDate},
	{"2006/01/02", fullDate},
	{"2006/1/2", fullDate},
	{"2006-01-02T15:04:05Z07:00", fullDate},
	{"2006-01-02 15:04:05", fullDate},
	{"01/02/2006", fullDate},
	{"1/2/2006", fullDate},
	{"January 2, 2006", fullDate},
	{"January 2 2006", fullDate},
	{"Jan 2, 2006", fullDate},
	{"Jan. 2, 2006", fullDate},
	{"2 January 2006", fullDate},
	{"2 Jan 2006", fullDate},
	{"2006 January 2", fullDate},
	{"2006 Jan 2", fullDate},
	{"2006-01", yearMonth},
	{"2006/01", yearMonth},
	{"January 2006", yearMonth},
	{"Jan 2006", yearMonth},
	{"2006 January", yearMonth},
	{"2006 Jan", yearMonth},
}

var (
	yearRe  = regexp.MustCompile(`(?:^|[^0-9])([0-9]{4})(?:[^0-9]|$)`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// Parser implements zotero.DateParser with a fixed list of layouts and a
// four-digit year fallback.
type Parser struct{}

// New returns a date parser.
func New() *Parser {
	return &Parser{}
}

// Year returns the four-digit year of s.
func (p *Parser) Year(s string) (string, bool) {
	if t, prec, ok := parse(s); ok && prec > 0 {
		return fmt.Sprintf("%04d", t.Year()), true
	}
	m := yearRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ISO returns s normalized to YYYY-MM-DD, YYYY-MM or YYYY depending on how
// much of the date s carries.
func (p *Parser) ISO(s string) (string, bool) {
	t, prec, ok := parse(s)
	if !ok {
		if y, ok := p.Year(s); ok && strings.TrimSpace(s) == y {
			return y, true
		}
		return "", false
	}
	switch prec {
	case fullDate:
		return t.Format("2006-01-02"), true
	case yearMonth:
		return t.Format("2006-01"), true
	default:
		return t.Format("2006"), true
	}
}

func parse(s string) (time.Time, precision, bool) {
	s = strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
	if s == "" {
		return time.Time{}, 0, false
	}
	for _, l := range layouts {
		if t, err := time.Parse(l.format, s); err == nil {
			return t, l.precision, true
		}
	}
	return time.Time{}, 0, false
}
