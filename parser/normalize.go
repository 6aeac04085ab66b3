// Package parser holds the wire shapes of the auction JSON documents and
// the pure transforms that turn one item record into relational rows.
package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformedTimestamp reports source text that does not have the
// expected "Mon-DD-YY HH:MM:SS" structure. It invalidates the whole
// batch, so callers propagate it rather than skipping the record.
var ErrMalformedTimestamp = errors.New("parser: malformed timestamp")

var nonCurrency = regexp.MustCompile(`[^\d.]`)

// months maps the source month abbreviations to two-digit month numbers.
var months = map[string]string{
	"Jan": "01", "Feb": "02", "Mar": "03", "Apr": "04",
	"May": "05", "Jun": "06", "Jul": "07", "Aug": "08",
	"Sep": "09", "Oct": "10", "Nov": "11", "Dec": "12",
}

// NormalizeCurrency strips everything but digits and the decimal point
// from a dollar amount, e.g. "$3,453.23" becomes "3453.23". Empty input
// passes through unchanged; no range or format validation is applied.
func NormalizeCurrency(money string) string {
	if money == "" {
		return money
	}
	return nonCurrency.ReplaceAllString(money, "")
}

// NormalizeMonth converts a month abbreviation to its number, e.g. "Dec"
// to "12". Unknown abbreviations pass through unchanged.
func NormalizeMonth(mon string) string {
	if num, ok := months[mon]; ok {
		return num
	}
	return mon
}

// NormalizeTimestamp converts "Mon-DD-YY HH:MM:SS" to the sortable form
// "20YY-MM-DD HH:MM:SS". Two-digit years are all mapped into the 2000s,
// matching the source data contract. Input that lacks the <date> <time>
// structure or a three-part date yields ErrMalformedTimestamp.
func NormalizeTimestamp(dttm string) (string, error) {
	parts := strings.Fields(strings.TrimSpace(dttm))
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: %q", ErrMalformedTimestamp, dttm)
	}
	date := strings.Split(parts[0], "-")
	if len(date) != 3 {
		return "", fmt.Errorf("%w: %q", ErrMalformedTimestamp, dttm)
	}
	return "20" + date[2] + "-" + NormalizeMonth(date[0]) + "-" + date[1] + " " + parts[1], nil
}
