package utils

import (
	"bytes"
	"errors"
	"strings"
	"text/template"
	"time"
)

// ExecTemplate renders a SQL template so optional filter fragments can be
// spliced in before the query is sent with named parameters.
func ExecTemplate(tString string, data map[string]interface{}) (string, error) {
	t, err := template.New("sql").Parse(tString)
	if err != nil {
		return "", errors.New("error parsing sql template: " + err.Error())
	}
	var b bytes.Buffer
	if err := t.Execute(&b, data); err != nil {
		return "", errors.New("failed to execute sql template: " + err.Error())
	}
	return b.String(), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike quotes the LIKE metacharacters so user input matches
// literally instead of acting as a wildcard pattern.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// DateOnly truncates t to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// TrailingRange returns the closed [from, to] date interval covering the
// given number of days ending at (and including) the anchor date.
func TrailingRange(anchor time.Time, days int) (time.Time, time.Time) {
	to := DateOnly(anchor)
	from := to.AddDate(0, 0, -(days - 1))
	return from, to
}
