package native

import (
	"strconv"
	"strings"
	"time"

	"github.com/wippyai/fastsheet/cell"
)

// text trims s; a blank string is an empty cell.
func text(s string) cell.Cell {
	s = strings.TrimSpace(s)
	if s == "" {
		return cell.Empty()
	}
	return cell.String(s)
}

// infer types a formatted value from a reader that only yields text:
// numbers, booleans and common date layouts, otherwise trimmed text.
func infer(s string) cell.Cell {
	s = strings.TrimSpace(s)
	if s == "" {
		return cell.Empty()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return cell.Number(f)
	}
	switch strings.ToLower(s) {
	case "true":
		return cell.Bool(true)
	case "false":
		return cell.Bool(false)
	}
	if t, ok := parseTime(s); ok {
		return cell.Time(t)
	}
	return cell.String(s)
}

var layouts = [...]string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
	"1-2-06",
	"01-02-2006",
	"2-Jan-06",
	"02-Jan-2006",
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
