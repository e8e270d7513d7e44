// Package ics renders an event as an iCalendar file for calendar export.
package ics

import (
	"fmt"
	"strings"
	"time"

	"github.com/lumina/lts/internal/chain"
)

// DefaultDuration is assumed when the event has no explicit end.
const DefaultDuration = 3 * time.Hour

// Build renders a VCALENDAR document for one event. The event date string
// is parsed as RFC3339 or as a bare date; unparseable dates fall back to
// an all-day entry on today's date.
func Build(event *chain.EventRecord, now time.Time) string {
	start := parseDate(event.Date, now)
	end := start.Add(DefaultDuration)

	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\r\n")
	b.WriteString("VERSION:2.0\r\n")
	b.WriteString("PRODID:-//Lumina Tickets//EN\r\n")
	b.WriteString("BEGIN:VEVENT\r\n")
	fmt.Fprintf(&b, "UID:lumina-event-%d@lumina.tickets\r\n", event.ID)
	fmt.Fprintf(&b, "DTSTAMP:%s\r\n", now.UTC().Format("20060102T150405Z"))
	fmt.Fprintf(&b, "DTSTART:%s\r\n", start.UTC().Format("20060102T150405Z"))
	fmt.Fprintf(&b, "DTEND:%s\r\n", end.UTC().Format("20060102T150405Z"))
	fmt.Fprintf(&b, "SUMMARY:%s\r\n", escape(event.Title))
	fmt.Fprintf(&b, "DESCRIPTION:%s\r\n", escape(event.Description))
	fmt.Fprintf(&b, "LOCATION:%s\r\n", escape(event.Location))
	b.WriteString("END:VEVENT\r\n")
	b.WriteString("END:VCALENDAR\r\n")
	return b.String()
}

func parseDate(date string, fallback time.Time) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, date); err == nil {
			return t
		}
	}
	return fallback
}

// escape applies RFC 5545 text escaping.
func escape(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\n", "\\n",
	)
	return r.Replace(s)
}
