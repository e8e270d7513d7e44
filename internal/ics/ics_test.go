package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lumina/lts/internal/chain"
)

func TestBuildRendersEventFields(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	event := &chain.EventRecord{
		ID:          12,
		Title:       "Summer Festival",
		Description: "Open air, all day",
		Date:        "2026-07-04T18:00:00Z",
		Location:    "Riverside Park",
	}

	body := Build(event, now)

	assert.True(t, strings.HasPrefix(body, "BEGIN:VCALENDAR\r\n"))
	assert.Contains(t, body, "UID:lumina-event-12@lumina.tickets")
	assert.Contains(t, body, "DTSTART:20260704T180000Z")
	assert.Contains(t, body, "DTEND:20260704T210000Z")
	assert.Contains(t, body, "SUMMARY:Summer Festival")
	assert.Contains(t, body, "LOCATION:Riverside Park")
	assert.True(t, strings.HasSuffix(body, "END:VCALENDAR\r\n"))
}

func TestBuildEscapesSpecialCharacters(t *testing.T) {
	event := &chain.EventRecord{
		ID:       1,
		Title:    "Rock, Paper; Scissors",
		Location: "Hall A\nEntrance B",
	}

	body := Build(event, time.Now())

	assert.Contains(t, body, `SUMMARY:Rock\, Paper\; Scissors`)
	assert.Contains(t, body, `LOCATION:Hall A\nEntrance B`)
}

func TestBuildFallsBackOnUnparseableDate(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	event := &chain.EventRecord{ID: 2, Title: "TBD", Date: "sometime next year"}

	body := Build(event, now)
	assert.Contains(t, body, "DTSTART:20260601T100000Z")
}

func TestBuildParsesBareDate(t *testing.T) {
	event := &chain.EventRecord{ID: 3, Title: "Matinee", Date: "2026-09-12"}

	body := Build(event, time.Now())
	assert.Contains(t, body, "DTSTART:20260912T000000Z")
}
