package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
)

const (
	prodID    = "-//AutoDoc Legal//EN"
	uidDomain = "autodoc.legal"
)

// Encoder renders a hearing as a single-event iCalendar file. Events start at 10:00 and
// last one hour in floating local time.
type Encoder struct {
	now func() time.Time
}

func NewEncoder() *Encoder {
	return &Encoder{now: time.Now}
}

// Filename is the download name used for a hearing's calendar file.
func (e *Encoder) Filename(h domain.Hearing) string {
	return "hearing_" + h.HearingDate + ".ics"
}

func (e *Encoder) EncodeHearing(h domain.Hearing, c domain.Case) ([]byte, error) {
	day, err := time.Parse(domain.HearingDateLayout, h.HearingDate)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "encode hearing", fmt.Errorf("hearing date %q: %w", h.HearingDate, err))
	}
	if h.ID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "encode hearing", errors.New("hearing id is required"))
	}

	caseNumber := orDefault(c.CaseNumber, "Unknown Case")
	description := strings.Join([]string{
		"Case No: " + caseNumber,
		fmt.Sprintf("Parties: %s vs %s", c.PetitionerName, c.RespondentName),
		"Court: " + orDefault(c.CourtName, "N/A"),
		"Purpose: " + h.Purpose,
		"Item No: " + orDefault(h.ItemNumber, "N/A"),
	}, "\n")

	stamp := day.Format("20060102")
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + prodID,
		"BEGIN:VEVENT",
		"UID:" + h.ID + "@" + uidDomain,
		"DTSTAMP:" + e.now().UTC().Format("20060102T150405Z"),
		"DTSTART:" + stamp + "T100000",
		"DTEND:" + stamp + "T110000",
		"SUMMARY:" + escapeText("Court Hearing: "+caseNumber),
		"DESCRIPTION:" + escapeText(description),
		"LOCATION:" + escapeText(orDefault(c.CourtName, "Court")),
		"END:VEVENT",
		"END:VCALENDAR",
	}

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(fold(line))
		b.WriteString("\r\n")
	}
	return []byte(b.String()), nil
}

func escapeText(v string) string {
	return strings.NewReplacer(
		`\`, `\\`,
		";", `\;`,
		",", `\,`,
		"\r\n", `\n`,
		"\n", `\n`,
	).Replace(v)
}

// fold splits content lines longer than 75 octets without breaking UTF-8 sequences.
func fold(line string) string {
	const limit = 75
	if len(line) <= limit {
		return line
	}
	var b strings.Builder
	width := 0
	for _, r := range line {
		size := len(string(r))
		if width+size > limit {
			b.WriteString("\r\n ")
			width = 1
		}
		b.WriteRune(r)
		width += size
	}
	return b.String()
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
