package provider

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/wefrigerator/fridge-ingest/internal/model"
	"github.com/wefrigerator/fridge-ingest/internal/textutil"
)

const (
	allWeekDays   = "24/7"
	unparsedDays  = "See notes"
	dayAlternates = `mon|tue|wed|thu|fri|sat|sun|monday|tuesday|wednesday|thursday|friday|saturday|sunday`
)

var (
	freeTextAlwaysOpenRe = regexp.MustCompile(`(?i)\b(24\s*hours?|24\s*/\s*7|open\s+24|twenty[\s-]?four\s+hours?)\b`)
	freeTextNthWeekdayRe = regexp.MustCompile(`(?i)\b(\d+(?:st|nd|rd|th))\s+(?:and|&)\s+(\d+(?:st|nd|rd|th))\s+(` + dayAlternates + `)`)
	freeTextDayRangeRe   = regexp.MustCompile(`(?i)\b(` + dayAlternates + `)[\s\-]+(` + dayAlternates + `)?\s*[:,]?\s*(\d{1,2}):?(\d{2})?\s*(am|pm)?\s*[-–—to]+\s*(\d{1,2}):?(\d{2})?\s*(am|pm)?`)

	osmAlwaysOpenRe = regexp.MustCompile(`(?i)^(24/7|24 hours?|always open)$`)
	osmDayRangeRe   = regexp.MustCompile(`\b(Mo|Tu|We|Th|Fr|Sa|Su)(?:-(Mo|Tu|We|Th|Fr|Sa|Su))?\s+(\d{1,2}):(\d{2})-(\d{1,2}):(\d{2})`)
)

// ParseFreeTextHours interprets a free-form hours string. It tries, in order,
// a 24/7 keyword, an Nth-weekday schedule, and a day range with times. When
// nothing matches it returns one unparsed entry carrying the cleaned text.
func ParseFreeTextHours(raw string) []model.Hours {
	cleaned := textutil.CleanText(raw)
	if cleaned == "" {
		return []model.Hours{}
	}

	if freeTextAlwaysOpenRe.MatchString(cleaned) {
		return []model.Hours{{Days: allWeekDays, Parsed: true}}
	}

	if m := freeTextNthWeekdayRe.FindStringSubmatch(cleaned); m != nil {
		return []model.Hours{{
			Days:   fmt.Sprintf("%s&%s %s", m[1], m[2], m[3]),
			Notes:  cleaned,
			Parsed: true,
		}}
	}

	if m := freeTextDayRangeRe.FindStringSubmatch(cleaned); m != nil {
		days := shortDay(m[1])
		if m[2] != "" {
			days += "-" + shortDay(m[2])
		}
		return []model.Hours{{
			Days:   days,
			Opens:  clockTime(m[3], m[4], m[5]),
			Closes: clockTime(m[6], m[7], m[8]),
			Parsed: true,
		}}
	}

	return []model.Hours{{Days: unparsedDays, Notes: cleaned, Parsed: false}}
}

// ParseOpeningHours interprets an OSM opening_hours value. It recognizes the
// always-open forms and any number of "Mo-Fr 09:00-17:00" segments.
func ParseOpeningHours(raw string) []model.Hours {
	cleaned := textutil.CleanText(raw)
	if cleaned == "" {
		return []model.Hours{}
	}

	if osmAlwaysOpenRe.MatchString(cleaned) {
		return []model.Hours{{Days: allWeekDays, Parsed: true}}
	}

	matches := osmDayRangeRe.FindAllStringSubmatch(cleaned, -1)
	if len(matches) == 0 {
		return []model.Hours{{Days: unparsedDays, Notes: cleaned, Parsed: false}}
	}

	out := make([]model.Hours, 0, len(matches))
	for _, m := range matches {
		days := m[1]
		if m[2] != "" {
			days += "-" + m[2]
		}
		out = append(out, model.Hours{
			Days:   days,
			Opens:  pad2(m[3]) + ":" + m[4],
			Closes: pad2(m[5]) + ":" + m[6],
			Parsed: true,
		})
	}
	return out
}

// shortDay turns "monday" or "MON" into "Mon".
func shortDay(d string) string {
	d = strings.ToLower(d)
	if len(d) > 3 {
		d = d[:3]
	}
	return strings.ToUpper(d[:1]) + d[1:]
}

// clockTime renders an hour, optional minutes, and optional meridiem as HH:MM
// on a 24-hour clock.
func clockTime(hour, minutes, meridiem string) string {
	if minutes == "" {
		minutes = "00"
	}
	h, _ := strconv.Atoi(hour)
	switch strings.ToLower(meridiem) {
	case "pm":
		if h != 12 {
			h += 12
		}
	case "am":
		if h == 12 {
			h = 0
		}
	}
	return fmt.Sprintf("%02d:%s", h, minutes)
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
