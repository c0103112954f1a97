package provider

import (
	"regexp"
	"strings"

	"github.com/wefrigerator/fridge-ingest/internal/model"
	"github.com/wefrigerator/fridge-ingest/internal/textutil"
)

// phoneLabels are checked in order; the first keyword found labels the number.
var phoneLabels = []struct {
	re    *regexp.Regexp
	label string
}{
	{regexp.MustCompile(`(?i)\b(fax)\b`), "FAX"},
	{regexp.MustCompile(`(?i)\b(service|intake)\b`), "Service/Intake"},
	{regexp.MustCompile(`(?i)\b(admin|administration)\b`), "Administration"},
	{regexp.MustCompile(`(?i)\b(hotline)\b`), "Hotline"},
	{regexp.MustCompile(`(?i)\b(info|information)\b`), "Info"},
	{regexp.MustCompile(`(?i)\b(24\s*hour|24\s*hr)\b`), "24 Hour"},
	{regexp.MustCompile(`(?i)\b(volunteer)\b`), "Volunteer"},
}

var (
	phoneSplitRe     = regexp.MustCompile(`[,;]`)
	phoneExtRe       = regexp.MustCompile(`(?i)\b(ext|extension|x)\.?[:\s]*(\d+)`)
	freeTextNumberRe = regexp.MustCompile(`[^\d\s\-()]`)
	taggedNumberRe   = regexp.MustCompile(`[^\d\s\-()+]`)
)

// phoneList accumulates phones, skipping numbers whose digits repeat an
// earlier entry.
type phoneList struct {
	phones []model.Phone
	seen   map[string]bool
}

func newPhoneList() *phoneList {
	return &phoneList{phones: []model.Phone{}, seen: make(map[string]bool)}
}

func (l *phoneList) add(p model.Phone) {
	d := textutil.PhoneDigits(p.Number)
	if d == "" || l.seen[d] {
		return
	}
	l.seen[d] = true
	l.phones = append(l.phones, p)
}

// ParseFreeTextPhones splits a comma/semicolon separated phone string and
// detects a label keyword and extension in each part.
func ParseFreeTextPhones(raw string) []model.Phone {
	list := newPhoneList()
	for _, part := range phoneSplitRe.Split(raw, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		var p model.Phone
		number := part
		for _, l := range phoneLabels {
			if l.re.MatchString(part) {
				p.Label = l.label
				number = strings.TrimSpace(l.re.ReplaceAllString(part, ""))
				break
			}
		}

		if m := phoneExtRe.FindStringSubmatchIndex(number); m != nil {
			p.Ext = number[m[4]:m[5]]
			number = strings.TrimSpace(number[:m[0]] + number[m[1]:])
		}

		p.Number = strings.TrimSpace(freeTextNumberRe.ReplaceAllString(number, ""))
		list.add(p)
	}
	return list.phones
}

// cleanTaggedNumber keeps digits, whitespace, dashes, parentheses and plus signs.
func cleanTaggedNumber(raw string) string {
	return strings.TrimSpace(taggedNumberRe.ReplaceAllString(raw, ""))
}
