package judges

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"judge-sync/core/registry"
)

const registryDateLayout = "2006-01-02"

var positionTitles = map[string]string{
	"jud":            "Judge",
	"jus":            "Justice",
	"c-jud":          "Chief Judge",
	"c-jus":          "Chief Justice",
	"ass-jud":        "Associate Judge",
	"ass-jus":        "Associate Justice",
	"ass-c-jud":      "Associate Chief Judge",
	"pres-jud":       "Presiding Judge",
	"pres-jus":       "Presiding Justice",
	"mag":            "Magistrate Judge",
	"c-mag":          "Chief Magistrate Judge",
	"ret-senior-jud": "Senior Judge",
	"act-jud":        "Acting Judge",
	"spec-m":         "Special Master",
	"clerk":          "Clerk",
}

// CurrentPosition picks the position a person holds now: the first one with no
// termination date, otherwise the first one listed. It returns nil for an
// empty list.
func CurrentPosition(positions []registry.Position) *registry.Position {
	if len(positions) == 0 {
		return nil
	}
	for i := range positions {
		if blank(positions[i].DateTermination) {
			return &positions[i]
		}
	}
	return &positions[0]
}

// NormalizeJurisdiction maps a court to a local jurisdiction code. Federal
// courts become registry.Federal; other courts are matched to a state by name,
// falling back to home.
func NormalizeJurisdiction(court *registry.Court, home string) string {
	home = registry.CanonicalJurisdiction(home)
	if court == nil {
		return home
	}
	if strings.HasPrefix(strings.ToUpper(court.Jurisdiction), "F") {
		return registry.Federal
	}
	for _, name := range []string{court.FullName, court.ShortName} {
		if state := registry.StateFromText(name); state != "" {
			return state
		}
	}
	return home
}

// DisplayName joins the name parts of a person.
func DisplayName(p *registry.Person) string {
	parts := make([]string, 0, 4)
	for _, s := range []string{p.NameFirst, p.NameMiddle, p.NameLast} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	name := strings.Join(parts, " ")
	if suffix := strings.TrimSpace(p.NameSuffix); suffix != "" {
		name += " " + suffix
	}
	return name
}

// AppointedDate is the start date of a position, or its nomination date when
// no start date is recorded.
func AppointedDate(pos *registry.Position) *time.Time {
	if pos == nil {
		return nil
	}
	if t := parseDate(pos.DateStart); t != nil {
		return t
	}
	return parseDate(pos.DateNominated)
}

// EducationSummary renders educations as "Degree, School, Year" entries
// separated by "; ".
func EducationSummary(educations []registry.Education) string {
	entries := make([]string, 0, len(educations))
	for _, e := range educations {
		var parts []string
		if degree := strings.TrimSpace(e.DegreeDetail); degree != "" {
			parts = append(parts, degree)
		} else if level := strings.TrimSpace(e.DegreeLevel); level != "" {
			parts = append(parts, strings.ToUpper(level))
		}
		if e.School != nil && strings.TrimSpace(e.School.Name) != "" {
			parts = append(parts, strings.TrimSpace(e.School.Name))
		}
		if e.DegreeYear != nil && *e.DegreeYear > 0 {
			parts = append(parts, strconv.Itoa(*e.DegreeYear))
		}
		if len(parts) > 0 {
			entries = append(entries, strings.Join(parts, ", "))
		}
	}
	return strings.Join(entries, "; ")
}

// BiographySummary renders positions as "Title, Court (start - end)" entries
// separated by "; ".
func BiographySummary(positions []registry.Position) string {
	entries := make([]string, 0, len(positions))
	for _, p := range positions {
		if entry := describePosition(p); entry != "" {
			entries = append(entries, entry)
		}
	}
	return strings.Join(entries, "; ")
}

func describePosition(p registry.Position) string {
	title := strings.TrimSpace(p.JobTitle)
	if title == "" {
		title = positionTitles[p.PositionType]
	}
	if title == "" {
		title = strings.TrimSpace(p.PositionType)
	}

	place := strings.TrimSpace(p.OrganizationName)
	if p.Court != nil && strings.TrimSpace(p.Court.FullName) != "" {
		place = strings.TrimSpace(p.Court.FullName)
	}

	var parts []string
	if title != "" {
		parts = append(parts, title)
	}
	if place != "" {
		parts = append(parts, place)
	}
	if len(parts) == 0 {
		return ""
	}
	desc := strings.Join(parts, ", ")

	start, end := year(p.DateStart), year(p.DateTermination)
	switch {
	case start != "" && end != "":
		desc += fmt.Sprintf(" (%s - %s)", start, end)
	case start != "":
		desc += fmt.Sprintf(" (%s - present)", start)
	}
	return desc
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func parseDate(s *string) *time.Time {
	if blank(s) {
		return nil
	}
	t, err := time.Parse(registryDateLayout, strings.TrimSpace(*s))
	if err != nil {
		return nil
	}
	return &t
}

func year(s *string) string {
	if t := parseDate(s); t != nil {
		return strconv.Itoa(t.Year())
	}
	return ""
}
