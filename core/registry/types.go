package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is a registry identifier. The registry emits numeric ids; strings are
// accepted as well so the local externalId stays a plain string either way.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("registry id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Court is the court a position is held at.
type Court struct {
	ID           string `json:"id"`
	FullName     string `json:"full_name"`
	ShortName    string `json:"short_name"`
	Jurisdiction string `json:"jurisdiction"`
}

// Position is one appointment or job held by a person.
type Position struct {
	Court             *Court  `json:"court"`
	PositionType      string  `json:"position_type"`
	JobTitle          string  `json:"job_title"`
	OrganizationName  string  `json:"organization_name"`
	DateNominated     *string `json:"date_nominated"`
	DateStart         *string `json:"date_start"`
	DateTermination   *string `json:"date_termination"`
	HowSelected       string  `json:"how_selected"`
	AppointerFullName string  `json:"appointer_name"`
}

// School is the institution an education entry refers to.
type School struct {
	Name string `json:"name"`
}

// Education is one degree held by a person.
type Education struct {
	School       *School `json:"school"`
	DegreeLevel  string  `json:"degree_level"`
	DegreeDetail string  `json:"degree_detail"`
	DegreeYear   *int    `json:"degree_year"`
}

// Person is the full registry record returned by the "get by id" endpoint.
type Person struct {
	ID           ID          `json:"id"`
	NameFirst    string      `json:"name_first"`
	NameMiddle   string      `json:"name_middle"`
	NameLast     string      `json:"name_last"`
	NameSuffix   string      `json:"name_suffix"`
	DateModified string      `json:"date_modified"`
	Positions    []Position  `json:"positions"`
	Educations   []Education `json:"educations"`

	// Raw is the exact body the registry returned.
	Raw json.RawMessage `json:"-"`
}

// PersonSummary is one row of the listing endpoint.
type PersonSummary struct {
	ID           ID     `json:"id"`
	DateModified string `json:"date_modified"`
}

// PeoplePage is one page of the listing endpoint.
type PeoplePage struct {
	Count   int             `json:"count"`
	Next    *string         `json:"next"`
	Results []PersonSummary `json:"results"`
}

// NextURL returns the continuation URL or "" on the last page.
func (p *PeoplePage) NextURL() string {
	if p == nil || p.Next == nil {
		return ""
	}
	return *p.Next
}
