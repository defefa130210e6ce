package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// NumericString holds a JSON value that upstream sends either as a number or as a
// string. Numbers are rendered the way a JSON encoder would print them; a numeric
// zero, null, or a non-scalar value decodes to the empty string.
type NumericString string

func (n *NumericString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*n = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericString(s)
		return nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			*n = ""
			return nil
		}
		if f == 0 {
			*n = ""
			return nil
		}
		if !strings.ContainsAny(string(data), ".eE") {
			*n = NumericString(data)
			return nil
		}
		*n = NumericString(strconv.FormatFloat(f, 'f', -1, 64))
		return nil
	}

	// true/false/objects/arrays carry no usable identity.
	*n = ""
	return nil
}

// String returns the decoded text.
func (n NumericString) String() string {
	return string(n)
}

// ListItem is a single record from an MDBList list items payload. Field names vary
// between API generations, so both spellings are accepted.
type ListItem struct {
	TMDBID      NumericString `json:"tmdbId"`
	TMDBIDAlt   NumericString `json:"tmdb_id"`
	Type        string        `json:"type"`
	MediaType   string        `json:"mediatype"` // "movie" or "show"
	Title       string        `json:"title"`
	Poster      *string       `json:"poster"`
	Year        NumericString `json:"year"`
	ReleaseYear NumericString `json:"release_year"`
	IMDBID      string        `json:"imdb_id,omitempty"`
}

// Identity returns the TMDB identity of the item, or "" when none was supplied.
func (i ListItem) Identity() string {
	if i.TMDBID != "" {
		return i.TMDBID.String()
	}
	return i.TMDBIDAlt.String()
}

// Kind returns the content type of the item. An explicit type tag wins; otherwise the
// mediatype field is normalized so "show" and "tv" map to "series".
func (i ListItem) Kind() string {
	if i.Type != "" {
		return i.Type
	}
	switch i.MediaType {
	case "show", "tv", "series":
		return MediaTypeSeries
	case "":
		return ""
	default:
		return i.MediaType
	}
}

// YearText returns the release year as text, or "" when absent.
func (i ListItem) YearText() string {
	if i.Year != "" {
		return i.Year.String()
	}
	return i.ReleaseYear.String()
}

// UserList describes one list owned by an MDBList account.
type UserList struct {
	ID        NumericString `json:"id"`
	Name      string        `json:"name"`
	Slug      string        `json:"slug"`
	UserName  string        `json:"user_name,omitempty"`
	Items     Count         `json:"items"`
	Likes     Count         `json:"likes"`
	MediaType string        `json:"mediatype,omitempty"`
	Dynamic   Flag          `json:"dynamic"`
	Private   Flag          `json:"private"`
}

// Count is a counter that upstream sends as a number or a numeric string. Anything
// else decodes to zero.
type Count int

func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*c = 0
		return nil
	}
	*c = Count(f)
	return nil
}

// Flag is a boolean that upstream sends as true/false, 0/1 or their string forms.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
	}
	switch strings.ToLower(string(data)) {
	case "true", "1", "yes":
		*f = true
	default:
		n, err := strconv.ParseFloat(string(data), 64)
		*f = Flag(err == nil && n != 0)
	}
	return nil
}
