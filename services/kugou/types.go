package kugou

import (
	"bytes"
	"encoding/json"
)

// Quality tiers accepted by the upstream API
const (
	Quality128        = "128"
	Quality320        = "320"
	QualityFLAC       = "flac"
	QualityViperAtmos = "viper_atmos"
)

// ValidQuality reports whether q is one of the tiers the upstream understands
func ValidQuality(q string) bool {
	switch q {
	case Quality128, Quality320, QualityFLAC, QualityViperAtmos:
		return true
	}
	return false
}

// SearchRequest holds the parameters of a list-mode query
type SearchRequest struct {
	Query      string
	Index      string // usually empty in list mode
	MaxResults string
	Quality    string
}

// DetailRequest selects one entry of a previous search by its index
type DetailRequest struct {
	Query   string
	Index   string
	Quality string
}

// SongSummary is one playable entry of a search result
type SongSummary struct {
	Index    string `json:"n"`
	Title    string `json:"title"`
	Artist   string `json:"singer"`
	Duration string `json:"duration"`
}

// SongDetail is a fully normalized, playable song
type SongDetail struct {
	Title     string `json:"title"`
	Artist    string `json:"singer"`
	CoverURL  string `json:"cover"`
	StreamURL string `json:"music_url"`
	Lyrics    string `json:"lyrics"`
}

// listResponse is the list-mode body. Data stays raw because the upstream
// sends null, an object or a string when there are no matches.
type listResponse struct {
	Data json.RawMessage `json:"data"`
}

type listItem struct {
	N        flexString `json:"n"`
	Title    string     `json:"title"`
	Singer   string     `json:"singer"`
	Duration string     `json:"Duration"`
}

// detailResponse is the detail-mode body
type detailResponse struct {
	Title    optString `json:"title"`
	Singer   optString `json:"singer"`
	Cover    optString `json:"cover"`
	MusicURL optString `json:"music_url"`
	Lyrics   optString `json:"lyrics"`
}

// optString records whether a field was present. Values of the wrong type
// are kept as present-but-empty so one odd field cannot fail the whole body.
type optString struct {
	Present bool
	Value   string
}

func (o *optString) UnmarshalJSON(b []byte) error {
	o.Present = true
	var f flexString
	if err := f.UnmarshalJSON(b); err != nil {
		o.Value = ""
		return nil
	}
	o.Value = string(f)
	return nil
}

// flexString accepts a JSON string or number
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
