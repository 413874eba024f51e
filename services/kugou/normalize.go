package kugou

import (
	"encoding/json"
	"music-api-go/logcolors"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	// UnknownTitle and UnknownArtist replace missing detail fields
	UnknownTitle  = "Unknown Title"
	UnknownArtist = "Unknown Artist"

	// zeroDuration marks placeholder entries the upstream cannot play
	zeroDuration = "0:00"

	// emptyStreamSentinel is what the upstream sends instead of a URL when it has no result
	emptyStreamSentinel = "?from=longzhu_api"
)

// normalizeList drops unplayable placeholders and projects the remaining entries
func normalizeList(resp listResponse) []SongSummary {
	songs := []SongSummary{}

	var items []json.RawMessage
	if err := json.Unmarshal(resp.Data, &items); err != nil {
		// missing, null or non-array data: no matches
		return songs
	}

	for _, raw := range items {
		var item listItem
		if err := json.Unmarshal(raw, &item); err != nil {
			log.Debugf("%s Skipping malformed list entry: %v", logcolors.LogSearch, err)
			continue
		}
		if item.Duration == zeroDuration {
			continue
		}
		songs = append(songs, SongSummary{
			Index:    string(item.N),
			Title:    item.Title,
			Artist:   item.Singer,
			Duration: item.Duration,
		})
	}
	return songs
}

// normalizeDetail fills defaults and makes every URL absolute.
// It fails only when the upstream has no playable stream.
func normalizeDetail(resp detailResponse, defaultCover string) (*SongDetail, error) {
	if missing := missingFields(resp); len(missing) > 0 {
		log.Warnf("%s Missing fields: %s, using defaults", logcolors.LogDetail, strings.Join(missing, ", "))
	}

	title := resp.Title.Value
	if title == "" {
		log.Warnf("%s Song title missing", logcolors.LogDetail)
		title = UnknownTitle
	}

	artist := resp.Singer.Value
	if artist == "" {
		log.Warnf("%s Artist missing", logcolors.LogDetail)
		artist = UnknownArtist
	}

	streamURL := strings.TrimSpace(resp.MusicURL.Value)
	if isEmptyStream(streamURL) {
		return nil, ErrInvalidStream
	}
	if !hasHTTPScheme(streamURL) {
		log.Warnf("%s Music URL has no scheme, adding https", logcolors.LogDetail)
		streamURL = "https:" + streamURL
	}

	cover := strings.TrimSpace(resp.Cover.Value)
	if cover == "" {
		log.Warnf("%s Cover missing, using default cover", logcolors.LogDetail)
		cover = defaultCover
	} else if !hasHTTPScheme(cover) {
		log.Warnf("%s Cover URL has no scheme, adding https", logcolors.LogDetail)
		cover = "https:" + cover
	}

	return &SongDetail{
		Title:     title,
		Artist:    artist,
		CoverURL:  cover,
		StreamURL: streamURL,
		Lyrics:    resp.Lyrics.Value,
	}, nil
}

// isEmptyStream matches an absent URL, the upstream sentinel, and any
// host-less value that is only a query string
func isEmptyStream(u string) bool {
	u = strings.TrimSpace(u)
	return u == "" || u == emptyStreamSentinel || strings.HasPrefix(u, "?")
}

func hasHTTPScheme(u string) bool {
	lower := strings.ToLower(u)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func missingFields(resp detailResponse) []string {
	var missing []string
	fields := []struct {
		name  string
		value optString
	}{
		{"title", resp.Title},
		{"singer", resp.Singer},
		{"cover", resp.Cover},
		{"music_url", resp.MusicURL},
		{"lyrics", resp.Lyrics},
	}
	for _, f := range fields {
		if !f.value.Present {
			missing = append(missing, f.name)
		}
	}
	return missing
}
