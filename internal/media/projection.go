package media

import (
	"github.com/samber/lo"

	"media-grabber/internal/domain"
)

type rawVideo struct {
	ID         string      `json:"id"`
	Title      *string     `json:"title"`
	Duration   *float64    `json:"duration"`
	Thumbnail  *string     `json:"thumbnail"`
	Uploader   *string     `json:"uploader"`
	WebpageURL string      `json:"webpage_url"`
	Formats    []rawFormat `json:"formats"`
}

type rawFormat struct {
	FormatID   string   `json:"format_id"`
	Ext        string   `json:"ext"`
	Resolution *string  `json:"resolution"`
	Filesize   *float64 `json:"filesize"`
	FormatNote *string  `json:"format_note"`
	VCodec     *string  `json:"vcodec"`
	ACodec     *string  `json:"acodec"`
	FPS        *float64 `json:"fps"`
}

type rawThumbnail struct {
	URL string `json:"url"`
}

type rawPlaylist struct {
	ID            string     `json:"id"`
	Title         *string    `json:"title"`
	Uploader      *string    `json:"uploader"`
	PlaylistCount *int       `json:"playlist_count"`
	Entries       []rawEntry `json:"entries"`
}

type rawEntry struct {
	ID         string         `json:"id"`
	Title      *string        `json:"title"`
	Duration   *float64       `json:"duration"`
	URL        *string        `json:"url"`
	Thumbnail  *string        `json:"thumbnail"`
	Thumbnails []rawThumbnail `json:"thumbnails"`
}

func (r rawVideo) project() domain.VideoInfo {
	return domain.VideoInfo{
		ID:         r.ID,
		Title:      stringOr(r.Title, "Unknown"),
		Duration:   r.Duration,
		Thumbnail:  r.Thumbnail,
		Uploader:   r.Uploader,
		WebpageURL: r.WebpageURL,
		Formats: lo.Map(r.Formats, func(f rawFormat, _ int) domain.FormatDescriptor {
			return f.project()
		}),
	}
}

func (f rawFormat) project() domain.FormatDescriptor {
	var size *int64
	if f.Filesize != nil {
		size = lo.ToPtr(int64(*f.Filesize))
	}
	return domain.FormatDescriptor{
		FormatID:   f.FormatID,
		Ext:        f.Ext,
		Resolution: f.Resolution,
		Filesize:   size,
		FormatNote: f.FormatNote,
		VCodec:     f.VCodec,
		ACodec:     f.ACodec,
		FPS:        f.FPS,
	}
}

func (r rawPlaylist) project() domain.PlaylistInfo {
	count := len(r.Entries)
	if r.PlaylistCount != nil {
		count = *r.PlaylistCount
	}

	entries := lo.FilterMap(r.Entries, func(e rawEntry, _ int) (domain.PlaylistEntry, bool) {
		return e.project(), e.ID != ""
	})
	if len(entries) > maxPlaylistEntries {
		entries = entries[:maxPlaylistEntries]
	}

	return domain.PlaylistInfo{
		ID:         r.ID,
		Title:      stringOr(r.Title, "Unknown Playlist"),
		Uploader:   r.Uploader,
		VideoCount: count,
		Videos:     entries,
	}
}

func (e rawEntry) project() domain.PlaylistEntry {
	url := stringOr(e.URL, "")
	if url == "" {
		url = "https://youtube.com/watch?v=" + e.ID
	}

	thumbnail := e.Thumbnail
	if thumbnail == nil && len(e.Thumbnails) > 0 {
		thumbnail = lo.ToPtr(lo.LastOrEmpty(e.Thumbnails).URL)
	}

	return domain.PlaylistEntry{
		ID:        e.ID,
		Title:     stringOr(e.Title, "Unknown"),
		Duration:  e.Duration,
		Thumbnail: thumbnail,
		URL:       url,
	}
}

func stringOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
