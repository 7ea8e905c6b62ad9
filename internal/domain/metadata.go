package domain

// VideoInfo is the subset of extractor metadata the UI displays.
type VideoInfo struct {
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	Duration   *float64           `json:"duration,omitempty"`
	Thumbnail  *string            `json:"thumbnail,omitempty"`
	Uploader   *string            `json:"uploader,omitempty"`
	WebpageURL string             `json:"webpageUrl,omitempty"`
	Formats    []FormatDescriptor `json:"formats"`
}

// FormatDescriptor is one downloadable rendition offered by the source.
type FormatDescriptor struct {
	FormatID   string   `json:"formatId"`
	Ext        string   `json:"ext"`
	Resolution *string  `json:"resolution,omitempty"`
	Filesize   *int64   `json:"filesize,omitempty"`
	FormatNote *string  `json:"formatNote,omitempty"`
	VCodec     *string  `json:"vcodec,omitempty"`
	ACodec     *string  `json:"acodec,omitempty"`
	FPS        *float64 `json:"fps,omitempty"`
}

// PlaylistInfo summarises a playlist without expanding its entries.
type PlaylistInfo struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Uploader   *string         `json:"uploader,omitempty"`
	VideoCount int             `json:"videoCount"`
	Videos     []PlaylistEntry `json:"videos"`
}

// PlaylistEntry is one flat playlist item.
type PlaylistEntry struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Duration  *float64 `json:"duration,omitempty"`
	Thumbnail *string  `json:"thumbnail,omitempty"`
	URL       string   `json:"url"`
}
