package domain

import "strings"

// Operation selects which extractor invocation a MediaRequest describes.
type Operation string

const (
	OperationInfo              Operation = "info"
	OperationFormats           Operation = "formats"
	OperationPlaylist          Operation = "playlist"
	OperationTitle             Operation = "title"
	OperationVideoID           Operation = "video-id"
	OperationSubtitles         Operation = "subtitles"
	OperationDownload          Operation = "download"
	OperationUniversalDownload Operation = "universal-download"
	OperationTranscribe        Operation = "transcribe"
)

// SiteHint names a site that needs its own request headers.
type SiteHint string

const (
	SiteGeneric   SiteHint = ""
	SiteInstagram SiteHint = "instagram"
	SiteTikTok    SiteHint = "tiktok"
	SiteTwitter   SiteHint = "twitter"
	SiteFacebook  SiteHint = "facebook"
	SiteYouTube   SiteHint = "youtube"
)

// ParseSiteHint maps a free-form site name from the UI to a SiteHint.
func ParseSiteHint(raw string) SiteHint {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "instagram", "ig":
		return SiteInstagram
	case "tiktok":
		return SiteTikTok
	case "twitter", "x":
		return SiteTwitter
	case "facebook", "fb":
		return SiteFacebook
	case "youtube", "yt":
		return SiteYouTube
	default:
		return SiteGeneric
	}
}

// DisplayName is the human readable site name.
func (s SiteHint) DisplayName() string {
	switch s {
	case SiteInstagram:
		return "Instagram"
	case SiteTikTok:
		return "TikTok"
	case SiteTwitter:
		return "X"
	case SiteFacebook:
		return "Facebook"
	case SiteYouTube:
		return "YouTube"
	default:
		return "Media"
	}
}

// MediaRequest is one immutable description of work for the extractor.
type MediaRequest struct {
	SourceURL      string
	Operation      Operation
	FormatSelector string
	SiteHint       SiteHint
	AllowPlaylist  bool
	OutputPath     string
}
