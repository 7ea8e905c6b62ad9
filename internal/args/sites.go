package args

import (
	"regexp"
	"strings"

	"media-grabber/internal/domain"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

var browserHeaders = []string{
	"Accept-Language:en-US,en;q=0.9",
	"Accept:text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
	"Sec-Fetch-Mode:navigate",
}

type siteProfile struct {
	headers       []string
	extractorArgs string
	filePrefix    string
}

var siteProfiles = map[domain.SiteHint]siteProfile{
	domain.SiteInstagram: {
		headers: []string{
			"X-IG-App-ID:936619743392459",
			"X-IG-WWW-Claim:0",
			"X-ASBD-ID:129477",
			"X-Requested-With:XMLHttpRequest",
			"Referer:https://www.instagram.com/",
		},
		extractorArgs: "instagram:app_id=936619743392459",
		filePrefix:    "instagram",
	},
	domain.SiteTikTok: {
		headers:       []string{"Referer:https://www.tiktok.com/"},
		extractorArgs: "tiktok:app_version=33.6.3",
		filePrefix:    "tiktok",
	},
	domain.SiteTwitter: {
		headers:    []string{"Referer:https://x.com/", "Origin:https://x.com"},
		filePrefix: "twitter",
	},
	domain.SiteFacebook: {
		headers:    []string{"Referer:https://www.facebook.com/"},
		filePrefix: "facebook",
	},
}

func profileFor(hint domain.SiteHint) siteProfile {
	return siteProfiles[hint]
}

var facebookReel = regexp.MustCompile(`^https?://(?:www\.|m\.)?facebook\.com/reel/([^/?#]+)`)

// MobileURL rewrites facebook reel and www links to the mobile site.
// Other URLs are returned unchanged.
func MobileURL(url string) string {
	if m := facebookReel.FindStringSubmatch(url); m != nil {
		return "https://m.facebook.com/watch/?v=" + m[1]
	}
	if strings.Contains(url, "www.facebook.com") {
		return strings.Replace(url, "www.facebook.com", "m.facebook.com", 1)
	}
	return url
}
