// Package linkparse extracts platform media links from free-form share text.
// Share messages pasted from mobile apps wrap the URL in promotional text and
// sometimes carry the title in CJK brackets; both are recovered here.
package linkparse

import (
	"net/url"
	"regexp"
	"strings"
)

// Link is one recognized media link found in a piece of text.
type Link struct {
	URL          string
	Platform     string
	PlatformName string
	MediaID      string
	Title        string
}

type platformRule struct {
	id       string
	name     string
	domains  []string
	patterns []*regexp.Regexp
	idRules  []*regexp.Regexp
}

// Rule order matters: the first matching platform wins.
var platformRules = []platformRule{
	{
		id:      "douyin",
		name:    "抖音",
		domains: []string{"douyin.com", "iesdouyin.com", "v.douyin.com"},
		patterns: compileAll(
			`^https?://v\.douyin\.com/[A-Za-z0-9_-]+/?`,
			`^https?://www\.douyin\.com/video/\d+`,
			`^https?://www\.iesdouyin\.com/share/video/\d+`,
		),
		idRules: compileAll(
			`v\.douyin\.com/([A-Za-z0-9_-]+)`,
			`/video/(\d+)`,
		),
	},
	{
		id:      "tiktok",
		name:    "TikTok",
		domains: []string{"tiktok.com", "vm.tiktok.com"},
		patterns: compileAll(
			`^https?://(?:www\.)?tiktok\.com/@[^/]+/video/\d+`,
			`^https?://vm\.tiktok\.com/[A-Za-z0-9]+/?`,
			`^https?://(?:www\.)?tiktok\.com/t/[A-Za-z0-9]+/?`,
		),
		idRules: compileAll(
			`/video/(\d+)`,
			`vm\.tiktok\.com/([A-Za-z0-9]+)`,
		),
	},
	{
		id:      "bilibili",
		name:    "Bilibili",
		domains: []string{"bilibili.com", "b23.tv"},
		patterns: compileAll(
			`^https?://www\.bilibili\.com/video/[A-Za-z0-9]+/?`,
			`^https?://b23\.tv/[A-Za-z0-9]+/?`,
			`^https?://(?:www\.)?bilibili\.com/video/av\d+/?`,
			`^https?://(?:www\.)?bilibili\.com/video/BV[A-Za-z0-9]+/?`,
		),
		idRules: compileAll(
			`/video/(BV[A-Za-z0-9]+)`,
			`/video/(av\d+)`,
			`b23\.tv/([A-Za-z0-9]+)`,
		),
	},
	{
		id:      "youtube",
		name:    "YouTube",
		domains: []string{"youtube.com", "youtu.be"},
		patterns: compileAll(
			`^https?://(?:www\.)?youtube\.com/watch\?v=[A-Za-z0-9_-]+`,
			`^https?://youtu\.be/[A-Za-z0-9_-]+`,
			`^https?://(?:www\.)?youtube\.com/embed/[A-Za-z0-9_-]+`,
		),
		idRules: compileAll(
			`[?&]v=([A-Za-z0-9_-]+)`,
			`youtu\.be/([A-Za-z0-9_-]+)`,
		),
	},
	{
		id:      "xiaohongshu",
		name:    "小红书",
		domains: []string{"xiaohongshu.com", "xhslink.com"},
		patterns: compileAll(
			`^https?://(?:www\.)?xiaohongshu\.com/explore/[A-Za-z0-9]+/?`,
			`^https?://xhslink\.com/[A-Za-z0-9]+/?`,
		),
		idRules: compileAll(
			`/explore/([A-Za-z0-9]+)`,
			`xhslink\.com/([A-Za-z0-9]+)`,
		),
	},
	{
		id:      "kuaishou",
		name:    "快手",
		domains: []string{"kuaishou.com", "chenzhongtech.com"},
		patterns: compileAll(
			`^https?://(?:www\.)?kuaishou\.com/short-video/[A-Za-z0-9]+`,
			`^https?://v\.chenzhongtech\.com/[A-Za-z0-9]+/?`,
		),
		idRules: compileAll(
			`/short-video/([A-Za-z0-9]+)`,
			`chenzhongtech\.com/([A-Za-z0-9]+)`,
		),
	},
}

var (
	// URL candidates stop at whitespace or CJK text glued onto the link.
	urlPattern      = regexp.MustCompile(`https?://[^\s\x{4e00}-\x{9fff}]+`)
	trailingPunct   = regexp.MustCompile(`[,.;:!?。，；：！？]+$`)
	titleBrackets   = compileAll(`《([^》]+)》`, `"([^"]+)"`, `【([^】]+)】`)
	fallbackIDChars = 12
)

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(e))
	}
	return out
}

// ExtractURLs returns every URL-shaped substring of text, trailing
// punctuation removed.
func ExtractURLs(text string) []string {
	raw := urlPattern.FindAllString(text, -1)
	cleaned := make([]string, 0, len(raw))
	for _, u := range raw {
		cleaned = append(cleaned, trailingPunct.ReplaceAllString(u, ""))
	}
	return cleaned
}

// IdentifyPlatform classifies a single URL. It returns the platform id and
// display name, or empty strings when no rule matches.
func IdentifyPlatform(rawURL string) (string, string) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", ""
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")

	for _, rule := range platformRules {
		for _, d := range rule.domains {
			if host == d || strings.HasSuffix(host, "."+d) {
				return rule.id, rule.name
			}
		}
		for _, p := range rule.patterns {
			if p.MatchString(rawURL) {
				return rule.id, rule.name
			}
		}
	}
	return "", ""
}

// ExtractMediaID pulls the platform-specific opaque content id out of a URL.
func ExtractMediaID(rawURL, platform string) string {
	for _, rule := range platformRules {
		if rule.id != platform {
			continue
		}
		for _, r := range rule.idRules {
			if m := r.FindStringSubmatch(rawURL); m != nil {
				return m[1]
			}
		}
	}
	return ""
}

// ExtractTitle scans text for a bracketed title candidate. Bracket styles are
// tried in fixed precedence: 《》, straight double quotes, 【】.
func ExtractTitle(text string) string {
	for _, r := range titleBrackets {
		if m := r.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

// ExtractLinks parses share text into recognized media links. The title scan
// runs over the original text, not the URLs.
func ExtractLinks(text string) []Link {
	title := ExtractTitle(text)

	var links []Link
	for _, u := range ExtractURLs(text) {
		id, name := IdentifyPlatform(u)
		if id == "" {
			continue
		}
		links = append(links, Link{
			URL:          u,
			Platform:     id,
			PlatformName: name,
			MediaID:      ExtractMediaID(u, id),
			Title:        title,
		})
	}
	return links
}

// CanonicalURL returns the first recognized media URL in text, or the
// trimmed input verbatim when nothing matches. It never fails.
func CanonicalURL(text string) string {
	if links := ExtractLinks(text); len(links) > 0 {
		return links[0].URL
	}
	return strings.TrimSpace(text)
}

// GenerateTitle builds a display title for a task from share text.
func GenerateTitle(text string) string {
	links := ExtractLinks(text)
	if len(links) == 0 {
		return "视频任务"
	}

	link := links[0]
	if link.Title != "" {
		return link.PlatformName + " - " + link.Title
	}
	if link.MediaID != "" {
		return link.PlatformName + "视频 - " + link.MediaID
	}
	return link.PlatformName + "视频 - " + tail(link.URL, fallbackIDChars)
}

func tail(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
