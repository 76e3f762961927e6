package components

import "strings"

// LinkData is a short link. The builder encodes it before the QR code has a
// destination of its own.
type LinkData struct {
	Domain    string
	ShortCode string
}

// URL is the https URL of the link. An empty ShortCode addresses the domain
// root.
func (l LinkData) URL() string {
	domain := strings.TrimRight(strings.TrimPrefix(strings.TrimPrefix(l.Domain, "https://"), "http://"), "/")
	if domain == "" {
		return ""
	}
	if l.ShortCode == "" {
		return "https://" + domain
	}
	return "https://" + domain + "/" + strings.TrimLeft(l.ShortCode, "/")
}
