package metadata

import (
	"bytes"
	"net/url"
	"regexp"

	"github.com/pkg/xattr"
	"howett.net/plist"
)

// Attributes where browsers record the download origin.
var provenanceAttributes = []string{
	"com.apple.metadata:kMDItemWhereFroms",
	"user.xdg.origin.url",
}

var urlPattern = regexp.MustCompile(`https?://[^\s"')\x00-\x1f]+`)

// SourceDomain returns the host of the first URL found in the provenance
// attributes, or "".
func SourceDomain(path string) string {
	for _, attr := range provenanceAttributes {
		raw, err := xattr.Get(path, attr)
		if err != nil || len(raw) == 0 {
			continue
		}
		if host := firstURLHost(raw); host != "" {
			return host
		}
	}
	return ""
}

// firstURLHost reads kMDItemWhereFroms as a property list of strings; string
// objects there are length-prefixed and not separated, so they are decoded
// rather than scanned. Other values are scanned as text.
func firstURLHost(raw []byte) string {
	if bytes.HasPrefix(raw, []byte("bplist")) || bytes.HasPrefix(raw, []byte("<?xml")) {
		var froms []string
		if _, err := plist.Unmarshal(raw, &froms); err == nil {
			for _, from := range froms {
				if host := hostOf(urlPattern.FindString(from)); host != "" {
					return host
				}
			}
			return ""
		}
	}
	return hostOf(string(urlPattern.Find(raw)))
}

func hostOf(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}
