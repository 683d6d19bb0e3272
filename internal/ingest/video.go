package ingest

import (
	"errors"
	"net/url"
	"strings"
)

var ErrInvalidVideoURL = errors.New("video URL not recognized")

// ParseVideoID extracts the short video identifier from a YouTube URL.
// Supported shapes: youtu.be short links, /watch?v=, /embed/ and /v/ paths.
func ParseVideoID(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", ErrInvalidVideoURL
	}
	host := strings.ToLower(u.Hostname())
	switch host {
	case "youtu.be":
		if id := strings.Trim(u.Path, "/"); id != "" {
			return firstSegment(id), nil
		}
	case "youtube.com", "www.youtube.com", "m.youtube.com":
		if u.Path == "/watch" {
			if id := u.Query().Get("v"); id != "" {
				return id, nil
			}
		}
		for _, prefix := range []string{"/embed/", "/v/"} {
			if strings.HasPrefix(u.Path, prefix) {
				if id := firstSegment(u.Path[len(prefix):]); id != "" {
					return id, nil
				}
			}
		}
	}
	return "", ErrInvalidVideoURL
}

func firstSegment(p string) string {
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return p
}
