package ingest

import (
	"errors"
	"strings"
)

// Open picks a Source for location: an http(s):// or ftp:// URL, or a file path.
func Open(location string) (Source, error) {
	location = strings.TrimSpace(location)
	switch {
	case location == "":
		return nil, errors.New("no data source configured")
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return NewHTTPSource(location), nil
	case strings.HasPrefix(location, "ftp://"):
		return NewFTPSource(location)
	default:
		return NewFileSource(strings.TrimPrefix(location, "file://")), nil
	}
}
