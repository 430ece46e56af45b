package domain

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// SourceKind identifies how markup is acquired.
type SourceKind string

// Source kinds.
const (
	// SourceFile is a local file path.
	SourceFile SourceKind = "file"

	// SourceURL is an http or https URL.
	SourceURL SourceKind = "url"

	// SourceStdin reads markup from standard input.
	SourceStdin SourceKind = "stdin"
)

// StdinLocation is the location string that selects standard input.
const StdinLocation = "-"

// Source represents a location markup is read from.
type Source struct {
	// Location is the path or URL as given by the user.
	Location string

	// Kind is derived from Location.
	Kind SourceKind
}

// ParseSource classifies a location string.
// http and https URLs are SourceURL, "-" is SourceStdin, everything else is a file path.
// file:// URIs are converted to plain paths.
func ParseSource(location string) Source {
	location = strings.TrimSpace(location)
	if location == StdinLocation || location == "" {
		return Source{Location: StdinLocation, Kind: SourceStdin}
	}

	lower := strings.ToLower(location)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return Source{Location: location, Kind: SourceURL}
	case strings.HasPrefix(lower, "file://"):
		return Source{Location: location[len("file://"):], Kind: SourceFile}
	default:
		return Source{Location: location, Kind: SourceFile}
	}
}

// IsRemote returns true for network sources.
func (s Source) IsRemote() bool {
	return s.Kind == SourceURL
}

// BaseName returns a filesystem-safe stem used to name output files.
// For files it is the file name without extension. For URLs it is the
// last path segment without extension, or the host when the path is empty.
func (s Source) BaseName() string {
	var base string
	switch s.Kind {
	case SourceStdin:
		return "stdin"
	case SourceURL:
		u, err := url.Parse(s.Location)
		if err != nil {
			return "webpage"
		}
		base = path.Base(u.Path)
		if base == "/" || base == "." || base == "" {
			base = u.Hostname()
		} else {
			base = strings.TrimSuffix(base, path.Ext(base))
		}
	default:
		base = filepath.Base(s.Location)
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	base = sanitiseName(base)
	if base == "" {
		return "webpage"
	}
	return base
}

// TableFileName names the output file of the table at index (zero-based)
// as <base>_table_<n>.<ext>, with n counting from 1.
func (s Source) TableFileName(index int, format OutputFormat) string {
	return fmt.Sprintf("%s_table_%d.%s", s.BaseName(), index+1, format.Extension())
}

// sanitiseName replaces characters that are awkward in file names.
func sanitiseName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '?', '&', '=', '#', '%', ':', '/', '\\', '*', '"', '<', '>', '|', ' ':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return strings.ToLower(b.String())
}
