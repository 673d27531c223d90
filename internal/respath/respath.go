// Copyright 2025 The gcppal authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package respath resolves human-friendly resource paths into structured
// locators. A path may be a fully qualified resource name
// ("projects/P/locations/L/repositories/R/packages/I/versions/sha256:V"),
// a shorthand ("R/I:T", "R/I/sha256:V"), or empty, in which case the
// caller-supplied defaults stand. Parsing is tolerant: segments that are
// absent leave fields unset, they never produce an error.
package respath

import "strings"

// Scheme describes one service's naming grammar: the collection keys that
// appear in fully qualified resource names and the digest marker that
// separates an item from its version in shorthand paths.
type Scheme struct {
	ContainerKey string // e.g. "repositories"
	ItemKey      string // e.g. "packages"
	VersionKey   string // e.g. "versions"
	TagKey       string // e.g. "tags"
	DigestPrefix string // e.g. "sha256:"
}

// Locator is a resolved identifier tuple for a cloud resource. The zero
// value identifies nothing. Locators are values: mutating helpers return a
// copy, and Level and the canonical names are recomputed on every call so
// they can never drift from the fields.
type Locator struct {
	Project   string
	Location  string
	Container string
	Item      string
	Version   string
	Tag       string
}

// Level returns the most specific level the populated fields identify,
// in priority order digest > item > container > location > project.
func (l Locator) Level() Level {
	switch {
	case l.Tag != "" || l.Version != "":
		return LevelDigest
	case l.Item != "":
		return LevelItem
	case l.Container != "":
		return LevelContainer
	case l.Location != "":
		return LevelLocation
	case l.Project != "":
		return LevelProject
	default:
		return LevelNone
	}
}

// WithTag returns a copy with the tag set. A non-empty tag clears the
// version: exactly one of the two is authoritative at the digest level.
func (l Locator) WithTag(tag string) Locator {
	l.Tag = tag
	if tag != "" {
		l.Version = ""
	}
	return l
}

// WithVersion returns a copy with the version set, clearing any tag.
func (l Locator) WithVersion(version string) Locator {
	l.Version = version
	if version != "" {
		l.Tag = ""
	}
	return l
}

// Parse resolves path against defaults. Explicit defaults seed the locator;
// values derived from the path overwrite them. An empty path leaves the
// defaults untouched.
func Parse(path string, defaults Locator, s Scheme) Locator {
	l := defaults
	path = strings.Trim(path, "/")
	if path == "" {
		return l
	}
	if strings.HasPrefix(path, "projects/") {
		return parseQualified(path, l, s)
	}
	return parseShorthand(path, l, s)
}

// parseQualified walks the alternating key/value segments of a fully
// qualified resource name. A path of the form "projects/P" deliberately
// carries no location, so the location default is suppressed rather than
// inherited.
func parseQualified(path string, l Locator, s Scheme) Locator {
	l.Location = ""
	segs := strings.Split(path, "/")
	for i := 0; i+1 < len(segs); i += 2 {
		val := DecodeSegment(segs[i+1])
		switch segs[i] {
		case "projects":
			l.Project = val
		case "locations":
			l.Location = val
		case s.ContainerKey:
			l.Container = val
		case s.ItemKey:
			l.Item = val
		case s.VersionKey:
			l = l.WithVersion(strings.TrimPrefix(val, s.DigestPrefix))
		case s.TagKey:
			l = l.WithTag(val)
		default:
			// Unknown collections are tolerated, not an error.
		}
	}
	return l
}

// parseShorthand splits "container/item..." paths. The tail past the first
// segment is re-joined so that item names containing "/" survive; a digest
// marker inside the tail splits item from version, and a ":" inside the
// item splits item from tag.
func parseShorthand(path string, l Locator, s Scheme) Locator {
	segs := strings.Split(path, "/")
	l.Container = segs[0]
	if len(segs) == 1 {
		return l
	}
	tail := strings.Join(segs[1:], "/")
	if s.DigestPrefix != "" {
		if i := strings.Index(tail, s.DigestPrefix); i >= 0 {
			l = l.WithVersion(tail[i+len(s.DigestPrefix):])
			tail = strings.TrimSuffix(tail[:i], "/")
		}
	}
	if s.TagKey != "" {
		if i := strings.LastIndex(tail, ":"); i >= 0 {
			l = l.WithTag(tail[i+1:])
			tail = tail[:i]
		}
	}
	if tail != "" {
		l.Item = tail
	}
	return l
}

// Parent returns the resource parent used by list requests:
// "projects/P/locations/L", or "projects/P" when no location is set.
func (l Locator) Parent() string {
	switch {
	case l.Project != "" && l.Location != "":
		return "projects/" + l.Project + "/locations/" + l.Location
	case l.Project != "":
		return "projects/" + l.Project
	default:
		return ""
	}
}

// ResourceName builds the canonical fully qualified name at the locator's
// current level. It is a pure function of the fields.
func (l Locator) ResourceName(s Scheme) string {
	level := l.Level()
	if level == LevelNone {
		return ""
	}
	name := "projects/" + l.Project
	if level == LevelProject {
		return name
	}
	name += "/locations/" + l.Location
	if level == LevelLocation {
		return name
	}
	name += "/" + s.ContainerKey + "/" + l.Container
	if level == LevelContainer {
		return name
	}
	name += "/" + s.ItemKey + "/" + EncodeSegment(l.Item)
	if level == LevelItem {
		return name
	}
	if l.Tag != "" {
		return name + "/" + s.TagKey + "/" + l.Tag
	}
	return name + "/" + s.VersionKey + "/" + s.DigestPrefix + l.Version
}

// ShortPath renders the shorthand form of the locator: values only, rooted
// at the container ("R", "R/I", "R/I:T", "R/I/sha256:V"). Feeding the
// result back through Parse with the same project and location defaults
// reproduces the locator.
func (l Locator) ShortPath(s Scheme) string {
	if l.Container == "" {
		return ""
	}
	path := l.Container
	if l.Item == "" {
		return path
	}
	path += "/" + l.Item
	switch {
	case l.Tag != "":
		path += ":" + l.Tag
	case l.Version != "":
		path += "/" + s.DigestPrefix + l.Version
	}
	return path
}

// DecodeSegment reverses the %2F escaping of slashes inside a single
// value segment of a fully qualified name.
func DecodeSegment(s string) string {
	return strings.ReplaceAll(s, "%2F", "/")
}

// EncodeSegment escapes slashes inside a value so it survives as a single
// segment of a fully qualified name.
func EncodeSegment(s string) string {
	return strings.ReplaceAll(s, "/", "%2F")
}
