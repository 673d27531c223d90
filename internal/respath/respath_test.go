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

package respath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var registryScheme = Scheme{
	ContainerKey: "repositories",
	ItemKey:      "packages",
	VersionKey:   "versions",
	TagKey:       "tags",
	DigestPrefix: "sha256:",
}

func TestParseQualifiedDigestPath(t *testing.T) {
	l := Parse("projects/p1/locations/us/repositories/r1/packages/img1/versions/sha256:abc123", Locator{}, registryScheme)

	assert.Equal(t, Locator{
		Project:   "p1",
		Location:  "us",
		Container: "r1",
		Item:      "img1",
		Version:   "abc123",
	}, l)
	assert.Equal(t, LevelDigest, l.Level())
}

func TestParseQualifiedPartialPaths(t *testing.T) {
	testCases := []struct {
		name string
		path string
		want Locator
	}{
		{
			name: "project_only",
			path: "projects/p1",
			want: Locator{Project: "p1"},
		},
		{
			name: "location",
			path: "projects/p1/locations/europe-west2",
			want: Locator{Project: "p1", Location: "europe-west2"},
		},
		{
			name: "repository",
			path: "projects/p1/locations/us/repositories/r1",
			want: Locator{Project: "p1", Location: "us", Container: "r1"},
		},
		{
			name: "tag",
			path: "projects/p1/locations/us/repositories/r1/packages/img1/tags/latest",
			want: Locator{Project: "p1", Location: "us", Container: "r1", Item: "img1", Tag: "latest"},
		},
		{
			name: "escaped_item",
			path: "projects/p1/locations/us/repositories/r1/packages/team%2Fimg1",
			want: Locator{Project: "p1", Location: "us", Container: "r1", Item: "team/img1"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Parse(tc.path, Locator{}, registryScheme))
		})
	}
}

func TestParseQualifiedProjectOnlySuppressesLocationDefault(t *testing.T) {
	defaults := Locator{Project: "default-p", Location: "europe-west2"}

	l := Parse("projects/p1", defaults, registryScheme)

	assert.Equal(t, "p1", l.Project)
	assert.Empty(t, l.Location)
	assert.Equal(t, LevelProject, l.Level())
}

func TestParseShorthand(t *testing.T) {
	testCases := []struct {
		name string
		path string
		want Locator
	}{
		{
			name: "repository",
			path: "r1",
			want: Locator{Container: "r1"},
		},
		{
			name: "image",
			path: "r1/img1",
			want: Locator{Container: "r1", Item: "img1"},
		},
		{
			name: "image_with_tag",
			path: "r1/img1:latest",
			want: Locator{Container: "r1", Item: "img1", Tag: "latest"},
		},
		{
			name: "image_with_digest",
			path: "r1/img1/sha256:abc123",
			want: Locator{Container: "r1", Item: "img1", Version: "abc123"},
		},
		{
			name: "nested_image",
			path: "r1/team/img1",
			want: Locator{Container: "r1", Item: "team/img1"},
		},
		{
			name: "nested_image_with_digest",
			path: "r1/team/img1/sha256:abc123",
			want: Locator{Container: "r1", Item: "team/img1", Version: "abc123"},
		},
		{
			name: "nested_image_with_tag",
			path: "r1/team/img1:v2",
			want: Locator{Container: "r1", Item: "team/img1", Tag: "v2"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Parse(tc.path, Locator{}, registryScheme))
		})
	}
}

func TestParseDefaultsSeedAndPathOverwrites(t *testing.T) {
	defaults := Locator{Project: "p1", Location: "europe-west2", Container: "old"}

	l := Parse("r1/img1", defaults, registryScheme)

	assert.Equal(t, "p1", l.Project)
	assert.Equal(t, "europe-west2", l.Location)
	assert.Equal(t, "r1", l.Container)
	assert.Equal(t, "img1", l.Item)
}

func TestParseEmptyPathKeepsDefaults(t *testing.T) {
	defaults := Locator{Project: "p1", Location: "us"}

	assert.Equal(t, defaults, Parse("", defaults, registryScheme))
	assert.Equal(t, LevelLocation, defaults.Level())
}

func TestTagAndVersionAreMutuallyExclusive(t *testing.T) {
	l := Locator{Container: "r1", Item: "img1"}

	l = l.WithVersion("abc123")
	assert.Equal(t, "abc123", l.Version)

	l = l.WithTag("latest")
	assert.Empty(t, l.Version, "setting a tag must clear the version")
	assert.Equal(t, "latest", l.Tag)

	l = l.WithVersion("def456")
	assert.Empty(t, l.Tag, "setting a version must clear the tag")
	assert.Equal(t, "def456", l.Version)
}

func TestLevelPriority(t *testing.T) {
	testCases := []struct {
		name string
		l    Locator
		want Level
	}{
		{"none", Locator{}, LevelNone},
		{"project", Locator{Project: "p"}, LevelProject},
		{"location", Locator{Project: "p", Location: "l"}, LevelLocation},
		{"container", Locator{Project: "p", Location: "l", Container: "c"}, LevelContainer},
		{"item", Locator{Project: "p", Location: "l", Container: "c", Item: "i"}, LevelItem},
		{"version", Locator{Project: "p", Location: "l", Container: "c", Item: "i", Version: "v"}, LevelDigest},
		{"tag", Locator{Project: "p", Location: "l", Container: "c", Item: "i", Tag: "t"}, LevelDigest},
		{"tag_without_project", Locator{Container: "c", Item: "i", Tag: "t"}, LevelDigest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.l.Level())
		})
	}
}

func TestResourceNameByLevel(t *testing.T) {
	base := Locator{Project: "p1", Location: "us", Container: "r1", Item: "img1"}

	testCases := []struct {
		name string
		l    Locator
		want string
	}{
		{"project", Locator{Project: "p1"}, "projects/p1"},
		{"location", Locator{Project: "p1", Location: "us"}, "projects/p1/locations/us"},
		{"container", Locator{Project: "p1", Location: "us", Container: "r1"}, "projects/p1/locations/us/repositories/r1"},
		{"item", base, "projects/p1/locations/us/repositories/r1/packages/img1"},
		{"version", base.WithVersion("abc123"), "projects/p1/locations/us/repositories/r1/packages/img1/versions/sha256:abc123"},
		{"tag", base.WithTag("latest"), "projects/p1/locations/us/repositories/r1/packages/img1/tags/latest"},
		{"none", Locator{}, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.l.ResourceName(registryScheme))
		})
	}
}

func TestResourceNameRoundTrip(t *testing.T) {
	locators := []Locator{
		{Project: "p1"},
		{Project: "p1", Location: "us"},
		{Project: "p1", Location: "us", Container: "r1"},
		{Project: "p1", Location: "us", Container: "r1", Item: "img1"},
		{Project: "p1", Location: "us", Container: "r1", Item: "team/img1"},
		{Project: "p1", Location: "us", Container: "r1", Item: "img1", Version: "abc123"},
		{Project: "p1", Location: "us", Container: "r1", Item: "img1", Tag: "latest"},
	}

	for _, want := range locators {
		got := Parse(want.ResourceName(registryScheme), Locator{}, registryScheme)
		assert.Equal(t, want, got, "round-trip through %q", want.ResourceName(registryScheme))
	}
}

func TestShortPathRoundTrip(t *testing.T) {
	defaults := Locator{Project: "p1", Location: "us"}
	locators := []Locator{
		{Project: "p1", Location: "us", Container: "r1"},
		{Project: "p1", Location: "us", Container: "r1", Item: "img1"},
		{Project: "p1", Location: "us", Container: "r1", Item: "team/img1"},
		{Project: "p1", Location: "us", Container: "r1", Item: "img1", Version: "abc123"},
		{Project: "p1", Location: "us", Container: "r1", Item: "img1", Tag: "latest"},
	}

	for _, want := range locators {
		got := Parse(want.ShortPath(registryScheme), defaults, registryScheme)
		assert.Equal(t, want, got, "round-trip through %q", want.ShortPath(registryScheme))
	}
}

func TestParent(t *testing.T) {
	assert.Equal(t, "projects/p1/locations/us", Locator{Project: "p1", Location: "us"}.Parent())
	assert.Equal(t, "projects/p1", Locator{Project: "p1"}.Parent())
	assert.Empty(t, Locator{}.Parent())
}

func TestUnsupportedLevelError(t *testing.T) {
	err := &UnsupportedLevelError{Op: "list", Level: LevelProject}
	assert.EqualError(t, err, "cannot list at the project level")
}
