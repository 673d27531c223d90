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

import "fmt"

// Level is the most specific resource granularity a locator identifies.
// Ordering matters: a higher level is more specific.
type Level int

const (
	LevelNone Level = iota
	LevelProject
	LevelLocation
	LevelContainer
	LevelItem
	LevelDigest
)

func (l Level) String() string {
	switch l {
	case LevelProject:
		return "project"
	case LevelLocation:
		return "location"
	case LevelContainer:
		return "container"
	case LevelItem:
		return "item"
	case LevelDigest:
		return "digest"
	default:
		return "none"
	}
}

// UnsupportedLevelError reports an operation invoked at a level it is not
// defined for, e.g. a list at the project level.
type UnsupportedLevelError struct {
	Op    string
	Level Level
}

func (e *UnsupportedLevelError) Error() string {
	return fmt.Sprintf("cannot %s at the %s level", e.Op, e.Level)
}
