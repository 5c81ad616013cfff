/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package diagnostic is the structured error envelope surfaced to the host.
// Every fatal or recorded condition the core produces is a tagged *Error
// rather than a free-form string, so a host can branch on Tag and read
// tag-specific fields (available exports, a cycle path, a byte position)
// without parsing message text.
package diagnostic

import "fmt"

// Tag identifies the category of a diagnostic. The set is closed and
// matches the wire envelope; additive evolution happens by widening this
// set and bumping EnvelopeVersion, never by repurposing an existing tag.
type Tag string

const (
	TagMdxSyntax          Tag = "MdxSyntax"
	TagMissingExport      Tag = "MissingExport"
	TagTransform          Tag = "Transform"
	TagCircularDependency Tag = "CircularDependency"
	TagInvalidEntry       Tag = "InvalidEntry"
	TagNoEntries          Tag = "NoEntries"
	TagInvalidConfig      Tag = "InvalidConfig"
	TagPlugin             Tag = "Plugin"
	TagRuntime            Tag = "Runtime"
	TagValidation         Tag = "Validation"
	TagMultiple           Tag = "Multiple"

	// Walk errors, fatal per §7.
	TagMaxDepthExceeded  Tag = "MaxDepthExceeded"
	TagTooManyModules    Tag = "TooManyModules"
	TagPathTraversal     Tag = "PathTraversal"
	TagFileTooLarge      Tag = "FileTooLarge"
	TagTooManyScriptTags Tag = "TooManyScriptTags"
	TagUnclosedScriptTag Tag = "UnclosedScriptTag"
)

// EnvelopeVersion is the wire-form version stamped on every serialized
// envelope, per the core→host error contract.
const EnvelopeVersion uint32 = 1

// Position is a byte offset plus the line/column it corresponds to.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

// Error is the single tagged record the core returns for any fatal
// condition and records for any non-fatal one.
type Error struct {
	Tag     Tag       `json:"type"`
	Message string    `json:"message"`
	File    string    `json:"file,omitempty"`
	Pos     *Position `json:"position,omitempty"`
	Hint    string    `json:"hint,omitempty"`

	// Tag-specific fields. Only the ones relevant to Tag are populated;
	// the rest are left at their zero value.
	AvailableExports []string `json:"available_exports,omitempty"`
	CyclePath        []string `json:"cycle_path,omitempty"`
	Count            int      `json:"count,omitempty"`
	Max              int      `json:"max,omitempty"`
	Size             int64    `json:"size,omitempty"`
	Depth            int      `json:"depth,omitempty"`
	Children         []*Error `json:"children,omitempty"`
}

// Error implements the error interface so *Error can flow through normal
// Go error-handling paths (wrapping, errors.As) in addition to being
// serialized to the host.
func (e *Error) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%s: %s", e.Tag, e.Message)
	}
	if e.Pos != nil {
		return fmt.Sprintf("%s: %s (%s:%d:%d)", e.Tag, e.Message, e.File, e.Pos.Line, e.Pos.Column)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Tag, e.Message, e.File)
}

// Envelope is the versioned wire form (§6): {version, error}.
type Envelope struct {
	Version uint32 `json:"version"`
	Error   *Error `json:"error"`
}

// Wrap produces the versioned envelope for a single error.
func Wrap(err *Error) Envelope {
	return Envelope{Version: EnvelopeVersion, Error: err}
}

// Multiple groups several diagnostics from a single parse under one
// top-level TagMultiple error, per §7's "User-visible behavior".
func Multiple(errs []*Error) *Error {
	if len(errs) == 1 {
		return errs[0]
	}
	return &Error{
		Tag:      TagMultiple,
		Message:  fmt.Sprintf("%d diagnostics reported", len(errs)),
		Children: errs,
	}
}

// NoEntries reports that the build was given zero entry points.
func NoEntries() *Error {
	return &Error{Tag: TagNoEntries, Message: "no entry points were provided"}
}

// InvalidEntry reports that an entry path could not be used to start a walk.
func InvalidEntry(path, reason string) *Error {
	return &Error{Tag: TagInvalidEntry, Message: reason, File: path}
}

// InvalidConfig reports a malformed or contradictory configuration value.
func InvalidConfig(msg string) *Error {
	return &Error{Tag: TagInvalidConfig, Message: msg}
}

// MaxDepthExceeded reports that the BFS walk exceeded its configured depth bound.
func MaxDepthExceeded(depth, max int) *Error {
	return &Error{
		Tag:     TagMaxDepthExceeded,
		Message: fmt.Sprintf("walk exceeded maximum depth %d", max),
		Depth:   depth,
		Max:     max,
	}
}

// TooManyModules reports that the walk exceeded its configured module-count bound.
func TooManyModules(n, max int) *Error {
	return &Error{
		Tag:     TagTooManyModules,
		Message: fmt.Sprintf("walk discovered more than %d modules", max),
		Count:   n,
		Max:     max,
	}
}

// PathTraversal reports that a resolved path escaped the configured cwd.
func PathTraversal(path, cwd string) *Error {
	return &Error{
		Tag:     TagPathTraversal,
		Message: fmt.Sprintf("resolved path %q escapes root %q", path, cwd),
		File:    path,
		Hint:    cwd,
	}
}

// FileTooLarge reports that a candidate module exceeded the size bound.
func FileTooLarge(path string, size int64, max int64) *Error {
	return &Error{
		Tag:     TagFileTooLarge,
		Message: fmt.Sprintf("file exceeds maximum size of %d bytes", max),
		File:    path,
		Size:    size,
		Max:     int(max),
	}
}

// TooManyScriptTags reports an SFC with more <script> blocks than allowed.
func TooManyScriptTags(path string, count, max int) *Error {
	return &Error{
		Tag:     TagTooManyScriptTags,
		Message: fmt.Sprintf("found %d <script> tags, maximum is %d", count, max),
		File:    path,
		Count:   count,
		Max:     max,
	}
}

// UnclosedScriptTag reports a <script> opening tag with no matching close.
func UnclosedScriptTag(path string, pos Position) *Error {
	return &Error{
		Tag:     TagUnclosedScriptTag,
		Message: "unclosed <script> tag",
		File:    path,
		Pos:     &pos,
	}
}

// CircularDependency reports a cycle discovered among local imports.
func CircularDependency(cycle []string) *Error {
	return &Error{
		Tag:       TagCircularDependency,
		Message:   "circular dependency detected",
		CyclePath: cycle,
	}
}

// MissingExport reports an import naming an export the target module does
// not provide, with the target's actual exports offered as a hint.
func MissingExport(importer, exportName string, available []string) *Error {
	return &Error{
		Tag:              TagMissingExport,
		Message:          fmt.Sprintf("module has no export named %q", exportName),
		File:             importer,
		AvailableExports: available,
	}
}

// Runtime wraps a host I/O failure verbatim, per §7.
func Runtime(path string, cause error) *Error {
	return &Error{Tag: TagRuntime, Message: cause.Error(), File: path}
}
