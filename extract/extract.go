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

// Package extract pulls <script> blocks out of single-file component
// formats (Vue and Svelte) ahead of parsing. It never runs an HTML parser
// over the whole document; a linear byte scan is enough to find script
// boundaries and their attributes, the way the teacher's trace package
// scanned for <script> tags before handing them to the tree-sitter pass.
package extract

import (
	"bytes"

	"bennypowers.dev/fob/internal/diagnostic"
)

// MaxFileSize is the hard ceiling on an SFC source file, per §4.A.
const MaxFileSize = 10 << 20 // 10 MiB

// MaxScriptTags is the hard ceiling on <script> blocks per file, per §4.A.
const MaxScriptTags = 8

// Context tags the role a script block plays within its component.
type Context int

const (
	// ContextDefault is a plain <script> with no special attribute.
	ContextDefault Context = iota
	// ContextSetup is Vue's <script setup>.
	ContextSetup
	// ContextModule is Svelte's <script context="module">.
	ContextModule
)

func (c Context) String() string {
	switch c {
	case ContextSetup:
		return "setup"
	case ContextModule:
		return "module"
	default:
		return "default"
	}
}

// Script is one extracted <script> block.
type Script struct {
	Content []byte
	Offset  int
	Context Context
	Lang    string
}

// Extract scans source for <script> blocks and returns them in source
// order. Joining multiple blocks into parser input is left to the caller
// (the module parser), per §4.A's ordering rule.
func Extract(path string, source []byte) ([]Script, error) {
	if len(source) > MaxFileSize {
		return nil, diagnostic.FileTooLarge(path, int64(len(source)), MaxFileSize)
	}

	var scripts []Script
	i := 0
	for {
		open := indexTag(source, i)
		if open < 0 {
			break
		}
		if len(scripts) >= MaxScriptTags {
			return nil, diagnostic.TooManyScriptTags(path, len(scripts)+1, MaxScriptTags)
		}

		attrEnd, attrs, ok := scanTagEnd(source, open+len("<script"))
		if !ok {
			line, col := lineCol(source, open)
			return nil, diagnostic.UnclosedScriptTag(path, diagnostic.Position{
				Line: line, Column: col, Offset: open,
			})
		}

		ctx, lang := classifyAttrs(attrs)
		selfClosing := attrEnd.selfClosing

		if selfClosing {
			scripts = append(scripts, Script{
				Content: nil,
				Offset:  attrEnd.pos,
				Context: ctx,
				Lang:    lang,
			})
			i = attrEnd.pos
			continue
		}

		closeStart := bytes.Index(source[attrEnd.pos:], []byte("</script>"))
		if closeStart < 0 {
			line, col := lineCol(source, open)
			return nil, diagnostic.UnclosedScriptTag(path, diagnostic.Position{
				Line: line, Column: col, Offset: open,
			})
		}
		contentStart := attrEnd.pos
		contentEnd := attrEnd.pos + closeStart
		scripts = append(scripts, Script{
			Content: source[contentStart:contentEnd],
			Offset:  contentStart,
			Context: ctx,
			Lang:    lang,
		})
		i = contentEnd + len("</script>")
	}

	return scripts, nil
}

// indexTag finds the next "<script" occurrence starting at or after from,
// disqualifying matches whose next byte is not a tag terminator (so
// "<scripts>" or "<scripting>" never match).
func indexTag(source []byte, from int) int {
	needle := []byte("<script")
	for {
		rel := bytes.Index(source[from:], needle)
		if rel < 0 {
			return -1
		}
		pos := from + rel
		next := pos + len(needle)
		if next < len(source) {
			c := source[next]
			if !isTagTerminator(c) {
				from = pos + 1
				continue
			}
		}
		return pos
	}
}

func isTagTerminator(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '>' || c == '/'
}

type tagEnd struct {
	pos         int
	selfClosing bool
}

// scanTagEnd reads attribute text starting at pos (just after "<script")
// until the closing '>', tracking quoted regions so a '>' inside a quoted
// attribute value does not terminate the tag early. Returns the position
// just past the '>' and the raw attribute bytes.
func scanTagEnd(source []byte, pos int) (tagEnd, []byte, bool) {
	start := pos
	var quote byte
	for pos < len(source) {
		c := source[pos]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			pos++
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
			pos++
		case '>':
			selfClosing := pos > start && source[pos-1] == '/'
			attrs := source[start:pos]
			if selfClosing {
				attrs = source[start : pos-1]
			}
			return tagEnd{pos: pos + 1, selfClosing: selfClosing}, attrs, true
		default:
			pos++
		}
	}
	return tagEnd{}, nil, false
}

// classifyAttrs extracts the context and language hint from raw attribute
// bytes, per §4.A's attribute policy: lang is case-sensitive, empty or
// whitespace-only defaults to "js", unquoted values terminate at
// whitespace or '>' (already guaranteed since scanTagEnd stopped at '>').
func classifyAttrs(attrs []byte) (Context, string) {
	ctx := ContextDefault
	lang := "js"

	if hasAttr(attrs, "setup") {
		ctx = ContextSetup
	}
	if v, ok := attrValue(attrs, "context"); ok && trimSpace(v) == "module" {
		ctx = ContextModule
	}
	if v, ok := attrValue(attrs, "lang"); ok {
		if t := trimSpace(v); t != "" {
			lang = t
		}
	}
	return ctx, lang
}

func hasAttr(attrs []byte, name string) bool {
	_, ok := attrValue(attrs, name)
	if ok {
		return true
	}
	return bytes.Contains(attrs, []byte(name))
}

// attrValue looks for name="value", name='value', or name=value (unquoted,
// terminated by whitespace) within attrs.
func attrValue(attrs []byte, name string) (string, bool) {
	key := []byte(name + "=")
	idx := bytes.Index(attrs, key)
	if idx < 0 {
		return "", false
	}
	rest := attrs[idx+len(key):]
	if len(rest) == 0 {
		return "", true
	}
	switch rest[0] {
	case '"', '\'':
		q := rest[0]
		end := bytes.IndexByte(rest[1:], q)
		if end < 0 {
			return "", true
		}
		return string(rest[1 : 1+end]), true
	default:
		end := 0
		for end < len(rest) && !isTagTerminator(rest[end]) {
			end++
		}
		return string(rest[:end]), true
	}
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func lineCol(source []byte, pos int) (line, col int) {
	line = 1
	lastNL := -1
	for i := 0; i < pos && i < len(source); i++ {
		if source[i] == '\n' {
			line++
			lastNL = i
		}
	}
	col = pos - lastNL
	return line, col
}

// Join concatenates extracted scripts into parser input, module-scope
// script first so exported bindings precede the instance script, per
// §4.A's ordering rule.
func Join(scripts []Script) []byte {
	var module, instance [][]byte
	for _, s := range scripts {
		if s.Context == ContextModule {
			module = append(module, s.Content)
		} else {
			instance = append(instance, s.Content)
		}
	}
	var out bytes.Buffer
	for i, b := range module {
		if i > 0 {
			out.WriteByte('\n')
		}
		out.Write(b)
	}
	if len(module) > 0 && len(instance) > 0 {
		out.WriteByte('\n')
	}
	for i, b := range instance {
		if i > 0 {
			out.WriteByte('\n')
		}
		out.Write(b)
	}
	return out.Bytes()
}

// DominantLang picks the language hint to parse Join's output with: the
// first non-"js" hint wins, since a single TS script anywhere in an SFC
// means the whole concatenated unit needs TypeScript syntax support.
func DominantLang(scripts []Script) string {
	for _, s := range scripts {
		if s.Lang != "js" {
			return s.Lang
		}
	}
	return "js"
}
