// Package sanitize strips markup from user-supplied note text before it is
// persisted or broadcast. Stores assume their input already went through here.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Both policies are built once and never mutated afterwards; bluemonday
// policies are safe for concurrent Sanitize calls only in that state.
var (
	// titlePolicy pads stripped tags with a space so "<b>a</b><b>b</b>"
	// does not collapse into "ab".
	titlePolicy = func() *bluemonday.Policy {
		p := bluemonday.StrictPolicy()
		p.AddSpaceWhenStrippingTag(true)
		return p
	}()

	// textPolicy strips tags without padding so inline markup does not
	// shift the surrounding text of a block.
	textPolicy = bluemonday.StrictPolicy()
)

// Title reduces a note title to a single line of plain text: tags removed,
// entities unescaped, every whitespace run (newlines and NBSP included)
// folded into one space.
//
//   - "<p>hi</p>" -> "hi"
//   - "<b>a</b>\n <b>b</b>" -> "a b"
//   - "Q3&nbsp;&amp;&nbsp;Q4" -> "Q3 & Q4"
func Title(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(titlePolicy.Sanitize(s))), " ")
}

// Text strips HTML from multi-line block content. Unlike Title it keeps
// the author's whitespace intact: indentation and blank lines survive,
// only tags are removed and entities unescaped.
//
//   - "<b>todo</b>\n  - item" -> "todo\n  - item"
//   - "a &amp; b" -> "a & b"
func Text(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	return html.UnescapeString(textPolicy.Sanitize(s))
}
