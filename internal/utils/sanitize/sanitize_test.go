package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "wrapping tag", input: "<p>hi</p>", want: "hi"},
		{name: "adjacent tags keep a gap", input: "<b>a</b><b>b</b>", want: "a b"},
		{name: "surrounding whitespace", input: "  <p>Hello</p>  ", want: "Hello"},
		{name: "plain text", input: "Sprint plan", want: "Sprint plan"},
		{name: "empty", input: "", want: ""},
		{name: "script dropped", input: `  <script>alert('xss')</script>Hello world  `, want: "Hello world"},
		{name: "handler attributes dropped", input: `<img src=x onerror=alert(1)><p onclick="x()">Safe</p>`, want: "Safe"},
		{name: "newlines folded", input: "Weekly\n\n  sync", want: "Weekly sync"},
		{name: "nbsp and entities", input: "Q3&nbsp;&amp;&nbsp;Q4", want: "Q3 & Q4"},
		{name: "markdown kept", input: "**bold** [link](http://example.com)", want: "**bold** [link](http://example.com)"},
		{
			name:  "nested markup",
			input: "  <div><p>Hello <b>world</b></p><br><a href='#'>link</a></div>  ",
			want:  "Hello world link",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Title(tt.input)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "\n")
			assert.NotContains(t, got, "<script")
		})
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain text untouched", input: "line one\n\n    indented", want: "line one\n\n    indented"},
		{name: "inline markup stripped", input: "<b>todo</b>\n  - item", want: "todo\n  - item"},
		{name: "script removed", input: "<script>alert(1)</script>hello", want: "hello"},
		{name: "entities unescaped", input: "a &amp; b", want: "a & b"},
		{name: "code-like text without markup", input: "if a > b {\n\treturn\n}", want: "if a > b {\n\treturn\n}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.input))
		})
	}
}
