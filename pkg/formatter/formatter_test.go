package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{5, "5"},
		{999, "999"},
		{1000, "1,000"},
		{15000, "15,000"},
		{1234567, "1,234,567"},
		{-999, "-999"},
		{-1234567, "-1,234,567"},
		{9223372036854775807, "9,223,372,036,854,775,807"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatNumber(tc.in), "FormatNumber(%d)", tc.in)
	}
}

func TestEscapeHTML(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"<b>bold</b>", "&lt;b&gt;bold&lt;/b&gt;"},
		{"Tom & Jerry", "Tom &amp; Jerry"},
		{"a < b > c", "a &lt; b &gt; c"},
		{"", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, EscapeHTML(tc.in))
	}
}
