package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSource(t *testing.T) {
	tests := []struct {
		name     string
		location string
		want     Source
	}{
		{"http url", "http://example.com/page", Source{Location: "http://example.com/page", Kind: SourceURL}},
		{"https url mixed case", "HTTPS://Example.com/", Source{Location: "HTTPS://Example.com/", Kind: SourceURL}},
		{"relative path", "page.html", Source{Location: "page.html", Kind: SourceFile}},
		{"file uri", "file:///tmp/page.html", Source{Location: "/tmp/page.html", Kind: SourceFile}},
		{"dash is stdin", "-", Source{Location: "-", Kind: SourceStdin}},
		{"empty is stdin", "  ", Source{Location: "-", Kind: SourceStdin}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSource(tt.location))
		})
	}
}

func TestSource_IsRemote(t *testing.T) {
	assert.True(t, ParseSource("https://example.com").IsRemote())
	assert.False(t, ParseSource("page.html").IsRemote())
	assert.False(t, ParseSource("-").IsRemote())
}

func TestSource_BaseName(t *testing.T) {
	tests := []struct {
		location string
		want     string
	}{
		{"https://en.wikipedia.org/wiki/Comparison_of_programming_languages", "comparison_of_programming_languages"},
		{"https://example.com/report.html", "report"},
		{"https://example.com/", "example.com"},
		{"https://example.com", "example.com"},
		{"/tmp/Saved Page.htm", "saved_page"},
		{"languages.html", "languages"},
		{"-", "stdin"},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSource(tt.location).BaseName())
		})
	}
}

func TestSource_TableFileName(t *testing.T) {
	assert.Equal(t, "page_table_1.csv", ParseSource("dir/page.html").TableFileName(0, FormatCSV))
	assert.Equal(t, "stdin_table_3.md", ParseSource("-").TableFileName(2, FormatMarkdown))
	assert.Equal(t, "List_table_10.json", ParseSource("https://example.com/wiki/List").TableFileName(9, FormatJSON))
}
