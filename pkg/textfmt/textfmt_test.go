package textfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTML(t *testing.T) {
	f := New()

	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "bold and italic",
			input:    "**重点** and *emphasis*",
			contains: []string{"<strong>重点</strong>", "<em>emphasis</em>"},
		},
		{
			name:     "line breaks are kept",
			input:    "第一行\n第二行",
			contains: []string{"第一行<br>", "第二行"},
		},
		{
			name:     "lists",
			input:    "1. 背景\n2. 方向",
			contains: []string{"<ol>", "<li>背景</li>"},
		},
		{
			name:     "raw html is dropped",
			input:    "hi <script>alert(1)</script>",
			excludes: []string{"<script>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := f.ToHTML(tt.input)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, bad := range tt.excludes {
				assert.NotContains(t, out, bad)
			}
		})
	}

	assert.Empty(t, f.ToHTML("  \n"))
}
