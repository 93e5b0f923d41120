package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 Bytes"},
		{-5, "0 Bytes"},
		{1, "1 Bytes"},
		{512, "512 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{2 << 20, "2 MB"},
		{5*1024*1024 + 256*1024, "5.25 MB"},
		{200 << 20, "200 MB"},
		{3 << 30, "3 GB"},
		{2 << 40, "2 TB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatSize(tt.bytes), "bytes=%d", tt.bytes)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain name untouched", "report.pdf", "report.pdf"},
		{"path components stripped", "../../etc/passwd", "passwd"},
		{"hostile punctuation replaced", `a<b>c:d"e|f?g*h.txt`, "a_b_c_d_e_f_g_h.txt"},
		{"control characters dropped", "no\x00tes\n.txt", "notes.txt"},
		{"surrounding whitespace trimmed", "  notes.txt  ", "notes.txt"},
		{"empty input falls back", "", "upload.bin"},
		{"dot falls back", ".", "upload.bin"},
		{"dotdot falls back", "..", "upload.bin"},
		{"only invalid characters falls back", "???", "___"},
		{"unicode preserved", "отчёт-2026.pdf", "отчёт-2026.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}

	t.Run("long names truncate to 255 runes", func(t *testing.T) {
		long := strings.Repeat("ё", 300)
		got := SanitizeFilename(long)
		assert.Equal(t, 255, len([]rune(got)))
	})
}
