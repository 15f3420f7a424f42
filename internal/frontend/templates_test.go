package frontend

import (
	"html/template"
	"testing"
)

func TestNl2br(t *testing.T) {
	tests := []struct {
		in   string
		want template.HTML
	}{
		{in: "", want: ""},
		{in: "single line", want: "single line"},
		{in: "first\nsecond", want: "first<br>second"},
		{in: "windows\r\nline", want: "windows<br>line"},
		{in: "<script>alert(1)</script>\nx", want: "&lt;script&gt;alert(1)&lt;/script&gt;<br>x"},
	}
	for _, tt := range tests {
		if got := nl2br(tt.in); got != tt.want {
			t.Errorf("nl2br(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
