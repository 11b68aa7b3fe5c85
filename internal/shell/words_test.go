package shell

import (
	"reflect"
	"testing"
)

func TestSplitWords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"tree", []string{"tree"}},
		{"add text h1", []string{"add", "text", "h1"}},
		{"rename h1 'Getting started'", []string{"rename", "h1", "Getting started"}},
		{`set t1 "<p>it's here</p>"`, []string{"set", "t1", "<p>it's here</p>"}},
		{`rename My\ Title`, []string{"rename", "My Title"}},
		{`rename h1 ""`, []string{"rename", "h1", ""}},
	}

	for _, tt := range tests {
		if got := splitWords(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("splitWords(%q)=%q, want %q", tt.in, got, tt.want)
		}
	}
}
