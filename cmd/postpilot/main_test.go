package main

import (
	"reflect"
	"testing"
)

func TestRewriteDraftShortcutArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"postpilot"},
			want: []string{"postpilot"},
		},
		{
			name: "draft id first token",
			in:   []string{"postpilot", "12"},
			want: []string{"postpilot", "drafts", "show", "12"},
		},
		{
			name: "hash prefixed id",
			in:   []string{"postpilot", "#12"},
			want: []string{"postpilot", "drafts", "show", "#12"},
		},
		{
			name: "id after value flag",
			in:   []string{"postpilot", "--api-url", "http://127.0.0.1:9000", "12"},
			want: []string{"postpilot", "--api-url", "http://127.0.0.1:9000", "drafts", "show", "12"},
		},
		{
			name: "id after equals flag",
			in:   []string{"postpilot", "--format=text", "12"},
			want: []string{"postpilot", "--format=text", "drafts", "show", "12"},
		},
		{
			name: "id after bool flag",
			in:   []string{"postpilot", "--pretty", "12"},
			want: []string{"postpilot", "--pretty", "drafts", "show", "12"},
		},
		{
			name: "id after double dash",
			in:   []string{"postpilot", "--format", "edn", "--", "12"},
			want: []string{"postpilot", "--format", "edn", "drafts", "show", "12"},
		},
		{
			name: "double dash with nothing after",
			in:   []string{"postpilot", "--"},
			want: []string{"postpilot", "--"},
		},
		{
			name: "subcommand not rewritten",
			in:   []string{"postpilot", "drafts", "show", "12"},
			want: []string{"postpilot", "drafts", "show", "12"},
		},
		{
			name: "zero is not an id",
			in:   []string{"postpilot", "0"},
			want: []string{"postpilot", "0"},
		},
		{
			name: "unknown command not rewritten",
			in:   []string{"postpilot", "wat"},
			want: []string{"postpilot", "wat"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := rewriteDraftShortcutArgs(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteDraftShortcutArgs(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
