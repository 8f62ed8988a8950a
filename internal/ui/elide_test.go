package ui

import (
	"testing"

	runewidth "github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/require"
)

func TestElideMiddle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"fits", "plate_v2.exr", 20, "plate_v2.exr"},
		{"keeps tail", "/projects/show/shot/plate_v2.1001.exr", 20, "/projects…2.1001.exr"},
		{"zero", "anything", 0, ""},
		{"tiny", "anything", 1, "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ElideMiddle(tt.in, tt.max)
			require.LessOrEqual(t, runewidth.StringWidth(got), tt.max)
			if tt.want != "" || tt.in == "" {
				require.Equal(t, tt.want, got)
			}
		})
	}
}

func TestElideMiddleKeepsVersionSuffix(t *testing.T) {
	path := "/very/long/projects/tree/shot_010/renders/beauty/plate_v017.%04d.exr"
	got := ElideMiddle(path, 30)
	require.Contains(t, got, "v017.%04d.exr")
	require.Contains(t, got, "…")
}
