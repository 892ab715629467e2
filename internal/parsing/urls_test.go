package parsing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFilterBatchURLs tests line filtering of pasted batch input.
func TestFilterBatchURLs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "empty input",
			input: "",
			want:  []string{},
		},
		{
			name:  "no recognized lines",
			input: "https://example.com/watch\nnot a url\n\n",
			want:  []string{},
		},
		{
			name:  "mixed lines keep order",
			input: "https://www.tiktok.com/@user/video/111\njunk\nhttps://vm.tiktok.com/abc/\n",
			want: []string{
				"https://www.tiktok.com/@user/video/111",
				"https://vm.tiktok.com/abc/",
			},
		},
		{
			name:  "whitespace trimmed",
			input: "   https://www.tiktok.com/@user/video/222   \n\t\n",
			want:  []string{"https://www.tiktok.com/@user/video/222"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, FilterBatchURLs(tt.input))
		})
	}
}

// TestFilterURLList tests marker filtering on pre-split input.
func TestFilterURLList(t *testing.T) {
	t.Parallel()

	got := FilterURLList([]string{
		"https://www.tiktok.com/@a/video/1",
		"https://youtube.com/watch?v=zzz",
		" ",
	})
	require.Equal(t, []string{"https://www.tiktok.com/@a/video/1"}, got)
}
