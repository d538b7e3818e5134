package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFigureKey(t *testing.T) {
	tests := []struct {
		name    string
		pageURL string
		index   int
		want    string
	}{
		{
			name:    "plain page url",
			pageURL: "https://arxiv.org/html/2504.07491v1",
			index:   1,
			want:    "figures/html/2504.07491v1/x1.png",
		},
		{
			name:    "trailing slash",
			pageURL: "https://arxiv.org/html/2504.07491v1/",
			index:   3,
			want:    "figures/html/2504.07491v1/x3.png",
		},
		{
			name:    "same page different index gets distinct key",
			pageURL: "https://arxiv.org/html/2504.07491v1",
			index:   4,
			want:    "figures/html/2504.07491v1/x4.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FigureKey(tt.pageURL, tt.index))
		})
	}

	// Keys are deterministic
	assert.Equal(t,
		FigureKey("https://arxiv.org/html/2504.07491v1", 2),
		FigureKey("https://arxiv.org/html/2504.07491v1", 2))
}
