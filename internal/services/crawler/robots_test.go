package crawler

import (
	"testing"

	"github.com/aptakhin/lala-search/internal/models"
)

func TestExtractMetaRobots(t *testing.T) {
	tests := []struct {
		name string
		html string
		want models.RobotsDirectives
	}{
		{
			name: "noindex",
			html: `<html><head><meta name="robots" content="noindex"></head></html>`,
			want: models.RobotsDirectives{NoIndex: true},
		},
		{
			name: "nofollow",
			html: `<html><head><meta name="robots" content="nofollow"></head></html>`,
			want: models.RobotsDirectives{NoFollow: true},
		},
		{
			name: "none implies both",
			html: `<html><head><meta name="robots" content="none"></head></html>`,
			want: models.RobotsDirectives{NoIndex: true, NoFollow: true},
		},
		{
			name: "comma separated list",
			html: `<html><head><meta name="robots" content="noindex, nofollow"></head></html>`,
			want: models.RobotsDirectives{NoIndex: true, NoFollow: true},
		},
		{
			name: "case-insensitive name and tokens",
			html: `<html><head><meta name="ROBOTS" content="NoIndex"></head></html>`,
			want: models.RobotsDirectives{NoIndex: true},
		},
		{
			name: "other meta tags ignored",
			html: `<html><head><meta name="description" content="noindex"></head></html>`,
			want: models.RobotsDirectives{},
		},
		{
			name: "no meta tag",
			html: `<html><body>hi</body></html>`,
			want: models.RobotsDirectives{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractMetaRobots(tt.html); got != tt.want {
				t.Errorf("ExtractMetaRobots() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseXRobotsTag(t *testing.T) {
	noindex := "noindex"
	both := "noindex, nofollow"

	if got := ParseXRobotsTag(nil); got != (models.RobotsDirectives{}) {
		t.Errorf("ParseXRobotsTag(nil) = %+v, want empty", got)
	}
	if got := ParseXRobotsTag(&noindex); !got.NoIndex || got.NoFollow {
		t.Errorf("ParseXRobotsTag(%q) = %+v", noindex, got)
	}
	if got := ParseXRobotsTag(&both); !got.NoIndex || !got.NoFollow {
		t.Errorf("ParseXRobotsTag(%q) = %+v", both, got)
	}
}

func TestCombinedDirectives_UnionWins(t *testing.T) {
	header := "nofollow"
	html := `<html><head><meta name="robots" content="noindex"></head></html>`

	got := CombinedDirectives(html, &header)
	if !got.NoIndex || !got.NoFollow {
		t.Errorf("CombinedDirectives() = %+v, want both set", got)
	}
}
