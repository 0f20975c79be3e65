package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractComponents(t *testing.T) {
	tests := []struct {
		name     string
		relPath  string
		multi    bool
		expected Components
		kind     Kind
	}{
		{
			name:    "sorted multi language page",
			relPath: "1_some/default.en.txt",
			multi:   true,
			expected: Components{
				DirPath:       "some",
				SortNumber:    1,
				Sorted:        true,
				Template:      "default",
				Language:      "en",
				Filename:      "default.en.txt",
				MultiLanguage: true,
			},
			kind: KindPage,
		},
		{
			name:    "home without prefix",
			relPath: "home/home.en.txt",
			multi:   true,
			expected: Components{
				DirPath:       "home",
				Template:      "home",
				Language:      "en",
				Filename:      "home.en.txt",
				MultiLanguage: true,
			},
			kind: KindPage,
		},
		{
			name:    "nested prefixes",
			relPath: "2_blog/10_post/article.txt",
			expected: Components{
				DirPath:    "blog/post",
				SortNumber: 10,
				Sorted:     true,
				Template:   "article",
				Filename:   "article.txt",
			},
			kind: KindPage,
		},
		{
			name:    "single language file",
			relPath: "1_about/photo.jpg.txt",
			expected: Components{
				DirPath:    "about",
				SortNumber: 1,
				Sorted:     true,
				Template:   "photo",
				Filename:   "photo.jpg.txt",
			},
			kind: KindFile,
		},
		{
			name:    "multi language file",
			relPath: "about/photo.jpg.de.txt",
			multi:   true,
			expected: Components{
				DirPath:       "about",
				Template:      "photo",
				Language:      "de",
				Filename:      "photo.jpg.de.txt",
				MultiLanguage: true,
			},
			kind: KindFile,
		},
		{
			name:    "site",
			relPath: "site.en.txt",
			multi:   true,
			expected: Components{
				Template:      "site",
				Language:      "en",
				Filename:      "site.en.txt",
				MultiLanguage: true,
			},
			kind: KindSite,
		},
		{
			name:    "draft folder keeps its name",
			relPath: "_drafts/post/article.txt",
			expected: Components{
				DirPath:  "_drafts/post",
				Template: "article",
				Filename: "article.txt",
			},
			kind: KindPage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ExtractComponents(tt.relPath, tt.multi)
			assert.Equal(t, tt.expected, c)
			assert.Equal(t, tt.kind, c.Kind())
		})
	}
}

func TestComponents_ModelConfig_File(t *testing.T) {
	cfg := ExtractComponents("1_about/photo.jpg.txt", false).ModelConfig()
	assert.Equal(t, KindFile, cfg.Kind)
	assert.Empty(t, cfg.Template)
	assert.False(t, cfg.Sorted)
	assert.Equal(t, "about", cfg.RawPath)
}

func TestOrderingPrefix(t *testing.T) {
	tests := []struct {
		segment  string
		num      uint64
		ok       bool
		stripped string
	}{
		{"1_about", 1, true, "about"},
		{"007_bond", 7, true, "bond"},
		{"about", 0, false, "about"},
		{"_drafts", 0, false, "_drafts"},
		{"my_page", 0, false, "my_page"},
		{"1_", 0, false, "1_"},
		{"20200101_post_one", 20200101, true, "post_one"},
	}
	for _, tt := range tests {
		t.Run(tt.segment, func(t *testing.T) {
			num, ok := OrderingPrefix(tt.segment)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.num, num)
			assert.Equal(t, tt.stripped, StripOrderingPrefix(tt.segment))
		})
	}
}

func TestKind_Text(t *testing.T) {
	for _, k := range []Kind{KindNone, KindPage, KindSite, KindFile, KindUser} {
		text, err := k.MarshalText()
		assert.NoError(t, err)
		var back Kind
		assert.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, k, back)
	}
}
