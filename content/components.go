package content

import (
	"path"
	"strconv"
	"strings"
)

// Components derived from a file path relative to the content root
type Components struct {
	// DirPath directory segments with ordering prefixes stripped
	DirPath string
	// SortNumber numeric ordering prefix of the last directory segment
	SortNumber uint64
	// Sorted is there a SortNumber
	Sorted bool
	// Template file name up to the first dot
	Template string
	// Language second to last dot segment of the file name in multi language mode
	Language string
	// Filename file name unchanged
	Filename string
	// MultiLanguage mode the components were extracted in
	MultiLanguage bool
}

// ExtractComponents splits a slash separated path relative to the content root
// into its components. In multi language mode "default.en.txt" yields the
// language "en".
func ExtractComponents(relPath string, multiLanguage bool) Components {
	relPath = strings.Trim(relPath, PathSeparator)
	dir, filename := path.Split(relPath)
	dir = strings.Trim(dir, PathSeparator)

	c := Components{
		Filename:      filename,
		MultiLanguage: multiLanguage,
	}

	if dir != "" {
		segments := strings.Split(dir, PathSeparator)
		for i, segment := range segments {
			segments[i] = StripOrderingPrefix(segment)
		}
		c.DirPath = strings.Join(segments, PathSeparator)
		c.SortNumber, c.Sorted = OrderingPrefix(path.Base(dir))
	}

	c.Template, _, _ = strings.Cut(filename, ".")

	if multiLanguage {
		if parts := strings.Split(filename, "."); len(parts) > 2 {
			c.Language = parts[len(parts)-2]
		}
	}
	return c
}

// Kind classification by file name convention
func (c Components) Kind() Kind {
	if c.Template == "site" {
		return KindSite
	}
	dots := strings.Count(c.Filename, ".")
	// multi language file names carry one more dot for the language
	if !c.MultiLanguage && dots > 1 || c.MultiLanguage && dots > 2 {
		return KindFile
	}
	return KindPage
}

// ModelConfig prefilled from the components. File models drop template and
// sort number, those are read from their content instead.
func (c Components) ModelConfig() ModelConfig {
	cfg := ModelConfig{
		Kind:       c.Kind(),
		Language:   c.Language,
		RawPath:    c.DirPath,
		Filename:   c.Filename,
		Template:   c.Template,
		SortNumber: c.SortNumber,
		Sorted:     c.Sorted,
	}
	if cfg.Kind == KindFile {
		cfg.Template = ""
		cfg.SortNumber = 0
		cfg.Sorted = false
	}
	return cfg
}

// OrderingPrefix parses the digits in front of the first "_" of a segment
func OrderingPrefix(segment string) (uint64, bool) {
	prefix, rest, found := strings.Cut(segment, "_")
	if !found || prefix == "" || rest == "" {
		return 0, false
	}
	num, err := strconv.ParseUint(prefix, 10, 64)
	if err != nil {
		return 0, false
	}
	return num, true
}

// StripOrderingPrefix "1_about" → "about", segments without a numeric prefix
// are kept verbatim
func StripOrderingPrefix(segment string) string {
	if _, ok := OrderingPrefix(segment); !ok {
		return segment
	}
	_, rest, _ := strings.Cut(segment, "_")
	return rest
}
