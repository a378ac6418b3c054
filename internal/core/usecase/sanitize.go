package usecase

import (
	"path/filepath"
	"regexp"
	"strings"
)

var disallowedNameChars = regexp.MustCompile(`[^A-Za-z0-9_.\-]`)

const defaultStem = "file"

// SanitizeFilename turns a proposed name into a filesystem-safe name that
// carries the original file's extension.
func SanitizeFilename(proposed, original string) string {
	ext := cleanName(filepath.Ext(original))
	if ext == "." {
		ext = ""
	}

	name := cleanName(proposed)
	if isDegenerateName(name, ext) {
		name = cleanName(filepath.Base(original))
	}
	if isDegenerateName(name, ext) {
		name = defaultStem
	}
	name = strings.TrimLeft(name, ".")

	if !strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext)) {
		name += ext
	}
	return name
}

func cleanName(raw string) string {
	name := strings.NewReplacer("'", "", `"`, "").Replace(raw)
	return disallowedNameChars.ReplaceAllString(name, "")
}

func isDegenerateName(name, ext string) bool {
	stem := name
	if ext != "" && strings.HasSuffix(strings.ToLower(stem), strings.ToLower(ext)) {
		stem = stem[:len(stem)-len(ext)]
	}
	return strings.Trim(stem, ".") == ""
}
