package assets

import (
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Identifier derives the assignment name for an asset from its file name:
// the base name, NFC-normalized, with every "." replaced by "_".
// "img/logo.ico" becomes "logo_ico".
func Identifier(path string) string {
	return strings.ReplaceAll(norm.NFC.String(filepath.Base(path)), ".", "_")
}

// identifierSet hands out unique identifiers within one module.
// The first asset keeps its derived name; later collisions get the smallest
// free numeric suffix starting at _2.
type identifierSet map[string]struct{}

func (s identifierSet) claim(base string) string {
	if _, taken := s[base]; !taken {
		s[base] = struct{}{}
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "_" + strconv.Itoa(n)
		if _, taken := s[candidate]; !taken {
			s[candidate] = struct{}{}
			return candidate
		}
	}
}
