// Package icons exposes a directory of icon images as a dataset.
package icons

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	imagePattern  = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp)$`)
	suffixPattern = regexp.MustCompile(`(?i)_(icon|icons?)$`)

	ErrForbidden = errors.New("icons: path escapes directory")
)

// Icon is one image file in the directory.
type Icon struct {
	Filename string `json:"filename"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// Dir lists icons from a directory, addressing them under a URL prefix.
type Dir struct {
	root      string
	urlPrefix string
}

func NewDir(root string, urlPrefix string) *Dir {
	return &Dir{root: root, urlPrefix: urlPrefix}
}

// List returns every image in the directory, ordered by filename.
func (d *Dir) List() ([]Icon, error) {
	files, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("read icons dir: %w", err)
	}
	var out []Icon
	for _, f := range files {
		if f.IsDir() || !imagePattern.MatchString(f.Name()) {
			continue
		}
		out = append(out, Icon{
			Filename: f.Name(),
			Name:     DisplayName(f.Name()),
			ImageURL: d.urlPrefix + f.Name(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out, nil
}

// Path resolves filename inside the directory, refusing anything that would
// land outside of it.
func (d *Dir) Path(filename string) (string, error) {
	root, err := filepath.Abs(d.root)
	if err != nil {
		return "", err
	}
	full, err := filepath.Abs(filepath.Join(root, filename))
	if err != nil {
		return "", err
	}
	if full == root || !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", ErrForbidden
	}
	return full, nil
}

// DisplayName turns "scrap_metal_icon.png" into "Scrap Metal".
func DisplayName(filename string) string {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	name = suffixPattern.ReplaceAllString(name, "")
	// Casers carry state, so each call gets its own.
	return cases.Title(language.Und, cases.NoLower).String(strings.ReplaceAll(name, "_", " "))
}
