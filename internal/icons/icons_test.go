package icons

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Scrap Metal", DisplayName("scrap_metal_icon.png"))
	assert.Equal(t, "Raider Cache", DisplayName("raider_cache_icons.webp"))
	assert.Equal(t, "Bastion", DisplayName("bastion.JPG"))
	assert.Equal(t, "ARC Probe", DisplayName("ARC_probe.png"))
}

func TestListFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zeta.png", "alpha_icon.webp", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.png"), 0o755))

	list, err := NewDir(dir, "/api/icons/image/").List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, Icon{Filename: "alpha_icon.webp", Name: "Alpha", ImageURL: "/api/icons/image/alpha_icon.webp"}, list[0])
	assert.Equal(t, "zeta.png", list[1].Filename)
}

func TestPathRejectsTraversal(t *testing.T) {
	d := NewDir(t.TempDir(), "")

	_, err := d.Path("../secret.png")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = d.Path("")
	assert.ErrorIs(t, err, ErrForbidden)

	p, err := d.Path("ok.png")
	require.NoError(t, err)
	assert.Equal(t, "ok.png", filepath.Base(p))
}
