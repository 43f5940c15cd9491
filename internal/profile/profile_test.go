package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjt-studio/internal/domain"
)

func TestGet(t *testing.T) {
	p, err := Get("")
	require.NoError(t, err)
	assert.Equal(t, Default, p.Name)

	p, err = Get("  Themes ")
	require.NoError(t, err)
	assert.Equal(t, "themes", p.Name)
	assert.True(t, p.Schema.SplitLines)
	assert.Equal(t, 5, p.Attempts)

	_, err = Get("legacy")
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrUnknownProfile))
}

func TestAll_ProfilesHaveTemplates(t *testing.T) {
	all := All()
	require.Len(t, all, 3)
	for _, p := range all {
		tmpl, err := Template(p, nil)
		require.NoError(t, err, p.Name)
		assert.NotEmpty(t, tmpl.Tokens(), p.Name)
		assert.Contains(t, tmpl.Tokens(), "COMPETENCY_NAME", p.Name)
	}

	all[0].Attempts = 99
	p, _ := Get(all[0].Name)
	assert.NotEqual(t, 99, p.Attempts)
}

func TestLevelProfiles_RequiredColumns(t *testing.T) {
	p, err := Get("corporate-levels")
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"Competency", "Definition", "Positive High", "Positive Low", "Negative Low", "Negative High"},
		p.Schema.RequiredColumns())
}

func TestTemplate_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("Write about {{COMPETENCY_NAME}}."), 0o600))

	p, err := Get("mod-levels")
	require.NoError(t, err)
	tmpl, err := Template(p, map[string]string{"mod-levels": path})
	require.NoError(t, err)
	assert.Equal(t, "Write about Agility.", tmpl.Render(&domain.CompetencyRecord{Name: "Agility"}))

	_, err = Template(p, map[string]string{"mod-levels": filepath.Join(t.TempDir(), "missing.tmpl")})
	assert.Error(t, err)
}

func TestAttemptsFor(t *testing.T) {
	p, _ := Get("themes")
	assert.Equal(t, 5, AttemptsFor(p, 0))
	assert.Equal(t, 2, AttemptsFor(p, 2))
	assert.Equal(t, 5, AttemptsFor(p, -1))
}
