package config_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/gsutil/config"
)

func TestConfigFile_Profiles(t *testing.T) {
	var cf config.ConfigFile

	_, err := cf.GetProfile("")
	assert.ErrorIs(t, err, config.ErrNoProfiles)

	require.NoError(t, cf.AddProfile(config.Profile{Name: "first"}))
	require.NoError(t, cf.AddProfile(config.Profile{Name: "second", Project: "p2"}))
	assert.ErrorIs(t, cf.AddProfile(config.Profile{Name: "first"}), config.ErrProfileExists)
	assert.ErrorIs(t, cf.AddProfile(config.Profile{}), config.ErrProfileName)

	def, err := cf.GetDefaultProfile()
	require.NoError(t, err)
	assert.Equal(t, "first", def.Name, "first profile added becomes default")

	require.NoError(t, cf.SetDefault("second"))
	def, err = cf.GetProfile("")
	require.NoError(t, err)
	assert.Equal(t, "second", def.Name)
	assert.ErrorIs(t, cf.SetDefault("third"), config.ErrProfileNotFound)

	require.NoError(t, cf.UpdateProfile(config.Profile{Name: "second", Default: true, Project: "updated"}))
	p, err := cf.GetProfile("second")
	require.NoError(t, err)
	assert.Equal(t, "updated", p.Project)

	require.NoError(t, cf.RemoveProfile("second"))
	assert.Equal(t, []string{"first"}, cf.ProfileNames())
	def, err = cf.GetDefaultProfile()
	require.NoError(t, err)
	assert.True(t, def.Default, "default moves to a remaining profile")
	assert.ErrorIs(t, cf.RemoveProfile("second"), config.ErrProfileNotFound)
}

func TestConfigFile_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	empty, err := config.LoadOrEmpty(path)
	require.NoError(t, err)
	assert.Empty(t, empty.Profiles)

	cf := &config.ConfigFile{}
	require.NoError(t, cf.AddProfile(config.Profile{Name: "work", Credentials: "/k.json", Duration: "2h", RateLimit: 5}))
	require.NoError(t, cf.Save(path))

	loaded, err := config.LoadOrEmpty(path)
	require.NoError(t, err)
	require.Len(t, loaded.Profiles, 1)
	assert.Equal(t, cf.Profiles[0], loaded.Profiles[0])
}
