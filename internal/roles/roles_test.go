package roles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShayCichocki/scriptroom/pkg/models"
)

func TestDefault_CoversEveryRole(t *testing.T) {
	set, err := Default()
	require.NoError(t, err)

	for _, r := range models.Roles {
		p, err := set.Get(r)
		require.NoError(t, err, r)
		assert.NotEmpty(t, p.Name, r)
		assert.NotEmpty(t, p.Instructions, r)
	}

	producer, _ := set.Get(models.RoleProducer)
	assert.True(t, producer.Can(models.ActionFinalize))
	assert.True(t, producer.Can(models.ActionDelegate))

	researcher, _ := set.Get(models.RoleResearcher)
	assert.True(t, researcher.Can(models.ActionSearch))
	assert.False(t, researcher.Can(models.ActionFinalize))
}

func TestSet_GetUnknown(t *testing.T) {
	set, err := Default()
	require.NoError(t, err)

	_, err = set.Get(models.Role("intern"))
	assert.ErrorIs(t, err, ErrUnknownRole)
	_, err = set.Get(models.RoleUser)
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestSet_Roster(t *testing.T) {
	set, err := Default()
	require.NoError(t, err)

	roster := set.Roster(models.RoleWriter)
	assert.Len(t, roster, len(models.Roles)-1)
	for _, p := range roster {
		assert.NotEqual(t, models.RoleWriter, p.ID)
	}
	assert.Equal(t, models.RoleProducer, roster[0].ID)
}

func TestLoad_OverridesSingleRole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	doc := `roles:
  - id: "@Critic"
    name: Harsh Critic
    capabilities: [delegate]
    instructions: Be brutal.
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	set, err := Load(path)
	require.NoError(t, err)

	critic, err := set.Get(models.RoleCritic)
	require.NoError(t, err)
	assert.Equal(t, "Harsh Critic", critic.Name)
	assert.Equal(t, "Be brutal.", critic.Instructions)

	writer, err := set.Get(models.RoleWriter)
	require.NoError(t, err)
	assert.Equal(t, "Writer", writer.Name)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown role", "roles:\n  - id: intern\n    instructions: x\n"},
		{"unknown capability", "roles:\n  - id: critic\n    instructions: x\n    capabilities: [deploy]\n"},
		{"empty instructions", "roles:\n  - id: critic\n    instructions: \"  \"\n"},
		{"duplicate", "roles:\n  - id: critic\n    instructions: a\n  - id: critic\n    instructions: b\n"},
		{"invalid yaml", "roles: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "roles.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.doc), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	set, err := Load("")
	require.NoError(t, err)
	assert.Len(t, set.All(), len(models.Roles))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
