package reqdiff

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/checkgrid/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

func writeListing(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return name
}

func TestOnRunReqdiff_MatchingSets(t *testing.T) {
	dir := t.TempDir()
	expected := writeListing(t, dir, "requirements.txt", "requests==2.31.0\nflask==1.0\n")
	generated := writeListing(t, dir, "generated.txt", "Flask\nrequests\n")

	deps := &registry.StepDeps{WorkDir: dir}
	out, err := OnRunReqdiff(context.Background(), deps, &Input{
		Expected:  expected,
		Generated: generated,
	})

	require.NoError(t, err)
	packages := out.GetAttr("packages")
	n, _ := packages.AsBigFloat().Int64()
	assert.Equal(t, int64(2), n)
}

func TestOnRunReqdiff_Mismatch(t *testing.T) {
	dir := t.TempDir()
	expected := writeListing(t, dir, "requirements.txt", "requests==2.0\n")
	generated := writeListing(t, dir, "generated.txt", "requests\nflask\n")

	deps := &registry.StepDeps{WorkDir: dir}
	out, err := OnRunReqdiff(context.Background(), deps, &Input{
		Expected:  expected,
		Generated: generated,
	})

	require.Error(t, err)
	assert.Equal(t, cty.NilVal, out)
	assert.Contains(t, err.Error(), "extra [flask]")
}

func TestOnRunReqdiff_MissingFile(t *testing.T) {
	dir := t.TempDir()
	generated := writeListing(t, dir, "generated.txt", "requests\n")

	deps := &registry.StepDeps{WorkDir: dir}
	_, err := OnRunReqdiff(context.Background(), deps, &Input{
		Expected:  "no-such-file.txt",
		Generated: generated,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading expected listing")
}
