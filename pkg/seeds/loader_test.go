package seeds

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shuliakovsky/proxy-sync/pkg/peers"
)

func TestLoadFile_ParsesYAML(t *testing.T) {
	t.Setenv("PROXY2_HOST", "proxy2:2000")
	dir := t.TempDir()
	yml := `
peers:
  - url: http://proxy1:1000
  - url: http://${PROXY2_HOST}/
  - url: http://proxy1:1000
`
	path := filepath.Join(dir, "seeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	urls, err := LoadFile(path, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, []string{"http://proxy1:1000", "http://proxy2:2000"}, urls)
}

func TestLoadFile_MissingURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("peers:\n  - url: ''\n"), 0644))

	_, err := LoadFile(path, zap.NewNop())
	require.Error(t, err)
}

type fakeEnroller struct{ errs map[string]error }

func (f fakeEnroller) Enroll(_ context.Context, url string) (peers.Peer, error) {
	if err := f.errs[url]; err != nil {
		return peers.Peer{}, err
	}
	return peers.Peer{URL: url}, nil
}

func TestApply_SkipsFailures(t *testing.T) {
	en := fakeEnroller{errs: map[string]error{
		"http://dup":  peers.ErrDuplicatePeer,
		"http://down": errors.New("connection refused"),
	}}
	n := Apply(context.Background(), en, []string{"http://ok", "http://dup", "http://down"}, zap.NewNop())
	require.Equal(t, 1, n)
}
