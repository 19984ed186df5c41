package seeds

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/shuliakovsky/proxy-sync/pkg/peers"
	"github.com/shuliakovsky/proxy-sync/pkg/secrets"
)

// File lists peers to enroll at startup.
type File struct {
	Peers []Seed `yaml:"peers"`
}

type Seed struct {
	URL string `yaml:"url"`
}

type Enroller interface {
	Enroll(ctx context.Context, url string) (peers.Peer, error)
}

var envRef = regexp.MustCompile(`\$\{([A-Z0-9_]+)\}`)

// LoadFile reads a seed file, expanding ${VAR} references from the environment.
func LoadFile(path string, logger *zap.Logger) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	b = envRef.ReplaceAllFunc(b, func(m []byte) []byte {
		k := string(envRef.FindSubmatch(m)[1])
		val := os.Getenv(k)
		if val == "" {
			logger.Warn("env variable is empty during seed expansion",
				zap.String("file", path),
				zap.String("var", k))
		}
		return []byte(val)
	})

	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	out := make([]string, 0, len(f.Peers))
	seen := map[string]struct{}{}
	for i, s := range f.Peers {
		u := strings.TrimRight(strings.TrimSpace(s.URL), "/")
		if u == "" {
			return nil, fmt.Errorf("%s: peer %d has no url", path, i)
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out, nil
}

// Apply enrolls every seed through the normal workflow. Seeds already
// registered are skipped; unreachable ones are logged and skipped.
func Apply(ctx context.Context, en Enroller, urls []string, logger *zap.Logger) int {
	added := 0
	for _, u := range urls {
		_, err := en.Enroll(ctx, u)
		switch {
		case err == nil:
			added++
		case errors.Is(err, peers.ErrDuplicatePeer):
			logger.Debug("seed_already_registered", zap.String("url", secrets.RedactURL(u)))
		default:
			logger.Warn("seed_enroll_failed", zap.String("url", secrets.RedactURL(u)), zap.Error(err))
		}
	}
	return added
}
