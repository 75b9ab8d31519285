// Package resultcache stores hook findings keyed by content, so unchanged
// files skip re-analysis across runs. Entries are LZ4-compressed JSON under
// a cache directory; a corrupt or missing entry is a miss, never an error.
package resultcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Sumatoshi-tech/hookfang/internal/hooks"
	"github.com/Sumatoshi-tech/hookfang/pkg/persist"
)

// entry is the stored value for one (hook, config, content) key.
type entry struct {
	Findings []hooks.Finding `json:"findings"`
}

// Cache is a content-addressed cache of hook findings.
type Cache struct {
	dir       string
	persister *persist.Persister[entry]
}

// New opens a cache rooted at dir, creating it when absent.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	codec := persist.NewLZ4Codec(persist.NewJSONCodec())

	return &Cache{
		dir:       dir,
		persister: persist.NewPersister[entry](codec),
	}, nil
}

// Key derives the cache key for one file under one hook configuration. Any
// change to the hook name, its configuration, or the file content produces
// a different key.
func Key(hook, fingerprint string, content []byte) string {
	h := sha256.New()

	h.Write([]byte(hook))
	h.Write([]byte{0})
	h.Write([]byte(fingerprint))
	h.Write([]byte{0})
	h.Write(content)

	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint reduces a hook's configuration section to a stable string for
// key derivation.
func Fingerprint(section any) string {
	raw, err := json.Marshal(section)
	if err != nil {
		return fmt.Sprintf("%+v", section)
	}

	return string(raw)
}

// Get returns the cached findings for key. The second return is false on a
// miss, including unreadable or corrupt entries.
func (c *Cache) Get(key string) ([]hooks.Finding, bool) {
	stored, err := c.persister.Load(c.dir, key)
	if err != nil {
		return nil, false
	}

	return stored.Findings, true
}

// Put stores the findings for key.
func (c *Cache) Put(key string, findings []hooks.Finding) error {
	if err := c.persister.Save(c.dir, key, &entry{Findings: findings}); err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}

	return nil
}
