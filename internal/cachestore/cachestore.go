// Package cachestore provides the key→bytes fallback store for Tally
// responses. Two backends exist: a local directory tree (a billy
// filesystem) and a remote HTTP filesystem selected with an "rpc://"
// path prefix. Backend failures degrade to "no cache available" rather
// than failing the caller.
package cachestore

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// SetLogger sets a custom logger for this package.
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// RPCScheme marks a cache path as a remote filesystem URL.
const RPCScheme = "rpc://"

// Store is a byte-oriented keyed store. Both operations are expected to
// close any underlying resources on every exit path.
type Store interface {
	Read(key string) ([]byte, error)
	Write(key string, data []byte) error
}

// Local stores entries as files under a directory tree.
type Local struct {
	fs billy.Filesystem
}

// NewLocal opens (creating if needed) a directory-backed store.
func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory %s: %w", root, err)
	}
	return &Local{fs: osfs.New(root)}, nil
}

func (l *Local) Read(key string) ([]byte, error) {
	f, err := l.fs.Open(key)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.WithError(cerr).Warn("Failed to close cache file")
		}
	}()
	return io.ReadAll(f)
}

func (l *Local) Write(key string, data []byte) error {
	return util.WriteFile(l.fs, key, data, 0o644)
}

// RPC stores entries on a remote HTTP filesystem: GET reads a key, PUT
// writes one.
type RPC struct {
	base   string
	client *http.Client
}

// NewRPC returns a store talking to the given base URL.
func NewRPC(base string, timeout time.Duration) *RPC {
	return &RPC{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: timeout},
	}
}

func (r *RPC) keyURL(key string) string {
	return r.base + "/" + url.PathEscape(key)
}

func (r *RPC) Read(key string) ([]byte, error) {
	resp, err := r.client.Get(r.keyURL(key))
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			log.WithError(cerr).Warn("Failed to close cache response body")
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cache read %s: status %d", key, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (r *RPC) Write(key string, data []byte) error {
	req, err := http.NewRequest(http.MethodPut, r.keyURL(key), strings.NewReader(string(data)))
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			log.WithError(cerr).Warn("Failed to close cache response body")
		}
	}()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("cache write %s: status %d", key, resp.StatusCode)
	}
	return nil
}

// Open selects and constructs a backend from the configured cache path.
// An empty path disables caching; construction failures log a warning
// and likewise return a nil store.
func Open(path string, timeout time.Duration) Store {
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, RPCScheme) {
		return NewRPC("http://"+strings.TrimPrefix(path, RPCScheme), timeout)
	}
	local, err := NewLocal(path)
	if err != nil {
		log.WithError(err).Warn("Cache disabled: cannot open local store")
		return nil
	}
	return local
}
