package cachestore

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRoundTrip(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	payload := []byte("<ENVELOPE>cached</ENVELOPE>")
	require.NoError(t, store.Write("TallyMasters.AcmeCorp.xml", payload))

	got, err := store.Read("TallyMasters.AcmeCorp.xml")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestLocalReadMissing(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = store.Read("TallyMasters.Nothing.xml")
	assert.Error(t, err)
}

func TestLocalOverwrite(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Write("key.xml", []byte("first")))
	require.NoError(t, store.Write("key.xml", []byte("second")))

	got, err := store.Read("key.xml")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
}

func TestLocalCreatesDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "cache")
	store, err := NewLocal(root)
	require.NoError(t, err)
	require.NoError(t, store.Write("key.xml", []byte("data")))
}

func TestRPCRoundTrip(t *testing.T) {
	var mu sync.Mutex
	entries := map[string][]byte{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, "/")
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			entries[key] = body
			w.WriteHeader(http.StatusCreated)
		case http.MethodGet:
			data, ok := entries[key]
			if !ok {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write(data)
		}
	}))
	defer srv.Close()

	store := NewRPC(srv.URL, 5*time.Second)
	require.NoError(t, store.Write("TallyLedgersList.Acme.xml", []byte("payload")))

	got, err := store.Read("TallyLedgersList.Acme.xml")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)

	_, err = store.Read("absent.xml")
	assert.Error(t, err)
}

func TestOpenSelectsBackend(t *testing.T) {
	t.Run("empty path disables caching", func(t *testing.T) {
		assert.Nil(t, Open("", time.Second))
	})

	t.Run("rpc scheme gives a remote store", func(t *testing.T) {
		store := Open("rpc://cache.example.com/tally", time.Second)
		require.NotNil(t, store)
		rpc, ok := store.(*RPC)
		require.True(t, ok)
		assert.Equal(t, "http://cache.example.com/tally", rpc.base)
	})

	t.Run("plain path gives a local store", func(t *testing.T) {
		store := Open(t.TempDir(), time.Second)
		require.NotNil(t, store)
		_, ok := store.(*Local)
		assert.True(t, ok)
	})
}
