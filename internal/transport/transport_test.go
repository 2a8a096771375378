package transport

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sharathv/tally-connect/internal/cachestore"
	"sharathv/tally-connect/internal/dom"
	"sharathv/tally-connect/internal/query"
	"sharathv/tally-connect/internal/tallyerror"
)

func testEnvelope() *query.Envelope {
	body := query.New("DESC")
	body.Children = append(body.Children, query.StaticVariables("Acme"))
	return &query.Envelope{Header: query.Simple("Export Data"), Body: body}
}

// engineFor points an engine at the httptest server.
func engineFor(t *testing.T, srv *httptest.Server, store cachestore.Store) *Engine {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return New(u.Hostname(), port, 5*time.Second, store)
}

func TestExecute(t *testing.T) {
	var received []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte("<ENVELOPE><COLLECTION><LEDGER NAME=\"Cash\"></LEDGER></COLLECTION></ENVELOPE>"))
	}))
	defer srv.Close()

	engine := engineFor(t, srv, nil)
	doc, err := engine.Execute(testEnvelope(), "")
	require.NoError(t, err)

	assert.Contains(t, string(received), "<TALLYREQUEST>Export Data</TALLYREQUEST>")
	assert.Equal(t, 1, dom.DescendantsNamed(doc.Selection, "ledger").Length())
}

func TestExecuteWritesThrough(t *testing.T) {
	payload := "<ENVELOPE><COLLECTION></COLLECTION></ENVELOPE>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	store, err := cachestore.NewLocal(t.TempDir())
	require.NoError(t, err)
	engine := engineFor(t, srv, store)

	_, err = engine.Execute(testEnvelope(), "TallyMasters.Acme")
	require.NoError(t, err)

	cached, err := store.Read("TallyMasters.Acme.xml")
	require.NoError(t, err)
	assert.Equal(t, payload, string(cached))
}

func TestExecuteConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	engine := engineFor(t, srv, nil)
	_, err := engine.Execute(testEnvelope(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, tallyerror.ErrNotAvailable))
}

func TestExecuteErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	engine := engineFor(t, srv, nil)
	_, err := engine.Execute(testEnvelope(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, tallyerror.ErrNotAvailable))

	var notAvailable *tallyerror.NotAvailableError
	require.True(t, errors.As(err, &notAvailable))
	assert.Equal(t, engine.Endpoint(), notAvailable.Endpoint)
}

func TestReadCached(t *testing.T) {
	store, err := cachestore.NewLocal(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Write("TallyLedgersList.Acme.xml",
		[]byte("<ENVELOPE><COLLECTION><LEDGER NAME=\"Cash\"></LEDGER></COLLECTION></ENVELOPE>")))

	engine := New("localhost", 9002, time.Second, store)
	doc, err := engine.ReadCached("TallyLedgersList.Acme")
	require.NoError(t, err)
	assert.Equal(t, 1, dom.DescendantsNamed(doc.Selection, "ledger").Length())
}

func TestReadCachedMissing(t *testing.T) {
	store, err := cachestore.NewLocal(t.TempDir())
	require.NoError(t, err)

	engine := New("localhost", 9002, time.Second, store)
	_, err = engine.ReadCached("TallyLedgersList.Acme")
	assert.True(t, errors.Is(err, tallyerror.ErrNotAvailable))
}

func TestReadCachedWithoutStore(t *testing.T) {
	engine := New("localhost", 9002, time.Second, nil)
	_, err := engine.ReadCached("TallyLedgersList.Acme")
	assert.True(t, errors.Is(err, tallyerror.ErrNotAvailable))
}
