// Package transport sends query envelopes to the Tally endpoint and
// turns responses into tolerant DOM trees. Connection failures,
// including timeouts, surface as NotAvailableError and are never
// retried here; retry policy belongs to the caller.
package transport

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"sharathv/tally-connect/internal/cachestore"
	"sharathv/tally-connect/internal/dom"
	"sharathv/tally-connect/internal/query"
	"sharathv/tally-connect/internal/tallyerror"
)

var log = logrus.New()

// SetLogger sets a custom logger for this package.
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// cacheSuffix is appended to every cache key on disk.
const cacheSuffix = ".xml"

// Engine performs the HTTP round trip for one configured endpoint.
type Engine struct {
	endpoint string
	client   *http.Client
	store    cachestore.Store
}

// New builds an engine for host:port with the given request timeout.
// The store may be nil, disabling write-through and fallback.
func New(host string, port int, timeout time.Duration, store cachestore.Store) *Engine {
	return &Engine{
		endpoint: fmt.Sprintf("http://%s:%d/", host, port),
		client:   &http.Client{Timeout: timeout},
		store:    store,
	}
}

// Endpoint returns the URL requests are posted to.
func (e *Engine) Endpoint() string { return e.endpoint }

// Store returns the configured cache store, possibly nil.
func (e *Engine) Store() cachestore.Store { return e.store }

// Execute serializes the envelope, posts it, writes the raw response
// through to the cache when a key is supplied, and parses the response
// into a DOM tree. Responses with HTTP error status are treated as the
// endpoint being unavailable.
func (e *Engine) Execute(env *query.Envelope, cacheKey string) (*goquery.Document, error) {
	payload, err := env.Marshal()
	if err != nil {
		return nil, err
	}

	log.WithField("endpoint", e.endpoint).Debug("Sending Tally request")
	resp, err := e.client.Post(e.endpoint, "application/xml", bytes.NewReader(payload))
	if err != nil {
		return nil, &tallyerror.NotAvailableError{Endpoint: e.endpoint, Err: err}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			log.WithError(cerr).Warn("Failed to close response body")
		}
	}()

	if resp.StatusCode >= 400 {
		return nil, &tallyerror.NotAvailableError{
			Endpoint: e.endpoint,
			Err:      fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	raw := new(bytes.Buffer)
	if _, err := raw.ReadFrom(resp.Body); err != nil {
		return nil, &tallyerror.NotAvailableError{Endpoint: e.endpoint, Err: err}
	}

	if e.store != nil && cacheKey != "" {
		if err := e.store.Write(cacheKey+cacheSuffix, raw.Bytes()); err != nil {
			log.WithError(err).WithField("key", cacheKey).Warn("Cache write-through failed")
		}
	}

	return dom.Parse(raw.Bytes())
}

// ReadCached loads and parses a previously cached response. A missing
// store, missing entry or parse failure all surface as NotAvailable so
// the caller's fallback chain stays uniform.
func (e *Engine) ReadCached(cacheKey string) (*goquery.Document, error) {
	if e.store == nil || cacheKey == "" {
		return nil, &tallyerror.NotAvailableError{
			Endpoint: e.endpoint,
			Err:      fmt.Errorf("no cache configured"),
		}
	}
	raw, err := e.store.Read(cacheKey + cacheSuffix)
	if err != nil {
		return nil, &tallyerror.NotAvailableError{Endpoint: e.endpoint, Err: err}
	}
	log.WithField("key", cacheKey).Info("Returning cached Tally response")
	return dom.Parse(raw)
}
