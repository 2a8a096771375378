package tally

import (
	"errors"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"sharathv/tally-connect/internal/daterange"
	"sharathv/tally-connect/internal/dom"
	"sharathv/tally-connect/internal/query"
	"sharathv/tally-connect/internal/schema"
	"sharathv/tally-connect/internal/tallyerror"
	"sharathv/tally-connect/internal/transport"
)

// companySanitizer strips the characters that may not appear in cache
// keys from company names.
var companySanitizer = strings.NewReplacer(" ", "", ".", "", "-", "")

// report is the shared machinery behind every fetched view: it builds
// the envelope, performs the exchange once, falls back to the cache
// when the endpoint is down, and hands out the container fragment the
// entity collections are read from.
type report struct {
	company   string
	engine    *transport.Engine
	header    query.Header
	body      func(r *report) *query.Element
	rng       *daterange.Range
	filters   []query.Filter
	prefix    string
	container string

	mu  sync.Mutex
	doc *goquery.Document
}

// cacheKey derives the store key, or "" for uncached reports.
func (r *report) cacheKey() string {
	if r.prefix == "" {
		return ""
	}
	return r.prefix + "." + companySanitizer.Replace(r.company)
}

// staticVariables builds the STATICVARIABLES block for this report,
// including the date range and filters when the report carries them.
func (r *report) staticVariables() *query.Element {
	sv := query.StaticVariables(r.company)
	if r.rng != nil {
		query.AddDateRange(sv, *r.rng)
	}
	query.AddFilters(sv, r.filters)
	return sv
}

// soup returns the parsed response, fetching it on first use. When the
// endpoint is unreachable and the report is cacheable, the last cached
// response is substituted; the original error is kept if the cache has
// nothing either.
func (r *report) soup() (*goquery.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.doc != nil {
		return r.doc, nil
	}

	env := &query.Envelope{Header: r.header, Body: r.body(r)}
	doc, err := r.engine.Execute(env, r.cacheKey())
	if err != nil {
		if errors.Is(err, tallyerror.ErrNotAvailable) && r.cacheKey() != "" {
			if cached, cerr := r.engine.ReadCached(r.cacheKey()); cerr == nil {
				r.doc = cached
				return cached, nil
			}
		}
		return nil, err
	}
	r.doc = doc
	return doc, nil
}

// containerSel returns the fragment entity collections are read from:
// the named container element, or the whole document when the report
// has none.
func (r *report) containerSel() (*goquery.Selection, error) {
	doc, err := r.soup()
	if err != nil {
		return nil, err
	}
	if r.container == "" {
		return doc.Selection, nil
	}
	sel := dom.First(doc.Selection, r.container)
	if sel.Length() == 0 {
		return nil, &tallyerror.TagNotFoundError{Tag: r.container}
	}
	return sel, nil
}

// buildCollection maps every <tag> fragment under the report container
// into a fresh name-keyed collection.
func buildCollection[T any, PT interface {
	*T
	Named
}](r *report, label, tag string) (*Collection[T], error) {
	container, err := r.containerSel()
	if err != nil {
		return nil, err
	}

	coll := newCollection[T](label)
	var buildErr error
	dom.DescendantsNamed(container, tag).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		item := new(T)
		if err := schema.Populate(s, PT(item), nil); err != nil {
			buildErr = err
			return false
		}
		coll.add(PT(item).EntityName(), item)
		return true
	})
	if buildErr != nil {
		return nil, buildErr
	}
	return coll, nil
}
