// Package tally is the client-side connector for the Tally accounting
// system's XML reporting interface. A Client fetches company masters,
// ledgers, stock positions and voucher registers over HTTP, maps them
// onto typed entities, and falls back to the most recent cached
// response when the endpoint is unreachable.
package tally

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"sharathv/tally-connect/internal/cachestore"
	"sharathv/tally-connect/internal/config"
	"sharathv/tally-connect/internal/daterange"
	"sharathv/tally-connect/internal/query"
	"sharathv/tally-connect/internal/transport"
)

// errFiltersUnsupported rejects filter options on reports whose TDL
// definitions ignore them.
var errFiltersUnsupported = errors.New("filters are only supported on voucher registers")

// QueryOption adjusts the date range or filters of a report request.
type QueryOption func(*queryOptions)

type queryOptions struct {
	spec    daterange.Spec
	filters []query.Filter
}

// WithPeriod selects a symbolic period such as "FY23" or "CY2023 H1".
func WithPeriod(token string) QueryOption {
	return func(o *queryOptions) { o.spec.Period = token }
}

// WithDate selects the financial year containing the given date.
func WithDate(dt time.Time) QueryOption {
	return func(o *queryOptions) { o.spec.Date = &dt }
}

// WithDates selects the explicit range [start, end].
func WithDates(start, end time.Time) QueryOption {
	return func(o *queryOptions) {
		o.spec.Date = &start
		o.spec.End = &end
	}
}

// WithFilter adds a static-variable filter tag to the request. Filters
// apply in the order they are given.
func WithFilter(tag, value string) QueryOption {
	return func(o *queryOptions) {
		o.filters = append(o.filters, query.Filter{Tag: tag, Value: value})
	}
}

func resolveOptions(opts []QueryOption) (daterange.Range, []query.Filter, error) {
	var o queryOptions
	for _, opt := range opts {
		opt(&o)
	}
	rng, err := daterange.Resolve(o.spec)
	return rng, o.filters, err
}

type mastersEntry struct {
	m   *Masters
	err error
}

type ledgersEntry struct {
	l   *LedgersList
	err error
}

type positionEntry struct {
	p   *StockPosition
	err error
}

// Client talks to one configured Tally endpoint. Masters, ledger lists
// and default stock positions are memoized per company; a company whose
// first fetch failed stays failed until invalidated, so a flapping
// endpoint does not hammer retries through every entity lookup.
type Client struct {
	engine *transport.Engine
	log    *logrus.Logger

	mu        sync.Mutex
	masters   map[string]*mastersEntry
	ledgers   map[string]*ledgersEntry
	positions map[string]*positionEntry
}

// NewClient builds a client from the configuration. A nil logger gets
// one configured from the same configuration.
func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = config.ConfigureLoggingFromConfig(cfg)
	}
	transport.SetLogger(logger)
	cachestore.SetLogger(logger)

	store := cachestore.Open(cfg.Cache.Path, cfg.Timeout())
	return &Client{
		engine:    transport.New(cfg.Tally.Host, cfg.Tally.Port, cfg.Timeout(), store),
		log:       logger,
		masters:   make(map[string]*mastersEntry),
		ledgers:   make(map[string]*ledgersEntry),
		positions: make(map[string]*positionEntry),
	}
}

func memoKey(company string) string { return strings.ToLower(company) }

// Masters returns the memoized masters of a company, fetching them on
// first use.
func (c *Client) Masters(company string) (*Masters, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := memoKey(company)
	if entry, ok := c.masters[key]; ok {
		return entry.m, entry.err
	}
	return c.fetchMastersLocked(key, company)
}

// RefreshMasters discards any memoized masters for the company and
// fetches fresh ones.
func (c *Client) RefreshMasters(company string) (*Masters, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchMastersLocked(memoKey(company), company)
}

func (c *Client) fetchMastersLocked(key, company string) (*Masters, error) {
	m := newMasters(c.engine, company)
	if _, err := m.rep.soup(); err != nil {
		c.log.WithError(err).WithField("company", company).Warn("Masters not available")
		c.masters[key] = &mastersEntry{err: err}
		return nil, err
	}
	c.masters[key] = &mastersEntry{m: m}
	return m, nil
}

// Ledgers returns the ledgers list of a company. Calls without options
// are memoized; calls with an explicit period or dates always fetch.
func (c *Client) Ledgers(company string, opts ...QueryOption) (*LedgersList, error) {
	rng, filters, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	if len(filters) > 0 {
		return nil, errFiltersUnsupported
	}

	if len(opts) > 0 {
		return c.fetchLedgers(company, rng)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	key := memoKey(company)
	if entry, ok := c.ledgers[key]; ok {
		return entry.l, entry.err
	}
	l, err := c.fetchLedgers(company, rng)
	if err != nil {
		c.ledgers[key] = &ledgersEntry{err: err}
		return nil, err
	}
	c.ledgers[key] = &ledgersEntry{l: l}
	return l, nil
}

func (c *Client) fetchLedgers(company string, rng daterange.Range) (*LedgersList, error) {
	l := newLedgersList(c.engine, company, rng)
	if _, err := l.rep.soup(); err != nil {
		c.log.WithError(err).WithField("company", company).Warn("Ledgers not available")
		return nil, err
	}
	return l, nil
}

// StockPosition returns the stock position snapshot of a company.
// Calls without options are memoized; calls with an explicit period or
// dates always fetch.
func (c *Client) StockPosition(company string, opts ...QueryOption) (*StockPosition, error) {
	rng, filters, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	if len(filters) > 0 {
		return nil, errFiltersUnsupported
	}

	if len(opts) > 0 {
		return c.fetchPosition(company, rng)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	key := memoKey(company)
	if entry, ok := c.positions[key]; ok {
		return entry.p, entry.err
	}
	p, err := c.fetchPosition(company, rng)
	if err != nil {
		c.positions[key] = &positionEntry{err: err}
		return nil, err
	}
	c.positions[key] = &positionEntry{p: p}
	return p, nil
}

func (c *Client) fetchPosition(company string, rng daterange.Range) (*StockPosition, error) {
	p := newStockPosition(c.engine, company, rng)
	if _, err := p.rep.soup(); err != nil {
		c.log.WithError(err).WithField("company", company).Warn("Stock position not available")
		return nil, err
	}
	return p, nil
}

// Vouchers returns a voucher register slice. Registers are never
// memoized or cached.
func (c *Client) Vouchers(company string, opts ...QueryOption) (*VouchersList, error) {
	rng, filters, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	l := newVouchersList(c.engine, company, rng, filters)
	if _, err := l.rep.soup(); err != nil {
		c.log.WithError(err).WithField("company", company).Warn("Vouchers not available")
		return nil, err
	}
	return l, nil
}

// Sales returns the register slice of sales vouchers.
func (c *Client) Sales(company string, opts ...QueryOption) (*VouchersList, error) {
	return c.Vouchers(company, append(opts, WithFilter("VoucherTypeName", "Sales"))...)
}

// ProformaInvoices returns the register slice of proforma invoices.
// Tally spells the voucher type "Performa Invoice".
func (c *Client) ProformaInvoices(company string, opts ...QueryOption) (*VouchersList, error) {
	return c.Vouchers(company, append(opts, WithFilter("VoucherTypeName", "Performa Invoice"))...)
}

// StockJournals returns the register slice of stock journal vouchers.
func (c *Client) StockJournals(company string, opts ...QueryOption) (*VouchersList, error) {
	return c.Vouchers(company, append(opts, WithFilter("VoucherTypeName", "Stock Journal"))...)
}

// ManufacturingJournals returns the register slice of manufacturing
// journal vouchers.
func (c *Client) ManufacturingJournals(company string, opts ...QueryOption) (*VouchersList, error) {
	return c.Vouchers(company, append(opts, WithFilter("VoucherTypeName", "Manufacturing Journal"))...)
}

// Invalidate drops every memoized view of the company, including
// remembered failures.
func (c *Client) Invalidate(company string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := memoKey(company)
	delete(c.masters, key)
	delete(c.ledgers, key)
	delete(c.positions, key)
}
