package tally

import (
	"sync"

	"sharathv/tally-connect/internal/query"
	"sharathv/tally-connect/internal/transport"
)

// Masters is the full masters export of one company: every stock,
// ledger, voucher type, unit and currency definition. The exchange
// happens on the first collection access; each collection is then
// built once and reused.
type Masters struct {
	rep *report

	mu              sync.Mutex
	stockItems      *Collection[StockItem]
	stockGroups     *Collection[StockGroup]
	stockCategories *Collection[StockCategory]
	godowns         *Collection[Godown]
	voucherTypes    *Collection[VoucherType]
	units           *Collection[Unit]
	ledgers         *Collection[LedgerMaster]
	currencies      *Collection[Currency]
}

func newMasters(engine *transport.Engine, company string) *Masters {
	return &Masters{rep: &report{
		company: company,
		engine:  engine,
		header:  query.Simple("Export Data"),
		body:    mastersBody,
		prefix:  "TallyMasters",
	}}
}

func mastersBody(r *report) *query.Element {
	body := query.New("EXPORTDATA")
	desc := body.Child("REQUESTDESC")
	desc.ChildText("REPORTNAME", "List of Accounts")
	sv := r.staticVariables()
	sv.ChildText("ACCOUNTTYPE", "All Masters")
	desc.Children = append(desc.Children, sv)
	return body
}

// Company returns the company the masters belong to.
func (m *Masters) Company() string { return m.rep.company }

// StockItems returns the stock item masters.
func (m *Masters) StockItems() (*Collection[StockItem], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stockItems == nil {
		coll, err := buildCollection[StockItem](m.rep, "stock item", "stockitem")
		if err != nil {
			return nil, err
		}
		m.stockItems = coll
	}
	return m.stockItems, nil
}

// StockGroups returns the stock group masters.
func (m *Masters) StockGroups() (*Collection[StockGroup], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stockGroups == nil {
		coll, err := buildCollection[StockGroup](m.rep, "stock group", "stockgroup")
		if err != nil {
			return nil, err
		}
		m.stockGroups = coll
	}
	return m.stockGroups, nil
}

// StockCategories returns the stock category masters.
func (m *Masters) StockCategories() (*Collection[StockCategory], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stockCategories == nil {
		coll, err := buildCollection[StockCategory](m.rep, "stock category", "stockcategory")
		if err != nil {
			return nil, err
		}
		m.stockCategories = coll
	}
	return m.stockCategories, nil
}

// Godowns returns the godown masters.
func (m *Masters) Godowns() (*Collection[Godown], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.godowns == nil {
		coll, err := buildCollection[Godown](m.rep, "godown", "godown")
		if err != nil {
			return nil, err
		}
		m.godowns = coll
	}
	return m.godowns, nil
}

// VoucherTypes returns the voucher type masters.
func (m *Masters) VoucherTypes() (*Collection[VoucherType], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.voucherTypes == nil {
		coll, err := buildCollection[VoucherType](m.rep, "voucher type", "vouchertype")
		if err != nil {
			return nil, err
		}
		m.voucherTypes = coll
	}
	return m.voucherTypes, nil
}

// Units returns the unit masters.
func (m *Masters) Units() (*Collection[Unit], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.units == nil {
		coll, err := buildCollection[Unit](m.rep, "unit", "unit")
		if err != nil {
			return nil, err
		}
		m.units = coll
	}
	return m.units, nil
}

// Ledgers returns the ledger masters.
func (m *Masters) Ledgers() (*Collection[LedgerMaster], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ledgers == nil {
		coll, err := buildCollection[LedgerMaster](m.rep, "ledger", "ledger")
		if err != nil {
			return nil, err
		}
		m.ledgers = coll
	}
	return m.ledgers, nil
}

// Currencies returns the currency masters.
func (m *Masters) Currencies() (*Collection[Currency], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.currencies == nil {
		coll, err := buildCollection[Currency](m.rep, "currency", "currency")
		if err != nil {
			return nil, err
		}
		m.currencies = coll
	}
	return m.currencies, nil
}
