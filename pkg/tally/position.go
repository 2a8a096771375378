package tally

import (
	"sync"

	"sharathv/tally-connect/internal/daterange"
	"sharathv/tally-connect/internal/query"
	"sharathv/tally-connect/internal/transport"
)

// positionCollection is the TDL collection the stock position snapshot
// is exported from.
const positionCollection = "All items under Groups"

// StockPosition is the stock position snapshot of one company at the
// end of a date range.
type StockPosition struct {
	rep *report

	mu    sync.Mutex
	items *Collection[StockItemPosition]
}

func newStockPosition(engine *transport.Engine, company string, rng daterange.Range) *StockPosition {
	return &StockPosition{rep: &report{
		company:   company,
		engine:    engine,
		header:    query.Header{Version: 1, Request: "Export", Type: "Collection", ID: positionCollection},
		body:      positionBody,
		rng:       &rng,
		prefix:    "TallyStockPosition",
		container: "collection",
	}}
}

func positionBody(r *report) *query.Element {
	body := query.New("DESC")
	body.Children = append(body.Children, r.staticVariables())
	query.CollectionDefinition(body, positionCollection, "stock item", []string{
		"Name", "Parent", "BaseUnits",
		"ClosingBalance", "ClosingRate", "ClosingValue",
	})
	return body
}

// Items returns the position rows, fetching on first use.
func (p *StockPosition) Items() (*Collection[StockItemPosition], error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.items == nil {
		coll, err := buildCollection[StockItemPosition](p.rep, "stock item", "stockitem")
		if err != nil {
			return nil, err
		}
		p.items = coll
	}
	return p.items, nil
}

// Range returns the date range the snapshot was taken over.
func (p *StockPosition) Range() daterange.Range { return *p.rep.rng }
