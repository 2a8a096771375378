package tally

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"sharathv/tally-connect/internal/daterange"
	"sharathv/tally-connect/internal/query"
	"sharathv/tally-connect/internal/transport"
)

// LedgerMaster is the bare ledger entry carried in the masters export.
type LedgerMaster struct {
	Name         string `tally:"name,attr,required,hard"`
	ReservedName string `tally:"reservedname,attr"`
}

func (l LedgerMaster) EntityName() string { return l.Name }

// LedgerEntry is one accounting line of a voucher. Amounts keep their
// wire text since Tally renders them with currency and sign
// conventions that vary by configuration.
type LedgerEntry struct {
	Narration             string          `tally:"narration,elem,hard"`
	TaxClassificationName string          `tally:"taxclassificationname,elem"`
	RoundType             string          `tally:"roundtype,elem"`
	LedgerName            string          `tally:"ledgername,elem,required"`
	MethodType            string          `tally:"methodtype,elem"`
	ClassRate             string          `tally:"classrate,elem"`
	TDSPartyName          string          `tally:"tdspartyname,elem"`
	VoucherFBTCategory    string          `tally:"voucherfbtcategory,elem"`
	TypeOfTaxPayment      string          `tally:"typeoftaxpayment,elem"`
	GSTClass              string          `tally:"gstclass,elem"`
	STNotificationNo      string          `tally:"stnotificationno,elem"`
	IsDeemedPositive      bool            `tally:"isdeemedpositive,elem,hard"`
	LedgerFromItem        bool            `tally:"ledgerfromitem,elem,hard"`
	RemoveZeroEntries     bool            `tally:"removezeroentries,elem,hard"`
	IsPartyLedger         bool            `tally:"ispartyledger,elem,hard"`
	STCRAdjPercent        decimal.Decimal `tally:"stcradjpercent,elem,hard"`
	RoundLimit            decimal.Decimal `tally:"roundlimit,elem,hard"`
	RateOfAddlVAT         decimal.Decimal `tally:"rateofaddlvat,elem,hard"`
	RateOfCessOnVAT       decimal.Decimal `tally:"rateofcessonvat,elem,hard"`
	PrevInvTotalNum       decimal.Decimal `tally:"previnvtotalnum,elem,hard"`
	Amount                string          `tally:"amount,elem,required,hard"`
	FBTExemptAmount       string          `tally:"fbtexemptamount,elem"`
	VATAssessableValue    string          `tally:"vatassessablevalue,elem"`
	PrevAmount            string          `tally:"prevamount,elem"`
	PrevInvTotalAmt       string          `tally:"previnvtotalamt,elem"`

	voucher *Voucher
}

// Bind keeps a handle on the owning voucher while the voucher is being
// populated.
func (e *LedgerEntry) Bind(parent any) {
	if v, ok := parent.(*Voucher); ok {
		e.voucher = v
	}
}

// Voucher returns the voucher this entry belongs to.
func (e *LedgerEntry) Voucher() *Voucher { return e.voucher }

// Ledger resolves the named ledger in the given ledgers list.
func (e *LedgerEntry) Ledger(l *LedgersList) (*Ledger, error) {
	ledgers, err := l.Ledgers()
	if err != nil {
		return nil, err
	}
	return ledgers.Lookup(e.LedgerName)
}

// AccountingAllocation is a ledger entry nested under an inventory
// entry.
type AccountingAllocation struct {
	LedgerEntry

	entry *InventoryEntry
}

// Bind keeps a handle on the owning inventory entry.
func (a *AccountingAllocation) Bind(parent any) {
	if e, ok := parent.(*InventoryEntry); ok {
		a.entry = e
	}
}

// Entry returns the inventory entry this allocation belongs to.
func (a *AccountingAllocation) Entry() *InventoryEntry { return a.entry }

// Ledger is the full ledger record from the ledgers list report.
type Ledger struct {
	Name                 string     `tally:"name,attr,required,hard"`
	ReservedName         string     `tally:"reservedname,attr"`
	ExtendedName         string     `tally:"name.list,desc,required,hard,multiline"`
	LastVoucherDate      *time.Time `tally:"lastvoucherdate,elem"`
	Parent               string     `tally:"parent,elem"`
	Tax                  string     `tally:"tax,elem"`
	ServiceCategory      string     `tally:"servicecategory,elem"`
	LedgerFBTCategory    string     `tally:"ledgerfbtcategory,elem"`
	IsFBTApplicable      bool       `tally:"isfbtapplicable,elem"`
	ClosingBalance       string     `tally:"closingbalance,elem"`
	OnAccountValue       string     `tally:"onaccountvalue,elem"`
	TBalOpening          string     `tally:"tbalopening,elem,hard"`
	IsFBTDutiesLedger    bool       `tally:"isfbtdutiesledger,elem"`
	ClosingOnAcctValue   string     `tally:"closingonacctvalue,elem"`
	ClosingDrOnAcctValue bool       `tally:"closingdronacctvalue,elem"`
	LedOpeningBalance    string     `tally:"ledopeningbalance,elem"`
}

func (l Ledger) EntityName() string { return l.Name }

// Master resolves this ledger's entry in the company masters.
func (l *Ledger) Master(m *Masters) (*LedgerMaster, error) {
	masters, err := m.Ledgers()
	if err != nil {
		return nil, err
	}
	return masters.Lookup(l.Name)
}

// LedgersList is the full ledger collection of a company.
type LedgersList struct {
	rep *report

	mu      sync.Mutex
	ledgers *Collection[Ledger]
}

func newLedgersList(engine *transport.Engine, company string, rng daterange.Range) *LedgersList {
	return &LedgersList{rep: &report{
		company:   company,
		engine:    engine,
		header:    query.Header{Version: 1, Request: "Export", Type: "Collection", ID: "Ledger"},
		body:      ledgersBody,
		rng:       &rng,
		prefix:    "TallyLedgersList",
		container: "collection",
	}}
}

func ledgersBody(r *report) *query.Element {
	body := query.New("DESC")
	body.Children = append(body.Children, r.staticVariables())
	return body
}

// Ledgers returns the ledger collection, fetching on first use.
func (l *LedgersList) Ledgers() (*Collection[Ledger], error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ledgers == nil {
		coll, err := buildCollection[Ledger](l.rep, "ledger", "ledger")
		if err != nil {
			return nil, err
		}
		l.ledgers = coll
	}
	return l.ledgers, nil
}
