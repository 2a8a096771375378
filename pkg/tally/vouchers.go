package tally

import (
	"strings"
	"sync"
	"time"

	"sharathv/tally-connect/internal/daterange"
	"sharathv/tally-connect/internal/query"
	"sharathv/tally-connect/internal/transport"
)

// VoucherType is a voucher type master.
type VoucherType struct {
	Name         string `tally:"name,attr,required,hard"`
	ReservedName string `tally:"reservedname,attr"`
	ExtendedName string `tally:"name.list,desc,required,hard,multiline"`

	Parent                    string `tally:"parent,elem,hard"`
	MailingName               string `tally:"mailingname,elem,hard"`
	NumberingMethod           string `tally:"numberingmethod,elem,hard"`
	IsDeemedPositive          bool   `tally:"isdeemedpositive,elem"`
	AffectsStock              bool   `tally:"affectsstock,elem"`
	PreventDuplicates         bool   `tally:"preventduplicates,elem"`
	PrefillZero               bool   `tally:"prefillzero,elem"`
	PrintAfterSave            bool   `tally:"printaftersave,elem"`
	FormalReceipt             bool   `tally:"formalreceipt,elem"`
	IsOptional                bool   `tally:"isoptional,elem"`
	AsMfgJrnl                 bool   `tally:"asmfgjrnl,elem"`
	EffectiveDate             bool   `tally:"effectivedate,elem"`
	CommonNarration           bool   `tally:"commonnarration,elem"`
	MultiNarration            bool   `tally:"multinarration,elem"`
	IsTaxInvoice              bool   `tally:"istaxinvoice,elem"`
	UseForPOSInvoice          bool   `tally:"useforposinvoice,elem"`
	UseForExciseTraderInvoice bool   `tally:"useforexcisetraderinvoice,elem"`
	UseForExcise              bool   `tally:"useforexcise,elem"`
	UseForJobWork             bool   `tally:"useforjobwork,elem"`
	IsForJobWorkIn            bool   `tally:"isforjobworkin,elem"`
	AllowConsumption          bool   `tally:"allowconsumption,elem"`
}

func (t VoucherType) EntityName() string { return t.Name }

// ParentType resolves the parent voucher type, or nil for a root.
func (t *VoucherType) ParentType(m *Masters) (*VoucherType, error) {
	if t.Parent == "" || strings.EqualFold(t.Parent, t.Name) {
		return nil, nil
	}
	types, err := m.VoucherTypes()
	if err != nil {
		return nil, err
	}
	return types.Lookup(t.Parent)
}

// InvoiceOrder is one order reference row under a voucher.
type InvoiceOrder struct {
	BasicOrderDate       time.Time `tally:"basicorderdate,elem,hard"`
	BasicPurchaseOrderNo string    `tally:"basicpurchaseorderno,elem,hard"`
}

// Voucher is a single voucher from the voucher register. Its name is
// the remote id Tally assigns the voucher.
type Voucher struct {
	VchType string `tally:"vchtype,attr,hard"`
	Name    string `tally:"remoteid,attr,hard"`

	ActiveTo                 string    `tally:"activeto,elem"`
	AlteredOn                string    `tally:"alteredon,elem"`
	Date                     time.Time `tally:"date,elem,hard"`
	TaxChallanDate           string    `tally:"taxchallandate,elem"`
	ReconcilationDate        string    `tally:"reconcilationdate,elem"`
	TaxChequeDate            string    `tally:"taxchequedate,elem"`
	Form16IssueDate          string    `tally:"form16issuedate,elem"`
	CSTFormIssueDate         string    `tally:"cstformissuedate,elem"`
	CSTFormRecvDate          string    `tally:"cstformrecvdate,elem"`
	FBTFromDate              string    `tally:"fbtfromdate,elem"`
	FBTToDate                string    `tally:"fbttodate,elem"`
	AuditedOn                string    `tally:"auditedon,elem"`
	GUID                     string    `tally:"guid,elem,hard"`
	PriceLevel               string    `tally:"pricelevel,elem"`
	AutoCostLevel            string    `tally:"autocostlevel,elem"`
	Narration                string    `tally:"narration,elem,hard"`
	AlteredBy                string    `tally:"alteredby,elem"`
	NatureOfSales            string    `tally:"natureofsales,elem"`
	ExciseNotificationNo     string    `tally:"excisenotificationno,elem"`
	ExciseUnitName           string    `tally:"exciseunitname,elem"`
	ClassName                string    `tally:"classname,elem"`
	POSCardLedger            string    `tally:"poscardledger,elem"`
	POSCashLedger            string    `tally:"poscashledger,elem"`
	POSGiftLedger            string    `tally:"posgiftledger,elem"`
	POSChequeLedger          string    `tally:"poschequeledger,elem"`
	TaxBankChallanNumber     string    `tally:"taxbankchallannumber,elem"`
	TaxChallanBSRCode        string    `tally:"taxchallanbsrcode,elem"`
	TaxChequeNumber          string    `tally:"taxchequenumber,elem"`
	TaxBankName              string    `tally:"taxbankname,elem"`
	VoucherTypeName          string    `tally:"vouchertypename,elem"`
	VoucherNumber            string    `tally:"vouchernumber,elem"`
	Reference                string    `tally:"reference,elem"`
	PartyLedgerName          string    `tally:"partyledgername,elem,hard"`
	PartyName                string    `tally:"partyname,elem,hard"`
	BasicPartyName           string    `tally:"basicpartyname,elem"`
	BasicVoucherChequeName   string    `tally:"basicvoucherchequename,elem"`
	BasicVoucherCrossComment string    `tally:"basicvouchercrosscomment,elem"`
	ExchCurrencyName         string    `tally:"exchcurrencyname,elem"`
	SerialMaster             string    `tally:"serialmaster,elem"`
	SerialNumber             string    `tally:"serialnumber,elem"`
	StatAdjustmentType       string    `tally:"statadjustmenttype,elem"`
	TaxBankBranchName        string    `tally:"taxbankbranchname,elem"`
	CSTFormIssueType         string    `tally:"cstformissuetype,elem"`
	CSTFormIssueNumber       string    `tally:"cstformissuenumber,elem"`
	CSTFormRecvType          string    `tally:"cstformrecvtype,elem"`
	CSTFormRecvNumber        string    `tally:"cstformrecvnnumber,elem"`
	ExciseTreasuryNumber     string    `tally:"excisetreasurynumber,elem"`
	ExciseTreasuryName       string    `tally:"excisetreasuryname,elem"`
	FBTPaymentType           string    `tally:"fbtpaymenttype,elem"`
	POSCardNumber            string    `tally:"poscardnumber,elem"`
	POSChequeNumber          string    `tally:"poschequenumber,elem"`
	POSChequeBankName        string    `tally:"poschequebankname,elem"`
	TaxAdjustment            string    `tally:"taxadjustment,elem"`
	ChallanType              string    `tally:"challantype,elem"`
	ChequeDepositorName      string    `tally:"chequedepositorname,elem"`
	BasicShippedBy           string    `tally:"basicshippedby,elem"`
	BasicDestinationCountry  string    `tally:"basicdestinationcountry,elem"`
	BasicBuyerName           string    `tally:"basicbuyername,elem"`
	BasicPlaceOfReceipt      string    `tally:"basicplaceofreceipt,elem"`
	BasicShipDocumentNo      string    `tally:"basicshipdocumentno,elem"`
	BasicPortOfLoading       string    `tally:"basicportofloading,elem"`
	BasicPortOfDischarge     string    `tally:"basicportofdischarge,elem"`
	BasicFinalDestination    string    `tally:"basicfinaldestination,elem"`
	BasicOrderRef            string    `tally:"basicorderref,elem"`
	BasicShipVesselNo        string    `tally:"basicshipvesselno,elem"`
	BasicBuyersSalesTaxNo    string    `tally:"basicbuyerssalestaxno,elem"`
	BasicDueDateOfPymt       string    `tally:"basicduedateofpymt,elem"`
	BasicSerialNumInPLA      string    `tally:"basicserialnuminpla,elem"`
	BasicDateTimeOfInvoice   time.Time `tally:"basicdatetimeofinvoice,elem,hard,datetime"`
	BasicDateTimeOfRemoval   time.Time `tally:"basicdatetimeofremoval,elem,hard,datetime"`
	VchGSTClass              string    `tally:"vchgstclass,elem"`
	CostCentreName           string    `tally:"costcentrename,elem"`
	EnteredBy                string    `tally:"enteredby,elem"`
	RequestorRule            string    `tally:"requestorrule,elem"`
	DestinationGodown        string    `tally:"destinationgodown,elem"`
	DiffActualQty            bool      `tally:"diffactualqty,elem,hard"`
	Audited                  bool      `tally:"audited,elem,hard"`
	ForJobCosting            bool      `tally:"forjobcosting,elem,hard"`
	IsOptional               bool      `tally:"isoptional,elem,hard"`
	EffectiveDate            time.Time `tally:"effectivedate,elem,hard"`
	UseForInterest           bool      `tally:"useforinterest,elem,hard"`
	UseForGainLoss           bool      `tally:"useforgainloss,elem,hard"`
	UseForGodownTransfer     bool      `tally:"useforgodowntransfer,elem,hard"`
	UseForCompound           bool      `tally:"useforcompound,elem,hard"`
	AlterID                  int       `tally:"alterid,elem,hard"`
	ExciseOpening            bool      `tally:"exciseopening,elem,hard"`
	UseForFinalProduction    bool      `tally:"useforfinalproduction,elem,hard"`
	IsCancelled              bool      `tally:"iscancelled,elem,hard"`
	HasCashFlow              bool      `tally:"hascashflow,elem,hard"`
	IsPostDated              bool      `tally:"ispostdated,elem,hard"`
	UseTrackingNumber        bool      `tally:"usetrackingnumber,elem,hard"`
	IsInvoice                bool      `tally:"isinvoice,elem,hard"`
	MfgJournal               bool      `tally:"mfgjournal,elem,hard"`
	HasDiscounts             bool      `tally:"hasdiscounts,elem,hard"`
	AsPaySlip                bool      `tally:"aspayslip,elem,hard"`
	IsCostCentre             bool      `tally:"iscostcentre,elem,hard"`
	IsDeleted                bool      `tally:"isdeleted,elem,hard"`
	AsOriginal               bool      `tally:"asoriginal,elem,hard"`
	POSCashReceived          string    `tally:"poscashreceived,elem"`
	ExchgRate                string    `tally:"exchgrate,elem"`
	Address                  string    `tally:"address.list,elem,multiline"`
	BasicBuyerAddress        string    `tally:"basicbuyeraddress.list,elem,multiline"`
	BasicOrderTerms          string    `tally:"basicorderterms.list,elem,multiline"`

	InvoiceOrders       []InvoiceOrder   `tally:"invoiceorderlist,list,hard"`
	LedgerEntries       []LedgerEntry    `tally:"ledgerentries,list,hard"`
	InventoryEntries    []InventoryEntry `tally:"allinventoryentries,list,hard"`
	InventoryEntriesIn  []InventoryEntry `tally:"inventoryentriesin,list,hard"`
	InventoryEntriesOut []InventoryEntry `tally:"inventoryentriesout,list,hard"`
}

func (v Voucher) EntityName() string { return v.Name }

// Type resolves the voucher's type master.
func (v *Voucher) Type(m *Masters) (*VoucherType, error) {
	types, err := m.VoucherTypes()
	if err != nil {
		return nil, err
	}
	return types.Lookup(v.VchType)
}

// VouchersList is a voucher register slice for one company and date
// range. Voucher registers are not cached: their contents change with
// every filter and period.
type VouchersList struct {
	rep *report

	mu       sync.Mutex
	vouchers *Collection[Voucher]
}

func newVouchersList(engine *transport.Engine, company string, rng daterange.Range, filters []query.Filter) *VouchersList {
	return &VouchersList{rep: &report{
		company:   company,
		engine:    engine,
		header:    query.Header{Version: 1, Request: "Export", Type: "Data", ID: "Voucher Register"},
		body:      vouchersBody,
		rng:       &rng,
		filters:   filters,
		container: "requestdata",
	}}
}

func vouchersBody(r *report) *query.Element {
	body := query.New("DESC")
	body.Children = append(body.Children, r.staticVariables())
	return body
}

// Vouchers returns the voucher collection, fetching on first use.
func (l *VouchersList) Vouchers() (*Collection[Voucher], error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.vouchers == nil {
		coll, err := buildCollection[Voucher](l.rep, "voucher", "voucher")
		if err != nil {
			return nil, err
		}
		l.vouchers = coll
	}
	return l.vouchers, nil
}

// Range returns the date range the register was fetched for.
func (l *VouchersList) Range() daterange.Range { return *l.rep.rng }
