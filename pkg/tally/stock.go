package tally

import (
	"strings"

	"github.com/shopspring/decimal"
)

// StockGroup is a stock group master.
type StockGroup struct {
	Name         string `tally:"name,attr,required,hard"`
	ReservedName string `tally:"reservedname,attr"`
	ExtendedName string `tally:"name.list,desc,required,hard,multiline"`

	Parent                   string `tally:"parent,elem,hard"`
	Narration                string `tally:"narration,elem,hard"`
	CostingMethod            string `tally:"costingmethod,elem,hard"`
	ValuationMethod          string `tally:"valuationmethod,elem,hard"`
	BaseUnits                string `tally:"baseunits,elem,hard"`
	AdditionalUnits          string `tally:"additionalunits,elem,hard"`
	IsBatchWiseOn            bool   `tally:"isbatchwiseon,elem,hard"`
	IsPerishableOn           bool   `tally:"isperishableon,elem,hard"`
	IsAddable                bool   `tally:"isaddable,elem,hard"`
	IgnorePhysicalDifference bool   `tally:"ignorephysicaldifference,elem,hard"`
	IgnoreNegativeStock      bool   `tally:"ignorenegativestock,elem,hard"`
	TreatSalesAsManufactured bool   `tally:"treatsalesasmanufactured,elem,hard"`
	TreatPurchasesAsConsumed bool   `tally:"treatpurchasesasconsumed,elem,hard"`
	TreatRejectsAsScrap      bool   `tally:"treatrejectsasscrap,elem,hard"`
	HasMfgDate               bool   `tally:"hasmfgdate,elem,hard"`
	AllowUseOfExpiredItems   bool   `tally:"allowuseofexpireditems,elem,hard"`
	IgnoreBatches            bool   `tally:"ignorebatches,elem,hard"`
	IgnoreGodowns            bool   `tally:"ignoregodowns,elem,hard"`
}

func (g StockGroup) EntityName() string { return g.Name }

// ParentGroup resolves the parent group, or nil for a root group. A
// group naming itself as parent also counts as a root.
func (g *StockGroup) ParentGroup(m *Masters) (*StockGroup, error) {
	if g.Parent == "" || strings.EqualFold(g.Parent, g.Name) {
		return nil, nil
	}
	groups, err := m.StockGroups()
	if err != nil {
		return nil, err
	}
	return groups.Lookup(g.Parent)
}

// Path returns the group names from the root down to this group.
func (g *StockGroup) Path(m *Masters) ([]string, error) {
	parent, err := g.ParentGroup(m)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return []string{g.Name}, nil
	}
	path, err := parent.Path(m)
	if err != nil {
		return nil, err
	}
	return append(path, g.Name), nil
}

// BaseUnit resolves the group's base unit master, or nil when unset.
func (g *StockGroup) BaseUnit(m *Masters) (*Unit, error) {
	return resolveUnit(m, g.BaseUnits)
}

// AdditionalUnit resolves the group's additional unit master, or nil
// when unset.
func (g *StockGroup) AdditionalUnit(m *Masters) (*Unit, error) {
	return resolveUnit(m, g.AdditionalUnits)
}

func resolveUnit(m *Masters, name string) (*Unit, error) {
	if name == "" {
		return nil, nil
	}
	units, err := m.Units()
	if err != nil {
		return nil, err
	}
	return units.Lookup(name)
}

// StockCategory is a stock category master.
type StockCategory struct {
	Name      string `tally:"name,desc,required,hard"`
	Parent    string `tally:"parent,elem,hard"`
	Narration string `tally:"narration,elem,hard"`
}

func (c StockCategory) EntityName() string { return c.Name }

// ParentCategory resolves the parent category, or nil for a root.
func (c *StockCategory) ParentCategory(m *Masters) (*StockCategory, error) {
	if c.Parent == "" || strings.EqualFold(c.Parent, c.Name) {
		return nil, nil
	}
	categories, err := m.StockCategories()
	if err != nil {
		return nil, err
	}
	return categories.Lookup(c.Parent)
}

// StockItem is a stock item master. The opening balance, rate and
// value keep their wire text since they carry unit annotations.
type StockItem struct {
	Name         string `tally:"name,attr,required,hard"`
	ReservedName string `tally:"reservedname,attr"`
	ExtendedName string `tally:"name.list,desc,required,hard,multiline"`
	GodownName   string `tally:"godownname,desc"`

	Parent                   string `tally:"parent,elem,hard"`
	Narration                string `tally:"narration,elem,hard"`
	Category                 string `tally:"category,elem"`
	TaxClassificationName    string `tally:"taxclassificationname,elem"`
	LedgerName               string `tally:"ledgername,elem"`
	CostingMethod            string `tally:"costingmethod,elem,hard"`
	ValuationMethod          string `tally:"valuationmethod,elem,hard"`
	BaseUnits                string `tally:"baseunits,elem,hard"`
	AdditionalUnits          string `tally:"additionalunits,elem,hard"`
	Description              string `tally:"description,elem,hard"`
	NatureOfItem             string `tally:"natureofitem,elem"`
	IsBatchWiseOn            bool   `tally:"isbatchwiseon,elem,hard"`
	IsPerishableOn           bool   `tally:"isperishableon,elem,hard"`
	IsCostCentresOn          bool   `tally:"iscostcentreson,elem"`
	IsEntryTaxApplicable     bool   `tally:"isentrytaxapplicable,elem"`
	IsCostTrackingOn         bool   `tally:"iscosttrackingon,elem"`
	IgnorePhysicalDifference bool   `tally:"ignorephysicaldifference,elem,hard"`
	IgnoreNegativeStock      bool   `tally:"ignorenegativestock,elem,hard"`
	TreatSalesAsManufactured bool   `tally:"treatsalesasmanufactured,elem,hard"`
	TreatPurchasesAsConsumed bool   `tally:"treatpurchasesasconsumed,elem,hard"`
	TreatRejectsAsScrap      bool   `tally:"treatrejectsasscrap,elem,hard"`
	HasMfgDate               bool   `tally:"hasmfgdate,elem,hard"`
	AllowUseOfExpiredItems   bool   `tally:"allowuseofexpireditems,elem,hard"`
	IgnoreBatches            bool   `tally:"ignorebatches,elem,hard"`
	IgnoreGodowns            bool   `tally:"ignoregodowns,elem,hard"`
	CalcOnMRP                bool   `tally:"calconmrp,elem"`
	ExcludeJrnlForValuation  bool   `tally:"excludejrnlforvaluation,elem,hard"`
	OpeningBalance           string `tally:"openingbalance,elem,hard"`
	OpeningValue             string `tally:"openingvalue,elem,hard"`
	OpeningRate              string `tally:"openingrate,elem,hard"`
	BatchName                string `tally:"batchname,elem"`
}

func (i StockItem) EntityName() string { return i.Name }

// ParentGroup resolves the item's stock group, or nil for an
// ungrouped item.
func (i *StockItem) ParentGroup(m *Masters) (*StockGroup, error) {
	if i.Parent == "" || strings.EqualFold(i.Parent, i.Name) {
		return nil, nil
	}
	groups, err := m.StockGroups()
	if err != nil {
		return nil, err
	}
	return groups.Lookup(i.Parent)
}

// StockCategory resolves the item's category, or nil when unset.
func (i *StockItem) StockCategory(m *Masters) (*StockCategory, error) {
	if i.Category == "" {
		return nil, nil
	}
	categories, err := m.StockCategories()
	if err != nil {
		return nil, err
	}
	return categories.Lookup(i.Category)
}

// BaseUnit resolves the item's base unit master, or nil when unset.
func (i *StockItem) BaseUnit(m *Masters) (*Unit, error) {
	return resolveUnit(m, i.BaseUnits)
}

// AdditionalUnit resolves the item's additional unit master, or nil
// when unset.
func (i *StockItem) AdditionalUnit(m *Masters) (*Unit, error) {
	return resolveUnit(m, i.AdditionalUnits)
}

// EffectiveCostingMethod returns the item's costing method, falling
// back to its group's when the item does not set one.
func (i *StockItem) EffectiveCostingMethod(m *Masters) (string, error) {
	if i.CostingMethod != "" {
		return i.CostingMethod, nil
	}
	parent, err := i.ParentGroup(m)
	if err != nil || parent == nil {
		return "", err
	}
	return parent.CostingMethod, nil
}

// EffectiveValuationMethod returns the item's valuation method,
// falling back to its group's when the item does not set one.
func (i *StockItem) EffectiveValuationMethod(m *Masters) (string, error) {
	if i.ValuationMethod != "" {
		return i.ValuationMethod, nil
	}
	parent, err := i.ParentGroup(m)
	if err != nil || parent == nil {
		return "", err
	}
	return parent.ValuationMethod, nil
}

// Godowns resolves the godowns the item is stored in. Multiple godown
// names arrive colon-separated in a single tag.
func (i *StockItem) Godowns(m *Masters) ([]*Godown, error) {
	if i.GodownName == "" {
		return nil, nil
	}
	godowns, err := m.Godowns()
	if err != nil {
		return nil, err
	}
	names := strings.Split(i.GodownName, ":")
	seen := make(map[string]bool, len(names))
	var out []*Godown
	for _, name := range names {
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		g, err := godowns.Lookup(name)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// Path returns the group names from the root down to this item.
func (i *StockItem) Path(m *Masters) ([]string, error) {
	parent, err := i.ParentGroup(m)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return []string{i.Name}, nil
	}
	path, err := parent.Path(m)
	if err != nil {
		return nil, err
	}
	return append(path, i.Name), nil
}

// Godown is a godown (warehouse location) master.
type Godown struct {
	Name         string `tally:"name,attr,required,hard"`
	ReservedName string `tally:"reservedname,attr"`
	ExtendedName string `tally:"name.list,desc,required,hard,multiline"`

	Parent     string `tally:"parent,elem,hard"`
	Narration  string `tally:"narration,elem,hard"`
	HasNoSpace bool   `tally:"hasnospace,elem"`
	HasNoStock bool   `tally:"hasnostock,elem"`
	IsExternal bool   `tally:"isexternal,elem"`
	IsInternal bool   `tally:"isinternal,elem"`
}

func (g Godown) EntityName() string { return g.Name }

// ParentGodown resolves the parent godown, or nil for a root.
func (g *Godown) ParentGodown(m *Masters) (*Godown, error) {
	if g.Parent == "" || strings.EqualFold(g.Parent, g.Name) {
		return nil, nil
	}
	godowns, err := m.Godowns()
	if err != nil {
		return nil, err
	}
	return godowns.Lookup(g.Parent)
}

// VoucherBatchAllocation is a batch line under an inventory entry.
type VoucherBatchAllocation struct {
	MfdOn                 string `tally:"mfdon,elem"`
	GodownName            string `tally:"godownname,elem,hard"`
	BatchName             string `tally:"batchname,elem,hard"`
	DestinationGodownName string `tally:"destinationgodownname,elem,hard"`
	IndentNo              string `tally:"indentno,elem"`
	OrderNo               string `tally:"orderno,elem"`
	TrackingNumber        string `tally:"trackingnumber,elem"`
	AddlAmount            string `tally:"addlamount,elem"`
	Amount                string `tally:"amount,elem,hard"`
	ActualQty             string `tally:"actualqty,elem,hard"`
	BilledQty             string `tally:"billedqty,elem,hard"`
	ExpiryPeriod          string `tally:"expiryperiod,elem"`
	IndentDueDate         string `tally:"indentduedate,elem"`
	OrderDueDate          string `tally:"orderduedate,elem"`

	entry *InventoryEntry
}

// Bind keeps a handle on the owning inventory entry.
func (a *VoucherBatchAllocation) Bind(parent any) {
	if e, ok := parent.(*InventoryEntry); ok {
		a.entry = e
	}
}

// Entry returns the inventory entry this allocation belongs to.
func (a *VoucherBatchAllocation) Entry() *InventoryEntry { return a.entry }

// Godown resolves the source godown.
func (a *VoucherBatchAllocation) Godown(m *Masters) (*Godown, error) {
	godowns, err := m.Godowns()
	if err != nil {
		return nil, err
	}
	return godowns.Lookup(a.GodownName)
}

// DestinationGodown resolves the destination godown.
func (a *VoucherBatchAllocation) DestinationGodown(m *Masters) (*Godown, error) {
	godowns, err := m.Godowns()
	if err != nil {
		return nil, err
	}
	return godowns.Lookup(a.DestinationGodownName)
}

// InventoryEntry is one stock line of a voucher.
type InventoryEntry struct {
	IsDeemedPositive        bool   `tally:"isdeemedpositive,elem,hard"`
	Amount                  string `tally:"amount,elem,hard"`
	ActualQty               string `tally:"actualqty,elem,hard"`
	BilledQty               string `tally:"billedqty,elem,hard"`
	Description             string `tally:"description,elem"`
	StockItemName           string `tally:"stockitemname,elem,required,hard"`
	ExciseTariff            string `tally:"excisetariff,elem"`
	ExciseExemption         string `tally:"exciseexemption,elem"`
	TraderCNSalesNumber     string `tally:"tradercnsalesnumber,elem"`
	BasicPackageMarks       string `tally:"basicpackagemarks,elem"`
	BasicNumPackages        string `tally:"basicnumpackages,elem"`
	SDTaxClassificationName string `tally:"sdtaxclassificationname,elem"`
	AddlAmount              string `tally:"addlamount,elem"`
	IsAutoNegate            bool   `tally:"isautonegate,elem,hard"`
	Rate                    string `tally:"rate,elem,hard"`
	Discount                string `tally:"discount,elem,hard"`
	MRPRate                 string `tally:"mrprate,elem"`
	BasicUserDescription    string `tally:"basicuserdescription.list,elem,multiline"`

	AccountingAllocations []AccountingAllocation   `tally:"accountingallocations,list,hard"`
	BatchAllocations      []VoucherBatchAllocation `tally:"batchallocations,list,hard"`

	voucher *Voucher
}

// Bind keeps a handle on the owning voucher.
func (e *InventoryEntry) Bind(parent any) {
	if v, ok := parent.(*Voucher); ok {
		e.voucher = v
	}
}

// Voucher returns the voucher this entry belongs to.
func (e *InventoryEntry) Voucher() *Voucher { return e.voucher }

// StockItem resolves the entry's stock item master.
func (e *InventoryEntry) StockItem(m *Masters) (*StockItem, error) {
	items, err := m.StockItems()
	if err != nil {
		return nil, err
	}
	return items.Lookup(e.StockItemName)
}

// StockItemPosition is one item row of the stock position snapshot.
type StockItemPosition struct {
	Name         string `tally:"name,attr,required,hard"`
	ReservedName string `tally:"reservedname,attr"`
	ExtendedName string `tally:"name.list,desc,required,hard,multiline"`

	Parent         string          `tally:"parent,elem,hard"`
	BaseUnits      string          `tally:"baseunits,elem,hard"`
	ClosingBalance string          `tally:"closingbalance,elem,hard"`
	ClosingValue   decimal.Decimal `tally:"closingvalue,elem,hard"`
	ClosingRate    string          `tally:"closingrate,elem,hard"`
}

func (p StockItemPosition) EntityName() string { return p.Name }

// ParentGroup resolves the position row's stock group, or nil for an
// ungrouped item.
func (p *StockItemPosition) ParentGroup(m *Masters) (*StockGroup, error) {
	if p.Parent == "" || strings.EqualFold(p.Parent, p.Name) {
		return nil, nil
	}
	groups, err := m.StockGroups()
	if err != nil {
		return nil, err
	}
	return groups.Lookup(p.Parent)
}

// BaseUnit resolves the row's base unit master, or nil when unset.
func (p *StockItemPosition) BaseUnit(m *Masters) (*Unit, error) {
	return resolveUnit(m, p.BaseUnits)
}
