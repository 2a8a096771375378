package tally

import "github.com/shopspring/decimal"

// Unit is a unit-of-measure master.
type Unit struct {
	Name            string          `tally:"name,elem,required,hard"`
	OriginalName    string          `tally:"originalname,elem,required"`
	DecimalPlaces   int             `tally:"decimalplaces,elem,hard"`
	IsSimpleUnit    bool            `tally:"issimpleunit,elem,hard"`
	AdditionalUnits string          `tally:"additionalunits,elem"`
	Conversion      decimal.Decimal `tally:"conversion,elem"`
}

func (u Unit) EntityName() string { return u.Name }
