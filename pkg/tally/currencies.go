package tally

import "time"

// CurrencyDailyRate is one dated rate row under a currency master. The
// rates keep their wire text since they carry unit annotations.
type CurrencyDailyRate struct {
	Date           time.Time `tally:"date,elem,required,hard"`
	SpecifiedRate  string    `tally:"specifiedrate,elem,hard"`
	TransactedRate string    `tally:"transactedrate,elem"`
}

// Currency is a currency master, including its daily std, buying and
// selling rate histories.
type Currency struct {
	Name                     string `tally:"name,attr,required,hard"`
	ReservedName             string `tally:"reservedname,attr,hard"`
	ActiveFrom               string `tally:"activefrom,elem"`
	ActiveTo                 string `tally:"activeto,elem"`
	Narration                string `tally:"narration,elem"`
	MailingName              string `tally:"mailingname,elem"`
	ExpandedSymbol           string `tally:"expandedsymbol,elem"`
	DecimalSymbol            string `tally:"decimalsymbol,elem"`
	OriginalSymbol           string `tally:"originalsymbol,elem"`
	IsSuffix                 bool   `tally:"issuffix,elem"`
	HasSpace                 bool   `tally:"hasspace,elem"`
	InMillions               bool   `tally:"inmillions,elem"`
	SortPosition             int    `tally:"sortposition,elem"`
	DecimalPlaces            int    `tally:"decimalplaces,elem"`
	DecimalPlacesForPrinting int    `tally:"decimalplacesforprinting,elem"`

	DailyStdRates     []CurrencyDailyRate `tally:"dailystdrates,list"`
	DailyBuyingRates  []CurrencyDailyRate `tally:"dailybuyingrates,list"`
	DailySellingRates []CurrencyDailyRate `tally:"dailysellingrates,list"`
}

func (c Currency) EntityName() string { return c.Name }
