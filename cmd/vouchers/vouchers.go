// Package vouchers contains the command that exports voucher registers.
package vouchers

import (
	"fmt"

	"github.com/spf13/cobra"

	"sharathv/tally-connect/cmd/root"
	"sharathv/tally-connect/internal/export"
	"sharathv/tally-connect/pkg/tally"
)

// voucherDateLayout is the date form used in CSV output.
const voucherDateLayout = "02-01-2006"

// Row is one voucher register line.
type Row struct {
	Date      string `csv:"Date"`
	Type      string `csv:"Type"`
	Number    string `csv:"Number"`
	Party     string `csv:"Party"`
	Reference string `csv:"Reference"`
	Narration string `csv:"Narration"`
	GUID      string `csv:"GUID"`
}

var voucherType string

// Cmd is the vouchers command
var Cmd = &cobra.Command{
	Use:   "vouchers",
	Short: "Export a voucher register slice of a company",
	Long: `Fetches the voucher register of the company over the selected period,
optionally narrowed to one voucher type, and writes one line per
voucher. With --output the register is written to CSV.`,
	RunE: vouchersFunc,
}

func init() {
	Cmd.Flags().StringVarP(&voucherType, "type", "t", "", "Voucher type name, e.g. Sales or Stock Journal")
}

func vouchersFunc(cmd *cobra.Command, args []string) error {
	company := root.SharedFlags.Company
	if company == "" {
		return fmt.Errorf("no company given: use --company or set tally.company")
	}

	opts := root.QueryOptions()
	if voucherType != "" {
		opts = append(opts, tally.WithFilter("VoucherTypeName", voucherType))
	}

	list, err := root.Client.Vouchers(company, opts...)
	if err != nil {
		return err
	}
	vouchers, err := list.Vouchers()
	if err != nil {
		return err
	}

	rows := make([]Row, 0, vouchers.Len())
	for _, v := range vouchers.All() {
		rows = append(rows, Row{
			Date:      v.Date.Format(voucherDateLayout),
			Type:      v.VchType,
			Number:    v.VoucherNumber,
			Party:     v.PartyLedgerName,
			Reference: v.Reference,
			Narration: v.Narration,
			GUID:      v.GUID,
		})
	}

	root.Log.WithField("count", len(rows)).Info("Collected voucher register")
	if root.SharedFlags.Output == "" {
		for _, r := range rows {
			fmt.Printf("%s\t%s\t%s\t%s\n", r.Date, r.Type, r.Number, r.Party)
		}
		return nil
	}
	return export.WriteCSV(rows, root.SharedFlags.Output)
}
