// Package position contains the command that exports stock positions.
package position

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"sharathv/tally-connect/cmd/root"
	"sharathv/tally-connect/internal/export"
)

// Row is one stock position line.
type Row struct {
	Name           string          `csv:"Name"`
	Parent         string          `csv:"Parent"`
	BaseUnits      string          `csv:"BaseUnits"`
	ClosingBalance string          `csv:"ClosingBalance"`
	ClosingRate    string          `csv:"ClosingRate"`
	ClosingValue   decimal.Decimal `csv:"ClosingValue"`
}

// Cmd is the position command
var Cmd = &cobra.Command{
	Use:   "position",
	Short: "Export the stock position snapshot of a company",
	Long: `Fetches the closing stock position of the company at the end of the
selected period and writes one line per stock item. With --output the
snapshot is written to CSV.`,
	RunE: positionFunc,
}

func positionFunc(cmd *cobra.Command, args []string) error {
	company := root.SharedFlags.Company
	if company == "" {
		return fmt.Errorf("no company given: use --company or set tally.company")
	}

	pos, err := root.Client.StockPosition(company, root.QueryOptions()...)
	if err != nil {
		return err
	}
	items, err := pos.Items()
	if err != nil {
		return err
	}

	rows := make([]Row, 0, items.Len())
	for _, item := range items.All() {
		rows = append(rows, Row{
			Name:           item.Name,
			Parent:         item.Parent,
			BaseUnits:      item.BaseUnits,
			ClosingBalance: item.ClosingBalance,
			ClosingRate:    item.ClosingRate,
			ClosingValue:   item.ClosingValue,
		})
	}

	root.Log.WithField("count", len(rows)).Info("Collected stock position")
	if root.SharedFlags.Output == "" {
		for _, r := range rows {
			fmt.Printf("%s\t%s\t%s\n", r.Name, r.ClosingBalance, r.ClosingValue)
		}
		return nil
	}
	return export.WriteCSV(rows, root.SharedFlags.Output)
}
