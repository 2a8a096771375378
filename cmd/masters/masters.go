// Package masters contains the command that exports company masters.
package masters

import (
	"fmt"

	"github.com/spf13/cobra"

	"sharathv/tally-connect/cmd/root"
	"sharathv/tally-connect/internal/export"
	"sharathv/tally-connect/pkg/tally"
)

// Row is one masters inventory line: which collection an entity lives
// in, its name and its parent within that collection.
type Row struct {
	Collection string `csv:"Collection"`
	Name       string `csv:"Name"`
	Parent     string `csv:"Parent"`
}

// Cmd is the masters command
var Cmd = &cobra.Command{
	Use:   "masters",
	Short: "Export the full masters inventory of a company",
	Long: `Fetches the masters export of the company and lists every stock item,
stock group, stock category, godown, voucher type, unit, ledger and
currency. With --output the inventory is written to CSV.`,
	RunE: mastersFunc,
}

func mastersFunc(cmd *cobra.Command, args []string) error {
	company := root.SharedFlags.Company
	if company == "" {
		return fmt.Errorf("no company given: use --company or set tally.company")
	}

	m, err := root.Client.Masters(company)
	if err != nil {
		return err
	}
	rows, err := collectRows(m)
	if err != nil {
		return err
	}

	root.Log.WithField("count", len(rows)).Info("Collected masters inventory")
	if root.SharedFlags.Output == "" {
		for _, r := range rows {
			fmt.Printf("%s\t%s\t%s\n", r.Collection, r.Name, r.Parent)
		}
		return nil
	}
	return export.WriteCSV(rows, root.SharedFlags.Output)
}

func collectRows(m *tally.Masters) ([]Row, error) {
	var rows []Row

	items, err := m.StockItems()
	if err != nil {
		return nil, err
	}
	for _, i := range items.All() {
		rows = append(rows, Row{Collection: "stockitem", Name: i.Name, Parent: i.Parent})
	}

	groups, err := m.StockGroups()
	if err != nil {
		return nil, err
	}
	for _, g := range groups.All() {
		rows = append(rows, Row{Collection: "stockgroup", Name: g.Name, Parent: g.Parent})
	}

	categories, err := m.StockCategories()
	if err != nil {
		return nil, err
	}
	for _, c := range categories.All() {
		rows = append(rows, Row{Collection: "stockcategory", Name: c.Name, Parent: c.Parent})
	}

	godowns, err := m.Godowns()
	if err != nil {
		return nil, err
	}
	for _, g := range godowns.All() {
		rows = append(rows, Row{Collection: "godown", Name: g.Name, Parent: g.Parent})
	}

	types, err := m.VoucherTypes()
	if err != nil {
		return nil, err
	}
	for _, t := range types.All() {
		rows = append(rows, Row{Collection: "vouchertype", Name: t.Name, Parent: t.Parent})
	}

	units, err := m.Units()
	if err != nil {
		return nil, err
	}
	for _, u := range units.All() {
		rows = append(rows, Row{Collection: "unit", Name: u.Name})
	}

	ledgers, err := m.Ledgers()
	if err != nil {
		return nil, err
	}
	for _, l := range ledgers.All() {
		rows = append(rows, Row{Collection: "ledger", Name: l.Name})
	}

	currencies, err := m.Currencies()
	if err != nil {
		return nil, err
	}
	for _, c := range currencies.All() {
		rows = append(rows, Row{Collection: "currency", Name: c.Name})
	}

	return rows, nil
}
