package schema

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sharathv/tally-connect/internal/dom"
	"sharathv/tally-connect/internal/tallyerror"
)

func fragment(t *testing.T, raw, tag string) *goquery.Selection {
	t.Helper()
	doc, err := dom.Parse([]byte(raw))
	require.NoError(t, err)
	sel := dom.First(doc.Selection, tag)
	require.Equal(t, 1, sel.Length())
	return sel
}

type testEntry struct {
	Kind string `tally:"kind,elem,required,hard"`
	Qty  int    `tally:"qty,elem"`
}

type testItem struct {
	Name     string          `tally:"name,attr,required,hard"`
	Reserved string          `tally:"reservedname,attr"`
	Parent   string          `tally:"parent,elem,hard"`
	Active   bool            `tally:"active,elem"`
	Rate     decimal.Decimal `tally:"rate,elem"`
	Opened   time.Time       `tally:"opened,elem"`
	Notes    string          `tally:"note.list,desc,multiline"`
	Count    *int            `tally:"count,elem"`
	Entries  []testEntry     `tally:"entries,list"`
}

func TestPopulate(t *testing.T) {
	sel := fragment(t, `
		<ITEM NAME="Widget">
			<PARENT>Hardware</PARENT>
			<ACTIVE>Yes</ACTIVE>
			<RATE>12.50</RATE>
			<OPENED>20230401</OPENED>
			<COUNT>7</COUNT>
			<DETAIL><NOTE.LIST><NOTE>first</NOTE><NOTE>second</NOTE></NOTE.LIST></DETAIL>
			<ENTRIES.LIST><KIND>in</KIND><QTY>3</QTY></ENTRIES.LIST>
			<ENTRIES.LIST><KIND>out</KIND><QTY>5</QTY></ENTRIES.LIST>
		</ITEM>`, "item")

	var item testItem
	require.NoError(t, Populate(sel, &item, nil))

	assert.Equal(t, "Widget", item.Name)
	assert.Equal(t, "", item.Reserved)
	assert.Equal(t, "Hardware", item.Parent)
	assert.True(t, item.Active)
	assert.Equal(t, "12.50", item.Rate.String())
	assert.Equal(t, time.Date(2023, time.April, 1, 0, 0, 0, 0, time.UTC), item.Opened)
	assert.Equal(t, "first\nsecond", item.Notes)
	require.NotNil(t, item.Count)
	assert.Equal(t, 7, *item.Count)

	require.Len(t, item.Entries, 2)
	assert.Equal(t, "in", item.Entries[0].Kind)
	assert.Equal(t, 3, item.Entries[0].Qty)
	assert.Equal(t, "out", item.Entries[1].Kind)
	assert.Equal(t, 5, item.Entries[1].Qty)
}

func TestPopulateAbsentOptionals(t *testing.T) {
	sel := fragment(t, `<ITEM NAME="Widget"><PARENT>Hardware</PARENT></ITEM>`, "item")

	var item testItem
	require.NoError(t, Populate(sel, &item, nil))

	assert.False(t, item.Active)
	assert.True(t, item.Rate.IsZero())
	assert.True(t, item.Opened.IsZero())
	assert.Nil(t, item.Count)
	assert.Nil(t, item.Entries)
}

func TestPopulateHardTagMissing(t *testing.T) {
	sel := fragment(t, `<ITEM NAME="Widget"></ITEM>`, "item")

	var item testItem
	err := Populate(sel, &item, nil)
	require.Error(t, err)

	var notFound *tallyerror.TagNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "parent", notFound.Tag)
	assert.Equal(t, "testItem", notFound.Entity)
}

func TestPopulateHardAttrMissing(t *testing.T) {
	sel := fragment(t, `<ITEM><PARENT>Hardware</PARENT></ITEM>`, "item")

	var item testItem
	err := Populate(sel, &item, nil)
	var notFound *tallyerror.TagNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "name", notFound.Tag)
}

func TestPopulateAmbiguousAlwaysFails(t *testing.T) {
	// Active is a soft field; ambiguity must still propagate.
	sel := fragment(t, `
		<ITEM NAME="Widget">
			<PARENT>Hardware</PARENT>
			<ACTIVE>Yes</ACTIVE>
			<ACTIVE>No</ACTIVE>
		</ITEM>`, "item")

	var item testItem
	err := Populate(sel, &item, nil)
	require.Error(t, err)

	var ambiguous *tallyerror.TagAmbiguousError
	require.True(t, errors.As(err, &ambiguous))
	assert.Equal(t, "active", ambiguous.Tag)
	assert.Equal(t, 2, ambiguous.Count)
}

func TestPopulateSoftConversionFailure(t *testing.T) {
	sel := fragment(t, `
		<ITEM NAME="Widget">
			<PARENT>Hardware</PARENT>
			<ACTIVE>maybe</ACTIVE>
		</ITEM>`, "item")

	var item testItem
	require.NoError(t, Populate(sel, &item, nil))
	assert.False(t, item.Active, "malformed soft value should be left at zero")
}

func TestPopulateHardConversionFailure(t *testing.T) {
	type strict struct {
		Flag bool `tally:"flag,elem,hard"`
	}
	sel := fragment(t, `<ROW><FLAG>maybe</FLAG></ROW>`, "row")

	var row strict
	err := Populate(sel, &row, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, tallyerror.ErrConversion))
}

func TestPopulateListSkipsBadSoftElements(t *testing.T) {
	type row struct {
		Entries []testEntry `tally:"entries,list"`
	}
	sel := fragment(t, `
		<ROW>
			<ENTRIES.LIST><KIND>in</KIND></ENTRIES.LIST>
			<ENTRIES.LIST><QTY>2</QTY></ENTRIES.LIST>
			<ENTRIES.LIST><KIND>out</KIND></ENTRIES.LIST>
		</ROW>`, "row")

	var r row
	require.NoError(t, Populate(sel, &r, nil))
	require.Len(t, r.Entries, 2, "element missing its required kind is dropped")
	assert.Equal(t, "in", r.Entries[0].Kind)
	assert.Equal(t, "out", r.Entries[1].Kind)
}

func TestPopulateHardListPropagatesElementFailure(t *testing.T) {
	type row struct {
		Entries []testEntry `tally:"entries,list,hard"`
	}
	sel := fragment(t, `<ROW><ENTRIES.LIST><QTY>2</QTY></ENTRIES.LIST></ROW>`, "row")

	var r row
	err := Populate(sel, &r, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, tallyerror.ErrConversion))
}

func TestPopulateListOfPointers(t *testing.T) {
	type row struct {
		Entries []*testEntry `tally:"entries,list"`
	}
	sel := fragment(t, `
		<ROW>
			<ENTRIES.LIST><KIND>a</KIND></ENTRIES.LIST>
			<ENTRIES.LIST><KIND>b</KIND></ENTRIES.LIST>
		</ROW>`, "row")

	var r row
	require.NoError(t, Populate(sel, &r, nil))
	require.Len(t, r.Entries, 2)
	assert.Equal(t, "a", r.Entries[0].Kind)
	assert.Equal(t, "b", r.Entries[1].Kind)
}

func TestPopulateEmbeddedFieldsFlattened(t *testing.T) {
	type header struct {
		Narration string `tally:"narration,elem"`
	}
	type row struct {
		header
		Amount string `tally:"amount,elem"`
	}

	sel := fragment(t, `<ROW><NARRATION>note</NARRATION><AMOUNT>-120.00</AMOUNT></ROW>`, "row")

	var r row
	require.NoError(t, Populate(sel, &r, nil))
	assert.Equal(t, "note", r.Narration)
	assert.Equal(t, "-120.00", r.Amount)
}

func TestPopulateNestedStruct(t *testing.T) {
	type order struct {
		Number string `tally:"number,elem"`
	}
	type row struct {
		Order order `tally:"order,elem"`
	}

	sel := fragment(t, `<ROW><ORDER><NUMBER>PO-17</NUMBER></ORDER></ROW>`, "row")

	var r row
	require.NoError(t, Populate(sel, &r, nil))
	assert.Equal(t, "PO-17", r.Order.Number)
}

type boundChild struct {
	Kind string `tally:"kind,elem"`

	parent any
}

func (c *boundChild) Bind(parent any) { c.parent = parent }

type boundParent struct {
	Children []boundChild `tally:"children,list"`
}

func TestPopulateBindsListElements(t *testing.T) {
	sel := fragment(t, `<ROW><CHILDREN.LIST><KIND>x</KIND></CHILDREN.LIST></ROW>`, "row")

	var p boundParent
	require.NoError(t, Populate(sel, &p, nil))
	require.Len(t, p.Children, 1)
	assert.Same(t, &p, p.Children[0].parent)
}

func TestPopulateExplicitConverters(t *testing.T) {
	type row struct {
		When time.Time `tally:"when,elem,datetime"`
	}
	sel := fragment(t, `<ROW><WHEN>5-Apr-2023 at 14:30</WHEN></ROW>`, "row")

	var r row
	require.NoError(t, Populate(sel, &r, nil))
	assert.Equal(t, time.Date(2023, time.April, 5, 14, 30, 0, 0, time.UTC), r.When)
}

func TestForRejectsBadTags(t *testing.T) {
	tests := []struct {
		name   string
		target any
	}{
		{name: "missing kind", target: &struct {
			F string `tally:"f"`
		}{}},
		{name: "unknown kind", target: &struct {
			F string `tally:"f,child"`
		}{}},
		{name: "unknown converter", target: &struct {
			F string `tally:"f,elem,hex"`
		}{}},
		{name: "list of scalars", target: &struct {
			F []string `tally:"f,list"`
		}{}},
		{name: "unsupported type", target: &struct {
			F float64 `tally:"f,elem"`
		}{}},
	}

	doc, err := dom.Parse([]byte("<ROW></ROW>"))
	require.NoError(t, err)
	sel := dom.First(doc.Selection, "row")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, Populate(sel, tt.target, nil))
		})
	}
}

func TestForMemoizesPerType(t *testing.T) {
	first, err := For(reflect.TypeOf(testItem{}))
	require.NoError(t, err)
	second, err := For(reflect.TypeOf(testItem{}))
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Len(t, first.Fields, 9)
}
