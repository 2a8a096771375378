package tally

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sharathv/tally-connect/internal/tallyerror"
)

func TestCollectionLookupIsCaseInsensitive(t *testing.T) {
	coll := newCollection[Unit]("unit")
	coll.add("Kgs", &Unit{Name: "Kgs"})

	got, ok := coll.Get("KGS")
	require.True(t, ok)
	assert.Equal(t, "Kgs", got.Name)

	got, err := coll.Lookup("kgs")
	require.NoError(t, err)
	assert.Equal(t, "Kgs", got.Name)
}

func TestCollectionRepeatedNameLastWins(t *testing.T) {
	coll := newCollection[Unit]("unit")
	coll.add("Kgs", &Unit{Name: "Kgs", DecimalPlaces: 2})
	coll.add("KGS", &Unit{Name: "KGS", DecimalPlaces: 3})

	assert.Equal(t, 1, coll.Len())
	got, ok := coll.Get("kgs")
	require.True(t, ok)
	assert.Equal(t, 3, got.DecimalPlaces)
}

func TestCollectionOrderFollowsFirstAppearance(t *testing.T) {
	coll := newCollection[Unit]("unit")
	coll.add("Nos", &Unit{Name: "Nos"})
	coll.add("Kgs", &Unit{Name: "Kgs"})
	coll.add("nos", &Unit{Name: "nos"})

	assert.Equal(t, []string{"Nos", "Kgs"}, coll.Names())

	all := coll.All()
	require.Len(t, all, 2)
	assert.Equal(t, "nos", all[0].Name, "later entity wins, first position kept")
	assert.Equal(t, "Kgs", all[1].Name)
}

func TestCollectionLookupMissing(t *testing.T) {
	coll := newCollection[Unit]("unit")

	_, err := coll.Lookup("Litres")
	require.Error(t, err)

	var refErr *tallyerror.ReferenceError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, "unit", refErr.Collection)
	assert.Equal(t, "Litres", refErr.Name)
}
