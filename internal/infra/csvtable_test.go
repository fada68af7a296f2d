package infra

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readTable(t *testing.T, body string) *CSVTable {
	t.Helper()
	tbl, err := ReadCSVTable("orders.csv", strings.NewReader(body))
	require.NoError(t, err)
	return tbl
}

func TestReadCSVTable_HeaderWithBOM(t *testing.T) {
	tbl := readTable(t, "\ufefforder_id, status\n1,Delivered\n")
	assert.True(t, tbl.Has("order_id"))
	assert.True(t, tbl.Has("status"))
	assert.Equal(t, 1, tbl.Len())
	assert.Equal(t, "Delivered", tbl.Row(0).String("status"))
}

func TestReadCSVTable_Empty(t *testing.T) {
	_, err := ReadCSVTable("empty.csv", strings.NewReader(""))
	assert.ErrorContains(t, err, "empty.csv")
}

func TestRequire_ListsMissingColumns(t *testing.T) {
	tbl := readTable(t, "order_id\n1\n")
	err := tbl.Require("order_id", "status", "total_amount")
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.ErrorContains(t, err, "status, total_amount")
}

func TestRow_TypedAccessors(t *testing.T) {
	tbl := readTable(t, "id,qty,price,active,when,note\n7,3.0,12.5,True,2024-03-05,\n")
	row := tbl.Row(0)

	assert.Equal(t, int64(7), row.Key("id"))
	assert.Equal(t, int32(3), row.Int32("qty"))
	assert.Equal(t, 12.5, row.NullableFloat("price"))
	assert.True(t, row.Bool("active"))
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), row.Time("when"))
	assert.Nil(t, row.OptionalString("note"))
	assert.Nil(t, row.OptionalTime("note"))
	assert.NoError(t, row.Err())
}

func TestRow_EmptyFloatIsNaN(t *testing.T) {
	row := readTable(t, "id,price\n1,\n").Row(0)
	assert.True(t, math.IsNaN(row.NullableFloat("price")))
	assert.NoError(t, row.Err())
}

func TestRow_ErrorNamesFileLineAndColumn(t *testing.T) {
	tbl := readTable(t, "id,when\n1,2024-01-01\n2,yesterday\n")
	row := tbl.Row(1)
	row.Key("id")
	row.Time("when")

	require.Error(t, row.Err())
	assert.Equal(t, 3, row.Line())
	assert.ErrorContains(t, row.Err(), `orders.csv line 3 column "when"`)
}

func TestRow_FirstErrorWins(t *testing.T) {
	row := readTable(t, "id,qty\nx,\n").Row(0)
	row.Key("id")
	row.Int32("qty")
	assert.ErrorContains(t, row.Err(), `column "id"`)
}

func TestRow_RequiredCellEmpty(t *testing.T) {
	row := readTable(t, "id\n\"\"\n").Row(0)
	row.Key("id")
	assert.ErrorIs(t, row.Err(), ErrEmptyCell)
}

func TestRow_Int32Overflow(t *testing.T) {
	row := readTable(t, "qty\n3000000000\n").Row(0)
	row.Int32("qty")
	assert.ErrorContains(t, row.Err(), "overflows int32")
}

func TestRow_CategoryIsInterned(t *testing.T) {
	tbl := readTable(t, "status\nShipped\nShipped\n")
	a := tbl.Row(0).Category("status")
	b := tbl.Row(1).Category("status")
	assert.Equal(t, "Shipped", a)
	assert.Equal(t, a, b)
}

func TestParseDate_Layouts(t *testing.T) {
	want := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2024-02-29", "2024-02-29 00:00:00", "2024-02-29T00:00:00", "02/29/2024"} {
		got, err := ParseDate(s)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(got), s)
	}

	_, err := ParseDate("29.02.2024")
	assert.Error(t, err)
}

func TestParseInteger(t *testing.T) {
	n, err := parseInteger("12.0")
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)

	_, err = parseInteger("12.5")
	assert.Error(t, err)
}
