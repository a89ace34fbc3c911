package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterTables(t *testing.T) {
	invoice := Table{{"Invoice", "Amount"}, {"A-1", "30"}}
	inventory := Table{{"sku", "stock"}, {"X", "4"}}
	tables := []Table{invoice, inventory}

	// empty filter keeps everything
	require.Equal(t, tables, FilterTables(tables, nil))

	kept := FilterTables(tables, []string{"amount"})
	require.Len(t, kept, 1)
	require.Equal(t, invoice, kept[0])

	// matches are case-insensitive and may hit any row, not just the header
	kept = FilterTables(tables, []string{"A-1"})
	require.Len(t, kept, 1)
	require.Equal(t, invoice, kept[0])

	kept = FilterTables(tables, []string{"amount", "STOCK"})
	require.Len(t, kept, 2)

	require.Empty(t, FilterTables(tables, []string{"nothing matches this"}))
	require.Empty(t, FilterTables(nil, []string{"amount"}))
}
