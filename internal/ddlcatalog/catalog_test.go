package ddlcatalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const fixtureDDL = `-- postgres

CREATE TABLE analytics.public.customers (
  customer_id INTEGER NOT NULL,
  region VARCHAR(50),
  lifetime_value DECIMAL(18,2) COMMENT 'total spend'
);

CREATE TABLE analytics.public.orders (
  order_id INTEGER NOT NULL,
  customer_id INTEGER NOT NULL,
  order_total DECIMAL(18,2)
);
`

func TestParseDDL(t *testing.T) {
	cat, err := ParseDDL(fixtureDDL)
	require.NoError(t, err)

	tables, err := cat.Tables()
	require.NoError(t, err)
	require.Len(t, tables, 2)

	require.Equal(t, "customers", tables[0].Name)
	require.Equal(t, "public", tables[0].Schema)
	require.Equal(t, "analytics", tables[0].Database)
	require.Len(t, tables[0].Columns, 3)
	require.Equal(t, "lifetime_value", tables[0].Columns[2].Name)
	require.Equal(t, "total spend", tables[0].Columns[2].Comment)
}

func TestParseDDL_UnknownDialect(t *testing.T) {
	_, err := ParseDDL("-- cobol\nCREATE TABLE x (a INT);")
	require.Error(t, err)
}
