package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scanner/internal/domain"
)

func writeTempCsv(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func Test_ParseLocaleDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1.234,56", "1234.56"},
		{"12,5", "12.5"},
		{"1.000.000,00", "1000000"},
		{"500", "500"},
		{" 42,10 ", "42.1"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseLocaleDecimal(tc.in)
			require.NoError(t, err)
			require.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s", got)
		})
	}

	t.Run("rejects empty and junk", func(t *testing.T) {
		_, err := ParseLocaleDecimal("")
		require.Error(t, err)
		_, err = ParseLocaleDecimal("abc")
		require.Error(t, err)
	})
}

func Test_csvHoldingsRepository_LoadHoldings(t *testing.T) {
	logger := zap.NewNop().Sugar()

	t.Run("parses broker export format", func(t *testing.T) {
		stocks := writeTempCsv(t, "stocks.csv",
			"Name;ISIN;WKN;Wert\n"+
				"SAP SE;DE0007164600;716460;1.234,56\n"+
				"Apple Inc.;US0378331005;865985;987,65\n")
		crypto := writeTempCsv(t, "crypto.csv",
			"Name;ISIN;WKN;Wert\n"+
				"Bitcoin;;;2.500,00\n")

		repo := NewCsvHoldingsRepository(stocks, crypto, logger)
		holdings, err := repo.LoadHoldings()
		require.NoError(t, err)
		require.Len(t, holdings, 3)

		require.Equal(t, "SAP SE", holdings[0].Name)
		require.Equal(t, "DE0007164600", holdings[0].ISIN)
		require.Equal(t, domain.AssetClassStock, holdings[0].AssetClass)
		require.True(t, holdings[0].Value.Equal(decimal.RequireFromString("1234.56")))

		require.Equal(t, "Bitcoin", holdings[2].Name)
		require.Equal(t, domain.AssetClassCrypto, holdings[2].AssetClass)
		require.True(t, holdings[2].Value.Equal(decimal.NewFromInt(2500)))
	})

	t.Run("skips rows without a positive value", func(t *testing.T) {
		stocks := writeTempCsv(t, "stocks.csv",
			"Name;ISIN;WKN;Wert\n"+
				"Zero Position;DE123;123;0,00\n"+
				"Kept;DE456;456;100,00\n")

		repo := NewCsvHoldingsRepository(stocks, "", logger)
		holdings, err := repo.LoadHoldings()
		require.NoError(t, err)
		require.Len(t, holdings, 1)
		require.Equal(t, "Kept", holdings[0].Name)
	})

	t.Run("missing crypto file is tolerated", func(t *testing.T) {
		stocks := writeTempCsv(t, "stocks.csv",
			"Name;ISIN;WKN;Wert\nSAP SE;DE0007164600;716460;100,00\n")

		repo := NewCsvHoldingsRepository(stocks, filepath.Join(t.TempDir(), "missing.csv"), logger)
		holdings, err := repo.LoadHoldings()
		require.NoError(t, err)
		require.Len(t, holdings, 1)
	})

	t.Run("fails when nothing is held anywhere", func(t *testing.T) {
		repo := NewCsvHoldingsRepository(
			filepath.Join(t.TempDir(), "a.csv"),
			filepath.Join(t.TempDir(), "b.csv"),
			logger,
		)
		_, err := repo.LoadHoldings()
		require.Error(t, err)
	})

	t.Run("malformed numbers fail loudly", func(t *testing.T) {
		stocks := writeTempCsv(t, "stocks.csv",
			"Name;ISIN;WKN;Wert\nBroken;DE123;123;not-a-number\n")

		repo := NewCsvHoldingsRepository(stocks, "", logger)
		_, err := repo.LoadHoldings()
		require.Error(t, err)
	})
}

func Test_csvSymbolMapRepository_Load(t *testing.T) {
	t.Run("maps isin to symbol", func(t *testing.T) {
		path := writeTempCsv(t, "symbol-map.csv",
			"ISIN;Symbol\n"+
				"IE00B4L5Y983;IWDA\n"+
				"de0007164600;SAP\n")

		out, err := NewCsvSymbolMapRepository(path).Load()
		require.NoError(t, err)
		require.Equal(t, "IWDA", out["IE00B4L5Y983"])
		// keys are normalized to upper case
		require.Equal(t, "SAP", out["DE0007164600"])
	})

	t.Run("blank rows are dropped", func(t *testing.T) {
		path := writeTempCsv(t, "symbol-map.csv",
			"ISIN;Symbol\n;IWDA\nIE00B4L5Y983;\n")
		out, err := NewCsvSymbolMapRepository(path).Load()
		require.NoError(t, err)
		require.Empty(t, out)
	})

	t.Run("missing file means no overrides", func(t *testing.T) {
		out, err := NewCsvSymbolMapRepository(filepath.Join(t.TempDir(), "nope.csv")).Load()
		require.NoError(t, err)
		require.Empty(t, out)
	})
}
