package testutil

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"fishintel/internal/config"
	sharedtest "fishintel/internal/shared/testutil"
)

// SetupPaths creates raw, output and log directories under a temp dir and
// returns resolved paths whose source files live in the raw directory
func SetupPaths(t *testing.T) *config.Paths {
	t.Helper()

	base := t.TempDir()
	rawDir := filepath.Join(base, "raw")
	if err := os.MkdirAll(rawDir, 0755); err != nil {
		t.Fatalf("failed to create raw directory: %v", err)
	}

	return &config.Paths{
		BaseDir:      base,
		RawDir:       rawDir,
		ProDir:       filepath.Join(base, "pro"),
		MarketFile:   filepath.Join(rawDir, "market.xlsx"),
		LandingsFile: filepath.Join(rawDir, "landings.xlsx"),
		LogsDir:      filepath.Join(base, "logs"),
	}
}

// StandardMarket writes a two-year market workbook with all three category sheets to the raw directory
func StandardMarket(t *testing.T, paths *config.Paths) {
	t.Helper()

	sharedtest.WriteMarketWorkbook(t, paths.RawDir,
		sharedtest.MarketSheet{Name: "鮮魚データ", Rows: []sharedtest.MarketRow{
			{Year: 2023, Name: "まあじ", Origin: "長崎県", Qty: 100, Amt: 50000},
			{Year: 2023, Name: "まさば", Origin: "千葉県", Qty: 200, Amt: 40000},
			{Year: 2024, Name: "まあじ", Origin: "長崎県", Qty: 120, Amt: 66000},
			{Year: 2024, Name: "まあじ", Origin: "輸入", Qty: 30, Amt: 9000},
			{Year: 2024, Name: "まさば", Origin: "千葉県", Qty: 180, Amt: 45000},
		}},
		sharedtest.MarketSheet{Name: "冷凍魚データ", Rows: []sharedtest.MarketRow{
			{Year: 2023, Name: "まさば", Origin: "ノルウェー", Qty: 500, Amt: 150000},
			{Year: 2024, Name: "まさば", Origin: "ノルウェー", Qty: 400, Amt: 140000},
		}},
		sharedtest.MarketSheet{Name: "塩干データ", Rows: []sharedtest.MarketRow{
			{Year: 2024, Name: "まあじ", Origin: "静岡県", Qty: 10, Amt: 8000},
		}},
	)
}

// StandardLandings writes a two-year landings workbook to the raw directory
func StandardLandings(t *testing.T, paths *config.Paths) {
	t.Helper()

	var qty, amt [12]float64
	qty[0], amt[0] = 40, 20000
	qty[5], amt[5] = 60, 33000

	sharedtest.WriteLandingsWorkbook(t, paths.RawDir, "水揚げデータ",
		sharedtest.MonthlyRow(2023, "マアジ", "松浦", "まき網", qty, amt),
		sharedtest.MonthlyRow(2024, "マアジ", "松浦", "まき網", qty, amt),
		sharedtest.MonthlyRow(2024, "マアジ", "五島", "定置網", qty, amt),
		sharedtest.MonthlyRow(2024, "マサバ", "松浦", "まき網", qty, amt),
	)
}

// ReadCSV reads a published CSV file (BOM-tolerant) into its header and records
func ReadCSV(t *testing.T, path string) ([]string, [][]string) {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse %s: %v", path, err)
	}
	if len(rows) == 0 {
		t.Fatalf("%s has no header", path)
	}
	return rows[0], rows[1:]
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if !FileExists(path) {
		t.Errorf("file %s does not exist", path)
	}
}

// AssertFileNotExists checks if a file doesn't exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if FileExists(path) {
		t.Errorf("file %s exists but should not", path)
	}
}
