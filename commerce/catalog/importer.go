package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	logx "github.com/tanpawarit/chative-wholesale-agent/pkg/logger"
	"github.com/tealeg/xlsx"
)

// Spreadsheet headers of the catalog workbook.
const (
	ColumnType        = "TIPO_PRENDA"
	ColumnColor       = "COLOR"
	ColumnSize        = "TALLA"
	ColumnDescription = "DESCRIPCIÓN"
	ColumnPrice50     = "PRECIO_50_U"
	ColumnPrice100    = "PRECIO_100_U"
	ColumnPrice200    = "PRECIO_200_U"
	ColumnStock       = "CANTIDAD_DISPONIBLE"
	ColumnAvailable   = "DISPONIBLE"
	ColumnCategory    = "CATEGORÍA"
)

type ImportReport struct {
	Imported int
	Skipped  int
}

// Import loads the first sheet of the workbook at path and upserts its rows.
func Import(ctx context.Context, repo Repository, path string) (ImportReport, error) {
	xlFile, err := xlsx.OpenFile(path)
	if err != nil {
		return ImportReport{}, fmt.Errorf("open workbook %s: %w", path, err)
	}
	if len(xlFile.Sheets) == 0 {
		return ImportReport{}, fmt.Errorf("workbook %s has no sheets", path)
	}

	products, skipped, err := ParseSheet(xlFile.Sheets[0])
	if err != nil {
		return ImportReport{}, err
	}
	if err := repo.Upsert(ctx, products); err != nil {
		return ImportReport{}, err
	}

	report := ImportReport{Imported: len(products), Skipped: skipped}
	logx.Info().
		Str("path", path).
		Int("imported", report.Imported).
		Int("skipped", report.Skipped).
		Msg("catalog import finished")
	return report, nil
}

// ParseSheet converts sheet rows into products. The first row must hold the
// column headers. Rows without a garment type or with unparsable prices or
// stock are skipped and counted.
func ParseSheet(sheet *xlsx.Sheet) ([]Product, int, error) {
	if sheet == nil || len(sheet.Rows) < 1 {
		return nil, 0, fmt.Errorf("sheet is empty or missing header row")
	}

	header := map[string]int{}
	for i, cell := range sheet.Rows[0].Cells {
		header[strings.ToUpper(strings.TrimSpace(cell.String()))] = i
	}
	for _, col := range []string{ColumnType, ColumnPrice50, ColumnPrice100, ColumnPrice200, ColumnStock} {
		if _, ok := header[col]; !ok {
			return nil, 0, fmt.Errorf("sheet is missing column %s", col)
		}
	}

	var (
		products []Product
		skipped  int
	)
	for _, row := range sheet.Rows[1:] {
		if row == nil {
			continue
		}
		get := func(col string) string {
			idx, ok := header[col]
			if !ok || idx >= len(row.Cells) {
				return ""
			}
			return strings.TrimSpace(row.Cells[idx].String())
		}

		garment := get(ColumnType)
		if garment == "" {
			skipped++
			continue
		}
		price50, err1 := parsePrice(get(ColumnPrice50))
		price100, err2 := parsePrice(get(ColumnPrice100))
		price200, err3 := parsePrice(get(ColumnPrice200))
		if err1 != nil || err2 != nil || err3 != nil {
			skipped++
			continue
		}
		stock, err := parseStock(get(ColumnStock))
		if err != nil {
			skipped++
			continue
		}

		color := get(ColumnColor)
		size := get(ColumnSize)
		products = append(products, Product{
			Name:        fmt.Sprintf("%s %s (%s)", garment, color, size),
			Description: get(ColumnDescription),
			Price50:     price50,
			Price100:    price100,
			Price200:    price200,
			Stock:       int(stock),
			Available:   parseAvailable(get(ColumnAvailable)),
			Category:    get(ColumnCategory),
			Color:       color,
			Size:        size,
			Type:        garment,
		})
	}
	return products, skipped, nil
}

func parsePrice(raw string) (float64, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "$"))
	raw = strings.ReplaceAll(raw, ",", ".")
	return strconv.ParseFloat(raw, 64)
}

// parseStock reads a stock cell. A blank cell means no stock; negative counts
// are clamped to zero.
func parseStock(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	stock, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0, err
	}
	if stock < 0 {
		stock = 0
	}
	return stock, nil
}

func parseAvailable(raw string) bool {
	switch Normalize(raw) {
	case "si", "yes", "true", "1":
		return true
	default:
		return false
	}
}
