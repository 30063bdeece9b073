package main

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/gustavo180591/ecommerce-zapatillas/config"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/model"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/repository"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/db"
	"github.com/xuri/excelize/v2"
)

// Expected sheet layout, one row per variant:
// name | brand | category | price | sale_price | size | color | price_diff | stock | image_url
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	productRepo := repository.NewProductRepository(db.GetDB())
	variantRepo := repository.NewVariantRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	catalog, err := readCatalogFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Products to import: %d\n", len(catalog))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	imported := 0
	variants := 0
	for _, entry := range catalog {
		if err := productRepo.Create(entry.product); err != nil {
			log.Fatal("Failed to create product:", err)
		}
		for _, variant := range entry.variants {
			variant.ProductID = entry.product.ID
			if err := variantRepo.Create(variant); err != nil {
				log.Fatal("Failed to create variant:", err)
			}
			variants++
		}
		imported++
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Products imported: %d, variants: %d\n", imported, variants)
}

type catalogEntry struct {
	product  *model.Product
	variants []*model.Variant
}

func readCatalogFromXLSX(filePath string) ([]*catalogEntry, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	byName := make(map[string]*catalogEntry)
	var order []string
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}
		if len(row) < 9 {
			skipped++
			continue
		}

		name := strings.TrimSpace(row[0])
		brand := strings.TrimSpace(row[1])
		category := strings.TrimSpace(row[2])
		size := strings.TrimSpace(row[5])
		color := strings.TrimSpace(row[6])
		if name == "" || size == "" || color == "" {
			skipped++
			continue
		}

		price, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
		if err != nil || price <= 0 {
			skipped++
			continue
		}
		var salePrice *float64
		if raw := strings.TrimSpace(row[4]); raw != "" {
			if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
				salePrice = &v
			}
		}
		priceDiff, _ := strconv.ParseFloat(strings.TrimSpace(row[7]), 64)
		stock, err := strconv.Atoi(strings.TrimSpace(row[8]))
		if err != nil || stock < 0 {
			stock = 0
		}
		imageURL := ""
		if len(row) > 9 {
			imageURL = strings.TrimSpace(row[9])
		}

		entry, exists := byName[name]
		if !exists {
			entry = &catalogEntry{
				product: &model.Product{
					Name:      name,
					Brand:     brand,
					Category:  category,
					Price:     price,
					SalePrice: salePrice,
					Currency:  "ARS",
					ImageURL:  imageURL,
				},
			}
			byName[name] = entry
			order = append(order, name)
		}

		if !entry.product.HasSize(size) {
			entry.product.Sizes = append(entry.product.Sizes, size)
		}
		if !entry.product.HasColor(color) {
			entry.product.Colors = append(entry.product.Colors, color)
		}
		entry.variants = append(entry.variants, &model.Variant{
			Size:      size,
			Color:     color,
			PriceDiff: priceDiff,
			Stock:     stock,
		})
	}

	if skipped > 0 {
		fmt.Printf("Skipped %d malformed rows\n", skipped)
	}

	catalog := make([]*catalogEntry, 0, len(byName))
	for _, name := range order {
		entry := byName[name]
		sort.Strings(entry.product.Sizes)
		sort.Strings(entry.product.Colors)
		catalog = append(catalog, entry)
	}
	return catalog, nil
}
