package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/wkim/teamshop-backend/config"
	"github.com/wkim/teamshop-backend/internal/app/model"
	"github.com/wkim/teamshop-backend/internal/app/repository"
	"github.com/wkim/teamshop-backend/internal/db"
	"github.com/wkim/teamshop-backend/pkg/money"
	"github.com/xuri/excelize/v2"
)

// Seeds the catalog and roster from an XLSX workbook. The workbook
// needs an "Items" sheet (Name, Price, Sizes, Link, Active) and an
// optional "Players" sheet (Name, Number).

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

	itemRepo := repository.NewItemRepository(db.GetDB())
	playerRepo := repository.NewPlayerRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	items, players, err := readWorkbook(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Items to import: %d, players to import: %d\n", len(items), len(players))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	// Items are appended after whatever is already in the catalog so
	// display positions stay dense.
	next, err := itemRepo.MaxDisplayOrder()
	if err != nil {
		log.Fatal("Failed to read display order:", err)
	}
	for i := range items {
		next++
		items[i].DisplayOrder = next
		if err := itemRepo.Create(&items[i]); err != nil {
			log.Fatalf("Failed to create item %q: %v", items[i].Name, err)
		}
	}

	for i := range players {
		if err := playerRepo.Create(&players[i]); err != nil {
			log.Fatalf("Failed to create player %q: %v", players[i].FullName(), err)
		}
	}

	fmt.Println("Import completed successfully!")
}

func readWorkbook(filePath string) ([]model.Item, []model.Player, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	items, err := readItems(f)
	if err != nil {
		return nil, nil, err
	}

	players, err := readPlayers(f)
	if err != nil {
		return nil, nil, err
	}
	return items, players, nil
}

func readItems(f *excelize.File) ([]model.Item, error) {
	rows, err := f.GetRows("Items")
	if err != nil {
		return nil, fmt.Errorf("failed to read Items sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("Items sheet has no data rows")
	}

	var items []model.Item
	for i, row := range rows[1:] {
		if len(row) == 0 || strings.TrimSpace(cell(row, 0)) == "" {
			continue
		}

		priceCents, err := parsePrice(cell(row, 1))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad price %q: %w", i+2, cell(row, 1), err)
		}

		item := model.Item{
			Name:       strings.TrimSpace(cell(row, 0)),
			PriceCents: priceCents,
			Sizes:      parseSizes(cell(row, 2)),
			Link:       strings.TrimSpace(cell(row, 3)),
			Active:     parseActive(cell(row, 4)),
		}
		items = append(items, item)
	}
	return items, nil
}

func readPlayers(f *excelize.File) ([]model.Player, error) {
	rows, err := f.GetRows("Players")
	if err != nil || len(rows) < 2 {
		// The Players sheet is optional
		return nil, nil
	}

	var players []model.Player
	for _, row := range rows[1:] {
		firstName := strings.TrimSpace(cell(row, 0))
		lastName := strings.TrimSpace(cell(row, 1))
		if firstName == "" || lastName == "" {
			continue
		}
		jerseyNumber, err := strconv.Atoi(strings.TrimSpace(cell(row, 2)))
		if err != nil || jerseyNumber < 0 {
			continue
		}
		players = append(players, model.Player{
			FirstName:    firstName,
			LastName:     lastName,
			JerseyNumber: jerseyNumber,
		})
	}
	return players, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}

// parsePrice accepts either integer cents ("2500") or a dollar amount
// ("$25.00").
func parsePrice(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty price")
	}
	if !strings.Contains(s, ".") && !strings.Contains(s, "$") {
		return strconv.ParseInt(s, 10, 64)
	}
	return money.ParseDollars(s)
}

func parseSizes(s string) model.StringList {
	var sizes model.StringList
	for _, part := range strings.Split(s, ",") {
		if size := strings.TrimSpace(part); size != "" {
			sizes = append(sizes, size)
		}
	}
	return sizes
}

func parseActive(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "true", "yes", "y", "1":
		return true
	}
	return false
}
