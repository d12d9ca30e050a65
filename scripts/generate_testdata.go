//go:build ignore

// generate_testdata.go writes benchmark datasets in every input format.
// Usage: go run scripts/generate_testdata.go
//
// Creates, under testdata/benchmark/:
//
//	small.csv / small.db    (50 locations)
//	medium.csv / medium.db  (200 locations)
//	large.csv / large.db    (1000 locations)
package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/lifespan/pkg/model"
	"github.com/vanderheijden86/lifespan/pkg/testutil"
)

var sizes = []struct {
	name string
	n    int
}{
	{"small", 50},
	{"medium", 200},
	{"large", 1000},
}

func main() {
	outputDir := filepath.Join("testdata", "benchmark")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, s := range sizes {
		cfg := testutil.DefaultConfig()
		cfg.Seed = int64(s.n)
		cfg.LocationPrefix = "Region"
		records := testutil.New(cfg).Records(s.n)

		csvPath := filepath.Join(outputDir, s.name+".csv")
		data := testutil.CSV(records)
		if err := os.WriteFile(csvPath, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", csvPath, err)
			os.Exit(1)
		}
		fmt.Printf("  Written %s (%d bytes)\n", csvPath, len(data))

		dbPath := filepath.Join(outputDir, s.name+".db")
		if err := writeSQLite(dbPath, records); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", dbPath, err)
			os.Exit(1)
		}
		fmt.Printf("  Written %s (%d rows)\n", dbPath, len(records))
	}

	fmt.Println("\nDone! Datasets created in", outputDir)
}

// writeSQLite replaces path with a database holding records in the
// default "records" table.
func writeSQLite(path string, records []model.Record) error {
	_ = os.Remove(path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE records (
		Location TEXT PRIMARY KEY,
		HealthyLifeExpectancy REAL,
		LifeExpectancy REAL,
		RetirementAge REAL
	)`); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO records VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, r := range records {
		if _, err := stmt.Exec(r.Location, r.HealthyLifeExpectancy, r.LifeExpectancy, r.RetirementAge); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
