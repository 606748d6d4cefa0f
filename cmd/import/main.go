package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Sid110307/FaceCounter/internal/repository/sqlite"
	"github.com/Sid110307/FaceCounter/internal/service/importer"
)

func main() {
	logDir := flag.String("dir", ".", "Directory containing FaceCounter_*.csv session logs")
	dbPath := flag.String("db", "data/facecounter.db", "Database path")
	flag.Parse()

	fmt.Printf("Importing session logs from %s to database %s\n", *logDir, *dbPath)

	// Ensure database directory exists
	if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	db, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	sessions := sqlite.NewSessionRepository(db)
	im := importer.New(sessions, sqlite.NewSampleRepository(db))

	skipped := 0
	res, err := im.ImportDir(*logDir, func(path string, err error) {
		log.Printf("⚠️  Skipping %s: %v", filepath.Base(path), err)
		skipped++
	})
	if err != nil {
		db.Close()
		log.Fatalf("Failed to import session logs: %v", err)
	}

	if res.Imported == 0 && res.Duplicates == 0 {
		fmt.Println("No sessions found to import")
		return
	}

	fmt.Printf("✅ Imported %d sessions (%d samples)\n", res.Imported, res.Samples)
	if res.Duplicates > 0 {
		fmt.Printf("ℹ️  %d sessions were already archived\n", res.Duplicates)
	}
	if res.Empty > 0 {
		fmt.Printf("ℹ️  %d runs had no samples\n", res.Empty)
	}
	if skipped > 0 {
		fmt.Printf("⚠️  Skipped %d files (invalid format or errors)\n", skipped)
	}

	all, err := sessions.GetAll()
	if err == nil {
		faces := 0
		for _, s := range all {
			faces += s.Total
		}
		fmt.Printf("\n📊 Archive Statistics:\n")
		fmt.Printf("   Sessions: %d\n", len(all))
		fmt.Printf("   Faces counted: %d\n", faces)
	}
}
