package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- PSP transaction table
		CREATE TABLE IF NOT EXISTS psp_transaction (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			date DATE NOT NULL,
			category VARCHAR(3) NOT NULL,
			amount FLOAT NOT NULL CHECK (amount >= 0),
			currency VARCHAR(10) NOT NULL,
			psp VARCHAR(100),
			channel VARCHAR(11),
			exchange_rate FLOAT,
			converted_amount FLOAT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_psp_transaction_date ON psp_transaction(date);
		CREATE INDEX IF NOT EXISTS idx_psp_transaction_psp_date ON psp_transaction(psp, date);

		-- Exchange rate table
		CREATE TABLE IF NOT EXISTS exchange_rate (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			currency_pair VARCHAR(15) NOT NULL,
			date DATE NOT NULL,
			rate FLOAT NOT NULL CHECK (rate > 0),
			source VARCHAR(6) NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT unique_pair_date_source UNIQUE (currency_pair, date, source)
		);

		-- PSP allocation table
		CREATE TABLE IF NOT EXISTS psp_allocation (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			psp VARCHAR(100) NOT NULL,
			date DATE NOT NULL,
			allocated_amount FLOAT NOT NULL CHECK (allocated_amount >= 0),
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT unique_psp_date UNIQUE (psp, date)
		);

		-- Period snapshot table
		CREATE TABLE IF NOT EXISTS period_snapshot (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			granularity VARCHAR(7) NOT NULL,
			period VARCHAR(10) NOT NULL,
			total_deposits_tl FLOAT,
			total_withdrawals_tl FLOAT,
			total_deposits_usd FLOAT,
			total_withdrawals_usd FLOAT,
			bank_tl FLOAT,
			credit_card_tl FLOAT,
			tether_usd FLOAT,
			transaction_count INTEGER,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT unique_granularity_period UNIQUE (granularity, period)
		);

		-- System settings
		CREATE TABLE IF NOT EXISTS system_setting (
			key VARCHAR(100) NOT NULL PRIMARY KEY,
			value TEXT NOT NULL,
			encrypted BOOLEAN DEFAULT FALSE NOT NULL
		);
	`

	_, err := db.Exec(schema)
	return err
}
