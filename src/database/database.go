package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/ledgerflow/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Ensuring database schema", "databasePath", databasePath)
	} else {
		stdlog.Println("Ensuring database schema for:", databasePath)
	}

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS uploads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL,
		target_year INTEGER NOT NULL DEFAULT 0,
		uploaded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS ledger_rows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		upload_id INTEGER NOT NULL,
		transaction_code TEXT NOT NULL,
		reference_number TEXT,
		date TEXT NOT NULL,
		due_date TEXT,
		particulars TEXT,
		security TEXT,
		number_of_shares REAL,
		unit_price REAL,
		fx_amount REAL,
		fx_running_balance REAL,
		currency TEXT,
		debit_amount REAL NOT NULL DEFAULT 0,
		credit_amount REAL NOT NULL DEFAULT 0,
		running_balance REAL,
		FOREIGN KEY(upload_id) REFERENCES uploads(id)
	);

	CREATE INDEX IF NOT EXISTS idx_ledger_rows_upload ON ledger_rows(upload_id);
	`

	if _, err := DB.Exec(createTableStatement); err != nil {
		stdlog.Fatalf("failed to create database schema: %v", err)
	}

	if logger.L != nil {
		logger.L.Info("Database schema ready")
	}
}
