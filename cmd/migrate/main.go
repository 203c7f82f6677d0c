package main

import (
	"log"
	"os"

	"docgen-be/internal/model"
	"docgen-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting Authoritative GORM Migration...")

	// 3. Pre-Migration: Extensions (Things GORM AutoMigrate doesn't do)
	log.Println("Step 1: Setting up Extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models (The Core Task)
	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.Document{},
		&model.DocumentChunk{},
		&model.StyleProfileRecord{},
		&model.WorkflowExecution{},
		&model.AgentExecution{},
	}

	// Migrate strictly
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: Views & Indexes
	log.Println("Step 3: Creating Views and Indexes...")

	postMigrationSQL := []string{
		// ANN index for chunk similarity search
		`CREATE INDEX IF NOT EXISTS idx_document_chunks_embedding
		 ON document_chunks USING hnsw (embedding_value vector_cosine_ops);`,

		// View: retrievable chunks joined with their document's ranking signals
		`CREATE OR REPLACE VIEW retrievable_chunks AS
		 SELECT c.id AS chunk_id, c.document_id, c.chunk_index, c.content, c.embedding_value AS embedding,
		        d.title AS document_title, d.doc_type, d.feedback_score, d.approved
		 FROM document_chunks c JOIN documents d ON c.document_id = d.id
		 WHERE c.deleted_at IS NULL AND d.deleted_at IS NULL;`,

		// View: workflow run summary for dashboards
		`CREATE OR REPLACE VIEW workflow_run_summary AS
		 SELECT w.id, w.doc_type, w.status, w.quality_score, w.iteration_count,
		        w.started_at, w.completed_at,
		        (SELECT count(*) FROM agent_executions a WHERE a.workflow_id = w.id) AS agent_count
		 FROM workflow_executions w
		 ORDER BY w.started_at DESC;`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	color.Green("✅ Success: Database migration completed successfully via GORM.")
}
