package db

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/gorm"
)

// findProjectRoot looks for go.mod file to determine project root
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// constructDBURL creates the database URL from environment variables
func constructDBURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
	)
}

// ensureCommentEnums ensures the comment_status and comment_platform
// enum types exist
func ensureCommentEnums(db *gorm.DB) error {
	enums := map[string]string{
		"comment_status": `
			CREATE TYPE comment_status AS ENUM (
				'pending',
				'classified',
				'replied',
				'hidden',
				'escalated',
				'ignored',
				'classification_failed',
				'reply_failed',
				'hide_failed',
				'escalation_failed'
			);
		`,
		"comment_platform": `
			CREATE TYPE comment_platform AS ENUM (
				'facebook',
				'instagram',
				'facebook_ads'
			);
		`,
	}

	for name, create := range enums {
		var exists bool
		err := db.Raw(`
			SELECT EXISTS (
				SELECT 1 FROM pg_type
				WHERE typname = ?
			);
		`, name).Scan(&exists).Error
		if err != nil {
			return err
		}

		if !exists {
			if err := db.Exec(create).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
