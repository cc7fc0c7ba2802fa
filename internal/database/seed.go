// Copyright (c) 2026 Landpress Media SRL <dev@landpress.media>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data.
// It creates a default super admin if no admin users exist yet.
// Production deployments use the first-time setup endpoint instead.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM admin_users").Scan(&count); err != nil {
		return fmt.Errorf("seed check admin users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO admin_users (email, password_hash, name, role)
		VALUES ($1, $2, $3, $4)
	`, "admin@landpress.local", string(hash), "Admin", "super_admin")
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@landpress.local",
		"password", "admin",
	)

	return nil
}
