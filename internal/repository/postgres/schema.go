package postgres

import (
	"context"
	"fmt"
)

// EnsureSchema creates the asset table and its indexes if they don't exist.
func EnsureSchema(ctx context.Context, cfg *RepositoryConfig) error {
	executor := GetExecutor(ctx, cfg.Pool)
	t := cfg.Tables

	if _, err := executor.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`); err != nil {
		return fmt.Errorf("enable uuid-ossp: %w", err)
	}

	createAssets := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name TEXT NOT NULL,
			asset_type TEXT NOT NULL DEFAULT 'Laptop',
			status TEXT NOT NULL DEFAULT 'In Stock'
				CHECK (status IN ('In Stock', 'Assigned', 'Repair', 'Retired')),
			serial_number TEXT,
			location TEXT,
			assigned_to TEXT,
			description TEXT,
			notes TEXT,
			purchase_date TIMESTAMPTZ,
			warranty_expiry TIMESTAMPTZ,
			asset_tag TEXT NOT NULL,
			created_by_email TEXT NOT NULL,
			deleted_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`, t.Assets)
	if _, err := executor.Exec(ctx, createAssets); err != nil {
		return fmt.Errorf("create %s: %w", t.Assets, err)
	}

	indexes := []string{
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS idx_%sassets_tag ON %s(asset_tag)`, t.Prefix, t.Assets),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%sassets_owner ON %s(created_by_email)`, t.Prefix, t.Assets),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%sassets_deleted ON %s(deleted_at)`, t.Prefix, t.Assets),
	}
	for _, stmt := range indexes {
		if _, err := executor.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	return nil
}

// DropTables removes every table owned by the tracker.
func DropTables(ctx context.Context, cfg *RepositoryConfig) error {
	executor := GetExecutor(ctx, cfg.Pool)
	if _, err := executor.Exec(ctx, "DROP TABLE IF EXISTS "+cfg.Tables.Assets+" CASCADE"); err != nil {
		return fmt.Errorf("drop %s: %w", cfg.Tables.Assets, err)
	}
	return nil
}
