package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type Settings struct {
	Version string
	SQLMode []string
}

func retrieveSettings(ctx context.Context, db *sql.DB) (Settings, error) {
	version, err := retrieveVersion(ctx, db)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to retrieve MySQL version: %w", err)
	}

	sqlMode, err := retrieveSessionSQLMode(ctx, db)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to retrieve MySQL session sql_mode: %w", err)
	}

	return Settings{
		Version: version,
		SQLMode: sqlMode,
	}, nil
}

func retrieveVersion(ctx context.Context, db *sql.DB) (string, error) {
	var version string
	if err := db.QueryRowContext(ctx, `SELECT VERSION();`).Scan(&version); err != nil {
		return "", err
	}

	return version, nil
}

func retrieveSessionSQLMode(ctx context.Context, db *sql.DB) ([]string, error) {
	var sqlMode string
	if err := db.QueryRowContext(ctx, `SELECT @@SESSION.sql_mode;`).Scan(&sqlMode); err != nil {
		return nil, err
	}

	return strings.Split(sqlMode, ","), nil
}

func fetchVariable(ctx context.Context, db *sql.DB, name string) (string, error) {
	row := db.QueryRowContext(ctx, "SHOW VARIABLES WHERE variable_name = ?", name)
	if row.Err() != nil {
		return "", fmt.Errorf("failed to query for %q variable: %w", name, row.Err())
	}

	var variableName string
	var value string
	if err := row.Scan(&variableName, &value); err != nil {
		return "", fmt.Errorf("failed to scan row: %w", err)
	} else if variableName != name {
		return "", fmt.Errorf("the variable %q was returned instead of %q", variableName, name)
	}

	return value, nil
}

// validateServer checks the server is configured for row-based replication,
// without which the binlog carries no usable row images.
func validateServer(ctx context.Context, db *sql.DB) error {
	value, err := fetchVariable(ctx, db, "binlog_format")
	if err != nil {
		return err
	}

	if strings.ToUpper(value) != "ROW" {
		return fmt.Errorf("'binlog_format' must be set to 'ROW', current value is '%s'", value)
	}

	return nil
}
