package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// NotifyChannel is the LISTEN/NOTIFY channel that carries election data changes.
// The payload is the name of the table that changed.
const NotifyChannel = "election_changes"

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  email         TEXT        NOT NULL UNIQUE,
  password_hash TEXT        NOT NULL,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_profiles",
		SQL: `CREATE TABLE IF NOT EXISTS profiles (
  id         UUID        PRIMARY KEY REFERENCES users (id) ON DELETE CASCADE,
  full_name  TEXT        NOT NULL,
  class      TEXT        NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_user_roles",
		SQL: `CREATE TABLE IF NOT EXISTS user_roles (
  user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  role    TEXT NOT NULL CHECK (role IN ('voter', 'admin')),
  PRIMARY KEY (user_id, role)
);`,
	},
	{
		Name: "create_table_registration_codes",
		SQL: `CREATE TABLE IF NOT EXISTS registration_codes (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  code       TEXT        NOT NULL UNIQUE,
  is_used    BOOLEAN     NOT NULL DEFAULT false,
  used_by    UUID        REFERENCES users (id) ON DELETE SET NULL,
  used_at    TIMESTAMPTZ,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_registration_codes_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_registration_codes_created_at ON registration_codes (created_at);`,
	},
	{
		Name: "create_table_candidates",
		SQL: `CREATE TABLE IF NOT EXISTS candidates (
  id                  UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  candidate_number    INTEGER     NOT NULL UNIQUE CHECK (candidate_number > 0),
  chairman_name       TEXT        NOT NULL,
  vice_chairman_name  TEXT        NOT NULL,
  chairman_photo      TEXT        NOT NULL DEFAULT '',
  vice_chairman_photo TEXT        NOT NULL DEFAULT '',
  vision              TEXT        NOT NULL DEFAULT '',
  mission             TEXT        NOT NULL DEFAULT '',
  created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_votes",
		SQL: `CREATE TABLE IF NOT EXISTS votes (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  voter_id     UUID        NOT NULL UNIQUE REFERENCES users (id) ON DELETE CASCADE,
  candidate_id UUID        NOT NULL REFERENCES candidates (id) ON DELETE RESTRICT,
  voted_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_votes_candidate_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_votes_candidate_id ON votes (candidate_id);`,
	},
	{
		Name: "create_function_notify_election_change",
		SQL: `CREATE OR REPLACE FUNCTION notify_election_change() RETURNS trigger AS $$
BEGIN
  PERFORM pg_notify('` + NotifyChannel + `', TG_TABLE_NAME);
  RETURN NULL;
END;
$$ LANGUAGE plpgsql;`,
	},
	{
		Name: "create_trigger_votes_notify",
		SQL: `DROP TRIGGER IF EXISTS trg_votes_notify ON votes;
CREATE TRIGGER trg_votes_notify AFTER INSERT OR UPDATE OR DELETE ON votes
  FOR EACH STATEMENT EXECUTE FUNCTION notify_election_change();`,
	},
	{
		Name: "create_trigger_candidates_notify",
		SQL: `DROP TRIGGER IF EXISTS trg_candidates_notify ON candidates;
CREATE TRIGGER trg_candidates_notify AFTER INSERT OR UPDATE OR DELETE ON candidates
  FOR EACH STATEMENT EXECUTE FUNCTION notify_election_change();`,
	},
	{
		Name: "create_trigger_user_roles_notify",
		SQL: `DROP TRIGGER IF EXISTS trg_user_roles_notify ON user_roles;
CREATE TRIGGER trg_user_roles_notify AFTER INSERT OR UPDATE OR DELETE ON user_roles
  FOR EACH STATEMENT EXECUTE FUNCTION notify_election_change();`,
	},
}

// sentinelTrigger is created by the last step, so its presence means every step has run.
const sentinelTrigger = "trg_user_roles_notify"

// EnsureMigrated checks for the trigger created by the final step and runs every step if it is missing.
// Steps are idempotent, so a partially applied schema is completed on the next start.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *slog.Logger, dbHost string) error {
	start := time.Now()
	log := logger.With("component", "database", "db_host", dbHost)

	log.Info("db_migration_check", "status", "starting")

	var exists bool
	query := "SELECT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = $1)"
	if err := db.QueryRowContext(ctx, query, sentinelTrigger).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			"status", "error",
			"error_message", fmt.Sprintf("failed to check sentinel trigger: %v", err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel trigger: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			"status", "success",
			"detail", "schema already exists, skipping migration",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	log.Info("db_migration_start", "status", "in_progress", "steps", len(steps))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Debug("db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	log.Info("db_migration_success",
		"status", "success",
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}
