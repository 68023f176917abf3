package postgres

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/couchcryptid/mine-ops-etl/internal/domain"
)

// qualify returns the schema-qualified, quoted table identifier.
func qualify(schema, table string) string {
	return pgx.Identifier{schema, table}.Sanitize()
}

func productionQuery(staging string) string {
	return fmt.Sprintf(`
		SELECT date::timestamp, mine_id,
			   COALESCE(tons_extracted, 0)::text, quality_grade::text
		FROM %s
		ORDER BY date, mine_id
	`, qualify(staging, "production_logs"))
}

func sensorQuery(staging string) string {
	return fmt.Sprintf(`
		SELECT "timestamp", equipment_id, COALESCE(status, ''),
			   COALESCE(fuel_consumption, 0)::float8, COALESCE(maintenance_alert::int, 0)
		FROM %s
		ORDER BY "timestamp", equipment_id
	`, qualify(staging, "equipment_sensors"))
}

func mineQuery(staging string) string {
	return fmt.Sprintf(`
		SELECT mine_id, COALESCE(name, ''), COALESCE(location, '')
		FROM %s
		ORDER BY mine_id
	`, qualify(staging, "mines"))
}

// upsertSQL builds a keyed insert for t. Rows whose key already exists are
// overwritten so a rerun over the same staging data converges on the same
// warehouse state.
func upsertSQL(schema string, t domain.TableSchema) string {
	cols := make([]string, len(t.Columns))
	params := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = pgx.Identifier{c}.Sanitize()
		params[i] = fmt.Sprintf("$%d", i+1)
	}

	keys := make([]string, len(t.Key))
	isKey := make(map[string]bool, len(t.Key))
	for i, k := range t.Key {
		keys[i] = pgx.Identifier{k}.Sanitize()
		isKey[k] = true
	}

	var updates []string
	for _, c := range t.Columns {
		if isKey[c] {
			continue
		}
		id := pgx.Identifier{c}.Sanitize()
		updates = append(updates, id+" = EXCLUDED."+id)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) ",
		qualify(schema, t.Name),
		strings.Join(cols, ", "),
		strings.Join(params, ", "),
		strings.Join(keys, ", "),
	)
	if len(updates) == 0 {
		b.WriteString("DO NOTHING")
	} else {
		b.WriteString("DO UPDATE SET " + strings.Join(updates, ", "))
	}
	return b.String()
}
