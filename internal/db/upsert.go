package db

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// UpsertConfig describes one keyed bulk write.
type UpsertConfig struct {
	Table        string   // schema-qualified or bare, e.g. "public.external_place"
	Columns      []string // row layout
	ConflictKeys []string // unique constraint the write resolves against
	// UpdateCols are rewritten on conflict. Nil means every non-key column.
	UpdateCols []string
}

func (c UpsertConfig) validate() error {
	if len(c.Columns) == 0 {
		return eris.New("db: upsert: no columns specified")
	}
	if len(c.ConflictKeys) == 0 {
		return eris.New("db: upsert: no conflict keys specified")
	}
	for _, k := range c.ConflictKeys {
		if !slices.Contains(c.Columns, k) {
			return eris.Errorf("db: upsert: conflict key %q is not a column", k)
		}
	}
	return nil
}

func (c UpsertConfig) updateCols() []string {
	if c.UpdateCols != nil {
		return c.UpdateCols
	}
	cols := make([]string, 0, len(c.Columns))
	for _, col := range c.Columns {
		if !slices.Contains(c.ConflictKeys, col) {
			cols = append(cols, col)
		}
	}
	return cols
}

// BulkUpsert stages rows in a transaction-scoped temp table with COPY and
// merges them into the target with INSERT ... ON CONFLICT DO UPDATE. Rows
// repeating a conflict key collapse to the last one, since Postgres refuses
// to update the same target row twice in one statement. The batch commits
// as a whole or not at all.
func BulkUpsert(ctx context.Context, pool Pool, cfg UpsertConfig, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := cfg.validate(); err != nil {
		return 0, err
	}
	rows = lastByKey(cfg, rows)

	staging := stagingTable(cfg.Table)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: upsert: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, fmt.Sprintf(
		"CREATE TEMP TABLE %s (LIKE %s INCLUDING DEFAULTS) ON COMMIT DROP",
		staging.Sanitize(), sanitizeTable(cfg.Table),
	)); err != nil {
		return 0, eris.Wrapf(err, "db: upsert: create staging table for %s", cfg.Table)
	}

	if _, err := tx.CopyFrom(ctx, staging, cfg.Columns, pgx.CopyFromRows(rows)); err != nil {
		return 0, eris.Wrapf(err, "db: upsert: COPY into staging table for %s", cfg.Table)
	}

	tag, err := tx.Exec(ctx, mergeSQL(cfg, staging))
	if err != nil {
		return 0, eris.Wrapf(err, "db: upsert: INSERT ON CONFLICT for %s", cfg.Table)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: upsert: commit tx")
	}
	return tag.RowsAffected(), nil
}

// mergeSQL builds the INSERT ... SELECT ... ON CONFLICT statement. With no
// columns left to update it degrades to DO NOTHING.
func mergeSQL(cfg UpsertConfig, staging pgx.Identifier) string {
	cols := quoteAndJoin(cfg.Columns)

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) SELECT %s FROM %s ON CONFLICT (%s)",
		sanitizeTable(cfg.Table), cols, cols, staging.Sanitize(), quoteAndJoin(cfg.ConflictKeys))

	update := cfg.updateCols()
	if len(update) == 0 {
		b.WriteString(" DO NOTHING")
		return b.String()
	}
	b.WriteString(" DO UPDATE SET ")
	for i, col := range update {
		if i > 0 {
			b.WriteString(", ")
		}
		q := pgx.Identifier{col}.Sanitize()
		fmt.Fprintf(&b, "%s = EXCLUDED.%s", q, q)
	}
	return b.String()
}

// lastByKey drops earlier rows whose conflict key reappears later, keeping
// the order of the survivors.
func lastByKey(cfg UpsertConfig, rows [][]any) [][]any {
	idx := make([]int, len(cfg.ConflictKeys))
	for i, k := range cfg.ConflictKeys {
		idx[i] = slices.Index(cfg.Columns, k)
	}

	key := func(row []any) string {
		parts := make([]string, len(idx))
		for i, j := range idx {
			if j < len(row) {
				parts[i] = fmt.Sprint(row[j])
			}
		}
		return strings.Join(parts, "\x00")
	}

	last := make(map[string]int, len(rows))
	for i, row := range rows {
		last[key(row)] = i
	}
	if len(last) == len(rows) {
		return rows
	}

	out := make([][]any, 0, len(last))
	for i, row := range rows {
		if last[key(row)] == i {
			out = append(out, row)
		}
	}
	return out
}

// stagingTable names the temp table for a target, e.g. "_stage_public_external_place".
func stagingTable(table string) pgx.Identifier {
	return pgx.Identifier{"_stage_" + strings.ReplaceAll(table, ".", "_")}
}

// sanitizeTable quotes bare and schema-qualified table names.
func sanitizeTable(table string) string {
	if schema, name, ok := strings.Cut(table, "."); ok {
		return pgx.Identifier{schema, name}.Sanitize()
	}
	return pgx.Identifier{table}.Sanitize()
}

// quoteAndJoin quotes each column name and joins with commas.
func quoteAndJoin(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
