package duck

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	nt "picklist/entity"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Duck serves option records out of an in-memory duckdb.
type Duck struct {
	db     *sql.DB
	logger nt.Logger
	tables map[string]bool
}

// New opens an in-memory duckdb.
// The driver is registered by the main, blank importing go-duckdb.
func New(lgr nt.Logger) (dk *Duck, err error) {

	db, err := sql.Open("duckdb", "")
	if err != nil {
		err = errors.Wrapf(err, "failed to open memo duck")
		return
	}

	dk = &Duck{
		db:     db,
		logger: lgr,
		tables: map[string]bool{},
	}

	return
}

func (dk *Duck) Close() {
	dk.db.Close()
}

// Load a newline delimited json file into table
func (dk *Duck) Load(ctx context.Context, path, table string) (err error) {

	if !identRe.MatchString(table) {
		err = errors.Errorf("invalid table name %q", table)
		return
	}

	create := fmt.Sprintf(`
		CREATE OR REPLACE TABLE %s AS
		SELECT *
		FROM read_json_auto('%s', format='newline_delimited')
	`, table, strings.ReplaceAll(path, "'", "''"))

	_, err = dk.db.ExecContext(ctx, create)
	if err != nil {
		err = errors.Wrapf(err, "failed to load %s into %s", path, table)
		return
	}

	dk.tables[table] = true
	dk.logger.Info(ctx, "loaded options", "path", path, "table", table)
	return
}

// Query a page of records from table, along with the count of all matching
func (dk *Duck) Query(ctx context.Context, table string, filter nt.Filter, offset int, limit nt.Limit) (items []nt.Item, count int, err error) {

	if !dk.tables[table] {
		err = errors.Errorf("no such table %q", table)
		return
	}

	where, args, err := WhereClause(filter)
	if err != nil {
		return
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", table, where)
	err = dk.db.QueryRowContext(ctx, countQuery, args...).Scan(&count)
	if err != nil {
		err = errors.Wrapf(err, "failed to count %s", table)
		return
	}

	// rowid keeps pages stable across queries
	query := fmt.Sprintf("SELECT * FROM %s %s ORDER BY rowid", table, where)
	if !limit.IsAll() {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", int(limit), offset)
	}

	rows, err := dk.db.QueryContext(ctx, query, args...)
	if err != nil {
		err = errors.Wrapf(err, "failed to query %s", table)
		return
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		err = errors.Wrapf(err, "failed to get cols from query rows")
		return
	}

	items = []nt.Item{}
	for rows.Next() {
		var vals []any
		vals, err = scanRow(rows, len(cols))
		if err != nil {
			err = errors.Wrapf(err, "failed to scan row")
			return
		}

		item := nt.Item{}
		for i, col := range cols {
			item[col] = vals[i]
		}
		items = append(items, item)
	}

	err = rows.Err()
	err = errors.Wrapf(err, "error iterating rows")
	return
}

// WhereClause converts a Filter to a parameterized SQL WHERE clause
func WhereClause(filter nt.Filter) (clause string, args []any, err error) {

	expr, args, err := filterExpr(filter)
	if err != nil || expr == "" {
		return
	}

	clause = "WHERE " + expr
	return
}

// unexported

// filterExpr recursively builds filter expression (without WHERE prefix)
func filterExpr(f nt.Filter) (expr string, args []any, err error) {

	switch f.Op {
	case nt.And, nt.Or:
		return joinExprs(f.Op, f.Children)

	case nt.Not:
		if len(f.Children) == 0 {
			return
		}
		expr, args, err = filterExpr(f.Children[0])
		if expr != "" {
			expr = "NOT (" + expr + ")"
		}
		return
	}

	col, err := column(f.Field)
	if err != nil {
		return
	}

	switch f.Op {
	case nt.Eq:
		return fmt.Sprintf("CAST(%s AS VARCHAR) = ?", col), []any{text(f.Value)}, nil
	case nt.Ne:
		return fmt.Sprintf("CAST(%s AS VARCHAR) != ?", col), []any{text(f.Value)}, nil
	case nt.Gt:
		return fmt.Sprintf("%s > ?", col), []any{f.Value}, nil
	case nt.Gte:
		return fmt.Sprintf("%s >= ?", col), []any{f.Value}, nil
	case nt.Lt:
		return fmt.Sprintf("%s < ?", col), []any{f.Value}, nil
	case nt.Lte:
		return fmt.Sprintf("%s <= ?", col), []any{f.Value}, nil
	case nt.Contains:
		return fmt.Sprintf("CAST(%s AS VARCHAR) ILIKE ?", col), []any{"%" + text(f.Value) + "%"}, nil
	case nt.Match:
		return fmt.Sprintf("regexp_matches(CAST(%s AS VARCHAR), ?)", col), []any{text(f.Value)}, nil
	case nt.In:
		return inExpr(col, f.Value)
	}

	err = errors.Errorf("unsupported filter op %s", f.Op)
	return
}

func joinExprs(op nt.FilterOp, children []nt.Filter) (expr string, args []any, err error) {

	joiner := " AND "
	if op == nt.Or {
		joiner = " OR "
	}

	var clauses []string
	for _, child := range children {
		var childExpr string
		var childArgs []any
		childExpr, childArgs, err = filterExpr(child)
		if err != nil {
			return
		}
		if childExpr == "" {
			continue
		}
		clauses = append(clauses, childExpr)
		args = append(args, childArgs...)
	}

	if len(clauses) == 0 {
		return
	}

	expr = "(" + strings.Join(clauses, joiner) + ")"
	return
}

// column maps a dotted field path onto struct access, "dept.name" to struct_extract(dept, 'name')
func column(field string) (col string, err error) {

	for i, key := range strings.Split(field, ".") {
		if !identRe.MatchString(key) {
			err = errors.Errorf("invalid field name %q", field)
			return
		}

		if i == 0 {
			col = key
			continue
		}
		col = fmt.Sprintf("struct_extract(%s, '%s')", col, key)
	}

	return
}

func inExpr(col string, value any) (expr string, args []any, err error) {

	vals, ok := value.([]any)
	if !ok {
		vals = []any{value}
	}
	if len(vals) == 0 {
		expr = "FALSE"
		return
	}

	marks := make([]string, len(vals))
	for i, val := range vals {
		marks[i] = "?"
		args = append(args, text(val))
	}

	expr = fmt.Sprintf("CAST(%s AS VARCHAR) IN (%s)", col, strings.Join(marks, ", "))
	return
}

// text renders a filter value the way an item value renders
func text(val any) string {
	return nt.Value{Raw: val}.String()
}

func scanRow(rows *sql.Rows, columnCount int) ([]any, error) {
	vals := make([]any, columnCount)
	ptrs := make([]any, columnCount)
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	err := rows.Scan(ptrs...)
	return vals, err
}
