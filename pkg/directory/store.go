package directory

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite-backed directory engine. It owns two tables: a plain
// "employees" table for exact/structured lookups and an FTS5 virtual table
// "employees_fts" mirroring it for the weighted full-text strategy.
type Store struct {
	db *sql.DB
}

// Open opens (and, if needed, migrates) the directory database at dsn.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(8)
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping reports whether the directory database is reachable.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS employees (
			employee_id TEXT PRIMARY KEY,
			full_name TEXT NOT NULL,
			designation TEXT,
			department TEXT,
			division TEXT,
			email TEXT,
			mobile TEXT,
			ip_phone TEXT,
			mobile_digits TEXT
		)`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS employees_fts USING fts5(
			employee_id UNINDEXED,
			full_name,
			designation,
			department,
			division,
			email
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("directory migrate: %w", err)
		}
	}
	return nil
}

// Upsert inserts or replaces an employee row in both tables, keeping the
// FTS index in sync with the primary table.
func (s *Store) Upsert(ctx context.Context, e Employee) error {
	digits := digitsOnly(e.Mobile)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (employee_id, full_name, designation, department, division, email, mobile, ip_phone, mobile_digits)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id) DO UPDATE SET
			full_name=excluded.full_name, designation=excluded.designation, department=excluded.department,
			division=excluded.division, email=excluded.email, mobile=excluded.mobile, ip_phone=excluded.ip_phone,
			mobile_digits=excluded.mobile_digits`,
		e.EmployeeID, e.FullName, e.Designation, e.Department, e.Division, e.Email, e.Mobile, e.IPPhone, digits)
	if err != nil {
		return &ErrUnavailable{Cause: err}
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM employees_fts WHERE employee_id = ?`, e.EmployeeID)
	if err != nil {
		return &ErrUnavailable{Cause: err}
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO employees_fts (employee_id, full_name, designation, department, division, email)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.EmployeeID, e.FullName, e.Designation, e.Department, e.Division, e.Email)
	if err != nil {
		return &ErrUnavailable{Cause: err}
	}
	return nil
}

var nonDigitRE = regexp.MustCompile(`\D+`)

func digitsOnly(s string) string { return nonDigitRE.ReplaceAllString(s, "") }

var alphaNumericRE = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
var numericDominantRE = regexp.MustCompile(`^[0-9][0-9\s\-()]*$`)

var stopwords = map[string]bool{
	"the": true, "of": true, "in": true, "for": true, "and": true, "is": true,
	"at": true, "to": true, "a": true, "an": true,
}

// Search runs the seven match strategies in order, stopping at
// the first one that yields a non-empty result.
func (s *Store) Search(ctx context.Context, term string, limit int) ([]Employee, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	strategies := []func(context.Context, string, int) ([]Result, error){
		s.byExactName,
		s.byEmployeeID,
		s.byEmail,
		s.byMobile,
		s.byDesignationKeywords,
		s.byFullText,
		s.byPartialName,
	}

	for _, strategy := range strategies {
		results, err := strategy(ctx, term, limit)
		if err != nil {
			return nil, &ErrUnavailable{Cause: err}
		}
		if len(results) > 0 {
			return rankAndCap(results, limit), nil
		}
	}
	return nil, nil
}

func rankAndCap(results []Result, limit int) []Employee {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Strategy != results[j].Strategy {
			return results[i].Strategy < results[j].Strategy
		}
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Employee.FullName < results[j].Employee.FullName
	})
	if len(results) > limit {
		results = results[:limit]
	}
	out := make([]Employee, len(results))
	for i, r := range results {
		out[i] = r.Employee
	}
	return out
}

func (s *Store) byExactName(ctx context.Context, term string, limit int) ([]Result, error) {
	return s.queryEmployees(ctx, 1, `SELECT employee_id, full_name, designation, department, division, email, mobile, ip_phone
		FROM employees WHERE lower(full_name) = lower(?) LIMIT ?`, term, limit)
}

func (s *Store) byEmployeeID(ctx context.Context, term string, limit int) ([]Result, error) {
	if !alphaNumericRE.MatchString(term) {
		return nil, nil
	}
	return s.queryEmployees(ctx, 2, `SELECT employee_id, full_name, designation, department, division, email, mobile, ip_phone
		FROM employees WHERE lower(employee_id) = lower(?) LIMIT ?`, term, limit)
}

func (s *Store) byEmail(ctx context.Context, term string, limit int) ([]Result, error) {
	if !strings.Contains(term, "@") {
		return nil, nil
	}
	return s.queryEmployees(ctx, 3, `SELECT employee_id, full_name, designation, department, division, email, mobile, ip_phone
		FROM employees WHERE lower(email) = lower(?) LIMIT ?`, term, limit)
}

func (s *Store) byMobile(ctx context.Context, term string, limit int) ([]Result, error) {
	if !numericDominantRE.MatchString(term) {
		return nil, nil
	}
	digits := digitsOnly(term)
	if digits == "" {
		return nil, nil
	}
	return s.queryEmployees(ctx, 4, `SELECT employee_id, full_name, designation, department, division, email, mobile, ip_phone
		FROM employees WHERE mobile_digits = ? LIMIT ?`, digits, limit)
}

func (s *Store) byDesignationKeywords(ctx context.Context, term string, limit int) ([]Result, error) {
	tokens := contentTokens(term)
	if len(tokens) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT employee_id, full_name, designation, department, division, email, mobile, ip_phone
		FROM employees`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		designationLower := strings.ToLower(e.Designation)
		matched := 0
		for _, tok := range tokens {
			if strings.Contains(designationLower, tok) {
				matched++
			}
		}
		if matched == len(tokens) {
			results = append(results, Result{Employee: e, Strategy: 5, Score: float64(matched)})
		}
	}
	return results, rows.Err()
}

func (s *Store) byFullText(ctx context.Context, term string, limit int) ([]Result, error) {
	ftsQuery := buildFtsQuery(term)
	if ftsQuery == "" {
		return nil, nil
	}
	// Field weights: name 3x, designation/department 2x, division/email 1x
	// (the first weight belongs to the unindexed employee_id column).
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.employee_id, e.full_name, e.designation, e.department, e.division, e.email, e.mobile, e.ip_phone,
			bm25(employees_fts, 0.0, 3.0, 2.0, 2.0, 1.0, 1.0) AS rank
		FROM employees_fts
		JOIN employees e ON e.employee_id = employees_fts.employee_id
		WHERE employees_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, ftsQuery, limit*4)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var e Employee
		var rank float64
		if err := rows.Scan(&e.EmployeeID, &e.FullName, &e.Designation, &e.Department, &e.Division, &e.Email, &e.Mobile, &e.IPPhone, &rank); err != nil {
			return nil, err
		}
		results = append(results, Result{Employee: e, Strategy: 6, Score: bm25RankToScore(rank)})
	}
	return results, rows.Err()
}

func (s *Store) byPartialName(ctx context.Context, term string, limit int) ([]Result, error) {
	tokens := contentTokens(term)
	if len(tokens) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT employee_id, full_name, designation, department, division, email, mobile, ip_phone FROM employees`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		nameLower := strings.ToLower(e.FullName)
		allMatch := true
		for _, tok := range tokens {
			if !strings.Contains(nameLower, tok) {
				allMatch = false
				break
			}
		}
		if allMatch {
			results = append(results, Result{Employee: e, Strategy: 7, Score: float64(len(tokens))})
		}
	}
	return results, rows.Err()
}

func (s *Store) queryEmployees(ctx context.Context, strategy int, query string, arg any, limit int) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, query, arg, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []Result
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, Result{Employee: e, Strategy: strategy, Score: 1})
	}
	return results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(rows rowScanner) (Employee, error) {
	var e Employee
	err := rows.Scan(&e.EmployeeID, &e.FullName, &e.Designation, &e.Department, &e.Division, &e.Email, &e.Mobile, &e.IPPhone)
	return e, err
}

func contentTokens(term string) []string {
	fields := strings.Fields(strings.ToLower(term))
	var tokens []string
	for _, f := range fields {
		f = strings.Trim(f, ".,!?&")
		if len(f) < 3 || stopwords[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// buildFtsQuery builds a simple OR query over the cleaned content tokens.
func buildFtsQuery(term string) string {
	tokens := contentTokens(term)
	if len(tokens) == 0 {
		return ""
	}
	parts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		clean := strings.ReplaceAll(tok, `"`, "")
		parts = append(parts, `"`+clean+`"`)
	}
	return strings.Join(parts, " OR ")
}
