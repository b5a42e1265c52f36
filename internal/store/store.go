// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists each tender's scoring rules in their flattened
// row form and every bidder's evaluation result in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/bidwise/tender-engine/pkg/types"
)

// Store manages the evaluation SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the evaluation database at cfg.Path, creating
// the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = types.DefaultPipelineConfig().Store.Path
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS scoring_rules (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			tender_id TEXT NOT NULL,
			parent_item_name TEXT,
			parent_max_score REAL,
			child_item_name TEXT,
			child_max_score REAL,
			description TEXT,
			is_veto INTEGER NOT NULL DEFAULT 0,
			is_price_criteria INTEGER NOT NULL DEFAULT 0,
			price_formula TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rules_tender ON scoring_rules(tender_id)`,
		`CREATE TABLE IF NOT EXISTS bidder_results (
			tender_id TEXT NOT NULL,
			bidder TEXT NOT NULL,
			extracted_price REAL,
			price_score REAL NOT NULL DEFAULT 0,
			total_score REAL NOT NULL DEFAULT 0,
			breakdown TEXT,
			PRIMARY KEY (tender_id, bidder)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveRules replaces the tender's persisted rule rows with the flattened
// form of the given tree. The write is transactional: a failed insert
// leaves the previous snapshot intact.
func (s *Store) SaveRules(ctx context.Context, tenderID string, roots []*types.ScoringRuleNode) error {
	records := FlattenTree(roots)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM scoring_rules WHERE tender_id = ?`, tenderID); err != nil {
		return fmt.Errorf("deleting old rules: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO scoring_rules
		 (tender_id, parent_item_name, parent_max_score, child_item_name,
		  child_max_score, description, is_veto, is_price_criteria, price_formula)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			tenderID, r.ParentItemName, r.ParentMaxScore,
			r.ChildItemName, r.ChildMaxScore, r.Description,
			r.IsVeto, r.IsPriceCriteria, r.PriceFormula,
		); err != nil {
			return fmt.Errorf("inserting rule row %q: %w", r.ParentItemName, err)
		}
	}
	return tx.Commit()
}

// LoadRuleRecords returns the tender's raw persisted rows in insertion
// order.
func (s *Store) LoadRuleRecords(ctx context.Context, tenderID string) ([]types.RuleRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT parent_item_name, parent_max_score, child_item_name,
		        child_max_score, description, is_veto, is_price_criteria, price_formula
		 FROM scoring_rules WHERE tender_id = ? ORDER BY rowid`, tenderID)
	if err != nil {
		return nil, fmt.Errorf("querying rules: %w", err)
	}
	defer rows.Close()

	var records []types.RuleRecord
	for rows.Next() {
		var r types.RuleRecord
		var childName sql.NullString
		var childScore sql.NullFloat64
		var formula sql.NullString
		if err := rows.Scan(&r.ParentItemName, &r.ParentMaxScore, &childName,
			&childScore, &r.Description, &r.IsVeto, &r.IsPriceCriteria, &formula); err != nil {
			return nil, fmt.Errorf("scanning rule row: %w", err)
		}
		if childName.Valid {
			v := childName.String
			r.ChildItemName = &v
		}
		if childScore.Valid {
			v := childScore.Float64
			r.ChildMaxScore = &v
		}
		r.PriceFormula = formula.String
		records = append(records, r)
	}
	return records, rows.Err()
}

// LoadRules rebuilds the tender's rule tree from its persisted rows,
// applying the parent-inheritance and orphan-sweep passes in memory.
func (s *Store) LoadRules(ctx context.Context, tenderID string) ([]*types.ScoringRuleNode, error) {
	records, err := s.LoadRuleRecords(ctx, tenderID)
	if err != nil {
		return nil, err
	}
	InheritParents(records)
	records, _ = SweepOrphans(records)
	return BuildFromRecords(records), nil
}

// CleanRules runs the persistent cleanup pass over a tender's rows:
// fill-forward empty parents, then delete orphaned parent-only rows.
func (s *Store) CleanRules(ctx context.Context, tenderID string, w io.Writer) error {
	records, err := s.LoadRuleRecords(ctx, tenderID)
	if err != nil {
		return err
	}

	inherited := InheritParents(records)
	cleaned, dropped := SweepOrphans(records)
	if inherited == 0 && dropped == 0 {
		return nil
	}
	if w != nil {
		fmt.Fprintf(w, "cleaned rules for %s: %d parents inherited, %d orphan rows dropped\n",
			tenderID, inherited, dropped)
	}
	return s.SaveRules(ctx, tenderID, BuildFromRecords(cleaned))
}

// SaveResult upserts one bidder's evaluation record. The breakdown is
// stored as JSON alongside the scalar columns used for ranking queries.
func (s *Store) SaveResult(ctx context.Context, tenderID string, r *types.BidderResult) error {
	breakdownJSON, err := json.Marshal(r.Breakdown)
	if err != nil {
		return fmt.Errorf("marshaling breakdown: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO bidder_results (tender_id, bidder, extracted_price, price_score, total_score, breakdown)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(tender_id, bidder) DO UPDATE SET
			extracted_price=excluded.extracted_price, price_score=excluded.price_score,
			total_score=excluded.total_score, breakdown=excluded.breakdown`,
		tenderID, r.Bidder, r.ExtractedPrice, r.PriceScore, r.TotalScore, string(breakdownJSON))
	if err != nil {
		return fmt.Errorf("upserting result for %s: %w", r.Bidder, err)
	}
	return nil
}

// LoadResult returns one bidder's evaluation record, or nil when the
// bidder has no record yet.
func (s *Store) LoadResult(ctx context.Context, tenderID, bidder string) (*types.BidderResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT bidder, extracted_price, price_score, total_score, breakdown
		 FROM bidder_results WHERE tender_id = ? AND bidder = ?`, tenderID, bidder)

	r, err := scanResult(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, err
}

// ListResults returns every bidder record for a tender, ordered by total
// score descending.
func (s *Store) ListResults(ctx context.Context, tenderID string) ([]*types.BidderResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT bidder, extracted_price, price_score, total_score, breakdown
		 FROM bidder_results WHERE tender_id = ? ORDER BY total_score DESC, bidder`, tenderID)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var results []*types.BidderResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// PriceSet assembles the tender's full bidder-to-price mapping for the
// cross-bidder scorer.
func (s *Store) PriceSet(ctx context.Context, tenderID string) (types.BidderPriceSet, error) {
	results, err := s.ListResults(ctx, tenderID)
	if err != nil {
		return nil, err
	}
	set := make(types.BidderPriceSet, len(results))
	for _, r := range results {
		set[r.Bidder] = r.ExtractedPrice
	}
	return set, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (*types.BidderResult, error) {
	var r types.BidderResult
	var price sql.NullFloat64
	var breakdownJSON sql.NullString

	if err := row.Scan(&r.Bidder, &price, &r.PriceScore, &r.TotalScore, &breakdownJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning result row: %w", err)
	}
	if price.Valid {
		v := price.Float64
		r.ExtractedPrice = &v
	}
	if breakdownJSON.Valid && breakdownJSON.String != "" {
		if err := json.Unmarshal([]byte(breakdownJSON.String), &r.Breakdown); err != nil {
			return nil, fmt.Errorf("parsing breakdown for %s: %w", r.Bidder, err)
		}
	}
	return &r, nil
}

// ExportYAML writes the tender's rule tree snapshot to path.
func (s *Store) ExportYAML(ctx context.Context, tenderID, path string) error {
	roots, err := s.LoadRules(ctx, tenderID)
	if err != nil {
		return err
	}

	snapshot := struct {
		TenderID string                   `yaml:"tender_id"`
		Total    float64                  `yaml:"total"`
		Rules    []*types.ScoringRuleNode `yaml:"rules"`
	}{
		TenderID: tenderID,
		Total:    types.TreeTotal(roots),
		Rules:    roots,
	}

	data, err := yaml.Marshal(&snapshot)
	if err != nil {
		return fmt.Errorf("marshaling rule snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
