// Package devapi is a local stand-in for the catalog REST API, backed by sqlite.
package devapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"catalog-cli/internal/model"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("devapi: not found")

// Store keeps every entity as a JSON document plus the columns queries filter on.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the sqlite file at path. ":memory:" is accepted.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	// modernc.org/sqlite registers as "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// Each pooled connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS domains (
			id TEXT PRIMARY KEY,
			json TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS diagrams (
			id TEXT PRIMARY KEY,
			json TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS approvals (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			status TEXT NOT NULL,
			json TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_approvals_owner ON approvals(owner_id, status);`,
		`CREATE TABLE IF NOT EXISTS systems (
			id TEXT PRIMARY KEY,
			json TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS activities (
			id TEXT PRIMARY KEY,
			json TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("devapi: migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) stamp() (string, int64) {
	t := s.now().UTC()
	return t.Format(time.RFC3339), t.UnixMilli()
}

func listJSON[T any](ctx context.Context, db *sql.DB, query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []T{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func getJSON[T any](ctx context.Context, db *sql.DB, query string, args ...any) (T, error) {
	var v T
	var raw string
	if err := db.QueryRowContext(ctx, query, args...).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return v, ErrNotFound
		}
		return v, err
	}
	err := json.Unmarshal([]byte(raw), &v)
	return v, err
}

func (s *Store) ListDomains(ctx context.Context) ([]model.Domain, error) {
	return listJSON[model.Domain](ctx, s.db, `SELECT json FROM domains ORDER BY created_at_unixms, id`)
}

func (s *Store) GetDomain(ctx context.Context, id string) (model.Domain, error) {
	return getJSON[model.Domain](ctx, s.db, `SELECT json FROM domains WHERE id = ?`, id)
}

func (s *Store) CreateDomain(ctx context.Context, req model.CreateDomainRequest) (model.Domain, error) {
	id, err := newID("dom")
	if err != nil {
		return model.Domain{}, err
	}
	ts, ms := s.stamp()
	d := model.Domain{
		ID:            id,
		Name:          req.Name,
		Description:   req.Description,
		Category:      req.Category,
		Region:        req.Region,
		PriorityLevel: req.PriorityLevel,
		Status:        model.StatusDraft,
		OwnerID:       req.OwnerID,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return model.Domain{}, err
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO domains(id, json, created_at_unixms) VALUES(?, ?, ?)`, d.ID, string(raw), ms); err != nil {
		return model.Domain{}, err
	}
	return d, s.logActivity(ctx, "domain.create", d.Name, req.OwnerID)
}

func (s *Store) UpdateDomain(ctx context.Context, req model.UpdateDomainRequest, actorID string) (model.Domain, error) {
	d, err := s.GetDomain(ctx, req.ID)
	if err != nil {
		return model.Domain{}, err
	}
	if req.Name != nil {
		d.Name = *req.Name
	}
	if req.Description != nil {
		d.Description = *req.Description
	}
	if req.Category != nil {
		d.Category = *req.Category
	}
	if req.Region != nil {
		d.Region = *req.Region
	}
	if req.PriorityLevel != nil {
		d.PriorityLevel = *req.PriorityLevel
	}
	if req.Status != nil {
		d.Status = *req.Status
	}
	d.UpdatedAt, _ = s.stamp()

	raw, err := json.Marshal(d)
	if err != nil {
		return model.Domain{}, err
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE domains SET json = ? WHERE id = ?`, string(raw), d.ID); err != nil {
		return model.Domain{}, err
	}
	return d, s.logActivity(ctx, "domain.update", d.Name, actorID)
}

func (s *Store) DeleteDomain(ctx context.Context, id, actorID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM domains WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return s.logActivity(ctx, "domain.delete", id, actorID)
}

func (s *Store) ListDiagrams(ctx context.Context) ([]model.Diagram, error) {
	return listJSON[model.Diagram](ctx, s.db, `SELECT json FROM diagrams ORDER BY created_at_unixms, id`)
}

func (s *Store) CreateDiagram(ctx context.Context, req model.CreateDiagramRequest) (model.Diagram, error) {
	id, err := newID("dgm")
	if err != nil {
		return model.Diagram{}, err
	}
	ts, ms := s.stamp()
	d := model.Diagram{
		ID:          id,
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
		Content:     req.Content,
		CreatedBy:   req.CreatedBy,
		Status:      model.StatusDraft,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return model.Diagram{}, err
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO diagrams(id, json, created_at_unixms) VALUES(?, ?, ?)`, d.ID, string(raw), ms); err != nil {
		return model.Diagram{}, err
	}
	return d, s.logActivity(ctx, "diagram.create", d.Name, req.CreatedBy)
}

// MyItems lists approval items owned by ownerID; an empty status matches all.
func (s *Store) MyItems(ctx context.Context, status model.Status, ownerID string) ([]model.PendingItem, error) {
	if status == "" {
		return listJSON[model.PendingItem](ctx, s.db,
			`SELECT json FROM approvals WHERE owner_id = ? ORDER BY created_at_unixms, id`, ownerID)
	}
	return listJSON[model.PendingItem](ctx, s.db,
		`SELECT json FROM approvals WHERE owner_id = ? AND status = ? ORDER BY created_at_unixms, id`, ownerID, string(status))
}

func (s *Store) CreateApproval(ctx context.Context, req model.CreateApprovalRequest) (model.PendingItem, error) {
	return s.insertApproval(ctx, model.PendingItem{
		Title:       req.Title,
		Description: req.Description,
		ItemType:    req.ItemType,
		Status:      model.StatusPendingApproval,
		Priority:    req.Priority,
		OwnerID:     req.RequesterID,
		TargetIDs:   req.TargetIDs,
	})
}

func (s *Store) insertApproval(ctx context.Context, p model.PendingItem) (model.PendingItem, error) {
	id, err := newID("apr")
	if err != nil {
		return model.PendingItem{}, err
	}
	ts, ms := s.stamp()
	p.ID = id
	p.CreatedAt = ts
	p.UpdatedAt = ts
	raw, err := json.Marshal(p)
	if err != nil {
		return model.PendingItem{}, err
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO approvals(id, owner_id, status, json, created_at_unixms) VALUES(?, ?, ?, ?, ?)`,
		p.ID, p.OwnerID, string(p.Status), string(raw), ms); err != nil {
		return model.PendingItem{}, err
	}
	return p, s.logActivity(ctx, "approval.create", p.Title, p.OwnerID)
}

// SetApprovalStatus moves an approval item to status.
func (s *Store) SetApprovalStatus(ctx context.Context, id string, status model.Status) error {
	p, err := getJSON[model.PendingItem](ctx, s.db, `SELECT json FROM approvals WHERE id = ?`, id)
	if err != nil {
		return err
	}
	p.Status = status
	p.UpdatedAt, _ = s.stamp()
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `UPDATE approvals SET status = ?, json = ? WHERE id = ?`, string(status), string(raw), id)
	return err
}

type system struct {
	ID     string                  `json:"id"`
	Source model.ExtractionSource  `json:"source"`
	Info   model.ExtractionSystem  `json:"system"`
	Opts   model.ExtractionOptions `json:"options"`
}

// RecordExtraction registers the system and, for manual approval, queues it for review.
func (s *Store) RecordExtraction(ctx context.Context, req model.ExtractionRequest) (string, error) {
	id, err := newID("sys")
	if err != nil {
		return "", err
	}
	_, ms := s.stamp()
	raw, err := json.Marshal(system{ID: id, Source: req.Source, Info: req.System, Opts: req.Options})
	if err != nil {
		return "", err
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO systems(id, json, created_at_unixms) VALUES(?, ?, ?)`, id, string(raw), ms); err != nil {
		return "", err
	}
	status := model.StatusApproved
	if req.ApprovalStrategy == model.ApprovalStrategyManual {
		status = model.StatusPendingApproval
	}
	_, err = s.insertApproval(ctx, model.PendingItem{
		Title:       "Extracted system: " + req.System.Name,
		Description: req.System.Description,
		ItemType:    "system",
		Status:      status,
		OwnerID:     req.System.OwnerID,
		TargetIDs:   []string{id},
	})
	return id, err
}

func (s *Store) logActivity(ctx context.Context, action, target, actorID string) error {
	id, err := newID("act")
	if err != nil {
		return err
	}
	ts, ms := s.stamp()
	raw, err := json.Marshal(model.Activity{ID: id, Action: action, Target: target, ActorID: actorID, Timestamp: ts})
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO activities(id, json, created_at_unixms) VALUES(?, ?, ?)`, id, string(raw), ms)
	return err
}

func (s *Store) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

// Overview builds the catalog-stats response.
func (s *Store) Overview(ctx context.Context) (model.CatalogOverview, error) {
	var out model.CatalogOverview
	counts := []struct {
		dst   *int
		query string
		args  []any
	}{
		{&out.Stats.TotalDomains, `SELECT COUNT(*) FROM domains`, nil},
		{&out.Stats.TotalSystems, `SELECT COUNT(*) FROM systems`, nil},
		{&out.Stats.TotalDiagrams, `SELECT COUNT(*) FROM diagrams`, nil},
		{&out.Stats.PendingApprovals, `SELECT COUNT(*) FROM approvals WHERE status = ?`, []any{string(model.StatusPendingApproval)}},
		{&out.Stats.ApprovedItems, `SELECT COUNT(*) FROM approvals WHERE status = ?`, []any{string(model.StatusApproved)}},
	}
	for _, c := range counts {
		n, err := s.count(ctx, c.query, c.args...)
		if err != nil {
			return model.CatalogOverview{}, err
		}
		*c.dst = n
	}

	acts, err := listJSON[model.Activity](ctx, s.db, `SELECT json FROM activities ORDER BY created_at_unixms DESC, id LIMIT 10`)
	if err != nil {
		return model.CatalogOverview{}, err
	}
	out.RecentActivities = acts

	// Popularity is approximated by activity count per target.
	rows, err := s.db.QueryContext(ctx, `
		SELECT json_extract(json, '$.target') AS target, COUNT(*) AS n
		FROM activities
		WHERE COALESCE(json_extract(json, '$.target'), '') != ''
		GROUP BY target
		ORDER BY n DESC, target
		LIMIT 5`)
	if err != nil {
		return model.CatalogOverview{}, err
	}
	defer func() { _ = rows.Close() }()
	out.PopularResources = []model.PopularResource{}
	for rows.Next() {
		var p model.PopularResource
		if err := rows.Scan(&p.Title, &p.Views); err != nil {
			return model.CatalogOverview{}, err
		}
		p.ID = p.Title
		p.Kind = "resource"
		out.PopularResources = append(out.PopularResources, p)
	}
	return out, rows.Err()
}
