package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"sift/internal/apperr"
	"sift/internal/facts"
	"sift/internal/transfer"
)

// Run summarizes one recorded transfer invocation.
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	Mode         string
	DryRun       bool
	IncomingRoot string
	OutgoingRoot string
	Copied       int
	Moved        int
	Skipped      int
	Failed       int
	Bytes        int64
}

// NewRun fills the counters of a Run from a transfer result.
func NewRun(id string, startedAt, finishedAt time.Time, incoming, outgoing string, result transfer.Result) Run {
	return Run{
		ID:           id,
		StartedAt:    startedAt.UTC(),
		FinishedAt:   finishedAt.UTC(),
		Mode:         result.Mode,
		DryRun:       result.DryRun,
		IncomingRoot: incoming,
		OutgoingRoot: outgoing,
		Copied:       result.Copied,
		Moved:        result.Moved,
		Skipped:      result.Skipped,
		Failed:       result.Failed,
		Bytes:        result.Bytes(),
	}
}

// Record stores a run and its details in one transaction.
func (s *Store) Record(ctx context.Context, run Run, details []transfer.Detail) error {
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin record tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		_, err = tx.ExecContext(ctx,
			`INSERT INTO runs (
                id, started_at, finished_at, mode, dry_run, incoming_root, outgoing_root,
                copied, moved, skipped, failed, bytes
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			run.StartedAt.Format(time.RFC3339Nano),
			run.FinishedAt.Format(time.RFC3339Nano),
			run.Mode,
			boolToInt(run.DryRun),
			run.IncomingRoot,
			run.OutgoingRoot,
			run.Copied,
			run.Moved,
			run.Skipped,
			run.Failed,
			run.Bytes,
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO details (
                run_id, position, relpath, src, dst, action, reason,
                existing_path, media_type, tier_id, facts_json, bytes
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare detail insert: %w", err)
		}
		defer stmt.Close()

		for i, d := range details {
			var factsJSON any
			if d.Facts != nil {
				encoded, err := json.Marshal(d.Facts)
				if err != nil {
					return fmt.Errorf("encode facts: %w", err)
				}
				factsJSON = string(encoded)
			}
			if _, err := stmt.ExecContext(ctx,
				run.ID, i, d.RelPath, d.Src,
				nullableString(d.Dst), d.Action, nullableString(d.Reason),
				nullableString(d.ExistingPath), nullableString(d.MediaType), nullableString(d.TierID),
				factsJSON, d.Bytes,
			); err != nil {
				return fmt.Errorf("insert detail %d: %w", i, err)
			}
		}
		return tx.Commit()
	})
}

// Runs returns the most recent runs, newest first. A non-positive limit
// returns all of them.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, started_at, finished_at, mode, dry_run, incoming_root, outgoing_root,
        copied, moved, skipped, failed, bytes FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Run looks up one run by id or unique id prefix.
func (s *Store) Run(ctx context.Context, id string) (Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, mode, dry_run, incoming_root, outgoing_root,
            copied, moved, skipped, failed, bytes FROM runs WHERE id LIKE ? || '%' LIMIT 2`, id)
	if err != nil {
		return Run{}, fmt.Errorf("query run: %w", err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return Run{}, err
	}
	switch len(matches) {
	case 0:
		return Run{}, apperr.Wrap(apperr.ErrNotFound, "ledger", "lookup run", id, nil)
	case 1:
		return matches[0], nil
	default:
		return Run{}, apperr.Wrap(apperr.ErrValidation, "ledger", "lookup run", fmt.Sprintf("%q matches more than one run", id), nil)
	}
}

// Details returns the recorded details of a run in their original order.
func (s *Store) Details(ctx context.Context, runID string) ([]transfer.Detail, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT relpath, src, dst, action, reason, existing_path, media_type, tier_id, facts_json, bytes
         FROM details WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query details: %w", err)
	}
	defer rows.Close()

	var details []transfer.Detail
	for rows.Next() {
		var (
			d                                                 transfer.Detail
			dst, reason, existing, mediaType, tier, factsJSON sql.NullString
		)
		if err := rows.Scan(&d.RelPath, &d.Src, &dst, &d.Action, &reason, &existing, &mediaType, &tier, &factsJSON, &d.Bytes); err != nil {
			return nil, fmt.Errorf("scan detail: %w", err)
		}
		d.Dst = dst.String
		d.Reason = reason.String
		d.ExistingPath = existing.String
		d.MediaType = mediaType.String
		d.TierID = tier.String
		if factsJSON.Valid && factsJSON.String != "" {
			d.Facts, err = decodeFacts(factsJSON.String)
			if err != nil {
				return nil, err
			}
		}
		if d.Dst != "" {
			d.ProposedName = filepath.Base(d.Dst)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(rows rowScanner) (Run, error) {
	var (
		run               Run
		started, finished string
		dryRun            int
	)
	if err := rows.Scan(&run.ID, &started, &finished, &run.Mode, &dryRun, &run.IncomingRoot, &run.OutgoingRoot,
		&run.Copied, &run.Moved, &run.Skipped, &run.Failed, &run.Bytes); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.DryRun = dryRun != 0
	var err error
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return Run{}, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return Run{}, fmt.Errorf("parse finished_at: %w", err)
	}
	return run, nil
}

func decodeFacts(raw string) (*facts.Facts, error) {
	var f facts.Facts
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return nil, errors.Join(errors.New("decode facts"), err)
	}
	return &f, nil
}
