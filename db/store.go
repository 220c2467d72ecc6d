package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/nrtkbb/dupescan/models"
)

// ScanSummary is one row of the scans table.
type ScanSummary struct {
	ScanID           int64    `json:"scan_id"`
	Roots            []string `json:"roots"`
	StartedAt        int64    `json:"started_at"`
	FinishedAt       int64    `json:"finished_at"`
	DiscoveredFiles  int64    `json:"discovered_files"`
	DuplicateFiles   int64    `json:"duplicate_files"`
	DuplicateGroups  int64    `json:"duplicate_groups"`
	PotentialSavings uint64   `json:"potential_savings"`
}

// SaveReport stores one scan's report. Group and member positions preserve
// the engine's ordering so reads reproduce the report exactly.
func SaveReport(database *sql.DB, rep *models.Report, discovered int64) (int64, error) {
	tx, err := database.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO scans (
			roots, started_at, finished_at,
			discovered_files, duplicate_files, duplicate_groups, potential_savings
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		strings.Join(rep.Roots, "\n"),
		rep.Started.Unix(),
		rep.Finished.Unix(),
		discovered,
		rep.DuplicateFiles(),
		len(rep.Groups),
		int64(rep.PotentialSavings()),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert scan: %v", err)
	}
	scanID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read scan id: %v", err)
	}

	groupStmt, err := tx.Prepare(`
		INSERT INTO duplicate_groups (scan_id, position, size_bytes, sha256)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare group statement: %v", err)
	}
	defer groupStmt.Close()

	memberStmt, err := tx.Prepare(`
		INSERT INTO group_members (group_id, position, path)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare member statement: %v", err)
	}
	defer memberStmt.Close()

	for pos := range rep.Groups {
		group := &rep.Groups[pos]
		res, err := groupStmt.Exec(scanID, pos, int64(group.SizeBytes), group.SHA256)
		if err != nil {
			return 0, fmt.Errorf("failed to insert group %d: %v", pos, err)
		}
		groupID, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to read group id: %v", err)
		}
		for i, path := range group.Paths {
			if _, err := memberStmt.Exec(groupID, i, path); err != nil {
				return 0, fmt.Errorf("failed to insert member %s: %v", path, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit report: %v", err)
	}
	return scanID, nil
}

const scanColumns = `
	scan_id, roots, started_at, finished_at,
	discovered_files, duplicate_files, duplicate_groups, potential_savings
`

func scanSummaryRow(scanner interface{ Scan(...interface{}) error }) (ScanSummary, error) {
	var s ScanSummary
	var roots string
	err := scanner.Scan(
		&s.ScanID, &roots, &s.StartedAt, &s.FinishedAt,
		&s.DiscoveredFiles, &s.DuplicateFiles, &s.DuplicateGroups, &s.PotentialSavings,
	)
	if err != nil {
		return s, err
	}
	s.Roots = strings.Split(roots, "\n")
	return s, nil
}

// CountScans returns the number of stored scans.
func CountScans(database *sql.DB) (int, error) {
	var total int
	err := database.QueryRow(`SELECT COUNT(*) FROM scans`).Scan(&total)
	return total, err
}

// ListScans returns stored scans, newest first.
func ListScans(database *sql.DB, limit, offset int) ([]ScanSummary, error) {
	rows, err := database.Query(`
		SELECT `+scanColumns+`
		FROM scans
		ORDER BY scan_id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scans []ScanSummary
	for rows.Next() {
		s, err := scanSummaryRow(rows)
		if err != nil {
			return nil, err
		}
		scans = append(scans, s)
	}
	return scans, rows.Err()
}

// GetScan returns one stored scan. sql.ErrNoRows if the id is unknown.
func GetScan(database *sql.DB, scanID int64) (ScanSummary, error) {
	row := database.QueryRow(`
		SELECT `+scanColumns+`
		FROM scans
		WHERE scan_id = ?
	`, scanID)
	return scanSummaryRow(row)
}

// CountGroups returns the number of duplicate groups in a scan.
func CountGroups(database *sql.DB, scanID int64) (int, error) {
	var total int
	err := database.QueryRow(`
		SELECT COUNT(*) FROM duplicate_groups WHERE scan_id = ?
	`, scanID).Scan(&total)
	return total, err
}

// ListGroups returns a page of a scan's duplicate groups with their member
// paths, in stored (report) order.
func ListGroups(database *sql.DB, scanID int64, limit, offset int) ([]models.DuplicateGroup, error) {
	rows, err := database.Query(`
		SELECT group_id, size_bytes, sha256
		FROM duplicate_groups
		WHERE scan_id = ?
		ORDER BY position
		LIMIT ? OFFSET ?
	`, scanID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.DuplicateGroup
	var groupIDs []int64
	for rows.Next() {
		var groupID int64
		var group models.DuplicateGroup
		if err := rows.Scan(&groupID, &group.SizeBytes, &group.SHA256); err != nil {
			return nil, err
		}
		groupIDs = append(groupIDs, groupID)
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	memberStmt, err := database.Prepare(`
		SELECT path FROM group_members
		WHERE group_id = ?
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer memberStmt.Close()

	for i, groupID := range groupIDs {
		memberRows, err := memberStmt.Query(groupID)
		if err != nil {
			return nil, err
		}
		for memberRows.Next() {
			var path string
			if err := memberRows.Scan(&path); err != nil {
				memberRows.Close()
				return nil, err
			}
			groups[i].Paths = append(groups[i].Paths, path)
		}
		if err := memberRows.Err(); err != nil {
			memberRows.Close()
			return nil, err
		}
		memberRows.Close()
	}

	return groups, nil
}

// TotalStats aggregates across every stored scan.
type TotalStats struct {
	Scans            int64  `json:"scans"`
	DuplicateGroups  int64  `json:"duplicate_groups"`
	DuplicateFiles   int64  `json:"duplicate_files"`
	PotentialSavings uint64 `json:"potential_savings"`
}

// AggregateStats sums counters over all stored scans.
func AggregateStats(database *sql.DB) (TotalStats, error) {
	var stats TotalStats
	err := database.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(duplicate_groups), 0),
			COALESCE(SUM(duplicate_files), 0),
			COALESCE(SUM(potential_savings), 0)
		FROM scans
	`).Scan(&stats.Scans, &stats.DuplicateGroups, &stats.DuplicateFiles, &stats.PotentialSavings)
	return stats, err
}
