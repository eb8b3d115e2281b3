package loader

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/stackview/pkg/model"
)

// LoadThreadsFromDB reads threads from the agent session store. The
// store is owned by the backend; we open it read-only and never create
// or migrate schema here.
func LoadThreadsFromDB(ctx context.Context, path string) ([]model.Thread, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("no session store found at %s", path)
	}

	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT id, title, status,
		       COALESCE(workdir, ''), COALESCE(blocker, ''),
		       COALESCE(cost_cents, 0), COALESCE(linked_issues, ''),
		       COALESCE(last_updated, ''), COALESCE(last_updated_date, ''),
		       COALESCE(handoff_parent_id, '')
		FROM threads
		ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query threads: %w", err)
	}
	defer rows.Close()

	var threads []model.Thread
	for rows.Next() {
		var th model.Thread
		var linked string
		if err := rows.Scan(&th.ID, &th.Title, &th.Status,
			&th.Workdir, &th.Blocker,
			&th.CostCents, &linked,
			&th.LastUpdated, &th.LastUpdatedDate,
			&th.HandoffParentID); err != nil {
			return nil, fmt.Errorf("scan thread row: %w", err)
		}
		if linked != "" {
			// linked_issues is stored as a JSON array of refs; a bad
			// value degrades to no links, same policy as JSONL lines.
			_ = json.Unmarshal([]byte(linked), &th.LinkedIssues)
		}
		threads = append(threads, th)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate thread rows: %w", err)
	}
	return threads, nil
}
