package export

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/tremorview/pkg/chart"
	"github.com/vanderheijden86/tremorview/pkg/debug"
)

// Plan lists the outputs of one headless run. Empty paths are skipped.
type Plan struct {
	Snapshot SnapshotOptions
	DBPath   string
	JSONPath string
}

// Empty reports whether the plan writes nothing.
func (p Plan) Empty() bool {
	return p.Snapshot.Path == "" && p.DBPath == "" && p.JSONPath == ""
}

// Run writes every output in p concurrently. Each writer reads only the
// immutable frame, exporter and summary it is handed.
func Run(ctx context.Context, p Plan, frame chart.Frame, db *SQLiteExporter, summary *RobotSummary) error {
	g, ctx := errgroup.WithContext(ctx)

	if p.Snapshot.Path != "" {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := SaveSnapshot(frame, p.Snapshot); err != nil {
				return fmt.Errorf("snapshot: %w", err)
			}
			debug.Log("export: wrote snapshot %s", p.Snapshot.Path)
			return nil
		})
	}
	if p.DBPath != "" && db != nil {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := db.Export(p.DBPath); err != nil {
				return fmt.Errorf("sqlite: %w", err)
			}
			debug.Log("export: wrote database %s", p.DBPath)
			return nil
		})
	}
	if p.JSONPath != "" && summary != nil {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := WriteJSONFile(p.JSONPath, summary); err != nil {
				return fmt.Errorf("json: %w", err)
			}
			debug.Log("export: wrote summary %s", p.JSONPath)
			return nil
		})
	}
	return g.Wait()
}
