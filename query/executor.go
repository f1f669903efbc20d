package query

import (
	"fmt"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/text/language"

	"github.com/vegasq/docsql/document"
)

// ExecutionContext carries per-run settings through evaluation
type ExecutionContext struct {
	// Locale is the default casing locale for UPPER and LOWER
	Locale language.Tag
	// Now is the instant NOW() evaluates to for the whole run
	Now time.Time

	logger  log.Logger
	metrics *Metrics
	queryID string
}

// NewExecutionContext creates a context with the given locale and instant
func NewExecutionContext(locale language.Tag, now time.Time) *ExecutionContext {
	return &ExecutionContext{Locale: locale, Now: now, logger: log.NewNopLogger()}
}

// ExecuteRows runs every stage of q against doc and returns the final rows.
//
// The root document is peeled with the FROM path of the last stage and
// flattened once. Stages then run from last to first, each one consuming the
// rows left by the previous one.
func ExecuteRows(q *Query, doc any, ctx *ExecutionContext) ([]document.Row, error) {
	if q == nil || len(q.Stages) == 0 {
		return nil, fmt.Errorf("%w: query has no stages", ErrParse)
	}
	if ctx == nil {
		ctx = NewExecutionContext(language.Und, time.Now())
	}

	innermost := q.Stages[len(q.Stages)-1]
	root, err := document.Peel(doc, innermost.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}
	rows, err := document.Flatten(root)
	if err != nil {
		return nil, fmt.Errorf("failed to flatten document: %w", err)
	}
	ctx.metrics.addRows(len(rows))

	for i := len(q.Stages) - 1; i >= 0; i-- {
		rows, err = executeStage(q.Stages[i], rows, ctx)
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i+1, err)
		}
		level.Debug(ctx.logger).Log("msg", "stage complete", "query_id", ctx.queryID, "stage", i+1, "rows", len(rows))
	}
	return rows, nil
}

// executeStage applies WHERE, GROUP BY and HAVING, ORDER BY and finally the
// SELECT projection, which is skipped for grouped stages and for "*".
func executeStage(stage *Stage, rows []document.Row, ctx *ExecutionContext) ([]document.Row, error) {
	var err error

	if stage.Where != nil {
		rows, err = ApplyFilter(rows, stage.Where, ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to apply filter: %w", err)
		}
	}

	grouped := stage.Grouped()
	if grouped {
		rows, err = ApplyGroupByAndAggregate(rows, stage, ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to apply GROUP BY: %w", err)
		}
		if stage.Having != nil {
			rows, err = ApplyHaving(rows, stage.Having, ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to apply HAVING: %w", err)
			}
		}
	}

	if len(stage.OrderBy) > 0 {
		if err := ApplyOrderBy(rows, stage.OrderBy, ctx); err != nil {
			return nil, fmt.Errorf("failed to apply ORDER BY: %w", err)
		}
	}

	if !grouped && !stage.SelectsAll() {
		rows, err = ApplySelectList(rows, stage.Columns, ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to apply SELECT list: %w", err)
		}
	}
	return rows, nil
}
