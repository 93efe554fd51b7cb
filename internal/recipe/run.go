package recipe

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/KaramelBytes/quickprep-cli/internal/table"
)

// StepReport records the shape of the table around one step.
type StepReport struct {
	Index      int           `json:"index"`
	Op         string        `json:"op"`
	RowsBefore int           `json:"rows_before"`
	RowsAfter  int           `json:"rows_after"`
	ColsBefore int           `json:"cols_before"`
	ColsAfter  int           `json:"cols_after"`
	Duration   time.Duration `json:"duration_ns"`
}

// Report describes one recipe run.
type Report struct {
	RunID    uuid.UUID    `json:"run_id"`
	Recipe   string       `json:"recipe,omitempty"`
	Started  time.Time    `json:"started"`
	Finished time.Time    `json:"finished"`
	Steps    []StepReport `json:"steps"`
}

// Run applies every step in order. On failure the partial report is returned with
// the error and the input table is untouched.
func Run(t *table.Table, r *Recipe, log zerolog.Logger) (*table.Table, *Report, error) {
	rep := &Report{RunID: uuid.New(), Recipe: r.Name, Started: time.Now().UTC()}
	log = log.With().Str("run_id", rep.RunID.String()).Logger()
	log.Info().Int("steps", len(r.compiled)).Int("rows", t.NumRows()).Int("cols", t.NumCols()).Msg("recipe started")

	cur := t
	for i, apply := range r.compiled {
		op := r.Steps[i].Op
		start := time.Now()
		next, err := apply(cur)
		if err != nil {
			log.Error().Err(err).Int("step", i+1).Str("op", op).Msg("step failed")
			rep.Finished = time.Now().UTC()
			return nil, rep, fmt.Errorf("step %d (%s): %w", i+1, op, err)
		}
		sr := StepReport{
			Index:      i + 1,
			Op:         op,
			RowsBefore: cur.NumRows(),
			RowsAfter:  next.NumRows(),
			ColsBefore: cur.NumCols(),
			ColsAfter:  next.NumCols(),
			Duration:   time.Since(start),
		}
		rep.Steps = append(rep.Steps, sr)
		log.Debug().
			Int("step", sr.Index).
			Str("op", op).
			Int("rows_before", sr.RowsBefore).
			Int("rows_after", sr.RowsAfter).
			Int("cols_after", sr.ColsAfter).
			Dur("took", sr.Duration).
			Msg("step applied")
		cur = next
	}
	rep.Finished = time.Now().UTC()
	log.Info().Int("rows", cur.NumRows()).Int("cols", cur.NumCols()).Dur("took", rep.Finished.Sub(rep.Started)).Msg("recipe finished")
	return cur, rep, nil
}
