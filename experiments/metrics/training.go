package metrics

import (
	"fmt"
	"mancala/game"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// TrainingRow is one position of a self-play game with its search targets.
//
// Holes and Stores are listed from the mover's side first, so rows from
// either player share one layout. Policy is the share of root visits per
// hole. Value is the final stone margin for the mover scaled to [-1..1].
type TrainingRow struct {
	RunID  string    `parquet:"run_id,dict"`
	Game   int32     `parquet:"game"`
	Step   int32     `parquet:"step"`
	Player int32     `parquet:"player"`
	Holes  []int32   `parquet:"holes"`
	Stores []int32   `parquet:"stores"`
	Move   int32     `parquet:"move"`
	Policy []float32 `parquet:"policy"`
	Value  float32   `parquet:"value"`
}

// NewTrainingRow labels a move record with the outcome of its game.
func NewTrainingRow(runID string, record MoveRecord, result game.Result) TrainingRow {
	mover := record.Player
	sides := [2]game.Side{record.State.Sides[mover], record.State.Sides[mover.Other()]}

	row := TrainingRow{
		RunID:  runID,
		Game:   int32(record.Game),
		Step:   int32(record.Step),
		Player: int32(mover),
		Holes:  make([]int32, 0, 2*game.HolesPerSide),
		Stores: make([]int32, 0, 2),
		Move:   int32(record.Move),
		Policy: make([]float32, game.HolesPerSide),
		Value:  float32(result.Margin(mover)) / float32(game.TotalStones),
	}
	for _, side := range sides {
		for _, stones := range side.Holes {
			row.Holes = append(row.Holes, int32(stones))
		}
		row.Stores = append(row.Stores, int32(side.Store))
	}
	for i, share := range record.Policy {
		row.Policy[i] = float32(share)
	}
	return row
}

// WriteTrainingRows stores one row per recorded move. Moves of games missing
// from games are skipped since they have no outcome.
func (w *Writer) WriteTrainingRows(runID string, games []GameRecord, moves []MoveRecord) error {
	results := make(map[int]game.Result, len(games))
	for _, record := range games {
		results[record.ID] = game.Result{Scores: record.Scores}
	}

	rows := make([]TrainingRow, 0, len(moves))
	for _, record := range moves {
		result, ok := results[record.Game]
		if !ok {
			continue
		}
		rows = append(rows, NewTrainingRow(runID, record, result))
	}

	// Write to a temp file and rename atomically
	outPath := filepath.Join(w.baseDir, "training_rows.parquet")
	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", "kalah_training_v1"),
	); err != nil {
		return fmt.Errorf("failed to write training rows: %w", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("failed to rename training rows: %w", err)
	}
	return nil
}
