package experiments

import (
	"context"
	"encoding/csv"
	"mancala/controller"
	"mancala/searcher"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	t.Run("recording every game and move", func(t *testing.T) {
		e := SelfPlay(2, time.Millisecond, 1.0, 3)
		e.OutputDir = t.TempDir()
		e.Options = []controller.Option{
			controller.WithPublishInterval(time.Millisecond),
			controller.WithSearchOptions(searcher.WithSeed(3)),
		}

		dir, err := Run(context.Background(), e)

		require.NoError(t, err)
		require.FileExists(t, filepath.Join(dir, "setup.json"))
		setup, err := os.ReadFile(filepath.Join(dir, "setup.json"))
		require.NoError(t, err)
		require.Contains(t, string(setup), `"RunID"`, "Setup should record the generated run id")
		require.FileExists(t, filepath.Join(dir, "agent_configs.csv"))

		f, err := os.Open(filepath.Join(dir, "game_records.csv"))
		require.NoError(t, err)
		defer f.Close()
		games, err := csv.NewReader(f).ReadAll()
		require.NoError(t, err)
		require.Len(t, games, 3, "Header plus one row per game")
		require.Equal(t, []string{"1", "2"}, games[1][1:3], "First game should seat the matchup in order")
		require.Equal(t, []string{"2", "1"}, games[2][1:3], "Second game should swap the seats")

		require.FileExists(t, filepath.Join(dir, "move_records.csv"))
		require.FileExists(t, filepath.Join(dir, "training_rows.parquet"))
		require.NoFileExists(t, filepath.Join(dir, "training_rows.parquet.tmp"))
	})

	t.Run("rejecting an empty experiment", func(t *testing.T) {
		_, err := Run(context.Background(), Experiment{Name: "empty", OutputDir: t.TempDir()})
		require.Error(t, err)
	})

	t.Run("stopping on cancellation", func(t *testing.T) {
		e := SelfPlay(1, time.Hour, 0.5, 1)
		e.OutputDir = t.TempDir()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Run(ctx, e)

		require.ErrorIs(t, err, context.Canceled)
	})
}
