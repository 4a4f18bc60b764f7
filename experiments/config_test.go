package experiments

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "experiment.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("parses a full experiment definition", func(t *testing.T) {
		path := writeConfig(t, `
name: worker_scaling
games_per_matchup: 5
agents:
  - workers: 1
    iteration_count: 100
    simulation_count: 2
    explore_bias: 1.4
  - workers: 8
    duration: 20ms
`)

		cfg, err := LoadConfig(path)

		require.NoError(t, err)
		require.Equal(t, "worker_scaling", cfg.Name)
		require.Equal(t, 5, cfg.GamesPerMatchup)
		require.Len(t, cfg.Agents, 2)
		require.Equal(t, 100, cfg.Agents[0].IterationCount)
		require.Equal(t, 2, cfg.Agents[0].SimulationCount)
		require.InDelta(t, 1.4, cfg.Agents[0].ExploreBias, 0.0001)
		require.Equal(t, 8, cfg.Agents[1].Workers)
		require.Equal(t, 20*time.Millisecond, cfg.Agents[1].Duration)
	})

	t.Run("rejects a missing name", func(t *testing.T) {
		path := writeConfig(t, `
agents:
  - iteration_count: 10
  - iteration_count: 10
`)

		_, err := LoadConfig(path)

		require.Error(t, err)
	})

	t.Run("rejects fewer than two agents", func(t *testing.T) {
		path := writeConfig(t, `
name: solo
agents:
  - iteration_count: 10
`)

		_, err := LoadConfig(path)

		require.Error(t, err)
	})

	t.Run("rejects an agent without a budget", func(t *testing.T) {
		path := writeConfig(t, `
name: unbounded
agents:
  - iteration_count: 10
  - workers: 4
`)

		_, err := LoadConfig(path)

		require.Error(t, err)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))

		require.Error(t, err)
	})
}
