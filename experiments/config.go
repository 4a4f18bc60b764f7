package experiments

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/dstu/thud-sub000/experiments/metrics"
	"github.com/dstu/thud-sub000/searcher"
)

// Config describes a custom experiment loaded from a YAML file: a named set
// of agent configurations played round-robin against each other.
type Config struct {
	Name            string              `yaml:"name"`
	GamesPerMatchup int                 `yaml:"games_per_matchup"`
	Agents          []searcher.Settings `yaml:"agents"`
}

// LoadConfig reads an experiment definition from path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read experiment config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse experiment config: %w", err)
	}
	if cfg.Name == "" {
		return Config{}, fmt.Errorf("experiment config needs a name")
	}
	if len(cfg.Agents) < 2 {
		return Config{}, fmt.Errorf("experiment config needs at least two agents")
	}
	for i, agent := range cfg.Agents {
		if agent.IterationCount <= 0 && agent.Duration <= 0 {
			return Config{}, fmt.Errorf("agent %d needs an iteration count or a duration", i)
		}
	}
	return cfg, nil
}

// RunConfigured plays every pairing of the configured agents, including
// mirror matches, for GamesPerMatchup games each.
func RunConfigured(cfg Config) {
	configs := make([]metrics.AgentConfig, len(cfg.Agents))
	for i, agent := range cfg.Agents {
		configs[i] = metrics.AgentConfig{
			ID:              i + 1,
			Workers:         agent.Workers,
			Duration:        agent.Duration,
			Iterations:      agent.IterationCount,
			SimulationCount: agent.SimulationCount,
			ExploreBias:     agent.ExploreBias,
		}
	}

	matchUps := [][]metrics.AgentConfig{}
	for i := range configs {
		for j := i; j < len(configs); j++ {
			matchUps = append(matchUps, []metrics.AgentConfig{configs[i], configs[j]})
		}
	}

	games := cfg.GamesPerMatchup
	if games <= 0 {
		games = NumGames
	}
	runConfiguredExperiment(cfg.Name, games, configs, matchUps)
}

func runConfiguredExperiment(name string, games int, configs []metrics.AgentConfig, matchUps [][]metrics.AgentConfig) {
	count := 0
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}

	log.Info().Msgf("starting %s experiment...", name)

	for mi, matchup := range matchUps {
		for i := 0; i < games; i++ {
			winner, gameMetric, moveMetrics := runGame(matchup[0], matchup[1])
			count++
			gameRecords = append(gameRecords, metrics.GameRecord{
				ID:         count,
				Agent1:     matchup[0].ID,
				Agent2:     matchup[1].ID,
				GameMetric: gameMetric,
			})
			for _, mm := range moveMetrics {
				moveRecords = append(moveRecords, metrics.MoveRecord{
					Game:       count,
					MoveMetric: mm,
				})
			}
			log.Info().Msgf("completed matchup %d of %d game %d of %d with winner: %s", mi+1, len(matchUps), i+1, games, winner)
		}
	}

	log.Info().Msgf("completed %s experiment", name)

	storeResults(name, configs, gameRecords, moveRecords)
}
