// Package experiments pits the difficulty tiers against each other to
// measure their strength and search cost.
package experiments

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"lobby/agent"
	"lobby/config"
	"lobby/crazy8s"
	"lobby/engine"
	"lobby/experiments/metrics"
	"lobby/game"
	"lobby/tictactoe"
)

// Results holds everything one arena run produced.
type Results struct {
	Name    string
	Configs []metrics.AgentConfig
	Games   []metrics.GameRecord
	Moves   []metrics.MoveRecord
}

// arena describes one game type: how to set up a game and build its agents.
type arena[M comparable] struct {
	name     string
	seats    [2]string // player labels, first mover first
	newState func(rng *rand.Rand) (game.State[M], error)
	newAgent func(c metrics.AgentConfig, rng *rand.Rand) (agent.Agent[M], error)
}

// tierConfigs returns one agent configuration per difficulty tier.
func tierConfigs(p float64) []metrics.AgentConfig {
	configs := make([]metrics.AgentConfig, len(game.Difficulties))
	for i, d := range game.Difficulties {
		configs[i] = metrics.AgentConfig{ID: i + 1, Difficulty: d, RandomProbability: p}
	}
	return configs
}

// matchUps pairs every tier with itself and every stronger tier.
func matchUps(configs []metrics.AgentConfig) [][2]metrics.AgentConfig {
	var out [][2]metrics.AgentConfig
	for i := range configs {
		for j := i; j < len(configs); j++ {
			out = append(out, [2]metrics.AgentConfig{configs[i], configs[j]})
		}
	}
	return out
}

// RunGridArena plays Tic-Tac-Toe between the tiers.
func RunGridArena(cfg config.Config) (Results, error) {
	return run(cfg, arena[tictactoe.Position]{
		name:  "tictactoe",
		seats: [2]string{string(tictactoe.X), string(tictactoe.O)},
		newState: func(*rand.Rand) (game.State[tictactoe.Position], error) {
			return tictactoe.NewState(tictactoe.EmptyBoard(), tictactoe.X), nil
		},
		newAgent: func(c metrics.AgentConfig, rng *rand.Rand) (agent.Agent[tictactoe.Position], error) {
			return agent.NewGrid(c.Difficulty, agent.WithRand(rng), agent.WithRandomProbability(c.RandomProbability), agent.WithMetrics())
		},
	})
}

// RunCardArena plays Crazy 8s between the tiers.
func RunCardArena(cfg config.Config) (Results, error) {
	return run(cfg, arena[crazy8s.Action]{
		name:  "crazy8s",
		seats: [2]string{crazy8s.Human.String(), crazy8s.Bot.String()},
		newState: func(rng *rand.Rand) (game.State[crazy8s.Action], error) {
			deck := crazy8s.Shuffle(crazy8s.BuildDeck(), rng)
			d, err := crazy8s.DealCards(deck, cfg.HandSize, len(crazy8s.Seats))
			if err != nil {
				return nil, err
			}
			t, err := crazy8s.NewTable(d)
			if err != nil {
				return nil, err
			}
			return t, nil
		},
		newAgent: func(c metrics.AgentConfig, rng *rand.Rand) (agent.Agent[crazy8s.Action], error) {
			return agent.NewCards(c.Difficulty, agent.WithRand(rng), agent.WithRandomProbability(c.RandomProbability))
		},
	})
}

func run[M comparable](cfg config.Config, a arena[M]) (Results, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewSource(seed))
	results := Results{Name: a.name, Configs: tierConfigs(cfg.MediumRandomProbability)}
	pairs := matchUps(results.Configs)

	log.Info().Msgf("starting %s arena with seed %d...", a.name, seed)

	for mi, pair := range pairs {
		log.Info().Msgf("starting matchup %d of %d between %s and %s...", mi+1, len(pairs), pair[0].Difficulty, pair[1].Difficulty)

		for i := 0; i < cfg.ArenaGames; i++ {
			// Alternate the starting agent
			first, second := pair[0], pair[1]
			if i%2 == 1 {
				first, second = second, first
			}

			record, moves, err := playGame(a, rng, first, second)
			if err != nil {
				return results, fmt.Errorf("%s matchup %d game %d: %w", a.name, mi+1, i+1, err)
			}
			record.Agent1, record.Agent2 = pair[0].ID, pair[1].ID
			results.Games = append(results.Games, record)
			results.Moves = append(results.Moves, moves...)
		}

		t := Tally(results.Games, pair[0].ID, pair[1].ID)
		log.Info().Msgf("completed matchup %d of %d: %s won %d, %s won %d, %d drawn",
			mi+1, len(pairs), pair[0].Difficulty, t.Wins1, pair[1].Difficulty, t.Wins2, t.Draws)
	}

	log.Info().Msgf("completed %s arena", a.name)
	return results, nil
}

func playGame[M comparable](a arena[M], rng *rand.Rand, first, second metrics.AgentConfig) (metrics.GameRecord, []metrics.MoveRecord, error) {
	state, err := a.newState(rng)
	if err != nil {
		return metrics.GameRecord{}, nil, err
	}
	agentFirst, err := a.newAgent(first, rng)
	if err != nil {
		return metrics.GameRecord{}, nil, err
	}
	agentSecond, err := a.newAgent(second, rng)
	if err != nil {
		return metrics.GameRecord{}, nil, err
	}

	e := engine.NewLocal(state, map[string]agent.Agent[M]{
		a.seats[0]: agentFirst,
		a.seats[1]: agentSecond,
	})
	gameMetric, moveMetrics, err := e.Run()
	if err != nil {
		return metrics.GameRecord{}, nil, err
	}

	record := metrics.GameRecord{
		ID:         uuid.New(),
		Game:       a.name,
		Starter:    first.ID,
		GameMetric: gameMetric,
	}
	switch gameMetric.Winner {
	case a.seats[0]:
		record.WinnerID = first.ID
	case a.seats[1]:
		record.WinnerID = second.ID
	}

	moves := make([]metrics.MoveRecord, len(moveMetrics))
	for i, mm := range moveMetrics {
		moves[i] = metrics.MoveRecord{Game: record.ID, MoveMetric: mm}
	}
	return record, moves, nil
}

// Score counts the results of the games between two agents.
type Score struct {
	Wins1, Wins2, Draws int
}

// Tally scores the games played between agent ids id1 and id2.
func Tally(records []metrics.GameRecord, id1, id2 int) Score {
	var s Score
	for _, r := range records {
		if r.Agent1 != id1 || r.Agent2 != id2 {
			continue
		}
		switch {
		case r.WinnerID == 0:
			s.Draws++
		case r.WinnerID == id1 && id1 != id2:
			s.Wins1++
		case r.WinnerID == id2 && id1 != id2:
			s.Wins2++
		default:
			// Mirror matchups credit the starting seat.
			if r.WinnerID == r.Starter {
				s.Wins1++
			} else {
				s.Wins2++
			}
		}
	}
	return s
}

// Write stores the results as CSV files under root.
func Write(root string, results Results) (string, error) {
	writer, err := metrics.NewWriter(root, results.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteAgentConfigs(results.Configs); err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")
	if err := writer.WriteGameRecords(results.Games); err != nil {
		return "", fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")
	if err := writer.WriteMoveRecords(results.Moves); err != nil {
		return "", fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msg("stored move records")
	return writer.Dir(), nil
}
