package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"lobby/config"
	"lobby/experiments"
	"lobby/gamemaster"
	"lobby/store"
)

func main() {
	arena := flag.String("arena", "all", "Arena to run: tictactoe, crazy8s, all or none")
	games := flag.Int("games", 0, "Games per matchup, overrides LOBBY_ARENA_GAMES")
	stats := flag.Bool("stats", false, "Print the saved statistics of both games")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *games > 0 {
		cfg.ArenaGames = *games
	}
	zerolog.SetGlobalLevel(cfg.Level())
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *stats {
		if err := printStats(cfg); err != nil {
			log.Fatal().Err(err).Msg("failed to read statistics")
		}
	}

	runs := map[string]func(config.Config) (experiments.Results, error){
		gamemaster.TicTacToeGame: experiments.RunGridArena,
		gamemaster.Crazy8sGame:   experiments.RunCardArena,
	}
	for _, name := range []string{gamemaster.TicTacToeGame, gamemaster.Crazy8sGame} {
		if *arena != "all" && *arena != name {
			continue
		}
		results, err := runs[name](cfg)
		if err != nil {
			log.Fatal().Err(err).Msgf("%s arena failed", name)
		}
		dir, err := experiments.Write(cfg.ArenaDir, results)
		if err != nil {
			log.Fatal().Err(err).Msgf("failed to store %s results", name)
		}
		log.Info().Msgf("stored %s results in %s", name, dir)
	}
}

func printStats(cfg config.Config) error {
	ctx := context.Background()
	s, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	repo := store.NewRepository(s, store.WithTTL(cfg.SessionTTL))
	for _, name := range []string{gamemaster.TicTacToeGame, gamemaster.Crazy8sGame} {
		st, err := repo.LoadStats(ctx, name)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		fmt.Printf("%-10s wins %d  losses %d  draws %d  total %d  saved game %t\n",
			name, st.Wins, st.Losses, st.Draws, st.TotalGames, repo.HasSession(ctx, name))
	}
	return nil
}
