package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/kankarej/app/storefront"
	"github.com/shashiranjanraj/kankarej/pkg/game"
)

// kankarej game
var gameCmd = &cobra.Command{
	Use:   "game",
	Short: "Play a round of the masala memory game",
	Long:  "Deals a shuffled board of product pairs. Enter a card index to flip it; match every pair before the clock runs out.",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storefront.New()
		if err != nil {
			return err
		}
		defer store.Close()

		pool, err := store.Catalog.LoadProductsPage(cmd.Context(), 0, 100, "")
		if err != nil {
			return err
		}

		engine := store.NewGame()
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go engine.Run(ctx)

		fmt.Println("Preparing the board…")
		if err := engine.ProvidePool(pool); err != nil {
			return err
		}

		// Status changes print asynchronously so countdown and
		// time-out land between input prompts.
		_ = engine.Bus().Subscribe(game.TopicStatus, func(s game.Status) {
			switch s {
			case game.StatusPlaying:
				fmt.Println("\nGo! 60 seconds on the clock.")
			case game.StatusWon:
				fmt.Println("\nVictory!")
			case game.StatusLost:
				fmt.Println("\nTime's up!")
			}
		})
		_ = engine.Bus().Subscribe(game.TopicMatch, func(ev game.MatchEvent) {
			if ev.Matched {
				fmt.Printf("Matched %s! +%d (streak ×%d)\n", ev.Product, ev.Points, ev.Streak)
			} else {
				fmt.Println("No match.")
			}
		})

		in := bufio.NewScanner(os.Stdin)
		for {
			switch engine.Status() {
			case game.StatusWon, game.StatusLost:
				fmt.Printf("Session %d · High %d · Total %d\n",
					engine.SessionScore(), engine.HighScore(), engine.TotalScore())
				return nil
			case game.StatusPlaying:
				printBoard(engine.Cards())
				fmt.Printf("[%ds] flip card: ", engine.TimeLeft())
				if !in.Scan() {
					return nil
				}
				idx, err := strconv.Atoi(strings.TrimSpace(in.Text()))
				if err != nil {
					continue
				}
				engine.Click(idx)
			default:
				// countdown or preloading; Run advances it
				time.Sleep(200 * time.Millisecond)
			}
		}
	},
}

func printBoard(cards []game.Card) {
	for i, c := range cards {
		face := "▒▒▒"
		if c.Matched {
			face = "[" + c.Product.Name + "]"
		} else if c.Flipped {
			face = c.Product.Name
		}
		fmt.Printf("%2d:%-20s", i, face)
		if (i+1)%3 == 0 {
			fmt.Println()
		}
	}
	fmt.Println()
}
