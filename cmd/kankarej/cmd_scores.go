package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/kankarej/config"
	"github.com/shashiranjanraj/kankarej/pkg/score"
)

// kankarej scores
var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show persisted game scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := score.Open(config.ScoreDBPath())
		if err != nil {
			return err
		}
		defer store.Close()

		fmt.Printf("High score:  %d\n", store.Get(score.KeyHighScore, 0))
		fmt.Printf("Total score: %d\n", store.Get(score.KeyTotalScore, 0))
		return nil
	},
}
