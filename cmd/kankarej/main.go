package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "kankarej",
	Short: "Kankarej Spices — headless storefront client",
	Long:  "Browse the Kankarej Spices catalog, search products, read contact info, and play the masala memory game from the terminal.",
}

func init() {
	// Catalog
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(contactCmd)

	// Game
	rootCmd.AddCommand(gameCmd)
	rootCmd.AddCommand(scoresCmd)
}
