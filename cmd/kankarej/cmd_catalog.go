package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/kankarej/app/storefront"
)

var (
	productsCategory string
	productsPage     int
	productsPageSize int
)

// kankarej products [--category Spices] [--page 1] [--size 20]
var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List products, paginated over a stable per-session ordering",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storefront.New()
		if err != nil {
			return err
		}
		defer store.Close()

		offset := (productsPage - 1) * productsPageSize
		page, err := store.Catalog.LoadProductsPage(cmd.Context(), offset, productsPageSize, productsCategory)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			fmt.Println("no products on this page")
			return nil
		}
		for _, p := range page {
			fmt.Printf("%-30s ₹%-6d %-15s ★%.1f\n", p.Name, p.Price, p.Category, p.Rating)
		}
		return nil
	},
}

// kankarej categories
var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List catalog categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storefront.New()
		if err != nil {
			return err
		}
		defer store.Close()

		cats, err := store.Catalog.LoadCategories(cmd.Context())
		if err != nil {
			return err
		}
		for _, c := range cats {
			fmt.Println(c.Name)
		}
		return nil
	},
}

// kankarej search <query>
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search products by name (case-insensitive substring)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storefront.New()
		if err != nil {
			return err
		}
		defer store.Close()

		hits, err := store.Catalog.Search(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(hits) == 0 {
			fmt.Println("no matches")
			return nil
		}
		for _, p := range hits {
			fmt.Printf("%-30s ₹%-6d %s\n", p.Name, p.Price, p.Category)
		}
		return nil
	},
}

// kankarej contact
var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Show company contact info",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storefront.New()
		if err != nil {
			return err
		}
		defer store.Close()

		updates, stop := store.WatchContact()
		defer stop()

		select {
		case info, ok := <-updates:
			if !ok {
				return fmt.Errorf("contact stream closed before first update")
			}
			fmt.Printf("GSTIN:   %s\nFSSAI:   %s\nAddress: %s\n", info.GSTIN, info.FSSAI, info.Address)
			for _, person := range info.Team {
				fmt.Printf("  %-20s %-15s %s\n", person.Name, person.Role, person.Phone)
			}
			return nil
		case <-time.After(15 * time.Second):
			return context.DeadlineExceeded
		}
	},
}

func init() {
	productsCmd.Flags().StringVar(&productsCategory, "category", "", "filter by category name")
	productsCmd.Flags().IntVar(&productsPage, "page", 1, "page number (1-based)")
	productsCmd.Flags().IntVar(&productsPageSize, "size", 20, "page size")
}
