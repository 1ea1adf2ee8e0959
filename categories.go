package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"blog_pipeline/generator"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the category catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		withTopics, _ := cmd.Flags().GetBool("topics")
		for i, c := range generator.DefaultCatalog() {
			fmt.Fprintf(cmd.OutOrStdout(), "%2d. %s\n", i+1, c.Name)
			if withTopics {
				fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", strings.Join(c.Topics, ", "))
			}
		}
		return nil
	},
}

func init() {
	categoriesCmd.Flags().Bool("topics", false, "also print the topics of each category")
	rootCmd.AddCommand(categoriesCmd)
}
