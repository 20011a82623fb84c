package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yungbote/ndtmaster-backend/internal/services"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the built-in tech card templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		templates, err := services.NewTemplateService()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tDOCUMENT\tMETHOD")
		for _, t := range templates.List() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, t.Name, t.DefaultValues.NormativeDocument, t.DefaultValues.ControlMethod)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}
