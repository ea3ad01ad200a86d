// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-linker/internal/store"
)

func newPendingCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List papers that still have an identity without contact details",
		RunE: func(cmd *cobra.Command, args []string) error {
			journals, _ := cmd.Flags().GetBool("journals")
			limit, _ := cmd.Flags().GetInt("limit")
			return a.runPending(store.PendingOptions{JournalsOnly: journals, Limit: limit})
		},
	}
	cmd.Flags().Bool("journals", false, "only papers published in journals")
	cmd.Flags().Int("limit", 50, "maximum papers listed")
	return cmd
}

func (a *app) runPending(opts store.PendingOptions) error {
	st, err := store.Open(a.config().Store)
	if err != nil {
		return err
	}
	defer st.Close()

	papers, err := st.PendingPapers(context.Background(), opts)
	if err != nil {
		return err
	}
	if len(papers) == 0 {
		fmt.Println("No pending papers.")
		return nil
	}

	table := tablewriter.NewTable(os.Stdout)
	table.Header("ID", "Title", "Venue", "Year", "Authors")
	for _, p := range papers {
		if err := table.Append(strconv.FormatInt(p.ID, 10), p.Title, p.Venue, p.Year, strconv.Itoa(p.AuthorCount)); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "\n%d pending papers\n", len(papers))
	return nil
}
