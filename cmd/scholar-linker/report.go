// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-linker/internal/report"
	"github.com/pdiddy/scholar-linker/internal/store"
)

func newReportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <researcher-id>",
		Short: "List a researcher's identities and contributions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			return a.runReport(args[0], format)
		},
	}
	cmd.Flags().String("format", report.FormatTable, "output format: table, yaml, or json")
	return cmd
}

func (a *app) runReport(arg, format string) error {
	rid, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return fmt.Errorf("researcher id %q: %w", arg, err)
	}

	st, err := store.Open(a.config().Store)
	if err != nil {
		return err
	}
	defer st.Close()

	rep, err := report.Build(context.Background(), st, rid)
	if err != nil {
		return err
	}
	return report.Write(os.Stdout, rep, format)
}
