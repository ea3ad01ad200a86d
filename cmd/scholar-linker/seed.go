// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-linker/internal/roster"
	"github.com/pdiddy/scholar-linker/internal/store"
)

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <roster-dir>",
		Short: "Seed researchers and papers from roster exports",
		Long: `Seed walks <roster-dir>/<university>/<title>/<researcher>/ and loads each
researcher's article export. Exports named *_disambiguation_article.csv mark
researchers whose name is shared with others. Seeding is idempotent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSeed(args[0])
		},
	}
}

func (a *app) runSeed(root string) error {
	st, err := store.Open(a.config().Store)
	if err != nil {
		return err
	}
	defer st.Close()

	sum, err := roster.NewSeeder(st, a.log).SeedDir(context.Background(), root, os.Stdout)
	if err != nil {
		return err
	}
	if sum.Failed > 0 {
		return fmt.Errorf("%d export(s) failed seeding", sum.Failed)
	}
	return nil
}
