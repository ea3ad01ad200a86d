// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-linker/internal/source"
)

func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the available source adapters",
		Run: func(cmd *cobra.Command, args []string) {
			reg := source.Default()
			for _, name := range reg.Names() {
				a, _ := reg.Get(name)
				scope := "all venues"
				if a.JournalsOnly() {
					scope = "journals only"
				}
				fmt.Printf("%-6s .%-5s %s\n", name, a.Ext(), scope)
			}
		},
	}
}
