// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd(newApp())
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"update", "seed", "report", "pending", "sources", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestConfigDefaultsAndFlags(t *testing.T) {
	a := newApp()
	root := newRootCmd(a)
	setDefaults(a.v)

	cfg := a.config()
	assert.Equal(t, "scholar.db", cfg.Store.Path)
	assert.Equal(t, "wos", cfg.Update.Source)
	assert.Equal(t, 150, cfg.Update.BatchSize)
	assert.Equal(t, 60*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 5, cfg.Fetch.MaxRetries)

	update, _, err := root.Find([]string{"update"})
	require.NoError(t, err)
	require.NoError(t, update.Flags().Set("source", "ieee"))
	require.NoError(t, root.PersistentFlags().Set("db", "other.db"))

	cfg = a.config()
	assert.Equal(t, "ieee", cfg.Update.Source)
	assert.Equal(t, "other.db", cfg.Store.Path)
}

func TestConfigFromEnvironment(t *testing.T) {
	t.Setenv("SCHOLAR_LINKER_UPDATE_WORKERS", "9")
	a := newApp()
	newRootCmd(a)
	a.initConfig("")

	assert.Equal(t, 9, a.config().Update.Workers)
}
