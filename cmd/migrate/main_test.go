package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRun_RejectsBeforeConnecting(t *testing.T) {
	ctx := context.Background()
	log := zaptest.NewLogger(t)

	err := run(ctx, options{}, []string{"sideways"}, log)
	assert.ErrorContains(t, err, `unknown command "sideways"`)

	err = run(ctx, options{}, []string{"drop"}, log)
	assert.ErrorContains(t, err, "-confirm")

	err = run(ctx, options{}, []string{"create"}, log)
	assert.ErrorContains(t, err, "usage: migrate create")
}

func TestRun_CreateAndList(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	log := zaptest.NewLogger(t)

	require.NoError(t, run(ctx, options{dir: dir}, []string{"create", "add unit notes", "Free-form notes"}, log))
	require.NoError(t, run(ctx, options{dir: dir}, []string{"list"}, log))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestIntArg(t *testing.T) {
	n, err := intArg([]string{"-2"}, "step <n>")
	require.NoError(t, err)
	assert.Equal(t, -2, n)

	_, err = intArg(nil, "step <n>")
	assert.ErrorContains(t, err, "usage: migrate step <n>")

	_, err = intArg([]string{"two"}, "step <n>")
	assert.ErrorContains(t, err, "invalid number")
}

func TestMigrationsDir_Absolute(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, dir, migrationsDir(dir))
	assert.True(t, filepath.IsAbs(migrationsDir("relative/path")))
}
