// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"nonsense", LevelInfo},
		{"  warn  ", LevelWarn},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseLevel(tc.input), "input %q", tc.input)
	}
}

func TestNew_StderrOnly(t *testing.T) {
	logger, err := New(Config{Service: "personalization"})
	require.NoError(t, err)
	defer logger.Close()

	require.NotNil(t, logger.Slog())
	assert.Nil(t, logger.file)
}

func TestNew_FileLogging(t *testing.T) {
	dir := t.TempDir()
	logDir := filepath.Join(dir, "nested", "logs")

	logger, err := New(Config{Service: "personalization", LogDir: logDir, JSON: true})
	require.NoError(t, err)

	logger.Slog().Info("sweep complete", "windows_removed", 3)
	require.NoError(t, logger.Close())

	name := "personalization_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(logDir, name))
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "sweep complete", entry["msg"])
	assert.Equal(t, "personalization", entry["service"])
	assert.Equal(t, float64(3), entry["windows_removed"])
}

func TestNew_DefaultServiceFileName(t *testing.T) {
	dir := t.TempDir()

	logger, err := New(Config{LogDir: dir})
	require.NoError(t, err)
	defer logger.Close()

	name := "ember_" + time.Now().Format("2006-01-02") + ".log"
	_, err = os.Stat(filepath.Join(dir, name))
	assert.NoError(t, err)
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()

	logger, err := New(Config{Level: LevelWarn, LogDir: dir, Service: "test"})
	require.NoError(t, err)

	logger.Slog().Info("should be dropped")
	logger.Slog().Warn("should be kept")
	require.NoError(t, logger.Close())

	name := "test_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)

	assert.NotContains(t, string(data), "should be dropped")
	assert.Contains(t, string(data), "should be kept")
}

func TestClose_Idempotent(t *testing.T) {
	logger, err := New(Config{LogDir: t.TempDir()})
	require.NoError(t, err)

	require.NoError(t, logger.Close())
	require.NoError(t, logger.Close())
}
