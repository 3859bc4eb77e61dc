package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/lukelpg/board-game-creator/internal/config"
)

func TestServer_CreatePlaceSaveOnDisk(t *testing.T) {
	cfg := config.Default()
	cfg.GamesDir = filepath.Join(t.TempDir(), "games")

	h, err := newHandler(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(h.Close)
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)

	post := func(path, body string) *http.Response {
		t.Helper()
		resp, err := http.Post(srv.URL+path, "application/json", bytes.NewBufferString(body))
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	resp := post("/api/games", `{"name": "checkers"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = post("/api/games/checkers/boards/Main/sections", `{"name": "home", "kind": "Piece", "x0": 0, "y0": 0, "x1": 7, "y1": 1}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = post("/api/games/checkers/save", ``)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := os.ReadFile(filepath.Join(cfg.GamesDir, "checkers.json"))
	require.NoError(t, err)

	var doc struct {
		Boards []struct {
			Mode     string `json:"mode"`
			Sections []struct {
				Name string `json:"name"`
				Kind string `json:"kind"`
			} `json:"sections"`
		} `json:"boards"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Len(t, doc.Boards, 1)
	assert.Equal(t, "grid", doc.Boards[0].Mode)
	require.Len(t, doc.Boards[0].Sections, 1)
	assert.Equal(t, "home", doc.Boards[0].Sections[0].Name)
	assert.Equal(t, "Piece", doc.Boards[0].Sections[0].Kind)
}
