package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/navalcombat/internal/api"
	"github.com/mcoot/navalcombat/internal/api/response"
	"github.com/mcoot/navalcombat/internal/cli"
	"github.com/mcoot/navalcombat/internal/factory"
	"github.com/mcoot/navalcombat/internal/model"
	"github.com/mcoot/navalcombat/internal/testutil"
)

// cliRunner runs CLI commands in-process against a server
type cliRunner struct {
	serverURL string
	saveDir   string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()
	return &cliRunner{serverURL: serverURL, saveDir: t.TempDir()}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--save-dir", r.saveDir,
		"--output", "json",
	}, args...)

	var out bytes.Buffer
	cmd := cli.NewRootCmd()
	cmd.SetArgs(fullArgs)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func runJSON[T any](t *testing.T, r *cliRunner, args ...string) T {
	t.Helper()
	out, err := r.run(args...)
	require.NoError(t, err, out)

	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	url      string
	app      *factory.App
	shutdown func()
}

func startTestServer(t *testing.T, saveDir string) *testServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	logger := testutil.NopLogger()
	app, err := factory.New(factory.Config{
		Logger:       logger,
		StorageType:  factory.StorageTypeFile,
		SaveDir:      saveDir,
		CPUShotDelay: -1,
		AutoSave:     true,
		Seed:         7,
	})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:     logger,
		Controller: app.Controller,
		Hub:        app.Hub,
	})
	server := api.NewServer(router, api.DefaultServerConfig(), logger)

	go func() {
		if err := server.Serve(listener); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/api/v1/health")

	ts := &testServer{
		url: serverURL,
		app: app,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
			_ = app.Close()
		},
	}
	t.Cleanup(ts.shutdown)
	return ts
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

func TestCLIHealth(t *testing.T) {
	ts := startTestServer(t, t.TempDir())
	r := newCLIRunner(t, ts.url)

	result := runJSON[cli.HealthResult](t, r, "health")
	assert.Equal(t, "ok", result.Status)
}

func TestCLIRemoteGame(t *testing.T) {
	ts := startTestServer(t, t.TempDir())
	r := newCLIRunner(t, ts.url)

	state := runJSON[response.GameState](t, r, "game", "new", "Nemo")
	assert.Equal(t, "Nemo", state.Nickname)
	assert.Equal(t, string(model.PhaseSetup), state.Phase)

	ship := runJSON[response.Ship](t, r, "game", "place", "0", "2", "3", "--vertical")
	assert.Equal(t, "Carrier", ship.Name)
	assert.True(t, ship.Vertical)
	require.NotNil(t, ship.Anchor)
	assert.Equal(t, response.Coord{Col: 2, Row: 3}, *ship.Anchor)

	// The submarine overlaps the carrier, so only --snap places it
	_, err := r.run("game", "place", "1", "2", "3")
	assert.Error(t, err)
	ship = runJSON[response.Ship](t, r, "game", "place", "1", "2", "3", "--snap")
	assert.True(t, ship.Placed)

	ship = runJSON[response.Ship](t, r, "game", "rotate", "1")
	assert.True(t, ship.Vertical)

	out, err := r.run("game", "remove", "1")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Ship removed")

	_, err = r.run("game", "start")
	assert.ErrorContains(t, err, "FLEET_INCOMPLETE")

	state = runJSON[response.GameState](t, r, "game", "auto")
	for _, s := range state.PlayerFleet {
		assert.True(t, s.Placed, s.Name)
	}

	started := runJSON[response.StartResponse](t, r, "game", "start")
	assert.Equal(t, string(model.PhaseInProgress), started.Game.Phase)
	assert.Empty(t, started.Warning)

	fired := runJSON[response.FireResponse](t, r, "game", "fire", "0", "0")
	assert.Equal(t, "player", fired.Shot.Shooter)
	assert.NotEqual(t, "ERROR", fired.Shot.Outcome)

	state = runJSON[response.GameState](t, r, "game", "state")
	assert.True(t, state.TargetBoard.ShotAt[0][0])

	summary := runJSON[response.SaveSummary](t, r, "game", "save")
	assert.Equal(t, "Nemo", summary.Nickname)
	assert.Equal(t, 1, summary.PlayerShots)

	loaded := runJSON[response.LoadResponse](t, r, "game", "load")
	assert.Equal(t, state.PlayerBoard, loaded.Game.PlayerBoard)
	assert.Equal(t, state.TargetBoard, loaded.Game.TargetBoard)
}

func TestCLIPlaysFullGameRemotely(t *testing.T) {
	ts := startTestServer(t, t.TempDir())
	r := newCLIRunner(t, ts.url)

	runJSON[response.GameState](t, r, "game", "new")
	runJSON[response.GameState](t, r, "game", "auto")
	runJSON[response.StartResponse](t, r, "game", "start")

	var last response.FireResponse
	for row := range model.GridRows {
		for col := range model.GridCols {
			last = runJSON[response.FireResponse](t, r, "game", "fire", fmt.Sprint(col), fmt.Sprint(row))
			if last.Phase == string(model.PhaseEnded) {
				break
			}
		}
		if last.Phase == string(model.PhaseEnded) {
			break
		}
	}

	require.Equal(t, string(model.PhaseEnded), last.Phase)
	assert.Contains(t, []string{"player", "cpu"}, last.Winner)

	_, err := r.run("game", "fire", "9", "9")
	assert.ErrorContains(t, err, "GAME_OVER")
}

func TestCLILocalSaveCommands(t *testing.T) {
	saveDir := t.TempDir()
	ts := startTestServer(t, saveDir)
	r := newCLIRunner(t, ts.url)
	r.saveDir = saveDir

	out, err := r.run("save", "status")
	require.NoError(t, err, out)
	assert.Contains(t, out, "No saved game")

	// The server writes to the same directory the CLI inspects
	runJSON[response.GameState](t, r, "game", "new", "Nemo")
	runJSON[response.GameState](t, r, "game", "auto")
	runJSON[response.StartResponse](t, r, "game", "start")
	runJSON[response.SaveSummary](t, r, "game", "save")
	assert.FileExists(t, filepath.Join(saveDir, "last_game.dat"))

	summary := runJSON[response.SaveSummary](t, r, "save", "status")
	assert.Equal(t, "Nemo", summary.Nickname)
	assert.Equal(t, string(model.PhaseInProgress), summary.Phase)

	out, err = r.run("save", "delete")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Saved game deleted")
	assert.NoFileExists(t, filepath.Join(saveDir, "last_game.dat"))
}

func TestCLIConnectionError(t *testing.T) {
	r := newCLIRunner(t, "http://127.0.0.1:1")

	_, err := r.run("health")
	assert.ErrorContains(t, err, "request failed")
}
