// Package steamcmd drives the external fetch tool as a subprocess.
package steamcmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/a3tools/a3sync/internal/logging"
	"github.com/a3tools/a3sync/internal/settings"
)

// Fetcher is the capability the sync pipeline needs from the download tool.
// Success is a nil error; any failure counts against the retry budget.
type Fetcher interface {
	FetchMod(ctx context.Context, modID string) error
	UpdateServer(ctx context.Context) error
}

// Client runs the configured steamcmd binary. One invocation per request,
// awaited to completion; steamcmd shares login session state, so calls are
// never overlapped.
type Client struct {
	tool      string
	user      string
	pass      string
	serverID  string
	dlcIDs    []string
	serverDir string
	appID     string
}

// NewClient validates the configured tool path and returns a Client.
// A missing binary is a configuration error, raised before the pipeline runs.
func NewClient(cfg *settings.Settings) (*Client, error) {
	info, err := os.Stat(cfg.SteamCmd)
	if err != nil || info.IsDir() {
		return nil, &settings.ConfigError{Key: "steam_cmd", Reason: fmt.Sprintf("download tool not found at %s", cfg.SteamCmd)}
	}
	return &Client{
		tool:      cfg.SteamCmd,
		user:      cfg.SteamUser,
		pass:      cfg.SteamPass,
		serverID:  cfg.ServerID,
		dlcIDs:    cfg.DLCIDs,
		serverDir: cfg.ServerDir,
		appID:     cfg.WorkshopAppID,
	}, nil
}

// FetchMod downloads or refreshes one workshop item.
func (c *Client) FetchMod(ctx context.Context, modID string) error {
	return c.run(ctx,
		"+force_install_dir", c.serverDir,
		"+login", c.user, c.pass,
		"+workshop_download_item", c.appID, modID, "validate",
		"+quit",
	)
}

// UpdateServer updates the server installation and any configured DLC.
func (c *Client) UpdateServer(ctx context.Context) error {
	args := []string{
		"+force_install_dir", c.serverDir,
		"+login", c.user, c.pass,
		"+app_update", c.serverID, "validate",
	}
	for _, dlc := range c.dlcIDs {
		args = append(args, "+app_update", dlc, "validate")
	}
	args = append(args, "+quit")
	return c.run(ctx, args...)
}

// run invokes the tool and streams its combined output into the log.
// Only the exit status matters for the caller.
func (c *Client) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, c.tool, args...)

	lw := &lineWriter{}
	cmd.Stdout = lw
	cmd.Stderr = lw

	if err := cmd.Run(); err != nil {
		lw.flush()
		return fmt.Errorf("running %s: %w", c.tool, err)
	}
	lw.flush()
	return nil
}

// lineWriter forwards subprocess output to the log one line at a time.
type lineWriter struct {
	buf []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		logging.Debugf("steamcmd: %s\n", strings.TrimRight(string(w.buf[:i]), "\r"))
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *lineWriter) flush() {
	if len(w.buf) == 0 {
		return
	}
	logging.Debugf("steamcmd: %s\n", strings.TrimRight(string(w.buf), "\r"))
	w.buf = nil
}
