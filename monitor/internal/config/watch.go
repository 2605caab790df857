package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay is how long the file must stay quiet before it is reloaded.
// A plain rewrite arrives as truncate then write, and an empty file would
// otherwise load as valid defaults.
const settleDelay = 150 * time.Millisecond

// Change is one control-surface key that differs between two configs.
type Change struct {
	Key string
	Old string
	New string
	// Restart is set for keys read once at startup; the new value is
	// stored but only applies after the monitor restarts.
	Restart bool
}

// Diff lists the keys that differ from old to next, in config file order.
func Diff(old, next *Config) []Change {
	var out []Change
	add := func(key string, a, b any, restart bool) {
		as, bs := fmt.Sprint(a), fmt.Sprint(b)
		if as != bs {
			out = append(out, Change{Key: key, Old: as, New: bs, Restart: restart})
		}
	}
	add("api.base_url", old.API.BaseURL, next.API.BaseURL, false)
	add("api.request_timeout", old.API.RequestTimeout, next.API.RequestTimeout, false)
	add("refresh.enabled", old.Refresh.Enabled, next.Refresh.Enabled, false)
	add("refresh.interval", old.Refresh.Interval, next.Refresh.Interval, false)
	add("history.window", old.History.Window, next.History.Window, false)
	add("server.http_port", old.Server.HTTPPort, next.Server.HTTPPort, true)
	add("server.snapshot_ttl", old.Server.SnapshotTTL, next.Server.SnapshotTTL, true)
	add("server.broadcast_interval", old.Server.BroadcastInterval, next.Server.BroadcastInterval, true)
	add("limits.submit_rate", old.Limits.SubmitRate, next.Limits.SubmitRate, false)
	add("limits.submit_burst", old.Limits.SubmitBurst, next.Limits.SubmitBurst, false)
	add("export.textfile_path", old.Export.TextfilePath, next.Export.TextfilePath, false)
	add("log.level", old.Log.Level, next.Log.Level, false)
	return out
}

// Watch reloads path once it has settled after a change and publishes the
// result to h. Saves that change nothing are ignored. onChange, if non-nil, runs after h has been
// updated and receives the changed keys. Watch runs until ctx is cancelled;
// a failed reload keeps the current config.
func Watch(ctx context.Context, path string, h *Holder, onChange func(next *Config, changes []Change)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}
	slog.Info("config: watching for changes", "path", path)

	settle := time.NewTimer(settleDelay)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-settle.C:
			reload(path, h, onChange)
			// Re-add in case an atomic save replaced the inode.
			_ = watcher.Add(path)

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Atomic-save editors replace the file, which shows up as Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			settle.Reset(settleDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

func reload(path string, h *Holder, onChange func(*Config, []Change)) {
	next, err := Load(path)
	if err != nil {
		slog.Error("config: reload failed, keeping current settings", "path", path, "err", err)
		return
	}
	changes := Diff(h.Get(), next)
	if len(changes) == 0 {
		return
	}

	h.Set(next)
	for _, c := range changes {
		if c.Restart {
			slog.Warn("config: change applies after restart", "key", c.Key, "old", c.Old, "new", c.New)
			continue
		}
		slog.Info("config: changed", "key", c.Key, "old", c.Old, "new", c.New)
	}
	if onChange != nil {
		onChange(next, changes)
	}
}
