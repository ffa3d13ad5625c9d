package command

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"smartsettings/settings"
	"smartsettings/util/input"
	"smartsettings/util/network"
	"smartsettings/util/tw"

	"github.com/alitto/pond"
	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/utahta/go-openuri"
)

var (
	// ErrNotContainer is returned if settings file holds a plain value instead of settings
	ErrNotContainer = errors.New("not a settings container")

	// ErrNoBackups is returned on restore of a settings file without backups
	ErrNoBackups = errors.New("no backups found")
)

// Show prints settings file <path> decrypted with <key> in <format>, or in the file format if <format> is empty
func (r repo) Show(path, key, format string) error {
	v, err := r.load(path, key)
	if err != nil {
		return err
	}

	c := r.store.CodecFor(path)
	if format != "" {
		if c, err = r.store.CodecByName(format); err != nil {
			return err
		}
	}
	text, err := c.Encode(v, r.Cfg().Persist.CodecOptions)
	if err != nil {
		return errors.Wrap(err, "Encode settings")
	}
	fmt.Fprintln(r.out, text)
	return nil
}

// Merge merges settings from <source> file or URL decrypted with <sourceKey> into settings file <target> decrypted
// and encrypted with <key>.
//
// If <target> does not exist, it is created.
func (r repo) Merge(target, source, key, sourceKey string) error {
	log := r.Log().WithField("target", target).WithField("source", source)

	targetVal, err := r.store.LoadFromFile(target, key, settings.NodeValue(settings.New()), nil)
	if err != nil {
		return err
	}
	targetContainer, ok := targetVal.Container()
	if !ok {
		return errors.Wrapf(ErrNotContainer, "Merge into %v", target)
	}

	sourceVal, err := r.fetch(source, sourceKey)
	if err != nil {
		return err
	}
	sourceContainer, ok := sourceVal.Container()
	if !ok {
		return errors.Wrapf(ErrNotContainer, "Merge from %v", source)
	}

	log.Info("Merging settings")
	if _, err := settings.Merge(targetContainer, sourceContainer); err != nil {
		return err
	}
	return r.store.SaveToFile(targetVal, target, key, r.Cfg().Persist.BackupCount, nil)
}

// Convert writes settings file <in> decrypted with <key> to <out> encrypted with <outKey>.
//
// Format of <out> is chosen by its extension.
func (r repo) Convert(in, out, key, outKey string) error {
	v, err := r.load(in, key)
	if err != nil {
		return err
	}
	r.Log().WithField("in", in).WithField("out", out).Info("Converting settings")
	return r.store.SaveToFile(v, out, outKey, r.Cfg().Persist.BackupCount, nil)
}

// Diff prints differences between settings files <a> and <b> decrypted with <key>.
//
// Returns true if settings are equal.
func (r repo) Diff(a, b, key string) (bool, error) {
	aVal, err := r.load(a, key)
	if err != nil {
		return false, err
	}
	bVal, err := r.load(b, key)
	if err != nil {
		return false, err
	}

	if aVal.Equal(bVal) {
		fmt.Fprintln(r.out, "Settings are equal")
		return true, nil
	}
	fmt.Fprintf(r.out, "--- %v\n+++ %v\n%v", a, b, cmp.Diff(aVal.Interface(), bVal.Interface()))
	return false, nil
}

// Backups prints table of backups of settings file <path>
func (r repo) Backups(path string) error {
	backups, err := r.store.Backups(path)
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		fmt.Fprintf(r.out, "No backups of %v\n", path)
		return nil
	}

	w := tw.New(r.out)
	w.AppendHeader(table.Row{"#", "Backup", "Created", "Size"})
	for i, backup := range backups {
		info, err := os.Stat(backup)
		if err != nil {
			return errors.Wrap(err, "Get backup file info")
		}
		w.AppendRow(table.Row{i + 1, filepath.Base(backup), info.ModTime().Format(time.DateTime), info.Size()})
	}
	w.Render()
	return nil
}

// Restore replaces settings file <path> with <backup>, or with the newest backup if <backup> is empty.
//
// If <yes> is false, asks user for confirmation first.
func (r repo) Restore(path, backup string, yes bool) error {
	if backup == "" {
		backups, err := r.store.Backups(path)
		if err != nil {
			return err
		}
		if len(backups) == 0 {
			return errors.Wrapf(ErrNoBackups, "Restore %v", path)
		}
		backup = backups[len(backups)-1]
	}

	prompt := fmt.Sprintf("Replace %v with %v? [y/n]: ", path, filepath.Base(backup))
	if !yes && !input.AskYesNo(r.Log(), r.in, r.out, prompt) {
		r.Log().WithField("path", path).Info("Restore cancelled")
		return nil
	}
	return r.store.Restore(path, backup)
}

// checkResult represents result of reading one settings file
type checkResult struct {
	path string
	kind string
	err  error
}

// Check reads settings files <paths> decrypted with <key> concurrently and prints table of results.
//
// Returns amount of files which can not be read.
func (r repo) Check(paths []string, key string) int {
	results := make([]checkResult, len(paths))

	pool := pond.New(r.Cfg().Check.MaxWorkers, 0, pond.MinWorkers(0))
	for idx, path := range paths {
		idx, path := idx, path
		pool.Submit(func() {
			r.Log().WithField("path", path).Debug("Checking settings file")
			v, err := r.load(path, key)
			results[idx] = checkResult{path: path, kind: kindOf(v), err: err}
		})
	}
	pool.StopAndWait()

	w := tw.New(r.out)
	w.AppendHeader(table.Row{"File", "Kind", "Result"})
	for _, res := range results {
		if res.err != nil {
			w.AppendRow(table.Row{res.path, "", color.RedString("✗ %v", res.err)})
		} else {
			w.AppendRow(table.Row{res.path, res.kind, color.GreenString("✓ OK")})
		}
	}
	w.Render()

	return lo.CountBy(results, func(res checkResult) bool {
		return res.err != nil
	})
}

// load returns settings read from existing file <path> decrypted with <key>
func (r repo) load(path, key string) (settings.Value, error) {
	info, err := os.Stat(path)
	if err != nil {
		return settings.NullValue(), errors.Wrapf(err, "Load %v", path)
	}
	if !info.Mode().IsRegular() {
		return settings.NullValue(), errors.Newf("Load %v: not a regular file", path)
	}
	return r.store.LoadFromFile(path, key, settings.NullValue(), nil)
}

// fetch returns settings read from local file or URL <source> decrypted with <key>
func (r repo) fetch(source, key string) (settings.Value, error) {
	client := network.NewHttpClient(r.Cfg().Merge.SourceTimeout)
	resp, err := openuri.Open(source, openuri.WithHTTPClient(client))
	if err != nil {
		return settings.NullValue(), errors.Wrapf(network.Describe(err), "Open %v", source)
	}
	defer resp.Close()

	content, err := io.ReadAll(resp)
	if err != nil {
		return settings.NullValue(), errors.Wrapf(err, "Read %v", source)
	}
	return r.store.LoadFromNamed(sourceName(source), string(content), key, nil)
}

// sourceName returns path part of URL <source> or <source> itself if it is not a URL
func sourceName(source string) string {
	u, err := url.Parse(source)
	if err != nil || !lo.Contains([]string{"http", "https"}, strings.ToLower(u.Scheme)) {
		return source
	}
	return u.Path
}

// kindOf returns container kind of <v> or name of its value kind
func kindOf(v settings.Value) string {
	if c, ok := v.Container(); ok {
		return c.Kind()
	}
	return v.Kind().String()
}
