// Copyright © 2020 The Pea Authors under an MIT-style license.

package main

import (
	"context"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/eaburns/unconst/mod"
	"github.com/eaburns/unconst/rewrite"
)

type cmdWatch struct {
	gs   *globalState
	once bool
	// ready, if non-nil, is closed once the watches are added.
	ready chan struct{}
}

func (c *cmdWatch) run(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}
	return c.watch(cmd.Context(), args)
}

// watch rewrites the templates under dirs until ctx is done.
func (c *cmdWatch) watch(ctx context.Context, dirs []string) error {
	rw := c.gs.rewriter()
	mods, err := mod.LoadAll(c.gs.fs, dirs)
	if err != nil {
		return err
	}
	for _, path := range mod.TemplateFiles(mods) {
		c.template(ctx, rw, path)
	}
	if c.once {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	for _, m := range mods {
		for _, dir := range m.Dirs {
			if err := w.Add(dir); err != nil {
				return err
			}
			c.gs.logger.WithField("dir", dir).Debug("watching")
		}
	}
	if c.ready != nil {
		close(c.ready)
	}
	return c.loop(ctx, w, rw)
}

func (c *cmdWatch) loop(ctx context.Context, w *fsnotify.Watcher, rw *rewrite.Rewriter) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, mod.TemplateExt) {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				c.template(ctx, rw, ev.Name)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.gs.logger.WithError(err).Warn("watch failed")
		}
	}
}

// template rewrites a template, logging any failure.
func (c *cmdWatch) template(ctx context.Context, rw *rewrite.Rewriter, path string) {
	if _, err := rw.Template(ctx, path); err != nil {
		c.gs.logger.WithField("path", path).Error(err)
	}
}

func getCmdWatch(gs *globalState) *cobra.Command {
	c := &cmdWatch{gs: gs}
	cmd := &cobra.Command{
		Use:   "watch [dir...]",
		Short: "Rewrite template files as they change",
		Long: `Rewrite each .rs.in template file under the directories
into the .rs file beside it, then rewrite templates again
whenever they are written, until interrupted.`,
		RunE: c.run,
	}
	cmd.Flags().BoolVar(&c.once, "once", false, "rewrite the templates once and exit")
	return cmd
}
