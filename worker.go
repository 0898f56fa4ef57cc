package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pavelpuchok/releasecourier/feed"
	"github.com/pavelpuchok/releasecourier/mail"
	"github.com/pavelpuchok/releasecourier/storage"
)

type Store interface {
	LastNotified(ctx context.Context, feed string) (string, error)
	SetLastNotified(ctx context.Context, feed string, id string) error
}

type Fetcher interface {
	Fetch(context.Context) ([]feed.Item, error)
}

type Sender interface {
	Send(context.Context, mail.Message) error
}

type Renderer interface {
	Render(feedName string, it feed.Item, content string) (string, error)
}

type Extractor interface {
	Extract(link string) (string, error)
}

// Feed bundles everything needed to process one configured source.
type Feed struct {
	Name           string
	SubjectPrefix  string
	ExtractContent bool
	Fetcher        Fetcher
	Template       Renderer
}

type Job struct {
	Feed Feed
}

// Worker runs the per-feed pipeline: marker lookup, fetch, novelty cut,
// render, send, marker advance. Feeds are processed strictly sequentially.
type Worker struct {
	Queue      <-chan Job
	Store      Store
	Sender     Sender
	Extractor  Extractor
	Recipients []string
	MaxBacklog int
}

// Process consumes jobs until the context is cancelled. Daemon mode only;
// the single-run path calls RunOnce directly.
func (w *Worker) Process(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-w.Queue:
			if err := w.processFeed(ctx, job.Feed); err != nil {
				slog.Error("Failed job processing",
					slog.String("feed", job.Feed.Name),
					slog.String("error", err.Error()))
			}
		}
	}
}

// RunOnce processes every feed once. A feed's failure is logged and never
// aborts the remaining feeds; the returned count is informational.
func (w *Worker) RunOnce(ctx context.Context, feeds []Feed) int {
	sent := 0
	for _, f := range feeds {
		n, err := w.runFeed(ctx, f)
		sent += n
		if err != nil {
			slog.Error("Failed feed processing",
				slog.String("feed", f.Name),
				slog.String("error", err.Error()))
		}
	}
	return sent
}

func (w *Worker) processFeed(ctx context.Context, f Feed) error {
	_, err := w.runFeed(ctx, f)
	return err
}

// runFeed sends notifications for f's novel entries, oldest first, advancing
// the marker after each confirmed send. It stops at the first failed entry
// so the marker always names the last entry that was actually delivered;
// the rest are retried on the next run.
func (w *Worker) runFeed(ctx context.Context, f Feed) (int, error) {
	last, err := w.Store.LastNotified(ctx, f.Name)
	if err != nil {
		if !errors.Is(err, storage.ErrFeedNotFound) {
			return 0, fmt.Errorf("fail to read notification state. %w", err)
		}
		last = ""
	}

	items, err := f.Fetcher.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("fail to fetch feed. %w", err)
	}
	if len(items) == 0 {
		slog.Info("Feed has no entries", slog.String("feed", f.Name))
		return 0, nil
	}

	novel := feed.Since(items, last, w.MaxBacklog)
	if len(novel) == 0 {
		slog.Info("No new entries", slog.String("feed", f.Name))
		return 0, nil
	}

	sent := 0
	for i := len(novel) - 1; i >= 0; i-- {
		it := novel[i]

		if err := w.notify(ctx, f, it); err != nil {
			return sent, fmt.Errorf("failed to notify entry. Link: %s. %w", it.Link, err)
		}

		if err := w.Store.SetLastNotified(ctx, f.Name, it.ID); err != nil {
			return sent, fmt.Errorf("fail to update notification state. %w", err)
		}
		sent++

		slog.Info("Notification sent",
			slog.String("feed", f.Name),
			slog.String("title", it.Title),
			slog.String("id", it.ID))
	}

	return sent, nil
}

func (w *Worker) notify(ctx context.Context, f Feed, it feed.Item) error {
	content := ""
	if f.ExtractContent && w.Extractor != nil {
		c, err := w.Extractor.Extract(it.Link)
		if err != nil {
			slog.Warn("Content extraction failed, using feed summary",
				slog.String("feed", f.Name),
				slog.String("link", it.Link),
				slog.String("error", err.Error()))
		} else {
			content = c
		}
	}

	body, err := f.Template.Render(f.Name, it, content)
	if err != nil {
		return fmt.Errorf("fail to render notification. %w", err)
	}

	msg := mail.Message{
		To:       w.Recipients,
		Subject:  subject(f.SubjectPrefix, it.Title),
		HTMLBody: body,
	}

	if err := w.Sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("fail to send notification. %w", err)
	}

	return nil
}

func subject(prefix, title string) string {
	if prefix == "" {
		return title
	}
	return prefix + " " + title
}
