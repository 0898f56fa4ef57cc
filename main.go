package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"sort"

	"github.com/pavelpuchok/releasecourier/config"
	"github.com/pavelpuchok/releasecourier/content"
	"github.com/pavelpuchok/releasecourier/feed"
	"github.com/pavelpuchok/releasecourier/mail"
	"github.com/pavelpuchok/releasecourier/planner"
	"github.com/pavelpuchok/releasecourier/render"
	"github.com/pavelpuchok/releasecourier/storage"
)

func main() {
	ctx := context.Background()

	cfgPath := flag.String("config", os.Getenv("RC_CONFIG_PATH"), "path to config file")
	daemon := flag.Bool("daemon", false, "keep running and poll feeds on their intervals")
	flag.Parse()

	if *cfgPath == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*cfgPath, config.EnvVarProvider{LookupEnv: os.LookupEnv})
	if err != nil {
		slog.Error("Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store, err := newStore(ctx, cfg)
	if err != nil {
		panic(err)
	}

	feeds, err := buildFeeds(cfg)
	if err != nil {
		panic(err)
	}

	w := &Worker{
		Store:      store,
		Sender:     mail.NewSMTP(cfg.Mail),
		Extractor:  content.NewExtractor(),
		Recipients: cfg.Mail.Recipients,
		MaxBacklog: *cfg.MaxBacklog,
	}

	if !*daemon {
		sent := w.RunOnce(ctx, feeds)
		slog.Info("Run finished", slog.Int("sent", sent))
		return
	}

	queue := make(chan Job)
	w.Queue = queue

	p := &planner.InMemoryPlanner{}
	for _, f := range feeds {
		p.AddJob(ctx, cfg.Feeds[f.Name].UpdateInterval, enqueue(f, queue))
	}

	go w.Process(ctx)

	select {}
}

func enqueue(f Feed, queue chan Job) func() {
	return func() {
		queue <- Job{Feed: f}
	}
}

func newStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Storage.Backend {
	case "psql":
		s, err := storage.NewPostgreSQL(ctx, cfg.Storage.PSQL)
		if err != nil {
			return nil, err
		}
		for name := range cfg.Feeds {
			err := s.CreateFeed(ctx, name)
			if err != nil {
				if errors.Is(err, storage.ErrFeedAlreadyExists) {
					slog.Debug("Feed already registered", slog.String("feed", name))
					continue
				}
				return nil, err
			}
			slog.Info("New feed registered", slog.String("feed", name))
		}
		return s, nil
	default:
		return storage.NewFileStorage(cfg.Storage.File)
	}
}

func buildFeeds(cfg *config.Config) ([]Feed, error) {
	names := make([]string, 0, len(cfg.Feeds))
	for name := range cfg.Feeds {
		names = append(names, name)
	}
	sort.Strings(names)

	feeds := make([]Feed, 0, len(names))
	for _, name := range names {
		fc := cfg.Feeds[name]

		tmpl := render.Default()
		if fc.Template != "" {
			t, err := render.LoadFile(fc.Template)
			if err != nil {
				return nil, err
			}
			tmpl = t
		}

		feeds = append(feeds, Feed{
			Name:           name,
			SubjectPrefix:  fc.SubjectPrefix,
			ExtractContent: fc.ExtractContent,
			Fetcher:        feed.NewRSS(fc.FeedURL),
			Template:       tmpl,
		})
	}

	return feeds, nil
}
