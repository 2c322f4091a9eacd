package main

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mholloway/medley/internal/coord"
	"github.com/mholloway/medley/internal/favorites"
	"github.com/mholloway/medley/internal/feedstore"
	"github.com/mholloway/medley/internal/logging"
	"github.com/mholloway/medley/internal/persist"
	"github.com/mholloway/medley/internal/prefs"
	"github.com/mholloway/medley/internal/sources"
	"github.com/mholloway/medley/internal/ui"
)

const fetchTimeout = 30 * time.Second

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := logging.Init(); err != nil {
		log.Printf("Warning: logging disabled: %v", err)
	}
	defer logging.Close()

	// Data directory: ~/.medley/
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}
	dataDir := filepath.Join(homeDir, ".medley")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	preferences, err := prefs.Load()
	if err != nil {
		log.Fatalf("Failed to load preferences: %v", err)
	}

	db, err := persist.Open(filepath.Join(dataDir, "medley.db"))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Restore durable state before anything fetches.
	store := feedstore.New()
	if snap, err := db.LoadSnapshot(); err != nil {
		logging.Warn("Failed to load feed snapshot", "error", err)
	} else {
		store.Restore(snap)
	}

	favs := favorites.NewSet()
	if saved, err := db.LoadFavorites(); err != nil {
		logging.Warn("Failed to load favorites", "error", err)
	} else {
		favs.Replace(saved)
	}

	// Only the categories the user selected get an adapter.
	all := []sources.Adapter{
		sources.NewNews("RSS News",
			envOrDefault("MEDLEY_NEWS_FEED", "https://feeds.bbci.co.uk/news/rss.xml"),
			"general", fetchTimeout),
		sources.NewMovies(
			envOrDefault("MEDLEY_MOVIES_URL", "https://api.themoviedb.org/3"),
			os.Getenv("MEDLEY_MOVIES_KEY"), fetchTimeout),
		sources.NewMusic(
			envOrDefault("MEDLEY_MUSIC_URL", "https://api.spotify.com/v1/browse"),
			os.Getenv("MEDLEY_MUSIC_TOKEN"), fetchTimeout),
		sources.NewSocial(
			envOrDefault("MEDLEY_SOCIAL_URL", "https://mastodon.social/api/v1"),
			fetchTimeout),
	}
	var adapters []sources.Adapter
	for _, a := range all {
		if preferences.Enabled(a.Type()) {
			adapters = append(adapters, a)
		}
	}

	coordinator := coord.New(store, adapters)

	saveState := func() tea.Cmd {
		return func() tea.Msg {
			if err := db.SaveSnapshot(store.Snapshot()); err != nil {
				logging.Error("Failed to save feed snapshot", "error", err)
			}
			if err := db.SaveFavorites(favs.Items()); err != nil {
				logging.Error("Failed to save favorites", "error", err)
			}
			return nil
		}
	}

	app := ui.NewApp(store, favs, ui.Commands{
		LoadInitial: func() tea.Cmd {
			return func() tea.Msg {
				coordinator.LoadInitial(ctx, nil)
				return ui.InitialLoadDone{Err: storeErr(store)}
			}
		},
		LoadMore: func() tea.Cmd {
			return func() tea.Msg {
				if err := coordinator.LoadMore(ctx, nil); errors.Is(err, coord.ErrCooldown) {
					return ui.LoadMoreDone{Rejected: true}
				}
				return ui.LoadMoreDone{Err: storeErr(store)}
			}
		},
		EnsureTrending: func() tea.Cmd {
			return func() tea.Msg {
				coordinator.EnsureTrending(ctx, nil)
				if msg := store.TrendingErr(); msg != "" {
					return ui.TrendingLoaded{Err: errors.New(msg)}
				}
				return ui.TrendingLoaded{Count: len(store.Trending())}
			}
		},
		SaveState: saveState,
	})

	program := tea.NewProgram(app, tea.WithAltScreen())

	// Hot-reload preferences while the UI runs.
	go func() {
		err := prefs.Watch(ctx, prefs.Path(), func(p *prefs.Preferences) {
			program.Send(ui.RefreshTick{})
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Warn("Preferences watcher stopped", "error", err)
		}
	}()

	if _, err := program.Run(); err != nil {
		log.Printf("Error running program: %v", err)
	}

	// Final save on the way out.
	if err := db.SaveSnapshot(store.Snapshot()); err != nil {
		logging.Error("Failed to save feed snapshot", "error", err)
	}
	if err := db.SaveFavorites(favs.Items()); err != nil {
		logging.Error("Failed to save favorites", "error", err)
	}
}

func storeErr(store *feedstore.Store) error {
	if msg := store.Err(); msg != "" {
		return errors.New(msg)
	}
	return nil
}
