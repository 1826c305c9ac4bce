package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dense-analysis/nexus/internal/config"
	"github.com/dense-analysis/nexus/internal/dashboard"
	"github.com/dense-analysis/nexus/internal/env"
	"github.com/dense-analysis/nexus/internal/feed"
	"github.com/dense-analysis/nexus/internal/market"
	"github.com/dense-analysis/nexus/internal/metrics"
	"github.com/dense-analysis/nexus/internal/mock"
	"github.com/dense-analysis/nexus/internal/model"
	"github.com/dense-analysis/nexus/internal/route/activity"
	marketroute "github.com/dense-analysis/nexus/internal/route/market"
	viewroute "github.com/dense-analysis/nexus/internal/route/view"
	watchlistroute "github.com/dense-analysis/nexus/internal/route/watchlist"
	"github.com/dense-analysis/nexus/internal/session"
	"github.com/dense-analysis/nexus/internal/store"
	"github.com/dense-analysis/nexus/internal/watchlist"
	"github.com/dense-analysis/nexus/pkg/lax"
	"github.com/gorilla/mux"
)

// marketFetcher reads stored snapshots when ClickHouse is configured, and
// the mock coins otherwise.
func marketFetcher(stores *store.Stores, generator *mock.Generator) market.Fetcher {
	coins := market.FetcherFunc(func(ctx context.Context) ([]model.Asset, error) {
		return generator.Coins(), nil
	})

	if stores.Market == nil {
		return coins
	}

	return market.WithFallback(market.FetcherFunc(stores.Market.Latest), coins)
}

func newRouter(service *dashboard.Service, assets dashboard.MarketSource, items dashboard.WatchlistSource, blocks *feed.Feed) *mux.Router {
	router := mux.NewRouter().StrictSlash(true)

	router.HandleFunc("/api/market", lax.Wrap(marketroute.View(assets))).Methods("GET")
	router.HandleFunc("/api/watchlist", lax.Wrap(watchlistroute.ListView(items))).Methods("GET", "POST")
	router.HandleFunc("/api/watchlist/{id}", lax.Wrap(watchlistroute.ItemView(items))).Methods("DELETE")

	router.HandleFunc("/api/view", lax.Wrap(viewroute.ActiveView(service))).Methods("GET")
	router.HandleFunc("/api/view/search", lax.Wrap(viewroute.SearchView())).Methods("POST")
	router.HandleFunc("/api/view/sort", lax.Wrap(viewroute.SortView())).Methods("POST")
	router.HandleFunc("/api/view/select", lax.Wrap(viewroute.SelectView())).Methods("POST")
	router.HandleFunc("/api/view/tab", lax.Wrap(viewroute.SwitchTabView())).Methods("POST")
	router.HandleFunc("/api/view/activity", lax.Wrap(viewroute.ActivityFilterView())).Methods("POST")
	router.HandleFunc("/api/view/trending", lax.Wrap(viewroute.TrendingSortView())).Methods("POST")
	router.HandleFunc("/api/view/settings", lax.Wrap(viewroute.SettingsView())).Methods("POST")
	router.HandleFunc("/api/view/{tab}", lax.Wrap(viewroute.TabView(service))).Methods("GET")

	router.HandleFunc("/api/activity/blocks", lax.Wrap(activity.BlocksView(blocks))).Methods("GET")
	router.HandleFunc("/api/activity/stream", activity.HandleStream(blocks)).Methods("GET")

	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	return router
}

func main() {
	configPath := flag.String("config", "nexus.yaml", "path to the YAML config file")
	flag.Parse()

	env.LoadEnvironmentVariables()

	cfg, err := config.Load(*configPath)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %s\n", err)
		os.Exit(1)
	}

	session.InitSessionStorage(cfg.Server.SecretKey)

	if cfg.Server.Debug {
		lax.EnableDebugMode()
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	stores, err := store.Open(ctx, cfg)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Storage error: %s\n", err)
		os.Exit(1)
	}

	defer func() {
		_ = stores.Close()
	}()

	generator := mock.NewGenerator(cfg.Mock.Seed)
	blocks := feed.New(generator, cfg.Feed.Capacity)
	assets := market.NewProvider(marketFetcher(stores, generator), cfg.API.MarketWindow)
	items := watchlist.NewClient(stores.Watchlist, cfg.API.WatchlistWindow)
	service := dashboard.NewService(assets, items, generator, blocks)

	go blocks.Run(ctx, cfg.Feed.Interval)

	server := http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newRouter(service, assets, items, blocks),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %s \n", err)
		}
	}()

	log.Printf("Server started on %s with %s storage\n", cfg.Server.Addr, cfg.Storage.Driver)
	<-done
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shut down failed: %+v", err)
	}

	log.Println("Server shut down successfully")
}
