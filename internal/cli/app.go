package cli

import (
	"github.com/existflow/zebra/internal/api"
	"github.com/existflow/zebra/internal/auth"
	"github.com/existflow/zebra/internal/config"
	"github.com/existflow/zebra/internal/localstore"
	"github.com/existflow/zebra/internal/pending"
	syncer "github.com/existflow/zebra/internal/sync"
	"github.com/existflow/zebra/internal/tracker"
)

// App wires the client components together. Commands build one App per
// invocation and tear it down when done; nothing lives at package level.
type App struct {
	Config  *config.Config
	Store   *localstore.Store
	Creds   *auth.Store
	Client  *api.Client
	Queue   *pending.Queue
	Tracker *tracker.Tracker
	Engine  *syncer.Engine
}

func newApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	store := localstore.OpenDefault()
	creds := auth.New(store, auth.DefaultCookiePath())
	client := api.NewClient(cfg.ServerURL, creds)
	queue := pending.Load(store)

	return &App{
		Config:  cfg,
		Store:   store,
		Creds:   creds,
		Client:  client,
		Queue:   queue,
		Tracker: tracker.New(store, client, queue, creds),
		Engine:  syncer.NewEngine(client, store, queue, creds),
	}, nil
}

// Close stops background work and releases the local store
func (a *App) Close() {
	a.Engine.Stop()
	_ = a.Store.Close()
}
