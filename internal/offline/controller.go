package offline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"
	"sync"
)

var (
	ErrOffline       = errors.New("network unavailable and no cached response")
	ErrInstallFailed = errors.New("shell install failed")
	ErrNotInstalled  = errors.New("shell not installed")
)

// ShellAssets is the app shell stored at install time.
var ShellAssets = []string{
	"/",
	"/index.html",
	"/demo.html",
	"/tracker.js",
	"/manifest.json",
	"/icon-192.png",
	"/icon-512.png",
}

// criticalFiles are always fetched network-first so auth-sensitive UI and app
// logic never go stale once the origin is reachable.
var criticalFiles = []string{"index.html", "tracker.js"}

const rootKey = "/"

type State int

const (
	StateInstalling State = iota
	StateInstalled
	StateActive
)

func (state State) String() string {
	switch state {
	case StateInstalled:
		return "installed"
	case StateActive:
		return "active"
	default:
		return "installing"
	}
}

// Request is the subset of an intercepted request the cache policy looks at.
type Request struct {
	Method   string
	Path     string
	Navigate bool
}

// Key identifies the cached copy of a request.
func (request Request) Key() string {
	return request.Path
}

func (request Request) isGet() bool {
	return request.Method == "" || strings.EqualFold(request.Method, "GET")
}

func (request Request) networkFirst() bool {
	if request.Navigate {
		return true
	}
	clean := request.Path
	if index := strings.IndexAny(clean, "?#"); index >= 0 {
		clean = clean[:index]
	}
	base := path.Base(clean)
	for _, name := range criticalFiles {
		if base == name {
			return true
		}
	}
	return false
}

type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

func (response Response) clone() Response {
	response.Body = append([]byte(nil), response.Body...)
	return response
}

// Network performs a request against the asset origin. An error means the
// origin could not be reached; HTTP error statuses are valid responses.
type Network interface {
	Fetch(ctx context.Context, request Request) (Response, error)
}

// Store holds cached responses grouped into generations. Generations lists
// them oldest first by last write.
type Store interface {
	Match(ctx context.Context, generation string, key string) (Response, bool, error)
	Put(ctx context.Context, generation string, key string, response Response) error
	PutAll(ctx context.Context, generation string, responses map[string]Response) error
	Generations(ctx context.Context) ([]string, error)
	DeleteGeneration(ctx context.Context, generation string) error
}

// Controller applies the shell caching policy: install a versioned generation,
// evict older ones on activation, then answer fetches network-first or
// cache-first depending on the request.
type Controller struct {
	version string
	store   Store
	network Network
	logger  *log.Logger

	mu             sync.RWMutex
	state          State
	active         string
	skipWaiting    bool
	clientsClaimed bool

	writes sync.WaitGroup
}

func NewController(version string, store Store, network Network, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		version: version,
		store:   store,
		network: network,
		logger:  logger,
	}
}

func (controller *Controller) Version() string {
	return controller.version
}

func (controller *Controller) State() State {
	controller.mu.RLock()
	defer controller.mu.RUnlock()
	return controller.state
}

// SkippedWaiting reports whether install finished and asked to activate
// without waiting for older clients to close.
func (controller *Controller) SkippedWaiting() bool {
	controller.mu.RLock()
	defer controller.mu.RUnlock()
	return controller.skipWaiting
}

func (controller *Controller) ClientsClaimed() bool {
	controller.mu.RLock()
	defer controller.mu.RUnlock()
	return controller.clientsClaimed
}

// Install fetches every shell asset and stores them as one generation. Any
// unreachable asset or non-200 answer aborts install and stores nothing.
func (controller *Controller) Install(ctx context.Context) error {
	controller.mu.Lock()
	controller.state = StateInstalling
	controller.skipWaiting = false
	controller.mu.Unlock()

	responses := make(map[string]Response, len(ShellAssets))
	for _, asset := range ShellAssets {
		response, err := controller.network.Fetch(ctx, Request{Method: "GET", Path: asset})
		if err != nil {
			return fmt.Errorf("%w: fetch %s: %v", ErrInstallFailed, asset, err)
		}
		if response.Status != 200 {
			return fmt.Errorf("%w: fetch %s: status %d", ErrInstallFailed, asset, response.Status)
		}
		responses[asset] = response.clone()
	}

	if err := controller.store.PutAll(ctx, controller.version, responses); err != nil {
		return fmt.Errorf("%w: store generation %s: %v", ErrInstallFailed, controller.version, err)
	}

	controller.mu.Lock()
	controller.state = StateInstalled
	controller.skipWaiting = true
	controller.mu.Unlock()
	return nil
}

// Activate deletes every generation other than the current version and takes
// control of open clients.
func (controller *Controller) Activate(ctx context.Context) error {
	if controller.State() == StateInstalling {
		return ErrNotInstalled
	}

	generations, err := controller.store.Generations(ctx)
	if err != nil {
		return fmt.Errorf("list cache generations: %w", err)
	}
	for _, generation := range generations {
		if generation == controller.version {
			continue
		}
		if err := controller.store.DeleteGeneration(ctx, generation); err != nil {
			return fmt.Errorf("delete cache generation %s: %w", generation, err)
		}
		controller.logger.Printf("offline: evicted cache generation %s", generation)
	}

	controller.mu.Lock()
	controller.state = StateActive
	controller.active = controller.version
	controller.clientsClaimed = true
	controller.mu.Unlock()
	return nil
}

// HandleFetch answers one intercepted request.
func (controller *Controller) HandleFetch(ctx context.Context, request Request) (Response, error) {
	if request.networkFirst() {
		return controller.networkFirst(ctx, request)
	}
	return controller.cacheFirst(ctx, request)
}

// Settle blocks until background cache writes have finished.
func (controller *Controller) Settle() {
	controller.writes.Wait()
}

func (controller *Controller) networkFirst(ctx context.Context, request Request) (Response, error) {
	response, err := controller.network.Fetch(ctx, request)
	if err == nil {
		if request.isGet() && response.Status == 200 {
			controller.storeInBackground(ctx, request.Key(), response.clone())
		}
		return response, nil
	}

	if cached, found := controller.match(ctx, request.Key()); found {
		return cached, nil
	}
	if cached, found := controller.match(ctx, rootKey); found {
		return cached, nil
	}
	return Response{}, fmt.Errorf("%w: %s: %v", ErrOffline, request.Path, err)
}

func (controller *Controller) cacheFirst(ctx context.Context, request Request) (Response, error) {
	if request.isGet() {
		if cached, found := controller.match(ctx, request.Key()); found {
			return cached, nil
		}
	}

	response, err := controller.network.Fetch(ctx, request)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %s: %v", ErrOffline, request.Path, err)
	}
	if request.isGet() && response.Status == 200 {
		controller.storeInBackground(ctx, request.Key(), response.clone())
	}
	return response, nil
}

// Generation is the cache generation fetches are answered from. Until this
// version activates, that is the most recently written generation left by an
// earlier one, so a failed upgrade keeps serving the previous shell.
func (controller *Controller) Generation(ctx context.Context) (string, bool) {
	controller.mu.RLock()
	active := controller.active
	controller.mu.RUnlock()
	if active != "" {
		return active, true
	}

	generations, err := controller.store.Generations(ctx)
	if err != nil {
		controller.logger.Printf("offline: list cache generations: %v", err)
		return "", false
	}
	if len(generations) == 0 {
		return "", false
	}
	return generations[len(generations)-1], true
}

func (controller *Controller) match(ctx context.Context, key string) (Response, bool) {
	generation, ok := controller.Generation(ctx)
	if !ok {
		return Response{}, false
	}
	cached, found, err := controller.store.Match(ctx, generation, key)
	if err != nil {
		controller.logger.Printf("offline: match %s: %v", key, err)
		return Response{}, false
	}
	return cached, found
}

func (controller *Controller) storeInBackground(ctx context.Context, key string, response Response) {
	ctx = context.WithoutCancel(ctx)
	controller.writes.Add(1)
	go func() {
		defer controller.writes.Done()
		generation, ok := controller.Generation(ctx)
		if !ok {
			return
		}
		if err := controller.store.Put(ctx, generation, key, response); err != nil {
			controller.logger.Printf("offline: cache %s: %v", key, err)
		}
	}()
}
