package game

import "sync"

// RemoteFeed shares remote content that arrives after startup with every
// engine created through it. Engines dealt before the content arrives are
// re-dealt with it.
type RemoteFeed struct {
	mu      sync.Mutex
	items   []RemoteItem
	engines map[*Engine]struct{}
}

// NewRemoteFeed creates an empty feed.
func NewRemoteFeed() *RemoteFeed {
	return &RemoteFeed{engines: make(map[*Engine]struct{})}
}

// NewEngine creates an engine from cfg with the content received so far.
func (f *RemoteFeed) NewEngine(cfg EngineConfig) *Engine {
	f.mu.Lock()
	defer f.mu.Unlock()

	for e := range f.engines {
		if e.Closed() {
			delete(f.engines, e)
		}
	}

	cfg.Remote = f.items
	e := NewEngine(cfg)
	f.engines[e] = struct{}{}
	return e
}

// Items returns the content received so far.
func (f *RemoteFeed) Items() []RemoteItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items
}

// Set installs content and re-deals every open engine. Empty content is
// ignored so a failed fetch leaves running games alone.
func (f *RemoteFeed) Set(items []RemoteItem) {
	if len(items) == 0 {
		return
	}

	f.mu.Lock()
	f.items = items
	var live []*Engine
	for e := range f.engines {
		if e.Closed() {
			delete(f.engines, e)
			continue
		}
		live = append(live, e)
	}
	f.mu.Unlock()

	for _, e := range live {
		e.SetRemote(items)
	}
}
