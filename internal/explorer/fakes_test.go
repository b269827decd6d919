package explorer

import (
	"context"
	"sync"
	"time"

	"dockexplorer/internal/docker"
	"dockexplorer/internal/hub"
	"dockexplorer/internal/secret"
)

type fakeEngine struct {
	images     []docker.ImageDescriptor
	containers []docker.ContainerDescriptor
	err        error

	gotStatuses []string
	events      chan docker.Event
	errs        chan error
}

func (f *fakeEngine) Ping(context.Context) error { return f.err }

func (f *fakeEngine) ListImages(context.Context) ([]docker.ImageDescriptor, error) {
	return f.images, f.err
}

func (f *fakeEngine) ListContainers(_ context.Context, statuses []string) ([]docker.ContainerDescriptor, error) {
	f.gotStatuses = statuses
	return f.containers, f.err
}

func (f *fakeEngine) WatchEvents(context.Context) (<-chan docker.Event, <-chan error) {
	return f.events, f.errs
}

func (f *fakeEngine) Close() error { return nil }

type fakeHub struct {
	mu      sync.Mutex
	repos   []hub.Repository
	pulls   map[string]int64
	tags    map[string][]hub.Tag
	listErr error
	getErr  error
	tagErr  error
	token   string
}

func (f *fakeHub) ListRepositories(_ context.Context, account string) ([]hub.Repository, error) {
	return f.repos, f.listErr
}

func (f *fakeHub) GetRepository(_ context.Context, ns, name string) (*hub.Repository, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &hub.Repository{Namespace: ns, Name: name, PullCount: f.pulls[ns+"/"+name]}, nil
}

func (f *fakeHub) ListTags(_ context.Context, ns, name string) ([]hub.Tag, error) {
	return f.tags[ns+"/"+name], f.tagErr
}

func (f *fakeHub) SetToken(token string) {
	f.mu.Lock()
	f.token = token
	f.mu.Unlock()
}

type fakeRegistries struct {
	keys []string
	err  error
}

func (f *fakeRegistries) Registries() ([]string, error)      { return f.keys, f.err }
func (f *fakeRegistries) CredentialsStore() (string, error) { return "", nil }
func (f *fakeRegistries) Path() string                      { return "/nonexistent/config.json" }

type fakeSecrets struct {
	values map[string]string
	reads  int
	writes int
	err    error
}

func (f *fakeSecrets) ReadSecret(service, account string) (string, error) {
	f.reads++
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.values[service+"/"+account]
	if !ok {
		return "", secret.ErrNotFound
	}
	return v, nil
}

func (f *fakeSecrets) WriteSecret(service, account, value string) error {
	f.writes++
	f.values[service+"/"+account] = value
	return nil
}

// manualClock 手动推进的时钟，替代 time.AfterFunc
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}
