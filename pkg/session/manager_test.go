package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thelegendaryrichman/nova/pkg/dispatch"
	"github.com/thelegendaryrichman/nova/pkg/environment"
	"github.com/thelegendaryrichman/nova/pkg/llm"
	"github.com/thelegendaryrichman/nova/pkg/types"
)

// fakeDispatcher records calls and answers from a func.
type fakeDispatcher struct {
	mu    sync.Mutex
	calls []call
	fn    func(prompt string, mode types.Mode) (*dispatch.Result, error)
}

type call struct {
	Prompt string
	Mode   types.Mode
	Coords *types.Coordinates
}

func (f *fakeDispatcher) Dispatch(_ context.Context, prompt string, mode types.Mode, coords *types.Coordinates) (*dispatch.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{prompt, mode, coords})
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(prompt, mode)
	}
	return &dispatch.Result{Text: "ok"}, nil
}

func (f *fakeDispatcher) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func newManager(t *testing.T) (*Manager, *environment.State, *fakeDispatcher) {
	t.Helper()
	env := environment.NewState(true)
	d := &fakeDispatcher{}
	return NewManager(env, d), env, d
}

func assertOneActive(t *testing.T, m *Manager) {
	t.Helper()
	found := 0
	for _, tab := range m.Tabs() {
		if tab.ID == m.ActiveID() {
			found++
		}
	}
	assert.Equal(t, 1, found)
}

func TestNewManager(t *testing.T) {
	m, _, _ := newManager(t)

	require.Equal(t, 1, m.Len())
	tab := m.ActiveTab()
	assert.Equal(t, types.DefaultTabTitle, tab.Title)
	assert.Equal(t, types.ModeFast, tab.Mode)
	assert.True(t, tab.IsFresh())
	assert.Equal(t, 0, m.ActiveIndex())
}

func TestNewManager_InitialQuery(t *testing.T) {
	m := NewManager(nil, &fakeDispatcher{}, WithInitialQuery("go.dev"))
	assert.Equal(t, "go.dev", m.ActiveTab().URL)
	assert.True(t, m.Environment().Online())
}

func TestCreateTab_ActivatesNewTab(t *testing.T) {
	m, _, _ := newManager(t)
	first := m.ActiveID()

	created := m.CreateTab("")
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, created.ID, m.ActiveID())
	assert.NotEqual(t, first, created.ID)
	assert.Equal(t, types.ModeFast, created.Mode)
	assertOneActive(t, m)

	withQuery := m.CreateTab("example.com")
	assert.Equal(t, "example.com", withQuery.URL)
	assert.Equal(t, withQuery.ID, m.ActiveID())
}

func TestCloseTab_NeverBelowOne(t *testing.T) {
	m, _, _ := newManager(t)
	only := m.ActiveID()

	assert.False(t, m.CloseTab(only))
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, only, m.ActiveID())
}

func TestCloseTab_ActiveMovesToLast(t *testing.T) {
	m, _, _ := newManager(t)
	a := m.ActiveID()
	b := m.CreateTab("").ID
	c := m.CreateTab("").ID

	require.True(t, m.SelectTab(a))
	require.True(t, m.CloseTab(a))
	assert.Equal(t, c, m.ActiveID())
	assertOneActive(t, m)

	// Closing an inactive tab keeps the pointer.
	require.True(t, m.CloseTab(b))
	assert.Equal(t, c, m.ActiveID())
}

func TestCloseTab_UnknownID(t *testing.T) {
	m, _, _ := newManager(t)
	m.CreateTab("")
	assert.False(t, m.CloseTab("nope"))
	assert.Equal(t, 2, m.Len())
}

func TestSelectTab(t *testing.T) {
	m, _, _ := newManager(t)
	a := m.ActiveID()
	m.CreateTab("")

	assert.True(t, m.SelectTab(a))
	assert.Equal(t, a, m.ActiveID())

	assert.False(t, m.SelectTab("missing"))
	assert.Equal(t, a, m.ActiveID())
}

func TestSelectOffset_Wraps(t *testing.T) {
	m, _, _ := newManager(t)
	a := m.ActiveID()
	b := m.CreateTab("").ID
	c := m.CreateTab("").ID

	assert.Equal(t, a, m.SelectOffset(1).ID)
	assert.Equal(t, c, m.SelectOffset(-1).ID)
	assert.Equal(t, b, m.SelectOffset(-1).ID)
}

func TestSetMode_OnlyActiveTab(t *testing.T) {
	m, _, _ := newManager(t)
	a := m.ActiveID()
	b := m.CreateTab("").ID

	m.SetMode(types.ModeDeep)

	tabB, _ := m.Tab(b)
	tabA, _ := m.Tab(a)
	assert.Equal(t, types.ModeDeep, tabB.Mode)
	assert.Equal(t, types.ModeFast, tabA.Mode)
}

func TestNavigate_RejectsBlankQuery(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		m, _, d := newManager(t)
		before := m.ActiveTab()

		assert.False(t, m.Navigate(context.Background(), q))
		assert.Equal(t, before, m.ActiveTab())
		assert.Empty(t, d.Calls())
	}
}

func TestNavigate_RejectsOffline(t *testing.T) {
	m, env, d := newManager(t)
	env.SetOnline(false)
	before := m.Tabs()

	assert.False(t, m.Navigate(context.Background(), "best pizza nearby"))
	assert.Equal(t, before, m.Tabs())
	assert.Empty(t, d.Calls())
}

func TestNavigate_Success(t *testing.T) {
	m, env, d := newManager(t)
	env.SetCoords(types.Coordinates{Latitude: 40.71, Longitude: -74.0})
	d.fn = func(string, types.Mode) (*dispatch.Result, error) {
		return &dispatch.Result{
			Text:  "Three places nearby.",
			Links: []types.GroundingLink{{Title: "Web Result", URI: "https://a"}},
		}, nil
	}
	m.SetMode(types.ModeSearch)

	require.True(t, m.Navigate(context.Background(), "Best coffee shops within walking distance"))

	tab := m.ActiveTab()
	assert.False(t, tab.IsLoading)
	assert.False(t, tab.IsThinking)
	assert.Equal(t, "Three places nearby.", tab.Content)
	assert.Equal(t, "Best coffee shops wi", tab.Title)
	assert.Equal(t, "Best coffee shops within walking distance", tab.URL)
	assert.Len(t, tab.GroundingLinks, 1)

	calls := d.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Search for: Best coffee shops within walking distance", calls[0].Prompt)
	assert.Equal(t, types.ModeSearch, calls[0].Mode)
	require.NotNil(t, calls[0].Coords)
	assert.Equal(t, 40.71, calls[0].Coords.Latitude)
}

func TestNavigate_FailureAnyMode(t *testing.T) {
	for _, mode := range types.Modes {
		t.Run(mode.String(), func(t *testing.T) {
			m, _, d := newManager(t)
			d.fn = func(string, types.Mode) (*dispatch.Result, error) {
				return nil, errors.New("503")
			}
			m.SetMode(mode)

			require.True(t, m.Navigate(context.Background(), "example.com"))

			tab := m.ActiveTab()
			assert.False(t, tab.IsLoading)
			assert.False(t, tab.IsThinking)
			assert.Equal(t, FailureMessage, tab.Content)
			assert.Equal(t, LoadingTitle, tab.Title, "title is left as it was")
		})
	}
}

func TestBegin_StagesActiveTab(t *testing.T) {
	m, _, _ := newManager(t)
	m.SetMode(types.ModeDeep)

	req, ok := m.Begin("future of neural interfaces")
	require.True(t, ok)

	tab := m.ActiveTab()
	assert.True(t, tab.IsLoading)
	assert.True(t, tab.IsThinking)
	assert.Equal(t, LoadingTitle, tab.Title)
	assert.Equal(t, "future of neural interfaces", tab.URL)

	assert.Equal(t, tab.ID, req.TabID)
	assert.Equal(t, types.ModeDeep, req.Mode)
	assert.Equal(t, "Search for: future of neural interfaces", req.Prompt)
	assert.Nil(t, req.Coords)
}

func TestBegin_ThinkingOnlyForDeep(t *testing.T) {
	m, _, _ := newManager(t)
	m.SetMode(types.ModeSearch)

	_, ok := m.Begin("q")
	require.True(t, ok)
	assert.False(t, m.ActiveTab().IsThinking)
}

func TestComplete_LandsOnOriginatingTab(t *testing.T) {
	m, _, _ := newManager(t)
	origin := m.ActiveID()

	req, ok := m.Begin("slow query")
	require.True(t, ok)

	other := m.CreateTab("")
	m.Complete(req, &dispatch.Result{Text: "late answer"}, nil)

	tab, _ := m.Tab(origin)
	assert.Equal(t, "late answer", tab.Content)
	assert.False(t, tab.IsLoading)

	active := m.ActiveTab()
	assert.Equal(t, other.ID, active.ID)
	assert.Empty(t, active.Content)
}

func TestComplete_ModeChangeAfterDispatch(t *testing.T) {
	m, _, _ := newManager(t)
	req, _ := m.Begin("q")
	m.SetMode(types.ModeDeep)

	assert.Equal(t, types.ModeFast, req.Mode)
	m.Complete(req, &dispatch.Result{Text: "x"}, nil)
	assert.Equal(t, types.ModeDeep, m.ActiveTab().Mode)
}

func TestComplete_ClosedTabIsNoop(t *testing.T) {
	m, _, _ := newManager(t)
	m.CreateTab("")
	origin := m.ActiveID()
	req, _ := m.Begin("q")

	require.True(t, m.CloseTab(origin))
	before := m.Tabs()

	assert.NotPanics(t, func() {
		m.Complete(req, &dispatch.Result{Text: "orphan"}, nil)
	})
	assert.Equal(t, before, m.Tabs())
}

func TestComplete_SupersededReplyDropped(t *testing.T) {
	m, _, _ := newManager(t)
	first, _ := m.Begin("first")
	second, _ := m.Begin("second")

	m.Complete(first, &dispatch.Result{Text: "stale"}, nil)
	tab := m.ActiveTab()
	assert.True(t, tab.IsLoading)
	assert.Empty(t, tab.Content)

	m.Complete(second, &dispatch.Result{Text: "fresh"}, nil)
	tab = m.ActiveTab()
	assert.False(t, tab.IsLoading)
	assert.Equal(t, "fresh", tab.Content)
	assert.Equal(t, "second", tab.Title)
}

func TestComplete_ClearsStaleLinks(t *testing.T) {
	m, _, _ := newManager(t)
	req, _ := m.Begin("q")
	m.Complete(req, &dispatch.Result{Text: "a", Links: []types.GroundingLink{{Title: "t", URI: "u"}}}, nil)

	req, _ = m.Begin("q2")
	m.Complete(req, &dispatch.Result{Text: "b"}, nil)
	assert.Empty(t, m.ActiveTab().GroundingLinks)
}

func TestConcurrentCompletions(t *testing.T) {
	m, _, _ := newManager(t)
	var reqs []*Request
	for i := 0; i < 5; i++ {
		if i > 0 {
			m.CreateTab("")
		}
		req, ok := m.Begin("query")
		require.True(t, ok)
		reqs = append(reqs, req)
	}

	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req *Request) {
			defer wg.Done()
			m.Complete(req, &dispatch.Result{Text: req.TabID}, nil)
		}(i, req)
	}
	wg.Wait()

	for _, tab := range m.Tabs() {
		assert.Equal(t, tab.ID, tab.Content)
		assert.False(t, tab.IsLoading)
	}
}

func TestReload(t *testing.T) {
	m, _, d := newManager(t)
	assert.False(t, m.Reload(context.Background()), "fresh tab has nothing to reload")

	require.True(t, m.Navigate(context.Background(), "example.com"))
	require.True(t, m.Reload(context.Background()))
	assert.Len(t, d.Calls(), 2)
}

func TestNavigate_WithDispatchClient(t *testing.T) {
	mock := &llm.MockProvider{Response: &llm.Response{
		Text: "Pizza.",
		GroundingChunks: []llm.GroundingChunk{
			llm.WebChunk("", "https://a"),
			llm.MapsChunk("", "https://b"),
		},
	}}
	m := NewManager(environment.NewState(true), dispatch.NewClient(mock))
	m.SetMode(types.ModeSearch)

	require.True(t, m.Navigate(context.Background(), "best pizza nearby"))

	tab := m.ActiveTab()
	assert.Equal(t, []types.GroundingLink{
		{Title: "Web Result", URI: "https://a"},
		{Title: "Location Result", URI: "https://b"},
	}, tab.GroundingLinks)
	assert.Equal(t, "Search for: best pizza nearby", mock.Requests()[0].Prompt)
}
