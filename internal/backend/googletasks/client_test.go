package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"taskcard/internal/service"
	"taskcard/internal/store"
)

type gTask struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status,omitempty"`
}

// fakeGoogle serves the handful of Tasks API endpoints the client uses.
type fakeGoogle struct {
	mu     sync.Mutex
	lists  []gTask
	tasks  map[string][]gTask
	status int
	next   int
}

func (f *fakeGoogle) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		fmt.Fprintf(w, `{"error":{"code":%d,"message":"injected"}}`, f.status)
		return
	}

	const listsPath = "/tasks/v1/users/@me/lists"
	path := r.URL.Path
	switch {
	case path == listsPath && r.Method == http.MethodGet:
		writeJSON(w, map[string]any{"kind": "tasks#taskLists", "items": f.lists})
	case path == listsPath && r.Method == http.MethodPost:
		var in gTask
		json.NewDecoder(r.Body).Decode(&in)
		f.next++
		in.ID = fmt.Sprintf("L%d", f.next)
		f.lists = append(f.lists, in)
		writeJSON(w, in)
	case strings.HasPrefix(path, listsPath+"/"):
		id := strings.TrimPrefix(path, listsPath+"/")
		i := f.indexOf(id)
		if i < 0 {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":{"code":404,"message":"list not found"}}`)
			return
		}
		switch r.Method {
		case http.MethodPatch:
			var in gTask
			json.NewDecoder(r.Body).Decode(&in)
			f.lists[i].Title = in.Title
			writeJSON(w, f.lists[i])
		case http.MethodDelete:
			f.lists = append(f.lists[:i], f.lists[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
		}
	case strings.HasPrefix(path, "/tasks/v1/lists/") && strings.HasSuffix(path, "/tasks"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/tasks/v1/lists/"), "/tasks")
		writeJSON(w, map[string]any{"kind": "tasks#tasks", "items": f.tasks[id]})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeGoogle) indexOf(id string) int {
	for i, l := range f.lists {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, fake *fakeGoogle, kv store.KV) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	ids, err := NewIDMap(kv)
	if err != nil {
		t.Fatalf("NewIDMap: %v", err)
	}
	c, err := NewWithHTTPClient(context.Background(), srv.Client(), ids, time.Second, option.WithEndpoint(srv.URL+"/"))
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	return c
}

func TestClient_ListsAndSubTasks(t *testing.T) {
	fake := &fakeGoogle{
		lists: []gTask{{ID: "abc", Title: "Groceries"}, {ID: "def", Title: "Work"}},
		tasks: map[string][]gTask{
			"abc": {
				{ID: "t1", Title: "milk", Status: "completed"},
				{ID: "t2", Title: "eggs", Status: "needsAction"},
			},
		},
	}
	c := newTestClient(t, fake, store.NewMemKV())
	ctx := context.Background()

	lists, err := c.ListLists(ctx)
	if err != nil {
		t.Fatalf("ListLists: %v", err)
	}
	want := []service.RemoteList{{ID: 1, Title: "Groceries"}, {ID: 2, Title: "Work"}}
	if len(lists) != 2 || lists[0] != want[0] || lists[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, lists)
	}

	subs, err := c.ListSubTasks(ctx, 1)
	if err != nil {
		t.Fatalf("ListSubTasks: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("expected 2 sub-tasks, got %v", subs)
	}
	if subs[0] != (service.RemoteSubTask{ID: 3, Content: "milk", Done: true}) {
		t.Errorf("unexpected first sub-task: %+v", subs[0])
	}
	if subs[1].Done {
		t.Errorf("needsAction must not be done: %+v", subs[1])
	}

	empty, err := c.ListSubTasks(ctx, 2)
	if err != nil {
		t.Fatalf("ListSubTasks: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no sub-tasks, got %v", empty)
	}
}

func TestClient_IdentifiersAreStableAcrossClients(t *testing.T) {
	fake := &fakeGoogle{lists: []gTask{{ID: "abc", Title: "A"}}}
	kv := store.NewMemKV()

	first, err := newTestClient(t, fake, kv).ListLists(context.Background())
	if err != nil {
		t.Fatalf("ListLists: %v", err)
	}

	fake.mu.Lock()
	fake.lists = append([]gTask{{ID: "new", Title: "B"}}, fake.lists...)
	fake.mu.Unlock()

	second, err := newTestClient(t, fake, kv).ListLists(context.Background())
	if err != nil {
		t.Fatalf("ListLists: %v", err)
	}
	if second[1].ID != first[0].ID {
		t.Errorf("expected list abc to keep id %d, got %d", first[0].ID, second[1].ID)
	}
	if second[0].ID == first[0].ID {
		t.Errorf("new list reused id %d", second[0].ID)
	}
}

func TestClient_CreateUpdateDelete(t *testing.T) {
	fake := &fakeGoogle{}
	kv := store.NewMemKV()
	c := newTestClient(t, fake, kv)
	ctx := context.Background()

	id, err := c.CreateList(ctx, "Trip")
	if err != nil {
		t.Fatalf("CreateList: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero id")
	}

	got, err := c.UpdateList(ctx, id, "Road trip", true)
	if err != nil {
		t.Fatalf("UpdateList: %v", err)
	}
	if got != id {
		t.Errorf("expected id %d, got %d", id, got)
	}
	if fake.lists[0].Title != "Road trip" {
		t.Errorf("expected renamed list, got %q", fake.lists[0].Title)
	}

	if err := c.DeleteList(ctx, id); err != nil {
		t.Fatalf("DeleteList: %v", err)
	}
	if len(fake.lists) != 0 {
		t.Errorf("expected list deleted, got %v", fake.lists)
	}
	if _, ok := c.ids.Remote(id); ok {
		t.Error("expected mapping to be forgotten")
	}
}

func TestClient_UnknownIdentifierIsNotFound(t *testing.T) {
	c := newTestClient(t, &fakeGoogle{}, store.NewMemKV())

	if _, err := c.ListSubTasks(context.Background(), 42); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := c.DeleteList(context.Background(), 42); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, service.ErrAuth},
		{http.StatusForbidden, service.ErrAuth},
		{http.StatusNotFound, service.ErrNotFound},
		{http.StatusInternalServerError, service.ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, &fakeGoogle{status: tt.status}, store.NewMemKV())
			_, err := c.ListLists(context.Background())
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestIDMap_PersistsAssignments(t *testing.T) {
	kv := store.NewMemKV()
	m, err := NewIDMap(kv)
	if err != nil {
		t.Fatalf("NewIDMap: %v", err)
	}
	a, _ := m.ID("a")
	b, _ := m.ID("b")
	if again, _ := m.ID("a"); again != a {
		t.Errorf("expected %d, got %d", a, again)
	}
	if err := m.Forget(a); err != nil {
		t.Fatalf("Forget: %v", err)
	}

	reloaded, err := NewIDMap(kv)
	if err != nil {
		t.Fatalf("NewIDMap: %v", err)
	}
	if s, ok := reloaded.Remote(b); !ok || s != "b" {
		t.Errorf("expected b, got %q (%v)", s, ok)
	}
	if _, ok := reloaded.Remote(a); ok {
		t.Error("forgotten id came back")
	}
	c, _ := reloaded.ID("c")
	if c == a || c == b {
		t.Errorf("id %d reused", c)
	}
}

func TestIDMap_InvalidDocument(t *testing.T) {
	kv := store.NewMemKV()
	kv.Set(IDMapKey, []byte("{"))
	if _, err := NewIDMap(kv); err == nil {
		t.Error("expected error for invalid document")
	}
}

type staticSource struct {
	mu  sync.Mutex
	tok *oauth2.Token
}

func (s *staticSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := *s.tok
	return &t, nil
}

func TestTokenSource_FollowsBaseCredential(t *testing.T) {
	base := &staticSource{tok: &oauth2.Token{AccessToken: "one", TokenType: "Bearer"}}
	src := TokenSource(context.Background(), &oauth2.Config{}, base)

	tok, err := src.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok.AccessToken != "one" {
		t.Errorf("expected one, got %q", tok.AccessToken)
	}

	base.mu.Lock()
	base.tok = &oauth2.Token{AccessToken: "two", TokenType: "Bearer"}
	base.mu.Unlock()

	tok, err = src.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok.AccessToken != "two" {
		t.Errorf("expected two after login, got %q", tok.AccessToken)
	}
}

func TestTokenSource_NoCredential(t *testing.T) {
	base := &staticSource{tok: &oauth2.Token{}}
	_, err := TokenSource(context.Background(), &oauth2.Config{}, base).Token()
	if !errors.Is(err, service.ErrAuth) {
		t.Errorf("expected ErrAuth, got %v", err)
	}
}
