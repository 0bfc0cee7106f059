package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"adoscan/internal/azdo"
)

func newTestAzdoClient(t *testing.T, mux *http.ServeMux) *azdo.Client {
	t.Helper()

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := azdo.NewClient("acme", "pat", azdo.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestDiscoverProjects_FiltersStateNameAndPattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/acme/_apis/projects", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"count":5,"value":[
			{"id":"1","name":"Platform","state":"wellFormed"},
			{"id":"2","name":"PlatformOps","state":"wellFormed"},
			{"id":"3","name":"Deleting","state":"deleting"},
			{"id":"4","name":"   ","state":"wellFormed"},
			{"id":"5","name":"Legacy","state":"wellFormed"}
		]}`)
	})

	client := newTestAzdoClient(t, mux)
	projects, err := DiscoverProjects(context.Background(), client, []string{"Platform*"})
	if err != nil {
		t.Fatalf("DiscoverProjects: %v", err)
	}

	if len(projects) != 2 {
		t.Fatalf("expected 2 projects, got %d: %+v", len(projects), projects)
	}
	if projects[0].Name != "Platform" || projects[1].Name != "PlatformOps" {
		t.Fatalf("unexpected projects (want sorted by name): %+v", projects)
	}
}

func TestDiscoverProjects_DefaultPatternMatchesAll(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/acme/_apis/projects", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"count":2,"value":[
			{"id":"1","name":"B","state":"wellFormed"},
			{"id":"2","name":"A","state":"wellFormed"}
		]}`)
	})

	client := newTestAzdoClient(t, mux)
	projects, err := DiscoverProjects(context.Background(), client, nil)
	if err != nil {
		t.Fatalf("DiscoverProjects: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected all projects, got %d", len(projects))
	}
}

func TestDiscoverRepoTargets_SkipsDisabledRepos(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/acme/_apis/projects", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"count":2,"value":[
			{"id":"1","name":"Alpha","state":"wellFormed"},
			{"id":"2","name":"Beta","state":"wellFormed"}
		]}`)
	})
	mux.HandleFunc("/acme/Alpha/_apis/git/repositories", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"count":2,"value":[
			{"id":"a1","name":"api"},
			{"id":"a2","name":"old","isDisabled":true}
		]}`)
	})
	mux.HandleFunc("/acme/Beta/_apis/git/repositories", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"count":1,"value":[{"id":"b1","name":"web"}]}`)
	})

	client := newTestAzdoClient(t, mux)
	projects, err := DiscoverProjects(context.Background(), client, nil)
	if err != nil {
		t.Fatalf("DiscoverProjects: %v", err)
	}

	targets, err := DiscoverRepoTargets(context.Background(), client, projects, 4)
	if err != nil {
		t.Fatalf("DiscoverRepoTargets: %v", err)
	}

	if len(targets) != 2 {
		t.Fatalf("expected 2 targets, got %d: %+v", len(targets), targets)
	}
	if targets[0].Key() != "Alpha/api" || targets[1].Key() != "Beta/web" {
		t.Fatalf("unexpected target keys: %q, %q", targets[0].Key(), targets[1].Key())
	}
}

func TestDiscoverRepoTargets_FailsWhenAnyListingFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/acme/Alpha/_apis/git/repositories", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"count":1,"value":[{"id":"a1","name":"api"}]}`)
	})
	mux.HandleFunc("/acme/Beta/_apis/git/repositories", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"gone"}`)
	})

	client := newTestAzdoClient(t, mux)
	projects := []azdo.Project{
		{ID: "1", Name: "Alpha", State: "wellFormed"},
		{ID: "2", Name: "Beta", State: "wellFormed"},
	}

	if _, err := DiscoverRepoTargets(context.Background(), client, projects, 2); err == nil {
		t.Fatal("expected discovery to fail when one project listing fails")
	}
}

func TestProjectTargets(t *testing.T) {
	projects := []azdo.Project{{ID: "1", Name: "Alpha"}, {ID: "2", Name: "Beta"}}
	targets := ProjectTargets(projects)
	if len(targets) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(targets))
	}
	if targets[0].Key() != "Alpha" || targets[0].Repo != nil {
		t.Fatalf("unexpected target: %+v", targets[0])
	}
}
