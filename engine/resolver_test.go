package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPResolver_FollowsRedirects(t *testing.T) {
	var gotUA string
	mux := http.NewServeMux()
	mux.HandleFunc("/link", func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		http.Redirect(w, r, "/hop", http.StatusFound)
	})
	mux.HandleFunc("/hop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final?x=1", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("landing page"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	r := NewHTTPResolver(5*time.Second, "")
	got, err := r.Resolve(context.Background(), srv.URL+"/link")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != srv.URL+"/final?x=1" {
		t.Errorf("Resolve = %s, want %s/final?x=1", got, srv.URL)
	}
	if gotUA != resolverUA {
		t.Errorf("User-Agent = %q", gotUA)
	}
}

func TestHTTPResolver_RedirectLoop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	}))
	defer srv.Close()

	r := NewHTTPResolver(5*time.Second, "")
	if _, err := r.Resolve(context.Background(), srv.URL+"/loop"); err == nil {
		t.Error("expected error for redirect loop")
	}
}

func TestHTTPResolver_Timeout(t *testing.T) {
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(done)

	r := NewHTTPResolver(50*time.Millisecond, "")
	if _, err := r.Resolve(context.Background(), srv.URL); err == nil {
		t.Error("expected timeout error")
	}
}
