package remote

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// fakeBackend is an in-memory stand-in for the data API. It implements
// the REST surface the gateway consumes and counts mutating calls so
// tests can assert on traffic.
type fakeBackend struct {
	mu      sync.Mutex
	seq     int
	records map[string]map[string]map[string]any // kind -> id -> record
	counts  map[string]int                       // "POST attachments" -> n
	failAll bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		records: make(map[string]map[string]map[string]any),
		counts:  make(map[string]int),
	}
}

func (f *fakeBackend) server() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(f.handle))
}

func (f *fakeBackend) count(method, kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[method+" "+kind]
}

func (f *fakeBackend) insert(kind string, rec map[string]any) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insertLocked(kind, rec)
}

func (f *fakeBackend) insertLocked(kind string, rec map[string]any) string {
	f.seq++
	id := fmt.Sprintf("srv-%d", f.seq)
	rec["id"] = id
	if _, ok := rec["createdAt"]; !ok {
		rec["createdAt"] = time.Now().UTC().Format(time.RFC3339)
	}
	if f.records[kind] == nil {
		f.records[kind] = make(map[string]map[string]any)
	}
	f.records[kind][id] = rec
	return id
}

func (f *fakeBackend) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAll {
		http.Error(w, "backend down", http.StatusInternalServerError)
		return
	}

	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/"), "/")
	kind := parts[0]
	f.counts[r.Method+" "+kind]++

	switch {
	case r.Method == http.MethodGet && len(parts) == 1:
		items := make([]map[string]any, 0)
		for _, rec := range f.records[kind] {
			if !matches(rec, r.URL.Query()) {
				continue
			}
			items = append(items, rec)
		}
		writeJSON(w, http.StatusOK, items)

	case r.Method == http.MethodPost && len(parts) == 1:
		var rec map[string]any
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		id := f.insertLocked(kind, rec)
		writeJSON(w, http.StatusCreated, f.records[kind][id])

	case r.Method == http.MethodPut && len(parts) == 2:
		existing, ok := f.records[kind][parts[1]]
		if !ok {
			http.NotFound(w, r)
			return
		}
		var rec map[string]any
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for k, v := range rec {
			existing[k] = v
		}
		existing["id"] = parts[1]
		existing["updatedAt"] = time.Now().UTC().Format(time.RFC3339)
		writeJSON(w, http.StatusOK, existing)

	case r.Method == http.MethodDelete && len(parts) == 2:
		if _, ok := f.records[kind][parts[1]]; !ok {
			http.NotFound(w, r)
			return
		}
		delete(f.records[kind], parts[1])
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "bad route", http.StatusBadRequest)
	}
}

func matches(rec map[string]any, filter map[string][]string) bool {
	for field, want := range filter {
		got, _ := rec[field].(string)
		if len(want) == 0 || got != want[0] {
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
