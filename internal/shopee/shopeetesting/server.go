package shopeetesting

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"sjsage522/divulgador/internal/auth"
)

// Server is a fake partner API. Every request must carry a valid signature
// for the configured key.
type Server struct {
	*httptest.Server

	key string

	mu       sync.Mutex
	items    map[string]Item
	requests map[string]int
	status   int
	link     string
}

// NewServer starts a fake API verifying signatures with key. It is closed
// when the test ends.
func NewServer(t testing.TB, key string) *Server {
	t.Helper()

	s := &Server{
		key:      key,
		items:    make(map[string]Item),
		requests: make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/item/get_item_detail", s.handleItem)
	mux.HandleFunc("/api/v2/item/search", s.handleSearch)
	mux.HandleFunc("/api/v2/affiliate/generate_short_link", s.handleShortLink)

	s.Server = httptest.NewServer(s.verify(mux))
	t.Cleanup(s.Close)
	return s
}

// AddItem makes item available to detail and search requests.
func (s *Server) AddItem(item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[itemKey(item.ShopID, item.ItemID)] = item
}

// SetStatus forces every following response to status. 0 restores normal
// behavior.
func (s *Server) SetStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// SetShortLink sets the link returned by the affiliate endpoint.
func (s *Server) SetShortLink(link string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.link = link
}

// Requests returns how many requests reached path.
func (s *Server) Requests(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[path]
}

func (s *Server) verify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests[r.URL.Path]++
		status := s.status
		s.mu.Unlock()

		if !auth.VerifyRequest(s.key, r) {
			writeJSON(w, http.StatusForbidden, ErrorPayload("error_auth", "invalid sign"))
			return
		}
		if status != 0 {
			writeJSON(w, status, ErrorPayload("error_server", http.StatusText(status)))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	shopID, _ := strconv.ParseInt(q.Get("shop_id"), 10, 64)
	itemID, _ := strconv.ParseInt(q.Get("item_id"), 10, 64)

	s.mu.Lock()
	item, ok := s.items[itemKey(shopID, itemID)]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusOK, ErrorPayload("error_item_not_found", "item not found"))
		return
	}
	writeJSON(w, http.StatusOK, ItemDetail(item))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	keyword := strings.ToLower(r.URL.Query().Get("keyword"))

	s.mu.Lock()
	var hits []Item
	for _, item := range s.items {
		if strings.Contains(strings.ToLower(item.Name), keyword) {
			hits = append(hits, item)
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, SearchResult(hits...))
}

func (s *Server) handleShortLink(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OriginURL string `json:"origin_url"`
	}
	if r.Method != http.MethodPost || json.NewDecoder(r.Body).Decode(&body) != nil || body.OriginURL == "" {
		writeJSON(w, http.StatusOK, ErrorPayload("error_param", "origin_url is required"))
		return
	}

	s.mu.Lock()
	link := s.link
	s.mu.Unlock()

	if link == "" {
		writeJSON(w, http.StatusOK, ErrorPayload("error_affiliate", "affiliate program not enabled"))
		return
	}
	writeJSON(w, http.StatusOK, ShortLink(link))
}

func itemKey(shopID, itemID int64) string {
	return strconv.FormatInt(shopID, 10) + "." + strconv.FormatInt(itemID, 10)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
