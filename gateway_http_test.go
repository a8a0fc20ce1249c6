package newsflow

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newGatewayServer serves scripted JSON per endpoint path and records the
// decoded request bodies.
func newGatewayServer(t *testing.T, responses map[string]any) (*HTTPGateway, map[string]map[string]any) {
	t.Helper()

	requests := make(map[string]map[string]any)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
				requests[r.URL.Path] = body
			}
		}
		resp, ok := responses[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"detail": "no such endpoint"})
			return
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	return NewHTTPGateway(GatewayConfig{BaseURL: srv.URL}), requests
}

func TestHTTPGatewayAggregate(t *testing.T) {
	gw, requests := newGatewayServer(t, map[string]any{
		"/aggregate": map[string]any{
			"articles": []map[string]string{
				{"title": "A", "link": "http://a", "summary": "sa", "source": "S"},
				{"title": "B", "link": "http://b"},
			},
		},
	})

	articles, err := gw.Aggregate(context.Background(), []string{"http://feed"})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("articles = %d, want 2", len(articles))
	}
	if articles[0].Title != "A" || articles[0].Source != "S" {
		t.Errorf("articles[0] = %+v", articles[0])
	}

	sent := requests["/aggregate"]
	if _, ok := sent["sources"]; !ok {
		t.Error("sources missing from request body")
	}
}

func TestHTTPGatewayGeneratePosts(t *testing.T) {
	gw, requests := newGatewayServer(t, map[string]any{
		"/tweets": map[string]any{
			"tweets": []map[string]string{
				{
					"id":             "t1",
					"content":        "🤖 big news",
					"summary_title":  "Title",
					"summary_link":   "http://a",
					"summary_source": "Feed",
				},
			},
		},
	})

	posts, err := gw.GeneratePosts(context.Background(), "s1", []Highlight{{Title: "Title", Link: "http://a"}})
	if err != nil {
		t.Fatalf("GeneratePosts failed: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("posts = %d, want 1", len(posts))
	}
	p := posts[0]
	if p.ID != "t1" || p.Content != "🤖 big news" || p.SourceLink != "http://a" || p.SourceName != "Feed" {
		t.Errorf("post = %+v", p)
	}

	sent := requests["/tweets"]
	if sent["session_id"] != "s1" {
		t.Errorf("session_id = %v", sent["session_id"])
	}
	if _, ok := sent["summaries"]; !ok {
		t.Error("summaries missing from request body")
	}
}

func TestHTTPGatewayEditPostWireFormat(t *testing.T) {
	gw, requests := newGatewayServer(t, map[string]any{
		"/edit_tweet": map[string]any{
			"new_tweet":   "shorter",
			"ai_response": "I trimmed it.",
			"conversation_history": []map[string]string{
				{"role": "user", "content": "shorten"},
				{"role": "assistant", "content": "UPDATED TWEET: shorter"},
			},
		},
	})

	res, err := gw.EditPost(context.Background(), PostEditRequest{
		SessionID:       "s1",
		PostID:          "t1",
		CurrentText:     "a long tweet",
		OriginalSummary: "the summary",
		UserMessage:     "shorten",
		History:         []ConversationTurn{{Role: RoleUser, Content: "earlier"}},
	})
	if err != nil {
		t.Fatalf("EditPost failed: %v", err)
	}
	if res.NewText != "shorter" || res.Reply != "I trimmed it." {
		t.Errorf("result = %+v", res)
	}
	if len(res.History) != 2 {
		t.Errorf("history = %d, want 2", len(res.History))
	}

	sent := requests["/edit_tweet"]
	if sent["tweet_id"] != "t1" {
		t.Errorf("tweet_id = %v", sent["tweet_id"])
	}
	if sent["current_tweet"] != "a long tweet" {
		t.Errorf("current_tweet = %v", sent["current_tweet"])
	}
	if sent["original_summary"] != "the summary" {
		t.Errorf("original_summary = %v", sent["original_summary"])
	}
}

func TestHTTPGatewayEditText(t *testing.T) {
	gw, _ := newGatewayServer(t, map[string]any{
		"/edit": map[string]any{
			"edited_text": "revised",
			"history": []map[string]string{
				{"role": "user", "content": "revise"},
				{"role": "assistant", "content": "revised"},
			},
		},
	})

	res, err := gw.EditText(context.Background(), EditRequest{
		SessionID:   "s1",
		Text:        "draft",
		Instruction: "revise",
	})
	if err != nil {
		t.Fatalf("EditText failed: %v", err)
	}
	if res.EditedText != "revised" {
		t.Errorf("edited text = %q", res.EditedText)
	}
}

func TestHTTPGatewayErrorIsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "bad payload"})
	}))
	t.Cleanup(srv.Close)
	gw := NewHTTPGateway(GatewayConfig{BaseURL: srv.URL})

	_, err := gw.Aggregate(context.Background(), nil)
	if err == nil {
		t.Fatal("Aggregate returned nil error")
	}
	if !IsTransportFailure(err) {
		t.Errorf("IsTransportFailure = false for %v", err)
	}
}

func TestHTTPGatewayErrorCarriesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"detail": "missing field"})
	}))
	t.Cleanup(srv.Close)
	gw := NewHTTPGateway(GatewayConfig{BaseURL: srv.URL})

	_, err := gw.Aggregate(context.Background(), nil)
	var ge *GatewayError
	if !errors.As(err, &ge) {
		t.Fatalf("err = %v, want *GatewayError", err)
	}
	if ge.Status != http.StatusUnprocessableEntity {
		t.Errorf("Status = %d, want %d", ge.Status, http.StatusUnprocessableEntity)
	}
	if ge.Op != "aggregate" || ge.Endpoint != "/aggregate" {
		t.Errorf("Op = %q, Endpoint = %q", ge.Op, ge.Endpoint)
	}
}

func TestHTTPGatewayDefaultFeeds(t *testing.T) {
	gw, _ := newGatewayServer(t, map[string]any{
		"/defaults": map[string]string{"AI News": "http://feed"},
	})

	feeds, err := gw.DefaultFeeds(context.Background())
	if err != nil {
		t.Fatalf("DefaultFeeds failed: %v", err)
	}
	if feeds["AI News"] != "http://feed" {
		t.Errorf("feeds = %v", feeds)
	}
}
