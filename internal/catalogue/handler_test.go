package catalogue

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"cinehub/internal/omdb"
	"cinehub/internal/reviews"
	"cinehub/pkg/models"
)

// fakeProvider serves canned lookup results without a network round trip.
type fakeProvider struct {
	av  *models.Audiovisual
	err error

	lastQuery models.LookupQuery
}

func (f *fakeProvider) Lookup(ctx context.Context, q models.LookupQuery) (*models.Audiovisual, error) {
	f.lastQuery = q
	if f.err != nil {
		return nil, f.err
	}
	return f.av, nil
}

func newTestRouter(t *testing.T, provider Provider) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := openTestDB(t)
	handler := NewHandler(NewRepo(db), provider, reviews.NewRepo(db), nil)

	router := gin.New()
	// auth middleware is exercised in its own package, routes here are bare
	group := router.Group("/audiovisuals")
	handler.RegisterPublicRoutes(group)
	handler.RegisterProtectedRoutes(group)
	return router
}

func lookupResult(imdbID, title, avType string) *models.Audiovisual {
	return &models.Audiovisual{
		ImdbID:   &imdbID,
		Title:    &title,
		Type:     &avType,
		Response: true,
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlerAdd(t *testing.T) {
	provider := &fakeProvider{av: lookupResult("tt0903747", "Breaking Bad", "series")}
	router := newTestRouter(t, provider)

	rec := doJSON(t, router, http.MethodPost, "/audiovisuals", `{"title": "Breaking Bad"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: want 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var view models.AudiovisualView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if view.Title == nil || *view.Title != "Breaking Bad" {
		t.Errorf("title: got %v", view.Title)
	}
	if view.Type != "series" {
		t.Errorf("type: got %q", view.Type)
	}
	if view.Rating != nil {
		t.Errorf("rating: want absent without reviews, got %v", *view.Rating)
	}
	if provider.lastQuery.Title == nil || *provider.lastQuery.Title != "Breaking+Bad" {
		t.Errorf("provider query title: got %v", provider.lastQuery.Title)
	}

	t.Run("re-adding keeps the id", func(t *testing.T) {
		again := doJSON(t, router, http.MethodPost, "/audiovisuals", `{"title": "Breaking Bad"}`)
		if again.Code != http.StatusCreated {
			t.Fatalf("status: want 201, got %d", again.Code)
		}
		var second models.AudiovisualView
		if err := json.Unmarshal(again.Body.Bytes(), &second); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if second.ID != view.ID {
			t.Errorf("id changed on re-add: %s vs %s", view.ID, second.ID)
		}
	})
}

func TestHandlerAddValidation(t *testing.T) {
	router := newTestRouter(t, &fakeProvider{})

	t.Run("empty query", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/audiovisuals", `{}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status: want 400, got %d", rec.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/audiovisuals", `{"title":`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status: want 400, got %d", rec.Code)
		}
	})
}

func TestHandlerAddProviderErrors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		provider := &fakeProvider{err: &omdb.LookupError{Message: "Movie not found!"}}
		router := newTestRouter(t, provider)

		rec := doJSON(t, router, http.MethodPost, "/audiovisuals", `{"title": "No Such Film"}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status: want 404, got %d", rec.Code)
		}
		var msg models.ErrorMessage
		if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if msg.Message != "Movie not found!" {
			t.Errorf("message: got %q", msg.Message)
		}
	})

	t.Run("shape mismatch", func(t *testing.T) {
		provider := &fakeProvider{err: &models.ShapeMismatchError{Field: "metascore", Value: "sixty"}}
		router := newTestRouter(t, provider)

		rec := doJSON(t, router, http.MethodPost, "/audiovisuals", `{"imdb_id": "tt0903747"}`)
		if rec.Code != http.StatusBadGateway {
			t.Errorf("status: want 502, got %d", rec.Code)
		}
	})
}

func TestHandlerGetAndProviderForm(t *testing.T) {
	provider := &fakeProvider{av: lookupResult("tt0116282", "Fargo", "movie")}
	router := newTestRouter(t, provider)

	created := doJSON(t, router, http.MethodPost, "/audiovisuals", `{"title": "Fargo"}`)
	if created.Code != http.StatusCreated {
		t.Fatalf("setup add failed: %d", created.Code)
	}
	var view models.AudiovisualView
	if err := json.Unmarshal(created.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode setup response: %v", err)
	}
	id := view.ID.String()

	t.Run("get by id", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/audiovisuals/"+id, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status: want 200, got %d", rec.Code)
		}
	})

	t.Run("provider form uses snake keys", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/audiovisuals/"+id+"/provider", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status: want 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"imdb_id":"tt0116282"`) {
			t.Errorf("want snake_case imdb_id, got %s", rec.Body.String())
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/audiovisuals/does-not-exist", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status: want 404, got %d", rec.Code)
		}
	})
}

func TestHandlerList(t *testing.T) {
	provider := &fakeProvider{av: lookupResult("tt0116282", "Fargo", "movie")}
	router := newTestRouter(t, provider)

	if rec := doJSON(t, router, http.MethodPost, "/audiovisuals", `{"title": "Fargo"}`); rec.Code != http.StatusCreated {
		t.Fatalf("setup add failed: %d", rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/audiovisuals?q=fargo&type=movie", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want 200, got %d", rec.Code)
	}

	var page struct {
		Total int                      `json:"total"`
		Items []models.AudiovisualView `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 {
		t.Errorf("want one item, got total=%d items=%d", page.Total, len(page.Items))
	}
}

func TestHandlerRemove(t *testing.T) {
	provider := &fakeProvider{av: lookupResult("tt0116282", "Fargo", "movie")}
	router := newTestRouter(t, provider)

	created := doJSON(t, router, http.MethodPost, "/audiovisuals", `{"title": "Fargo"}`)
	var view models.AudiovisualView
	if err := json.Unmarshal(created.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode setup response: %v", err)
	}

	rec := doJSON(t, router, http.MethodDelete, "/audiovisuals/"+view.ID.String(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want 200, got %d", rec.Code)
	}
	var msg models.RemovedMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if msg.Message != "Movie or series removed" {
		t.Errorf("message: got %q", msg.Message)
	}

	if again := doJSON(t, router, http.MethodDelete, "/audiovisuals/"+view.ID.String(), ""); again.Code != http.StatusNotFound {
		t.Errorf("second delete: want 404, got %d", again.Code)
	}
}
