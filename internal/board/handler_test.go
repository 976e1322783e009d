package board

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/navidved/bulletin/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testCaller stands in for OptionalAuth: it trusts the X-Caller header.
func testCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if email := r.Header.Get("X-Caller"); email != "" {
			r = r.WithContext(middleware.WithCaller(r.Context(), email))
		}
		next.ServeHTTP(w, r)
	})
}

func newTestRouter(f *fixture, maxUpload int64) http.Handler {
	h := NewHandler(f.svc, maxUpload)
	r := chi.NewRouter()
	r.Use(testCaller)
	r.Get("/posts", h.List)
	r.Post("/posts", h.Create)
	r.Get("/posts/{id}", h.Get)
	r.Put("/posts/{id}", h.Update)
	r.Delete("/posts/{id}", h.Delete)
	return r
}

type formFile struct {
	field, name, content string
}

func multipartBody(t *testing.T, fields map[string][]string, files []formFile) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vs := range fields {
		for _, v := range vs {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	for _, ff := range files {
		fw, err := mw.CreateFormFile(ff.field, ff.name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(ff.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func doRequest(router http.Handler, method, target, caller string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if caller != "" {
		req.Header.Set("X-Caller", caller)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func TestHandler_CreateAndGet(t *testing.T) {
	f := newFixture()
	router := newTestRouter(f, 1<<20)

	body, ct := multipartBody(t,
		map[string][]string{"title": {"hello"}, "content": {"world"}},
		[]formFile{{"files", "a.png", "png-bytes"}, {"files", "empty.txt", ""}})
	rec := doRequest(router, http.MethodPost, "/posts", "author@example.com", body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created createdData
	decode(t, rec, &created)
	assert.Equal(t, int64(1), created.ID)

	rec = doRequest(router, http.MethodGet, "/posts/1", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var detail Detail
	decode(t, rec, &detail)
	assert.Equal(t, "hello", detail.Title)
	assert.Equal(t, []FileDescriptor{{Name: "a.png", Path: testPrefix + "prj3/board/1/a.png"}}, detail.Files)
}

func TestHandler_CreateErrors(t *testing.T) {
	tests := []struct {
		name   string
		caller string
		fields map[string][]string
		want   int
	}{
		{"anonymous", "", map[string][]string{"title": {"t"}, "content": {"c"}}, http.StatusUnauthorized},
		{"blank title", "author@example.com", map[string][]string{"title": {" "}, "content": {"c"}}, http.StatusBadRequest},
		{"unknown member", "ghost@example.com", map[string][]string{"title": {"t"}, "content": {"c"}}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			body, ct := multipartBody(t, tt.fields, nil)
			rec := doRequest(newTestRouter(f, 1<<20), http.MethodPost, "/posts", tt.caller, body, ct)

			assert.Equal(t, tt.want, rec.Code)
			env := decode(t, rec, nil)
			assert.False(t, env.Success)
			assert.Empty(t, f.db.posts)
		})
	}
}

func TestHandler_CreateTooLarge(t *testing.T) {
	f := newFixture()
	body, ct := multipartBody(t,
		map[string][]string{"title": {"t"}, "content": {"c"}},
		[]formFile{{"files", "big.bin", string(bytes.Repeat([]byte("x"), 4096))}})

	rec := doRequest(newTestRouter(f, 512), http.MethodPost, "/posts", "author@example.com", body, ct)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandler_CreateStorageFailure(t *testing.T) {
	f := newFixture()
	f.blobs.failFor["prj3/board/1/a.png"] = errBlob
	body, ct := multipartBody(t,
		map[string][]string{"title": {"t"}, "content": {"c"}},
		[]formFile{{"files", "a.png", "x"}})

	rec := doRequest(newTestRouter(f, 1<<20), http.MethodPost, "/posts", "author@example.com", body, ct)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandler_List(t *testing.T) {
	f := newFixture()
	router := newTestRouter(f, 1<<20)
	for _, title := range []string{"apples", "bananas", "apple pie"} {
		_, err := f.svc.Create(t.Context(), title, "body", nil, author)
		require.NoError(t, err)
	}

	rec := doRequest(router, http.MethodGet, "/posts?q=apple&page=1", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res ListResult
	decode(t, rec, &res)
	require.Len(t, res.Posts, 2)
	assert.Equal(t, "apple pie", res.Posts[0].Title)
	assert.Equal(t, PageInfo{TotalPages: 1, LeftPageNumber: 1, RightPageNumber: 1, CurrentPageNumber: 1}, res.PageInfo)

	rec = doRequest(router, http.MethodGet, "/posts?page=abc", "", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_UpdateAndDelete(t *testing.T) {
	seed := func(t *testing.T) (*fixture, http.Handler) {
		f := newFixture()
		_, err := f.svc.Create(t.Context(), "title", "content", []*File{newFile("a.png", "a")}, author)
		require.NoError(t, err)
		return f, newTestRouter(f, 1<<20)
	}

	t.Run("update by author", func(t *testing.T) {
		f, router := seed(t)
		body, ct := multipartBody(t,
			map[string][]string{"title": {"new"}, "content": {"body"}, "removeFiles[]": {"a.png"}},
			[]formFile{{"files[]", "b.png", "b"}})

		rec := doRequest(router, http.MethodPut, "/posts/1", "author@example.com", body, ct)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
		assert.Equal(t, "new", f.db.posts[1].Title)
		assert.Equal(t, []string{"b.png"}, f.db.files[1])
	})

	t.Run("update by stranger is forbidden", func(t *testing.T) {
		f, router := seed(t)
		body, ct := multipartBody(t, map[string][]string{"title": {"new"}, "content": {"body"}}, nil)

		rec := doRequest(router, http.MethodPut, "/posts/1", "other@example.com", body, ct)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "title", f.db.posts[1].Title)
	})

	t.Run("delete anonymously is unauthorized", func(t *testing.T) {
		f, router := seed(t)
		rec := doRequest(router, http.MethodDelete, "/posts/1", "", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, f.db.posts, int64(1))
	})

	t.Run("delete by author", func(t *testing.T) {
		f, router := seed(t)
		rec := doRequest(router, http.MethodDelete, "/posts/1", "author@example.com", nil, "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, f.db.posts)

		rec = doRequest(router, http.MethodGet, "/posts/1", "", nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		_, router := seed(t)
		rec := doRequest(router, http.MethodDelete, "/posts/zero", "author@example.com", nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
