package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"articles-api/internal/models"
)

func TestCreateArticleSetsOwner(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@x.com", "pw1", false)

	payload := map[string]any{
		"title":       "Go at scale",
		"description": "notes",
		"source_url":  "https://example.com/go-at-scale",
	}
	rec, c := env.doJSON(t, http.MethodPost, "/api/v1/articles", payload)
	env.authorize(c, env.tokenFor(t, user))
	require.NoError(t, env.callAuthed(env.Articles.Create, c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Article
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	require.Equal(t, user.ID, created.UserID)
	require.Equal(t, "Go at scale", created.Title)
}

func TestCreateArticleUnauthenticated(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]any{"title": "anonymous"}

	_, c := env.doJSON(t, http.MethodPost, "/api/v1/articles", payload)
	requireHTTPError(t, env.callAuthed(env.Articles.Create, c), http.StatusUnauthorized)

	_, cBad := env.doJSON(t, http.MethodPost, "/api/v1/articles", payload)
	env.authorize(cBad, "not.a.token")
	requireHTTPError(t, env.callAuthed(env.Articles.Create, cBad), http.StatusUnauthorized)

	var count int64
	require.NoError(t, env.DB.Model(&models.Article{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestCreateArticleInvalidPayload(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@x.com", "pw1", false)

	for name, payload := range map[string]map[string]any{
		"missing title": {"description": "no title"},
		"bad url":       {"title": "x", "source_url": "::not a url::"},
	} {
		t.Run(name, func(t *testing.T) {
			_, c := env.doJSON(t, http.MethodPost, "/api/v1/articles", payload)
			env.authorize(c, env.tokenFor(t, user))
			requireHTTPError(t, env.callAuthed(env.Articles.Create, c), http.StatusBadRequest)
		})
	}
}

func TestArticleGet(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@x.com", "pw1", false)
	article := env.createArticle(t, user, "readable by anyone")

	rec, c := env.doJSON(t, http.MethodGet, "/", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.Articles.Get(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Article
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, article.Title, got.Title)

	_, cMissing := env.doJSON(t, http.MethodGet, "/", nil)
	cMissing.SetParamNames("id")
	cMissing.SetParamValues("999")
	requireHTTPError(t, env.Articles.Get(cMissing), http.StatusNotFound)
}

func TestArticleListPagination(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@x.com", "pw1", false)
	env.createArticle(t, user, "one")
	env.createArticle(t, user, "two")
	env.createArticle(t, user, "three")

	rec, c := env.doJSON(t, http.MethodGet, "/api/v1/articles?page=1&size=2", nil)
	require.NoError(t, env.Articles.List(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.Article `json:"data"`
		Meta struct {
			Page       int   `json:"page"`
			Size       int   `json:"size"`
			Total      int64 `json:"total"`
			TotalPages int64 `json:"total_pages"`
			HasPrev    bool  `json:"has_prev"`
			HasNext    bool  `json:"has_next"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	require.EqualValues(t, 3, resp.Meta.Total)
	require.EqualValues(t, 2, resp.Meta.TotalPages)
	require.False(t, resp.Meta.HasPrev)
	require.True(t, resp.Meta.HasNext)
	require.Equal(t, "one", resp.Data[0].Title)
}

func TestArticleUpdateByOwner(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "a@x.com", "pw1", false)
	article := env.createArticle(t, owner, "original title")

	patch := map[string]any{"description": "updated description"}
	rec, c := env.doJSON(t, http.MethodPut, "/", patch)
	c.SetParamNames("id")
	c.SetParamValues("1")
	env.authorize(c, env.tokenFor(t, owner))
	require.NoError(t, env.callAuthed(env.Articles.Update, c))
	require.Equal(t, http.StatusAccepted, rec.Code)

	var stored models.Article
	require.NoError(t, env.DB.First(&stored, article.ID).Error)
	require.Equal(t, "original title", stored.Title)
	require.Equal(t, "updated description", stored.Description)
	require.Equal(t, article.SourceURL, stored.SourceURL)
}

func TestArticleUpdateForbidden(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "a@x.com", "pw1", false)
	intruder := env.createUser(t, "b@x.com", "pw2", false)
	article := env.createArticle(t, owner, "original title")

	patch := map[string]any{"title": "hijacked"}
	_, c := env.doJSON(t, http.MethodPut, "/", patch)
	c.SetParamNames("id")
	c.SetParamValues("1")
	env.authorize(c, env.tokenFor(t, intruder))
	requireHTTPError(t, env.callAuthed(env.Articles.Update, c), http.StatusForbidden)

	var stored models.Article
	require.NoError(t, env.DB.First(&stored, article.ID).Error)
	require.Equal(t, "original title", stored.Title)
}

func TestArticleUpdateNotFound(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@x.com", "pw1", false)

	_, c := env.doJSON(t, http.MethodPut, "/", map[string]any{"title": "x"})
	c.SetParamNames("id")
	c.SetParamValues("999")
	env.authorize(c, env.tokenFor(t, user))
	requireHTTPError(t, env.callAuthed(env.Articles.Update, c), http.StatusNotFound)
}

func TestArticleDelete(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "a@x.com", "pw1", false)
	article := env.createArticle(t, owner, "short lived")

	rec, c := env.doJSON(t, http.MethodDelete, "/", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	env.authorize(c, env.tokenFor(t, owner))
	require.NoError(t, env.callAuthed(env.Articles.Delete, c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.Article{}).Where("id = ?", article.ID).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestArticleDeleteForbidden(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "a@x.com", "pw1", false)
	intruder := env.createUser(t, "b@x.com", "pw2", false)
	article := env.createArticle(t, owner, "still here")

	_, c := env.doJSON(t, http.MethodDelete, "/", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	env.authorize(c, env.tokenFor(t, intruder))
	requireHTTPError(t, env.callAuthed(env.Articles.Delete, c), http.StatusForbidden)

	var stored models.Article
	require.NoError(t, env.DB.First(&stored, article.ID).Error)
	require.Equal(t, "still here", stored.Title)
}

func TestArticleDeleteNotFound(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@x.com", "pw1", false)

	_, c := env.doJSON(t, http.MethodDelete, "/", nil)
	c.SetParamNames("id")
	c.SetParamValues("999")
	env.authorize(c, env.tokenFor(t, user))
	requireHTTPError(t, env.callAuthed(env.Articles.Delete, c), http.StatusNotFound)
}
