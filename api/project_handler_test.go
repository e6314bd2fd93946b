package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-cms/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProjectWithoutPhoto(t *testing.T) {
	env := newTestEnv(t)

	rec := env.authed(multipartRequest(t, http.MethodPost, "/api/projects", map[string][]string{
		"judul":    {"Portfolio CMS"},
		"category": {"Web Development"},
		"tech":     {"Go, Postgres"},
	}, nil))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeEnvelope(t, rec)
	assert.True(t, body.Success)
	assert.Contains(t, string(body.Data), `"photo":null`)

	project := decodeData[models.Project](t, rec)
	assert.Equal(t, "Portfolio CMS", project.Judul)
	assert.Equal(t, "web-development", project.CategorySlug)
	assert.Equal(t, models.StatusPublished, project.Status)
	assert.Equal(t, 1, env.projects.count())
	assert.Empty(t, env.media.Keys())
}

func TestCreateProjectWithPhoto(t *testing.T) {
	env := newTestEnv(t)

	rec := env.authed(multipartRequest(t, http.MethodPost, "/api/projects", map[string][]string{
		"judul":    {"Shop"},
		"category": {"Mobile"},
		"status":   {"draft"},
	}, pngFile("Cover.PNG")))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	project := decodeData[models.Project](t, rec)
	require.NotNil(t, project.Photo)
	assert.True(t, strings.HasPrefix(*project.Photo, "https://media.test/projects/"))
	assert.True(t, strings.HasSuffix(*project.Photo, ".png"))
	assert.Equal(t, models.StatusDraft, project.Status)
	assert.Len(t, env.media.Keys(), 1)
}

func TestCreateProjectMissingFieldPersistsNothing(t *testing.T) {
	env := newTestEnv(t)

	rec := env.authed(multipartRequest(t, http.MethodPost, "/api/projects", map[string][]string{
		"judul": {"No category"},
	}, pngFile("a.png")))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.False(t, body.Success)
	assert.Contains(t, body.Errors, "category")
	assert.Equal(t, 0, env.projects.count())
	assert.Empty(t, env.media.Keys())
}

func TestCreateProjectRemovesPhotoWhenInsertFails(t *testing.T) {
	env := newTestEnv(t)
	env.projects.addErr = errors.New("connection reset")

	rec := env.authed(multipartRequest(t, http.MethodPost, "/api/projects", map[string][]string{
		"judul":    {"Broken"},
		"category": {"Web"},
	}, pngFile("a.png")))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, env.media.Keys())
	assert.Len(t, env.media.Deletes(), 1)
}

func TestCreateProjectRejectsNonImage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.authed(multipartRequest(t, http.MethodPost, "/api/projects", map[string][]string{
		"judul":    {"Doc"},
		"category": {"Web"},
	}, &formFile{name: "notes.txt", contentType: "text/plain", data: []byte("hello")}))

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Equal(t, 0, env.projects.count())
}

func TestCreateProjectUnknownStatus(t *testing.T) {
	env := newTestEnv(t)

	rec := env.authed(jsonRequest(t, http.MethodPost, "/api/projects", map[string]string{
		"judul": "x", "category": "y", "status": "hidden",
	}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, env.projects.count())
}

func TestProjectMutationsRequireSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(jsonRequest(t, http.MethodPost, "/api/projects", map[string]string{"judul": "x", "category": "y"}))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, env.projects.count())
}

func TestGetProjectMalformedIDSkipsStore(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/projects?id=not-a-uuid", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeEnvelope(t, rec).Errors, "id")
	assert.Equal(t, 0, env.projects.callCount())
}

func TestGetProjectByIDNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/projects?id="+uuid.NewString(), nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProjectsFiltersByCategorySlug(t *testing.T) {
	env := newTestEnv(t)
	env.projects.seed(&models.Project{Judul: "A", Category: "Web Development", CategorySlug: "web-development", Status: models.StatusPublished})
	env.projects.seed(&models.Project{Judul: "B", Category: "Mobile", CategorySlug: "mobile", Status: models.StatusPublished})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/projects?category=Web%20Development", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	projects := decodeData[[]models.Project](t, rec)
	require.Len(t, projects, 1)
	assert.Equal(t, "A", projects[0].Judul)
}

func TestGetProjectsFiltersByNonLatinCategory(t *testing.T) {
	env := newTestEnv(t)
	env.projects.seed(&models.Project{Judul: "A", Category: "Web", CategorySlug: "web", Status: models.StatusPublished})
	env.projects.seed(&models.Project{Judul: "B", Category: "機械学習", CategorySlug: Slugify("機械学習"), Status: models.StatusPublished})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/projects?category="+url.QueryEscape("機械学習"), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	projects := decodeData[[]models.Project](t, rec)
	require.Len(t, projects, 1)
	assert.Equal(t, "B", projects[0].Judul)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/projects?category=---", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeEnvelope(t, rec).Errors, "category")
}

func TestCreateProjectStoresNonLatinSlug(t *testing.T) {
	env := newTestEnv(t)

	rec := env.authed(jsonRequest(t, http.MethodPost, "/api/projects", map[string]string{"judul": "A", "category": "Программирование"}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "программирование", decodeData[models.Project](t, rec).CategorySlug)

	rec = env.authed(jsonRequest(t, http.MethodPost, "/api/projects", map[string]string{"judul": "B", "category": "!!!"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, env.projects.count())
}

func TestUpdateProjectMissingID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.authed(multipartRequest(t, http.MethodPut, "/api/projects?id="+uuid.NewString(), map[string][]string{
		"judul": {"Renamed"},
	}, pngFile("a.png")))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, env.media.Keys())
}

func TestUpdateProjectNothingToUpdate(t *testing.T) {
	env := newTestEnv(t)
	id := env.projects.seed(&models.Project{Judul: "A", Category: "Web", CategorySlug: "web", Status: models.StatusPublished})

	rec := env.authed(jsonRequest(t, http.MethodPut, "/api/projects?id="+id.String(), map[string]string{}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.authed(jsonRequest(t, http.MethodPut, "/api/projects?id="+id.String(), map[string]string{"judul": "A"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateProjectReplacesPhoto(t *testing.T) {
	env := newTestEnv(t)

	create := env.authed(multipartRequest(t, http.MethodPost, "/api/projects", map[string][]string{
		"judul":    {"Shop"},
		"category": {"Web"},
	}, pngFile("old.png")))
	require.Equal(t, http.StatusCreated, create.Code, create.Body.String())
	created := decodeData[models.Project](t, create)
	require.Len(t, env.media.Keys(), 1)

	rec := env.authed(multipartRequest(t, http.MethodPut, "/api/projects?id="+created.ID.String(), map[string][]string{
		"category": {"Mobile Apps"},
	}, pngFile("new.png")))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeData[models.Project](t, rec)
	require.NotNil(t, updated.Photo)
	assert.NotEqual(t, *created.Photo, *updated.Photo)
	assert.Equal(t, "mobile-apps", updated.CategorySlug)
	assert.Equal(t, "Shop", updated.Judul)

	keys := env.media.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasSuffix(*updated.Photo, keys[0]))
}

func TestUpdateProjectDeletePhotoFlag(t *testing.T) {
	env := newTestEnv(t)

	create := env.authed(multipartRequest(t, http.MethodPost, "/api/projects", map[string][]string{
		"judul":    {"Shop"},
		"category": {"Web"},
	}, pngFile("old.png")))
	created := decodeData[models.Project](t, create)

	rec := env.authed(jsonRequest(t, http.MethodPut, "/api/projects?id="+created.ID.String(), map[string]any{
		"delete_photo": true,
	}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, decodeData[models.Project](t, rec).Photo)
	assert.Empty(t, env.media.Keys())
}

func TestPatchProjectStatus(t *testing.T) {
	env := newTestEnv(t)
	id := env.projects.seed(&models.Project{Judul: "A", Category: "Web", CategorySlug: "web", Status: models.StatusPublished})

	rec := env.authed(jsonRequest(t, http.MethodPatch, "/api/projects?statuschange="+id.String(), map[string]string{"status": "archived"}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decodeData[models.ProjectStatusView](t, rec)
	assert.Equal(t, id, view.ID)
	assert.Equal(t, models.StatusArchived, view.Status)

	rec = env.authed(jsonRequest(t, http.MethodPatch, "/api/projects?id="+id.String(), map[string]string{"status": "hidden"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.authed(jsonRequest(t, http.MethodPatch, "/api/projects?id="+id.String(), map[string]string{"status": "Published"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	stored, err := env.projects.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusArchived, stored.Status)
}

func TestDeleteProjectDestroysPhoto(t *testing.T) {
	env := newTestEnv(t)

	create := env.authed(multipartRequest(t, http.MethodPost, "/api/projects", map[string][]string{
		"judul":    {"Shop"},
		"category": {"Web"},
	}, pngFile("cover.png")))
	created := decodeData[models.Project](t, create)

	rec := env.authed(httptest.NewRequest(http.MethodDelete, "/api/projects?id="+created.ID.String(), nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, created.ID, decodeData[deletedResponse](t, rec).ID)
	assert.Equal(t, 0, env.projects.count())
	assert.Len(t, env.media.Deletes(), 1)
	assert.Empty(t, env.media.Keys())

	rec = env.authed(httptest.NewRequest(http.MethodDelete, "/api/projects?id="+created.ID.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
