package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-cms/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type certificateJSON struct {
	ID     uuid.UUID     `json:"id"`
	Name   string        `json:"name"`
	Date   string        `json:"date"`
	Link   string        `json:"link"`
	Photo  *string       `json:"photo"`
	Status models.Status `json:"status"`
}

func seedCertificate(env *testEnv, name string, status models.Status) uuid.UUID {
	return env.certificates.seed(&models.Certificate{
		Name:   name,
		Date:   datatypes.Date(time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)),
		Status: status,
	})
}

func TestCreateCertificate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.authed(multipartRequest(t, http.MethodPost, "/api/certificates", map[string][]string{
		"name": {"Cloud Practitioner"},
		"date": {"2024-02-29"},
		"link": {"https://example.com/cert"},
	}, pngFile("badge.png")))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cert := decodeData[certificateJSON](t, rec)
	assert.Equal(t, "Cloud Practitioner", cert.Name)
	assert.Contains(t, cert.Date, "2024-02-29")
	assert.Equal(t, models.StatusPublished, cert.Status)
	require.NotNil(t, cert.Photo)
	assert.Len(t, env.media.Keys(), 1)
}

func TestCreateCertificateValidation(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]string
		field  string
	}{
		{"missing name", map[string]string{"date": "2024-01-01"}, "name"},
		{"missing date", map[string]string{"name": "A"}, "date"},
		{"bad date", map[string]string{"name": "A", "date": "yesterday"}, "date"},
		{"bad link", map[string]string{"name": "A", "date": "2024-01-01", "link": "not a url"}, "link"},
		{"draft is not a certificate status", map[string]string{"name": "A", "date": "2024-01-01", "status": "draft"}, "status"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)

			rec := env.authed(jsonRequest(t, http.MethodPost, "/api/certificates", tc.fields))

			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Contains(t, decodeEnvelope(t, rec).Errors, tc.field)
			assert.Equal(t, 0, env.certificates.count())
		})
	}
}

func TestPatchCertificateStatusMissingID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.authed(jsonRequest(t, http.MethodPatch, "/api/certificates?id="+uuid.NewString(), map[string]string{"status": "archived"}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPatchCertificateStatus(t *testing.T) {
	env := newTestEnv(t)
	id := seedCertificate(env, "Go", models.StatusPublished)

	rec := env.authed(jsonRequest(t, http.MethodPatch, "/api/certificates?statuschange="+id.String(), map[string]string{"status": "archived"}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decodeData[models.CertificateStatusView](t, rec)
	assert.Equal(t, "Go", view.Name)
	assert.Equal(t, models.StatusArchived, view.Status)

	rec = env.authed(jsonRequest(t, http.MethodPatch, "/api/certificates?id="+id.String(), map[string]string{"status": "draft"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.authed(jsonRequest(t, http.MethodPatch, "/api/certificates?id="+id.String(), map[string]string{}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCertificatesByStatus(t *testing.T) {
	env := newTestEnv(t)
	seedCertificate(env, "Shown", models.StatusPublished)
	seedCertificate(env, "Hidden", models.StatusArchived)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/certificates?status=archived", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	certs := decodeData[[]certificateJSON](t, rec)
	require.Len(t, certs, 1)
	assert.Equal(t, "Hidden", certs[0].Name)
}

func TestUpdateCertificateKeepsPhotoOnRename(t *testing.T) {
	env := newTestEnv(t)

	create := env.authed(multipartRequest(t, http.MethodPost, "/api/certificates", map[string][]string{
		"name": {"Old name"},
		"date": {"2024-01-01"},
	}, pngFile("badge.png")))
	require.Equal(t, http.StatusCreated, create.Code, create.Body.String())
	created := decodeData[certificateJSON](t, create)

	rec := env.authed(jsonRequest(t, http.MethodPut, "/api/certificates?id="+created.ID.String(), map[string]string{
		"name": "New name",
		"date": "2024-01-01",
	}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeData[certificateJSON](t, rec)
	assert.Equal(t, "New name", updated.Name)
	assert.Equal(t, created.Photo, updated.Photo)
	assert.Len(t, env.media.Keys(), 1)
	assert.Empty(t, env.media.Deletes())
}

func TestUpdateCertificateMissingID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.authed(jsonRequest(t, http.MethodPut, "/api/certificates?id="+uuid.NewString(), map[string]string{"name": "x"}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteCertificate(t *testing.T) {
	env := newTestEnv(t)
	id := seedCertificate(env, "Go", models.StatusPublished)

	rec := env.authed(httptest.NewRequest(http.MethodDelete, "/api/certificates?id="+id.String(), nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 0, env.certificates.count())
	assert.Empty(t, env.media.Deletes())
}
