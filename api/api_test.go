package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-cms/auth"
	"github.com/rpupo63/portfolio-cms/cache"
	"github.com/rpupo63/portfolio-cms/config"
	"github.com/rpupo63/portfolio-cms/database"
	"github.com/rpupo63/portfolio-cms/media"
	"github.com/rpupo63/portfolio-cms/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeTable is an in-memory table keyed by id. Missing rows produce
// gorm.ErrRecordNotFound like the real repos.
type fakeTable[T any] struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]*T
	order []uuid.UUID
	id    func(*T) uuid.UUID
	calls int

	addErr error
	// beforeList runs at the start of every FindAll
	beforeList func()
}

func newFakeTable[T any](id func(*T) uuid.UUID) *fakeTable[T] {
	return &fakeTable[T]{rows: make(map[uuid.UUID]*T), id: id}
}

func (f *fakeTable[T]) FindByID(_ context.Context, id uuid.UUID) (*T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	row, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakeTable[T]) Add(_ context.Context, row *T) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.addErr != nil {
		return f.addErr
	}
	if hook, ok := any(row).(interface{ BeforeCreate(*gorm.DB) error }); ok {
		if err := hook.BeforeCreate(nil); err != nil {
			return err
		}
	}
	cp := *row
	id := f.id(&cp)
	f.rows[id] = &cp
	f.order = append(f.order, id)
	return nil
}

func (f *fakeTable[T]) Update(_ context.Context, id uuid.UUID, mutate func(*T) error) (*T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	row, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *row
	if err := mutate(&cp); err != nil {
		return nil, err
	}
	*row = cp
	return &cp, nil
}

func (f *fakeTable[T]) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if _, ok := f.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.rows, id)
	for i, existing := range f.order {
		if existing == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeTable[T]) all() []*T {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*T, 0, len(f.order))
	for _, id := range f.order {
		cp := *f.rows[id]
		out = append(out, &cp)
	}
	return out
}

func (f *fakeTable[T]) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func (f *fakeTable[T]) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// seed stores row as is and returns its id
func (f *fakeTable[T]) seed(row *T) uuid.UUID {
	_ = f.Add(context.Background(), row)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = 0
	return f.order[len(f.order)-1]
}

type fakeProjects struct{ *fakeTable[models.Project] }

func (f fakeProjects) FindAll(_ context.Context, filter database.ProjectFilter) ([]*models.Project, error) {
	if f.beforeList != nil {
		f.beforeList()
	}
	var out []*models.Project
	for _, p := range f.all() {
		if filter.CategorySlug != "" && p.CategorySlug != filter.CategorySlug {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f fakeProjects) UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) (*models.Project, error) {
	return f.Update(ctx, id, func(p *models.Project) error {
		p.Status = status
		return nil
	})
}

type fakeCertificates struct{ *fakeTable[models.Certificate] }

func (f fakeCertificates) FindAll(_ context.Context, status models.Status) ([]*models.Certificate, error) {
	var out []*models.Certificate
	for _, c := range f.all() {
		if status != "" && c.Status != status {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f fakeCertificates) UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) (*models.Certificate, error) {
	return f.Update(ctx, id, func(c *models.Certificate) error {
		c.Status = status
		return nil
	})
}

type fakeTechStacks struct{ *fakeTable[models.TechStack] }

func (f fakeTechStacks) FindAll(context.Context) ([]*models.TechStack, error) {
	return f.all(), nil
}

type fakeExperiences struct {
	*fakeTable[models.WorkExperience]
}

func (f fakeExperiences) FindAll(context.Context) ([]*models.WorkExperience, error) {
	return f.all(), nil
}

func (f fakeExperiences) Update(ctx context.Context, id uuid.UUID, mutate func(*models.WorkExperience) (bool, error)) (*models.WorkExperience, error) {
	return f.fakeTable.Update(ctx, id, func(w *models.WorkExperience) error {
		_, err := mutate(w)
		return err
	})
}

type fakeAbout struct{ *fakeTable[models.About] }

func (f fakeAbout) FindCanonical(context.Context) (*models.About, error) {
	rows := f.all()
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return rows[0], nil
}

func (f fakeAbout) FindAll(context.Context) ([]*models.About, error) {
	return f.all(), nil
}

type fakeEducations struct {
	rows    []*models.Education
	lookups int
}

func (f *fakeEducations) FindByID(_ context.Context, id uuid.UUID) (*models.Education, error) {
	f.lookups++
	for _, e := range f.rows {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEducations) FindAll(context.Context) ([]*models.Education, error) {
	return f.rows, nil
}

type fakeUsers map[string]*models.User

func (f fakeUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := f[username]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

const (
	testUsername         = "admin"
	testPassword         = "correct horse battery staple"
	testRevalidateSecret = "revalidate-secret"
)

type testEnv struct {
	t        *testing.T
	router   http.Handler
	settings config.Settings

	projects     fakeProjects
	certificates fakeCertificates
	techStacks   fakeTechStacks
	experiences  fakeExperiences
	about        fakeAbout
	educations   *fakeEducations
	users        fakeUsers

	media    *media.Memory
	cache    *cache.Memory
	sessions *auth.Sessions
	pingErr  error
}

func newTestEnv(t *testing.T, opts ...func(*config.Settings)) *testEnv {
	t.Helper()

	settings := config.Settings{
		SessionSecret:    "test-session-secret",
		SessionIdle:      time.Hour,
		SessionMaxAge:    24 * time.Hour,
		RevalidateSecret: testRevalidateSecret,
		CacheTTL:         time.Minute,
	}
	for _, opt := range opts {
		opt(&settings)
	}

	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)

	sessions, err := auth.NewSessions(settings.SessionSecret, settings.SessionIdle, settings.SessionMaxAge)
	require.NoError(t, err)

	env := &testEnv{
		t:            t,
		settings:     settings,
		projects:     fakeProjects{newFakeTable(func(p *models.Project) uuid.UUID { return p.ID })},
		certificates: fakeCertificates{newFakeTable(func(c *models.Certificate) uuid.UUID { return c.ID })},
		techStacks:   fakeTechStacks{newFakeTable(func(s *models.TechStack) uuid.UUID { return s.ID })},
		experiences:  fakeExperiences{newFakeTable(func(w *models.WorkExperience) uuid.UUID { return w.ID })},
		about:        fakeAbout{newFakeTable(func(a *models.About) uuid.UUID { return a.ID })},
		educations:   &fakeEducations{},
		users:        fakeUsers{testUsername: {ID: uuid.New(), Username: testUsername, PasswordHash: hash}},
		media:        media.NewMemory("https://media.test"),
		cache:        cache.NewMemory(),
		sessions:     sessions,
	}

	deps := dependencies{
		projects:     env.projects,
		certificates: env.certificates,
		techStacks:   env.techStacks,
		experiences:  env.experiences,
		about:        env.about,
		educations:   env.educations,
		users:        env.users,
		media:        media.NewStore(env.media),
		cache:        env.cache,
		sessions:     sessions,
		ping:         func(context.Context) error { return env.pingErr },
	}
	env.router = newRouter(settings, deps, time.Now())
	return env
}

// token issues a fresh admin session
func (e *testEnv) token() string {
	e.t.Helper()
	user := e.users[testUsername]
	session, err := e.sessions.Issue(user.ID, user.Username, time.Now())
	require.NoError(e.t, err)
	return session.Token
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) authed(req *http.Request) *httptest.ResponseRecorder {
	req.Header.Set("Authorization", "Bearer "+e.token())
	return e.do(req)
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// pngBytes is enough of a PNG header for content sniffing
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type formFile struct {
	name        string
	contentType string
	data        []byte
}

func multipartRequest(t *testing.T, method, target string, fields map[string][]string, file *formFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range fields[k] {
			require.NoError(t, mw.WriteField(k, v))
		}
	}

	if file != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="photo"; filename="`+file.name+`"`)
		header.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func pngFile(name string) *formFile {
	return &formFile{name: name, contentType: "image/png", data: pngBytes}
}

type testEnvelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &out), rec.Body.String())
	return out
}
