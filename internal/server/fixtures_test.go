package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-revamp/internal/ats"
	"github.com/jonathan/resume-revamp/internal/config"
	"github.com/jonathan/resume-revamp/internal/db"
	"github.com/jonathan/resume-revamp/internal/gapanalysis"
	"github.com/jonathan/resume-revamp/internal/jobdesc"
	"github.com/jonathan/resume-revamp/internal/objectstore"
	"github.com/jonathan/resume-revamp/internal/rendering"
	"github.com/jonathan/resume-revamp/internal/revamp"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var samplePDF = []byte("%PDF-1.4\n% sample resume\n")

// memStore is an in-memory Store.
type memStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*db.User
	profiles map[uuid.UUID]*db.Profile
	projects map[uuid.UUID]*db.Project
	order    []uuid.UUID
	results  map[uuid.UUID]*db.ProjectResult
	files    map[string]*db.ProjectFile
	gaps     map[uuid.UUID]*db.GapAnalysis
	statuses map[uuid.UUID][]string
	listErr  error
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[uuid.UUID]*db.User),
		profiles: make(map[uuid.UUID]*db.Profile),
		projects: make(map[uuid.UUID]*db.Project),
		results:  make(map[uuid.UUID]*db.ProjectResult),
		files:    make(map[string]*db.ProjectFile),
		gaps:     make(map[uuid.UUID]*db.GapAnalysis),
		statuses: make(map[uuid.UUID][]string),
	}
}

func (m *memStore) CreateUser(_ context.Context, email, fullName, passwordHash string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	u := &db.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		FullName:     fullName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *memStore) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id], nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memStore) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	u, err := m.GetUserByEmail(ctx, email)
	return u != nil, err
}

func (m *memStore) GetProfile(_ context.Context, userID uuid.UUID) (*db.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profiles[userID], nil
}

func (m *memStore) UpsertProfile(_ context.Context, p *db.Profile) (*db.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := *p
	now := time.Now()
	out.UpdatedAt = now
	if prev, ok := m.profiles[p.UserID]; ok {
		out.CreatedAt = prev.CreatedAt
	} else {
		out.CreatedAt = now
	}
	m.profiles[p.UserID] = &out
	return &out, nil
}

func (m *memStore) CreateProject(_ context.Context, input *db.ProjectCreateInput) (*db.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	p := &db.Project{
		ID:            uuid.New(),
		UserID:        input.UserID,
		JobRole:       input.JobRole,
		TargetCompany: input.TargetCompany,
		Status:        "personal_info",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	m.projects[p.ID] = p
	m.order = append(m.order, p.ID)
	cp := *p
	return &cp, nil
}

func (m *memStore) GetProject(_ context.Context, id uuid.UUID) (*db.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) UpdateProjectStatus(_ context.Context, id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return &ErrNotFound{Resource: "project", ID: id.String()}
	}
	p.Status = status
	m.statuses[id] = append(m.statuses[id], status)
	return nil
}

func (m *memStore) MarkGapAnalysis(_ context.Context, id uuid.UUID, files []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return &ErrNotFound{Resource: "project", ID: id.String()}
	}
	p.HasGapAnalysis = true
	p.GapAnalysisFiles = files
	return nil
}

func (m *memStore) ListProjectsWithResults(_ context.Context, userID uuid.UUID) ([]db.ProjectWithResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []db.ProjectWithResult
	for i := len(m.order) - 1; i >= 0; i-- {
		p := m.projects[m.order[i]]
		if p.UserID != userID {
			continue
		}
		row := db.ProjectWithResult{Project: *p}
		if r, ok := m.results[p.ID]; ok {
			cp := *r
			row.Result = &cp
		}
		out = append(out, row)
	}
	return out, nil
}

func (m *memStore) SaveProjectResult(_ context.Context, r *db.ProjectResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	cp.GeneratedAt = time.Now()
	m.results[r.ProjectID] = &cp
	return nil
}

func (m *memStore) GetProjectResult(_ context.Context, projectID uuid.UUID) (*db.ProjectResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.results[projectID]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) SaveProjectFile(_ context.Context, f *db.ProjectFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f.ID = uuid.New()
	f.CreatedAt = time.Now()
	cp := *f
	m.files[f.ProjectID.String()+":"+f.FileType] = &cp
	return nil
}

func (m *memStore) GetProjectFile(_ context.Context, projectID uuid.UUID, fileType string) (*db.ProjectFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.files[projectID.String()+":"+fileType], nil
}

func (m *memStore) SaveGapAnalysis(_ context.Context, g *db.GapAnalysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g.ID = uuid.New()
	cp := *g
	m.gaps[g.ProjectID] = &cp
	return nil
}

func (m *memStore) fileTypes(projectID uuid.UUID) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, f := range m.files {
		if f.ProjectID == projectID {
			out = append(out, f.FileType)
		}
	}
	sort.Strings(out)
	return out
}

// fakeWatch records supervisor calls.
type fakeWatch struct {
	mu            sync.Mutex
	dir           string
	running       bool
	content       string
	startErr      error
	stopAllCalled bool
}

const fakePID = 4242

func (f *fakeWatch) Start(_ context.Context, key rendering.SessionKey, content string) (rendering.StartResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return rendering.StartResult{}, f.startErr
	}
	f.running = true
	f.content = content
	return rendering.StartResult{PID: fakePID, OutputDir: f.OutputDir(key)}, nil
}

func (f *fakeWatch) Stop(_ context.Context, _ rendering.SessionKey) rendering.StopResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		return rendering.StopResult{Outcome: rendering.NothingToStop}
	}
	f.running = false
	return rendering.StopResult{Outcome: rendering.Stopped}
}

func (f *fakeWatch) Update(_ rendering.SessionKey, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content = content
	return nil
}

func (f *fakeWatch) Status(key rendering.SessionKey) rendering.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := rendering.Status{OutputDir: f.OutputDir(key)}
	if f.running {
		pid := fakePID
		st.Active = true
		st.PID = &pid
	}
	return st
}

func (f *fakeWatch) OutputDir(key rendering.SessionKey) string {
	return filepath.Join(f.dir, string(key), rendering.OutputDirName)
}

func (f *fakeWatch) StopAll(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = false
	f.stopAllCalled = true
}

type rendererFunc func(ctx context.Context, content, theme string) ([]byte, error)

func (f rendererFunc) Render(ctx context.Context, content, theme string) ([]byte, error) {
	return f(ctx, content, theme)
}

type mockScorer struct {
	mock.Mock
}

func (m *mockScorer) Score(ctx context.Context, resume, jd ats.File) (float64, error) {
	args := m.Called(ctx, resume, jd)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockScorer) Keywords(ctx context.Context, jd ats.File) ats.KeywordReport {
	args := m.Called(ctx, jd)
	return args.Get(0).(ats.KeywordReport)
}

type reviserFunc func(ctx context.Context, req *revamp.Request) (string, error)

func (f reviserFunc) Revamp(ctx context.Context, req *revamp.Request) (string, error) {
	return f(ctx, req)
}

type analyzerFunc func(ctx context.Context, resumePDF []byte, jd *jobdesc.Document, jobRole string) (*gapanalysis.Report, error)

func (f analyzerFunc) Analyze(ctx context.Context, resumePDF []byte, jd *jobdesc.Document, jobRole string) (*gapanalysis.Report, error) {
	return f(ctx, resumePDF, jd, jobRole)
}

// testEnv is a server wired to in-memory collaborators.
type testEnv struct {
	server  *Server
	store   *memStore
	objects *objectstore.DirStore
	watch   *fakeWatch
	scorer  *mockScorer
	deps    Deps
}

func newTestEnv(t *testing.T, mutate ...func(*Deps)) *testEnv {
	t.Helper()

	objects, err := objectstore.NewDirStore(t.TempDir())
	require.NoError(t, err)

	env := &testEnv{
		store:   newMemStore(),
		objects: objects,
		watch:   &fakeWatch{dir: t.TempDir()},
		scorer:  &mockScorer{},
	}
	env.deps = Deps{
		Store:   env.store,
		Objects: objects,
		Renderer: rendererFunc(func(context.Context, string, string) ([]byte, error) {
			return samplePDF, nil
		}),
		Watch:  env.watch,
		Scorer: env.scorer,
		Reviser: reviserFunc(func(context.Context, *revamp.Request) (string, error) {
			return "cv:\n  name: Jane Doe\n", nil
		}),
		Analyzer: analyzerFunc(func(_ context.Context, _ []byte, _ *jobdesc.Document, jobRole string) (*gapanalysis.Report, error) {
			return &gapanalysis.Report{
				JobRole: jobRole,
				Table: gapanalysis.Table{Skills: []gapanalysis.SkillGap{
					{Skill: "Go", Present: true},
					{Skill: "Kubernetes", Present: false, Evidence: "not mentioned"},
				}},
				Plan:     "Learn Kubernetes",
				Projects: "Deploy a cluster",
			}, nil
		}),
		JWT: NewJWTService(&config.JWTConfig{
			Secret:     "test-secret-key-for-jwt-signing",
			Issuer:     "resume-revamp",
			Expiration: time.Hour,
		}),
		Passwords: &config.PasswordConfig{BcryptCost: bcrypt.MinCost},
	}
	for _, m := range mutate {
		m(&env.deps)
	}

	env.server, err = New(Config{Port: 0}, env.deps)
	require.NoError(t, err)
	return env
}

// do serves req through the full middleware chain.
func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

// seedUser stores a user and returns it with a valid token.
func (e *testEnv) seedUser(t *testing.T, email string) (*db.User, string) {
	t.Helper()
	hash, err := e.deps.Passwords.HashPassword("password123")
	require.NoError(t, err)
	user, err := e.store.CreateUser(context.Background(), email, "Jane Doe", hash)
	require.NoError(t, err)
	token, err := e.deps.JWT.GenerateToken(user.ID, user.Email, user.FullName)
	require.NoError(t, err)
	return user, token
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

type testFile struct {
	field string
	name  string
	data  []byte
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files ...testFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func withToken(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}
