package signup

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-signup-recorder/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockStore struct{ mock.Mock }

func (m *mockStore) Name() string { return "CosmosDB" }
func (m *mockStore) ReadDatabase(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
func (m *mockStore) ReadContainer(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
func (m *mockStore) Upsert(ctx context.Context, rec *domain.SignUp) (domain.Document, error) {
	args := m.Called(ctx, rec)
	doc, _ := args.Get(0).(domain.Document)
	return doc, args.Error(1)
}

// echoStore stores nothing and answers with the JSON form of what it received.
type echoStore struct{ got []*domain.SignUp }

func (s *echoStore) Name() string                        { return "CosmosDB" }
func (s *echoStore) ReadDatabase(context.Context) error  { return nil }
func (s *echoStore) ReadContainer(context.Context) error { return nil }
func (s *echoStore) Upsert(_ context.Context, rec *domain.SignUp) (domain.Document, error) {
	s.got = append(s.got, rec)
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var doc domain.Document
	return doc, json.Unmarshal(b, &doc)
}

type mockMetrics struct{ mock.Mock }

func (m *mockMetrics) ObserveEnsure(backend string, ok bool) { m.Called(backend, ok) }
func (m *mockMetrics) ObserveSignUp(backend string, err error) {
	m.Called(backend, err)
}

// --- helpers ---

func baseOpts() Options {
	return Options{
		Endpoint:      "https://db.example",
		Credential:    domain.AccountKey("dmFsaWRUb2tlbg=="),
		DatabaseName:  "app",
		ContainerName: "signups",
	}
}

func connectTo(s Store) Connector {
	return func(context.Context, domain.Target) (Store, error) { return s, nil }
}

func newRecorder(t *testing.T, s Store, options ...Option) *Recorder {
	t.Helper()
	r, err := New(context.Background(), connectTo(s), baseOpts(), options...)
	require.NoError(t, err)
	return r
}

func sampleInput() domain.SignUpInput {
	return domain.SignUpInput{
		UserID:        "u1",
		Email:         "a@b.com",
		EmailVerified: true,
		Name:          "A B",
		FamilyName:    "B",
		GivenName:     "A",
		PictureURL:    "http://x/p.png",
		UserIP:        "1.2.3.4",
	}
}

// --- New tests ---

func TestNew_PassesTargetToConnector(t *testing.T) {
	var got domain.Target
	connect := func(_ context.Context, target domain.Target) (Store, error) {
		got = target
		return &echoStore{}, nil
	}
	opts := baseOpts()
	opts.EnableMessageFeedback = true

	r, err := New(context.Background(), connect, opts)

	require.NoError(t, err)
	assert.Equal(t, "https://db.example", got.Endpoint)
	assert.Equal(t, "app", got.Database)
	assert.Equal(t, "signups", got.Container)
	assert.Equal(t, domain.AccountKey("dmFsaWRUb2tlbg=="), got.Credential)
	assert.Equal(t, Info{
		Backend:               "CosmosDB",
		Endpoint:              "https://db.example",
		DatabaseName:          "app",
		ContainerName:         "signups",
		EnableMessageFeedback: true,
	}, r.Info())
}

func TestNew_MissingCredential(t *testing.T) {
	opts := baseOpts()
	opts.Credential = nil

	r, err := New(context.Background(), connectTo(&echoStore{}), opts)

	assert.Nil(t, r)
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))
}

func TestNew_ConnectorKindIsPreserved(t *testing.T) {
	kinds := []domain.ConnectErrorKind{
		domain.KindInvalidCredentials,
		domain.KindInvalidEndpoint,
		domain.KindDatabaseNotFound,
		domain.KindContainerNotFound,
	}
	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			connect := func(context.Context, domain.Target) (Store, error) {
				return nil, domain.NewConnectError(kind, "connect", errors.New("boom"))
			}
			r, err := New(context.Background(), connect, baseOpts())
			assert.Nil(t, r)
			assert.Equal(t, kind, domain.KindOf(err))
		})
	}
}

func TestNew_UnclassifiedFailureIsEndpointError(t *testing.T) {
	connect := func(context.Context, domain.Target) (Store, error) {
		return nil, errors.New("dial tcp: no such host")
	}
	_, err := New(context.Background(), connect, baseOpts())
	assert.True(t, errors.Is(err, domain.ErrInvalidEndpoint))
}

// --- Ensure tests ---

func TestEnsure_Reachable(t *testing.T) {
	s := &mockStore{}
	s.On("ReadDatabase", mock.Anything).Return(nil)
	s.On("ReadContainer", mock.Anything).Return(nil)

	ok, msg := newRecorder(t, s).Ensure(context.Background())

	assert.True(t, ok)
	assert.Equal(t, "CosmosDB client initialized successfully", msg)
	s.AssertExpectations(t)
}

func TestEnsure_DatabaseMissing(t *testing.T) {
	s := &mockStore{}
	s.On("ReadDatabase", mock.Anything).Return(errors.New("404"))

	ok, msg := newRecorder(t, s).Ensure(context.Background())

	assert.False(t, ok)
	assert.Equal(t, "CosmosDB database app on account https://db.example not found", msg)
	s.AssertNotCalled(t, "ReadContainer", mock.Anything)
}

func TestEnsure_ContainerMissing(t *testing.T) {
	s := &mockStore{}
	s.On("ReadDatabase", mock.Anything).Return(nil)
	s.On("ReadContainer", mock.Anything).Return(errors.New("404"))

	ok, msg := newRecorder(t, s).Ensure(context.Background())

	assert.False(t, ok)
	assert.Equal(t, "CosmosDB container signups not found", msg)
}

func TestEnsure_NotInitialized(t *testing.T) {
	var r *Recorder
	ok, msg := r.Ensure(context.Background())
	assert.False(t, ok)
	assert.Contains(t, msg, "not initialized")
}

func TestEnsure_ReportsMetrics(t *testing.T) {
	s := &mockStore{}
	s.On("ReadDatabase", mock.Anything).Return(errors.New("timeout"))
	m := &mockMetrics{}
	m.On("ObserveEnsure", "CosmosDB", false).Once()

	newRecorder(t, s, WithMetrics(m)).Ensure(context.Background())

	m.AssertExpectations(t)
}

// --- CreateSignUp tests ---

func TestCreateSignUp_BuildsRecord(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.FixedZone("CET", 3600))
	s := &echoStore{}
	r := newRecorder(t, s, WithClock(func() time.Time { return now }), WithIDGenerator(func() string { return "fixed" }))

	_, err := r.CreateSignUp(context.Background(), sampleInput())

	require.NoError(t, err)
	require.Len(t, s.got, 1)
	rec := s.got[0]
	assert.Equal(t, "fixed", rec.ID)
	assert.Equal(t, domain.SignUpType, rec.Type)
	assert.Equal(t, time.UTC, rec.CreatedAt.Location())
	assert.True(t, rec.CreatedAt.Equal(now))
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)
	assert.Equal(t, "u1", rec.UserID)
	assert.Equal(t, "a@b.com", rec.Email)
	assert.True(t, rec.EmailVerified)
	assert.Equal(t, "A B", rec.Name)
	assert.Equal(t, "B", rec.FamilyName)
	assert.Equal(t, "A", rec.GivenName)
	assert.Equal(t, "http://x/p.png", rec.PictureURL)
	assert.Equal(t, "1.2.3.4", rec.UserIP)
}

func TestCreateSignUp_DistinctIDsPerCall(t *testing.T) {
	s := &echoStore{}
	r := newRecorder(t, s)

	_, err := r.CreateSignUp(context.Background(), sampleInput())
	require.NoError(t, err)
	other := sampleInput()
	other.UserID = "u2"
	_, err = r.CreateSignUp(context.Background(), other)
	require.NoError(t, err)

	require.Len(t, s.got, 2)
	assert.NotEqual(t, s.got[0].ID, s.got[1].ID)
	for _, rec := range s.got {
		assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)
	}
}

func TestCreateSignUp_ReturnsStoredDocument(t *testing.T) {
	r := newRecorder(t, &echoStore{})

	doc, err := r.CreateSignUp(context.Background(), sampleInput())

	require.NoError(t, err)
	assert.Equal(t, "sign_up", doc["type"])
	assert.Equal(t, "u1", doc["userId"])
	assert.Equal(t, "a@b.com", doc["email"])
	assert.Equal(t, true, doc["email_verified"])
	assert.Equal(t, doc["createdAt"], doc["updatedAt"])
	idStr, ok := doc["id"].(string)
	require.True(t, ok)
	_, err = uuid.Parse(idStr)
	assert.NoError(t, err)
}

func TestCreateSignUp_EmptyResponseIsNil(t *testing.T) {
	s := &mockStore{}
	s.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.SignUp")).Return(domain.Document{}, nil)

	doc, err := newRecorder(t, s).CreateSignUp(context.Background(), sampleInput())

	assert.NoError(t, err)
	assert.Nil(t, doc)
}

func TestCreateSignUp_UpsertErrorPropagates(t *testing.T) {
	cause := errors.New("429 too many requests")
	s := &mockStore{}
	s.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.SignUp")).Return(nil, cause)
	m := &mockMetrics{}
	m.On("ObserveSignUp", "CosmosDB", cause).Once()

	doc, err := newRecorder(t, s, WithMetrics(m)).CreateSignUp(context.Background(), sampleInput())

	assert.Nil(t, doc)
	assert.True(t, errors.Is(err, cause))
	m.AssertExpectations(t)
}

func TestClose_NoopWithoutCloser(t *testing.T) {
	assert.NoError(t, newRecorder(t, &echoStore{}).Close(context.Background()))
}

func TestClose_NilRecorder(t *testing.T) {
	var r *Recorder
	assert.NoError(t, r.Close(context.Background()))
}

func TestNew_NilStoreIsEndpointError(t *testing.T) {
	connect := func(context.Context, domain.Target) (Store, error) { return nil, nil }

	r, err := New(context.Background(), connect, baseOpts())

	assert.Nil(t, r)
	assert.Equal(t, domain.KindInvalidEndpoint, domain.KindOf(err))
}

// resolvedStore reports an endpoint taken from its credential.
type resolvedStore struct {
	echoStore
	endpoint string
	dbErr    error
}

func (s *resolvedStore) Endpoint() string                   { return s.endpoint }
func (s *resolvedStore) ReadDatabase(context.Context) error { return s.dbErr }

func TestNew_EndpointResolvedByStore(t *testing.T) {
	opts := baseOpts()
	opts.Endpoint = ""
	opts.Credential = domain.ConnectionString("AccountEndpoint=https://acct.example:443/;AccountKey=k;")
	s := &resolvedStore{endpoint: "https://acct.example:443/", dbErr: errors.New("404")}

	r, err := New(context.Background(), connectTo(s), opts)
	require.NoError(t, err)

	assert.Equal(t, "https://acct.example:443/", r.Info().Endpoint)
	ok, msg := r.Ensure(context.Background())
	assert.False(t, ok)
	assert.Equal(t, "CosmosDB database app on account https://acct.example:443/ not found", msg)
}

func TestNew_ConfiguredEndpointWins(t *testing.T) {
	r, err := New(context.Background(), connectTo(&resolvedStore{endpoint: "https://other.example"}), baseOpts())
	require.NoError(t, err)
	assert.Equal(t, "https://db.example", r.Info().Endpoint)
}
