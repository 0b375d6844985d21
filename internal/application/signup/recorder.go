package signup

import (
	"context"
	"fmt"
	"time"

	"github.com/go-signup-recorder/internal/domain"
	"github.com/go-signup-recorder/internal/pkg/id"
)

// Store is a connected document store bound to one database and container.
type Store interface {
	// Name is the human-readable backend name used in status messages.
	Name() string
	ReadDatabase(ctx context.Context) error
	ReadContainer(ctx context.Context) error
	// Upsert inserts or replaces rec by id and returns the stored document,
	// or nil when the store answered with an empty body.
	Upsert(ctx context.Context, rec *domain.SignUp) (domain.Document, error)
}

// endpointReporter is implemented by stores that resolve their endpoint
// from the credential, such as a connection string.
type endpointReporter interface {
	Endpoint() string
}

// Connector establishes a Store for target. Failures are *domain.ConnectError.
type Connector func(ctx context.Context, target domain.Target) (Store, error)

// Metrics observes recorder outcomes.
type Metrics interface {
	ObserveEnsure(backend string, ok bool)
	ObserveSignUp(backend string, err error)
}

type noopMetrics struct{}

func (noopMetrics) ObserveEnsure(string, bool)  {}
func (noopMetrics) ObserveSignUp(string, error) {}

// Options configures a Recorder.
type Options struct {
	Endpoint      string
	Credential    domain.Credential
	DatabaseName  string
	ContainerName string
	// EnableMessageFeedback is stored but does not change behavior.
	EnableMessageFeedback bool
}

// Info describes the target a Recorder writes to.
type Info struct {
	Backend               string
	Endpoint              string
	DatabaseName          string
	ContainerName         string
	EnableMessageFeedback bool
}

// Option customizes a Recorder.
type Option func(*Recorder)

// WithClock overrides the time source used for createdAt/updatedAt.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// WithIDGenerator overrides the document id generator.
func WithIDGenerator(newID func() string) Option {
	return func(r *Recorder) { r.newID = newID }
}

// WithMetrics attaches a metrics observer.
func WithMetrics(m Metrics) Option {
	return func(r *Recorder) { r.metrics = m }
}

// Recorder persists sign-up events. It is immutable after New and safe for
// concurrent use; write ordering is left to the store.
type Recorder struct {
	store   Store
	info    Info
	now     func() time.Time
	newID   func() string
	metrics Metrics
}

// New connects to the configured database and container. On failure it
// returns a *domain.ConnectError and no Recorder.
func New(ctx context.Context, connect Connector, opts Options, options ...Option) (*Recorder, error) {
	if opts.Credential == nil {
		return nil, domain.NewConnectError(domain.KindInvalidCredentials, "signup recorder", fmt.Errorf("no credential supplied"))
	}
	store, err := connect(ctx, domain.Target{
		Endpoint:   opts.Endpoint,
		Credential: opts.Credential,
		Database:   opts.DatabaseName,
		Container:  opts.ContainerName,
	})
	if err != nil {
		if domain.KindOf(err) == domain.KindUnknown {
			return nil, domain.NewConnectError(domain.KindInvalidEndpoint, "signup recorder", err)
		}
		return nil, err
	}
	if store == nil {
		return nil, domain.NewConnectError(domain.KindInvalidEndpoint, "signup recorder", fmt.Errorf("connector returned no store"))
	}
	endpoint := opts.Endpoint
	if er, ok := store.(endpointReporter); ok && endpoint == "" {
		endpoint = er.Endpoint()
	}
	r := &Recorder{
		store: store,
		info: Info{
			Backend:               store.Name(),
			Endpoint:              endpoint,
			DatabaseName:          opts.DatabaseName,
			ContainerName:         opts.ContainerName,
			EnableMessageFeedback: opts.EnableMessageFeedback,
		},
		now:     time.Now,
		newID:   id.New,
		metrics: noopMetrics{},
	}
	for _, o := range options {
		o(r)
	}
	return r, nil
}

// Info returns the recorder's target description.
func (r *Recorder) Info() Info { return r.info }

// Ensure reads the database and container metadata to confirm both are
// reachable. It never fails; problems are reported as (false, message).
// It does not check write permission.
func (r *Recorder) Ensure(ctx context.Context) (bool, string) {
	if r == nil || r.store == nil {
		return false, "document store client not initialized correctly"
	}
	ok, msg := r.ensure(ctx)
	r.metrics.ObserveEnsure(r.info.Backend, ok)
	return ok, msg
}

func (r *Recorder) ensure(ctx context.Context) (bool, string) {
	if err := r.store.ReadDatabase(ctx); err != nil {
		return false, fmt.Sprintf("%s database %s on account %s not found", r.info.Backend, r.info.DatabaseName, r.info.Endpoint)
	}
	if err := r.store.ReadContainer(ctx); err != nil {
		return false, fmt.Sprintf("%s container %s not found", r.info.Backend, r.info.ContainerName)
	}
	return true, fmt.Sprintf("%s client initialized successfully", r.info.Backend)
}

// CreateSignUp builds a new sign-up record and upserts it. It returns the
// stored document, or a nil document when the store response was empty.
// Upsert errors are returned as-is (wrapped); nothing is retried.
func (r *Recorder) CreateSignUp(ctx context.Context, in domain.SignUpInput) (domain.Document, error) {
	now := r.now().UTC()
	rec := &domain.SignUp{
		ID:            r.newID(),
		Type:          domain.SignUpType,
		CreatedAt:     now,
		UpdatedAt:     now,
		UserID:        in.UserID,
		Email:         in.Email,
		EmailVerified: in.EmailVerified,
		Name:          in.Name,
		FamilyName:    in.FamilyName,
		GivenName:     in.GivenName,
		PictureURL:    in.PictureURL,
		UserIP:        in.UserIP,
	}
	doc, err := r.store.Upsert(ctx, rec)
	r.metrics.ObserveSignUp(r.info.Backend, err)
	if err != nil {
		return nil, fmt.Errorf("upsert sign-up %s: %w", rec.ID, err)
	}
	if len(doc) == 0 {
		return nil, nil
	}
	return doc, nil
}

// Close releases the store connection when the backend holds one.
func (r *Recorder) Close(ctx context.Context) error {
	if r == nil || r.store == nil {
		return nil
	}
	if c, ok := r.store.(interface{ Close(context.Context) error }); ok {
		return c.Close(ctx)
	}
	return nil
}
