// Package attendance ties the registry, matcher, ledger and persistence
// together behind the three operator-facing operations: Enroll, Recognize
// and Delete. The operations are mutually exclusive: a single lock guards
// all registry and ledger mutation, acquired for the duration of each
// operation and released on every exit path. Durable writes always happen
// before a success result is returned.
package attendance

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kozaktomas/face-attendance/internal/embedding"
	"github.com/kozaktomas/face-attendance/internal/ledger"
	"github.com/kozaktomas/face-attendance/internal/match"
	"github.com/kozaktomas/face-attendance/internal/persist"
	"github.com/kozaktomas/face-attendance/internal/registry"
)

// Status discriminates the outcome of an operation.
type Status int

const (
	StatusUnknown Status = iota
	// StatusNoFace: the detection stage found no face in the frame.
	StatusNoFace
	// StatusMultipleFaces: the detection stage found more than one face.
	StatusMultipleFaces
	// StatusEnrolled: a new identity was registered.
	StatusEnrolled
	// StatusDuplicate: an already-enrolled identity is within the match
	// threshold of the candidate embedding.
	StatusDuplicate
	// StatusCheckedIn: first recognition of the day, IN time recorded.
	StatusCheckedIn
	// StatusCheckedOut: repeat recognition, OUT time recorded.
	StatusCheckedOut
	// StatusNotRecognized: no enrolled identity within the threshold.
	StatusNotRecognized
	// StatusDeleted: the identity was removed from the registry.
	StatusDeleted
	// StatusNotFound: no identity enrolled under the given name.
	StatusNotFound
)

func (s Status) String() string {
	switch s {
	case StatusNoFace:
		return "no face detected"
	case StatusMultipleFaces:
		return "multiple faces detected"
	case StatusEnrolled:
		return "enrolled"
	case StatusDuplicate:
		return "duplicate"
	case StatusCheckedIn:
		return "checked in"
	case StatusCheckedOut:
		return "checked out"
	case StatusNotRecognized:
		return "not recognized"
	case StatusDeleted:
		return "deleted"
	case StatusNotFound:
		return "not found"
	default:
		return "unknown"
	}
}

// Result is the discriminated outcome of one operation. Identity is set for
// every outcome that resolved to an enrolled person (including duplicate
// conflicts); Distance is the match distance where one was computed.
type Result struct {
	EventID  string
	Status   Status
	Identity *registry.Identity
	Distance float64
}

// Service owns the matching/ledger core for one process.
type Service struct {
	mu        sync.Mutex
	store     *registry.Store
	ledger    *ledger.Ledger
	adapter   *persist.Adapter
	threshold float64
	dim       int
	logger    *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithThreshold overrides the match threshold. The default is
// match.DefaultThreshold (0.5).
func WithThreshold(t float64) Option {
	return func(s *Service) { s.threshold = t }
}

// WithDimension overrides the expected embedding dimensionality. The
// default is embedding.DefaultDim (128).
func WithDimension(d int) Option {
	return func(s *Service) { s.dim = d }
}

// New builds a Service on top of the persistence adapter, loading both
// documents from disk. The ledger file is created with just the prefix
// columns if it does not exist yet.
func New(adapter *persist.Adapter, logger *slog.Logger, opts ...Option) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		adapter:   adapter,
		threshold: match.DefaultThreshold,
		dim:       embedding.DefaultDim,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.store = registry.NewStore(adapter)
	s.store.Seed(adapter.LoadIdentities())
	s.ledger = adapter.LoadLedger()

	if err := adapter.EnsureLedgerFile(); err != nil {
		return nil, fmt.Errorf("failed to initialize ledger file: %w", err)
	}

	logger.Info("attendance core ready",
		"identities", s.store.Len(),
		"ledger_rows", len(s.ledger.Rows),
		"threshold", s.threshold)

	return s, nil
}

// Store exposes the identity registry for read-only listings.
func (s *Service) Store() *registry.Store {
	return s.store
}

// Ledger returns a point-in-time copy of the attendance ledger.
func (s *Service) Ledger() *ledger.Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Clone()
}

// Threshold returns the active match threshold.
func (s *Service) Threshold() float64 {
	return s.threshold
}

// ResolveDetection maps the output of the external detection/extraction
// stage onto a single query embedding. Zero faces and multiple faces are
// reported as pass-through statuses; the matcher itself only ever sees
// exactly one embedding.
func ResolveDetection(vectors []embedding.Vector) (embedding.Vector, Status) {
	switch len(vectors) {
	case 0:
		return nil, StatusNoFace
	case 1:
		return vectors[0], StatusUnknown
	default:
		return nil, StatusMultipleFaces
	}
}

// Enroll registers a new identity. The candidate embedding is first checked
// against every enrolled identity; any existing identity within the
// threshold rejects the enrollment as a duplicate. On success the registry
// is durable before Enroll returns, and one row is appended to the
// enrollment audit log.
func (s *Service) Enroll(name, contact, employID string, emb embedding.Vector) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := Result{EventID: uuid.NewString()}

	if err := s.checkDim(emb); err != nil {
		return res, err
	}

	dup, err := match.FindDuplicate(s.store, emb, s.threshold)
	if err != nil {
		return res, err
	}
	if dup != nil {
		res.Status = StatusDuplicate
		res.Identity = &dup.Identity
		res.Distance = dup.Distance
		s.logger.Info("enrollment rejected, similar face already registered",
			"event_id", res.EventID, "name", name,
			"conflict", dup.Identity.Name, "distance", dup.Distance)
		return res, nil
	}

	id := registry.Identity{
		Name:      name,
		Contact:   contact,
		EmployID:  employID,
		Embedding: emb.Clone(),
	}
	if err := s.store.Enroll(id); err != nil {
		return res, err
	}

	// Secondary record only; a failed append must not fail the enrollment
	// that is already durable in the registry.
	if err := s.adapter.AppendAudit(name, contact, employID); err != nil {
		s.logger.Warn("could not append enrollment audit row",
			"event_id", res.EventID, "name", name, "error", err)
	}

	res.Status = StatusEnrolled
	res.Identity = &id
	s.logger.Info("identity enrolled", "event_id", res.EventID, "name", name)
	return res, nil
}

// Recognize matches the query embedding against all enrolled identities and
// records an attendance event for the best match at time now. The mutated
// ledger is written to disk before the result is returned; a failed write
// leaves the in-memory ledger unchanged.
func (s *Service) Recognize(emb embedding.Vector, now time.Time) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := Result{EventID: uuid.NewString()}

	if err := s.checkDim(emb); err != nil {
		return res, err
	}

	best, err := match.Best(s.store, emb, s.threshold)
	if err != nil {
		return res, err
	}
	if best == nil {
		res.Status = StatusNotRecognized
		s.logger.Info("face not recognized", "event_id", res.EventID)
		return res, nil
	}

	next := s.ledger.Clone()
	state := next.Record(best.Identity.Name, best.Identity.Contact, best.Identity.EmployID, now)
	if err := s.adapter.SaveLedger(next); err != nil {
		return res, err
	}
	s.ledger = next

	res.Identity = &best.Identity
	res.Distance = best.Distance
	if state == ledger.CheckedIn {
		res.Status = StatusCheckedIn
	} else {
		res.Status = StatusCheckedOut
	}
	s.logger.Info("attendance recorded",
		"event_id", res.EventID, "name", best.Identity.Name,
		"distance", best.Distance, "state", state.String(),
		"date", ledger.DateOf(now))
	return res, nil
}

// DeleteCandidate reports which identity DeleteByFace would remove for the
// query embedding, without mutating anything. Used to drive confirmation
// prompts.
func (s *Service) DeleteCandidate(emb embedding.Vector) (*registry.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkDim(emb); err != nil {
		return nil, err
	}
	best, err := match.Best(s.store, emb, s.threshold)
	if err != nil || best == nil {
		return nil, err
	}
	id := best.Identity
	return &id, nil
}

// DeleteByFace removes the enrolled identity best matching the query
// embedding. The attendance ledger is never touched by deletion.
func (s *Service) DeleteByFace(emb embedding.Vector) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := Result{EventID: uuid.NewString()}

	if err := s.checkDim(emb); err != nil {
		return res, err
	}

	best, err := match.Best(s.store, emb, s.threshold)
	if err != nil {
		return res, err
	}
	if best == nil {
		res.Status = StatusNotRecognized
		return res, nil
	}

	if err := s.store.Delete(best.Identity.Name); err != nil {
		return res, err
	}

	res.Status = StatusDeleted
	res.Identity = &best.Identity
	res.Distance = best.Distance
	s.logger.Info("identity deleted", "event_id", res.EventID, "name", best.Identity.Name)
	return res, nil
}

// DeleteByName removes the identity enrolled under the exact name.
func (s *Service) DeleteByName(name string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := Result{EventID: uuid.NewString()}

	id, ok := s.store.Get(name)
	if !ok {
		res.Status = StatusNotFound
		return res, nil
	}

	if err := s.store.Delete(name); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			res.Status = StatusNotFound
			return res, nil
		}
		return res, err
	}

	res.Status = StatusDeleted
	res.Identity = &id
	s.logger.Info("identity deleted", "event_id", res.EventID, "name", name)
	return res, nil
}

func (s *Service) checkDim(emb embedding.Vector) error {
	// Enforced against the configured dimension only when the registry is
	// empty; otherwise the matcher compares against stored vectors and
	// reports mismatches itself.
	if s.store.Len() == 0 && emb.Dim() != s.dim {
		return fmt.Errorf("query has %d dimensions, expected %d: %w",
			emb.Dim(), s.dim, embedding.ErrDimensionMismatch)
	}
	return nil
}
