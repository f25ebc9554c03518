package store

import (
	"bytes"
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	oerrors "github.com/matzehuels/obvious/pkg/errors"
	dataio "github.com/matzehuels/obvious/pkg/io"
	"github.com/matzehuels/obvious/pkg/network"
	"github.com/matzehuels/obvious/pkg/observability"
	"github.com/matzehuels/obvious/pkg/table"
)

// saveConcurrency bounds the encoders run by SaveTables.
const saveConcurrency = 4

// Info describes a stored snapshot.
type Info struct {
	Kind    string    `json:"kind"`
	Name    string    `json:"name"`
	Hash    string    `json:"hash"`
	Size    int       `json:"size"`
	SavedAt time.Time `json:"saved_at"`
}

// envelope is the stored form: metadata plus the JSON document from pkg/io.
type envelope struct {
	Info
	Data json.RawMessage `json:"data"`
}

// Snapshots saves and restores tables, networks and trees in a [Cache].
// Snapshots are JSON documents that keep row ids, so references between
// tables survive a save and load.
//
// The zero value is not usable - use NewSnapshots.
type Snapshots struct {
	cache  Cache
	keyer  Keyer
	ttl    time.Duration
	logger *log.Logger
	now    func() time.Time
}

// Option configures [Snapshots].
type Option func(*Snapshots)

// WithKeyer sets the key scheme. The default is [DefaultKeyer].
func WithKeyer(k Keyer) Option {
	return func(s *Snapshots) {
		if k != nil {
			s.keyer = k
		}
	}
}

// WithTTL sets the expiry of saved snapshots. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option { return func(s *Snapshots) { s.ttl = ttl } }

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Snapshots) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSnapshots creates a snapshot service over cache.
func NewSnapshots(cache Cache, opts ...Option) *Snapshots {
	s := &Snapshots{
		cache:  cache,
		keyer:  NewDefaultKeyer(),
		logger: log.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cache returns the underlying cache.
func (s *Snapshots) Cache() Cache { return s.cache }

// Key returns the cache key of a snapshot.
func (s *Snapshots) Key(kind, name string) string { return s.keyer.Key(kind, name) }

// SaveTable stores t under name, replacing any previous snapshot.
func (s *Snapshots) SaveTable(ctx context.Context, name string, t *table.Table) (Info, error) {
	var buf bytes.Buffer
	if err := dataio.WriteTable(t, &buf); err != nil {
		return Info{}, err
	}
	return s.save(ctx, KindTable, name, buf.Bytes())
}

// SaveNetwork stores nw under name.
func (s *Snapshots) SaveNetwork(ctx context.Context, name string, nw *network.Network) (Info, error) {
	var buf bytes.Buffer
	if err := dataio.WriteNetwork(nw, &buf); err != nil {
		return Info{}, err
	}
	return s.save(ctx, KindNetwork, name, buf.Bytes())
}

// SaveTree stores tr under name. Tree snapshots are validated as forests
// when loaded.
func (s *Snapshots) SaveTree(ctx context.Context, name string, tr *network.Tree) (Info, error) {
	var buf bytes.Buffer
	if err := dataio.WriteNetwork(tr.Network, &buf); err != nil {
		return Info{}, err
	}
	return s.save(ctx, KindTree, name, buf.Bytes())
}

// SaveTables stores several tables concurrently. It returns the infos in
// name order, or the first error; tables saved before the error stay
// saved. The tables must not be modified while SaveTables runs.
func (s *Snapshots) SaveTables(ctx context.Context, tables map[string]*table.Table) ([]Info, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(saveConcurrency)

	var mu sync.Mutex
	infos := make([]Info, 0, len(tables))
	for name, t := range tables {
		g.Go(func() error {
			info, err := s.SaveTable(ctx, name, t)
			if err != nil {
				return err
			}
			mu.Lock()
			infos = append(infos, info)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	slices.SortFunc(infos, func(a, b Info) int { return strings.Compare(a.Name, b.Name) })
	return infos, nil
}

// LoadTable restores the table saved under name. A missing snapshot is a
// NOT_FOUND error.
func (s *Snapshots) LoadTable(ctx context.Context, name string, opts ...table.Option) (*table.Table, error) {
	env, err := s.load(ctx, KindTable, name)
	if err != nil {
		return nil, err
	}
	return dataio.ReadTable(bytes.NewReader(env.Data), opts...)
}

// LoadNetwork restores the network saved under name.
func (s *Snapshots) LoadNetwork(ctx context.Context, name string, opts ...network.Option) (*network.Network, error) {
	env, err := s.load(ctx, KindNetwork, name)
	if err != nil {
		return nil, err
	}
	return dataio.ReadNetwork(bytes.NewReader(env.Data), opts...)
}

// LoadTree restores the tree saved under name.
func (s *Snapshots) LoadTree(ctx context.Context, name string, opts ...network.Option) (*network.Tree, error) {
	env, err := s.load(ctx, KindTree, name)
	if err != nil {
		return nil, err
	}
	return dataio.ReadTree(bytes.NewReader(env.Data), opts...)
}

// Stat returns the metadata of a stored snapshot without decoding it.
func (s *Snapshots) Stat(ctx context.Context, kind, name string) (Info, error) {
	env, err := s.load(ctx, kind, name)
	if err != nil {
		return Info{}, err
	}
	return env.Info, nil
}

// Delete removes a snapshot. Deleting a missing snapshot is not an error.
func (s *Snapshots) Delete(ctx context.Context, kind, name string) error {
	if err := s.check(kind, name); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, s.Key(kind, name)); err != nil {
		return oerrors.Wrap(oerrors.ErrCodeInternal, err, "delete %s %s", kind, name)
	}
	s.logger.Debug("snapshot deleted", "kind", kind, "name", name)
	return nil
}

func (s *Snapshots) check(kind, name string) error {
	if err := validKind(kind); err != nil {
		return err
	}
	return oerrors.ValidateKey(name)
}

func (s *Snapshots) save(ctx context.Context, kind, name string, doc []byte) (Info, error) {
	if err := s.check(kind, name); err != nil {
		return Info{}, err
	}
	env := envelope{
		Info: Info{
			Kind:    kind,
			Name:    name,
			Hash:    ContentHash(doc),
			Size:    len(doc),
			SavedAt: s.now().UTC(),
		},
		Data: doc,
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return Info{}, oerrors.Wrap(oerrors.ErrCodeInternal, err, "encode snapshot")
	}
	if err := s.cache.Set(ctx, s.Key(kind, name), raw, s.ttl); err != nil {
		return Info{}, oerrors.Wrap(oerrors.ErrCodeInternal, err, "save %s %s", kind, name)
	}
	observability.Store().OnSnapshotSave(ctx, kind, len(raw))
	s.logger.Debug("snapshot saved", "kind", kind, "name", name, "size", len(raw), "hash", env.Hash)
	return env.Info, nil
}

func (s *Snapshots) load(ctx context.Context, kind, name string) (*envelope, error) {
	if err := s.check(kind, name); err != nil {
		return nil, err
	}
	raw, ok, err := s.cache.Get(ctx, s.Key(kind, name))
	if err != nil {
		return nil, oerrors.Wrap(oerrors.ErrCodeInternal, err, "load %s %s", kind, name)
	}
	if !ok {
		observability.Store().OnSnapshotMiss(ctx, kind)
		return nil, oerrors.New(oerrors.ErrCodeNotFound, "no %s snapshot named %q", kind, name)
	}
	observability.Store().OnSnapshotHit(ctx, kind)

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, oerrors.Wrap(oerrors.ErrCodeInvalidInput, err, "decode %s %s", kind, name)
	}
	if env.Kind != kind {
		return nil, oerrors.New(oerrors.ErrCodeInvalidInput, "snapshot %q holds a %s, not a %s", name, env.Kind, kind)
	}
	return &env, nil
}
