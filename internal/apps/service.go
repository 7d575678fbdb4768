package apps

import (
	"context"
	"time"

	"go.uber.org/zap"

	"graphgate/pkg/events"
	"graphgate/pkg/export"
	"graphgate/pkg/store"
)

// Service orchestrates application and token lifecycle against the store
// gateway. It holds no mutable state of its own; the store is the only shared
// resource, and each call is independently cancellable through its context.
type Service struct {
	store  store.Gateway
	events events.Emitter
	sink   export.Sink
	log    *zap.SugaredLogger
}

func NewService(gw store.Gateway, em events.Emitter, sink export.Sink, log *zap.SugaredLogger) *Service {
	return &Service{store: gw, events: em, sink: sink, log: log}
}

// CreateApplication writes a new application and returns the in-memory value
// without re-reading it. No duplicate check runs before the insert: with 128
// bits of key entropy a collision is statistically negligible, and the store
// is deliberately not asked to verify.
func (s *Service) CreateApplication(ctx context.Context, label string, persistent bool, auth store.Authentication) (Application, error) {
	s.log.Debugw("creating application", "label", label, "persistent", persistent)

	key, err := GenerateKey(KeyBytes)
	if err != nil {
		return Application{}, err
	}
	app := Application{
		Node:       NodeForKey(key),
		Key:        key,
		Label:      label,
		Persistent: persistent,
	}
	if err := s.store.Insert(ctx, ApplicationFacts(app), auth, store.AuthoritySystem); err != nil {
		return Application{}, err
	}
	applicationsCreated.Inc()
	s.events.Emit(ctx, events.ApplicationCreated{Key: app.Key, Label: app.Label, Persistent: app.Persistent})
	return app, nil
}

// ResolveToken looks up a bearer token by key and returns it with its owning
// application. The revocation check runs after the existence check so a
// revoked key stays distinguishable from one that never existed.
func (s *Service) ResolveToken(ctx context.Context, tokenKey string, auth store.Authentication) (Token, error) {
	s.log.Debugw("resolving token", "key", tokenKey)

	rows, err := s.store.Select(ctx, TokenByKeyQuery(tokenKey), auth, store.AuthorityApplication)
	if err != nil {
		return Token{}, err
	}
	row, err := uniqueBindings(rows, s.log)
	if err != nil {
		return Token{}, err
	}
	if row == nil {
		return Token{}, &UnknownApiKeyError{Key: tokenKey}
	}
	token, err := tokenFromBindings(row, tokenKey, "")
	if err != nil {
		return Token{}, err
	}
	if !token.Active {
		return Token{}, &RevokedApiKeyError{Key: tokenKey}
	}
	return token, nil
}

// ListTokens returns every token of one application. Zero-or-many is valid;
// no uniqueness enforcement.
func (s *Service) ListTokens(ctx context.Context, appKey string, auth store.Authentication) ([]Token, error) {
	s.log.Debugw("listing tokens", "application", appKey)

	rows, err := s.store.Select(ctx, TokensForApplicationQuery(appKey), auth, store.AuthorityApplication)
	if err != nil {
		return nil, err
	}
	out := make([]Token, 0, len(rows))
	for _, row := range rows {
		t, terr := tokenFromBindings(row, "", appKey)
		if terr != nil {
			return nil, terr
		}
		out = append(out, t)
	}
	return out, nil
}

// ListApplications returns all applications, capped at the listing ceiling.
func (s *Service) ListApplications(ctx context.Context, auth store.Authentication) ([]Application, error) {
	s.log.Debugw("listing applications")

	rows, err := s.store.Select(ctx, ApplicationListQuery(), auth, store.AuthoritySystem)
	if err != nil {
		return nil, err
	}
	out := make([]Application, 0, len(rows))
	for _, row := range rows {
		app, aerr := applicationFromBindings(row, "")
		if aerr != nil {
			return nil, aerr
		}
		out = append(out, app)
	}
	return out, nil
}

// IssueToken creates a new token for an existing application and returns it.
func (s *Service) IssueToken(ctx context.Context, appKey, name string, auth store.Authentication) (Token, error) {
	s.log.Debugw("issuing token", "application", appKey, "name", name)

	rows, err := s.store.Select(ctx, ApplicationByKeyQuery(appKey), auth, store.AuthorityApplication)
	if err != nil {
		return Token{}, err
	}
	row, err := uniqueBindings(rows, s.log)
	if err != nil {
		return Token{}, err
	}
	if row == nil {
		return Token{}, &UnknownApplicationError{Key: appKey}
	}
	app, err := applicationFromBindings(row, appKey)
	if err != nil {
		return Token{}, err
	}

	nodeID, err := GenerateKey(KeyBytes)
	if err != nil {
		return Token{}, err
	}
	tokenKey, err := GenerateKey(KeyBytes)
	if err != nil {
		return Token{}, err
	}
	token := Token{
		Node:        NodeForKey(nodeID),
		Key:         tokenKey,
		Label:       name,
		Active:      true,
		IssuedAt:    time.Now().UTC().Truncate(time.Second),
		Application: app,
	}
	if err := s.store.Insert(ctx, TokenFacts(token), auth, store.AuthorityApplication); err != nil {
		return Token{}, err
	}
	tokensIssued.Inc()
	s.events.Emit(ctx, events.TokenCreated{
		ApplicationKey: app.Key,
		TokenKey:       token.Key,
		Label:          token.Label,
		IssuedAt:       token.IssuedAt,
	})
	return token, nil
}

// RevokeToken marks the named token inactive. Revoking an already revoked
// token succeeds; revoking a token that does not exist for the application
// fails with UnknownApiKeyError. The token stays in the store (soft revoke).
func (s *Service) RevokeToken(ctx context.Context, appKey, name string, auth store.Authentication) error {
	s.log.Debugw("revoking token", "application", appKey, "name", name)

	rows, err := s.store.Select(ctx, TokenByNameQuery(appKey, name), auth, store.AuthorityApplication)
	if err != nil {
		return err
	}
	row, err := uniqueBindings(rows, s.log)
	if err != nil {
		return err
	}
	if row == nil {
		return &UnknownApiKeyError{Key: name}
	}
	if err := s.store.Modify(ctx, RevokeTokenModify(appKey, name), auth, store.AuthorityApplication); err != nil {
		return err
	}
	tokensRevoked.Inc()
	return nil
}

// SetConfig overwrites the application's export configuration. The application
// is resolved first so a missing key surfaces as UnknownApplicationError
// instead of a delta that silently attaches to nothing.
func (s *Service) SetConfig(ctx context.Context, appKey, s3Host, s3BucketID, exportFrequency string, auth store.Authentication) error {
	s.log.Debugw("setting application config", "application", appKey)

	rows, err := s.store.Select(ctx, ApplicationByKeyQuery(appKey), auth, store.AuthorityApplication)
	if err != nil {
		return err
	}
	row, err := uniqueBindings(rows, s.log)
	if err != nil {
		return err
	}
	if row == nil {
		return &UnknownApplicationError{Key: appKey}
	}
	return s.store.Modify(ctx, ConfigUpsert(appKey, s3Host, s3BucketID, exportFrequency), auth, store.AuthorityApplication)
}

// GetConfig reads the application's export configuration.
func (s *Service) GetConfig(ctx context.Context, appKey string, auth store.Authentication) (Config, error) {
	s.log.Debugw("reading application config", "application", appKey)

	rows, err := s.store.Select(ctx, ConfigReadQuery(appKey), auth, store.AuthorityApplication)
	if err != nil {
		return Config{}, err
	}
	row, err := uniqueBindings(rows, s.log)
	if err != nil {
		return Config{}, err
	}
	if row == nil {
		return Config{}, &UnknownApplicationError{Key: appKey}
	}
	return configFromBindings(row)
}

// ExportApplication hands the application's payload to the configured sink and
// returns the application key. Sink failures are logged and swallowed: export
// is best-effort by design, unlike application and token writes.
func (s *Service) ExportApplication(ctx context.Context, appKey string, auth store.Authentication) (string, error) {
	s.log.Debugw("exporting application", "application", appKey)

	rows, err := s.store.Select(ctx, ExportReadQuery(appKey), auth, store.AuthorityApplication)
	if err != nil {
		return "", err
	}
	row, err := uniqueBindings(rows, s.log)
	if err != nil {
		return "", err
	}
	if row == nil {
		return "", &UnknownApplicationError{Key: appKey}
	}
	label, err := row.Text(varAppLabel)
	if err != nil {
		return "", err
	}
	host, err := row.Text(varS3Host)
	if err != nil {
		return "", err
	}
	bucket, err := row.Text(varS3Bucket)
	if err != nil {
		return "", err
	}

	// TODO: serialize the application's subgraph; the label stands in until
	// the construct-based dump lands.
	payload := []byte(label)
	if serr := s.sink.Put(ctx, host, bucket, appKey, payload); serr != nil {
		exportFailures.Inc()
		s.log.Errorw("export sink failed", "application", appKey, "err", serr)
	}
	return appKey, nil
}

// GetExport echoes where the given export of an application lives. Pure read,
// no store mutation.
func (s *Service) GetExport(ctx context.Context, appKey, exportID string, auth store.Authentication) (ExportInfo, error) {
	s.log.Debugw("reading export", "application", appKey, "export", exportID)

	rows, err := s.store.Select(ctx, ExportReadQuery(appKey), auth, store.AuthorityApplication)
	if err != nil {
		return ExportInfo{}, err
	}
	row, err := uniqueBindings(rows, s.log)
	if err != nil {
		return ExportInfo{}, err
	}
	if row == nil {
		return ExportInfo{}, &UnknownApplicationError{Key: appKey}
	}
	host, err := row.Text(varS3Host)
	if err != nil {
		return ExportInfo{}, err
	}
	bucket, err := row.Text(varS3Bucket)
	if err != nil {
		return ExportInfo{}, err
	}
	return ExportInfo{S3Host: host, S3BucketID: bucket, S3ObjectID: appKey}, nil
}

// uniqueBindings enforces the exactly-one-or-zero contract of functional-key
// lookups: nil for empty, the row for one, ErrDuplicateRecords for more.
// It never tries to disambiguate.
func uniqueBindings(rows []store.Bindings, log *zap.SugaredLogger) (store.Bindings, error) {
	switch len(rows) {
	case 0:
		return nil, nil
	case 1:
		return rows[0], nil
	}
	duplicateRecords.Inc()
	log.Errorw("found multiple results when expecting exactly one", "rows", len(rows))
	return nil, ErrDuplicateRecords
}

// applicationFromBindings maps a binding row to an Application. key overrides
// the projected appKey var when the query fixed it as input.
func applicationFromBindings(b store.Bindings, key string) (Application, error) {
	node, err := b.IRI(varApp)
	if err != nil {
		return Application{}, err
	}
	if key == "" {
		if key, err = b.Text(varAppKey); err != nil {
			return Application{}, err
		}
	}
	label, err := b.Text(varAppLabel)
	if err != nil {
		return Application{}, err
	}
	persistent, err := b.Bool(varAppPersistent)
	if err != nil {
		return Application{}, err
	}
	return Application{Node: node, Key: key, Label: label, Persistent: persistent}, nil
}

// tokenFromBindings maps a joined token row. Either tokenKey or appKey was
// fixed by the query; the other comes from the row.
func tokenFromBindings(b store.Bindings, tokenKey, appKey string) (Token, error) {
	node, err := b.IRI(varToken)
	if err != nil {
		return Token{}, err
	}
	if tokenKey == "" {
		if tokenKey, err = b.Text(varTokenKey); err != nil {
			return Token{}, err
		}
	}
	label, err := b.Text(varTokenLabel)
	if err != nil {
		return Token{}, err
	}
	issued, err := b.Time(varTokenIssued)
	if err != nil {
		return Token{}, err
	}
	active, err := b.Bool(varTokenActive)
	if err != nil {
		return Token{}, err
	}
	app, err := applicationFromBindings(b, appKey)
	if err != nil {
		return Token{}, err
	}
	return Token{
		Node:        node,
		Key:         tokenKey,
		Label:       label,
		Active:      active,
		IssuedAt:    issued,
		Application: app,
	}, nil
}

// configFromBindings maps a config row.
func configFromBindings(b store.Bindings) (Config, error) {
	label, err := b.Text(varAppLabel)
	if err != nil {
		return Config{}, err
	}
	persistent, err := b.Bool(varAppPersistent)
	if err != nil {
		return Config{}, err
	}
	host, err := b.Text(varS3Host)
	if err != nil {
		return Config{}, err
	}
	bucket, err := b.Text(varS3Bucket)
	if err != nil {
		return Config{}, err
	}
	freq, err := b.Text(varFrequency)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Label:           label,
		Persistent:      persistent,
		S3Host:          host,
		S3BucketID:      bucket,
		ExportFrequency: freq,
	}, nil
}
