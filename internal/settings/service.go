package settings

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/perchdesk/perch/internal/domain"
	"github.com/perchdesk/perch/internal/logger"
	"github.com/perchdesk/perch/internal/schema"
	"github.com/perchdesk/perch/internal/store/file"
)

// FieldUpdate is one element of a settings batch: set one field of one
// record kind. A nil Value removes the field so the schema default
// applies on re-validation.
type FieldUpdate struct {
	Kind  domain.Kind `json:"kind"`
	Key   string      `json:"key"`
	Value any         `json:"value"`
}

// Service holds the live, validated state of every record kind. It is the
// only writer of the store: every mutation re-validates the whole target
// record and persists before the in-memory copy is swapped.
type Service struct {
	mu        sync.RWMutex
	store     *file.Store
	validator *domain.Validator
	logger    logger.Logger

	config           map[string]any
	bounds           map[string]any
	appState         map[string]any
	certificates     map[string]any
	trustedOrigins   map[string]any
	allowedProtocols []string
	lastLoad         time.Time
}

// NewService creates an empty service. Call Load before serving reads.
func NewService(store *file.Store, v *domain.Validator, log logger.Logger) *Service {
	return &Service{
		store:     store,
		validator: v,
		logger:    log,
	}
}

// Load pulls every record kind through the store. The store already
// degrades broken files to defaults, so Load cannot fail.
func (s *Service) Load() {
	config := s.store.LoadConfig()
	bounds := s.store.LoadBounds()
	appState := s.store.LoadAppState()
	certificates := s.store.LoadCertificates()
	trustedOrigins := s.store.LoadTrustedOrigins()
	allowedProtocols := s.store.LoadAllowedProtocols()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.config = config
	s.bounds = bounds
	s.appState = appState
	s.certificates = certificates
	s.trustedOrigins = trustedOrigins
	s.allowedProtocols = allowedProtocols
	s.lastLoad = time.Now()
}

// LastLoad returns the timestamp of the last full load.
func (s *Service) LastLoad() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastLoad
}

// ConfigData returns a snapshot of the current config record.
func (s *Service) ConfigData() map[string]any {
	return s.snapshot(&s.config)
}

// Config returns the current config decoded into its typed form.
func (s *Service) Config() (*domain.Config, error) {
	return domain.ConfigFromMap(s.ConfigData())
}

// ConfigJSON renders the current config record as indented JSON.
func (s *Service) ConfigJSON() ([]byte, error) {
	data, err := json.MarshalIndent(s.ConfigData(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Bounds returns a snapshot of the saved window geometry.
func (s *Service) Bounds() map[string]any {
	return s.snapshot(&s.bounds)
}

// AppState returns a snapshot of the window runtime state.
func (s *Service) AppState() map[string]any {
	return s.snapshot(&s.appState)
}

// Certificates returns a snapshot of the pinned certificate store.
func (s *Service) Certificates() map[string]any {
	return s.snapshot(&s.certificates)
}

// TrustedOrigins returns a snapshot of the per-origin permission grants.
func (s *Service) TrustedOrigins() map[string]any {
	return s.snapshot(&s.trustedOrigins)
}

// AllowedProtocols returns a snapshot of the external scheme allowlist.
func (s *Service) AllowedProtocols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.allowedProtocols))
	copy(out, s.allowedProtocols)
	return out
}

// ─────────────────────────────────────────────────────────────────
// Field-update batches
// ─────────────────────────────────────────────────────────────────

// Apply runs a batch of field updates. Updates are grouped by kind and
// applied in order onto a copy of each current record, every touched
// record is re-validated as a whole, and a single structural failure
// rejects the entire batch. Validated records are then persisted and
// swapped in; the updated records are returned by kind.
func (s *Service) Apply(updates []FieldUpdate) (map[domain.Kind]map[string]any, error) {
	if len(updates) == 0 {
		return map[domain.Kind]map[string]any{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Group by kind, keeping first-appearance order for persistence.
	order := make([]domain.Kind, 0, 3)
	grouped := make(map[domain.Kind]map[string]any)
	for _, u := range updates {
		candidate, ok := grouped[u.Kind]
		if !ok {
			current, err := s.recordForUpdate(u.Kind)
			if err != nil {
				return nil, err
			}
			candidate = current
			grouped[u.Kind] = candidate
			order = append(order, u.Kind)
		}
		if u.Value == nil {
			delete(candidate, u.Key)
		} else {
			candidate[u.Key] = u.Value
		}
	}

	// Validate every touched kind before persisting anything, so a
	// structurally broken batch changes no state at all.
	validated := make(map[domain.Kind]map[string]any, len(grouped))
	for _, kind := range order {
		rec := s.validateRecord(kind, grouped[kind])
		if rec == nil {
			s.logger.Warn("settings batch rejected",
				logger.String("kind", string(kind)))
			return nil, fmt.Errorf("update batch rejected: %s record failed validation", kind)
		}
		validated[kind] = rec
	}

	for _, kind := range order {
		if err := s.persistRecord(kind, validated[kind]); err != nil {
			return nil, fmt.Errorf("failed to persist %s record: %w", kind, err)
		}
		s.swapRecord(kind, validated[kind])
	}

	out := make(map[domain.Kind]map[string]any, len(validated))
	for kind, rec := range validated {
		out[kind] = schema.Clone(rec).(map[string]any)
	}
	return out, nil
}

// recordForUpdate returns a deep copy of the current record for the kinds
// that accept per-field updates. Map-shaped and list-shaped kinds have
// dedicated mutation methods instead.
func (s *Service) recordForUpdate(kind domain.Kind) (map[string]any, error) {
	switch kind {
	case domain.KindConfig:
		return schema.Clone(s.config).(map[string]any), nil
	case domain.KindBounds:
		return schema.Clone(s.bounds).(map[string]any), nil
	case domain.KindAppState:
		return schema.Clone(s.appState).(map[string]any), nil
	default:
		return nil, fmt.Errorf("field updates are not supported for kind %q", kind)
	}
}

func (s *Service) validateRecord(kind domain.Kind, candidate map[string]any) map[string]any {
	switch kind {
	case domain.KindConfig:
		return s.validator.ConfigData(domain.LatestConfigVersion, candidate)
	case domain.KindBounds:
		return s.validator.BoundsInfo(candidate)
	case domain.KindAppState:
		return s.validator.AppState(candidate)
	default:
		return nil
	}
}

func (s *Service) persistRecord(kind domain.Kind, rec map[string]any) error {
	switch kind {
	case domain.KindConfig:
		return s.store.SaveConfig(rec)
	case domain.KindBounds:
		return s.store.SaveBounds(rec)
	case domain.KindAppState:
		return s.store.SaveAppState(rec)
	default:
		return fmt.Errorf("no store resource for kind %q", kind)
	}
}

func (s *Service) swapRecord(kind domain.Kind, rec map[string]any) {
	switch kind {
	case domain.KindConfig:
		s.config = rec
	case domain.KindBounds:
		s.bounds = rec
	case domain.KindAppState:
		s.appState = rec
	}
}

// ─────────────────────────────────────────────────────────────────
// Full-record replacement
// ─────────────────────────────────────────────────────────────────

// SetBounds validates and persists a full window-geometry record.
func (s *Service) SetBounds(m map[string]any) error {
	return s.setRecord(domain.KindBounds, m)
}

// SetAppState validates and persists a full window-state record.
func (s *Service) SetAppState(m map[string]any) error {
	return s.setRecord(domain.KindAppState, m)
}

func (s *Service) setRecord(kind domain.Kind, m map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.validateRecord(kind, m)
	if rec == nil {
		return fmt.Errorf("%s record failed validation", kind)
	}
	if err := s.persistRecord(kind, rec); err != nil {
		return err
	}
	s.swapRecord(kind, rec)
	return nil
}

// ReplaceConfig swaps in an externally loaded, already validated config
// record. It reports whether the live record actually changed; the disk
// copy is the source here, so nothing is persisted.
func (s *Service) ReplaceConfig(m map[string]any) bool {
	if m == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if reflect.DeepEqual(s.config, m) {
		return false
	}
	s.config = schema.Clone(m).(map[string]any)
	s.lastLoad = time.Now()
	return true
}

// SeedProvisionedTeams appends admin-provisioned servers whose URL is not
// in the config yet. The merged record is re-validated and persisted; a
// provision set that breaks validation leaves the user's config alone.
// Returns how many servers were added.
func (s *Service) SeedProvisionedTeams(teams []map[string]any) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidate := schema.Clone(s.config).(map[string]any)
	existing, _ := candidate["teams"].([]any)

	known := make(map[string]bool, len(existing))
	for _, raw := range existing {
		if team, ok := raw.(map[string]any); ok {
			if u, ok := team["url"].(string); ok {
				known[u] = true
			}
		}
	}

	added := 0
	for _, team := range teams {
		u, _ := team["url"].(string)
		if u == "" || known[u] {
			continue
		}
		entry := schema.Clone(team).(map[string]any)
		entry["order"] = len(existing)
		existing = append(existing, entry)
		known[u] = true
		added++
	}
	if added == 0 {
		return 0, nil
	}
	candidate["teams"] = existing

	rec := s.validator.ConfigData(domain.LatestConfigVersion, candidate)
	if rec == nil {
		return 0, fmt.Errorf("config with provisioned servers failed validation")
	}
	if err := s.store.SaveConfig(rec); err != nil {
		return 0, err
	}
	s.config = rec
	return added, nil
}

// ─────────────────────────────────────────────────────────────────
// Trust surface
// ─────────────────────────────────────────────────────────────────

// SetOriginPermissions grants or updates the permission record for one
// origin. The whole trusted-origins record is re-validated before the
// change is persisted.
func (s *Service) SetOriginPermissions(origin string, perms map[string]any) error {
	if !domain.IsValidURI(origin) {
		return fmt.Errorf("%q is not a valid origin", origin)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	candidate := schema.Clone(s.trustedOrigins).(map[string]any)
	candidate[origin] = perms

	rec := s.validator.TrustedOrigins(candidate)
	if rec == nil {
		return fmt.Errorf("%s record failed validation", domain.KindTrustedOrigins)
	}
	if err := s.store.SaveTrustedOrigins(rec); err != nil {
		return err
	}
	s.trustedOrigins = rec
	s.logger.Info("origin permissions updated", logger.String("origin", origin))
	return nil
}

// AddCertificate pins a certificate for one origin.
func (s *Service) AddCertificate(origin, data, issuerName string) error {
	if !domain.IsValidURI(origin) {
		return fmt.Errorf("%q is not a valid origin", origin)
	}
	if data == "" || issuerName == "" {
		return fmt.Errorf("certificate data and issuer name are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	candidate := schema.Clone(s.certificates).(map[string]any)
	candidate[origin] = map[string]any{
		"data":       data,
		"issuerName": issuerName,
	}

	rec := s.validator.CertificateStore(candidate)
	if rec == nil {
		return fmt.Errorf("%s record failed validation", domain.KindCertificates)
	}
	if err := s.store.SaveCertificates(rec); err != nil {
		return err
	}
	s.certificates = rec
	s.logger.Info("certificate pinned", logger.String("origin", origin))
	return nil
}

// AddAllowedProtocol adds one scheme to the external protocol allowlist.
// Adding a scheme that is already listed is a no-op.
func (s *Service) AddAllowedProtocol(scheme string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.allowedProtocols {
		if p == scheme {
			return nil
		}
	}

	candidate := make([]any, 0, len(s.allowedProtocols)+1)
	for _, p := range s.allowedProtocols {
		candidate = append(candidate, p)
	}
	candidate = append(candidate, scheme)

	list := s.validator.AllowedProtocols(candidate)
	if list == nil {
		return fmt.Errorf("%q is not a valid protocol scheme", scheme)
	}
	if err := s.store.SaveAllowedProtocols(list); err != nil {
		return err
	}
	s.allowedProtocols = list
	s.logger.Info("protocol allowed", logger.String("scheme", scheme))
	return nil
}

// snapshot deep-copies one of the guarded record fields under RLock.
func (s *Service) snapshot(field *map[string]any) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if *field == nil {
		return map[string]any{}
	}
	return schema.Clone(*field).(map[string]any)
}
