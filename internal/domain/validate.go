package domain

import (
	"github.com/perchdesk/perch/internal/logger"
	"github.com/perchdesk/perch/internal/schema"
)

// Validator checks untrusted persisted records against their registered
// schemas. Every method returns the normalized record, or nil when the
// input cannot be trusted; the reason is logged, never propagated. Callers
// treat nil as "use defaults" or "reject the load", never as a crash.
//
// Validation is a pure transformation of the input plus diagnostic logging.
// A Validator holds no state between calls and is safe for concurrent use.
type Validator struct {
	log logger.Logger
}

func NewValidator(log logger.Logger) *Validator {
	return &Validator{log: log}
}

// ConfigData validates a config record against the schema for its declared
// version. For the team-list versions the known-risky fields are sanitized
// first: teams with unrecoverable URLs are dropped one by one, and a broken
// spellCheckerURL is cleared. The schema pass stays all-or-nothing.
func (v *Validator) ConfigData(version int, data any) map[string]any {
	sc, ok := SchemaFor(KindConfig, version)
	if !ok {
		v.log.Error("no config schema registered",
			logger.Int("version", version))
		return nil
	}
	if m, ok := data.(map[string]any); ok && version >= 1 {
		data = v.sanitizeConfig(m, version)
	}
	return v.asObject(KindConfig, sc, data)
}

// BoundsInfo validates a window geometry record.
func (v *Validator) BoundsInfo(data any) map[string]any {
	return v.validateKind(KindBounds, data)
}

// AppState validates the application state record.
func (v *Validator) AppState(data any) map[string]any {
	return v.validateKind(KindAppState, data)
}

// CertificateStore validates the certificate trust cache. Entries keyed by
// something that is not a URI are stripped, not fatal.
func (v *Validator) CertificateStore(data any) map[string]any {
	return v.validateKind(KindCertificates, data)
}

// TrustedOrigins validates the per-origin permission map.
func (v *Validator) TrustedOrigins(data any) map[string]any {
	return v.validateKind(KindTrustedOrigins, data)
}

// OriginPermissions validates a single origin's permission record, the unit
// a renderer submits when asking to change one origin.
func (v *Validator) OriginPermissions(data any) map[string]any {
	return v.asObject(KindTrustedOrigins, originPermissions, data)
}

// AllowedProtocols validates the list of protocol schemes the shell may
// hand off to the OS.
func (v *Validator) AllowedProtocols(data any) []string {
	sc, _ := SchemaFor(KindAllowedProtocols, 1)
	out, err := schema.Validate(data, sc)
	if err != nil {
		v.log.Warn("record rejected",
			logger.String("kind", string(KindAllowedProtocols)),
			logger.Error(err))
		return nil
	}
	return toStringSlice(out.([]any))
}

// Args validates process launch options. All fields are optional, so an
// empty record is a valid result; only a non-record input is rejected.
func (v *Validator) Args(data any) map[string]any {
	return v.validateKind(KindArgs, data)
}

// validateKind runs the registered schema for an unversioned record kind.
func (v *Validator) validateKind(kind Kind, data any) map[string]any {
	sc, ok := SchemaFor(kind, 1)
	if !ok {
		v.log.Error("no schema registered", logger.String("kind", string(kind)))
		return nil
	}
	return v.asObject(kind, sc, data)
}

func (v *Validator) asObject(kind Kind, sc schema.Field, data any) map[string]any {
	out, err := schema.Validate(data, sc)
	if err != nil {
		v.log.Warn("record rejected",
			logger.String("kind", string(kind)),
			logger.Error(err))
		return nil
	}
	return out.(map[string]any)
}

// sanitizeConfig applies the field-level repairs that must not fail the
// whole record. It works on copies; the caller's record is left alone.
func (v *Validator) sanitizeConfig(m map[string]any, version int) map[string]any {
	out := copyRecord(m)
	if teams, ok := out["teams"].([]any); ok && len(teams) > 0 {
		out["teams"] = v.sanitizeTeams(teams)
	}
	if version >= 2 {
		if raw, ok := out["spellCheckerURL"].(string); ok && !IsValidURL(raw) {
			v.log.Warn("removing invalid spellCheckerURL, falling back to bundled dictionaries",
				logger.String("url", raw))
			delete(out, "spellCheckerURL")
		}
	}
	return out
}

// sanitizeTeams drops every team whose URL is unrecoverable after
// CleanURL, keeping the survivors in their original relative order. One
// bad server entry must not block the user's other servers.
func (v *Validator) sanitizeTeams(teams []any) []any {
	out := make([]any, 0, len(teams))
	for i, raw := range teams {
		team, ok := raw.(map[string]any)
		if !ok {
			v.log.Warn("dropping malformed team entry",
				logger.Int("index", i))
			continue
		}
		rawURL, _ := team["url"].(string)
		cleaned := CleanURL(rawURL)
		if !IsValidURL(cleaned) {
			v.log.Warn("dropping team with invalid url",
				logger.Int("index", i),
				logger.String("url", rawURL))
			continue
		}
		if cleaned != rawURL {
			repaired := copyRecord(team)
			repaired["url"] = cleaned
			out = append(out, repaired)
			continue
		}
		out = append(out, team)
	}
	return out
}

func toStringSlice(in []any) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// copyRecord is a shallow copy, enough for replacing individual top-level
// fields without touching the caller's map.
func copyRecord(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
