package domain

import (
	"math"

	"github.com/perchdesk/perch/internal/logger"
)

// defaultTabName is the single tab every migrated team starts with.
const defaultTabName = "chat"

// DetectConfigVersion reports the schema version a raw config record
// claims. Early builds wrote no version marker: a record carrying a bare
// url string is the original single-server format, anything else is
// treated as the first team-list release.
func DetectConfigVersion(m map[string]any) int {
	if v, ok := intField(m, "version"); ok {
		return v
	}
	if _, ok := m["url"].(string); ok {
		return 0
	}
	return 1
}

// MigrateConfig validates data at its declared version and upgrades it
// stepwise to the latest schema. The result is a valid latest-version
// record, or nil when the input was rejected at its own version.
func (v *Validator) MigrateConfig(data any) map[string]any {
	m, ok := data.(map[string]any)
	if !ok {
		v.log.Warn("config data is not an object, cannot migrate")
		return nil
	}

	version := DetectConfigVersion(m)
	rec := v.ConfigData(version, m)
	if rec == nil {
		return nil
	}
	if version == LatestConfigVersion {
		return rec
	}

	v.log.Info("migrating config",
		logger.Int("from", version),
		logger.Int("to", LatestConfigVersion))

	for version < LatestConfigVersion {
		switch version {
		case 0:
			rec = UpgradeV0toV1(rec)
		case 1:
			rec = UpgradeV1toV2(rec)
		case 2:
			rec = UpgradeV2toV3(rec)
		}
		version++
	}

	out := v.ConfigData(LatestConfigVersion, rec)
	if out == nil {
		// upgrades are total on validated input, so this is a bug
		v.log.Error("migrated config failed validation at the latest version")
	}
	return out
}

// UpgradeV0toV1 turns the single-server format into a one-entry team list
// merged over the V1 defaults.
func UpgradeV0toV1(v0 map[string]any) map[string]any {
	out := defaultObject(KindConfig, 1)
	out["teams"] = []any{map[string]any{
		"name": "Primary server",
		"url":  v0["url"],
	}}
	return out
}

// UpgradeV1toV2 assigns each team its list position as the explicit order
// and fills the fields V2 introduced.
func UpgradeV1toV2(v1 map[string]any) map[string]any {
	out := defaultObject(KindConfig, 2)
	for k, val := range v1 {
		out[k] = val
	}
	out["version"] = 2

	teams, _ := v1["teams"].([]any)
	upgraded := make([]any, 0, len(teams))
	for i, raw := range teams {
		team, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		t := copyRecord(team)
		t["order"] = i
		upgraded = append(upgraded, t)
	}
	out["teams"] = upgraded
	return out
}

// UpgradeV2toV3 restructures teams to carry tab state: every team starts
// with a single open default tab and its tab selection reset.
func UpgradeV2toV3(v2 map[string]any) map[string]any {
	out := defaultObject(KindConfig, 3)
	for k, val := range v2 {
		out[k] = val
	}
	out["version"] = 3
	out["lastActiveTeam"] = 0

	teams, _ := v2["teams"].([]any)
	upgraded := make([]any, 0, len(teams))
	for _, raw := range teams {
		team, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		t := copyRecord(team)
		t["lastActiveTab"] = 0
		t["tabs"] = []any{map[string]any{
			"name":     defaultTabName,
			"order":    0,
			"isClosed": false,
		}}
		upgraded = append(upgraded, t)
	}
	out["teams"] = upgraded
	return out
}

func intField(m map[string]any, key string) (int, bool) {
	switch n := m[key].(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if !math.IsInf(n, 0) && n == math.Trunc(n) {
			return int(n), true
		}
	}
	return 0, false
}
