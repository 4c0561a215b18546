package domain

import "github.com/perchdesk/perch/internal/schema"

// Default records are what the engine makes of an empty input: they are
// derived from the registered schemas, never restated by hand, so a changed
// default shows up everywhere at once.

// DefaultConfigData returns the latest-version config a fresh install
// starts with.
func DefaultConfigData() map[string]any {
	return defaultObject(KindConfig, LatestConfigVersion)
}

func DefaultBoundsInfo() map[string]any {
	return defaultObject(KindBounds, 1)
}

func DefaultAppState() map[string]any {
	return defaultObject(KindAppState, 1)
}

func DefaultCertificateStore() map[string]any {
	return defaultObject(KindCertificates, 1)
}

func DefaultTrustedOrigins() map[string]any {
	return defaultObject(KindTrustedOrigins, 1)
}

func DefaultAllowedProtocols() []string {
	out, err := schema.Validate([]any{}, allowedProtocols)
	if err != nil {
		return nil
	}
	return toStringSlice(out.([]any))
}

func DefaultArgs() map[string]any {
	return defaultObject(KindArgs, 1)
}

// defaultObject synthesizes a kind's default record by validating an empty
// object. Nil only for unregistered pairs or schemas with required fields,
// which is why there is no DefaultConfigData for V0.
func defaultObject(kind Kind, version int) map[string]any {
	sc, ok := SchemaFor(kind, version)
	if !ok {
		return nil
	}
	out, err := schema.Validate(map[string]any{}, sc)
	if err != nil {
		return nil
	}
	return out.(map[string]any)
}
