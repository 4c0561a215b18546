package domain

import (
	"regexp"

	"github.com/perchdesk/perch/internal/schema"
)

// Kind identifies one persisted record shape.
type Kind string

const (
	KindConfig           Kind = "config"
	KindBounds           Kind = "bounds"
	KindAppState         Kind = "app-state"
	KindCertificates     Kind = "certificates"
	KindTrustedOrigins   Kind = "trusted-origins"
	KindAllowedProtocols Kind = "allowed-protocols"
	KindArgs             Kind = "args"
)

// LatestConfigVersion is the config schema version new installs write.
const LatestConfigVersion = 3

// The config schemas below restate their shared fields on purpose. Each
// version's contract has to stay self-contained and independently
// auditable: touching V3 must not be able to change what V1 accepts.
// Composition is limited to constraint helpers (minInt, IsValidURI).

func minInt(n int) *int { return &n }

var protocolPattern = regexp.MustCompile(`(?i)^[a-z-]+:$`)

// configV0 is the pre-team single-server format. No defaulting: a V0 file
// either names its server or it is worthless.
var configV0 = schema.Field{
	Type: schema.TypeObject,
	Fields: []schema.Field{
		{Name: "url", Type: schema.TypeString, Required: true},
	},
}

var configV1 = schema.Field{
	Type: schema.TypeObject,
	Fields: []schema.Field{
		{Name: "version", Type: schema.TypeInt, Min: minInt(1), Default: 1},
		{Name: "teams", Type: schema.TypeArray, Default: []any{}, Elem: &schema.Field{
			Type: schema.TypeObject,
			Fields: []schema.Field{
				{Name: "name", Type: schema.TypeString, Required: true, NonEmpty: true},
				{Name: "url", Type: schema.TypeString, Required: true},
			},
		}},
		{Name: "showTrayIcon", Type: schema.TypeBool, Default: false},
		{Name: "trayIconTheme", Type: schema.TypeString, Enum: []any{"light", "dark"}, Default: "light"},
		{Name: "minimizeToTray", Type: schema.TypeBool, Default: false},
		{Name: "notifications", Type: schema.TypeObject, Fields: []schema.Field{
			{Name: "flashWindow", Type: schema.TypeInt, Enum: []any{0, 2}, Default: 0},
			{Name: "bounceIcon", Type: schema.TypeBool, Default: false},
			{Name: "bounceIconType", Type: schema.TypeString, Enum: []any{"informational", "critical", ""}, Default: "informational"},
		}},
		{Name: "showUnreadBadge", Type: schema.TypeBool, Default: true},
		{Name: "useSpellChecker", Type: schema.TypeBool, Default: true},
		{Name: "enableHardwareAcceleration", Type: schema.TypeBool, Default: true},
		{Name: "autostart", Type: schema.TypeBool, Default: true},
	},
}

var configV2 = schema.Field{
	Type: schema.TypeObject,
	Fields: []schema.Field{
		{Name: "version", Type: schema.TypeInt, Min: minInt(2), Default: 2},
		{Name: "teams", Type: schema.TypeArray, Default: []any{}, Elem: &schema.Field{
			Type: schema.TypeObject,
			Fields: []schema.Field{
				{Name: "name", Type: schema.TypeString, Required: true, NonEmpty: true},
				{Name: "url", Type: schema.TypeString, Required: true},
				{Name: "order", Type: schema.TypeInt, Min: minInt(0)},
			},
		}},
		{Name: "showTrayIcon", Type: schema.TypeBool, Default: false},
		{Name: "trayIconTheme", Type: schema.TypeString, Enum: []any{"light", "dark"}, Default: "light"},
		{Name: "minimizeToTray", Type: schema.TypeBool, Default: false},
		{Name: "notifications", Type: schema.TypeObject, Fields: []schema.Field{
			{Name: "flashWindow", Type: schema.TypeInt, Enum: []any{0, 2}, Default: 0},
			{Name: "bounceIcon", Type: schema.TypeBool, Default: false},
			{Name: "bounceIconType", Type: schema.TypeString, Enum: []any{"informational", "critical", ""}, Default: "informational"},
		}},
		{Name: "showUnreadBadge", Type: schema.TypeBool, Default: true},
		{Name: "useSpellChecker", Type: schema.TypeBool, Default: true},
		{Name: "spellCheckerURL", Type: schema.TypeString},
		{Name: "enableHardwareAcceleration", Type: schema.TypeBool, Default: true},
		{Name: "autostart", Type: schema.TypeBool, Default: true},
		{Name: "darkMode", Type: schema.TypeBool, Default: false},
		{Name: "downloadLocation", Type: schema.TypeString, Default: ""},
	},
}

var configV3 = schema.Field{
	Type: schema.TypeObject,
	Fields: []schema.Field{
		{Name: "version", Type: schema.TypeInt, Min: minInt(3), Default: 3},
		{Name: "teams", Type: schema.TypeArray, Default: []any{}, Elem: &schema.Field{
			Type: schema.TypeObject,
			Fields: []schema.Field{
				{Name: "name", Type: schema.TypeString, Required: true, NonEmpty: true},
				{Name: "url", Type: schema.TypeString, Required: true},
				{Name: "order", Type: schema.TypeInt, Min: minInt(0)},
				{Name: "lastActiveTab", Type: schema.TypeInt, Min: minInt(0), Default: 0},
				{Name: "tabs", Type: schema.TypeArray, Default: []any{}, Elem: &schema.Field{
					Type: schema.TypeObject,
					Fields: []schema.Field{
						{Name: "name", Type: schema.TypeString, Required: true},
						{Name: "order", Type: schema.TypeInt, Min: minInt(0)},
						{Name: "isClosed", Type: schema.TypeBool, Default: false},
					},
				}},
			},
		}},
		{Name: "showTrayIcon", Type: schema.TypeBool, Default: false},
		{Name: "trayIconTheme", Type: schema.TypeString, Enum: []any{"light", "dark"}, Default: "light"},
		{Name: "minimizeToTray", Type: schema.TypeBool, Default: false},
		{Name: "notifications", Type: schema.TypeObject, Fields: []schema.Field{
			{Name: "flashWindow", Type: schema.TypeInt, Enum: []any{0, 2}, Default: 0},
			{Name: "bounceIcon", Type: schema.TypeBool, Default: false},
			{Name: "bounceIconType", Type: schema.TypeString, Enum: []any{"informational", "critical", ""}, Default: "informational"},
		}},
		{Name: "showUnreadBadge", Type: schema.TypeBool, Default: true},
		{Name: "useSpellChecker", Type: schema.TypeBool, Default: true},
		{Name: "spellCheckerURL", Type: schema.TypeString},
		{Name: "enableHardwareAcceleration", Type: schema.TypeBool, Default: true},
		{Name: "autostart", Type: schema.TypeBool, Default: true},
		{Name: "darkMode", Type: schema.TypeBool, Default: false},
		{Name: "downloadLocation", Type: schema.TypeString, Default: ""},
		{Name: "lastActiveTeam", Type: schema.TypeInt, Min: minInt(0), Default: 0},
	},
}

// boundsInfo is the window geometry record. The width/height floors are
// constraints, not clamps: a persisted silly size voids the whole record
// and the window comes back at its default geometry.
var boundsInfo = schema.Field{
	Type: schema.TypeObject,
	Fields: []schema.Field{
		{Name: "x", Type: schema.TypeInt, Default: 0},
		{Name: "y", Type: schema.TypeInt, Default: 0},
		{Name: "width", Type: schema.TypeInt, Min: minInt(400), Default: 1000},
		{Name: "height", Type: schema.TypeInt, Min: minInt(240), Default: 700},
		{Name: "maximized", Type: schema.TypeBool, Default: false},
		{Name: "fullscreen", Type: schema.TypeBool, Default: false},
	},
}

var appState = schema.Field{
	Type: schema.TypeObject,
	Fields: []schema.Field{
		{Name: "lastAppVersion", Type: schema.TypeString},
		{Name: "skippedVersion", Type: schema.TypeString},
		{Name: "updateCheckedDate", Type: schema.TypeString},
	},
}

var certificateStore = schema.Field{
	Type:     schema.TypeMap,
	KeyCheck: IsValidURI,
	Elem: &schema.Field{
		Type: schema.TypeObject,
		Fields: []schema.Field{
			{Name: "data", Type: schema.TypeString, Required: true},
			{Name: "issuerName", Type: schema.TypeString, Required: true},
		},
	},
}

// originPermissions doubles as the trustedOrigins map value and as the
// standalone record a renderer submits when asking for one origin's
// permissions. New permission fields get added here with a default.
var originPermissions = schema.Field{
	Type: schema.TypeObject,
	Fields: []schema.Field{
		{Name: "canBasicAuth", Type: schema.TypeBool, Default: false},
	},
}

var trustedOrigins = schema.Field{
	Type:     schema.TypeMap,
	KeyCheck: IsValidURI,
	Elem:     &originPermissions,
}

var allowedProtocols = schema.Field{
	Type: schema.TypeArray,
	Elem: &schema.Field{Type: schema.TypeString, Pattern: protocolPattern},
}

var argsSchema = schema.Field{
	Type: schema.TypeObject,
	Fields: []schema.Field{
		{Name: "hidden", Type: schema.TypeBool},
		{Name: "disableDevMode", Type: schema.TypeBool},
		{Name: "dataDir", Type: schema.TypeString},
		{Name: "version", Type: schema.TypeBool},
	},
}

var registry = map[Kind]map[int]schema.Field{
	KindConfig:           {0: configV0, 1: configV1, 2: configV2, 3: configV3},
	KindBounds:           {1: boundsInfo},
	KindAppState:         {1: appState},
	KindCertificates:     {1: certificateStore},
	KindTrustedOrigins:   {1: trustedOrigins},
	KindAllowedProtocols: {1: allowedProtocols},
	KindArgs:             {1: argsSchema},
}

// SchemaFor returns the registered schema for a record kind and version.
// Kinds without schema evolution are registered at version 1.
func SchemaFor(kind Kind, version int) (schema.Field, bool) {
	byVersion, ok := registry[kind]
	if !ok {
		return schema.Field{}, false
	}
	sc, ok := byVersion[version]
	return sc, ok
}
