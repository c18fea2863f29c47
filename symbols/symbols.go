// Package symbols implements the import-mode / version-gate component.
//
// The backend driver (github.com/godror/godror) always links the OCI
// client through its own cgo layer; that linkage is unconditional and out
// of this package's reach. What ocidrv needs on top of it is the same
// thing a symbol loader needs: know, before issuing any calls
// that might depend on a specific client tier, which optional capabilities
// the Instant Client installation on this machine actually exposes.
//
// This package answers that by opening the client shared library itself
// with github.com/ebitengine/purego (the same dlopen/dlsym technique
// slingdata-io-godbc and SAP/go-hdb use to reach native libraries without
// a build-time cgo dependency) and probing for a waterfall of
// version-indicating entry points.
package symbols

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/ebitengine/purego"
)

// ImportMode selects how the backend's entry points are reached.
type ImportMode int

const (
	// ImportStatic assumes the OCI client was resolved at build/link time
	// (the default when godror's cgo build tags are used normally).
	ImportStatic ImportMode = iota
	// ImportRuntime resolves the client shared library by name at process
	// start and probes it for optional symbols before any connection is
	// opened.
	ImportRuntime
)

// RuntimeVersion is the detected Oracle client tier, ordered oldest to
// newest so callers can compare with >=.
type RuntimeVersion int

const (
	VersionUnknown RuntimeVersion = iota
	Version11
	Version12
	Version18
	Version19
	Version21
	Version23
)

func (v RuntimeVersion) String() string {
	switch v {
	case Version11:
		return "11g"
	case Version12:
		return "12c"
	case Version18:
		return "18c"
	case Version19:
		return "19c"
	case Version21:
		return "21c"
	case Version23:
		return "23ai"
	default:
		return "unknown"
	}
}

// Feature names gated by RuntimeVersion / symbol presence.
const (
	FeatureBigUintLob      = "big-uint-lob"
	FeatureScrollableCursor = "scrollable-cursor"
	FeatureStatementCache  = "statement-cache"
	FeatureNotifications   = "notifications"
	FeatureHA              = "ha-events"
	FeatureExtendedPLSQL   = "extended-plsql-types"
	FeatureXA              = "xa"
)

// probe is one entry in the version-detection waterfall: if symbol is
// resolvable in the opened library, tier is the version it implies.
type probe struct {
	symbol string
	tier   RuntimeVersion
}

// newestFirst encodes the rule "presence of the newest symbol decides
// the highest version tier; fallback tiers are tried in descending order".
var newestFirst = []probe{
	{"OCIVector", Version23},
	{"OCIClientVersion", Version21},
	{"OCIAppCtxClearAll", Version19},
	{"OCISodaCollCreateWithMetadata", Version18},
	{"OCIBindByPos2", Version12},
	{"OCIEnvCreate", Version11},
}

// Gate holds the result of one probing pass: the detected tier and the
// derived feature set.
type Gate struct {
	Mode     ImportMode
	Version  RuntimeVersion
	features map[string]bool
}

var (
	once     sync.Once
	current  *Gate
	initErr  error
)

// Detect resolves the shared library named by libPath (empty string uses
// the platform-conventional client name) and returns the derived Gate.
// In ImportStatic mode it returns a Gate built purely from compile-time
// assumptions (the newest tier ocidrv was built against) without opening
// anything.
func Detect(mode ImportMode, libPath string) (*Gate, error) {
	if mode == ImportStatic {
		return &Gate{Mode: mode, Version: Version19, features: defaultFeatureSet(Version19)}, nil
	}

	once.Do(func() {
		current, initErr = detectRuntime(libPath)
	})
	return current, initErr
}

func platformLibName() string {
	switch runtime.GOOS {
	case "windows":
		return "oci.dll"
	case "darwin":
		return "libclntsh.dylib"
	default:
		return "libclntsh.so"
	}
}

func detectRuntime(libPath string) (*Gate, error) {
	if libPath == "" {
		libPath = platformLibName()
	}

	handle, err := purego.Dlopen(libPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("ocidrv/symbols: loading shared library %q: %w", libPath, err)
	}

	tier := VersionUnknown
	for _, p := range newestFirst {
		if _, err := purego.Dlsym(handle, p.symbol); err == nil {
			tier = p.tier
			break
		}
	}
	if tier == VersionUnknown {
		return nil, fmt.Errorf("ocidrv/symbols: resolving entry points in %q: no recognizable OCI symbol found", libPath)
	}

	return &Gate{Mode: ImportRuntime, Version: tier, features: defaultFeatureSet(tier)}, nil
}

func defaultFeatureSet(tier RuntimeVersion) map[string]bool {
	f := map[string]bool{
		FeatureBigUintLob:       tier >= Version12,
		FeatureScrollableCursor: tier >= Version11,
		FeatureStatementCache:   tier >= Version11,
		FeatureNotifications:    tier >= Version11,
		FeatureHA:               tier >= Version11,
		FeatureExtendedPLSQL:    tier >= Version12,
		FeatureXA:               tier >= Version11,
	}
	return f
}

// Supports reports whether the detected gate exposes the named feature.
func (g *Gate) Supports(feature string) bool {
	if g == nil {
		return false
	}
	return g.features[feature]
}

// Require returns an error naming the feature when the gate does not
// support it; callers wrap it into an *ocidrv.Error of KindNotAvailable.
func (g *Gate) Require(feature string) error {
	if g.Supports(feature) {
		return nil
	}
	return fmt.Errorf("ocidrv/symbols: feature %q requires a newer Oracle client (detected %s)", feature, g.Version)
}

// reset is for tests only: it clears the memoized runtime detection so a
// fresh Detect call re-probes.
func reset() {
	once = sync.Once{}
	current, initErr = nil, nil
}
