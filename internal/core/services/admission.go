package services

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/cdr-client/internal/core/ports/driven"
	"github.com/custodia-labs/cdr-client/internal/logger"
)

// bookkeepingSuffixes mark files written by producers or by the pipeline itself.
var bookkeepingSuffixes = []string{".tmp", ".part", ".error", ".response"}

// AdmissionGate decides whether a candidate path enters the pipeline.
// Only the caller whose Admit returns true may upload the file.
type AdmissionGate struct {
	claims    driven.ClaimCache
	extension string
}

// NewAdmissionGate creates a gate that accepts files with the given extension.
func NewAdmissionGate(claims driven.ClaimCache, extension string) *AdmissionGate {
	return &AdmissionGate{
		claims:    claims,
		extension: "." + strings.ToLower(strings.TrimPrefix(extension, ".")),
	}
}

// Identity returns the claim identity of path: its cleaned absolute form.
func Identity(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// Accepts applies the name filter only: extension and bookkeeping artifacts.
func (g *AdmissionGate) Accepts(path string) bool {
	name := filepath.Base(path)
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	lower := strings.ToLower(name)
	for _, suffix := range bookkeepingSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return false
		}
	}
	return filepath.Ext(lower) == g.extension && len(lower) > len(g.extension)
}

// Admit filters path and tries to claim it. Rejected paths are never claimed.
func (g *AdmissionGate) Admit(path string) bool {
	if !g.Accepts(path) {
		return false
	}
	info, err := os.Lstat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	identity := Identity(path)
	if !g.claims.TryClaim(identity) {
		logger.Debug("admission: %s already claimed", identity)
		return false
	}
	logger.Debug("admission: claimed %s", identity)
	return true
}
