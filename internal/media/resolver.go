package media

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Extension probe order. Baseline images accumulated many formats over time;
// thermal uploads were always restricted to the narrow set.
var (
	BaselineExts = []string{"jpg", "jpeg", "png", "webp", "gif", "bmp", "tiff", "tif", "heic", "heif"}
	ThermalExts  = []string{"jpg", "jpeg", "png", "webp"}
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SanitizeKey restricts a value used as a path segment to [A-Za-z0-9._-],
// replacing everything else with "_".
func SanitizeKey(s string) string {
	return unsafeKeyChars.ReplaceAllString(s, "_")
}

// EffectiveKey truncates at the first comma before sanitizing. Some historical
// clients send composite keys like "AZ-9990,extra"; only the part before the
// delimiter names the file.
func EffectiveKey(s string) string {
	if i := strings.IndexByte(s, ','); i != -1 {
		s = s[:i]
	}
	return SanitizeKey(s)
}

// Resolver locates media files under a single root directory. Absence of a
// file is a normal result, not an error.
type Resolver struct {
	root string
}

func NewResolver(root string) *Resolver {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return &Resolver{root: abs}
}

func (r *Resolver) Root() string {
	return r.root
}

// AbsoluteFromStored maps a stored logical path to an absolute one. Stored
// paths were written both with and without a leading "media/" segment over the
// project's history; both resolve to the same file.
func (r *Resolver) AbsoluteFromStored(stored string) string {
	if stored == "" {
		return ""
	}
	p := filepath.ToSlash(filepath.Clean(stored))
	if filepath.IsAbs(p) {
		return p
	}
	p = strings.TrimPrefix(p, "media/")
	return filepath.Join(r.root, filepath.FromSlash(p))
}

// ResolveBaseline finds the baseline image for a transformer: the stored path
// if it points at an existing file, otherwise a probe of
// baseline/<no>.<ext> across the wide extension list.
func (r *Resolver) ResolveBaseline(transformerNo, storedPath string) (string, bool) {
	return r.resolve(filepath.Join(r.root, "baseline"), transformerNo, storedPath, BaselineExts)
}

// ResolveThermal finds an inspection's thermal image under
// inspections/<transformerNo>/<inspectionID>.<ext>.
func (r *Resolver) ResolveThermal(transformerNo, inspectionID, storedPath string) (string, bool) {
	no := EffectiveKey(transformerNo)
	return r.resolve(filepath.Join(r.root, "inspections", no), inspectionID, storedPath, ThermalExts)
}

func (r *Resolver) resolve(dir, key, storedPath string, exts []string) (string, bool) {
	if storedPath != "" {
		abs := r.AbsoluteFromStored(storedPath)
		if fileExists(abs) {
			return abs, true
		}
	}

	key = EffectiveKey(key)
	if key == "" {
		return "", false
	}
	for _, ext := range exts {
		p := filepath.Join(dir, key+"."+ext)
		if fileExists(p) {
			return p, true
		}
	}
	return "", false
}

// PublicURL converts an absolute path under the media root back to the
// "/media/..." form served to clients.
func (r *Resolver) PublicURL(abs string) string {
	rel, err := filepath.Rel(r.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	return "/media/" + filepath.ToSlash(rel)
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
