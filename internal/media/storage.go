package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// mimeExts maps upload content types to an on-disk extension when the
// filename itself carries none.
var mimeExts = map[string]string{
	"image/jpeg":  "jpg",
	"image/jpg":   "jpg",
	"image/pjpeg": "jpg",
	"image/png":   "png",
	"image/webp":  "webp",
	"image/gif":   "gif",
	"image/bmp":   "bmp",
	"image/tiff":  "tiff",
	"image/tif":   "tiff",
	"image/heic":  "heic",
	"image/heif":  "heif",
}

// ExtFromFilename returns the lowercased extension without the dot, or ""
// when the name has none.
func ExtFromFilename(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i == -1 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// ExtForUpload picks an extension for an uploaded file: filename first, then
// content type, then the supplied fallback.
func ExtForUpload(filename, contentType, fallback string) string {
	if ext := ExtFromFilename(filename); ext != "" {
		return ext
	}
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i != -1 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ext, ok := mimeExts[ct]; ok {
		return ext
	}
	return fallback
}

// AllowedThermalExt reports whether ext is acceptable for a thermal upload.
func AllowedThermalExt(ext string) bool {
	for _, e := range ThermalExts {
		if e == ext {
			return true
		}
	}
	return false
}

// Store writes media files under the same root a Resolver reads from.
// Saves overwrite any previous file for the same key.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return &Store{root: abs}
}

func (s *Store) Root() string {
	return s.root
}

// SaveBaseline writes a transformer's baseline image to
// baseline/<transformerNo>.<ext> and returns the stored logical path.
func (s *Store) SaveBaseline(transformerNo, ext string, src io.Reader) (string, error) {
	key := EffectiveKey(transformerNo)
	if key == "" {
		return "", fmt.Errorf("empty transformer number")
	}
	rel := filepath.Join("baseline", key+"."+ext)
	if err := s.writeFile(rel, src); err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// SaveThermal writes an inspection's thermal image to
// inspections/<transformerNo>/<inspectionID>.<ext>. The returned stored path
// carries the historical "media/" prefix thermal records were written with.
func (s *Store) SaveThermal(transformerNo, inspectionID, ext string, src io.Reader) (string, error) {
	no := EffectiveKey(transformerNo)
	id := SanitizeKey(inspectionID)
	if no == "" || id == "" {
		return "", fmt.Errorf("empty transformer number or inspection id")
	}
	rel := filepath.Join("inspections", no, id+"."+ext)
	if err := s.writeFile(rel, src); err != nil {
		return "", err
	}
	return "media/" + filepath.ToSlash(rel), nil
}

// SaveAsset stores an auxiliary image under assets/<inspectionID>/<filename>
// and returns the absolute path.
func (s *Store) SaveAsset(inspectionID, filename string, src io.Reader) (string, error) {
	id := SanitizeKey(inspectionID)
	name := SanitizeKey(filepath.Base(filename))
	if id == "" || name == "" {
		return "", fmt.Errorf("empty inspection id or filename")
	}
	rel := filepath.Join("assets", id, name)
	if err := s.writeFile(rel, src); err != nil {
		return "", err
	}
	return filepath.Join(s.root, rel), nil
}

func (s *Store) writeFile(rel string, src io.Reader) error {
	abs := filepath.Join(s.root, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("failed to create media directory: %w", err)
	}
	dst, err := os.Create(abs)
	if err != nil {
		return fmt.Errorf("failed to create media file: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to write media file: %w", err)
	}
	return nil
}
