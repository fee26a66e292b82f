package export

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	// Decoders for reading image dimensions during export.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/google/uuid"

	"sti-backend/internal/database"
	"sti-backend/internal/media"
	"sti-backend/internal/models"
)

// classIDs maps fault class names to their label index. Unknown classes are
// dropped from the label file.
var classIDs = map[string]int{
	"full_wire_yellow":      0,
	"loose_joint_red":       1,
	"loose_joint_yellow":    2,
	"point_overload_red":    3,
	"point_overload_yellow": 4,
}

// Item reports a per-inspection problem encountered during export. Inspections
// that export cleanly, or that have no thermal image reference at all, produce
// no item; a reference whose file cannot be resolved is recorded.
type Item struct {
	InspectionID string `json:"inspectionId"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
}

type Result struct {
	OK            bool   `json:"ok"`
	ExportRoot    string `json:"exportRoot"`
	ImagesDir     string `json:"imagesDir"`
	LabelsDir     string `json:"labelsDir"`
	ImagesCopied  int    `json:"imagesCopied"`
	LabelsWritten int    `json:"labelsWritten"`
	Items         []Item `json:"items"`
}

// AnnotationLister is the slice of the annotation store the pipeline needs.
type AnnotationLister interface {
	ListByInspection(inspectionID uuid.UUID) ([]models.Annotation, error)
}

// Pipeline writes a training dataset: every completed inspection's thermal
// image copied into images/, with a matching labels/<id>.txt of normalized
// corner coordinates for the human-reviewed annotations.
type Pipeline struct {
	db          *database.Client
	annotations AnnotationLister
	resolver    *media.Resolver
	root        string
	logger      *zap.Logger
}

func NewPipeline(db *database.Client, annotations AnnotationLister, resolver *media.Resolver, exportRoot string, logger *zap.Logger) *Pipeline {
	abs, err := filepath.Abs(exportRoot)
	if err != nil {
		abs = exportRoot
	}
	return &Pipeline{db: db, annotations: annotations, resolver: resolver, root: abs, logger: logger}
}

// Run rebuilds the dataset from scratch. Repeated runs converge on the same
// tree: files are overwritten per inspection id and stale nested directories
// are cleared first.
func (p *Pipeline) Run() (*Result, error) {
	imagesDir := filepath.Join(p.root, "images")
	labelsDir := filepath.Join(p.root, "labels")

	for _, dir := range []string{imagesDir, labelsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create export directory: %w", err)
		}
		if err := removeSubdirectories(dir); err != nil {
			return nil, fmt.Errorf("failed to clean export directory: %w", err)
		}
	}

	inspections, err := p.db.ListAllInspections()
	if err != nil {
		return nil, err
	}

	result := &Result{
		OK:         true,
		ExportRoot: p.root,
		ImagesDir:  imagesDir,
		LabelsDir:  labelsDir,
		Items:      []Item{},
	}

	for _, insp := range inspections {
		if !insp.ThermalImagePath.Valid || strings.TrimSpace(insp.ThermalImagePath.String) == "" {
			continue
		}

		src, ok := p.resolver.ResolveThermal(insp.TransformerNo, insp.ID.String(), insp.ThermalImagePath.String)
		if !ok {
			result.Items = append(result.Items, Item{
				InspectionID: insp.ID.String(),
				Status:       "image-missing",
			})
			continue
		}

		ext := media.ExtFromFilename(src)
		if ext == "" {
			ext = "jpg"
		}
		dst := filepath.Join(imagesDir, insp.ID.String()+"."+ext)
		if err := copyFile(src, dst); err != nil {
			p.logger.Warn("failed to copy thermal image",
				zap.String("inspection", insp.ID.String()), zap.Error(err))
			continue
		}
		result.ImagesCopied++

		width, height, err := imageDimensions(src)
		if err != nil {
			result.Items = append(result.Items, Item{
				InspectionID: insp.ID.String(),
				Status:       "image-read-failed",
			})
			continue
		}

		anns, err := p.annotations.ListByInspection(insp.ID)
		if err != nil {
			return nil, err
		}

		// An image with no exportable annotations still gets an empty label
		// file: it is the negative sample, and the write truncates whatever a
		// previous run left behind.
		lines := labelLines(anns, width, height)
		content := ""
		if len(lines) > 0 {
			content = strings.Join(lines, "\n") + "\n"
		}

		labelPath := filepath.Join(labelsDir, insp.ID.String()+".txt")
		if err := os.WriteFile(labelPath, []byte(content), 0o644); err != nil {
			result.Items = append(result.Items, Item{
				InspectionID: insp.ID.String(),
				Status:       "label-write-failed",
				Error:        err.Error(),
			})
			continue
		}
		result.LabelsWritten++
	}

	return result, nil
}

// labelLines builds one label line per exportable annotation: class id
// followed by the four normalized box corners (top-left, top-right,
// bottom-right, bottom-left), each coordinate clamped to [0, 1].
func labelLines(anns []models.Annotation, width, height int) []string {
	var lines []string
	for _, a := range anns {
		switch strings.ToLower(a.AnnotationType) {
		case "manual", "edited":
		default:
			continue
		}
		if !a.ClassName.Valid {
			continue
		}
		classID, ok := classIDs[strings.ToLower(strings.TrimSpace(a.ClassName.String))]
		if !ok {
			continue
		}

		box, ok := parseBox(a.BoundingBox)
		if !ok {
			continue
		}

		cx := box.X / float64(width)
		cy := box.Y / float64(height)
		ww := box.Width / float64(width)
		hh := box.Height / float64(height)

		line := fmt.Sprintf("%d %.10f %.10f %.10f %.10f %.10f %.10f %.10f %.10f",
			classID,
			clamp01(cx-ww/2), clamp01(cy-hh/2),
			clamp01(cx+ww/2), clamp01(cy-hh/2),
			clamp01(cx+ww/2), clamp01(cy+hh/2),
			clamp01(cx-ww/2), clamp01(cy+hh/2),
		)
		lines = append(lines, line)
	}
	return lines
}

// parseBox validates only the four box fields; clients attach extra keys
// (labels, colors) that are carried in the payload but irrelevant here.
func parseBox(raw json.RawMessage) (models.BoundingBox, bool) {
	if len(raw) == 0 {
		return models.BoundingBox{}, false
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return models.BoundingBox{}, false
	}
	var box models.BoundingBox
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{"x", &box.X}, {"y", &box.Y}, {"width", &box.Width}, {"height", &box.Height},
	} {
		v, ok := fields[f.key].(float64)
		if !ok {
			return models.BoundingBox{}, false
		}
		*f.dst = v
	}
	return box, true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func imageDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("invalid image dimensions %dx%d", cfg.Width, cfg.Height)
	}
	return cfg.Width, cfg.Height, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

func removeSubdirectories(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}
