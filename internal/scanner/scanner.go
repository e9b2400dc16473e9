package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"broll/internal/config"
	"broll/internal/contextutil"
)

// videoExtensions are the file extensions treated as video content.
var videoExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".m4v": true,
}

// previewExtension is the DJI low-resolution proxy written alongside
// full-resolution footage.
const previewExtension = ".lrf"

// skipDirs are directories never descended into: the catalog's own data,
// macOS volume metadata, and VCS internals. Any other dot-directory is
// skipped as well.
var skipDirs = map[string]bool{
	config.AppDirName:           true,
	".Spotlight-V100":           true,
	".fseventsd":                true,
	".Trashes":                  true,
	".DocumentRevisions-V100":   true,
	".git":                      true,
}

// ScanResult describes one discovered file that is new or changed
// relative to the known fingerprint map.
type ScanResult struct {
	AbsPath     string
	RelPath     string
	Name        string
	SizeBytes   int64
	Fingerprint string
	Device      string
	PreviewPath string // matched low-res preview, empty if none
}

// Scan walks the media tree under root and returns every recognized
// video file that is not already present in known with an identical
// fingerprint. force returns the full file set regardless of known.
//
// The walk is deterministic (WalkDir visits entries in lexical order) so
// repeated scans of an unchanged tree produce identical work lists. An
// unreadable file is logged and skipped, never fatal to the scan.
func Scan(ctx context.Context, root string, known map[string]string, force bool) ([]ScanResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}

	previews, err := buildPreviewMap(ctx, absRoot)
	if err != nil {
		return nil, err
	}

	var results []ScanResult
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.WarnContext(ctx, "cannot access path, skipping", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d.IsDir() {
			if path != absRoot && shouldSkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		if !isVideoFile(name) || isResourceFork(name) || name == config.DBFileName {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}
		rel = filepath.ToSlash(rel)

		info, err := d.Info()
		if err != nil {
			logger.WarnContext(ctx, "cannot stat file, skipping", "path", rel, "error", err)
			return nil
		}

		hash, err := Fingerprint(path)
		if err != nil {
			logger.WarnContext(ctx, "cannot fingerprint file, skipping", "path", rel, "error", err)
			return nil
		}

		// Unchanged files drop out of the work list unless forced. A
		// changed fingerprint on a known path is treated exactly like a
		// brand-new file.
		if !force {
			if existing, ok := known[rel]; ok && existing == hash {
				return nil
			}
		}

		stem := strings.TrimSuffix(name, filepath.Ext(name))
		results = append(results, ScanResult{
			AbsPath:     path,
			RelPath:     rel,
			Name:        name,
			SizeBytes:   info.Size(),
			Fingerprint: hash,
			Device:      DetectDevice(path),
			PreviewPath: previews[stem],
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	return results, nil
}

// buildPreviewMap collects every low-resolution preview file keyed by its
// base name without extension. DJI names previews identically to their
// full-resolution counterparts, so a stem match pairs them.
func buildPreviewMap(ctx context.Context, root string) (map[string]string, error) {
	previews := make(map[string]string)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if path != root && shouldSkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		if isResourceFork(name) {
			return nil
		}
		if strings.EqualFold(filepath.Ext(name), previewExtension) {
			stem := strings.TrimSuffix(name, filepath.Ext(name))
			previews[stem] = path
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to index previews under %s: %w", root, err)
	}

	return previews, nil
}

func isVideoFile(name string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(name))]
}

// isResourceFork reports macOS AppleDouble shadow files ("._name").
func isResourceFork(name string) bool {
	return strings.HasPrefix(name, "._")
}

func shouldSkipDir(name string) bool {
	return skipDirs[name] || strings.HasPrefix(name, ".")
}
