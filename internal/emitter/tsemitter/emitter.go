package tsemitter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/openapi2client/internal/codegen"
)

// Options controls how the TypeScript emitter renders a client package.
type Options struct {
	OutDir      string // required; target directory to write the package
	PackageName string // npm package name; derived from the document title when empty
	Force       bool   // overwrite existing files
	DryRun      bool   // don't write, only plan
	Verbose     bool
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Result returns the planned files and the resolved package name.
type Result struct {
	PackageName string
	Planned     []PlannedFile
}

// Emit renders the generated client package from the generation model.
// File artifacts are materialized in deterministic order, one module
// per output file plus the index.
func Emit(ctx context.Context, gm *codegen.GenModel, opts Options) (*Result, error) {
	_ = ctx
	if gm == nil {
		return nil, fmt.Errorf("tsemitter: nil model")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("tsemitter: OutDir is required")
	}
	pkgName := sanitizePackageName(opts.PackageName)
	if pkgName == "" {
		pkgName = derivePackageName(gm.Title)
		if pkgName == "" {
			pkgName = "api-client"
		}
	}

	files := map[string][]byte{}
	files["package.json"] = []byte(renderPackageJSON(pkgName, gm.Version))
	files["tsconfig.json"] = []byte(renderTSConfig())
	files["README.md"] = []byte(renderReadme(pkgName, gm))
	files[filepath.Join("src", "client.ts")] = []byte(clientRuntimeTS)
	for _, m := range gm.Modules {
		rendered, err := renderModule(m)
		if err != nil {
			return nil, fmt.Errorf("render module %s: %w", m.Name, err)
		}
		files[filepath.Join("src", m.Name+".ts")] = rendered
	}
	index, err := renderIndex(gm)
	if err != nil {
		return nil, fmt.Errorf("render index: %w", err)
	}
	files[filepath.Join("src", "index.ts")] = index

	// Plan in deterministic order
	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, filepath.ToSlash(p))
	}
	sort.Strings(rels)

	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: rel, Size: len(files[rel]), Mode: 0o644})
	}

	if !opts.DryRun {
		if err := writeFiles(opts.OutDir, files, opts.Force); err != nil {
			return nil, err
		}
	}

	return &Result{PackageName: pkgName, Planned: planned}, nil
}

func writeFiles(outDir string, files map[string][]byte, force bool) error {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	if st, err := os.Stat(abs); err == nil && st.IsDir() && !force {
		entries, rerr := os.ReadDir(abs)
		if rerr == nil && len(entries) > 0 {
			return fmt.Errorf("tsemitter: output directory %q is not empty (use --force to overwrite)", abs)
		}
	}
	for rel, content := range files {
		p := filepath.Join(abs, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
		// atomic write via temp file + rename
		tmp := p + ".tmp-" + time.Now().Format("20060102150405")
		if err := os.WriteFile(tmp, content, 0o644); err != nil {
			return fmt.Errorf("write temp %s: %w", rel, err)
		}
		if err := os.Rename(tmp, p); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("rename %s: %w", rel, err)
		}
	}
	return nil
}

func sanitizePackageName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	name = strings.ReplaceAll(name, " ", "-")
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '@' || r == '/' || r == '.' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-")
}

func derivePackageName(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" {
		return ""
	}
	repl := strings.NewReplacer("/", " ", "_", " ", ".", " ", ",", " ", ":", " ")
	parts := strings.Fields(repl.Replace(t))
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "-")
}
