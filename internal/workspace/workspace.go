// Package workspace provisions the isolated directory each workflow runs in:
// a fresh copy of the project tree under the base temporary directory.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Workspace is the working directory of one workflow run
type Workspace struct {
	name string
	dir  string
}

// Name returns the workflow name the workspace was provisioned for.
func (w *Workspace) Name() string {
	return w.name
}

// Dir returns the absolute path of the workspace.
func (w *Workspace) Dir() string {
	return w.dir
}

// Remove deletes the workspace and everything in it.
func (w *Workspace) Remove() error {
	if err := os.RemoveAll(w.dir); err != nil {
		return fmt.Errorf("remove workspace %s: %w", w.dir, err)
	}
	return nil
}

// Provisioner creates workspaces by copying a source tree
type Provisioner struct {
	source   string
	baseTemp string
	ignore   map[string]bool
	logger   *slog.Logger
}

// NewProvisioner creates a provisioner that copies source into per-workflow
// directories under baseTemp. Entries whose base name is in ignore are not
// copied.
func NewProvisioner(source, baseTemp string, ignore []string, logger *slog.Logger) (*Provisioner, error) {
	absSource, err := filepath.Abs(source)
	if err != nil {
		return nil, fmt.Errorf("resolve project path %s: %w", source, err)
	}
	absBase, err := filepath.Abs(baseTemp)
	if err != nil {
		return nil, fmt.Errorf("resolve basetemp %s: %w", baseTemp, err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	skip := make(map[string]bool, len(ignore))
	for _, name := range ignore {
		skip[name] = true
	}

	return &Provisioner{
		source:   absSource,
		baseTemp: absBase,
		ignore:   skip,
		logger:   logger,
	}, nil
}

// BaseTemp returns the directory workspaces are created in.
func (p *Provisioner) BaseTemp() string {
	return p.baseTemp
}

// DirName returns the directory name used for a workflow. Spaces become
// underscores; letters, digits, '-' and '.' are kept; every other byte,
// including '_' and a leading '.', is percent-escaped. Distinct names
// therefore never share a directory, and the result is always one path
// element.
func DirName(workflow string) string {
	var b strings.Builder
	for i := 0; i < len(workflow); i++ {
		c := workflow[i]
		switch {
		case c == ' ':
			b.WriteByte('_')
		case c == '.' && i > 0,
			c == '-',
			'a' <= c && c <= 'z',
			'A' <= c && c <= 'Z',
			'0' <= c && c <= '9':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

// workspaceDir resolves the directory of a workflow and refuses anything that
// is not a direct child of baseTemp.
func (p *Provisioner) workspaceDir(name string) (string, error) {
	elem := DirName(name)
	if elem == "" || !filepath.IsLocal(elem) {
		return "", fmt.Errorf("workflow name '%s' cannot be used as a directory name", name)
	}
	dir := filepath.Join(p.baseTemp, elem)
	if filepath.Dir(dir) != p.baseTemp {
		return "", fmt.Errorf("workspace %s for '%s' is outside %s", dir, name, p.baseTemp)
	}
	return dir, nil
}

// Provision creates a fresh workspace for the named workflow. A directory left
// behind by an earlier run is deleted first.
func (p *Provisioner) Provision(name string) (*Workspace, error) {
	dir, err := p.workspaceDir(name)
	if err != nil {
		return nil, err
	}

	if _, err := os.Lstat(dir); err == nil {
		p.logger.Info(fmt.Sprintf("'%s' already exists. Deleting ...", dir))
		if err := os.RemoveAll(dir); err != nil {
			return nil, fmt.Errorf("delete stale workspace %s: %w", dir, err)
		}
	}

	if err := p.copyTree(p.source, dir); err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	return &Workspace{name: name, dir: dir}, nil
}
