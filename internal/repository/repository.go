package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/KostasZigo/gitsync/internal/constants"
	"github.com/KostasZigo/gitsync/utils"
	"gopkg.in/ini.v1"
)

// Repository is a worktree and its metadata directory.
// All relative paths given to its methods are resolved under the metadata directory.
type Repository struct {
	worktree string
	gitDir   string
	config   *ini.File
	core     CoreConfig
}

// Open loads an existing repository rooted at worktree.
func Open(worktree string) (*Repository, error) {
	if err := requireDir(worktree); err != nil {
		return nil, fmt.Errorf("%w: worktree %s: %w", ErrNotRepository, worktree, err)
	}

	gitDir := filepath.Join(worktree, constants.GitDir)
	if err := requireDir(gitDir); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotRepository, gitDir, err)
	}

	config, core, err := loadConfig(filepath.Join(gitDir, constants.Config))
	if err != nil {
		return nil, err
	}

	return &Repository{
		worktree: worktree,
		gitDir:   gitDir,
		config:   config,
		core:     core,
	}, nil
}

// Find walks up from start to the first directory holding a metadata
// directory and opens the repository there.
func Find(start string) (*Repository, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return nil, err
	}

	for {
		gitPath := filepath.Join(dir, constants.GitDir)
		if info, err := os.Stat(gitPath); err == nil && info.IsDir() {
			return Open(dir)
		}

		// Dir returns all but the last element of path
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root without finding .git
			return nil, fmt.Errorf("%w: %s directory not found", ErrNotRepository, constants.GitDir)
		}
		dir = parent
	}
}

// Init creates a new repository skeleton at worktree.
// The worktree is created if missing. An existing, empty metadata
// directory is reused; a non-empty one is an error.
func Init(worktree string) (*Repository, error) {
	// Resolves and adds OS specific separator
	gitDir := filepath.Join(worktree, constants.GitDir)

	gitDirExisted, err := checkRepositoryDoesNotExist(worktree, gitDir)
	if err != nil {
		return nil, err
	}

	// Track if initialization of directories and files was successful.
	// On any failure the deferred cleanup removes what was created.
	var initSuccess bool
	defer func() {
		if !initSuccess {
			cleanupRepository(gitDir, gitDirExisted)
		}
	}()

	directories := []string{
		gitDir,
		filepath.Join(gitDir, constants.Branches),
		filepath.Join(gitDir, constants.Objects),
		filepath.Join(gitDir, constants.Refs, constants.Heads),
		filepath.Join(gitDir, constants.Refs, constants.Tags),
	}

	// Create all metadata directories
	for _, directory := range directories {
		if err := os.MkdirAll(directory, constants.DirPerms); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", directory, err)
		}
	}

	repo := &Repository{
		worktree: worktree,
		gitDir:   gitDir,
		config:   defaultConfig(),
	}

	core, err := parseCore(repo.config)
	if err != nil {
		return nil, err
	}
	repo.core = core

	if err := repo.config.SaveTo(filepath.Join(gitDir, constants.Config)); err != nil {
		return nil, fmt.Errorf("failed to write config file: %w", err)
	}

	files := []struct {
		name    string
		content string
	}{
		{constants.Description, constants.DefaultDescription + "\n"},
		{constants.Head, constants.DefaultRefPrefix + constants.DefaultBranch + "\n"},
	}

	for _, file := range files {
		if err := createNewFile(filepath.Join(gitDir, file.name), []byte(file.content)); err != nil {
			return nil, fmt.Errorf("failed to create %s file: %w", file.name, err)
		}
	}

	initSuccess = true
	return repo, nil
}

// checkRepositoryDoesNotExist validates the init target and reports whether
// an empty metadata directory is already present.
func checkRepositoryDoesNotExist(worktree, gitDir string) (bool, error) {
	info, err := os.Stat(worktree)
	if err == nil && !info.IsDir() {
		return false, fmt.Errorf("%w: %s already exists", ErrNotDirectory, worktree)
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to check worktree path: %w", err)
	}

	entries, err := os.ReadDir(gitDir)

	// If path doesn't exist there is no error
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to check repository path: %w", err)
	}

	if len(entries) > 0 {
		return false, fmt.Errorf("%w at %s", ErrRepositoryExists, gitDir)
	}

	return true, nil
}

// cleanupRepository removes a partially initialized metadata directory.
// A directory that existed before Init is emptied but kept.
func cleanupRepository(gitDir string, keepRoot bool) {
	if _, err := os.Stat(gitDir); err != nil {
		return
	}

	slog.Debug("Cleaning up partial repository initialization",
		"path", gitDir)

	targets := []string{gitDir}
	if keepRoot {
		entries, err := os.ReadDir(gitDir)
		if err != nil {
			slog.Warn("Failed to list repository directory",
				"path", gitDir,
				"error", err)
			return
		}
		targets = targets[:0]
		for _, entry := range entries {
			targets = append(targets, filepath.Join(gitDir, entry.Name()))
		}
	}

	for _, target := range targets {
		if err := os.RemoveAll(target); err != nil {
			slog.Warn("Failed to cleanup repository directory",
				"path", target,
				"error", err)
			return
		}
	}

	slog.Debug("Successfully cleaned up repository directory",
		"path", gitDir)
}

func createNewFile(path string, content []byte) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, constants.FilePerms)
	if err != nil {
		return err
	}

	if _, err := file.Write(content); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func requireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}
	return nil
}

// ObjectPath maps a hex digest to its loose object path, relative to the
// metadata directory and slash separated: objects/<2 chars>/<38 chars>.
func ObjectPath(hash string) (string, error) {
	if err := utils.ValidateHash(hash); err != nil {
		return "", err
	}
	hash = strings.ToLower(hash)
	return path.Join(constants.Objects, hash[:constants.HashDirPrefixLength], hash[constants.HashDirPrefixLength:]), nil
}

// ObjectPath resolves hash inside this repository.
func (r *Repository) ObjectPath(hash string) (string, error) {
	return ObjectPath(hash)
}

func (r *Repository) WorktreeRoot() string {
	return r.worktree
}

func (r *Repository) GitDir() string {
	return r.gitDir
}

func (r *Repository) Config() *ini.File {
	return r.config
}

func (r *Repository) Core() CoreConfig {
	return r.core
}

// WorktreePath joins rel onto the worktree root.
func (r *Repository) WorktreePath(rel string) string {
	return filepath.Join(r.worktree, filepath.FromSlash(rel))
}

// Path resolves rel under the metadata directory. Absolute paths and
// paths leaving the directory are rejected.
func (r *Repository) Path(rel string) (string, error) {
	local := filepath.Clean(filepath.FromSlash(rel))
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, rel)
	}
	return filepath.Join(r.gitDir, local), nil
}

// Dir resolves a directory under the metadata directory, creating it when
// mkdir is set.
func (r *Repository) Dir(rel string, mkdir bool) (string, error) {
	dir, err := r.Path(rel)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return "", fmt.Errorf("%w: expected dir found file at %s", ErrNotDirectory, dir)
		}
		return dir, nil
	}
	if !errors.Is(err, fs.ErrNotExist) || !mkdir {
		return "", fmt.Errorf("directory %s not found: %w", dir, err)
	}

	if err := os.MkdirAll(dir, constants.DirPerms); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return dir, nil
}

// OpenFile opens rel under the metadata directory with the given flags,
// optionally creating its parent directories first.
func (r *Repository) OpenFile(rel string, flag int, createParents bool) (*os.File, error) {
	filePath, err := r.Path(rel)
	if err != nil {
		return nil, err
	}

	if createParents {
		if err := os.MkdirAll(filepath.Dir(filePath), constants.DirPerms); err != nil {
			return nil, fmt.Errorf("failed to create parent directory: %w", err)
		}
	}

	file, err := os.OpenFile(filePath, flag, constants.FilePerms)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	return file, nil
}

// Open implements fs.FS over the metadata directory.
func (r *Repository) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	file, err := os.Open(filepath.Join(r.gitDir, filepath.FromSlash(name)))
	if err != nil {
		return nil, err
	}
	return file, nil
}

// Stat implements fs.StatFS over the metadata directory.
func (r *Repository) Stat(name string) (fs.FileInfo, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}
	return os.Stat(filepath.Join(r.gitDir, filepath.FromSlash(name)))
}

// WriteFileAtomic writes data to rel through a temporary file in the same
// directory and renames it into place, so readers never observe a partial file.
func (r *Repository) WriteFileAtomic(rel string, data []byte, perm fs.FileMode) error {
	finalPath, err := r.Path(rel)
	if err != nil {
		return err
	}

	dir := filepath.Dir(finalPath)
	if err := os.MkdirAll(dir, constants.DirPerms); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, "tmp_obj_*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up the temp file on any error path.
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions on temporary file: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("failed to rename temporary file to %s: %w", finalPath, err)
	}

	success = true
	return nil
}
