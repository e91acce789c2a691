package testutils

import (
	"bytes"
	"compress/zlib"
	"crypto/rand"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/KostasZigo/gitsync/internal/constants"
)

// SimpleBlobContent and SimpleBlobHash are a blob whose id is known from git itself.
const (
	SimpleBlobContent = "this is a simple test blob\n"
	SimpleBlobHash    = "2bb09523ce4baf1940ee8fef49f6cade5afe3d03"
)

// RandomString generates a random hex string of n bytes
func RandomString(n int) string {
	bytes := make([]byte, n)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// RandomHash generates a random 40-character SHA-1 hash
func RandomHash() string {
	return RandomString(constants.HashByteLength)
}

// ExpectedHash computes the object id of content independently of the codec.
func ExpectedHash(content []byte, objectType string) string {
	header := fmt.Sprintf("%s %d\x00", objectType, len(content))
	hash := sha1.Sum(append([]byte(header), content...))
	return hex.EncodeToString(hash[:])
}

// EncodeLooseObject builds the stored bytes of an object with the standard
// library zlib, the way any other git implementation would.
func EncodeLooseObject(t *testing.T, header string, content []byte) []byte {
	t.Helper()

	var buffer bytes.Buffer
	writer := zlib.NewWriter(&buffer)
	if _, err := writer.Write(append([]byte(header), content...)); err != nil {
		t.Fatalf("Failed to compress object: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close zlib writer: %v", err)
	}
	return buffer.Bytes()
}

// WriteLooseObject places raw stored bytes at the loose object path of hash.
// Returns the full path to the object file.
func WriteLooseObject(t *testing.T, repoPath, hash string, data []byte) string {
	t.Helper()

	objectPath := ObjectFilePath(repoPath, hash)
	if err := os.MkdirAll(filepath.Dir(objectPath), constants.DirPerms); err != nil {
		t.Fatalf("Failed to create object directory: %v", err)
	}
	if err := os.WriteFile(objectPath, data, constants.FilePerms); err != nil {
		t.Fatalf("Failed to write object %s: %v", hash, err)
	}
	return objectPath
}

// ObjectFilePath returns where a loose object lives inside repoPath.
func ObjectFilePath(repoPath, hash string) string {
	return filepath.Join(repoPath, constants.GitDir, constants.Objects,
		hash[:constants.HashDirPrefixLength], hash[constants.HashDirPrefixLength:])
}

// SetupTestRepoWithInit creates a fully initialized repository structure in
// a fresh per-test directory. This includes objects/, refs/heads/, refs/tags/,
// branches/, config, description and the HEAD file.
func SetupTestRepoWithInit(t *testing.T) string {
	t.Helper()

	repoPath := t.TempDir()
	gitDir := filepath.Join(repoPath, constants.GitDir)

	// Create directory structure
	dirs := []string{
		filepath.Join(gitDir, constants.Branches),
		filepath.Join(gitDir, constants.Objects),
		filepath.Join(gitDir, constants.Refs, constants.Heads),
		filepath.Join(gitDir, constants.Refs, constants.Tags),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, constants.DirPerms); err != nil {
			t.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	WriteConfig(t, repoPath, fmt.Sprintf("[core]\n%s = %d\n%s = false\n%s = false\n",
		constants.RepositoryFormatVersion, constants.SupportedRepositoryFormat,
		constants.FileMode, constants.Bare))

	files := map[string]string{
		constants.Head:        constants.DefaultRefPrefix + constants.DefaultBranch + "\n",
		constants.Description: constants.DefaultDescription + "\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(gitDir, name), []byte(content), constants.FilePerms); err != nil {
			t.Fatalf("Failed to create %s file: %v", name, err)
		}
	}

	return repoPath
}

// WriteConfig overwrites the repository config file with content.
func WriteConfig(t *testing.T, repoPath, content string) {
	t.Helper()

	configPath := filepath.Join(repoPath, constants.GitDir, constants.Config)
	if err := os.WriteFile(configPath, []byte(content), constants.FilePerms); err != nil {
		t.Fatalf("Failed to create %s file: %v", constants.Config, err)
	}
}

// CreateTestFile creates a file with given content in the specified directory.
// Returns the full path to the created file.
func CreateTestFile(t *testing.T, dir, filename string, content []byte) string {
	t.Helper()

	filePath := filepath.Join(dir, filename)
	if err := os.WriteFile(filePath, content, constants.FilePerms); err != nil {
		t.Fatalf("Failed to create test file %s: %v", filename, err)
	}

	return filePath
}

// AssertFileExists checks that a file exists at the given path.
// Fails the test if the file doesn't exist.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected file to exist at %s", path)
	}
}

// AssertFileNotExists checks that a file does NOT exist at the given path.
// Fails the test if the file exists.
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to NOT exist at %s", path)
	}
}

// AssertDirExists checks that a directory exists at the given path.
// Fails the test if the directory doesn't exist.
func AssertDirExists(t *testing.T, path string) {
	t.Helper()

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected directory to exist at %s", path)
		return
	}
	if err != nil {
		t.Errorf("Failed to stat directory %s: %v", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("Expected %s to be a directory, but it's a file", path)
	}
}

// AssertNoTempFiles fails if any temporary object file is left in dir or below.
func AssertNoTempFiles(t *testing.T, dir string) {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join(dir, "*", "tmp_obj_*"))
	if err != nil {
		t.Fatalf("Failed to glob %s: %v", dir, err)
	}
	if len(matches) > 0 {
		t.Errorf("Expected no temporary files, found %v", matches)
	}
}

// AssertRepositoryStructure validates the complete metadata directory structure.
// Verifies objects/, refs/heads/, refs/tags/, branches/, config and description
// exist and HEAD contains the correct branch reference.
func AssertRepositoryStructure(t *testing.T, repoPath string) {
	t.Helper()

	gitDir := filepath.Join(repoPath, constants.GitDir)
	AssertDirExists(t, gitDir)

	expectedDirs := []string{
		constants.Branches,
		constants.Objects,
		constants.Refs,
		filepath.Join(constants.Refs, constants.Heads),
		filepath.Join(constants.Refs, constants.Tags),
	}
	for _, dir := range expectedDirs {
		AssertDirExists(t, filepath.Join(gitDir, dir))
	}

	AssertFileExists(t, filepath.Join(gitDir, constants.Config))
	AssertFileExists(t, filepath.Join(gitDir, constants.Description))

	headPath := filepath.Join(gitDir, constants.Head)
	AssertFileExists(t, headPath)

	content, err := os.ReadFile(headPath)
	if err != nil {
		t.Fatalf("Failed to read %s file: %v", constants.Head, err)
	}

	expectedContent := constants.DefaultRefPrefix + constants.DefaultBranch + "\n"
	if string(content) != expectedContent {
		t.Errorf("%s content = %q, want %q", constants.Head, content, expectedContent)
	}
}
