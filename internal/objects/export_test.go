package objects

import (
	"testing"

	"github.com/KostasZigo/gitsync/internal/repository"
	"github.com/KostasZigo/gitsync/testutils"
	"github.com/google/go-cmp/cmp"
)

// assertBlobHash verifies blob hash matches expected value for given content.
func assertBlobHash(t *testing.T, blob *Blob, content []byte) {
	t.Helper()

	expectedHash := testutils.ExpectedHash(content, string(BlobObjectType))
	if blob.Hash() != expectedHash {
		t.Fatalf("Expected hash [%s], got [%s]", expectedHash, blob.Hash())
	}
}

// assertBlobContent verifies blob stores exact content and correct size.
func assertBlobContent(t *testing.T, blob *Blob, expectedContent []byte) {
	t.Helper()

	if blob.Size() != len(expectedContent) {
		t.Fatalf("Expected size %d, got %d", len(expectedContent), blob.Size())
	}

	if diff := cmp.Diff(expectedContent, blob.Content()); diff != "" {
		t.Fatalf("Blob content mismatch (-want +got):\n%s", diff)
	}
}

// assertIsBlob verifies obj is a blob holding expectedContent.
func assertIsBlob(t *testing.T, obj Object, expectedContent []byte) *Blob {
	t.Helper()

	blob, ok := obj.(*Blob)
	if !ok {
		t.Fatalf("Expected *Blob, got %T", obj)
	}
	assertBlobContent(t, blob, expectedContent)
	return blob
}

// setupObjectStore creates an isolated repository and an object store over it.
// Returns the store and the repository worktree path.
func setupObjectStore(t *testing.T) (*ObjectStore, string) {
	t.Helper()

	repoPath := testutils.SetupTestRepoWithInit(t)
	repo, err := repository.Open(repoPath)
	if err != nil {
		t.Fatalf("Failed to open test repository: %v", err)
	}

	return NewObjectStore(repo), repoPath
}

// storeObject stores obj and fails the test on error.
func storeObject(t *testing.T, store *ObjectStore, obj Object) string {
	t.Helper()

	hash, err := store.Store(obj)
	if err != nil {
		t.Fatalf("Failed to store object: %v", err)
	}
	return hash
}
