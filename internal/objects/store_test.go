package objects

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/KostasZigo/gitsync/internal/constants"
	"github.com/KostasZigo/gitsync/testutils"
	"github.com/KostasZigo/gitsync/utils"
	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zlib"
)

// TestObjectStore_Store verifies a blob is written to its sharded path and reads back.
func TestObjectStore_Store(t *testing.T) {
	store, repoPath := setupObjectStore(t)
	content := []byte("hello\n")

	hash := storeObject(t, store, NewBlob(content))

	if hash != testutils.ExpectedHash(content, string(BlobObjectType)) {
		t.Fatalf("Unexpected hash %s", hash)
	}

	objectPath := testutils.ObjectFilePath(repoPath, hash)
	if _, err := os.Stat(objectPath); errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Object file was not created at %s", objectPath)
	}

	obj, err := store.Read(hash)
	if err != nil {
		t.Fatalf("Failed to read object: %v", err)
	}
	assertIsBlob(t, obj, content)

	testutils.AssertNoTempFiles(t, filepath.Join(repoPath, constants.GitDir, constants.Objects))
}

// TestObjectStore_StoredBytesAreStandardZlib verifies stored files hold the
// zlib-compressed canonical encoding any git implementation can inflate.
func TestObjectStore_StoredBytesAreStandardZlib(t *testing.T) {
	store, repoPath := setupObjectStore(t)

	hash := storeObject(t, store, NewBlob([]byte(testutils.SimpleBlobContent)))
	if hash != testutils.SimpleBlobHash {
		t.Fatalf("Expected hash %s, got %s", testutils.SimpleBlobHash, hash)
	}

	compressed, err := os.ReadFile(testutils.ObjectFilePath(repoPath, hash))
	if err != nil {
		t.Fatalf("Failed to read stored object: %v", err)
	}

	reader, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		t.Fatalf("Failed to create zlib reader: %v", err)
	}
	defer reader.Close()

	var decompressed bytes.Buffer
	if _, err := decompressed.ReadFrom(reader); err != nil {
		t.Fatalf("Failed to read decompressed data: %v", err)
	}

	if diff := cmp.Diff("blob 27\x00"+testutils.SimpleBlobContent, decompressed.String()); diff != "" {
		t.Errorf("Stored encoding mismatch (-want +got):\n%s", diff)
	}
}

func TestObjectStore_Compression(t *testing.T) {
	store, repoPath := setupObjectStore(t)

	// Use larger content to ensure compression is effective
	largeContent := bytes.Repeat([]byte("This is repeated content. "), 100)
	hash := storeObject(t, store, NewBlob(largeContent))

	compressedData, err := os.ReadFile(testutils.ObjectFilePath(repoPath, hash))
	if err != nil {
		t.Fatalf("Failed to read stored object: %v", err)
	}

	// Verify data is actually compressed (should be smaller than original)
	if len(compressedData) >= len(largeContent) {
		t.Errorf("Data doesn't appear to be compressed: compressed size (%d) >= original size (%d)",
			len(compressedData), len(largeContent))
	}

	readBlob, err := store.ReadBlob(hash)
	if err != nil {
		t.Fatalf("Failed to read blob: %v", err)
	}
	assertBlobContent(t, readBlob, largeContent)
}

// TestObjectStore_StoreIdempotent verifies a valid existing object is not rewritten.
func TestObjectStore_StoreIdempotent(t *testing.T) {
	store, repoPath := setupObjectStore(t)
	blob := NewBlob(bytes.Repeat([]byte("test\n"), 100))

	// Place a valid copy compressed differently from what Store would write
	hash, uncompressed, err := SerializeZlib(blob, zlib.NoCompression)
	if err != nil {
		t.Fatalf("SerializeZlib failed: %v", err)
	}
	objectPath := testutils.WriteLooseObject(t, repoPath, hash, uncompressed)

	if storedHash := storeObject(t, store, blob); storedHash != hash {
		t.Fatalf("Expected hash %s, got %s", hash, storedHash)
	}

	onDisk, err := os.ReadFile(objectPath)
	if err != nil {
		t.Fatalf("Object file should exist: %v", err)
	}
	if !bytes.Equal(onDisk, uncompressed) {
		t.Error("Existing valid object should not be rewritten")
	}
}

// TestObjectStore_ReplacesCorruptObject verifies an unreadable file at the
// content address is replaced by a good copy.
func TestObjectStore_ReplacesCorruptObject(t *testing.T) {
	store, repoPath := setupObjectStore(t)
	blob := NewBlob([]byte("precious content\n"))

	objectPath := testutils.WriteLooseObject(t, repoPath, blob.Hash(), []byte("truncated garbage"))

	storeObject(t, store, blob)

	obj, err := store.Read(blob.Hash())
	if err != nil {
		t.Fatalf("Expected repaired object to be readable: %v", err)
	}
	assertIsBlob(t, obj, blob.Content())
	testutils.AssertFileExists(t, objectPath)
	testutils.AssertNoTempFiles(t, filepath.Join(repoPath, constants.GitDir, constants.Objects))
}

func TestObjectStore_Exists(t *testing.T) {
	store, _ := setupObjectStore(t)
	blob := NewBlob([]byte("test\n"))

	// Should not exist initially
	exists, err := store.Exists(blob.Hash())
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("Blob should not exist before storing")
	}

	storeObject(t, store, blob)

	// Should exist now
	exists, err = store.Exists(blob.Hash())
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("Blob should exist after storing")
	}
}

func TestObjectStore_ReadNonExistent(t *testing.T) {
	store, _ := setupObjectStore(t)

	// Try to read a non-existent hash
	fakeHash := "0000000000000000000000000000000000000000"
	_, err := store.Read(fakeHash)

	if err == nil {
		t.Fatal("Expected error when reading non-existent object")
	}

	if !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("Expected ErrObjectNotFound, got: %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected file not found error, got: %v", err)
	}
	if errors.Is(err, ErrStoreIO) {
		t.Errorf("Missing object should not be reported as I/O failure: %v", err)
	}
}

// TestObjectStore_InvalidHash verifies malformed digests never reach the filesystem.
func TestObjectStore_InvalidHash(t *testing.T) {
	store, _ := setupObjectStore(t)

	for _, hash := range []string{"", "abc", "zz09523ce4baf1940ee8fef49f6cade5afe3d03z", "../../../../etc/passwd0000000000000000000"} {
		if _, err := store.Read(hash); !errors.Is(err, utils.ErrInvalidHash) {
			t.Errorf("Read(%q): expected ErrInvalidHash, got %v", hash, err)
		}
		if _, err := store.Exists(hash); !errors.Is(err, utils.ErrInvalidHash) {
			t.Errorf("Exists(%q): expected ErrInvalidHash, got %v", hash, err)
		}
	}
}

// TestObjectStore_ReadHashMismatch verifies content stored under the wrong address is rejected.
func TestObjectStore_ReadHashMismatch(t *testing.T) {
	store, repoPath := setupObjectStore(t)

	wrongHash := NewBlob([]byte("expected\n")).Hash()
	data := testutils.EncodeLooseObject(t, "blob 7\x00", []byte("actual\n"))
	testutils.WriteLooseObject(t, repoPath, wrongHash, data)

	_, err := store.Read(wrongHash)
	if !errors.Is(err, ErrHashMismatch) {
		t.Fatalf("Expected ErrHashMismatch, got: %v", err)
	}
}

// TestObjectStore_ReadTree verifies a stored tree passes framing and reports
// unimplemented structure rather than a decode failure.
func TestObjectStore_ReadTree(t *testing.T) {
	store, repoPath := setupObjectStore(t)

	content := []byte("100644 a.txt\x00" + string(bytes.Repeat([]byte{0xab}, constants.HashByteLength)))
	hash := testutils.ExpectedHash(content, string(TreeObjectType))
	header := "tree " + strconv.Itoa(len(content)) + "\x00"
	testutils.WriteLooseObject(t, repoPath, hash, testutils.EncodeLooseObject(t, header, content))

	_, err := store.Read(hash)

	var unimplemented *UnimplementedStructureError
	if !errors.As(err, &unimplemented) {
		t.Fatalf("Expected *UnimplementedStructureError, got: %v", err)
	}
	if unimplemented.Type != TreeObjectType {
		t.Errorf("Expected type %s, got %s", TreeObjectType, unimplemented.Type)
	}
	if !bytes.Equal(unimplemented.Content, content) {
		t.Error("Tree body should be carried by the error")
	}

	if _, err := store.ReadBlob(hash); !errors.Is(err, ErrUnimplementedStructure) {
		t.Errorf("Expected ReadBlob to surface ErrUnimplementedStructure, got: %v", err)
	}
}

// TestObjectStore_ReadStandardZlibObject verifies an object written by git itself reads back.
func TestObjectStore_ReadStandardZlibObject(t *testing.T) {
	store, repoPath := setupObjectStore(t)

	data := testutils.EncodeLooseObject(t, "blob 27\x00", []byte(testutils.SimpleBlobContent))
	testutils.WriteLooseObject(t, repoPath, testutils.SimpleBlobHash, data)

	blob, err := store.ReadBlob(testutils.SimpleBlobHash)
	if err != nil {
		t.Fatalf("ReadBlob failed: %v", err)
	}
	assertBlobContent(t, blob, []byte(testutils.SimpleBlobContent))
}

// TestHash_CreatesNoFiles verifies hashing alone never touches the store.
func TestHash_CreatesNoFiles(t *testing.T) {
	_, repoPath := setupObjectStore(t)
	objectsDir := filepath.Join(repoPath, constants.GitDir, constants.Objects)

	hash, err := Hash(NewBlob([]byte(testutils.SimpleBlobContent)))
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if hash != testutils.SimpleBlobHash {
		t.Fatalf("Expected hash %s, got %s", testutils.SimpleBlobHash, hash)
	}

	entries, err := os.ReadDir(objectsDir)
	if err != nil {
		t.Fatalf("Failed to list objects dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no objects, found %d entries", len(entries))
	}
}

// TestObjectStore_StorePlaceholderFails verifies unstructured types are never written.
func TestObjectStore_StorePlaceholderFails(t *testing.T) {
	store, repoPath := setupObjectStore(t)

	_, err := store.Store(&Tree{})
	if !errors.Is(err, ErrUnimplementedStructure) {
		t.Fatalf("Expected ErrUnimplementedStructure, got: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(repoPath, constants.GitDir, constants.Objects))
	if err != nil {
		t.Fatalf("Failed to list objects dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no objects, found %d entries", len(entries))
	}
}

// TestObjectStore_RenameFailure verifies an interrupted save leaves neither
// a partial object nor a temporary file behind.
func TestObjectStore_RenameFailure(t *testing.T) {
	store, repoPath := setupObjectStore(t)
	blob := NewBlob([]byte("never lands\n"))

	// A non-empty directory at the object path makes the final rename fail
	objectPath := testutils.ObjectFilePath(repoPath, blob.Hash())
	if err := os.MkdirAll(objectPath, constants.DirPerms); err != nil {
		t.Fatalf("Failed to create blocking directory: %v", err)
	}
	testutils.CreateTestFile(t, objectPath, "occupied", []byte("x"))

	_, err := store.Store(blob)
	if err == nil {
		t.Fatal("Expected Store to fail when the object path cannot be replaced")
	}
	if !errors.Is(err, ErrStoreIO) {
		t.Errorf("Expected ErrStoreIO, got: %v", err)
	}
	if errors.Is(err, ErrObjectNotFound) {
		t.Errorf("Write failure should not be reported as not found: %v", err)
	}

	testutils.AssertDirExists(t, objectPath)
	testutils.AssertNoTempFiles(t, filepath.Join(repoPath, constants.GitDir, constants.Objects))
}

// TestObjectStore_ConcurrentStoreSameObject verifies parallel saves of one
// digest all succeed and leave a single readable object.
func TestObjectStore_ConcurrentStoreSameObject(t *testing.T) {
	store, repoPath := setupObjectStore(t)
	content := bytes.Repeat([]byte("shared content\n"), 1000)

	const writers = 8
	var wg sync.WaitGroup
	hashes := make([]string, writers)
	errs := make([]error, writers)

	for i := 0; i < writers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			hashes[i], errs[i] = store.Store(NewBlob(content))
		}()
	}
	wg.Wait()

	expectedHash := testutils.ExpectedHash(content, string(BlobObjectType))
	for i := 0; i < writers; i++ {
		if errs[i] != nil {
			t.Fatalf("Store %d failed: %v", i, errs[i])
		}
		if hashes[i] != expectedHash {
			t.Errorf("Store %d returned %s, want %s", i, hashes[i], expectedHash)
		}
	}

	readBlob, err := store.ReadBlob(expectedHash)
	if err != nil {
		t.Fatalf("Failed to read concurrently stored blob: %v", err)
	}
	assertBlobContent(t, readBlob, content)
	testutils.AssertNoTempFiles(t, filepath.Join(repoPath, constants.GitDir, constants.Objects))
}
