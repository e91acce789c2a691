package objects

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/KostasZigo/gitsync/internal/constants"
)

// Store errors. A *StoreError matches ErrObjectNotFound or ErrStoreIO.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrStoreIO        = errors.New("object store I/O failure")
	ErrHashMismatch   = errors.New("object hash mismatch")
)

// StoreError wraps a filesystem failure on a single object.
type StoreError struct {
	Op   string
	Hash string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("failed to %s object %s: %v", e.Op, e.Hash, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	switch target {
	case ErrObjectNotFound:
		return errors.Is(e.Err, fs.ErrNotExist)
	case ErrStoreIO:
		return !errors.Is(e.Err, fs.ErrNotExist)
	default:
		return false
	}
}

// Storage is the directory an ObjectStore keeps its loose objects in.
// Paths are slash separated and relative to the storage root.
type Storage interface {
	fs.StatFS

	// ObjectPath maps a hex digest to the path of its loose object
	ObjectPath(hash string) (string, error)

	// WriteFileAtomic replaces name with data without exposing a partial file
	WriteFileAtomic(name string, data []byte, perm fs.FileMode) error
}

// ObjectStore manages storage of loose objects
type ObjectStore struct {
	storage Storage
}

func NewObjectStore(storage Storage) *ObjectStore {
	return &ObjectStore{
		storage: storage,
	}
}

// Store saves obj under objects/<first 2 chars>/<rest> and returns its hash.
// A verified copy already on disk is left untouched; an unreadable one is replaced.
func (store *ObjectStore) Store(obj Object) (string, error) {
	hash, data, err := SerializeZlibDefault(obj)
	if err != nil {
		return "", fmt.Errorf("failed to serialize object: %w", err)
	}

	objectPath, err := store.storage.ObjectPath(hash)
	if err != nil {
		return "", err
	}

	if store.isStored(hash, objectPath) {
		slog.Debug("Object with this hash already exists",
			"hash", hash)
		return hash, nil
	}

	if err := store.storage.WriteFileAtomic(objectPath, data, constants.ObjectPerms); err != nil {
		return "", &StoreError{Op: "write", Hash: hash, Err: err}
	}

	slog.Debug("Stored object",
		"hash", hash,
		"type", obj.Type(),
		"compressedSize", len(data))

	return hash, nil
}

// isStored reports whether objectPath already holds a valid copy of hash.
func (store *ObjectStore) isStored(hash, objectPath string) bool {
	if _, err := store.storage.Stat(objectPath); err != nil {
		return false
	}

	_, err := store.readRaw(hash, objectPath)
	if err == nil {
		return true
	}

	slog.Warn("Replacing unreadable object",
		"hash", hash,
		"error", err)
	return false
}

// Read loads the object stored under hash.
// The stored bytes must hash back to the requested digest.
func (store *ObjectStore) Read(hash string) (Object, error) {
	objectPath, err := store.storage.ObjectPath(hash)
	if err != nil {
		return nil, err
	}

	raw, err := store.readRaw(hash, objectPath)
	if err != nil {
		return nil, err
	}

	return Deserialize(raw.objectType, raw.content)
}

// ReadBlob loads the object stored under hash and requires it to be a blob.
func (store *ObjectStore) ReadBlob(hash string) (*Blob, error) {
	obj, err := store.Read(hash)
	if err != nil {
		return nil, err
	}

	blob, ok := obj.(*Blob)
	if !ok {
		return nil, fmt.Errorf("object %s is a %s, not a blob", hash, obj.Type())
	}
	return blob, nil
}

// readRaw decodes the object file and verifies its digest without giving
// the body any structure, so every type can be checked.
func (store *ObjectStore) readRaw(hash, objectPath string) (*rawObject, error) {
	file, err := store.storage.Open(objectPath)
	if err != nil {
		return nil, &StoreError{Op: "read", Hash: hash, Err: err}
	}
	defer file.Close()

	objectType, content, err := decodeZlib(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode object %s: %w", hash, err)
	}

	raw := &rawObject{objectType: objectType, content: content}
	actual, err := Hash(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to hash object %s: %w", hash, err)
	}

	if !strings.EqualFold(actual, hash) {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, hash, actual)
	}

	return raw, nil
}

// Exists checks if an object exists in storage
func (store *ObjectStore) Exists(hash string) (bool, error) {
	objectPath, err := store.storage.ObjectPath(hash)
	if err != nil {
		return false, err
	}

	_, err = store.storage.Stat(objectPath)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &StoreError{Op: "stat", Hash: hash, Err: err}
	}
	return true, nil
}
