package objects

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

type Blob struct {
	content []byte
}

func NewBlob(content []byte) *Blob {
	return &Blob{content: content}
}

func NewBlobFromFile(filepath string) (*Blob, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filepath, err)
	}
	return NewBlob(content), nil
}

func NewBlobFromReader(reader io.Reader) (*Blob, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob content: %w", err)
	}
	return NewBlob(content), nil
}

func (b *Blob) Type() ObjectType {
	return BlobObjectType
}

func (b *Blob) Serialize(w io.Writer) error {
	_, err := w.Write(b.content)
	return err
}

func (b *Blob) body() []byte {
	return b.content
}

// Hash returns the SHA-1 hash of the blob.
// Hashing a blob never fails: the only sinks are the hasher and io.Discard.
func (b *Blob) Hash() string {
	hash, _ := Hash(b)
	return hash
}

func (b *Blob) Content() []byte {
	return b.content
}

func (b *Blob) Size() int {
	return len(b.content)
}

// Equal reports whether both blobs hold the same bytes.
func (b *Blob) Equal(other *Blob) bool {
	return other != nil && bytes.Equal(b.content, other.content)
}

func (b *Blob) String() string {
	return fmt.Sprintf("Blob{size: %d bytes}", b.Size())
}
