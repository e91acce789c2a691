package objects

import (
	"fmt"
	"io"
	"strings"

	"github.com/KostasZigo/gitsync/internal/constants"
)

// ObjectType is the lowercase type name written in an object header.
type ObjectType string

const (
	BlobObjectType   ObjectType = constants.BlobType
	CommitObjectType ObjectType = constants.CommitType
	TreeObjectType   ObjectType = constants.TreeType
	TagObjectType    ObjectType = constants.TagType
)

// ObjectTypes lists every recognized type.
var ObjectTypes = []ObjectType{BlobObjectType, CommitObjectType, TreeObjectType, TagObjectType}

func (ot ObjectType) IsValid() bool {
	switch ot {
	case BlobObjectType, CommitObjectType, TreeObjectType, TagObjectType:
		return true
	default:
		return false
	}
}

func (ot ObjectType) String() string {
	return string(ot)
}

// ParseObjectType matches name case-insensitively against the known types.
// There is no fallback: anything else is an *UnknownTypeError.
func ParseObjectType(name string) (ObjectType, error) {
	ot := ObjectType(strings.ToLower(name))
	if !ot.IsValid() {
		return "", &UnknownTypeError{Token: name}
	}
	return ot, nil
}

// Object represents any object that can be stored.
// Header framing and hashing live in the codec; a variant only supplies
// its type and its canonical body.
type Object interface {
	// Type returns the header type name of the object
	Type() ObjectType

	// Serialize writes the canonical body, without header
	Serialize(w io.Writer) error
}

// bodied is implemented by objects whose body is already in memory,
// letting the codec write it without an intermediate buffer.
type bodied interface {
	body() []byte
}

// Commit is a placeholder: commits are recognized but carry no structure yet.
type Commit struct{}

func (*Commit) Type() ObjectType { return CommitObjectType }

func (*Commit) Serialize(io.Writer) error {
	return &UnimplementedStructureError{Type: CommitObjectType}
}

// Tree is a placeholder: trees are recognized but carry no structure yet.
type Tree struct{}

func (*Tree) Type() ObjectType { return TreeObjectType }

func (*Tree) Serialize(io.Writer) error {
	return &UnimplementedStructureError{Type: TreeObjectType}
}

// Tag is a placeholder: tags are recognized but carry no structure yet.
type Tag struct{}

func (*Tag) Type() ObjectType { return TagObjectType }

func (*Tag) Serialize(io.Writer) error {
	return &UnimplementedStructureError{Type: TagObjectType}
}

// rawObject is a verified type and body that has not been given structure.
// The store uses it to hash stored bytes of any type.
type rawObject struct {
	objectType ObjectType
	content    []byte
}

func (r *rawObject) Type() ObjectType { return r.objectType }

func (r *rawObject) Serialize(w io.Writer) error {
	_, err := w.Write(r.content)
	return err
}

func (r *rawObject) body() []byte { return r.content }

func (r *rawObject) String() string {
	return fmt.Sprintf("RawObject{type: %s, size: %d bytes}", r.objectType, len(r.content))
}
