package objects

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/KostasZigo/gitsync/internal/constants"
	"github.com/KostasZigo/gitsync/internal/fanout"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
)

// maxPreallocation caps the buffer grown from an untrusted declared length.
const maxPreallocation = 1 << 20

// SerializeWithHeader writes the canonical encoding "<type> <len>\0<body>"
// to w and returns the hex SHA-1 of exactly those bytes.
func SerializeWithHeader(obj Object, w io.Writer) (string, error) {
	content, err := objectBody(obj)
	if err != nil {
		return "", err
	}

	hasher := sha1.New()
	out := fanout.New(hasher, w)

	if err := out.WriteAll(append([]byte(obj.Type()), constants.TypeSeparator)); err != nil {
		return "", fmt.Errorf("failed to write object type: %w", err)
	}

	length := strconv.AppendInt(nil, int64(len(content)), 10)
	if err := out.WriteAll(append(length, constants.NullByte)); err != nil {
		return "", fmt.Errorf("failed to write object length: %w", err)
	}

	if err := out.WriteAll(content); err != nil {
		return "", fmt.Errorf("failed to write object content: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// objectBody returns the canonical body of obj. Structured variants are
// serialized up front so a failure never leaves a partial header in the sink.
func objectBody(obj Object) ([]byte, error) {
	if b, ok := obj.(bodied); ok {
		return b.body(), nil
	}

	var buffer bytes.Buffer
	if err := obj.Serialize(&buffer); err != nil {
		return nil, fmt.Errorf("failed to serialize %s: %w", obj.Type(), err)
	}
	return buffer.Bytes(), nil
}

// SerializeZlib returns the digest of obj together with its zlib-compressed
// canonical encoding, both produced from the same pass over the bytes.
func SerializeZlib(obj Object, level int) (string, []byte, error) {
	var buffer bytes.Buffer
	writer, err := zlib.NewWriterLevel(&buffer, level)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create zlib writer: %w", err)
	}

	hash, err := SerializeWithHeader(obj, writer)
	if err != nil {
		writer.Close()
		return "", nil, err
	}

	// Call Close in order to flush any buffered data
	if err := writer.Close(); err != nil {
		return "", nil, fmt.Errorf("failed to compress object: %w", err)
	}

	return hash, buffer.Bytes(), nil
}

// SerializeZlibDefault is SerializeZlib at the default compression level.
func SerializeZlibDefault(obj Object) (string, []byte, error) {
	return SerializeZlib(obj, zlib.DefaultCompression)
}

// Hash computes only the digest of obj.
func Hash(obj Object) (string, error) {
	return SerializeWithHeader(obj, io.Discard)
}

// DeserializeZlib decompresses a stored object, validates its header
// against the body and rebuilds the typed object.
func DeserializeZlib(r io.Reader) (Object, error) {
	objectType, content, err := decodeZlib(r)
	if err != nil {
		return nil, err
	}
	return Deserialize(objectType, content)
}

// DeserializeRead wraps everything read from r as the body of objectType.
// No header is expected.
func DeserializeRead(objectType ObjectType, r io.Reader) (Object, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read object content: %w", err)
	}
	return Deserialize(objectType, content)
}

// Deserialize builds the typed object for a verified body.
func Deserialize(objectType ObjectType, content []byte) (Object, error) {
	switch objectType {
	case BlobObjectType:
		return NewBlob(content), nil
	case CommitObjectType, TreeObjectType, TagObjectType:
		return nil, &UnimplementedStructureError{Type: objectType, Content: content}
	default:
		return nil, &UnknownTypeError{Token: string(objectType)}
	}
}

// decodeZlib parses "<type> <len>\0<body>" out of a zlib stream and checks
// the declared length against the bytes actually present.
func decodeZlib(r io.Reader) (ObjectType, []byte, error) {
	decompressor, err := zlib.NewReader(r)
	if errors.Is(err, io.EOF) {
		return "", nil, fmt.Errorf("%w: empty stream", ErrCorruptStream)
	}
	if err != nil {
		return "", nil, streamError(err)
	}
	defer decompressor.Close()

	reader := bufio.NewReader(decompressor)

	token, err := readField(reader, constants.TypeSeparator, "type")
	if err != nil {
		return "", nil, err
	}
	objectType, err := ParseObjectType(string(token))
	if err != nil {
		return "", nil, err
	}

	field, err := readField(reader, constants.NullByte, "length")
	if err != nil {
		return "", nil, err
	}
	// bitSize 63 keeps every accepted value representable as int64
	parsed, err := strconv.ParseUint(string(field), 10, 63)
	if err != nil {
		return "", nil, &InvalidLengthError{Field: string(field), Err: err}
	}
	declared := int64(parsed)

	var content bytes.Buffer
	content.Grow(int(min(declared, maxPreallocation)))
	actual, err := content.ReadFrom(reader)
	if err != nil {
		return "", nil, streamError(err)
	}

	if actual != declared {
		return "", nil, &SizeMismatchError{Declared: declared, Actual: actual}
	}

	return objectType, content.Bytes(), nil
}

// readField reads up to delim and strips it. Reaching the end of the
// stream first means the header is malformed.
func readField(reader *bufio.Reader, delim byte, name string) ([]byte, error) {
	field, err := reader.ReadBytes(delim)
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: stream ended before %s terminator", ErrMalformedHeader, name)
	}
	if err != nil {
		return nil, streamError(err)
	}
	return field[:len(field)-1], nil
}

// streamError classifies errors raised while inflating.
func streamError(err error) error {
	var corrupt flate.CorruptInputError
	if errors.As(err, &corrupt) ||
		errors.Is(err, zlib.ErrChecksum) ||
		errors.Is(err, zlib.ErrHeader) ||
		errors.Is(err, zlib.ErrDictionary) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", ErrCorruptStream, err)
	}
	return fmt.Errorf("failed to read object stream: %w", err)
}
