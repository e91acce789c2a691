package constants

import "os"

// Command name constants used in tests and error messages.
// Cobra Use fields remain inline for CLI discoverability.
const (
	InitCmdName       = "init"
	HashObjectCmdName = "hash-object"
	CatFileCmdName    = "cat-file"
)

// Repository directory and file names define the metadata layout.
// The layout matches git's so loose objects stay interchangeable.
const (
	// GitDir is the repository metadata directory.
	GitDir = ".git"

	// Objects stores content-addressable loose objects.
	Objects = "objects"

	// Refs contains branch and tag references.
	Refs = "refs"

	// Heads stores branch pointers under refs/.
	Heads = "heads"

	// Tags stores tag pointers under refs/.
	Tags = "tags"

	// Branches is the legacy remote branch shorthand directory.
	Branches = "branches"

	// Head points to current branch or detached commit.
	Head = "HEAD"

	// Config is the INI repository configuration file.
	Config = "config"

	// Description holds the free-form repository description.
	Description = "description"
)

// Default repository values.
const (
	// DefaultBranch is the initial branch name for new repositories.
	DefaultBranch = "main"

	// DefaultRefPrefix is prepended to branch names in HEAD file.
	DefaultRefPrefix = "ref: refs/heads/"

	// DefaultDescription is written to the description file on init.
	DefaultDescription = "Unnamed repository; edit this file 'description' to name the repository."
)

// Config keys of the core section.
const (
	CoreSection               = "core"
	RepositoryFormatVersion   = "repositoryformatversion"
	FileMode                  = "filemode"
	Bare                      = "bare"
	SupportedRepositoryFormat = 0
)

// File system permissions for created files and directories.
const (
	// DirPerms grants read/write/execute to owner, read/execute to others (rwxr-xr-x).
	DirPerms os.FileMode = 0755

	// FilePerms grants read/write to owner, read-only to others (rw-r--r--).
	FilePerms os.FileMode = 0644

	// ObjectPerms makes loose objects read-only once written (r--r--r--).
	ObjectPerms os.FileMode = 0444
)

// Cryptographic hash properties.
const (
	// HashByteLength is byte length of SHA-1 hash (20 bytes).
	HashByteLength = 20

	// HashStringLength is hex string length of SHA-1 hash (40 characters).
	HashStringLength = 40

	// HashDirPrefixLength is subdirectory prefix length under objects/ (2 characters).
	HashDirPrefixLength = 2
)

// Object type names used in object headers.
const (
	BlobType   = "blob"
	CommitType = "commit"
	TreeType   = "tree"
	TagType    = "tag"
)

// Object format constants.
const (
	// TypeSeparator ends the type name in an object header ("blob <size>\0").
	TypeSeparator = ' '

	// NullByte separates header from content in objects.
	NullByte = '\x00'
)
