package repository

import "errors"

// Repository errors concern layout and configuration, never object content.
var (
	ErrRepositoryExists  = errors.New("repository already exists")
	ErrNotRepository     = errors.New("not a repository")
	ErrInvalidConfig     = errors.New("invalid repository config")
	ErrUnsupportedFormat = errors.New("unsupported repository format")
	ErrNotDirectory      = errors.New("not a directory")
	ErrPathEscape        = errors.New("path escapes repository directory")
)
