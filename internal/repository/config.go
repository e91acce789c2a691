package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/KostasZigo/gitsync/internal/constants"
	"gopkg.in/ini.v1"
)

// CoreConfig mirrors the [core] section of the repository config.
type CoreConfig struct {
	RepositoryFormatVersion int  `ini:"repositoryformatversion"`
	FileMode                bool `ini:"filemode"`
	Bare                    bool `ini:"bare"`
}

// defaultConfig returns the config written by Init.
func defaultConfig() *ini.File {
	config := ini.Empty()
	core := config.Section(constants.CoreSection)
	core.Key(constants.RepositoryFormatVersion).SetValue(strconv.Itoa(constants.SupportedRepositoryFormat))
	core.Key(constants.FileMode).SetValue("false")
	core.Key(constants.Bare).SetValue("false")
	return config
}

// loadConfig reads and validates the config file at path.
func loadConfig(path string) (*ini.File, CoreConfig, error) {
	config, err := ini.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, CoreConfig{}, fmt.Errorf("%w: missing config file %s", ErrNotRepository, path)
		}
		return nil, CoreConfig{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	core, err := parseCore(config)
	if err != nil {
		return nil, CoreConfig{}, err
	}

	return config, core, nil
}

// parseCore maps and validates the core section.
func parseCore(config *ini.File) (CoreConfig, error) {
	section, err := config.GetSection(constants.CoreSection)
	if err != nil {
		return CoreConfig{}, fmt.Errorf("%w: no %s section", ErrInvalidConfig, constants.CoreSection)
	}

	if !section.HasKey(constants.RepositoryFormatVersion) {
		return CoreConfig{}, fmt.Errorf("%w: no %s in %s", ErrInvalidConfig,
			constants.RepositoryFormatVersion, constants.CoreSection)
	}

	version, err := section.Key(constants.RepositoryFormatVersion).Int()
	if err != nil {
		return CoreConfig{}, fmt.Errorf("%w: could not parse %s: %v", ErrInvalidConfig,
			constants.RepositoryFormatVersion, err)
	}
	if version != constants.SupportedRepositoryFormat {
		return CoreConfig{}, fmt.Errorf("%w: version %d, only %d is supported", ErrUnsupportedFormat,
			version, constants.SupportedRepositoryFormat)
	}

	var core CoreConfig
	if err := section.MapTo(&core); err != nil {
		return CoreConfig{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return core, nil
}
