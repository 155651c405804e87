package main

import (
	"os"

	"github.com/BurntSushi/toml"
)

// projectConfig is the optional .qonfigc.toml project file, read when
// -config is not given explicitly: "./.qonfigc.toml" in the current
// directory. All fields are optional; flags always override a value
// loaded from the file, matching emergent-company-specmcp's
// internal/config precedence (env/flags over file over built-in
// defaults).
type projectConfig struct {
	SearchPath string `toml:"search_path"`
	OutDir     string `toml:"out_dir"`
	Cache      string `toml:"cache"`
}

// loadProjectConfig reads path if non-empty, or "./.qonfigc.toml" if it
// exists. A missing default file is not an error: the project file is
// optional, like specmcp's config.Load.
func loadProjectConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	if path == "" {
		path = ".qonfigc.toml"
		if _, err := os.Stat(path); err != nil {
			return cfg, nil
		}
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
