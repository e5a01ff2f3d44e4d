// Package config provides configuration management for playlist-organizer.
//
// This package handles:
//   - Loading and saving settings from JSON or TOML files
//   - Default configuration values
//   - Validation of directory names, metadata sources and cover art options
//   - Conversion to model.OrganizeConfig and metasource.Options
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Reads playlists from ./Input, writes to ./Output/Files
//	// Tries ffprobe, then the native tag readers
//	// Cover art export disabled
//
// # Loading from File
//
// The format follows the file extension: ".toml" is decoded as TOML,
// anything else as JSON.
//
//	settings, err := config.Load("/path/to/config.toml")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// A TOML file only needs the keys it overrides:
//
//	input_dir = "~/Playlists"
//	output_dir = "/mnt/music/Organized"
//	metadata_sources = ["taglib", "tag"]
//
// # Saving Settings
//
//	settings.OutputDir = "/mnt/music/Organized"
//	err := settings.Save("/path/to/config.json")
package config
