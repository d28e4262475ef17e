// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with TOML as
// the file format.
//
// Configuration is loaded from ~/.config/repo2podman/config.toml (or the XDG
// equivalent on Linux, ~/Library/Application Support/repo2podman/config.toml
// on macOS, %APPDATA%\repo2podman\config.toml on Windows), overlaid with
// REPO2PODMAN_-prefixed environment variables. The registry secret is only
// ever read from the environment, never from the file.
package config
