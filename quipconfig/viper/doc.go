// Package viper provides a viper-based Backend implementation for the config package.
//
// This package isolates the viper dependency from the core config package, allowing
// users who need a different configuration backend to avoid importing viper.
//
// The [Backend] type implements all four config interfaces:
//   - [quipconfig.Backend] - core configuration operations
//   - [quipconfig.Watcher] - configuration file watching
//   - [quipconfig.Writer] - configuration file writing
//   - [quipconfig.EnvBinder] - environment variable binding
//
// # Basic Usage
//
//	import (
//	    "github.com/petabytecl/quip/quipconfig"
//	    configviper "github.com/petabytecl/quip/quipconfig/viper"
//	)
//
//	backend := configviper.New()
//	mgr := quipconfig.NewWithBackend(backend)
//
// The Backend wraps a viper.Viper instance and delegates all operations to it.
// Additional viper-specific methods are exposed for configuration loading
// (SetConfigName, AddConfigPath, ReadInConfig, etc.).
package viper
