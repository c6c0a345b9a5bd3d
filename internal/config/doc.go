// Package config resolves the ambient settings and XDG directory layout
// shared by every pack command.
//
// Settings are environment-first: PACK_LOG_LEVEL, PACK_PRINT_LOGS,
// PACK_CONFIG_DIR, and PACK_DATA_DIR are read by Load and may be
// overridden afterward by the CLI's --log-level/--print-logs/--config-dir/
// --data-dir flags. Paths resolves the directory table:
//
//   - Data:   $XDG_DATA_HOME/pack   (packages/, state/, cache/)
//   - Config: $XDG_CONFIG_HOME/pack (config, packages/<name>/, pkgs.d/)
//
// On Windows both XDG bases fall back to APPDATA.
package config
