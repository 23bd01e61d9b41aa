package orm

import "github.com/rs/zerolog"

// log is the package-wide ambient logging sink, defaulting to a no-op so
// structured logging stays opt-in. Save/Load/LoadAll/Delete/Query log
// through this at Debug level and schema synchronization at Info level;
// nothing in this package requires a logger to be installed.
var log = zerolog.Nop()

// SetLogger installs l as the sink for diagnostics emitted by this package.
func SetLogger(l zerolog.Logger) {
	log = l
}
