// Package config defines the dispatch configuration structure and its YAML
// loader. Configuration lives in a single config.yaml inside the
// configuration directory (default ~/.config/dispatch); missing files fall
// back to built-in defaults so a bare `dispatch serve` works out of the box.
//
// Secrets (API keys) are never required in the file: environment variables
// DISPATCH_BRAIN_API_KEY and DISPATCH_TOOLS_API_KEY override whatever the
// file contains.
package config
