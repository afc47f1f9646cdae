package oci

// Media types and file extensions for the supported artifact kinds. These
// are fixed pairings: an artifact's media type determines its config media
// type and output extension, none of which are configurable.
const (
	// WasmMediaType is the layer media type for signed actor modules.
	WasmMediaType = "application/vnd.module.wasm.content.layer.v1+wasm"

	// WasmConfigMediaType is the config media type paired with actor modules.
	WasmConfigMediaType = "application/vnd.wascc.actor.archive.config"

	// WasmFileExtension is the output extension for pulled actor modules.
	WasmFileExtension = ".wasm"

	// ProviderArchiveMediaType is the layer media type for provider archives.
	ProviderArchiveMediaType = "application/vnd.wascc.provider.archive.layer.v1+par"

	// ProviderArchiveConfigMediaType is the config media type paired with
	// provider archives.
	ProviderArchiveConfigMediaType = "application/vnd.wascc.provider.archive.config"

	// ProviderArchiveFileExtension is the output extension for pulled
	// provider archives.
	ProviderArchiveFileExtension = ".par.gz"
)

// DefaultTag is the floating tag a reference resolves to when none is given.
const DefaultTag = "latest"
