package standalone

import "path/filepath"

// Loader identifies how the runtime interprets a module's contents. The
// value is stored verbatim in the module record's loader byte.
type Loader uint8

const (
	LoaderJSX Loader = iota
	LoaderJS
	LoaderTS
	LoaderTSX
	LoaderCSS
	LoaderFile
	LoaderJSON
	LoaderTOML
	LoaderWasm
	LoaderText
)

var loaderNames = map[Loader]string{
	LoaderJSX:  "jsx",
	LoaderJS:   "js",
	LoaderTS:   "ts",
	LoaderTSX:  "tsx",
	LoaderCSS:  "css",
	LoaderFile: "file",
	LoaderJSON: "json",
	LoaderTOML: "toml",
	LoaderWasm: "wasm",
	LoaderText: "text",
}

// loaderExts is the extension used when a module is written back to
// disk. Loaders carrying opaque bytes fall back to .bin.
var loaderExts = map[Loader]string{
	LoaderJSX:  ".jsx",
	LoaderJS:   ".js",
	LoaderTS:   ".ts",
	LoaderTSX:  ".tsx",
	LoaderCSS:  ".css",
	LoaderFile: ".bin",
	LoaderJSON: ".json",
	LoaderTOML: ".toml",
	LoaderWasm: ".wasm",
	LoaderText: ".txt",
}

// extLoaders maps file extensions to loaders when collecting build
// outputs from disk. Anything unlisted is embedded as opaque bytes.
var extLoaders = map[string]Loader{
	".jsx":  LoaderJSX,
	".js":   LoaderJS,
	".mjs":  LoaderJS,
	".cjs":  LoaderJS,
	".ts":   LoaderTS,
	".mts":  LoaderTS,
	".cts":  LoaderTS,
	".tsx":  LoaderTSX,
	".css":  LoaderCSS,
	".bin":  LoaderFile,
	".json": LoaderJSON,
	".toml": LoaderTOML,
	".wasm": LoaderWasm,
	".txt":  LoaderText,
	".md":   LoaderText,
}

func (l Loader) String() string {
	if name, ok := loaderNames[l]; ok {
		return name
	}
	return "unknown"
}

// Ext returns the file extension modules of this loader are written
// back with.
func (l Loader) Ext() string {
	if ext, ok := loaderExts[l]; ok {
		return ext
	}
	return ".bin"
}

// LoaderForPath picks the loader for a file by its extension,
// defaulting to the opaque file loader.
func LoaderForPath(path string) Loader {
	if l, ok := extLoaders[filepath.Ext(path)]; ok {
		return l
	}
	return LoaderFile
}
