package standalone

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoaderForPath(t *testing.T) {
	cases := map[string]Loader{
		"src/app.js":      LoaderJS,
		"src/app.mjs":     LoaderJS,
		"src/app.cjs":     LoaderJS,
		"pages/index.tsx": LoaderTSX,
		"lib/mod.ts":      LoaderTS,
		"style.css":       LoaderCSS,
		"config.json":     LoaderJSON,
		"Cargo.toml":      LoaderTOML,
		"core.wasm":       LoaderWasm,
		"README.md":       LoaderText,
		"logo.png":        LoaderFile,
		"no-extension":    LoaderFile,
	}
	for path, want := range cases {
		require.Equal(t, want, LoaderForPath(path), "path %s", path)
	}
}

func TestLoaderExtRoundTrip(t *testing.T) {
	for l := LoaderJSX; l <= LoaderText; l++ {
		require.NotEmpty(t, l.String())
		require.NotEmpty(t, l.Ext())
		require.Equal(t, l, LoaderForPath("module"+l.Ext()))
	}
}

func TestLoaderUnknown(t *testing.T) {
	l := Loader(200)
	require.Equal(t, "unknown", l.String())
	require.Equal(t, ".bin", l.Ext())
}
