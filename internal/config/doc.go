// Package config loads the two files that drive a publish run: the publish
// config (nwjs.publish.json, or its HCL and TOML equivalents) and the
// application manifest (package.json).
//
// Every format is first decoded into a generic map so that defaults are
// merged the same way regardless of the source format: keys missing at the
// top level are taken from the built-in defaults, present keys win. The
// merged map is then bound to the typed model.
package config
