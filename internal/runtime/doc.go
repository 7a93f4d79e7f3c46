// Package runtime is the registry of locally installed NW.js runtime and SDK
// distributions.
//
// Every distribution lives in its own directory under the registry root,
// named the way the upstream archives are named:
//
//	nwjs-v0.19.0-linux-x64        redistributable runtime
//	nwjs-sdk-v0.19.0-linux-x64    SDK, which also ships the nwjc compiler
//
// Installing never touches the network: the distribution archive has to be
// present in the registry's archive directory already.
package runtime
