//go:build !docsdebug

package header

// DebugBuild reports whether the binary was built with the docsdebug tag.
var DebugBuild = false
