package gobind

// IsStdlibPackage exposes the GOROOT lookup behind IsStdlibType.
var IsStdlibPackage = isStdlibPackage
