package server

import "os"

// openMapFile opens a registered map file by path. A thin wrapper kept
// separate from server.go so the HTTP layer never imports os directly
// outside this one seam.
func openMapFile(path string) (*os.File, error) {
	return os.Open(path)
}
