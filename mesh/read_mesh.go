package mesh

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ReadMeshFile reads a mesh file based on extension
func ReadMeshFile(filename string) (*Mesh, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".neu":
		return ReadGambitNeutralFile(filename)
	case ".msh":
		return ReadGmshFile(filename)
	default:
		return nil, fmt.Errorf("unsupported mesh format: %s", ext)
	}
}
