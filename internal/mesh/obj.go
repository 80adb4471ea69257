package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// WriteOBJ writes meshes as Wavefront OBJ, one object per patch. Faces carry
// vertex and normal indices.
func WriteOBJ(w io.Writer, meshes []*Mesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# roam terrain, %d patches\n", len(meshes))

	base := 1 // OBJ indices are 1-based and global
	for _, m := range meshes {
		fmt.Fprintf(bw, "o tile_%d_%d\n", m.TileX, m.TileZ)
		for _, v := range m.Vertices {
			fmt.Fprintf(bw, "v %g %g %g\n", v.Position[0], v.Position[1], v.Position[2])
		}
		for _, v := range m.Vertices {
			fmt.Fprintf(bw, "vn %g %g %g\n", v.Normal[0], v.Normal[1], v.Normal[2])
		}
		for i := 0; i+2 < len(m.Indices); i += 3 {
			a := base + int(m.Indices[i])
			b := base + int(m.Indices[i+1])
			c := base + int(m.Indices[i+2])
			fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
		}
		base += len(m.Vertices)
	}
	return bw.Flush()
}

// WriteOBJFile writes meshes to path, replacing any existing file.
func WriteOBJFile(path string, meshes []*Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteOBJ(f, meshes); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
