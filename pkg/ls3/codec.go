package ls3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/zusitools/go-ls3/pkg/math"
)

func vec3(x, y, z float32) math.Vec3 { return math.Vec3{X: x, Y: y, Z: z} }
func vec2(x, y float32) math.Vec2 { return math.Vec2{X: x, Y: y} }

// The .lsb stream carries fixed-layout records with no header or
// per-record framing: 40-byte vertex records (ten little-endian
// float32: position, normal, two UV pairs) followed by 6-byte face
// records (three uint16 indices). Record counts live in the companion
// metadata and must match the stream exactly.

// lsbVertex mirrors the on-disk vertex field order.
type lsbVertex struct {
	X, Y, Z    float32
	NX, NY, NZ float32
	U1, V1     float32
	U2, V2     float32
}

// WriteVertices encodes vertices in list order.
func WriteVertices(w io.Writer, verts []Vertex) error {
	for i := range verts {
		v := &verts[i]
		rec := lsbVertex{
			X: v.Position.X, Y: v.Position.Y, Z: v.Position.Z,
			NX: v.Normal.X, NY: v.Normal.Y, NZ: v.Normal.Z,
			U1: v.UV.X, V1: v.UV.Y,
			U2: v.UV2.X, V2: v.UV2.Y,
		}
		if err := binary.Write(w, binary.LittleEndian, &rec); err != nil {
			return fmt.Errorf("writing vertex %d: %w", i, err)
		}
	}
	return nil
}

// ReadVertices decodes exactly count vertex records.
func ReadVertices(r io.Reader, count int) ([]Vertex, error) {
	verts := make([]Vertex, count)
	for i := 0; i < count; i++ {
		var rec lsbVertex
		if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("vertex %d of %d: %w", i, count, ErrTruncatedStream)
			}
			return nil, err
		}
		verts[i] = Vertex{
			Position: vec3(rec.X, rec.Y, rec.Z),
			Normal:   vec3(rec.NX, rec.NY, rec.NZ),
			UV:       vec2(rec.U1, rec.V1),
			UV2:      vec2(rec.U2, rec.V2),
		}
	}
	return verts, nil
}

// WriteFaces encodes face records. The index order is reversed on the
// way out to flip the triangle winding between the in-memory and
// on-disk coordinate handedness.
func WriteFaces(w io.Writer, faces [][3]int) error {
	for i, f := range faces {
		var rec [3]uint16
		for c := 0; c < 3; c++ {
			idx := f[2-c]
			if idx < 0 || idx > 0xFFFF {
				return fmt.Errorf("face %d: index %d: %w", i, idx, ErrIndexOverflow)
			}
			rec[c] = uint16(idx)
		}
		if err := binary.Write(w, binary.LittleEndian, &rec); err != nil {
			return fmt.Errorf("writing face %d: %w", i, err)
		}
	}
	return nil
}

// ReadFaces decodes exactly count face records, applying the same
// index reversal as WriteFaces.
func ReadFaces(r io.Reader, count int) ([][3]int, error) {
	faces := make([][3]int, count)
	for i := 0; i < count; i++ {
		var rec [3]uint16
		if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("face %d of %d: %w", i, count, ErrTruncatedStream)
			}
			return nil, err
		}
		faces[i] = [3]int{int(rec[2]), int(rec[1]), int(rec[0])}
	}
	return faces, nil
}
