package ls3

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
)

// The .ls3 metadata document. Element and attribute names follow the
// Zusi landscape schema; the geometry itself lives in the companion
// .lsb stream whose record counts are declared per subset here.

// Document is the root of an .ls3 file.
type Document struct {
	XMLName   xml.Name  `xml:"Zusi"`
	Info      Info      `xml:"Info"`
	Landscape Landscape `xml:"Landschaft"`
}

// Info carries file type, format version and authorship.
type Info struct {
	FileType   string        `xml:"DateiTyp,attr"`
	Version    string        `xml:"Version,attr"`
	MinVersion string        `xml:"MinVersion,attr"`
	Authors    []AuthorEntry `xml:"AutorEintrag"`
}

// AuthorEntry is one author credit.
type AuthorEntry struct {
	ID   int    `xml:"AutorID,attr,omitempty"`
	Name string `xml:"AutorName,attr,omitempty"`
}

// Landscape is the payload of a landscape file.
type Landscape struct {
	LSB              *FileRef        `xml:"lsb"`
	Subsets          []SubsetMeta    `xml:"SubSet"`
	Links            []LinkedFile    `xml:"Verknuepfte"`
	Anchors          []AnchorMeta    `xml:"Ankerpunkt"`
	Animations       []AnimationDecl `xml:"Animation"`
	SubsetAnimations []MeshAnimation `xml:"MeshAnimation"`
	LinkAnimations   []LinkAnimation `xml:"VerknAnimation"`
}

// FileRef points at another file by name.
type FileRef struct {
	FileName string `xml:"Dateiname,attr"`
}

// SubsetMeta declares one subset's record counts and non-geometric
// attributes. MeshI counts indices, three per face.
type SubsetMeta struct {
	Name         string       `xml:"Name,attr,omitempty"`
	VertexCount  int          `xml:"MeshV,attr"`
	IndexCount   int          `xml:"MeshI,attr"`
	Diffuse      string       `xml:"Cd,attr,omitempty"`
	Night        string       `xml:"Cn,attr,omitempty"`
	Overexposure string       `xml:"Ce,attr,omitempty"`
	ZBias        int          `xml:"zBias,attr,omitempty"`
	RenderFlags  uint32       `xml:"RenderFlags,attr,omitempty"`
	Textures     []TextureRef `xml:"Textur"`
}

// TextureRef references one texture stage's image file.
type TextureRef struct {
	File FileRef `xml:"Datei"`
}

// Link display flag bits.
const (
	LinkFlagTile      = 1 << 0
	LinkFlagBillboard = 1 << 1
	LinkFlagReadOnly  = 1 << 2
)

// LinkedFile embeds a reference to another landscape file.
type LinkedFile struct {
	GroupName      string    `xml:"GruppenName,attr,omitempty"`
	VisibleFrom    float32   `xml:"SichtbarAb,attr,omitempty"`
	VisibleTo      float32   `xml:"SichtbarBis,attr,omitempty"`
	PreloadFactor  float32   `xml:"Vorlade,attr,omitempty"`
	BoundingRadius float32   `xml:"BoundingR,attr,omitempty"`
	Brightness     float32   `xml:"Helligkeit,attr,omitempty"`
	LODMask        uint8     `xml:"LODbit,attr,omitempty"`
	Flags          uint32    `xml:"Flags,attr,omitempty"`
	File           FileRef   `xml:"Datei"`
	Position       *Vec3Meta `xml:"p"`
	Rotation       *Vec3Meta `xml:"phi"`
	Scale          *Vec3Meta `xml:"sk"`
}

// AnchorMeta is a named attachment point written into the main file.
type AnchorMeta struct {
	Name        string    `xml:"AnkerName,attr,omitempty"`
	Category    int       `xml:"AnkerKat,attr,omitempty"`
	Type        int       `xml:"AnkerTyp,attr,omitempty"`
	Description string    `xml:"Beschreibung,attr,omitempty"`
	Position    *Vec3Meta `xml:"p"`
	Files       []FileRef `xml:"Datei"`
}

// AnimationDecl declares one animation group and the numbers of the
// subset/link animations it drives.
type AnimationDecl struct {
	ID          int         `xml:"AniID,attr"`
	Description string      `xml:"AniBeschreibung,attr,omitempty"`
	Targets     []AniNumber `xml:"AniNrs"`
}

// AniNumber references one numbered animation slot.
type AniNumber struct {
	Nr int `xml:"AniNr,attr"`
}

// MeshAnimation carries the sampled keyframes of one animated subset.
// Nr is the animation number referenced by declarations, Index the
// position of the subset in the file's subset list.
type MeshAnimation struct {
	Nr     int            `xml:"AniNr,attr"`
	Index  int            `xml:"AniIndex,attr"`
	Frames []AniFrameMeta `xml:"AniPunkt"`
}

// LinkAnimation carries the sampled keyframes of one animated link.
// Index is the position of the link in the file's link list.
type LinkAnimation struct {
	Nr     int            `xml:"AniNr,attr"`
	Index  int            `xml:"AniIndex,attr"`
	Frames []AniFrameMeta `xml:"AniPunkt"`
}

// AniFrameMeta is one keyframe in normalized time.
type AniFrameMeta struct {
	Time     float32   `xml:"AniZeit,attr"`
	Position *Vec3Meta `xml:"p"`
	Rotation *QuatMeta `xml:"q"`
}

// Vec3Meta is a vector element with per-axis attributes; zero
// components are omitted.
type Vec3Meta struct {
	X float32 `xml:"X,attr,omitempty"`
	Y float32 `xml:"Y,attr,omitempty"`
	Z float32 `xml:"Z,attr,omitempty"`
}

// QuatMeta is a rotation element; the axis components are omitted when
// zero, W is always written.
type QuatMeta struct {
	X float32 `xml:"X,attr,omitempty"`
	Y float32 `xml:"Y,attr,omitempty"`
	Z float32 `xml:"Z,attr,omitempty"`
	W float32 `xml:"W,attr"`
}

// ColorHex formats a packed color as an 8-hex-digit string.
func ColorHex(c uint32) string {
	return fmt.Sprintf("%08X", c)
}

// ParseColorHex parses an 8-hex-digit color string.
func ParseColorHex(s string) (uint32, error) {
	if len(s) != 8 {
		return 0, fmt.Errorf("color %q: want 8 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q: %w", s, err)
	}
	return uint32(v), nil
}

// ZBiasMap assigns small integer buckets to the distinct raw z-offset
// values of a scene, centered at zero: the zero offset maps to bucket
// 0, positive offsets to 1, 2, ... in ascending order and negative
// offsets to -1, -2, ... in descending order.
type ZBiasMap struct {
	buckets map[float32]int
}

// BuildZBiasMap derives the bucket mapping from the raw offsets in
// use.
func BuildZBiasMap(offsets []float32) *ZBiasMap {
	distinct := make(map[float32]bool)
	for _, o := range offsets {
		distinct[o] = true
	}

	var pos, neg []float32
	for o := range distinct {
		switch {
		case o > 0:
			pos = append(pos, o)
		case o < 0:
			neg = append(neg, o)
		}
	}
	sort.Slice(pos, func(i, j int) bool { return pos[i] < pos[j] })
	sort.Slice(neg, func(i, j int) bool { return neg[i] > neg[j] })

	m := &ZBiasMap{buckets: make(map[float32]int, len(distinct))}
	m.buckets[0] = 0
	for i, o := range pos {
		m.buckets[o] = i + 1
	}
	for i, o := range neg {
		m.buckets[o] = -(i + 1)
	}
	return m
}

// Bucket returns the bucket for a raw offset; unknown offsets map to
// zero.
func (m *ZBiasMap) Bucket(offset float32) int {
	return m.buckets[offset]
}
