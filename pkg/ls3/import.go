package ls3

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/zusitools/go-ls3/internal/logger"
	"github.com/zusitools/go-ls3/pkg/math"
	"github.com/zusitools/go-ls3/pkg/scene"
)

// ImportOptions configures an import run.
type ImportOptions struct {
	// DataDir resolves link paths stored relative to the data
	// directory.
	DataDir string

	// FollowLinks expands linked files into the imported scene, one
	// level deep. Without it links become placeholder marker nodes
	// carrying the unresolved path and metadata.
	FollowLinks bool
}

// ImportResult is the reconstructed scene plus everything that does
// not map onto nodes.
type ImportResult struct {
	Scene *scene.Scene

	// Doc is the parsed metadata document of the top-level file.
	Doc *Document

	Anchors  []AnchorPoint
	Warnings WarningList
}

// ImportFile reads an .ls3 file and its companion binary stream and
// reconstructs node, mesh and material objects.
func ImportFile(path string, opts ImportOptions) (*ImportResult, error) {
	res := &ImportResult{Scene: scene.New(0, 1)}
	if err := importInto(res, path, opts, nil, 0); err != nil {
		return nil, err
	}
	logger.Info("imported file",
		zap.String("path", path),
		zap.Int("nodes", len(res.Scene.Nodes)),
		zap.Int("warnings", len(res.Warnings)))
	return res, nil
}

func importInto(res *ImportResult, path string, opts ImportOptions, parent *scene.Node, depth int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrMissingResource, path)
	}
	var doc Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	baseDir := filepath.Dir(path)
	stream, err := openStream(res, &doc, path, baseDir)
	if err != nil {
		return err
	}

	subsetNodes, err := importSubsets(res, &doc, stream, path, parent)
	if err != nil {
		return err
	}
	importAnimations(res, &doc, subsetNodes)

	linkNodes := importLinks(res, &doc, opts, baseDir, parent, depth)
	importLinkAnimations(res, &doc, linkNodes)

	if depth == 0 {
		res.Doc = &doc
		for _, am := range doc.Landscape.Anchors {
			res.Anchors = append(res.Anchors, anchorFromMeta(am))
		}
	}
	return nil
}

// openStream resolves and reads the companion binary. A missing
// stream is fatal when any subset declares records, otherwise only a
// warning.
func openStream(res *ImportResult, doc *Document, path, baseDir string) (*bytes.Reader, error) {
	lsbPath := CompanionName(path)
	if doc.Landscape.LSB != nil {
		lsbPath = filepath.Join(baseDir, FromBackslashed(doc.Landscape.LSB.FileName))
	}

	declared := 0
	for _, sm := range doc.Landscape.Subsets {
		declared += sm.VertexCount + sm.IndexCount
	}

	data, err := os.ReadFile(lsbPath)
	if err != nil {
		if declared > 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingResource, lsbPath)
		}
		if doc.Landscape.LSB != nil {
			res.Warnings.Addf(lsbPath, "%v", ErrMissingResource)
		}
		return bytes.NewReader(nil), nil
	}
	return bytes.NewReader(data), nil
}

func importSubsets(res *ImportResult, doc *Document, stream *bytes.Reader, path string, parent *scene.Node) ([]*scene.Node, error) {
	var nodes []*scene.Node
	for i, sm := range doc.Landscape.Subsets {
		verts, err := ReadVertices(stream, sm.VertexCount)
		if err != nil {
			return nil, fmt.Errorf("%s subset %d: %w", path, i, err)
		}
		faces, err := ReadFaces(stream, sm.IndexCount/3)
		if err != nil {
			return nil, fmt.Errorf("%s subset %d: %w", path, i, err)
		}

		name := sm.Name
		if name == "" {
			name = fmt.Sprintf("SubSet%03d", i)
		}
		n := scene.NewNode(name)
		n.Parent = parent
		n.SubsetName = name
		n.Mesh = meshFromRecords(res, sm, verts, faces)
		res.Scene.Add(n)
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func meshFromRecords(res *ImportResult, sm SubsetMeta, verts []Vertex, faces [][3]int) *scene.Mesh {
	mesh := &scene.Mesh{}
	for _, v := range verts {
		mesh.Vertices = append(mesh.Vertices, scene.Vertex{
			Position: v.Position,
			Normal:   v.Normal,
			UV:       v.UV,
			UV2:      v.UV2,
		})
	}
	for _, f := range faces {
		mesh.Faces = append(mesh.Faces, scene.Face{V: f})
	}

	if sm.Diffuse == "" && sm.Night == "" && len(sm.Textures) == 0 && sm.RenderFlags == 0 {
		return mesh
	}
	mat := &scene.Material{
		Name:        sm.Name,
		RenderFlags: sm.RenderFlags,
		ZOffset:     float32(sm.ZBias),
	}
	mat.Diffuse = parseColor(res, sm.Diffuse)
	mat.Night = parseColor(res, sm.Night)
	mat.Overexposure = parseColor(res, sm.Overexposure)
	if len(sm.Textures) > 0 {
		mat.Texture = FromBackslashed(sm.Textures[0].File.FileName)
	}
	if len(sm.Textures) > 1 {
		mat.Texture2 = FromBackslashed(sm.Textures[1].File.FileName)
	}
	mesh.Materials = []*scene.Material{mat}
	return mesh
}

func parseColor(res *ImportResult, s string) uint32 {
	if s == "" {
		return 0
	}
	c, err := ParseColorHex(s)
	if err != nil {
		res.Warnings.Addf("", "%v", err)
		return 0
	}
	return c
}

// importAnimations reinserts sampled subset keyframes as clips on the
// reconstructed nodes. Imported scenes use a 0..1 frame range, so
// normalized times map directly onto frames.
func importAnimations(res *ImportResult, doc *Document, subsetNodes []*scene.Node) {
	for _, ma := range doc.Landscape.SubsetAnimations {
		if ma.Index < 0 || ma.Index >= len(subsetNodes) {
			res.Warnings.Addf("", "mesh animation references subset %d of %d", ma.Index, len(subsetNodes))
			continue
		}
		subsetNodes[ma.Index].Clip = clipFromFrames(ma.Frames, animationType(doc, ma.Nr))
	}
}

func importLinkAnimations(res *ImportResult, doc *Document, linkNodes []*scene.Node) {
	for _, la := range doc.Landscape.LinkAnimations {
		if la.Index < 0 || la.Index >= len(linkNodes) {
			res.Warnings.Addf("", "link animation references link %d of %d", la.Index, len(linkNodes))
			continue
		}
		linkNodes[la.Index].Clip = clipFromFrames(la.Frames, animationType(doc, la.Nr))
	}
}

// animationType finds the declared type tag for an animation number.
func animationType(doc *Document, nr int) int {
	for _, decl := range doc.Landscape.Animations {
		for _, t := range decl.Targets {
			if t.Nr == nr {
				return decl.ID
			}
		}
	}
	return 0
}

// clipFromFrames rebuilds per-channel keyframe tracks from sampled
// frames, converting rotations back to continuous Euler curves.
func clipFromFrames(frames []AniFrameMeta, typeTag int) *scene.Clip {
	clip := &scene.Clip{Type: typeTag}

	tracks := make(map[scene.Channel]*scene.Track)
	add := func(ch scene.Channel, frame, value float32) {
		tr, ok := tracks[ch]
		if !ok {
			tr = &scene.Track{Channel: ch}
			tracks[ch] = tr
			clip.Tracks = append(clip.Tracks, tr)
		}
		tr.Keys = append(tr.Keys, scene.Keyframe{Frame: frame, Value: value})
	}

	var prev *math.Euler
	for _, fm := range frames {
		if fm.Position != nil {
			add(scene.ChannelTranslateX, fm.Time, fm.Position.X)
			add(scene.ChannelTranslateY, fm.Time, fm.Position.Y)
			add(scene.ChannelTranslateZ, fm.Time, fm.Position.Z)
		}
		if fm.Rotation != nil {
			q := math.Quat{X: fm.Rotation.X, Y: fm.Rotation.Y, Z: fm.Rotation.Z, W: fm.Rotation.W}
			e := q.ToEuler()
			if prev != nil {
				e = e.Compatible(*prev)
			}
			prev = &e
			add(scene.ChannelRotateX, fm.Time, e.X)
			add(scene.ChannelRotateY, fm.Time, e.Y)
			add(scene.ChannelRotateZ, fm.Time, e.Z)
		}
	}
	return clip
}

// importLinks materializes linked files either as embedded content
// (one level deep) or as placeholder marker nodes.
func importLinks(res *ImportResult, doc *Document, opts ImportOptions, baseDir string, parent *scene.Node, depth int) []*scene.Node {
	var nodes []*scene.Node
	for i, lf := range doc.Landscape.Links {
		target := ResolveStoredPath(lf.File.FileName, baseDir, opts.DataDir)

		n := scene.NewNode(fmt.Sprintf("Link%03d", i))
		n.Parent = parent
		applyLinkPlacement(n, lf)
		res.Scene.Add(n)
		nodes = append(nodes, n)

		if opts.FollowLinks && depth == 0 {
			err := importInto(res, target, opts, n, depth+1)
			if err == nil {
				continue
			}
			res.Warnings.Addf(target, "following link: %v", err)
		}

		n.Link = &scene.LinkMeta{
			Path:             lf.File.FileName,
			GroupName:        lf.GroupName,
			VisibleFrom:      lf.VisibleFrom,
			VisibleTo:        lf.VisibleTo,
			PreloadFactor:    lf.PreloadFactor,
			Radius:           lf.BoundingRadius,
			ForcedBrightness: lf.Brightness,
			LODMask:          lf.LODMask,
			Tile:             lf.Flags&LinkFlagTile != 0,
			Billboard:        lf.Flags&LinkFlagBillboard != 0,
			ReadOnly:         lf.Flags&LinkFlagReadOnly != 0,
		}
		if _, err := os.Stat(target); err != nil {
			res.Warnings.Addf(lf.File.FileName, "%v", ErrMissingResource)
		}
	}
	return nodes
}

func applyLinkPlacement(n *scene.Node, lf LinkedFile) {
	if lf.Position != nil {
		n.Translation = math.Vec3{X: lf.Position.X, Y: lf.Position.Y, Z: lf.Position.Z}
	}
	if lf.Rotation != nil {
		n.Rotation = math.Euler{X: lf.Rotation.X, Y: lf.Rotation.Y, Z: lf.Rotation.Z}
	}
	if lf.Scale != nil {
		n.Scale = math.Vec3{X: lf.Scale.X, Y: lf.Scale.Y, Z: lf.Scale.Z}
	}
	n.SetRestPose()
}

func anchorFromMeta(am AnchorMeta) AnchorPoint {
	a := AnchorPoint{
		Name:        am.Name,
		Category:    am.Category,
		Type:        am.Type,
		Description: am.Description,
	}
	if am.Position != nil {
		a.Position = math.Vec3{X: am.Position.X, Y: am.Position.Y, Z: am.Position.Z}
	}
	for _, f := range am.Files {
		a.AttachFiles = append(a.AttachFiles, f.FileName)
	}
	return a
}
