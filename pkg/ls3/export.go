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

// File format identity written into every exported document.
const (
	fileTypeLandscape = "Landschaft"
	formatVersion     = "A.1"
)

// AuthorInfo is one author credit for the Info block.
type AuthorInfo struct {
	Name string
	ID   int
}

// AnchorPoint is a named attachment point, written once into the main
// file independent of the file forest.
type AnchorPoint struct {
	Name        string
	Category    int
	Type        int
	Description string
	Position    math.Vec3
	AttachFiles []string
}

// ExportOptions configures one export run.
type ExportOptions struct {
	// OutputPath is the main file's path; sub-files derive their names
	// from it.
	OutputPath string

	// DataDir is the base data directory link paths are made relative
	// to.
	DataDir string

	Scope             ExportScope
	Selected          map[*scene.Node]bool
	SelectedMaterials map[*scene.Material]bool
	ActiveVariants    map[string]bool

	// ExportAnimations enables animation-boundary splitting and
	// keyframe extraction.
	ExportAnimations bool

	// EmitTranslation requests translation channels in sampled
	// animations.
	EmitTranslation bool

	// Optimize runs vertex welding per subset before serialization.
	Optimize   bool
	Tolerances Tolerances

	// BestEffort continues writing remaining files after a fatal error
	// on one sub-file. Off by default: a partially written forest
	// contains dangling link references.
	BestEffort bool

	Authors []AuthorInfo
	Anchors []AnchorPoint
}

// Validate rejects invalid configuration before any file is written.
func (o *ExportOptions) Validate() error {
	if o.OutputPath == "" {
		return ErrNoOutputPath
	}
	if o.Scope < ScopeAll || o.Scope > ScopeSelectedMaterials {
		return fmt.Errorf("%w: %d", ErrInvalidScope, int(o.Scope))
	}
	return o.Tolerances.Validate()
}

// Exporter runs the multi-phase export pipeline over a scene snapshot.
type Exporter struct {
	sc       *scene.Scene
	opts     ExportOptions
	warnings WarningList
}

// NewExporter validates the options and prepares an export run.
func NewExporter(sc *scene.Scene, opts ExportOptions) (*Exporter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Exporter{sc: sc, opts: opts}, nil
}

// Run executes the export and returns the collected warnings. On a
// fatal error the run aborts unless best-effort mode is requested.
func (e *Exporter) Run() (WarningList, error) {
	asm := NewAssembler(e.sc, e.opts.Scope, e.opts.Selected, e.opts.SelectedMaterials, e.opts.ActiveVariants)

	var contributing []*scene.Node
	for _, n := range e.sc.Nodes {
		if n.Link != nil {
			if asm.Visible(n) {
				contributing = append(contributing, n)
			}
			continue
		}
		if asm.Include(n) {
			contributing = append(contributing, n)
		}
	}

	builder := NewTreeBuilder(e.sc, e.opts.ExportAnimations, e.opts.OutputPath)
	forest := builder.Build(contributing)

	e.bake(asm, forest, contributing)
	for _, f := range forest.Files {
		SortSubsets(f.Subsets)
	}

	if e.opts.Optimize {
		for _, f := range forest.Files {
			for _, s := range f.Subsets {
				before := len(s.Vertices)
				Optimize(s, e.opts.Tolerances)
				logger.Debug("optimized subset",
					zap.String("file", f.Name),
					zap.String("subset", s.ID.Name),
					zap.Int("before", before),
					zap.Int("after", len(s.Vertices)))
			}
		}
	}

	fileTargets := make(map[*FileNode][]AniTarget)
	if e.opts.ExportAnimations {
		e.sampleAnimations(forest, fileTargets)
	}

	AggregateRadii(forest)

	zbias := e.buildZBiasMap(forest)

	for _, f := range writeOrder(forest) {
		if err := e.writeFile(f, forest, fileTargets[f], zbias); err != nil {
			if e.opts.BestEffort {
				e.warnings.Addf(f.Name, "export failed: %v", err)
				continue
			}
			return e.warnings, fmt.Errorf("exporting %s: %w", f.Name, err)
		}
	}
	return e.warnings, nil
}

// bake routes every contributing node's geometry into its file's
// subsets, transformed into file-local space.
func (e *Exporter) bake(asm *Assembler, fo *Forest, contributing []*scene.Node) {
	for _, n := range contributing {
		if n.Link != nil || n.Mesh == nil {
			continue
		}
		// Invisible nodes still computed identifiers in the scope
		// passes; they contribute no output geometry.
		if !asm.Visible(n) {
			continue
		}
		f := fo.FileOf(n)
		if f == nil {
			continue
		}
		m := RelativeTransform(n, f.Root, nil)

		for _, b := range asm.Buckets(n) {
			if !asm.IncludeBucket(n, b) || !asm.MaterialVisible(b.Material) {
				continue
			}
			sub := f.SubsetFor(asm.Identifier(n, b.Material))
			appendBaked(sub, n.Mesh, b.Slot, m)
		}
	}
}

// appendBaked transfers the faces of one material slot into the
// subset, transforming vertices into file-local space. Vertices are
// duplicated per slot; welding reclaims shared ones.
func appendBaked(sub *Subset, mesh *scene.Mesh, slot int, m math.Mat4) {
	slotHasMaterials := len(mesh.Materials) > 0
	indexMap := make(map[int]int)
	var verts []SubsetVertex
	var faces [][3]int

	for _, face := range mesh.Faces {
		if slotHasMaterials && face.Material != slot {
			continue
		}
		var tri [3]int
		for c := 0; c < 3; c++ {
			vi := face.V[c]
			ni, ok := indexMap[vi]
			if !ok {
				src := mesh.Vertices[vi]
				ni = len(verts)
				indexMap[vi] = ni
				verts = append(verts, SubsetVertex{
					Vertex: Vertex{
						Position: m.TransformPoint(src.Position),
						Normal:   m.TransformDirection(src.Normal).Normalize(),
						UV:       src.UV,
						UV2:      src.UV2,
					},
					NoMerge: src.NoMerge,
				})
			}
			tri[c] = ni
		}
		faces = append(faces, tri)
	}
	sub.AddGeometry(verts, faces)
}

// sampleAnimations extracts keyframes for every animated subset and
// link of every file.
func (e *Exporter) sampleAnimations(fo *Forest, fileTargets map[*FileNode][]AniTarget) {
	sampler := NewSampler(e.sc)
	for _, f := range fo.Files {
		targets := AnimationTargets(e.sc, f)
		fileTargets[f] = targets
		for _, t := range targets {
			node := t.Node()
			clip := e.sc.DrivingClip(node)
			if clip == nil {
				// Structurally expected animation without a resolvable
				// clip degrades to static placement.
				if t.Link != nil {
					staticizeLink(t.Link, f)
				}
				continue
			}
			frames, maxHoriz := sampler.Sample(clip, node, f.Root, e.opts.EmitTranslation)
			switch {
			case t.Subset != nil:
				t.Subset.Frames = frames
			case t.Link != nil && len(frames) > 0:
				t.Link.Frames = frames
				t.Link.MaxAniTranslation = maxHoriz
			case t.Link != nil:
				staticizeLink(t.Link, f)
			}
		}
	}
}

// staticizeLink clears a link's animation flag and restores the static
// placement that tree construction skipped for animated links, so the
// target file is not silently placed at its parent's origin.
func staticizeLink(l *LinkRef, f *FileNode) {
	l.Animated = false
	m := RelativeTransform(l.Node, f.Root, nil)
	l.Translation = m.Translation()
	l.Rotation = m.Rotation().ToEuler()
	l.Scale = m.ScalePart()
}

// buildZBiasMap collects the distinct raw z-offsets of every exported
// material into the per-scene bucket mapping.
func (e *Exporter) buildZBiasMap(fo *Forest) *ZBiasMap {
	var offsets []float32
	for _, f := range fo.Files {
		for _, s := range f.Subsets {
			if s.ID.Material != nil {
				offsets = append(offsets, s.ID.Material.ZOffset)
			}
		}
	}
	return BuildZBiasMap(offsets)
}

// writeOrder returns the files children-first so link targets exist on
// disk before the files referencing them.
func writeOrder(fo *Forest) []*FileNode {
	var order []*FileNode
	done := make(map[*FileNode]bool)
	var visit func(f *FileNode)
	visit = func(f *FileNode) {
		if done[f] {
			return
		}
		done[f] = true
		for _, l := range f.Links {
			if l.File != nil {
				visit(l.File)
			}
		}
		order = append(order, f)
	}
	for i := len(fo.Files) - 1; i >= 0; i-- {
		visit(fo.Files[i])
	}
	return order
}

// writeFile serializes one file node: the .lsb stream and the .ls3
// metadata document.
func (e *Exporter) writeFile(f *FileNode, fo *Forest, targets []AniTarget, zbias *ZBiasMap) error {
	doc := Document{
		Info: Info{
			FileType:   fileTypeLandscape,
			Version:    formatVersion,
			MinVersion: formatVersion,
		},
	}
	for _, a := range e.opts.Authors {
		doc.Info.Authors = append(doc.Info.Authors, AuthorEntry{ID: a.ID, Name: a.Name})
	}

	var lsb bytes.Buffer
	totalRecords := 0
	for _, s := range f.Subsets {
		live := s.LiveVertices()
		if err := WriteVertices(&lsb, live); err != nil {
			return err
		}
		if err := WriteFaces(&lsb, s.Faces); err != nil {
			return err
		}
		totalRecords += len(live) + len(s.Faces)

		doc.Landscape.Subsets = append(doc.Landscape.Subsets, e.subsetMeta(s, live, zbias))
	}
	if totalRecords > 0 {
		doc.Landscape.LSB = &FileRef{FileName: filepath.Base(CompanionName(f.Name))}
	}

	exportDir := filepath.Dir(f.Name)
	for _, l := range f.Links {
		doc.Landscape.Links = append(doc.Landscape.Links, e.linkMeta(l, exportDir))
	}

	if f.IsMain {
		for _, a := range e.opts.Anchors {
			doc.Landscape.Anchors = append(doc.Landscape.Anchors, anchorMeta(a))
		}
	}

	e.fillAnimations(&doc, f, targets)

	if doc.Landscape.LSB != nil {
		if err := os.WriteFile(CompanionName(f.Name), lsb.Bytes(), 0644); err != nil {
			return err
		}
	}

	data, err := xml.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return err
	}
	out := append([]byte(xml.Header), data...)
	if err := os.WriteFile(f.Name, append(out, '\n'), 0644); err != nil {
		return err
	}

	logger.Info("wrote file",
		zap.String("path", f.Name),
		zap.Int("subsets", len(f.Subsets)),
		zap.Int("links", len(f.Links)),
		zap.Float32("radius", f.Radius))
	return nil
}

func (e *Exporter) subsetMeta(s *Subset, live []Vertex, zbias *ZBiasMap) SubsetMeta {
	sm := SubsetMeta{
		Name:        s.ID.Name,
		VertexCount: len(live),
		IndexCount:  3 * len(s.Faces),
	}
	if mat := s.ID.Material; mat != nil {
		sm.Diffuse = ColorHex(mat.Diffuse)
		if mat.Night != 0 {
			sm.Night = ColorHex(mat.Night)
		}
		if mat.Overexposure != 0 {
			sm.Overexposure = ColorHex(mat.Overexposure)
		}
		sm.ZBias = zbias.Bucket(mat.ZOffset)
		sm.RenderFlags = mat.RenderFlags
		for _, tex := range []string{mat.Texture, mat.Texture2} {
			if tex == "" {
				continue
			}
			sm.Textures = append(sm.Textures, TextureRef{File: FileRef{FileName: Backslashed(tex)}})
			e.checkResource(tex)
		}
	}
	return sm
}

// checkResource warns about referenced files missing under the data
// directory.
func (e *Exporter) checkResource(stored string) {
	if e.opts.DataDir == "" {
		return
	}
	p := filepath.Join(e.opts.DataDir, FromBackslashed(stored))
	if _, err := os.Stat(p); err != nil {
		e.warnings.Addf(stored, "%v", ErrMissingResource)
	}
}

func (e *Exporter) linkMeta(l *LinkRef, exportDir string) LinkedFile {
	lf := LinkedFile{
		GroupName:     l.Meta.GroupName,
		VisibleFrom:   l.Meta.VisibleFrom,
		VisibleTo:     l.Meta.VisibleTo,
		PreloadFactor: l.Meta.PreloadFactor,
		Brightness:    l.Meta.ForcedBrightness,
		LODMask:       l.Meta.LODMask,
	}
	if l.Meta.Tile {
		lf.Flags |= LinkFlagTile
	}
	if l.Meta.Billboard {
		lf.Flags |= LinkFlagBillboard
	}
	if l.Meta.ReadOnly {
		lf.Flags |= LinkFlagReadOnly
	}

	if l.File != nil {
		lf.BoundingRadius = l.File.Radius
		abs, err := filepath.Abs(l.File.Name)
		if err != nil {
			abs = l.File.Name
		}
		lf.File = FileRef{FileName: ResolveLinkPath(abs, exportDir, e.opts.DataDir)}
	} else {
		lf.BoundingRadius = l.Meta.Radius
		lf.File = FileRef{FileName: Backslashed(l.Meta.Path)}
		e.checkResource(l.Meta.Path)
	}

	if !l.Animated {
		if !l.Translation.IsZero() {
			lf.Position = &Vec3Meta{X: l.Translation.X, Y: l.Translation.Y, Z: l.Translation.Z}
		}
		if l.Rotation != (math.Euler{}) {
			lf.Rotation = &Vec3Meta{X: l.Rotation.X, Y: l.Rotation.Y, Z: l.Rotation.Z}
		}
		if l.Scale != (math.Vec3{X: 1, Y: 1, Z: 1}) {
			lf.Scale = &Vec3Meta{X: l.Scale.X, Y: l.Scale.Y, Z: l.Scale.Z}
		}
	}
	return lf
}

func anchorMeta(a AnchorPoint) AnchorMeta {
	am := AnchorMeta{
		Name:        a.Name,
		Category:    a.Category,
		Type:        a.Type,
		Description: a.Description,
	}
	if !a.Position.IsZero() {
		am.Position = &Vec3Meta{X: a.Position.X, Y: a.Position.Y, Z: a.Position.Z}
	}
	for _, p := range a.AttachFiles {
		am.Files = append(am.Files, FileRef{FileName: Backslashed(p)})
	}
	return am
}

// fillAnimations writes the animation declarations and per-target
// keyframe blocks into the document.
func (e *Exporter) fillAnimations(doc *Document, f *FileNode, targets []AniTarget) {
	if len(targets) == 0 {
		return
	}
	for _, g := range GroupAnimations(e.sc, targets) {
		decl := AnimationDecl{ID: g.Type, Description: g.Name}
		for _, nr := range g.Targets {
			decl.Targets = append(decl.Targets, AniNumber{Nr: nr})
		}
		doc.Landscape.Animations = append(doc.Landscape.Animations, decl)
	}

	subsetIndex := make(map[*Subset]int, len(f.Subsets))
	for i, s := range f.Subsets {
		subsetIndex[s] = i
	}
	linkIndex := make(map[*LinkRef]int, len(f.Links))
	for i, l := range f.Links {
		linkIndex[l] = i
	}

	for _, t := range targets {
		switch {
		case t.Subset != nil && len(t.Subset.Frames) > 0:
			doc.Landscape.SubsetAnimations = append(doc.Landscape.SubsetAnimations, MeshAnimation{
				Nr:     t.Number,
				Index:  subsetIndex[t.Subset],
				Frames: frameMeta(t.Subset.Frames),
			})
		case t.Link != nil && len(t.Link.Frames) > 0:
			doc.Landscape.LinkAnimations = append(doc.Landscape.LinkAnimations, LinkAnimation{
				Nr:     t.Number,
				Index:  linkIndex[t.Link],
				Frames: frameMeta(t.Link.Frames),
			})
		}
	}
}

func frameMeta(frames []AniKeyframe) []AniFrameMeta {
	out := make([]AniFrameMeta, len(frames))
	for i, kf := range frames {
		fm := AniFrameMeta{Time: kf.Time}
		if kf.HasTranslation {
			fm.Position = &Vec3Meta{X: kf.Translation.X, Y: kf.Translation.Y, Z: kf.Translation.Z}
		}
		fm.Rotation = &QuatMeta{X: kf.Rotation.X, Y: kf.Rotation.Y, Z: kf.Rotation.Z, W: kf.Rotation.W}
		out[i] = fm
	}
	return out
}
