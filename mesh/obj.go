package mesh

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrNoParts is returned when a model holds no face at all
	ErrNoParts = errors.New("mesh: model has no parts")
)

// ParseError locates a malformed OBJ line
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("obj line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads a Wavefront OBJ file
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mesh: %w", err)
	}
	defer f.Close()

	model, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return model, nil
}

type objParser struct {
	positions []mgl64.Vec3
	uvs       []mgl64.Vec2
	normals   []mgl64.Vec3

	model   *Model
	current *Part
}

// Parse reads an OBJ stream. Every "o" or "g" statement starts a new part;
// faces declared before any of them go to an unnamed part. Polygons are
// triangulated as fans, parts without faces are dropped.
func Parse(r io.Reader) (*Model, error) {
	p := &objParser{model: &Model{}}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		if err := p.parseLine(text); err != nil {
			return nil, &ParseError{Line: lineNumber, Text: text, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	parts := p.model.Parts[:0]
	for _, part := range p.model.Parts {
		if len(part.Vertices) == 0 {
			continue
		}
		part.computeNormals()
		parts = append(parts, part)
	}
	p.model.Parts = parts

	if len(p.model.Parts) == 0 {
		return nil, ErrNoParts
	}

	for i, part := range p.model.Parts {
		if part.Name == "" {
			part.Name = fmt.Sprintf("part%d", i)
		}
	}

	return p.model, nil
}

func (p *objParser) parseLine(text string) error {
	fields := strings.Fields(text)
	ident, args := fields[0], fields[1:]

	switch ident {
	case "v", "vn":
		v, err := parseFloats(args, 3)
		if err != nil {
			return err
		}
		if ident == "v" {
			p.positions = append(p.positions, mgl64.Vec3{v[0], v[1], v[2]})
		} else {
			p.normals = append(p.normals, mgl64.Vec3{v[0], v[1], v[2]})
		}
	case "vt":
		v, err := parseFloats(args, 2)
		if err != nil {
			return err
		}
		p.uvs = append(p.uvs, mgl64.Vec2{v[0], v[1]})
	case "o", "g":
		p.startPart(strings.Join(args, " "))
	case "f":
		return p.parseFace(args)
	default:
		// mtllib, usemtl, s, l: not needed for the chain
	}

	return nil
}

// startPart reuses the current part while it is still empty
func (p *objParser) startPart(name string) {
	if p.current != nil && len(p.current.Vertices) == 0 {
		p.current.Name = name
		return
	}

	p.current = &Part{Name: name}
	p.model.Parts = append(p.model.Parts, p.current)
}

func (p *objParser) parseFace(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("face needs at least 3 vertices, got %d", len(args))
	}
	if p.current == nil {
		p.startPart("")
	}

	corners := make([]Vertex, len(args))
	for i, arg := range args {
		v, err := p.parseCorner(arg)
		if err != nil {
			return err
		}
		corners[i] = v
	}

	for i := 1; i+1 < len(corners); i++ {
		p.current.Vertices = append(p.current.Vertices, corners[0], corners[i], corners[i+1])
	}

	return nil
}

// parseCorner reads "v", "v/t", "v//n" or "v/t/n"
func (p *objParser) parseCorner(arg string) (Vertex, error) {
	refs := strings.Split(arg, "/")

	var vertex Vertex
	idx, err := resolveIndex(refs[0], len(p.positions))
	if err != nil {
		return vertex, fmt.Errorf("position: %w", err)
	}
	vertex.Position = p.positions[idx]

	if len(refs) > 1 && refs[1] != "" {
		idx, err := resolveIndex(refs[1], len(p.uvs))
		if err != nil {
			return vertex, fmt.Errorf("uv: %w", err)
		}
		vertex.UV = p.uvs[idx]
	}

	if len(refs) > 2 && refs[2] != "" {
		idx, err := resolveIndex(refs[2], len(p.normals))
		if err != nil {
			return vertex, fmt.Errorf("normal: %w", err)
		}
		if n := p.normals[idx]; n.Len() > 1e-12 {
			vertex.Normal = n.Normalize()
		}
	}

	return vertex, nil
}

// resolveIndex converts a 1-based, possibly negative, OBJ index
func resolveIndex(ref string, count int) (int, error) {
	i, err := strconv.Atoi(ref)
	if err != nil {
		return 0, err
	}

	switch {
	case i > 0 && i <= count:
		return i - 1, nil
	case i < 0 && -i <= count:
		return count + i, nil
	default:
		return 0, fmt.Errorf("index %d out of range [1, %d]", i, count)
	}
}

func parseFloats(args []string, n int) ([]float64, error) {
	if len(args) < n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(args))
	}

	values := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	return values, nil
}
