package geom

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// Kind identifies a geometry family. The set is closed: every kind is listed
// here and dispatched exhaustively in NewBuilder, so adding a kind without
// wiring its builder fails loudly rather than falling through a hierarchy.
type Kind int

const (
	WellMixed Kind = iota
	Complete
	Star
	Wheel
	Linear
	SquareVonNeumann
	SquareMoore
	SquareDiagonal
	Triangular
	Hexagonal
	Cubic
	RandomRegular
	DegreeSequence
	Desargues
	Heawood
	Dodecahedron
	Franklin
	Tietze
	Icosahedron
	StrongAmplifier
	StrongSuppressor
	Hierarchy
	Metapopulation
)

func (k Kind) String() string {
	switch k {
	case WellMixed:
		return "well-mixed"
	case Complete:
		return "complete"
	case Star:
		return "star"
	case Wheel:
		return "wheel"
	case Linear:
		return "linear"
	case SquareVonNeumann:
		return "square/von-neumann"
	case SquareMoore:
		return "square/moore"
	case SquareDiagonal:
		return "square/diagonal"
	case Triangular:
		return "triangular"
	case Hexagonal:
		return "hexagonal"
	case Cubic:
		return "cubic"
	case RandomRegular:
		return "random-regular"
	case DegreeSequence:
		return "degree-sequence"
	case Desargues:
		return "desargues"
	case Heawood:
		return "heawood"
	case Dodecahedron:
		return "dodecahedron"
	case Franklin:
		return "franklin"
	case Tietze:
		return "tietze"
	case Icosahedron:
		return "icosahedron"
	case StrongAmplifier:
		return "strong-amplifier"
	case StrongSuppressor:
		return "strong-suppressor"
	case Hierarchy:
		return "hierarchy"
	case Metapopulation:
		return "metapopulation"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Builder is the capability interface every geometry kind implements.
//
// Parse captures numeric parameters from the spec token without building
// anything. CheckSettings coerces parameters (and possibly the population
// size) to structurally valid values, warning on every change; a true return
// means the caller must re-drive settings before Init. Init populates the
// adjacency exactly once, drawing all randomness from the supplied source.
type Builder interface {
	Kind() Kind
	Parse(params string) error
	CheckSettings(g *Geometry) (changed bool, err error)
	Init(g *Geometry, rng *rand.Rand) error
}

// baseBuilder carries the fields shared by every builder.
type baseBuilder struct {
	kind    Kind
	dynamic bool
}

func (b *baseBuilder) Kind() Kind { return b.kind }

// prepare stamps the builder-level flags onto the geometry. Called at the
// top of every CheckSettings.
func (b *baseBuilder) prepare(g *Geometry) {
	g.Kind = b.kind
	g.Dynamic = b.dynamic
}

// wordKinds maps full-word spec tokens to kinds.
var wordKinds = map[string]Kind{
	"desargues":    Desargues,
	"heawood":      Heawood,
	"dodecahedron": Dodecahedron,
	"franklin":     Franklin,
	"tietze":       Tietze,
	"icosahedron":  Icosahedron,
}

// letterKinds maps leading-letter spec tokens to kinds. The remainder of the
// token is the builder's parameter string.
var letterKinds = map[byte]Kind{
	'M': WellMixed,
	'c': Complete,
	's': Star,
	'w': Wheel,
	'l': Linear,
	'N': SquareVonNeumann,
	'm': SquareMoore,
	'D': SquareDiagonal,
	't': Triangular,
	'h': Hexagonal,
	'C': Cubic,
	'r': RandomRegular,
	'g': DegreeSequence,
	'A': StrongAmplifier,
	'Z': StrongSuppressor,
	'H': Hierarchy,
	'P': Metapopulation,
}

// ParseSpec resolves a compact geometry token ("r4", "N", "PM;c;d4,s5", ...)
// to a parsed builder. A trailing '*' marks the geometry dynamic: its
// adjacency may be rewired at runtime and randomized construction skips the
// connectivity-seeding core phase.
func ParseSpec(spec string) (Builder, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("empty geometry spec")
	}
	dynamic := false
	if strings.HasSuffix(spec, "*") {
		dynamic = true
		spec = strings.TrimSuffix(spec, "*")
	}
	var kind Kind
	var params string
	if k, ok := wordKinds[strings.ToLower(spec)]; ok {
		kind = k
	} else if k, ok := letterKinds[spec[0]]; ok {
		kind = k
		params = spec[1:]
	} else {
		return nil, fmt.Errorf("unknown geometry spec %q", spec)
	}
	b := NewBuilder(kind)
	if bb, ok := b.(interface{ setDynamic(bool) }); ok && dynamic {
		bb.setDynamic(true)
	}
	if err := b.Parse(params); err != nil {
		return nil, fmt.Errorf("geometry spec %q: %w", spec, err)
	}
	return b, nil
}

func (b *baseBuilder) setDynamic(v bool) { b.dynamic = v }

// NewBuilder returns an unparsed builder for the given kind. The switch is
// exhaustive over the closed Kind set.
func NewBuilder(kind Kind) Builder {
	base := baseBuilder{kind: kind}
	switch kind {
	case WellMixed, Complete:
		return &completeBuilder{baseBuilder: base}
	case Star:
		return &starBuilder{baseBuilder: base}
	case Wheel:
		return &wheelBuilder{baseBuilder: base}
	case Linear:
		return &linearBuilder{baseBuilder: base}
	case SquareVonNeumann, SquareMoore, SquareDiagonal:
		return &squareBuilder{baseBuilder: base}
	case Triangular:
		return &triangularBuilder{baseBuilder: base}
	case Hexagonal:
		return &hexagonalBuilder{baseBuilder: base}
	case Cubic:
		return &cubicBuilder{baseBuilder: base}
	case RandomRegular:
		return &randomRegularBuilder{baseBuilder: base}
	case DegreeSequence:
		return &degreeSequenceBuilder{baseBuilder: base}
	case Desargues, Heawood, Dodecahedron, Franklin, Tietze, Icosahedron:
		return &namedBuilder{baseBuilder: base}
	case StrongAmplifier:
		return &amplifierBuilder{baseBuilder: base}
	case StrongSuppressor:
		return &suppressorBuilder{baseBuilder: base}
	case Hierarchy:
		return &hierarchyBuilder{baseBuilder: base}
	case Metapopulation:
		return &metapopBuilder{baseBuilder: base}
	}
	panic(fmt.Sprintf("geom: no builder for kind %v", kind))
}

// maxSettingsPasses bounds the CheckSettings re-drive loop in Build; settings
// that keep changing past this bound indicate mutually unsatisfiable
// constraints.
const maxSettingsPasses = 10

// Config collects the caller-facing knobs of a single geometry.
type Config struct {
	Spec         string
	Size         int
	Boundary     Boundary
	Interspecies bool
}

// Build parses cfg.Spec, drives CheckSettings to a fixed point and constructs
// the geometry. The returned Geometry is ready for the simulation loop.
func Build(cfg Config, rng *rand.Rand) (*Geometry, error) {
	b, err := ParseSpec(cfg.Spec)
	if err != nil {
		return nil, err
	}
	g := New(b.Kind())
	g.Size = cfg.Size
	g.Boundary = cfg.Boundary
	g.Interspecies = cfg.Interspecies
	for pass := 0; ; pass++ {
		changed, err := b.CheckSettings(g)
		if err != nil {
			return nil, err
		}
		if !changed {
			break
		}
		if pass >= maxSettingsPasses {
			return nil, &StructuralError{Kind: g.Kind, Reason: "settings did not stabilize"}
		}
	}
	if err := b.Init(g, rng); err != nil {
		return nil, err
	}
	return g, nil
}

// initPrecheck guards every builder's Init against being called before the
// settings pass has stabilized parameters and the target size.
func (g *Geometry) initPrecheck() error {
	if g.Size <= 0 {
		return ErrSizeNotSet
	}
	if !g.validated {
		return ErrNotValidated
	}
	return nil
}

// parsePositiveInt parses a strictly positive integer parameter.
func parsePositiveInt(s, what string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", what, s, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", what, v)
	}
	return v, nil
}

// parseIntList parses a comma-separated list of non-negative integers.
func parseIntList(s, what string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid %s entry %q: %w", what, p, err)
		}
		if v < 0 {
			return nil, fmt.Errorf("%s entries must be non-negative, got %d", what, v)
		}
		out = append(out, v)
	}
	return out, nil
}
