package ply

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arloliu/gsplat/endian"
	"github.com/arloliu/gsplat/errs"
	"github.com/arloliu/gsplat/format"
)

// ScalarType is a PLY property scalar type.
type ScalarType uint8

const (
	ScalarInt8    ScalarType = iota + 1 // ScalarInt8 represents char / int8.
	ScalarUint8                         // ScalarUint8 represents uchar / uint8.
	ScalarInt16                         // ScalarInt16 represents short / int16.
	ScalarUint16                        // ScalarUint16 represents ushort / uint16.
	ScalarInt32                         // ScalarInt32 represents int / int32.
	ScalarUint32                        // ScalarUint32 represents uint / uint32.
	ScalarFloat32                       // ScalarFloat32 represents float / float32.
	ScalarFloat64                       // ScalarFloat64 represents double / float64.
)

var scalarTypes = map[string]ScalarType{
	"char": ScalarInt8, "int8": ScalarInt8,
	"uchar": ScalarUint8, "uint8": ScalarUint8,
	"short": ScalarInt16, "int16": ScalarInt16,
	"ushort": ScalarUint16, "uint16": ScalarUint16,
	"int": ScalarInt32, "int32": ScalarInt32,
	"uint": ScalarUint32, "uint32": ScalarUint32,
	"float": ScalarFloat32, "float32": ScalarFloat32,
	"double": ScalarFloat64, "float64": ScalarFloat64,
}

// ParseScalarType maps a header type keyword, in either the classic or the
// sized spelling, to its ScalarType.
func ParseScalarType(s string) (ScalarType, bool) {
	t, ok := scalarTypes[s]
	return t, ok
}

// Size returns the encoded size in bytes.
func (t ScalarType) Size() int {
	switch t {
	case ScalarInt8, ScalarUint8:
		return 1
	case ScalarInt16, ScalarUint16:
		return 2
	case ScalarInt32, ScalarUint32, ScalarFloat32:
		return 4
	case ScalarFloat64:
		return 8
	default:
		return 0
	}
}

func (t ScalarType) String() string {
	switch t {
	case ScalarInt8:
		return "char"
	case ScalarUint8:
		return "uchar"
	case ScalarInt16:
		return "short"
	case ScalarUint16:
		return "ushort"
	case ScalarInt32:
		return "int"
	case ScalarUint32:
		return "uint"
	case ScalarFloat32:
		return "float"
	case ScalarFloat64:
		return "double"
	default:
		return "unknown"
	}
}

// Property is one declared element property. For list properties Type is the
// item type and CountType the type of the leading length.
type Property struct {
	Name      string
	Type      ScalarType
	List      bool
	CountType ScalarType
}

// Element is one declared element with its record count and properties.
type Element struct {
	Name       string
	Count      int
	Properties []Property
}

// RawHeader is the header exactly as declared in the file.
type RawHeader struct {
	Encoding format.PlyEncoding
	Version  string
	Comments []string
	ObjInfo  []string
	Elements []Element
}

// Element returns the element called name and its position, or nil and -1.
func (h *RawHeader) Element(name string) (*Element, int) {
	for i := range h.Elements {
		if h.Elements[i].Name == name {
			return &h.Elements[i], i
		}
	}

	return nil, -1
}

// HeaderKind selects the decode path for a file.
type HeaderKind uint8

const (
	// HeaderInria marks files holding exactly the 64-float schema in the
	// native binary byte order, decoded with a straight memory copy.
	HeaderInria HeaderKind = iota + 1
	// HeaderCustom marks every other file, decoded property by name.
	HeaderCustom
)

func (k HeaderKind) String() string {
	switch k {
	case HeaderInria:
		return "Inria"
	case HeaderCustom:
		return "Custom"
	default:
		return "Unknown"
	}
}

// Header is a parsed and classified PLY header.
type Header struct {
	Kind   HeaderKind
	Raw    RawHeader
	vertex int
}

// Count returns the number of vertex records.
func (h Header) Count() int {
	if h.vertex >= len(h.Raw.Elements) {
		return 0
	}

	return h.Raw.Elements[h.vertex].Count
}

// Vertex returns the vertex element declaration.
func (h Header) Vertex() Element {
	return h.Raw.Elements[h.vertex]
}

// Classify decides the decode path for a raw header. It fails with
// errs.ErrVertexNotFound when no vertex element is declared.
func Classify(raw RawHeader) (Header, error) {
	vertex, idx := raw.Element("vertex")
	if vertex == nil {
		return Header{}, errs.ErrVertexNotFound
	}

	h := Header{Kind: HeaderCustom, Raw: raw, vertex: idx}
	if idx == 0 && raw.Encoding == endian.NativePlyEncoding() && isInriaSchema(vertex.Properties) {
		h.Kind = HeaderInria
	}

	return h, nil
}

func isInriaSchema(props []Property) bool {
	if len(props) != NumProperties {
		return false
	}

	for i, p := range props {
		if p.List || p.Type != ScalarFloat32 || p.Name != Properties[i] {
			return false
		}
	}

	return true
}

// ReadHeader parses the header from br, leaving br positioned at the first
// body byte.
func ReadHeader(br *bufio.Reader) (Header, error) {
	raw, err := parseRawHeader(br)
	if err != nil {
		return Header{}, err
	}

	return Classify(raw)
}

func parseRawHeader(br *bufio.Reader) (RawHeader, error) {
	var raw RawHeader

	line, err := readHeaderLine(br)
	if err != nil {
		return raw, err
	}
	if line != "ply" {
		return raw, fmt.Errorf("%w: missing ply magic line, got %q", errs.ErrInvalidPlyHeader, line)
	}

	hasFormat := false
	for {
		line, err = readHeaderLine(br)
		if err != nil {
			return raw, err
		}

		keyword, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch keyword {
		case "":
			continue
		case "end_header":
			if !hasFormat {
				return raw, fmt.Errorf("%w: missing format line", errs.ErrInvalidPlyHeader)
			}

			return raw, nil
		case "format":
			fields := strings.Fields(rest)
			if len(fields) != 2 {
				return raw, fmt.Errorf("%w: malformed format line %q", errs.ErrInvalidPlyHeader, line)
			}
			enc, ok := format.ParsePlyEncoding(fields[0])
			if !ok {
				return raw, fmt.Errorf("%w: unknown format %q", errs.ErrInvalidPlyHeader, fields[0])
			}
			raw.Encoding = enc
			raw.Version = fields[1]
			hasFormat = true
		case "comment":
			raw.Comments = append(raw.Comments, rest)
		case "obj_info":
			raw.ObjInfo = append(raw.ObjInfo, rest)
		case "element":
			elem, err := parseElementLine(rest)
			if err != nil {
				return raw, err
			}
			raw.Elements = append(raw.Elements, elem)
		case "property":
			if len(raw.Elements) == 0 {
				return raw, fmt.Errorf("%w: property %q declared before any element", errs.ErrInvalidPlyHeader, rest)
			}
			prop, err := parsePropertyLine(rest)
			if err != nil {
				return raw, err
			}
			last := &raw.Elements[len(raw.Elements)-1]
			last.Properties = append(last.Properties, prop)
		default:
			return raw, fmt.Errorf("%w: unknown keyword %q", errs.ErrInvalidPlyHeader, keyword)
		}
	}
}

func readHeaderLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", io.ErrUnexpectedEOF
		}

		return "", err
	}

	return strings.TrimSpace(line), nil
}

func parseElementLine(rest string) (Element, error) {
	fields := strings.Fields(rest)
	if len(fields) != 2 {
		return Element{}, fmt.Errorf("%w: malformed element line %q", errs.ErrInvalidPlyHeader, rest)
	}

	count, err := strconv.Atoi(fields[1])
	if err != nil || count < 0 {
		return Element{}, fmt.Errorf("%w: invalid count for element %s: %q", errs.ErrInvalidPlyHeader, fields[0], fields[1])
	}

	return Element{Name: fields[0], Count: count}, nil
}

func parsePropertyLine(rest string) (Property, error) {
	fields := strings.Fields(rest)

	if len(fields) == 4 && fields[0] == "list" {
		countType, ok := ParseScalarType(fields[1])
		if !ok {
			return Property{}, fmt.Errorf("%w: unknown property type %q", errs.ErrInvalidPlyHeader, fields[1])
		}
		itemType, ok := ParseScalarType(fields[2])
		if !ok {
			return Property{}, fmt.Errorf("%w: unknown property type %q", errs.ErrInvalidPlyHeader, fields[2])
		}

		return Property{Name: fields[3], Type: itemType, List: true, CountType: countType}, nil
	}

	if len(fields) != 2 {
		return Property{}, fmt.Errorf("%w: malformed property line %q", errs.ErrInvalidPlyHeader, rest)
	}

	t, ok := ParseScalarType(fields[0])
	if !ok {
		return Property{}, fmt.Errorf("%w: unknown property type %q", errs.ErrInvalidPlyHeader, fields[0])
	}

	return Property{Name: fields[1], Type: t}, nil
}

// writeInriaHeader writes the header for n records in the native byte order.
func writeInriaHeader(w *bufio.Writer, n int) error {
	fmt.Fprintf(w, "ply\nformat %s 1.0\nelement vertex %d\n", endian.NativePlyEncoding(), n)
	for _, name := range Properties {
		fmt.Fprintf(w, "property float %s\n", name)
	}
	_, err := w.WriteString("end_header\n")

	return err
}
