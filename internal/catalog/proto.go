package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/grpcreflect"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/descriptorpb"
)

// ProtoOptions configures LoadProto.
type ProtoOptions struct {
	Files       []string
	ImportPaths []string

	// Sources, when set, supplies file contents by name instead of the
	// file system.
	Sources map[string]string

	Logger *zap.Logger
}

// Proto is a catalog over Protocol Buffers descriptors.
//
// Messages, enums and services are classes named by their fully qualified
// name. Message fields are instance fields, enum values are static fields
// typed by their enum, and rpcs are instance methods of their service taking
// the input message and returning the output message. Assignability is
// identity: protobuf has no subtyping.
type Proto struct {
	messages map[string]*desc.MessageDescriptor
	enums    map[string]*desc.EnumDescriptor
	services map[string]*desc.ServiceDescriptor

	// derived holds names built from other types: []T, map<K, V>, stream T.
	derived map[string]bool

	files map[string]bool
	order []string
}

// protoAliases spells the canonical primitives as protobuf scalars.
var protoAliases = map[string]string{
	PrimByte:    "uint32",
	PrimInt16:   "int32",
	PrimInt:     "int32",
	PrimFloat32: "float",
	PrimFloat64: "double",
	PrimRune:    "int32",
}

var protoScalars = map[string]bool{
	"double": true, "float": true,
	"int32": true, "int64": true, "uint32": true, "uint64": true,
	"sint32": true, "sint64": true, "fixed32": true, "fixed64": true,
	"sfixed32": true, "sfixed64": true,
	"bool": true, "string": true, "bytes": true,
}

// LoadProto parses .proto files with protoparse.
func LoadProto(opts ProtoOptions) (*Proto, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(opts.Files) == 0 {
		return nil, fmt.Errorf("parsing proto: no files given")
	}

	parser := protoparse.Parser{ImportPaths: opts.ImportPaths}
	if len(parser.ImportPaths) == 0 {
		parser.ImportPaths = []string{"."}
	}
	if opts.Sources != nil {
		parser.Accessor = protoparse.FileContentsFromMap(opts.Sources)
	}

	fds, err := parser.ParseFiles(opts.Files...)
	if err != nil {
		return nil, fmt.Errorf("parsing proto: %w", err)
	}
	p := NewProto(fds...)
	logger.Debug("loaded proto files",
		zap.Strings("files", opts.Files),
		zap.Int("types", len(p.order)))
	return p, nil
}

// LoadGRPC dials target and reads its schema through server reflection.
func LoadGRPC(ctx context.Context, target string) (*Proto, error) {
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", target, err)
	}
	defer conn.Close()

	p, err := LoadGRPCConn(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", target, err)
	}
	return p, nil
}

// LoadGRPCConn reads the schema of every service exposed through server
// reflection on conn. The reflection services themselves are left out.
func LoadGRPCConn(ctx context.Context, conn *grpc.ClientConn) (*Proto, error) {
	client := grpcreflect.NewClientAuto(ctx, conn)
	defer client.Reset()

	names, err := client.ListServices()
	if err != nil {
		return nil, fmt.Errorf("listing services: %w", err)
	}

	var fds []*desc.FileDescriptor
	for _, name := range names {
		if strings.HasPrefix(name, "grpc.reflection.") {
			continue
		}
		sd, err := client.ResolveService(name)
		if err != nil {
			return nil, fmt.Errorf("resolving service %s: %w", name, err)
		}
		fds = append(fds, sd.GetFile())
	}
	return NewProto(fds...), nil
}

// NewProto builds a catalog over fds and their dependencies. TypeNames lists
// the types of fds only.
func NewProto(fds ...*desc.FileDescriptor) *Proto {
	p := &Proto{
		messages: make(map[string]*desc.MessageDescriptor),
		enums:    make(map[string]*desc.EnumDescriptor),
		services: make(map[string]*desc.ServiceDescriptor),
		derived:  make(map[string]bool),
		files:    make(map[string]bool),
	}
	for _, fd := range fds {
		p.addFile(fd, true)
	}
	return p
}

func (p *Proto) addFile(fd *desc.FileDescriptor, root bool) {
	if p.files[fd.GetName()] {
		return
	}
	p.files[fd.GetName()] = true
	for _, dep := range fd.GetDependencies() {
		p.addFile(dep, false)
	}
	for _, md := range fd.GetMessageTypes() {
		p.addMessage(md, root)
	}
	for _, ed := range fd.GetEnumTypes() {
		p.addEnum(ed, root)
	}
	for _, sd := range fd.GetServices() {
		name := sd.GetFullyQualifiedName()
		p.services[name] = sd
		if root {
			p.order = append(p.order, name)
		}
	}
}

func (p *Proto) addMessage(md *desc.MessageDescriptor, root bool) {
	if md.IsMapEntry() {
		return
	}
	name := md.GetFullyQualifiedName()
	p.messages[name] = md
	if root {
		p.order = append(p.order, name)
	}
	for _, nested := range md.GetNestedMessageTypes() {
		p.addMessage(nested, root)
	}
	for _, ed := range md.GetNestedEnumTypes() {
		p.addEnum(ed, root)
	}
}

func (p *Proto) addEnum(ed *desc.EnumDescriptor, root bool) {
	name := ed.GetFullyQualifiedName()
	p.enums[name] = ed
	if root {
		p.order = append(p.order, name)
	}
}

func (p *Proto) Resolve(name string) (TypeDescriptor, bool) {
	if alias, ok := protoAliases[name]; ok {
		name = alias
	}
	name = strings.TrimPrefix(name, ".")
	switch {
	case name == Void || protoScalars[name]:
		return TypeDescriptor{Name: name, Primitive: true}, true
	case p.messages[name] != nil, p.enums[name] != nil, p.services[name] != nil, p.derived[name]:
		return TypeDescriptor{Name: name}, true
	case strings.HasPrefix(name, "[]"):
		if _, ok := p.Resolve(name[2:]); ok {
			p.derived[name] = true
			return TypeDescriptor{Name: name}, true
		}
	}
	return TypeDescriptor{}, false
}

func (p *Proto) DeclaredFields(t TypeDescriptor) []FieldDescriptor {
	if ed, ok := p.enums[t.Name]; ok {
		values := ed.GetValues()
		fields := make([]FieldDescriptor, 0, len(values))
		for _, v := range values {
			fields = append(fields, FieldDescriptor{
				Name:   v.GetName(),
				Type:   TypeDescriptor{Name: t.Name},
				Static: true,
				Owner:  t,
			})
		}
		return fields
	}

	md, ok := p.messages[t.Name]
	if !ok {
		return nil
	}
	fields := make([]FieldDescriptor, 0, len(md.GetFields()))
	for _, fd := range md.GetFields() {
		fields = append(fields, FieldDescriptor{
			Name:  fd.GetName(),
			Type:  p.describe(p.fieldType(fd)),
			Owner: t,
		})
	}
	return fields
}

func (p *Proto) DeclaredMethods(t TypeDescriptor) []MethodDescriptor {
	sd, ok := p.services[t.Name]
	if !ok {
		return nil
	}
	methods := make([]MethodDescriptor, 0, len(sd.GetMethods()))
	for _, md := range sd.GetMethods() {
		in := md.GetInputType().GetFullyQualifiedName()
		if md.IsClientStreaming() {
			in = "stream " + in
		}
		out := md.GetOutputType().GetFullyQualifiedName()
		if md.IsServerStreaming() {
			out = "stream " + out
		}
		methods = append(methods, MethodDescriptor{
			Name:   md.GetName(),
			Params: []TypeDescriptor{p.describe(in)},
			Return: p.describe(out),
			Owner:  t,
		})
	}
	return methods
}

func (p *Proto) fieldType(fd *desc.FieldDescriptor) string {
	if fd.IsMap() {
		return "map<" + p.fieldType(fd.GetMapKeyType()) + ", " + p.fieldType(fd.GetMapValueType()) + ">"
	}
	var name string
	switch fd.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, descriptorpb.FieldDescriptorProto_TYPE_GROUP:
		name = fd.GetMessageType().GetFullyQualifiedName()
	case descriptorpb.FieldDescriptorProto_TYPE_ENUM:
		name = fd.GetEnumType().GetFullyQualifiedName()
	default:
		name = strings.ToLower(strings.TrimPrefix(fd.GetType().String(), "TYPE_"))
	}
	if fd.IsRepeated() {
		return "[]" + name
	}
	return name
}

func (p *Proto) describe(name string) TypeDescriptor {
	if protoScalars[name] {
		return TypeDescriptor{Name: name, Primitive: true}
	}
	if p.messages[name] == nil && p.enums[name] == nil && p.services[name] == nil {
		p.derived[name] = true
	}
	return TypeDescriptor{Name: name}
}

// IsAssignable is identity.
func (p *Proto) IsAssignable(from, to TypeDescriptor) bool {
	return from.Name == to.Name
}

// TypeNames lists messages, enums and services of the root files in
// declaration order.
func (p *Proto) TypeNames() []string {
	return append([]string(nil), p.order...)
}
