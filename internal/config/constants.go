package config

import "time"

const ConfigFileName = "typeprobe.yaml"

// ConfigFileNames are all recognized configuration file names, in lookup order
var ConfigFileNames = []string{ConfigFileName, "typeprobe.yml"}

// Query commands
const (
	CheckCommand = "CHECK"
	FindCommand  = "FIND"
)

// Element types accepted after CHECK and inside a FIND type list
const (
	ClassElement          = "CLASS"
	InstanceFieldElement  = "INSTANCE_FIELD"
	StaticFieldElement    = "STATIC_FIELD"
	InstanceMethodElement = "INSTANCE_METHOD"
	StaticMethodElement   = "STATIC_METHOD"
)

// Optional FIND group labels
const (
	ParentLabel = "parent:"
	TargetLabel = "target:"
	ParamsLabel = "params:"
)

// Catalog source kinds
const (
	SourceGo     = "go"
	SourceIndex  = "index"
	SourceSQLite = "sqlite"
	SourceProto  = "proto"
	SourceGRPC   = "grpc"
)

// Defaults
const (
	DefaultJoin    = "space"
	DefaultColor   = "auto"
	DefaultTimeout = 60 * time.Second
)

var (
	JoinModes  = []string{"space", "concat"}
	ColorModes = []string{"auto", "always", "never"}
)
