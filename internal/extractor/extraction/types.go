package extraction

const (
	// DefaultFileDescription is used when a file has no leading comment.
	DefaultFileDescription = "No file description available."

	// DefaultDescription is used for classes and functions without doc comments.
	DefaultDescription = "No description available."
)

// ParsedFile is the normalized structure extracted from one source file.
type ParsedFile struct {
	Path        string            `json:"path"`
	Language    string            `json:"language"`
	Description string            `json:"description"`
	Imports     []string          `json:"imports"`
	Constants   []ConstantInfo    `json:"constants"`
	Classes     []*ParsedClass    `json:"classes"`
	Functions   []*ParsedFunction `json:"functions"`
}

// ParsedClass represents a class, struct, interface, enum, trait or module.
type ParsedClass struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	FilePath    string            `json:"filePath"`
	Line        int               `json:"line"`
	Extends     string            `json:"extends,omitempty"`
	Properties  []PropertyInfo    `json:"properties"`
	Methods     []*ParsedFunction `json:"methods"`
}

// ParsedFunction represents a function or method signature.
type ParsedFunction struct {
	Name        string          `json:"name"`
	ReturnType  string          `json:"returnType"`
	Parameters  []ParameterInfo `json:"parameters"`
	Description string          `json:"description"`
	FilePath    string          `json:"filePath"`
	Line        int             `json:"line"`
	IsStatic    bool            `json:"isStatic,omitempty"`
	IsPrivate   bool            `json:"isPrivate,omitempty"`
	IsProtected bool            `json:"isProtected,omitempty"`
}

// ParameterInfo is a single function parameter.
type ParameterInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// PropertyInfo is a class field or property.
type PropertyInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// ConstantInfo is a file- or class-level constant.
type ConstantInfo struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// NewParsedFile returns an empty ParsedFile for path with default description.
// All slices are non-nil so JSON output always carries arrays.
func NewParsedFile(path string) *ParsedFile {
	return &ParsedFile{
		Path:        path,
		Description: DefaultFileDescription,
		Imports:     []string{},
		Constants:   []ConstantInfo{},
		Classes:     []*ParsedClass{},
		Functions:   []*ParsedFunction{},
	}
}

// NewClass creates a class declared at line with an empty member list.
func NewClass(name, filePath string, line int) *ParsedClass {
	return &ParsedClass{
		Name:        name,
		Description: DefaultDescription,
		FilePath:    filePath,
		Line:        line,
		Properties:  []PropertyInfo{},
		Methods:     []*ParsedFunction{},
	}
}

// NewFunction creates a function declared at line with no parameters.
func NewFunction(name, returnType, filePath string, line int) *ParsedFunction {
	return &ParsedFunction{
		Name:        name,
		ReturnType:  returnType,
		Parameters:  []ParameterInfo{},
		Description: DefaultDescription,
		FilePath:    filePath,
		Line:        line,
	}
}

// AddClass appends class to the file.
func (f *ParsedFile) AddClass(class *ParsedClass) {
	f.Classes = append(f.Classes, class)
}

// FindClass returns the most recently declared class named name, or nil.
func (f *ParsedFile) FindClass(name string) *ParsedClass {
	for i := len(f.Classes) - 1; i >= 0; i-- {
		if f.Classes[i].Name == name {
			return f.Classes[i]
		}
	}
	return nil
}

// Attach adds fn to owner's methods, or to the top-level functions when owner is nil.
func (f *ParsedFile) Attach(owner *ParsedClass, fn *ParsedFunction) {
	if owner != nil {
		owner.Methods = append(owner.Methods, fn)
		return
	}
	f.Functions = append(f.Functions, fn)
}

// AddConstant appends a constant.
func (f *ParsedFile) AddConstant(c ConstantInfo) {
	f.Constants = append(f.Constants, c)
}

// AddProperty appends a property to the class.
func (c *ParsedClass) AddProperty(p PropertyInfo) {
	c.Properties = append(c.Properties, p)
}

// MethodCount returns the number of methods across all classes.
func (f *ParsedFile) MethodCount() int {
	n := 0
	for _, c := range f.Classes {
		n += len(c.Methods)
	}
	return n
}
