package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for CPPScanner:
// - class with base class and access sections driving visibility
// - struct members default to public
// - Constructors and destructors return void
// - Pure virtual and const methods
// - @param tags describe parameters
// - #define constants
// - Free functions and out-of-class Class::method definitions are top-level
// - void parameter lists produce no parameters
// - One-line class bodies keep their members and inline access labels
// - Struct-typed variables with brace initializers are not classes

const cppSource = `#include <string>
#define MAX_SIZE 100

/**
 * A shape.
 */
class Shape : public Base {
public:
    /**
     * Creates a shape.
     * @param name the name
     */
    explicit Shape(const std::string& name);
    virtual ~Shape();
    virtual double area() const = 0;
    static int count();
protected:
    int sides;
    void recompute();
private:
    std::string name_;
};

struct Point {
    int x;
    int y;
    double length() const;
};

int add(int a, int b) {
    return a + b;
}

Shape::Shape(const std::string& name) : name_(name) {}

void reset(void);
`

func TestCPPScanner_Class(t *testing.T) {
	t.Parallel()

	parsed := scanSource(NewCPPScanner(), "shape.hpp", cppSource)

	require.Len(t, parsed.Classes, 2)
	shape := parsed.Classes[0]
	assert.Equal(t, "Shape", shape.Name)
	assert.Equal(t, "Base", shape.Extends)
	assert.Equal(t, "A shape.", shape.Description)
	assert.Equal(t, []string{"Shape", "~Shape", "area", "count", "recompute"}, methodNames(shape))
	assert.Equal(t, []string{"sides", "name_"}, propertyNames(shape))
	assert.Equal(t, "std::string", shape.Properties[1].Type)

	point := parsed.Classes[1]
	assert.Equal(t, []string{"x", "y"}, propertyNames(point))
	assert.Equal(t, []string{"length"}, methodNames(point))
	assert.False(t, point.Methods[0].IsPrivate)
}

func TestCPPScanner_Members(t *testing.T) {
	t.Parallel()

	parsed := scanSource(NewCPPScanner(), "shape.hpp", cppSource)
	shape := findClass(t, parsed, "Shape")

	ctor := findMethod(t, shape, "Shape")
	assert.Equal(t, "void", ctor.ReturnType)
	assert.Equal(t, "Creates a shape.", ctor.Description)
	require.Len(t, ctor.Parameters, 1)
	assert.Equal(t, "name", ctor.Parameters[0].Name)
	assert.Equal(t, "const std::string&", ctor.Parameters[0].Type)
	assert.Equal(t, "the name", ctor.Parameters[0].Description)
	assert.False(t, ctor.IsPrivate)

	assert.Equal(t, "void", findMethod(t, shape, "~Shape").ReturnType)
	assert.Equal(t, "double", findMethod(t, shape, "area").ReturnType)
	assert.True(t, findMethod(t, shape, "count").IsStatic)
	assert.True(t, findMethod(t, shape, "recompute").IsProtected)
}

func TestCPPScanner_TopLevel(t *testing.T) {
	t.Parallel()

	parsed := scanSource(NewCPPScanner(), "shape.hpp", cppSource)

	assert.Equal(t, []string{"add", "Shape::Shape", "reset"}, functionNames(parsed))
	add := findFunction(t, parsed, "add")
	assert.Equal(t, "int", add.ReturnType)
	require.Len(t, add.Parameters, 2)
	assert.Equal(t, "b", add.Parameters[1].Name)
	assert.Equal(t, "int", add.Parameters[1].Type)

	assert.Empty(t, findFunction(t, parsed, "reset").Parameters)

	require.Len(t, parsed.Constants, 1)
	assert.Equal(t, "MAX_SIZE", parsed.Constants[0].Name)
	assert.Equal(t, "100", parsed.Constants[0].Value)
}

func TestCPPScanner_DefaultPrivateClass(t *testing.T) {
	t.Parallel()

	src := `class Foo {
    void bar() {}
};
`
	parsed := scanSource(NewCPPScanner(), "foo.cpp", src)

	require.Len(t, parsed.Classes, 1)
	assert.Equal(t, []string{"bar"}, methodNames(parsed.Classes[0]))
	assert.True(t, parsed.Classes[0].Methods[0].IsPrivate)
	assert.Empty(t, parsed.Functions)
}

func TestCPPScanner_OneLineBodies(t *testing.T) {
	t.Parallel()

	src := `struct Point { int x; int y; };
class Box { public: Box(); int size() const { return n; } private: int n; };
struct timeval tv = { 0, 0 };
`
	parsed := scanSource(NewCPPScanner(), "box.hpp", src)

	require.Len(t, parsed.Classes, 2)
	point := findClass(t, parsed, "Point")
	assert.Equal(t, []string{"x", "y"}, propertyNames(point))

	box := findClass(t, parsed, "Box")
	assert.Equal(t, []string{"Box", "size"}, methodNames(box))
	assert.False(t, findMethod(t, box, "size").IsPrivate)
	assert.Equal(t, 2, findMethod(t, box, "size").Line)
	assert.Equal(t, []string{"n"}, propertyNames(box))
	assert.Empty(t, parsed.Functions)
}
