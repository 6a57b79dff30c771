package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for JavaScanner:
// - Class declaration with extends and Javadoc description
// - @param tags link to parameters by name
// - Annotations between Javadoc and method keep the pending doc
// - Constructors return void
// - Generic methods, varargs and final parameters
// - static final fields become both properties and constants
// - Method bodies do not leak statements as members
// - Interfaces attach abstract methods

const javaSource = `package com.example;

import java.util.List;

/**
 * A simple calculator.
 */
public class Calculator extends BaseCalc implements Serializable {
    public static final int MAX = 100;
    private int total = 0;

    /**
     * Creates a calculator.
     */
    public Calculator() {
        this.total = 0;
    }

    /**
     * Adds a value.
     * @param x the x value
     * @return the new total
     */
    @Override
    public int add(int x) {
        return total += x;
    }

    private static <T> List<T> wrap(final T item, String... rest) throws IllegalStateException {
        return List.of(item);
    }

    protected void reset() {}
}
`

func TestJavaScanner_Class(t *testing.T) {
	t.Parallel()

	parsed := scanSource(NewJavaScanner(), "Calculator.java", javaSource)

	require.Len(t, parsed.Classes, 1)
	class := parsed.Classes[0]
	assert.Equal(t, "Calculator", class.Name)
	assert.Equal(t, "BaseCalc", class.Extends)
	assert.Equal(t, "A simple calculator.", class.Description)
	assert.Equal(t, 8, class.Line)
	assert.Equal(t, []string{"Calculator", "add", "wrap", "reset"}, methodNames(class))
	assert.Equal(t, []string{"MAX", "total"}, propertyNames(class))
	assert.Empty(t, parsed.Functions)

	require.Len(t, parsed.Constants, 1)
	assert.Equal(t, "MAX", parsed.Constants[0].Name)
	assert.Equal(t, "100", parsed.Constants[0].Value)
}

func TestJavaScanner_DocLinkage(t *testing.T) {
	t.Parallel()

	parsed := scanSource(NewJavaScanner(), "Calculator.java", javaSource)
	class := findClass(t, parsed, "Calculator")

	add := findMethod(t, class, "add")
	assert.Equal(t, "Adds a value.", add.Description)
	assert.Equal(t, "int", add.ReturnType)
	require.Len(t, add.Parameters, 1)
	assert.Equal(t, "x", add.Parameters[0].Name)
	assert.Equal(t, "int", add.Parameters[0].Type)
	assert.Equal(t, "the x value", add.Parameters[0].Description)

	ctor := findMethod(t, class, "Calculator")
	assert.Equal(t, "void", ctor.ReturnType)
	assert.Equal(t, "Creates a calculator.", ctor.Description)
}

func TestJavaScanner_SingleLineDoc(t *testing.T) {
	t.Parallel()

	src := `class A {
    /** Does m. @param x the x value */
    void m(int x) {}
}
`
	parsed := scanSource(NewJavaScanner(), "A.java", src)
	m := findMethod(t, findClass(t, parsed, "A"), "m")

	assert.Equal(t, "Does m.", m.Description)
	require.Len(t, m.Parameters, 1)
	assert.Equal(t, "the x value", m.Parameters[0].Description)
}

func TestJavaScanner_Modifiers(t *testing.T) {
	t.Parallel()

	parsed := scanSource(NewJavaScanner(), "Calculator.java", javaSource)
	class := findClass(t, parsed, "Calculator")

	wrap := findMethod(t, class, "wrap")
	assert.True(t, wrap.IsStatic)
	assert.True(t, wrap.IsPrivate)
	assert.Equal(t, "List<T>", wrap.ReturnType)
	require.Len(t, wrap.Parameters, 2)
	assert.Equal(t, "item", wrap.Parameters[0].Name)
	assert.Equal(t, "T", wrap.Parameters[0].Type)
	assert.Equal(t, "rest", wrap.Parameters[1].Name)
	assert.Equal(t, "String...", wrap.Parameters[1].Type)

	reset := findMethod(t, class, "reset")
	assert.True(t, reset.IsProtected)
	assert.False(t, reset.IsStatic)
}

func TestJavaScanner_Interface(t *testing.T) {
	t.Parallel()

	src := `public interface Repository<T> extends Base<T> {
    T find(String id);

    default void close() {}
}
`
	parsed := scanSource(NewJavaScanner(), "Repository.java", src)
	repo := findClass(t, parsed, "Repository")

	assert.Equal(t, "Base", repo.Extends)
	assert.Equal(t, []string{"find", "close"}, methodNames(repo))
	assert.Equal(t, "T", repo.Methods[0].ReturnType)
}
