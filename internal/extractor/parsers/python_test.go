package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for PythonScanner:
// - Docstrings after def/class lines become their descriptions
// - Google-style Args sections fill parameter descriptions
// - Comment runs before a class describe it
// - self/cls are dropped, *args/**kwargs kept, missing types default to Any
// - @staticmethod, _protected and __private names set modifier flags
// - Nested functions inside methods are ignored
// - Multi-line signatures are accumulated
// - Module-level UPPER_CASE assignments become constants
// - Class attributes become properties
// - Dedent closes the class so later defs are top-level

const pySource = `"""Module doc."""
import os
from typing import List

MAX_RETRIES = 3

# A helper class.
class Greeter(Base):
    greeting: str = "hi"
    count = 0

    def greet(self, name: str, times: int = 1) -> str:
        """Say hi.

        Args:
            name: who to greet
            times (int): how many times
        """
        def inner():
            pass
        return f"hi {name}"

    @staticmethod
    def create(*args, **kwargs):
        return Greeter()

    def _prepare(self):
        pass

    def __secret(self):
        pass

    async def fetch(
        self,
        url: str,
    ) -> bytes:
        pass


def helper(x, y=2):
    '''Helps.'''
    return x
`

func TestPythonScanner_Class(t *testing.T) {
	t.Parallel()

	parsed := scanSource(NewPythonScanner(), "greeter.py", pySource)

	require.Len(t, parsed.Classes, 1)
	class := parsed.Classes[0]
	assert.Equal(t, "Greeter", class.Name)
	assert.Equal(t, "Base", class.Extends)
	assert.Equal(t, "A helper class.", class.Description)
	assert.Equal(t, 8, class.Line)
	assert.Equal(t, []string{"greeting", "count"}, propertyNames(class))
	assert.Equal(t, "str", class.Properties[0].Type)
	assert.Equal(t, "Any", class.Properties[1].Type)
	assert.Equal(t, []string{"greet", "create", "_prepare", "__secret", "fetch"}, methodNames(class))
}

func TestPythonScanner_Docstrings(t *testing.T) {
	t.Parallel()

	parsed := scanSource(NewPythonScanner(), "greeter.py", pySource)
	greet := findMethod(t, findClass(t, parsed, "Greeter"), "greet")

	assert.Equal(t, "Say hi.", greet.Description)
	assert.Equal(t, "str", greet.ReturnType)
	require.Len(t, greet.Parameters, 2)
	assert.Equal(t, "name", greet.Parameters[0].Name)
	assert.Equal(t, "str", greet.Parameters[0].Type)
	assert.Equal(t, "who to greet", greet.Parameters[0].Description)
	assert.Equal(t, "int", greet.Parameters[1].Type)
	assert.Equal(t, "how many times", greet.Parameters[1].Description)
}

func TestPythonScanner_Modifiers(t *testing.T) {
	t.Parallel()

	parsed := scanSource(NewPythonScanner(), "greeter.py", pySource)
	class := findClass(t, parsed, "Greeter")

	create := findMethod(t, class, "create")
	assert.True(t, create.IsStatic)
	assert.Equal(t, "None", create.ReturnType)
	require.Len(t, create.Parameters, 2)
	assert.Equal(t, "*args", create.Parameters[0].Name)
	assert.Equal(t, "**kwargs", create.Parameters[1].Name)
	assert.Equal(t, "Any", create.Parameters[0].Type)

	assert.True(t, findMethod(t, class, "_prepare").IsProtected)
	assert.False(t, findMethod(t, class, "_prepare").IsPrivate)
	assert.True(t, findMethod(t, class, "__secret").IsPrivate)
	assert.False(t, findMethod(t, class, "greet").IsStatic)
}

func TestPythonScanner_MultiLineSignature(t *testing.T) {
	t.Parallel()

	parsed := scanSource(NewPythonScanner(), "greeter.py", pySource)
	fetch := findMethod(t, findClass(t, parsed, "Greeter"), "fetch")

	assert.Equal(t, "bytes", fetch.ReturnType)
	assert.Equal(t, 33, fetch.Line)
	require.Len(t, fetch.Parameters, 1)
	assert.Equal(t, "url", fetch.Parameters[0].Name)
	assert.Equal(t, "str", fetch.Parameters[0].Type)
}

func TestPythonScanner_TopLevel(t *testing.T) {
	t.Parallel()

	parsed := scanSource(NewPythonScanner(), "greeter.py", pySource)

	assert.Equal(t, []string{"helper"}, functionNames(parsed))
	helper := parsed.Functions[0]
	assert.Equal(t, "Helps.", helper.Description)
	require.Len(t, helper.Parameters, 2)
	assert.Equal(t, "y", helper.Parameters[1].Name)
	assert.Equal(t, "Any", helper.Parameters[1].Type)

	require.Len(t, parsed.Constants, 1)
	assert.Equal(t, "MAX_RETRIES", parsed.Constants[0].Name)
	assert.Equal(t, "3", parsed.Constants[0].Value)
}

func TestPythonScanner_SphinxParams(t *testing.T) {
	t.Parallel()

	src := `def connect(host, port=80):
    """
    Open a connection.

    :param host: the host name
    :param int port: the port
    :returns: a socket
    """
    pass
`
	parsed := scanSource(NewPythonScanner(), "net.py", src)
	fn := findFunction(t, parsed, "connect")

	assert.Equal(t, "Open a connection.", fn.Description)
	assert.Equal(t, "the host name", fn.Parameters[0].Description)
	assert.Equal(t, "the port", fn.Parameters[1].Description)
}
