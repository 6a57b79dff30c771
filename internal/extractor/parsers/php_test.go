package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for PHPScanner:
// - PSR-12 brace placement with namespaced extends
// - Class constants and define() become constants
// - Typed, nullable and untyped properties
// - Multi-line constructor signatures with promoted properties
// - @param tags describe parameters by name without the '$'
// - Variadic parameters, nullable return types and by-reference functions
// - Constructors without a declared return type return void
// - Top-level functions

const phpSource = `<?php

namespace App\Models;

use App\Base\Model;

define('APP_VERSION', '1.0');

/**
 * Represents a user.
 */
class User extends \App\Base\Model implements JsonSerializable
{
    const ROLE_ADMIN = 'admin';

    public string $name;
    protected static $count = 0;
    private ?int $age = null;

    /**
     * Creates a user.
     *
     * @param string $name The name
     * @param int $age The age
     */
    public function __construct(
        string $name,
        private readonly Logger $logger,
        int $age = 0
    ) {
        $this->name = $name;
    }

    public static function find(int ...$ids): ?User
    {
        return null;
    }

    private function &secret($x) {}
}

function helper(array $items): array
{
    return $items;
}
`

func TestPHPScanner_Class(t *testing.T) {
	t.Parallel()

	parsed := scanSource(NewPHPScanner(), "User.php", phpSource)

	require.Len(t, parsed.Classes, 1)
	user := parsed.Classes[0]
	assert.Equal(t, "User", user.Name)
	assert.Equal(t, "Model", user.Extends)
	assert.Equal(t, "Represents a user.", user.Description)
	assert.Equal(t, 12, user.Line)
	assert.Equal(t, []string{"__construct", "find", "secret"}, methodNames(user))
	assert.Equal(t, []string{"name", "count", "age"}, propertyNames(user))
	assert.Equal(t, "string", user.Properties[0].Type)
	assert.Equal(t, "mixed", user.Properties[1].Type)
	assert.Equal(t, "?int", user.Properties[2].Type)

	require.Len(t, parsed.Constants, 2)
	assert.Equal(t, "APP_VERSION", parsed.Constants[0].Name)
	assert.Equal(t, "'1.0'", parsed.Constants[0].Value)
	assert.Equal(t, "ROLE_ADMIN", parsed.Constants[1].Name)
	assert.Equal(t, "'admin'", parsed.Constants[1].Value)
}

func TestPHPScanner_Constructor(t *testing.T) {
	t.Parallel()

	parsed := scanSource(NewPHPScanner(), "User.php", phpSource)
	ctor := findMethod(t, findClass(t, parsed, "User"), "__construct")

	assert.Equal(t, 26, ctor.Line)
	assert.Equal(t, "void", ctor.ReturnType)
	assert.Equal(t, "Creates a user.", ctor.Description)
	require.Len(t, ctor.Parameters, 3)
	assert.Equal(t, "name", ctor.Parameters[0].Name)
	assert.Equal(t, "string", ctor.Parameters[0].Type)
	assert.Equal(t, "The name", ctor.Parameters[0].Description)
	assert.Equal(t, "logger", ctor.Parameters[1].Name)
	assert.Equal(t, "Logger", ctor.Parameters[1].Type)
	assert.Equal(t, "The age", ctor.Parameters[2].Description)
}

func TestPHPScanner_Methods(t *testing.T) {
	t.Parallel()

	parsed := scanSource(NewPHPScanner(), "User.php", phpSource)
	user := findClass(t, parsed, "User")

	find := findMethod(t, user, "find")
	assert.True(t, find.IsStatic)
	assert.Equal(t, "?User", find.ReturnType)
	require.Len(t, find.Parameters, 1)
	assert.Equal(t, "ids", find.Parameters[0].Name)
	assert.Equal(t, "int", find.Parameters[0].Type)

	secret := findMethod(t, user, "secret")
	assert.True(t, secret.IsPrivate)
	assert.Equal(t, "mixed", secret.ReturnType)
	require.Len(t, secret.Parameters, 1)
	assert.Equal(t, "mixed", secret.Parameters[0].Type)
}

func TestPHPScanner_TopLevel(t *testing.T) {
	t.Parallel()

	parsed := scanSource(NewPHPScanner(), "User.php", phpSource)

	assert.Equal(t, []string{"helper"}, functionNames(parsed))
	assert.Equal(t, "array", parsed.Functions[0].ReturnType)
}
