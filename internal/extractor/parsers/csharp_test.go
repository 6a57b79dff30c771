package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for CSharpScanner:
// - Allman-style braces inside a namespace block
// - /// <summary> text describes classes, methods and properties
// - Multi-line <param> text is joined; <returns> is skipped
// - Attribute lines keep the pending doc comment
// - Members without an access keyword are private
// - protected internal clears private and sets protected
// - Constructors with base(...) chaining return void
// - const fields become constants, auto-properties become properties
// - Interface members are public; enum members are typed with the enum

const csSource = `using System;
using System.Collections.Generic;

namespace Demo.Services
{
    /// <summary>
    /// Manages accounts.
    /// </summary>
    public class AccountService : ServiceBase, IDisposable
    {
        public const int MaxAccounts = 10;
        private readonly ILogger _logger;

        /// <summary>Gets the name.</summary>
        public string Name { get; set; }

        public AccountService(ILogger logger) : base(logger)
        {
            _logger = logger;
        }

        /// <summary>
        /// Deposits money.
        /// </summary>
        /// <param name="amount">The amount
        /// to deposit.</param>
        /// <param name="note">A note.</param>
        /// <returns>The balance.</returns>
        [Obsolete]
        public async Task<decimal> DepositAsync(decimal amount, string note = null)
        {
            return 0;
        }

        static void Reset() { }

        protected internal virtual List<string> Names(params string[] names) => new List<string>();
    }

    public interface IRepo
    {
        void Save(int id);
    }

    public enum Color
    {
        Red,
        Green = 2
    }
}
`

func TestCSharpScanner_Class(t *testing.T) {
	t.Parallel()

	parsed := scanSource(NewCSharpScanner(), "AccountService.cs", csSource)

	require.Len(t, parsed.Classes, 3)
	svc := parsed.Classes[0]
	assert.Equal(t, "AccountService", svc.Name)
	assert.Equal(t, "ServiceBase", svc.Extends)
	assert.Equal(t, "Manages accounts.", svc.Description)
	assert.Equal(t, 9, svc.Line)
	assert.Equal(t, []string{"AccountService", "DepositAsync", "Reset", "Names"}, methodNames(svc))
	assert.Equal(t, []string{"MaxAccounts", "_logger", "Name"}, propertyNames(svc))
	assert.Equal(t, "Gets the name.", svc.Properties[2].Description)
	assert.Empty(t, parsed.Functions)

	require.Len(t, parsed.Constants, 1)
	assert.Equal(t, "MaxAccounts", parsed.Constants[0].Name)
	assert.Equal(t, "10", parsed.Constants[0].Value)
}

func TestCSharpScanner_XMLDocs(t *testing.T) {
	t.Parallel()

	parsed := scanSource(NewCSharpScanner(), "AccountService.cs", csSource)
	deposit := findMethod(t, findClass(t, parsed, "AccountService"), "DepositAsync")

	assert.Equal(t, "Deposits money.", deposit.Description)
	assert.Equal(t, "Task<decimal>", deposit.ReturnType)
	require.Len(t, deposit.Parameters, 2)
	assert.Equal(t, "amount", deposit.Parameters[0].Name)
	assert.Equal(t, "decimal", deposit.Parameters[0].Type)
	assert.Equal(t, "The amount to deposit.", deposit.Parameters[0].Description)
	assert.Equal(t, "note", deposit.Parameters[1].Name)
	assert.Equal(t, "A note.", deposit.Parameters[1].Description)
}

func TestCSharpScanner_Modifiers(t *testing.T) {
	t.Parallel()

	parsed := scanSource(NewCSharpScanner(), "AccountService.cs", csSource)
	svc := findClass(t, parsed, "AccountService")

	ctor := findMethod(t, svc, "AccountService")
	assert.Equal(t, "void", ctor.ReturnType)
	assert.False(t, ctor.IsPrivate)
	require.Len(t, ctor.Parameters, 1)
	assert.Equal(t, "ILogger", ctor.Parameters[0].Type)

	reset := findMethod(t, svc, "Reset")
	assert.True(t, reset.IsStatic)
	assert.True(t, reset.IsPrivate)

	names := findMethod(t, svc, "Names")
	assert.True(t, names.IsProtected)
	assert.False(t, names.IsPrivate)
	assert.Equal(t, "List<string>", names.ReturnType)
	require.Len(t, names.Parameters, 1)
	assert.Equal(t, "string[]", names.Parameters[0].Type)
}

func TestCSharpScanner_InterfaceAndEnum(t *testing.T) {
	t.Parallel()

	parsed := scanSource(NewCSharpScanner(), "AccountService.cs", csSource)

	repo := findClass(t, parsed, "IRepo")
	assert.Equal(t, []string{"Save"}, methodNames(repo))
	assert.False(t, repo.Methods[0].IsPrivate)

	color := findClass(t, parsed, "Color")
	assert.Equal(t, []string{"Red", "Green"}, propertyNames(color))
	assert.Equal(t, "Color", color.Properties[1].Type)
}
