package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for RubyScanner:
// - Modules and classes (with superclass) become classes; one-liner classes do not open a scope
// - attr_* symbols become properties
// - YARD @param tags describe parameters, with or without [Type]
// - def self.x and defs inside class << self are static
// - Bare private/protected sections apply to later defs
// - "public def x" and "private :x" change visibility of a single method
// - Nested if/end blocks do not close the class
// - Predicate method names and one-line defs
// - Top-level defs with unparenthesized parameters become functions
// - UPPER_CASE assignments become constants

const rubySource = `# frozen_string_literal: true

require 'json'

module Shop
  # Default currency.
  CURRENCY = 'USD'

  # A shopping cart.
  class Cart < Base
    attr_reader :items, :owner

    # Adds an item.
    # @param item [Item] the item to add
    # @param qty the quantity
    def add(item, qty = 1)
      @items << item
    end

    def self.build(*args, **opts, &block)
      new
    end

    def empty?; @items.empty?; end

    def total
    end
    private :total

    protected

    def recalc
      if true
        1
      end
    end

    private

    def secret
    end

    public def visible; end

    class << self
      def registry
      end
    end
  end

  class Error < StandardError; end
end

def helper name, flag: true
end
`

func TestRubyScanner_Classes(t *testing.T) {
	t.Parallel()

	parsed := scanSource(NewRubyScanner(), "cart.rb", rubySource)

	require.Len(t, parsed.Classes, 3)
	assert.Equal(t, "Shop", parsed.Classes[0].Name)
	assert.Equal(t, "No description available.", parsed.Classes[0].Description)

	cart := parsed.Classes[1]
	assert.Equal(t, "Cart", cart.Name)
	assert.Equal(t, "Base", cart.Extends)
	assert.Equal(t, "A shopping cart.", cart.Description)
	assert.Equal(t, 10, cart.Line)
	assert.Equal(t, []string{"items", "owner"}, propertyNames(cart))
	assert.Equal(t, "any", cart.Properties[0].Type)
	assert.Equal(t,
		[]string{"add", "build", "empty?", "total", "recalc", "secret", "visible", "registry"},
		methodNames(cart))

	errClass := parsed.Classes[2]
	assert.Equal(t, "Error", errClass.Name)
	assert.Equal(t, "StandardError", errClass.Extends)
	assert.Empty(t, errClass.Methods)
}

func TestRubyScanner_Methods(t *testing.T) {
	t.Parallel()

	parsed := scanSource(NewRubyScanner(), "cart.rb", rubySource)
	cart := findClass(t, parsed, "Cart")

	add := findMethod(t, cart, "add")
	assert.Equal(t, "Adds an item.", add.Description)
	assert.Equal(t, "unknown", add.ReturnType)
	require.Len(t, add.Parameters, 2)
	assert.Equal(t, "item", add.Parameters[0].Name)
	assert.Equal(t, "any", add.Parameters[0].Type)
	assert.Equal(t, "the item to add", add.Parameters[0].Description)
	assert.Equal(t, "qty", add.Parameters[1].Name)
	assert.Equal(t, "the quantity", add.Parameters[1].Description)

	build := findMethod(t, cart, "build")
	assert.True(t, build.IsStatic)
	assert.Equal(t, []string{"*args", "**opts", "&block"}, []string{
		build.Parameters[0].Name, build.Parameters[1].Name, build.Parameters[2].Name,
	})

	assert.Empty(t, findMethod(t, cart, "empty?").Parameters)
	assert.True(t, findMethod(t, cart, "registry").IsStatic)
}

func TestRubyScanner_Visibility(t *testing.T) {
	t.Parallel()

	parsed := scanSource(NewRubyScanner(), "cart.rb", rubySource)
	cart := findClass(t, parsed, "Cart")

	assert.False(t, findMethod(t, cart, "add").IsPrivate)
	assert.True(t, findMethod(t, cart, "total").IsPrivate)
	assert.True(t, findMethod(t, cart, "recalc").IsProtected)
	assert.True(t, findMethod(t, cart, "secret").IsPrivate)
	assert.False(t, findMethod(t, cart, "visible").IsPrivate)
	assert.False(t, findMethod(t, cart, "registry").IsPrivate)
}

func TestRubyScanner_TopLevel(t *testing.T) {
	t.Parallel()

	parsed := scanSource(NewRubyScanner(), "cart.rb", rubySource)

	assert.Equal(t, []string{"helper"}, functionNames(parsed))
	helper := parsed.Functions[0]
	require.Len(t, helper.Parameters, 2)
	assert.Equal(t, "name", helper.Parameters[0].Name)
	assert.Equal(t, "flag", helper.Parameters[1].Name)

	require.Len(t, parsed.Constants, 1)
	assert.Equal(t, "CURRENCY", parsed.Constants[0].Name)
	assert.Equal(t, "'USD'", parsed.Constants[0].Value)
	assert.Equal(t, "Default currency.", parsed.Constants[0].Description)
}
