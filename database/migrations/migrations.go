// Package migrations registers the schema migrations of the ventas tables.
// Each file calls migration.Register from init(); importing the package is
// enough to make them visible to the runner.
package migrations
