// Package exportsqlite provides a SQLite serializer for grid exports.
//
// Serializer is disabled by default; set Serializer.Enabled to true and
// register it explicitly:
//
//	registry := export.NewSerializerRegistry()
//	_ = exportsqlite.Register(registry, exportsqlite.Serializer{Enabled: true})
//
// Every column is stored as TEXT holding the formatted cell value; null cells
// stay NULL. The table name comes from SerializationOptions.SQLite.TableName,
// then Serializer.TableName, and defaults to "data".
package exportsqlite
