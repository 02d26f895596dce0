// Command gridexport renders grids described in YAML files to JSON, CSV,
// XLSX or SQLite, and can serve them over HTTP.
//
// Usage:
//
//	# Export every row of a grid as JSON into the current directory
//	gridexport export people.yaml
//
//	# Export the selected rows as pretty-printed JSON to stdout
//	gridexport export people.yaml --mode selected --selected 1,3 --indent 2 --out -
//
//	# Serve grids over HTTP with Prometheus metrics
//	gridexport serve people.yaml orders.yaml --metrics
package main

func main() {
	Execute()
}
