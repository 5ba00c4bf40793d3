// Package main provides the datax-configgen CLI, which turns authored DataX
// flows into deployment configs.
package main

func main() {
	Execute()
}
