package main

import "github.com/treebbb/msurf/internal/cli"

func main() {
	cli.Execute()
}
