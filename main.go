package main

import "qsearch/internal/cli"

func main() {
	cli.Main()
}
