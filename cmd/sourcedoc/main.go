package main

import "github.com/mvp-joe/sourcedoc/internal/cli"

func main() {
	cli.Execute()
}
