package main

import (
	"github.com/prismql/prism/cmd"
)

func main() {
	cmd.Execute()
}
