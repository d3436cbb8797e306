// The main package for the sequoia-crawler executable.
package main

import (
	"github.com/sequoia-oss-api/sequoia-crawler/cmd"
)

func main() {
	cmd.Execute()
}
