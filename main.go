package main

import (
	"musichub/cmd"
)

func main() {
	cmd.Execute()
}
