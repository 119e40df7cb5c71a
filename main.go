package main

import "binary-metadata/cmd"

func main() {
	cmd.Execute()
}
