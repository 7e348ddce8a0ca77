package main

import "github.com/quillpress/quillctl/cmd/quillctl/cmd"

func main() {
	cmd.Execute()
}
