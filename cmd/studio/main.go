package main

import "blog-api/cmd/studio/commands"

func main() {
	commands.Execute()
}
