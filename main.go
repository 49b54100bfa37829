package main

import "github.com/profilekit/profilekit/cmd"

func main() {
	cmd.Execute()
}
