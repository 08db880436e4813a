package main

import "github.com/KaramelBytes/pairscope/cmd"

func main() {
	cmd.Execute()
}
