package main

import "github.com/KaramelBytes/quickprep-cli/cmd"

func main() {
	cmd.Execute()
}
