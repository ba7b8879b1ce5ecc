package main

import "github.com/reoring/textrec/cmd/textrec/cmd"

func main() {
	cmd.Execute()
}
